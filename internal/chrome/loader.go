// Package chrome injects the shared head, header and footer partials into
// rendered pages and applies page-wide markup defaults.
package chrome

import (
	"bytes"
	"context"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
	"golang.org/x/sync/errgroup"

	"github.com/agrotern2025/agrotern/internal/nav"
)

// Partial file names.
const (
	HeadPartial   = "head.html"
	HeaderPartial = "header.html"
	FooterPartial = "footer.html"
)

// Page describes the request a page was rendered for.
type Page struct {
	// Path is the request path, used to mark the active navigation link.
	Path string
	// CartCount is written into the #cart-count badge.
	CartCount int
}

// Loader composes pages with the shared partials.
type Loader struct {
	source   Source
	logger   *zap.Logger
	siteRoot string
	badgeURL string
	now      func() time.Time
}

// Option customises a Loader.
type Option func(*Loader)

// WithLogger sets the loader logger.
func WithLogger(l *zap.Logger) Option {
	return func(ld *Loader) {
		if l != nil {
			ld.logger = l
		}
	}
}

// WithSiteRoot sets the site home path. Header links to it are never marked active.
func WithSiteRoot(root string) Option {
	return func(ld *Loader) { ld.siteRoot = root }
}

// WithBadgeURL sets the fragment URL the cart badge refreshes from.
func WithBadgeURL(u string) Option {
	return func(ld *Loader) { ld.badgeURL = u }
}

// WithClock overrides the time source used for the footer year.
func WithClock(now func() time.Time) Option {
	return func(ld *Loader) { ld.now = now }
}

// NewLoader builds a loader reading partials from source.
func NewLoader(source Source, opts ...Option) *Loader {
	ld := &Loader{source: source, logger: zap.NewNop(), badgeURL: "/fragments/cart-badge", now: time.Now}
	for _, opt := range opts {
		opt(ld)
	}
	return ld
}

type partials struct {
	head, header, footer []byte
}

func (l *Loader) fetch(ctx context.Context) partials {
	var p partials
	var g errgroup.Group
	load := func(name string, dst *[]byte) {
		g.Go(func() error {
			raw, err := l.source.Partial(ctx, name)
			if err != nil {
				l.logger.Error("chrome partial load failed", zap.String("partial", name), zap.Error(err))
				return nil
			}
			*dst = raw
			return nil
		})
	}
	load(HeadPartial, &p.head)
	load(HeaderPartial, &p.header)
	load(FooterPartial, &p.footer)
	_ = g.Wait()
	return p
}

// Compose injects the partials into page and applies the markup defaults.
// A partial that fails to load leaves its region untouched.
func (l *Loader) Compose(ctx context.Context, page []byte, info Page) ([]byte, error) {
	doc, err := html.Parse(bytes.NewReader(page))
	if err != nil {
		return nil, err
	}
	parts := l.fetch(ctx)

	if head := findFirst(doc, func(n *html.Node) bool { return n.DataAtom == atom.Head }); head != nil && parts.head != nil {
		l.mergeHead(head, parts.head)
	}
	if header := findByID(doc, "header"); header != nil && parts.header != nil {
		l.replaceChildren(header, parts.header, HeaderPartial)
		l.markActiveNav(header, info.Path)
	}
	if footer := findByID(doc, "footer"); footer != nil && parts.footer != nil {
		l.replaceChildren(footer, parts.footer, FooterPartial)
	}
	if badge := findByID(doc, "cart-count"); badge != nil {
		setText(badge, strconv.Itoa(info.CartCount))
		setAttr(badge, "hx-get", l.badgeURL)
		setAttr(badge, "hx-trigger", "cart-changed from:body")
		setAttr(badge, "hx-swap", "innerHTML")
	}
	if year := findByID(doc, "year"); year != nil {
		setText(year, strconv.Itoa(l.now().Year()))
	}
	enhanceImages(doc)
	secureBlankTargets(doc)

	var buf bytes.Buffer
	if err := html.Render(&buf, doc); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (l *Loader) replaceChildren(target *html.Node, raw []byte, name string) {
	nodes, err := html.ParseFragment(bytes.NewReader(raw), &html.Node{Type: html.ElementNode, Data: "div", DataAtom: atom.Div})
	if err != nil {
		l.logger.Error("chrome partial parse failed", zap.String("partial", name), zap.Error(err))
		return
	}
	for c := target.FirstChild; c != nil; {
		next := c.NextSibling
		target.RemoveChild(c)
		c = next
	}
	for _, n := range nodes {
		target.AppendChild(n)
	}
}

func (l *Loader) mergeHead(head *html.Node, raw []byte) {
	nodes, err := html.ParseFragment(bytes.NewReader(raw), head)
	if err != nil {
		l.logger.Error("chrome partial parse failed", zap.String("partial", HeadPartial), zap.Error(err))
		return
	}
	for _, n := range nodes {
		if n.Type != html.ElementNode || skipHeadNode(head, n) {
			continue
		}
		head.AppendChild(n)
	}
}

// skipHeadNode reports whether n duplicates something already in head.
// Titles match by text, links by rel and href, metas by name or property,
// scripts by src. Links without href are always dropped.
func skipHeadNode(head, n *html.Node) bool {
	switch n.DataAtom {
	case atom.Title:
		existing := findFirst(head, func(c *html.Node) bool { return c.DataAtom == atom.Title })
		if existing == nil {
			return false
		}
		current := strings.TrimSpace(textOf(existing))
		return current != "" && current == strings.TrimSpace(textOf(n))
	case atom.Link:
		href, ok := attr(n, "href")
		if !ok || href == "" {
			return true
		}
		rel, _ := attr(n, "rel")
		return hasChild(head, atom.Link, func(c *html.Node) bool {
			cr, _ := attr(c, "rel")
			ch, _ := attr(c, "href")
			return cr == rel && ch == href
		})
	case atom.Meta:
		if name, ok := attr(n, "name"); ok && name != "" {
			return hasChild(head, atom.Meta, func(c *html.Node) bool { v, _ := attr(c, "name"); return v == name })
		}
		if prop, ok := attr(n, "property"); ok && prop != "" {
			return hasChild(head, atom.Meta, func(c *html.Node) bool { v, _ := attr(c, "property"); return v == prop })
		}
	case atom.Script:
		src, ok := attr(n, "src")
		if !ok || src == "" {
			return false
		}
		return hasChild(head, atom.Script, func(c *html.Node) bool { v, _ := attr(c, "src"); return v == src })
	}
	return false
}

func (l *Loader) markActiveNav(header *html.Node, current string) {
	root := strings.TrimRight(l.siteRoot, "/")
	walk(header, func(n *html.Node) {
		if n.DataAtom != atom.A {
			return
		}
		href, ok := attr(n, "href")
		if !ok || href == "" {
			return
		}
		if trimmed := strings.TrimRight(href, "/"); trimmed == "" || trimmed == root {
			return
		}
		if !nav.IsActive(href, current) {
			return
		}
		setAttr(n, "aria-current", "page")
		for p := n.Parent; p != nil && p != header.Parent; p = p.Parent {
			if p.DataAtom == atom.Li {
				addClass(p, "is-active")
				break
			}
		}
	})
}

// enhanceImages sets decoding and loading hints. The hero image (class
// featured-image, or the first image under main) is fetched eagerly with high
// priority; everything else loads lazily.
func enhanceImages(doc *html.Node) {
	var firstMainImg *html.Node
	if main := findFirst(doc, func(n *html.Node) bool { return n.DataAtom == atom.Main }); main != nil {
		firstMainImg = findFirst(main, func(n *html.Node) bool { return n.DataAtom == atom.Img })
	}
	walk(doc, func(n *html.Node) {
		if n.DataAtom != atom.Img {
			return
		}
		if _, ok := attr(n, "decoding"); !ok {
			setAttr(n, "decoding", "async")
		}
		hero := n == firstMainImg || hasClass(n, "featured-image")
		if hero {
			if _, ok := attr(n, "fetchpriority"); !ok {
				setAttr(n, "fetchpriority", "high")
			}
			return
		}
		if _, ok := attr(n, "loading"); !ok {
			setAttr(n, "loading", "lazy")
		}
	})
}

func secureBlankTargets(doc *html.Node) {
	walk(doc, func(n *html.Node) {
		if n.DataAtom != atom.A {
			return
		}
		if target, _ := attr(n, "target"); target != "_blank" {
			return
		}
		if rel, _ := attr(n, "rel"); rel == "" {
			setAttr(n, "rel", "noopener noreferrer")
		}
	})
}
