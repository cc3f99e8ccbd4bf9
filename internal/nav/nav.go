package nav

import (
	"net/url"
	"path"
	"strings"
)

// Item represents a top-level navigation item.
type Item struct {
	Path     string // e.g. "/products"
	LabelKey string // i18n key, e.g. "nav.products"
}

// Crumb represents a breadcrumb entry. If LabelKey is empty, use Label.
type Crumb struct {
	Href     string
	LabelKey string
	Label    string
	Active   bool
}

// Main is the primary navigation definition.
var Main = []Item{
	{Path: "/", LabelKey: "nav.home"},
	{Path: "/products", LabelKey: "nav.products"},
	{Path: "/cart", LabelKey: "nav.cart"},
}

// IsActive reports whether a link to href should be marked current on
// currentPath. Query strings and fragments are ignored, trailing slashes and
// "index.html" are normalised, and "/" only matches itself.
func IsActive(href, currentPath string) bool {
	if u, err := url.Parse(href); err == nil {
		if u.Host != "" {
			return false
		}
		href = u.Path
	}
	if href == "" {
		return false
	}
	item := normalize(href)
	current := normalize(currentPath)
	if item == "/" {
		return current == "/"
	}
	return current == item || strings.HasPrefix(current, item+"/")
}

func normalize(p string) string {
	if p == "" {
		return "/"
	}
	p = path.Clean("/" + strings.TrimPrefix(p, "/"))
	p = strings.TrimSuffix(p, "/index.html")
	if p == "" {
		return "/"
	}
	return p
}

// Breadcrumbs builds breadcrumb entries for the current path. Labels for
// deeper segments come from the caller through extra, in order.
func Breadcrumbs(currentPath string, extra ...Crumb) []Crumb {
	current := normalize(currentPath)
	crumbs := []Crumb{{Href: "/", LabelKey: "nav.home", Active: current == "/" && len(extra) == 0}}
	if current == "/" {
		return appendExtra(crumbs, extra)
	}
	for _, it := range Main {
		if it.Path != "/" && IsActive(it.Path, current) {
			crumbs = append(crumbs, Crumb{Href: it.Path, LabelKey: it.LabelKey, Active: len(extra) == 0})
			return appendExtra(crumbs, extra)
		}
	}
	seg := strings.TrimPrefix(current, "/")
	if i := strings.IndexByte(seg, '/'); i >= 0 {
		seg = seg[:i]
	}
	crumbs = append(crumbs, Crumb{Href: "/" + seg, Label: titleFromSegment(seg), Active: len(extra) == 0})
	return appendExtra(crumbs, extra)
}

func appendExtra(crumbs, extra []Crumb) []Crumb {
	for i, c := range extra {
		c.Active = i == len(extra)-1
		crumbs = append(crumbs, c)
	}
	return crumbs
}

func titleFromSegment(seg string) string {
	if seg == "" {
		return seg
	}
	s := strings.ReplaceAll(seg, "-", " ")
	s = strings.ReplaceAll(s, "_", " ")
	r := []rune(s)
	r[0] = toUpper(r[0])
	return string(r)
}

func toUpper(r rune) rune {
	// ASCII only is sufficient for slugs here
	if r >= 'a' && r <= 'z' {
		return r - ('a' - 'A')
	}
	return r
}
