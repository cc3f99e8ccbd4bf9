package httpserver

import (
	"bytes"
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/agrotern2025/agrotern/internal/cart"
	"github.com/agrotern2025/agrotern/internal/chrome"
	mw "github.com/agrotern2025/agrotern/internal/middleware"
	"github.com/agrotern2025/agrotern/internal/nav"
	"github.com/agrotern2025/agrotern/internal/platform/httpx"
	"github.com/agrotern2025/agrotern/internal/platform/requestctx"
	"github.com/agrotern2025/agrotern/internal/seo"
)

// storageRetryAfter is announced on 503 responses from the catalog and cart stores.
const storageRetryAfter = 5 * time.Second

// PageData is the model of the base layout.
type PageData struct {
	Lang        string
	Title       string
	Description string
	Path        string
	SiteRoot    string
	CSRFToken   string
	Breadcrumbs []nav.Crumb
	SEO         seo.Meta
	Content     any
}

func (s *Server) pageData(r *http.Request, titleKey, descKey string, content any) PageData {
	lang := mw.Lang(r)
	title := s.cfg.Bundle.T(lang, titleKey)
	brand := s.cfg.Bundle.T(lang, "brand.name")
	if title != brand {
		title = title + " | " + brand
	}
	desc := s.cfg.Bundle.T(lang, descKey)
	data := PageData{
		Lang:        lang,
		Title:       title,
		Description: desc,
		Path:        r.URL.Path,
		SiteRoot:    s.cfg.SiteRoot,
		CSRFToken:   mw.CSRFToken(r),
		SEO: seo.NewMeta(r, brand, title, desc).
			WithImage(seo.AbsoluteURL(r, s.cfg.SiteRoot+"/img/hero.png")),
		Content: content,
	}
	data.SEO.OG.Locale = lang
	if r.URL.Path != "/" {
		data.Breadcrumbs = nav.Breadcrumbs(r.URL.Path)
	}
	return data
}

// withStructuredData appends the breadcrumb schema, then extra documents.
// It must run after the breadcrumbs are final.
func (s *Server) withStructuredData(r *http.Request, data *PageData, docs ...any) {
	if len(data.Breadcrumbs) > 0 {
		items := make([]seo.BreadcrumbItem, 0, len(data.Breadcrumbs))
		for _, c := range data.Breadcrumbs {
			label := c.Label
			if c.LabelKey != "" {
				label = s.cfg.Bundle.T(data.Lang, c.LabelKey)
			}
			items = append(items, seo.BreadcrumbItem{Name: label, Item: seo.AbsoluteURL(r, c.Href)})
		}
		data.SEO.JSONLD = append(data.SEO.JSONLD, seo.JSON(seo.BreadcrumbList(items)))
	}
	for _, doc := range docs {
		if script := seo.JSON(doc); script != "" {
			data.SEO.JSONLD = append(data.SEO.JSONLD, script)
		}
	}
}

// store binds the cart of the requesting visitor and tab.
func (s *Server) store(r *http.Request) *cart.Store {
	ctx := r.Context()
	visitor := mw.GetSession(r).ID
	origin := cart.Origin{Area: visitor, Tab: requestctx.Tab(ctx)}
	return cart.NewStore(s.cfg.Carts.Area(visitor), origin,
		cart.WithNotifier(s.cfg.Notifier),
		cart.WithLogger(requestctx.Logger(ctx)),
	)
}

func (s *Server) cartCount(ctx context.Context, store *cart.Store) int {
	sum, err := store.Summary(ctx)
	if err != nil {
		requestctx.Logger(ctx).Warn("cart summary failed", zap.Error(err))
		return 0
	}
	return sum.Count
}

// renderPage renders a full page and passes it through the chrome loader.
func (s *Server) renderPage(w http.ResponseWriter, r *http.Request, name string, data PageData) {
	ctx := r.Context()
	logger := requestctx.Logger(ctx)

	body, err := s.cfg.Renderer.Page(name, data)
	if err != nil {
		logger.Error("render page failed", zap.String("page", name), zap.Error(err))
		s.writeError(w, r, httpx.NewError("render_failed", "page could not be rendered", http.StatusInternalServerError))
		return
	}
	if s.cfg.Chrome != nil {
		composed, err := s.cfg.Chrome.Compose(ctx, body, chrome.Page{
			Path:      r.URL.Path,
			CartCount: s.cartCount(ctx, s.store(r)),
		})
		if err != nil {
			logger.Warn("chrome compose failed", zap.Error(err))
		} else {
			body = composed
		}
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(body)
}

// renderFragment executes a shared template into the response.
func (s *Server) renderFragment(w http.ResponseWriter, r *http.Request, name string, data any) {
	var buf bytes.Buffer
	if err := s.cfg.Renderer.Fragment(&buf, name, data); err != nil {
		requestctx.Logger(r.Context()).Error("render fragment failed", zap.String("fragment", name), zap.Error(err))
		s.writeError(w, r, httpx.NewError("render_failed", "fragment could not be rendered", http.StatusInternalServerError))
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err httpx.Error) {
	mw.WriteError(w, r, err)
}

func (s *Server) badRequest(w http.ResponseWriter, r *http.Request) {
	s.writeError(w, r, httpx.NewError("bad_request", s.cfg.Bundle.T(mw.Lang(r), "error.bad_request"), http.StatusBadRequest))
}

func (s *Server) storageFailed(w http.ResponseWriter, r *http.Request, err error) {
	requestctx.Logger(r.Context()).Error("cart storage failed", zap.Error(err))
	s.writeError(w, r, httpx.Unavailable("storage_unavailable", "cart storage is unavailable", storageRetryAfter))
}
