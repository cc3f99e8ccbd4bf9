// Package httpserver wires the storefront routes, middleware and views.
package httpserver

import (
	"errors"
	"io"
	"net/http"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/agrotern2025/agrotern/internal/cart"
	"github.com/agrotern2025/agrotern/internal/catalog"
	"github.com/agrotern2025/agrotern/internal/chrome"
	"github.com/agrotern2025/agrotern/internal/i18n"
	mw "github.com/agrotern2025/agrotern/internal/middleware"
	"github.com/agrotern2025/agrotern/internal/modal"
	"github.com/agrotern2025/agrotern/internal/platform/config"
)

const defaultRequestTimeout = 30 * time.Second

// Config holds the collaborators of the storefront HTTP server.
type Config struct {
	Server    config.ServerConfig
	SiteRoot  string
	PublicDir string

	Catalog  *catalog.Cache
	Taxonomy *catalog.Taxonomy
	Images   catalog.ImageResolver
	RichText *catalog.RichText

	// Carts stores each visitor's cart in the area named by the session id.
	Carts cart.Backend
	// Notifier receives every cart write. It defaults to Hub.
	Notifier cart.Notifier
	// Hub delivers change events to connected tabs.
	Hub *cart.Hub

	Bundle   *i18n.Bundle
	Chrome   *chrome.Loader
	Renderer *Renderer
	Session  mw.SessionOptions
	Logger   *zap.Logger

	RequestTimeout time.Duration
}

// Server serves the storefront.
type Server struct {
	cfg      Config
	logger   *zap.Logger
	validate *validator.Validate
	modals   modal.Builder
}

// New constructs the HTTP server with middleware stack and routes.
func New(cfg Config) (*http.Server, error) {
	handler, err := NewHandler(cfg)
	if err != nil {
		return nil, err
	}
	return &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           handler,
		ReadTimeout:       cfg.Server.ReadTimeout,
		ReadHeaderTimeout: cfg.Server.ReadHeaderTimeout,
		// The event stream is long-lived; per-request deadlines come from the
		// Timeout middleware on the other routes.
		WriteTimeout: 0,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}, nil
}

// NewHandler builds the router.
func NewHandler(cfg Config) (http.Handler, error) {
	switch {
	case cfg.Catalog == nil:
		return nil, errors.New("httpserver: catalog cache is required")
	case cfg.Carts == nil:
		return nil, errors.New("httpserver: cart backend is required")
	case cfg.Hub == nil:
		return nil, errors.New("httpserver: hub is required")
	case cfg.Bundle == nil:
		return nil, errors.New("httpserver: i18n bundle is required")
	case cfg.Renderer == nil:
		return nil, errors.New("httpserver: renderer is required")
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.Notifier == nil {
		cfg.Notifier = cfg.Hub
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = defaultRequestTimeout
	}
	cfg.SiteRoot = "/" + strings.Trim(cfg.SiteRoot, "/")

	s := &Server{
		cfg:      cfg,
		logger:   cfg.Logger,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		modals:   modal.Builder{Taxonomy: cfg.Taxonomy, Images: cfg.Images, RichText: cfg.RichText},
	}

	router := chi.NewRouter()
	router.Use(chimw.RequestID)
	// If deployed behind a trusted reverse proxy/load balancer, RealIP will use
	// X-Forwarded-For to determine the client IP.
	router.Use(chimw.RealIP)
	router.Use(mw.HTMX)
	router.Use(mw.Tab)
	router.Use(mw.Logger(cfg.Logger))
	router.Use(chimw.Recoverer)

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = io.WriteString(w, "ok")
	})

	if cfg.PublicDir != "" && cfg.SiteRoot != "/" {
		dir := filepath.Join(cfg.PublicDir, filepath.FromSlash(strings.TrimPrefix(cfg.SiteRoot, "/")))
		router.Handle(path.Join(cfg.SiteRoot, "*"), mw.AssetsWithCache(cfg.SiteRoot, dir))
	}

	router.Group(func(r chi.Router) {
		r.Use(mw.Session(cfg.Session))
		r.Use(mw.Locale(cfg.Bundle))
		r.Use(mw.CSRF)
		r.Use(mw.VaryLocale)

		// The event stream must not be buffered or cut off.
		r.Get("/events", s.Events)

		r.Group(func(r chi.Router) {
			r.Use(chimw.Compress(5))
			r.Use(chimw.Timeout(cfg.RequestTimeout))

			r.Get("/", s.Home)
			r.Get("/products", s.CatalogPage)
			RegisterFragment(r, "/products/grid", s.CatalogGrid)
			RegisterFragment(r, "/products/{id}/modal", s.ModalOpen)
			RegisterFragment(r, "/fragments/modal-close", s.ModalClose)
			r.Post("/products/{id}/modal/confirm", s.ModalConfirm)
			r.Post("/products/{id}/cart", s.AddToCart)

			r.Get("/cart", s.CartPage)
			RegisterFragment(r, "/cart/items", s.CartItems)
			r.Post("/cart/qty", s.CartSetQty)
			r.Post("/cart/remove", s.CartRemove)
			r.Post("/cart/clear", s.CartClear)

			r.Get("/fragments/cart-badge", s.CartBadge)
		})
	})

	return router, nil
}

// RegisterFragment registers a GET handler intended for htmx fragment rendering.
func RegisterFragment(r chi.Router, pattern string, handler http.HandlerFunc) {
	r.With(mw.RequireHTMX).Get(pattern, handler)
}
