package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/agrotern2025/agrotern/internal/cart"
	"github.com/agrotern2025/agrotern/internal/catalog"
	"github.com/agrotern2025/agrotern/internal/chrome"
	"github.com/agrotern2025/agrotern/internal/httpserver"
	"github.com/agrotern2025/agrotern/internal/i18n"
	mw "github.com/agrotern2025/agrotern/internal/middleware"
	"github.com/agrotern2025/agrotern/internal/platform/config"
	"github.com/agrotern2025/agrotern/internal/platform/observability"
	"github.com/agrotern2025/agrotern/locales"
	"github.com/agrotern2025/agrotern/templates"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	baseLogger, err := observability.NewLogger(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialise logger: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = baseLogger.Sync()
	}()
	logger := baseLogger.Named("storefront")
	ctx = observability.WithLogger(ctx, logger)

	taxonomy, err := catalog.DefaultTaxonomy()
	if err != nil {
		logger.Fatal("failed to load taxonomy", zap.Error(err))
	}
	source, err := catalog.NewSource(cfg.Storefront.FeedURL, nil)
	if err != nil {
		logger.Fatal("failed to configure catalog feed", zap.Error(err))
	}
	feeds, err := catalog.NewCache(source, logger.Named("catalog"))
	if err != nil {
		logger.Fatal("failed to initialise catalog cache", zap.Error(err))
	}

	bundle, err := i18n.LoadFS(locales.FS, cfg.Storefront.DefaultLocale, cfg.Storefront.Locales)
	if err != nil {
		logger.Fatal("failed to load translations", zap.Error(err))
	}

	hub := cart.NewHub(logger.Named("hub"))

	carts, notifier, closeStorage, err := newCartStorage(ctx, cfg.Storage, hub, logger)
	if err != nil {
		logger.Fatal("failed to initialise cart storage", zap.Error(err))
	}
	defer closeStorage()

	renderer, err := httpserver.NewRenderer(templateFS(cfg.Dev), bundle, cfg.Dev.Enabled)
	if err != nil {
		logger.Fatal("failed to parse templates", zap.Error(err))
	}

	srv, err := httpserver.New(httpserver.Config{
		Server:    cfg.Server,
		SiteRoot:  cfg.Storefront.SiteRoot,
		PublicDir: cfg.Storefront.PublicDir,
		Catalog:   feeds,
		Taxonomy:  taxonomy,
		Images:    catalog.NewImageResolver(cfg.Storefront.SiteRoot, cfg.Storefront.ImageBase, cfg.Storefront.Placeholder),
		RichText:  catalog.NewRichText(),
		Carts:     carts,
		Notifier:  notifier,
		Hub:       hub,
		Bundle:    bundle,
		Chrome:    newChrome(cfg.Storefront, logger),
		Renderer:  renderer,
		Session: mw.SessionOptions{
			SigningKey: []byte(cfg.Session.SigningKey),
			Secure:     cfg.Session.Secure,
		},
		Logger: logger,
	})
	if err != nil {
		logger.Fatal("failed to build http server", zap.Error(err))
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("storefront listening",
			zap.String("addr", srv.Addr),
			zap.String("storage", cfg.Storage.Backend),
			zap.String("feed", cfg.Storefront.FeedURL),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
	case err, ok := <-errCh:
		if ok && err != nil {
			logger.Error("server error", zap.Error(err))
		}
	}
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	// Open event streams end once the hub closes their subscriptions.
	hub.Close()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("graceful shutdown failed", zap.Error(err))
	}
	logger.Info("server stopped")
}

func newCartStorage(ctx context.Context, cfg config.StorageConfig, hub *cart.Hub, logger *zap.Logger) (cart.Backend, cart.Notifier, func(), error) {
	if cfg.Backend != config.BackendRedis {
		return cart.NewMemoryBackend(), hub, func() {}, nil
	}

	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, nil, nil, fmt.Errorf("ping redis: %w", err)
	}

	backend := cart.NewRedisBackend(client, cfg.Prefix)
	relay := cart.NewRelay(client, backend.Channel(), hub, logger.Named("relay"))
	go func() {
		if err := relay.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("cart relay stopped", zap.Error(err))
		}
	}()

	closeFn := func() {
		if err := client.Close(); err != nil {
			logger.Warn("redis close error", zap.Error(err))
		}
	}
	// Writes reach other instances through the channel; the relay feeds them
	// back into the local hub.
	return backend, backend, closeFn, nil
}

func newChrome(cfg config.StorefrontConfig, logger *zap.Logger) *chrome.Loader {
	var source chrome.Source
	if strings.TrimSpace(cfg.PartialsURL) != "" {
		source = chrome.NewHTTPSource(cfg.PartialsURL, nil)
	} else {
		dir := filepath.Join(cfg.PublicDir, filepath.FromSlash(strings.Trim(cfg.SiteRoot, "/")), "template")
		source = chrome.FSSource{FS: os.DirFS(dir)}
	}
	return chrome.NewLoader(source,
		chrome.WithLogger(logger.Named("chrome")),
		chrome.WithSiteRoot("/"),
	)
}

func templateFS(cfg config.DevConfig) fs.FS {
	if cfg.Enabled && strings.TrimSpace(cfg.TemplatesDir) != "" {
		return os.DirFS(cfg.TemplatesDir)
	}
	return templates.FS
}
