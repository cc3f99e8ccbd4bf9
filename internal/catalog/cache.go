package catalog

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/agrotern2025/agrotern/internal/platform/observability"
)

const feedFetchTimeout = 20 * time.Second

var errSourceRequired = errors.New("catalog cache: source is required")

// Cache fetches the feed once and memoizes it for its own lifetime. A failed
// fetch is not memoized.
type Cache struct {
	source Source
	logger *zap.Logger
	flight singleflight.Group

	mu    sync.RWMutex
	feed  *Feed
	index *Index
}

// NewCache wraps a feed source.
func NewCache(source Source, logger *zap.Logger) (*Cache, error) {
	if source == nil {
		return nil, errSourceRequired
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Cache{source: source, logger: logger}, nil
}

// Load returns the memoized feed, fetching it on first use. Concurrent first
// callers share a single fetch. The shared fetch is detached from the caller
// that started it and bounded by feedFetchTimeout; each caller still stops
// waiting when its own context ends.
func (c *Cache) Load(ctx context.Context) (*Feed, error) {
	if feed, _ := c.cached(); feed != nil {
		return feed, nil
	}
	ch := c.flight.DoChan("feed", func() (any, error) {
		if feed, _ := c.cached(); feed != nil {
			return feed, nil
		}
		fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), feedFetchTimeout)
		defer cancel()
		return c.fetch(fetchCtx)
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*Feed), nil
	}
}

// Index returns the product index of the memoized feed.
func (c *Cache) Index(ctx context.Context) (*Index, error) {
	if _, err := c.Load(ctx); err != nil {
		return nil, err
	}
	_, idx := c.cached()
	return idx, nil
}

func (c *Cache) cached() (*Feed, *Index) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.feed, c.index
}

func (c *Cache) fetch(ctx context.Context) (*Feed, error) {
	ctx, span := observability.Tracer().Start(ctx, "catalog.fetch_feed")
	defer span.End()

	raw, err := c.source.Fetch(ctx)
	if err != nil {
		var fe *FetchError
		if errors.As(err, &fe) {
			span.SetAttributes(attribute.Int("http.status_code", fe.Status))
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "feed fetch failed")
		c.logger.Error("catalog feed fetch failed", zap.Error(err))
		return nil, err
	}
	feed, err := DecodeFeed(raw)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "feed decode failed")
		c.logger.Error("catalog feed decode failed", zap.Error(err))
		return nil, err
	}
	idx := NewIndex(feed)
	span.SetAttributes(attribute.Int("catalog.groups", len(feed.Groups)), attribute.Int("catalog.products", idx.Len()))

	c.mu.Lock()
	c.feed = feed
	c.index = idx
	c.mu.Unlock()

	c.logger.Info("catalog feed loaded", zap.Int("groups", len(feed.Groups)), zap.Int("products", idx.Len()))
	return feed, nil
}
