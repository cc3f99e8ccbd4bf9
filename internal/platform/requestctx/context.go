package requestctx

import (
	"context"

	"go.uber.org/zap"
)

type contextKey string

const (
	loggerContextKey contextKey = "github.com/agrotern2025/agrotern/internal/platform/requestctx/logger"
	tabContextKey    contextKey = "github.com/agrotern2025/agrotern/internal/platform/requestctx/tab"
)

var noopLogger = zap.NewNop()

// WithLogger stores the logger in context for downstream consumers.
func WithLogger(ctx context.Context, logger *zap.Logger) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	if logger == nil {
		logger = noopLogger
	}
	return context.WithValue(ctx, loggerContextKey, logger)
}

// Logger retrieves the zap logger from context or returns a no-op logger.
func Logger(ctx context.Context) *zap.Logger {
	if ctx == nil {
		return noopLogger
	}
	if logger, ok := ctx.Value(loggerContextKey).(*zap.Logger); ok && logger != nil {
		return logger
	}
	return noopLogger
}

// NoopLogger exposes the shared noop logger instance used across the package.
func NoopLogger() *zap.Logger { return noopLogger }

// WithTab records the browser tab that issued the request.
func WithTab(ctx context.Context, tab string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, tabContextKey, tab)
}

// Tab returns the tab identifier attached to the context, if any.
func Tab(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	tab, _ := ctx.Value(tabContextKey).(string)
	return tab
}
