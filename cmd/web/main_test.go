package main

import (
	"context"
	"io/fs"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/agrotern2025/agrotern/internal/cart"
	"github.com/agrotern2025/agrotern/internal/platform/config"
)

func TestNewCartStorageMemory(t *testing.T) {
	hub := cart.NewHub(nil)
	defer hub.Close()

	backend, notifier, closeFn, err := newCartStorage(context.Background(), config.StorageConfig{Backend: config.BackendMemory}, hub, zap.NewNop())
	require.NoError(t, err)
	defer closeFn()

	require.IsType(t, &cart.MemoryBackend{}, backend)
	require.Same(t, hub, notifier)
}

func TestNewCartStorageRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	hub := cart.NewHub(nil)
	defer hub.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	backend, notifier, closeFn, err := newCartStorage(ctx, config.StorageConfig{
		Backend:  config.BackendRedis,
		RedisURL: "redis://" + mr.Addr(),
		Prefix:   "test",
	}, hub, zap.NewNop())
	require.NoError(t, err)
	defer closeFn()

	require.IsType(t, &cart.RedisBackend{}, backend)
	require.Same(t, backend, notifier)
}

func TestNewCartStorageRedisUnreachable(t *testing.T) {
	hub := cart.NewHub(nil)
	defer hub.Close()

	_, _, _, err := newCartStorage(context.Background(), config.StorageConfig{
		Backend:  config.BackendRedis,
		RedisURL: "redis://127.0.0.1:1",
	}, hub, zap.NewNop())
	require.Error(t, err)
}

func TestTemplateFS(t *testing.T) {
	embedded := templateFS(config.DevConfig{})
	_, err := fs.Stat(embedded, "layouts/base.tmpl")
	require.NoError(t, err)

	dir := t.TempDir()
	devFS := templateFS(config.DevConfig{Enabled: true, TemplatesDir: dir})
	_, err = fs.Stat(devFS, "layouts/base.tmpl")
	require.Error(t, err)
}
