package cart

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	srv := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return srv, client
}

func TestRedisBackendAreas(t *testing.T) {
	ctx := context.Background()
	srv, client := newRedis(t)
	backend := NewRedisBackend(client, "shop:")

	area := backend.Area("v1")
	_, ok, err := area.GetItem(ctx, Key)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, area.SetItem(ctx, Key, "[]"))
	got, err := srv.Get("shop:area:v1:" + Key)
	require.NoError(t, err)
	assert.Equal(t, "[]", got)

	v, ok, err := area.GetItem(ctx, Key)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "[]", v)

	_, ok, err = backend.Area("v2").GetItem(ctx, Key)
	require.NoError(t, err)
	assert.False(t, ok, "areas are isolated")

	require.NoError(t, area.RemoveItem(ctx, Key))
	assert.False(t, srv.Exists("shop:area:v1:"+Key))
	assert.Equal(t, "shop:events", backend.Channel())
}

func TestRedisStoreRelaysChanges(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	_, client := newRedis(t)
	backend := NewRedisBackend(client, "")

	hub := NewHub(nil)
	defer hub.Close()
	relay := NewRelay(client, backend.Channel(), hub, nil)

	done := make(chan error, 1)
	go func() { done <- relay.Run(ctx) }()
	select {
	case <-relay.Ready():
	case <-time.After(5 * time.Second):
		t.Fatal("relay did not subscribe")
	}

	own := hub.Subscribe("v1", "a")
	defer own.Close()
	other := hub.Subscribe("v1", "b")
	defer other.Close()

	store := NewStore(backend.Area("v1"), Origin{Area: "v1", Tab: "a"}, WithNotifier(backend))
	_, err := store.Add(ctx, peaA(), 2, UnknownStock)
	require.NoError(t, err)

	select {
	case ev := <-own.C():
		assert.Equal(t, EventChanged, ev.Kind)
	case <-time.After(5 * time.Second):
		t.Fatal("origin tab not notified")
	}
	select {
	case ev := <-other.C():
		assert.Equal(t, EventStorage, ev.Kind)
		assert.Equal(t, Key, ev.Key)
	case <-time.After(5 * time.Second):
		t.Fatal("other tab not notified")
	}

	items, err := store.Read(ctx)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, 2, items[0].Qty)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("relay did not stop")
	}
}
