package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"
)

const defaultRedisPrefix = "storefront"

// RedisBackend stores areas in Redis so several instances share carts. It
// also publishes changes on a channel that every instance's Relay reads.
type RedisBackend struct {
	client redis.UniversalClient
	prefix string
}

// NewRedisBackend wraps a connected client. Keys are namespaced by prefix.
func NewRedisBackend(client redis.UniversalClient, prefix string) *RedisBackend {
	prefix = strings.TrimRight(strings.TrimSpace(prefix), ":")
	if prefix == "" {
		prefix = defaultRedisPrefix
	}
	return &RedisBackend{client: client, prefix: prefix}
}

// Channel is the pub/sub channel changes are published on.
func (b *RedisBackend) Channel() string {
	return b.prefix + ":events"
}

// Area implements Backend.
func (b *RedisBackend) Area(id string) Area {
	return redisArea{backend: b, id: id}
}

// Publish implements Notifier by broadcasting the change to all instances.
func (b *RedisBackend) Publish(ctx context.Context, c Change) error {
	payload, err := json.Marshal(c)
	if err != nil {
		return err
	}
	if err := b.client.Publish(ctx, b.Channel(), payload).Err(); err != nil {
		return fmt.Errorf("publish cart change: %w", err)
	}
	return nil
}

func (b *RedisBackend) key(area, key string) string {
	return b.prefix + ":area:" + area + ":" + key
}

type redisArea struct {
	backend *RedisBackend
	id      string
}

func (a redisArea) GetItem(ctx context.Context, key string) (string, bool, error) {
	v, err := a.backend.client.Get(ctx, a.backend.key(a.id, key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return v, true, nil
}

func (a redisArea) SetItem(ctx context.Context, key, value string) error {
	return a.backend.client.Set(ctx, a.backend.key(a.id, key), value, 0).Err()
}

func (a redisArea) RemoveItem(ctx context.Context, key string) error {
	return a.backend.client.Del(ctx, a.backend.key(a.id, key)).Err()
}
