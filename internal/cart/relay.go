package cart

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Relay forwards changes published on the Redis channel into the local Hub,
// so tabs connected to this instance hear about writes made anywhere.
type Relay struct {
	client  redis.UniversalClient
	channel string
	hub     *Hub
	logger  *zap.Logger

	readyOnce sync.Once
	ready     chan struct{}
}

// NewRelay constructs a relay for channel.
func NewRelay(client redis.UniversalClient, channel string, hub *Hub, logger *zap.Logger) *Relay {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Relay{client: client, channel: channel, hub: hub, logger: logger, ready: make(chan struct{})}
}

// Ready is closed once the subscription is confirmed.
func (r *Relay) Ready() <-chan struct{} { return r.ready }

// Run subscribes and forwards until ctx is done.
func (r *Relay) Run(ctx context.Context) error {
	ps := r.client.Subscribe(ctx, r.channel)
	defer ps.Close()

	if _, err := ps.Receive(ctx); err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("subscribe %s: %w", r.channel, err)
	}
	r.readyOnce.Do(func() { close(r.ready) })
	r.logger.Info("cart relay subscribed", zap.String("channel", r.channel))

	messages := ps.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-messages:
			if !ok {
				return nil
			}
			var c Change
			if err := json.Unmarshal([]byte(msg.Payload), &c); err != nil {
				r.logger.Warn("cart relay: bad payload", zap.Error(err))
				continue
			}
			_ = r.hub.Publish(ctx, c)
		}
	}
}
