package realtime

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spec-kit/sales-service/internal/observability"
)

// LocalBus pushes straight into this process's registry.
type LocalBus struct {
	registry *Registry
	metrics  *observability.Metrics
	logger   *zap.Logger
}

// NewLocalBus builds a single-instance pusher.
func NewLocalBus(registry *Registry, metrics *observability.Metrics, logger *zap.Logger) *LocalBus {
	return &LocalBus{registry: registry, metrics: metrics, logger: logger}
}

// Push implements Pusher.
func (b *LocalBus) Push(_ context.Context, userID string, event Event) {
	b.deliver(userID, event)
}

func (b *LocalBus) deliver(userID string, event Event) {
	delivered, err := b.registry.Send(userID, event)
	switch {
	case err != nil:
		b.metrics.RecordPush(event.Type, observability.PushFailed)
		b.logger.Warn("realtime push failed", zap.String("user_id", userID), zap.String("event", event.Type), zap.Error(err))
	case delivered:
		b.metrics.RecordPush(event.Type, observability.PushDelivered)
	default:
		b.metrics.RecordPush(event.Type, observability.PushOffline)
	}
}

type envelope struct {
	UserID string          `json:"userId"`
	Type   string          `json:"type"`
	Data   json.RawMessage `json:"payload"`
}

// RedisBus fans pushes out over redis pub/sub so that whichever instance
// holds the user's socket delivers it.
type RedisBus struct {
	client  *redis.Client
	channel string
	local   *LocalBus
	logger  *zap.Logger
}

// NewRedisBus wraps a local bus with a shared channel.
func NewRedisBus(client *redis.Client, channel string, local *LocalBus, logger *zap.Logger) *RedisBus {
	return &RedisBus{client: client, channel: channel, local: local, logger: logger}
}

// Push implements Pusher by publishing an envelope. Publish errors are logged only.
func (b *RedisBus) Push(ctx context.Context, userID string, event Event) {
	data, err := json.Marshal(event.Payload)
	if err != nil {
		b.logger.Warn("realtime payload encode failed", zap.String("event", event.Type), zap.Error(err))
		return
	}
	raw, err := json.Marshal(envelope{UserID: userID, Type: event.Type, Data: data})
	if err != nil {
		return
	}
	if err := b.client.Publish(ctx, b.channel, raw).Err(); err != nil {
		b.local.metrics.RecordPush(event.Type, observability.PushFailed)
		b.logger.Warn("realtime publish failed", zap.String("user_id", userID), zap.String("event", event.Type), zap.Error(err))
	}
}

// Subscribe attaches to the channel and returns once the subscription is
// confirmed. Run must then be called to deliver messages.
func (b *RedisBus) Subscribe(ctx context.Context) (*redis.PubSub, error) {
	sub := b.client.Subscribe(ctx, b.channel)
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, err
	}
	return sub, nil
}

// Run forwards envelopes from sub to the local registry until ctx ends.
func (b *RedisBus) Run(ctx context.Context, sub *redis.PubSub) {
	defer sub.Close()
	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			var env envelope
			if err := json.Unmarshal([]byte(msg.Payload), &env); err != nil {
				b.logger.Warn("realtime envelope decode failed", zap.Error(err))
				continue
			}
			b.local.deliver(env.UserID, Event{Type: env.Type, Payload: env.Data})
		}
	}
}
