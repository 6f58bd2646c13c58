package realtime

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/sales-service/internal/observability"
)

func TestLocalBusOfflineIsNoop(t *testing.T) {
	bus := NewLocalBus(NewRegistry(), observability.NewMetrics(), zap.NewNop())
	assert.NotPanics(t, func() {
		bus.Push(context.Background(), "nobody", Event{Type: EventNewNotification})
	})
}

func TestRedisBusDeliversAcrossInstances(t *testing.T) {
	mr := miniredis.RunT(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	publisherClient := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer publisherClient.Close()
	subscriberClient := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer subscriberClient.Close()

	// The instance holding the socket.
	holderRegistry := NewRegistry()
	holder := NewRedisBus(subscriberClient, "test:realtime", NewLocalBus(holderRegistry, nil, zap.NewNop()), zap.NewNop())
	sub, err := holder.Subscribe(ctx)
	require.NoError(t, err)
	go holder.Run(ctx, sub)

	conn, socket := authenticatedConn("u1")
	holderRegistry.Register("u1", conn)

	// A different instance with no sockets at all.
	other := NewRedisBus(publisherClient, "test:realtime", NewLocalBus(NewRegistry(), nil, zap.NewNop()), zap.NewNop())
	other.Push(ctx, "u1", Event{Type: EventNewMessage, Payload: map[string]string{"id": "m1"}})

	require.Eventually(t, func() bool { return len(socket.writes()) == 1 }, 2*time.Second, 10*time.Millisecond)
	got := socket.writes()[0].(Event)
	assert.Equal(t, EventNewMessage, got.Type)
	assert.JSONEq(t, `{"id":"m1"}`, string(got.Payload.(json.RawMessage)))
}
