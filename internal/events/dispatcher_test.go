package events

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublishRunsAllHandlersAndJoinsErrors(t *testing.T) {
	d := NewInMemoryDispatcher()
	errA, errB := errors.New("a"), errors.New("b")
	var calls int
	var seen Event
	d.Subscribe(EventCommentAdded, func(_ context.Context, e Event) error { calls++; seen = e; return errA })
	d.Subscribe(EventCommentAdded, func(context.Context, Event) error { calls++; return nil })
	d.Subscribe(EventCommentAdded, func(context.Context, Event) error { calls++; return errB })
	d.Subscribe(EventUserCreated, func(context.Context, Event) error { t.Fatal("wrong type dispatched"); return nil })

	err := d.Publish(context.Background(), Event{Type: EventCommentAdded})
	require.Error(t, err)
	assert.ErrorIs(t, err, errA)
	assert.ErrorIs(t, err, errB)
	assert.Equal(t, 3, calls)
	assert.NotEmpty(t, seen.ID)
	assert.False(t, seen.Timestamp.IsZero())
}

func TestPublishWithoutHandlers(t *testing.T) {
	assert.NoError(t, NewInMemoryDispatcher().Publish(context.Background(), Event{Type: EventUserCreated}))
}
