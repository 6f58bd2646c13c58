package realtime

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConnStateMachine(t *testing.T) {
	conn := NewConn(newFakeSocket())
	assert.Equal(t, StateConnected, conn.State())
	assert.ErrorIs(t, conn.Send(Event{Type: EventNewMessage}), ErrNotAuthenticated)

	require.True(t, conn.beginAuth())
	assert.False(t, conn.beginAuth(), "only the first AUTH is processed")
	assert.Equal(t, StateAuthenticating, conn.State())

	require.True(t, conn.authenticate("u1"))
	assert.Equal(t, StateAuthenticated, conn.State())
	assert.Equal(t, "u1", conn.UserID())

	require.NoError(t, conn.Close())
	assert.Equal(t, StateClosed, conn.State())
	assert.Equal(t, "CLOSED", conn.State().String())
}

func TestRegistryLastConnectWins(t *testing.T) {
	reg := NewRegistry()
	first, firstSocket := authenticatedConn("u1")
	second, secondSocket := authenticatedConn("u1")

	reg.Register("u1", first)
	reg.Register("u1", second)

	assert.True(t, firstSocket.isClosed())
	assert.False(t, secondSocket.isClosed())
	got, ok := reg.Get("u1")
	require.True(t, ok)
	assert.Same(t, second, got)

	assert.False(t, reg.Unregister("u1", first), "stale close must not evict the newer connection")
	assert.Equal(t, 1, reg.Len())
	assert.True(t, reg.Unregister("u1", second))
	assert.Zero(t, reg.Len())
}

func TestRegistrySend(t *testing.T) {
	reg := NewRegistry()

	delivered, err := reg.Send("nobody", Event{Type: EventNewNotification})
	require.NoError(t, err)
	assert.False(t, delivered)

	conn, socket := authenticatedConn("u1")
	reg.Register("u1", conn)
	delivered, err = reg.Send("u1", Event{Type: EventNewNotification, Payload: "x"})
	require.NoError(t, err)
	assert.True(t, delivered)
	assert.Equal(t, []any{Event{Type: EventNewNotification, Payload: "x"}}, socket.writes())

	socket.mu.Lock()
	socket.failWrite = true
	socket.mu.Unlock()
	delivered, err = reg.Send("u1", Event{Type: EventNewNotification})
	assert.Error(t, err)
	assert.False(t, delivered)
	assert.Zero(t, reg.Len(), "failed write drops the entry")
}
