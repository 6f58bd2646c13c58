package realtime

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func verifyStub(token string) (string, error) {
	if token == "good-token" {
		return "u1", nil
	}
	return "", errors.New("bad token")
}

func serve(srv *Server, socket *fakeSocket) chan struct{} {
	done := make(chan struct{})
	go func() {
		srv.Serve(socket)
		close(done)
	}()
	return done
}

func TestHandshakeRegistersOnValidToken(t *testing.T) {
	reg := NewRegistry()
	srv := NewServer(reg, verifyStub, zap.NewNop())
	socket := newFakeSocket()
	done := serve(srv, socket)

	socket.in <- []byte(`{"type":"PING"}`)
	socket.in <- []byte(`not json`)
	socket.in <- []byte(`{"type":"AUTH","payload":"good-token"}`)

	require.Eventually(t, func() bool {
		_, ok := reg.Get("u1")
		return ok
	}, time.Second, 5*time.Millisecond)

	delivered, err := reg.Send("u1", Event{Type: EventNewChatRoom})
	require.NoError(t, err)
	assert.True(t, delivered)

	require.NoError(t, socket.Close())
	<-done
	assert.Zero(t, reg.Len(), "closing the socket unregisters it")
}

func TestHandshakeClosesOnInvalidToken(t *testing.T) {
	reg := NewRegistry()
	srv := NewServer(reg, verifyStub, zap.NewNop())
	socket := newFakeSocket()
	done := serve(srv, socket)

	socket.in <- []byte(`{"type":"AUTH","payload":"forged"}`)

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("server kept an unauthenticated socket open")
	}
	assert.True(t, socket.isClosed())
	assert.Zero(t, reg.Len())
}
