package realtime

import (
	"errors"
	"sync"
)

var errSocketClosed = errors.New("socket closed")

// fakeSocket feeds queued client frames to ReadMessage and records writes.
type fakeSocket struct {
	in        chan []byte
	mu        sync.Mutex
	written   []any
	closed    bool
	failWrite bool
	closeOnce sync.Once
	done      chan struct{}
}

func newFakeSocket() *fakeSocket {
	return &fakeSocket{in: make(chan []byte, 8), done: make(chan struct{})}
}

func (s *fakeSocket) ReadMessage() (int, []byte, error) {
	select {
	case msg := <-s.in:
		return 1, msg, nil
	case <-s.done:
		return 0, nil, errSocketClosed
	}
}

func (s *fakeSocket) WriteJSON(v any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || s.failWrite {
		return errSocketClosed
	}
	s.written = append(s.written, v)
	return nil
}

func (s *fakeSocket) Close() error {
	s.closeOnce.Do(func() {
		s.mu.Lock()
		s.closed = true
		s.mu.Unlock()
		close(s.done)
	})
	return nil
}

func (s *fakeSocket) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

func (s *fakeSocket) writes() []any {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]any(nil), s.written...)
}

func authenticatedConn(userID string) (*Conn, *fakeSocket) {
	socket := newFakeSocket()
	conn := NewConn(socket)
	conn.beginAuth()
	conn.authenticate(userID)
	return conn, socket
}
