package realtime

import (
	"errors"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
)

// State is the lifecycle of a socket.
type State int32

const (
	StateConnected State = iota
	StateAuthenticating
	StateAuthenticated
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateConnected:
		return "CONNECTED"
	case StateAuthenticating:
		return "AUTHENTICATING"
	case StateAuthenticated:
		return "AUTHENTICATED"
	default:
		return "CLOSED"
	}
}

// ErrNotAuthenticated is returned when writing to a socket that cannot receive pushes.
var ErrNotAuthenticated = errors.New("realtime: connection not authenticated")

// Socket is the transport the relay drives. The fiber websocket conn satisfies it.
type Socket interface {
	ReadMessage() (int, []byte, error)
	WriteJSON(v any) error
	Close() error
}

// Conn wraps a socket with its auth state and a write mutex to serialize writes.
type Conn struct {
	id     string
	socket Socket

	state  atomic.Int32
	userID atomic.Value

	writeMu   sync.Mutex
	closeOnce sync.Once
}

// NewConn wraps socket in the CONNECTED state.
func NewConn(socket Socket) *Conn {
	c := &Conn{id: uuid.NewString(), socket: socket}
	c.state.Store(int32(StateConnected))
	return c
}

// ID is unique per connection.
func (c *Conn) ID() string { return c.id }

// State returns the current lifecycle state.
func (c *Conn) State() State { return State(c.state.Load()) }

// UserID is empty until the connection is authenticated.
func (c *Conn) UserID() string {
	if v, ok := c.userID.Load().(string); ok {
		return v
	}
	return ""
}

func (c *Conn) transition(from, to State) bool {
	return c.state.CompareAndSwap(int32(from), int32(to))
}

// beginAuth moves CONNECTED to AUTHENTICATING. Only the first AUTH message wins.
func (c *Conn) beginAuth() bool {
	return c.transition(StateConnected, StateAuthenticating)
}

// authenticate binds the connection to userID and makes it pushable.
func (c *Conn) authenticate(userID string) bool {
	c.userID.Store(userID)
	return c.transition(StateAuthenticating, StateAuthenticated)
}

// Send writes event if the connection is AUTHENTICATED. A failed write closes it.
func (c *Conn) Send(event Event) error {
	if c.State() != StateAuthenticated {
		return ErrNotAuthenticated
	}
	c.writeMu.Lock()
	err := c.socket.WriteJSON(event)
	c.writeMu.Unlock()
	if err != nil {
		_ = c.Close()
		return err
	}
	return nil
}

// Close moves the connection to CLOSED and closes the socket once.
func (c *Conn) Close() error {
	c.state.Store(int32(StateClosed))
	var err error
	c.closeOnce.Do(func() {
		err = c.socket.Close()
	})
	return err
}
