package realtime

import (
	"encoding/json"

	"go.uber.org/zap"
)

// TokenVerifier validates a bearer token and returns the account id.
type TokenVerifier func(token string) (string, error)

type clientMessage struct {
	Type    string `json:"type"`
	Payload string `json:"payload"`
}

// Server runs the per-socket protocol: wait for AUTH, register, then keep
// reading until the client goes away.
type Server struct {
	registry *Registry
	verify   TokenVerifier
	logger   *zap.Logger
}

// NewServer wires the handshake to a registry.
func NewServer(registry *Registry, verify TokenVerifier, logger *zap.Logger) *Server {
	return &Server{registry: registry, verify: verify, logger: logger}
}

// Serve blocks until the socket is closed. Messages other than AUTH are
// ignored; an invalid token closes the socket.
func (s *Server) Serve(socket Socket) {
	conn := NewConn(socket)
	defer func() {
		if userID := conn.UserID(); userID != "" && s.registry.Unregister(userID, conn) {
			s.logger.Debug("realtime client disconnected", zap.String("user_id", userID), zap.String("conn_id", conn.ID()))
		}
		_ = conn.Close()
	}()

	for {
		_, data, err := socket.ReadMessage()
		if err != nil {
			return
		}
		if conn.State() != StateConnected {
			continue
		}

		var msg clientMessage
		if err := json.Unmarshal(data, &msg); err != nil || msg.Type != MessageAuth {
			continue
		}
		if !conn.beginAuth() {
			continue
		}

		userID, err := s.verify(msg.Payload)
		if err != nil || userID == "" {
			s.logger.Debug("realtime auth rejected", zap.String("conn_id", conn.ID()), zap.Error(err))
			return
		}
		if !conn.authenticate(userID) {
			return
		}
		s.registry.Register(userID, conn)
		s.logger.Debug("realtime client authenticated", zap.String("user_id", userID), zap.String("conn_id", conn.ID()))
	}
}
