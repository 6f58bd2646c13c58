package realtime

import "context"

// Server-pushed event types.
const (
	EventNewNotification = "NEW_NOTIFICATION"
	EventNewChatRoom     = "NEW_CHAT_ROOM"
	EventChatRoomDeleted = "CHAT_ROOM_DELETED"
	EventNewMessage      = "NEW_MESSAGE"
)

// MessageAuth is the only message clients send: {type:"AUTH", payload:<token>}.
const MessageAuth = "AUTH"

// Event is the wire shape of every push.
type Event struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

// Pusher delivers an event to a user if they are connected somewhere.
// Delivery is fire-and-forget: no queue, no retry, no acknowledgement.
type Pusher interface {
	Push(ctx context.Context, userID string, event Event)
}
