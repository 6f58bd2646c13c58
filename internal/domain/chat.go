package domain

import "time"

// ChatRoom is either a 1:1 conversation or a named group.
type ChatRoom struct {
	ID        string    `json:"id"`
	Name      *string   `json:"name,omitempty"`
	IsGroup   bool      `json:"isGroup"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ChatMember is a room participant as shown to clients.
type ChatMember struct {
	UserID   string   `json:"userId"`
	Name     string   `json:"name"`
	UserType UserType `json:"userType"`
}

// ChatRoomView is a room with its members and message count.
type ChatRoomView struct {
	ChatRoom
	Members      []ChatMember `json:"members"`
	MessageCount int          `json:"messageCount"`
}

// MemberIDs returns the user ids of the room members.
func (v ChatRoomView) MemberIDs() []string {
	ids := make([]string, 0, len(v.Members))
	for _, m := range v.Members {
		ids = append(ids, m.UserID)
	}
	return ids
}

// ChatMessage is one message in a room.
type ChatMessage struct {
	ID         string    `json:"id"`
	RoomID     string    `json:"roomId"`
	SenderID   string    `json:"senderId"`
	SenderName string    `json:"senderName"`
	Content    *string   `json:"content,omitempty"`
	FileURL    *string   `json:"fileUrl,omitempty"`
	FileType   *string   `json:"fileType,omitempty"`
	FileName   *string   `json:"fileName,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}
