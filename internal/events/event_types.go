package events

import (
	"time"

	"github.com/spec-kit/sales-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventUserRegistered        EventType = "user_registered"
	EventUserCreated           EventType = "user_created"
	EventUserStatusChanged     EventType = "user_status_changed"
	EventUserOrgAssigned       EventType = "user_org_assigned"
	EventCustomerCreated       EventType = "customer_created"
	EventCustomerStatusChanged EventType = "customer_status_changed"
	EventCommentAdded          EventType = "comment_added"
	EventChatMessageSent       EventType = "chat_message_sent"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID        string    `json:"id"`
	Type      EventType `json:"type"`
	ActorID   string    `json:"actor_id"`
	Timestamp time.Time `json:"timestamp"`
	Payload   any       `json:"payload"`
}

// UserRegisteredPayload is published when someone signs up.
type UserRegisteredPayload struct {
	UserID              string  `json:"user_id"`
	Name                string  `json:"name"`
	OrganizationRequest *string `json:"organization_request,omitempty"`
}

// UserCreatedPayload is published when an admin creates an account.
type UserCreatedPayload struct {
	UserID string `json:"user_id"`
	Name   string `json:"name"`
}

// UserStatusChangedPayload payload.
type UserStatusChangedPayload struct {
	UserID    string            `json:"user_id"`
	NewStatus domain.UserStatus `json:"new_status"`
}

// UserOrgAssignedPayload payload.
type UserOrgAssignedPayload struct {
	UserID       string  `json:"user_id"`
	DepartmentID *string `json:"department_id,omitempty"`
	TeamID       *string `json:"team_id,omitempty"`
}

// CustomerCreatedPayload payload.
type CustomerCreatedPayload struct {
	CustomerID   string  `json:"customer_id"`
	CustomerName string  `json:"customer_name"`
	CreatorName  string  `json:"creator_name"`
	ManagerID    *string `json:"manager_id,omitempty"`
}

// CustomerStatusChangedPayload payload.
type CustomerStatusChangedPayload struct {
	CustomerID   string                `json:"customer_id"`
	CustomerName string                `json:"customer_name"`
	RegistrantID string                `json:"registrant_id"`
	ManagerID    *string               `json:"manager_id,omitempty"`
	OldStatus    domain.CustomerStatus `json:"old_status"`
	NewStatus    domain.CustomerStatus `json:"new_status"`
}

// CommentAddedPayload payload.
type CommentAddedPayload struct {
	PostID       string `json:"post_id"`
	PostTitle    string `json:"post_title"`
	PostAuthorID string `json:"post_author_id"`
	AuthorName   string `json:"author_name"`
}

// ChatMessageSentPayload payload.
type ChatMessageSentPayload struct {
	RoomID     string   `json:"room_id"`
	RoomName   string   `json:"room_name"`
	MessageID  string   `json:"message_id"`
	SenderName string   `json:"sender_name"`
	MemberIDs  []string `json:"member_ids"`
}
