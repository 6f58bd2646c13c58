package domain

import "time"

// NotificationType categorizes notifications.
type NotificationType string

const (
	NotificationNewUserPending       NotificationType = "NEW_USER_PENDING"
	NotificationNewUser              NotificationType = "NEW_USER"
	NotificationUserStatusUpdate     NotificationType = "USER_STATUS_UPDATE"
	NotificationUserProfileUpdate    NotificationType = "USER_PROFILE_UPDATE"
	NotificationNewCustomer          NotificationType = "NEW_CUSTOMER"
	NotificationCustomerStatusUpdate NotificationType = "CUSTOMER_STATUS_UPDATE"
	NotificationNewComment           NotificationType = "NEW_COMMENT"
	NotificationNewChatMessage       NotificationType = "NEW_CHAT_MESSAGE"
)

// Notification is immutable apart from IsRead.
type Notification struct {
	ID          string           `json:"id"`
	RecipientID string           `json:"recipientId"`
	Type        NotificationType `json:"type"`
	Message     string           `json:"message"`
	Link        *string          `json:"link,omitempty"`
	IsRead      bool             `json:"isRead"`
	CreatedAt   time.Time        `json:"createdAt"`
}
