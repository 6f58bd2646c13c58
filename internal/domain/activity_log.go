package domain

import "time"

// ActivityAction is the kind of mutation being logged.
type ActivityAction string

const (
	ActivityCreate ActivityAction = "CREATE"
	ActivityUpdate ActivityAction = "UPDATE"
	ActivityDelete ActivityAction = "DELETE"
)

// Entity types that carry an audit trail.
const (
	EntityUser     = "USER"
	EntityCustomer = "CUSTOMER"
)

// FieldChange is one entry of a structured diff.
type FieldChange struct {
	Field string `json:"field"`
	From  any    `json:"from"`
	To    any    `json:"to"`
}

// ActivityDetails is either a field change or a free-text message.
type ActivityDetails struct {
	Field   string `json:"field,omitempty"`
	From    any    `json:"from,omitempty"`
	To      any    `json:"to,omitempty"`
	Message string `json:"message,omitempty"`
}

// ActivityLog is an append-only audit row.
type ActivityLog struct {
	ID         string          `json:"id"`
	UserID     string          `json:"userId"`
	UserName   string          `json:"userName"`
	Action     ActivityAction  `json:"action"`
	EntityType string          `json:"entityType"`
	EntityID   string          `json:"entityId"`
	Details    ActivityDetails `json:"details"`
	Timestamp  time.Time       `json:"timestamp"`
}
