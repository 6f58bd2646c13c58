package dto

// CreateCommentRequest payload.
type CreateCommentRequest struct {
	Content string `json:"content" validate:"required"`
}
