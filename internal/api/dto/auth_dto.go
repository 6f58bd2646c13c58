package dto

import "github.com/spec-kit/sales-service/internal/domain"

// RegisterRequest payload for self registration.
type RegisterRequest struct {
	UserID              string  `json:"userId" validate:"required"`
	Password            string  `json:"password" validate:"required,min=4"`
	Name                string  `json:"name" validate:"required"`
	Phone               string  `json:"phone"`
	Email               *string `json:"email" validate:"omitempty,email"`
	OrganizationRequest *string `json:"organizationRequest"`
}

// LoginRequest payload for login.
type LoginRequest struct {
	UserID   string `json:"userId" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// ChangePasswordRequest payload for password change.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,min=4"`
}

// AuthResponse is returned by login.
type AuthResponse struct {
	User  *domain.User `json:"user"`
	Token domain.Token `json:"auth"`
}
