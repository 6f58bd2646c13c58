package dto

import "github.com/spec-kit/sales-service/internal/domain"

// CreateCustomerRequest payload.
type CreateCustomerRequest struct {
	Name               string                 `json:"name" validate:"required"`
	Phone              string                 `json:"phone" validate:"required"`
	Status             *domain.CustomerStatus `json:"status"`
	Potential          *domain.Potential      `json:"potential"`
	Notes              *string                `json:"notes"`
	InterestedProperty *string                `json:"interestedProperty"`
	Source             *string                `json:"source"`
}

// UpdateCustomerRequest carries only the fields being changed.
type UpdateCustomerRequest struct {
	Name               *string                `json:"name"`
	Phone              *string                `json:"phone"`
	Status             *domain.CustomerStatus `json:"status"`
	Potential          *domain.Potential      `json:"potential"`
	Notes              *string                `json:"notes"`
	InterestedProperty *string                `json:"interestedProperty"`
	Source             *string                `json:"source"`
}
