package dto

import "github.com/spec-kit/sales-service/internal/domain"

// ApproveUserRequest identifies a pending account by login id.
type ApproveUserRequest struct {
	UserID string `json:"userId" validate:"required"`
}

// CreateUserRequest payload for admin account creation.
type CreateUserRequest struct {
	UserID       string          `json:"userId" validate:"required"`
	Password     string          `json:"password"`
	Name         string          `json:"name" validate:"required"`
	Phone        string          `json:"phone"`
	Email        *string         `json:"email"`
	UserType     domain.UserType `json:"userType" validate:"required"`
	DepartmentID *string         `json:"departmentId"`
	TeamID       *string         `json:"teamId"`
	ManagerID    *string         `json:"managerId"`
}

// UpdateStatusRequest changes an account status.
type UpdateStatusRequest struct {
	Status domain.UserStatus `json:"status" validate:"required"`
}

// UpdateUserTypeRequest changes an account role.
type UpdateUserTypeRequest struct {
	UserType domain.UserType `json:"userType" validate:"required"`
}

// SetManagerRequest sets or clears the manager. A null managerId clears it.
type SetManagerRequest struct {
	ManagerID *string `json:"managerId"`
}

// AssignOrgRequest places a user in a department and team.
type AssignOrgRequest struct {
	DepartmentID *string `json:"departmentId"`
	TeamID       *string `json:"teamId"`
}

// CreateDepartmentRequest payload.
type CreateDepartmentRequest struct {
	Name string `json:"name" validate:"required"`
}

// CreateTeamRequest payload.
type CreateTeamRequest struct {
	Name         string `json:"name" validate:"required"`
	DepartmentID string `json:"departmentId" validate:"required"`
}
