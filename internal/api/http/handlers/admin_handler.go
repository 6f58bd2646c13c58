package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/sales-service/internal/api/dto"
	"github.com/spec-kit/sales-service/internal/domain"
	"github.com/spec-kit/sales-service/internal/repository"
	"github.com/spec-kit/sales-service/internal/service"
	apperrors "github.com/spec-kit/sales-service/pkg/util/errorutil"
)

// AdminHandler manages /api/admin/users.
type AdminHandler struct {
	admin *service.AdminService
}

// NewAdminHandler constructs handler.
func NewAdminHandler(adminService *service.AdminService) *AdminHandler {
	return &AdminHandler{admin: adminService}
}

// ListUsers GET /api/admin/users.
func (h *AdminHandler) ListUsers(c *fiber.Ctx) error {
	filter := repository.UserListFilter{
		DepartmentID: optionalQuery(c, "departmentId"),
		TeamID:       optionalQuery(c, "teamId"),
		SortField:    c.Query("sortField"),
		SortOrder:    c.Query("sortOrder"),
	}
	if raw := optionalQuery(c, "status"); raw != nil {
		status := domain.UserStatus(strings.ToUpper(*raw))
		if !status.Valid() {
			return apperrors.NewValidationError("잘못된 상태값입니다.", map[string]any{"status": *raw})
		}
		filter.Status = &status
	}
	users, err := h.admin.ListUsers(c.UserContext(), filter)
	if err != nil {
		return err
	}
	return respond(c, users)
}

// Approve POST /api/admin/users/approve.
func (h *AdminHandler) Approve(c *fiber.Ctx) error {
	actor, err := currentUser(c)
	if err != nil {
		return err
	}
	var req dto.ApproveUserRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	user, err := h.admin.ApproveUser(c.UserContext(), actor, req.UserID)
	if err != nil {
		return err
	}
	return respond(c, user)
}

// CreateUser POST /api/admin/users.
func (h *AdminHandler) CreateUser(c *fiber.Ctx) error {
	actor, err := currentUser(c)
	if err != nil {
		return err
	}
	var req dto.CreateUserRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	user, err := h.admin.CreateUser(c.UserContext(), actor, service.CreateUserInput{
		UserID:       req.UserID,
		Password:     req.Password,
		Name:         req.Name,
		Phone:        req.Phone,
		Email:        req.Email,
		UserType:     req.UserType,
		DepartmentID: req.DepartmentID,
		TeamID:       req.TeamID,
		ManagerID:    req.ManagerID,
	})
	if err != nil {
		return err
	}
	return created(c, user)
}

// UpdateStatus PATCH /api/admin/users/:id/status.
func (h *AdminHandler) UpdateStatus(c *fiber.Ctx) error {
	actor, err := currentUser(c)
	if err != nil {
		return err
	}
	var req dto.UpdateStatusRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	user, err := h.admin.UpdateUserStatus(c.UserContext(), actor, c.Params("id"), req.Status)
	if err != nil {
		return err
	}
	return respond(c, user)
}

// UpdateType PATCH /api/admin/users/:id/type.
func (h *AdminHandler) UpdateType(c *fiber.Ctx) error {
	actor, err := currentUser(c)
	if err != nil {
		return err
	}
	var req dto.UpdateUserTypeRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	user, err := h.admin.UpdateUserType(c.UserContext(), actor, c.Params("id"), req.UserType)
	if err != nil {
		return err
	}
	return respond(c, user)
}

// SetManager PATCH /api/admin/users/:id/manager.
func (h *AdminHandler) SetManager(c *fiber.Ctx) error {
	actor, err := currentUser(c)
	if err != nil {
		return err
	}
	var req dto.SetManagerRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	user, err := h.admin.SetManager(c.UserContext(), actor, c.Params("id"), req.ManagerID)
	if err != nil {
		return err
	}
	return respond(c, user)
}

// AssignOrg PATCH /api/admin/users/:id/organization.
func (h *AdminHandler) AssignOrg(c *fiber.Ctx) error {
	actor, err := currentUser(c)
	if err != nil {
		return err
	}
	var req dto.AssignOrgRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	user, err := h.admin.AssignOrg(c.UserContext(), actor, c.Params("id"), req.DepartmentID, req.TeamID)
	if err != nil {
		return err
	}
	return respond(c, user)
}

// Customers GET /api/admin/users/:id/customers.
func (h *AdminHandler) Customers(c *fiber.Ctx) error {
	result, err := h.admin.CustomersByRegistrant(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return respond(c, result)
}
