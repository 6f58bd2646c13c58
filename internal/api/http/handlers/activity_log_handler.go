package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/sales-service/internal/auth"
	"github.com/spec-kit/sales-service/internal/domain"
	"github.com/spec-kit/sales-service/internal/service"
	apperrors "github.com/spec-kit/sales-service/pkg/util/errorutil"
)

// ActivityLogHandler serves the audit trail.
type ActivityLogHandler struct {
	logs      *service.ActivityLogService
	customers *service.CustomerService
}

// NewActivityLogHandler constructs handler.
func NewActivityLogHandler(logService *service.ActivityLogService, customerService *service.CustomerService) *ActivityLogHandler {
	return &ActivityLogHandler{logs: logService, customers: customerService}
}

// List GET /api/logs/:entityType/:entityId.
// Customer trails follow customer visibility; every other entity is admin only.
func (h *ActivityLogHandler) List(c *fiber.Ctx) error {
	actor, err := currentUser(c)
	if err != nil {
		return err
	}
	entityType := strings.ToUpper(c.Params("entityType"))
	entityID := c.Params("entityId")

	var logs []domain.ActivityLog
	if entityType == domain.EntityCustomer {
		logs, err = h.customers.History(c.UserContext(), actor, entityID)
	} else {
		if !auth.HasRole(actor.UserType, auth.AdminRoles) {
			return apperrors.NewForbidden("활동 기록을 볼 권한이 없습니다.")
		}
		logs, err = h.logs.ListForEntity(c.UserContext(), entityType, entityID)
	}
	if err != nil {
		return err
	}
	return respond(c, logs)
}
