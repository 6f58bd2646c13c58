package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/sales-service/internal/service"
)

// NotificationHandler exposes the caller's notifications.
type NotificationHandler struct {
	notifications *service.NotificationService
}

// NewNotificationHandler constructs handler.
func NewNotificationHandler(notificationService *service.NotificationService) *NotificationHandler {
	return &NotificationHandler{notifications: notificationService}
}

// List GET /api/notifications?since=<RFC 3339>. Clients poll with since after reconnecting.
func (h *NotificationHandler) List(c *fiber.Ctx) error {
	actor, err := currentUser(c)
	if err != nil {
		return err
	}
	since, err := parseDate(c.Query("since"), false)
	if err != nil {
		return err
	}
	items, err := h.notifications.List(c.UserContext(), actor, since)
	if err != nil {
		return err
	}
	return respond(c, items)
}

// MarkRead PATCH /api/notifications/:id/read.
func (h *NotificationHandler) MarkRead(c *fiber.Ctx) error {
	actor, err := currentUser(c)
	if err != nil {
		return err
	}
	n, err := h.notifications.MarkRead(c.UserContext(), actor, c.Params("id"))
	if err != nil {
		return err
	}
	return respond(c, n)
}

// MarkAllRead PATCH /api/notifications/read-all.
func (h *NotificationHandler) MarkAllRead(c *fiber.Ctx) error {
	actor, err := currentUser(c)
	if err != nil {
		return err
	}
	count, err := h.notifications.MarkAllRead(c.UserContext(), actor)
	if err != nil {
		return err
	}
	return respond(c, fiber.Map{"updated": count})
}
