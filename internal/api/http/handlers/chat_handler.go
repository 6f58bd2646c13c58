package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/sales-service/internal/api/dto"
	"github.com/spec-kit/sales-service/internal/service"
	apperrors "github.com/spec-kit/sales-service/pkg/util/errorutil"
)

// ChatHandler manages /api/chat.
type ChatHandler struct {
	chat *service.ChatService
}

// NewChatHandler constructs handler.
func NewChatHandler(chatService *service.ChatService) *ChatHandler {
	return &ChatHandler{chat: chatService}
}

// Targets GET /api/chat/targets.
func (h *ChatHandler) Targets(c *fiber.Ctx) error {
	actor, err := currentUser(c)
	if err != nil {
		return err
	}
	users, err := h.chat.Targets(c.UserContext(), actor)
	if err != nil {
		return err
	}
	return respond(c, users)
}

// Subordinates GET /api/chat/subordinates.
func (h *ChatHandler) Subordinates(c *fiber.Ctx) error {
	actor, err := currentUser(c)
	if err != nil {
		return err
	}
	users, err := h.chat.Subordinates(c.UserContext(), actor)
	if err != nil {
		return err
	}
	return respond(c, users)
}

// Rooms GET /api/chat/rooms.
func (h *ChatHandler) Rooms(c *fiber.Ctx) error {
	actor, err := currentUser(c)
	if err != nil {
		return err
	}
	rooms, err := h.chat.Rooms(c.UserContext(), actor)
	if err != nil {
		return err
	}
	return respond(c, rooms)
}

// CreateGroup POST /api/chat/rooms.
func (h *ChatHandler) CreateGroup(c *fiber.Ctx) error {
	actor, err := currentUser(c)
	if err != nil {
		return err
	}
	var req dto.CreateGroupRoomRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	room, err := h.chat.CreateGroupRoom(c.UserContext(), actor, req.Name, req.MemberIDs)
	if err != nil {
		return err
	}
	return created(c, room)
}

// OneOnOne POST /api/chat/rooms/direct.
func (h *ChatHandler) OneOnOne(c *fiber.Ctx) error {
	actor, err := currentUser(c)
	if err != nil {
		return err
	}
	var req dto.OneOnOneRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	room, err := h.chat.FindOrCreateOneOnOne(c.UserContext(), actor, req.TargetUserID)
	if err != nil {
		return err
	}
	return respond(c, room)
}

// DeleteRoom DELETE /api/chat/rooms/:id.
func (h *ChatHandler) DeleteRoom(c *fiber.Ctx) error {
	actor, err := currentUser(c)
	if err != nil {
		return err
	}
	if err := h.chat.DeleteRoom(c.UserContext(), actor, c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Messages GET /api/chat/rooms/:id/messages.
func (h *ChatHandler) Messages(c *fiber.Ctx) error {
	actor, err := currentUser(c)
	if err != nil {
		return err
	}
	messages, err := h.chat.Messages(c.UserContext(), actor, c.Params("id"))
	if err != nil {
		return err
	}
	return respond(c, messages)
}

// SendMessage POST /api/chat/messages with roomId in the body, or POST /api/chat/rooms/:id/messages.
func (h *ChatHandler) SendMessage(c *fiber.Ctx) error {
	actor, err := currentUser(c)
	if err != nil {
		return err
	}
	var req dto.SendMessageRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	roomID := c.Params("id")
	if roomID == "" {
		roomID = strings.TrimSpace(req.RoomID)
	}
	if roomID == "" {
		return apperrors.NewValidationError(msgInvalidFields, map[string]any{"roomId": "required"})
	}
	msg, err := h.chat.SendMessage(c.UserContext(), actor, roomID, service.MessageInput{
		Content:  req.Content,
		FileURL:  req.FileURL,
		FileType: req.FileType,
		FileName: req.FileName,
	})
	if err != nil {
		return err
	}
	return created(c, msg)
}

// DeleteMessage DELETE /api/chat/messages/:id.
func (h *ChatHandler) DeleteMessage(c *fiber.Ctx) error {
	actor, err := currentUser(c)
	if err != nil {
		return err
	}
	if err := h.chat.DeleteMessage(c.UserContext(), actor, c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Upload POST /api/chat/upload (multipart field "file").
func (h *ChatHandler) Upload(c *fiber.Ctx) error {
	up, closeFn, err := formUpload(c, "file")
	if err != nil {
		return err
	}
	defer closeFn()
	stored, err := h.chat.Upload(c.UserContext(), up)
	if err != nil {
		return err
	}
	return created(c, stored)
}
