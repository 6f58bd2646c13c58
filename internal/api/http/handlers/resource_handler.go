package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/sales-service/internal/service"
)

// ResourceHandler manages the file library.
type ResourceHandler struct {
	resources *service.ResourceService
}

// NewResourceHandler constructs handler.
func NewResourceHandler(resourceService *service.ResourceService) *ResourceHandler {
	return &ResourceHandler{resources: resourceService}
}

func (h *ResourceHandler) List(c *fiber.Ctx) error {
	items, err := h.resources.List(c.UserContext())
	if err != nil {
		return err
	}
	return respond(c, items)
}

// Create POST /api/resources (multipart: title, description, file).
func (h *ResourceHandler) Create(c *fiber.Ctx) error {
	actor, err := currentUser(c)
	if err != nil {
		return err
	}
	up, closeFn, err := formUpload(c, "file")
	if err != nil {
		return err
	}
	defer closeFn()
	res, err := h.resources.Create(c.UserContext(), actor, c.FormValue("title"), optionalForm(c, "description"), up)
	if err != nil {
		return err
	}
	return created(c, res)
}

func (h *ResourceHandler) Delete(c *fiber.Ctx) error {
	if err := h.resources.Delete(c.UserContext(), c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}
