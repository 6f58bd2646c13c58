package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/sales-service/internal/api/dto"
	"github.com/spec-kit/sales-service/internal/service"
)

// PostHandler manages the bulletin board.
type PostHandler struct {
	posts *service.PostService
}

// NewPostHandler constructs handler.
func NewPostHandler(postService *service.PostService) *PostHandler {
	return &PostHandler{posts: postService}
}

func (h *PostHandler) List(c *fiber.Ctx) error {
	posts, err := h.posts.List(c.UserContext())
	if err != nil {
		return err
	}
	return respond(c, posts)
}

func (h *PostHandler) Get(c *fiber.Ctx) error {
	post, err := h.posts.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return respond(c, post)
}

// Create POST /api/posts (multipart: title, content, optional file).
func (h *PostHandler) Create(c *fiber.Ctx) error {
	actor, err := currentUser(c)
	if err != nil {
		return err
	}
	up, closeFn, err := formUpload(c, "file")
	if err != nil {
		return err
	}
	defer closeFn()
	post, err := h.posts.Create(c.UserContext(), actor, service.PostCreateInput{
		Title:   c.FormValue("title"),
		Content: c.FormValue("content"),
		File:    up,
	})
	if err != nil {
		return err
	}
	return created(c, post)
}

func (h *PostHandler) Delete(c *fiber.Ctx) error {
	if err := h.posts.Delete(c.UserContext(), c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// AddComment POST /api/posts/:id/comments.
func (h *PostHandler) AddComment(c *fiber.Ctx) error {
	actor, err := currentUser(c)
	if err != nil {
		return err
	}
	var req dto.CreateCommentRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	comment, err := h.posts.AddComment(c.UserContext(), actor, c.Params("id"), req.Content)
	if err != nil {
		return err
	}
	return created(c, comment)
}
