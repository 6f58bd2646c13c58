package handlers

import (
	"path/filepath"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/sales-service/internal/storage"
	apperrors "github.com/spec-kit/sales-service/pkg/util/errorutil"
)

// UploadsHandler streams stored files back under the public prefix.
type UploadsHandler struct {
	store  storage.Storage
	logger *zap.Logger
}

// NewUploadsHandler constructs handler.
func NewUploadsHandler(store storage.Storage, logger *zap.Logger) *UploadsHandler {
	return &UploadsHandler{store: store, logger: logger}
}

// Serve GET <prefix>/*.
func (h *UploadsHandler) Serve(c *fiber.Ctx) error {
	body, err := h.store.Open(c.UserContext(), c.Path())
	if err != nil {
		h.logger.Debug("upload not served", zap.String("path", c.Path()), zap.Error(err))
		return apperrors.NewNotFound("파일을 찾을 수 없습니다.", nil)
	}
	if ext := filepath.Ext(c.Path()); ext != "" {
		c.Type(ext)
	}
	return c.SendStream(body)
}
