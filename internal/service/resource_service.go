package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/sales-service/internal/domain"
	"github.com/spec-kit/sales-service/internal/repository"
	"github.com/spec-kit/sales-service/internal/storage"
	apperrors "github.com/spec-kit/sales-service/pkg/util/errorutil"
)

// ResourceService runs the shared file library.
type ResourceService struct {
	resources repository.ResourceRepository
	storage   storage.Storage
	logger    *zap.Logger
}

// NewResourceService constructs the service.
func NewResourceService(resources repository.ResourceRepository, store storage.Storage, logger *zap.Logger) *ResourceService {
	return &ResourceService{resources: resources, storage: store, logger: logger}
}

func (s *ResourceService) List(ctx context.Context) ([]domain.Resource, error) {
	return s.resources.List(ctx)
}

// Create stores file and records it in the library.
func (s *ResourceService) Create(ctx context.Context, actor *domain.User, title string, description *string, file *Upload) (*domain.Resource, error) {
	if file == nil || file.Body == nil {
		return nil, apperrors.NewValidationError("파일이 필요합니다.", nil)
	}
	title = strings.TrimSpace(title)
	if title == "" {
		title = file.Name
	}
	stored, err := saveUpload(ctx, s.storage, file)
	if err != nil {
		return nil, err
	}
	res := &domain.Resource{
		Title:       title,
		Description: trimmedOrNil(description),
		FilePath:    stored.URL,
		FileType:    stored.Type,
		FileSize:    stored.Size,
		AuthorID:    actor.ID,
	}
	if err := s.resources.Create(ctx, res); err != nil {
		if delErr := s.storage.Delete(ctx, stored.URL); delErr != nil {
			s.logger.Warn("orphaned upload", zap.String("path", stored.URL), zap.Error(delErr))
		}
		return nil, err
	}
	return res, nil
}

// Delete removes the library row. A failure to remove the stored file is
// logged and does not keep the row.
func (s *ResourceService) Delete(ctx context.Context, id string) error {
	res, err := s.resources.GetByID(ctx, id)
	if err != nil {
		return notFoundAs(err, "자료를 찾을 수 없습니다.")
	}
	if err := s.storage.Delete(ctx, res.FilePath); err != nil {
		s.logger.Warn("resource file removal failed", zap.String("resource_id", id), zap.String("path", res.FilePath), zap.Error(err))
	}
	return notFoundAs(s.resources.Delete(ctx, id), "자료를 찾을 수 없습니다.")
}
