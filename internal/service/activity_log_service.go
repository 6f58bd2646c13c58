package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/sales-service/internal/domain"
	"github.com/spec-kit/sales-service/internal/repository"
)

// Snapshot is a flat view of a record's tracked fields. Values must be
// comparable scalars (string, int, bool or nil).
type Snapshot map[string]any

// Diff returns one change per field in fields whose before and after values
// differ by strict inequality, in the order of fields.
func Diff(fields []string, before, after Snapshot) []domain.FieldChange {
	changes := []domain.FieldChange{}
	for _, f := range fields {
		from, to := before[f], after[f]
		if from != to {
			changes = append(changes, domain.FieldChange{Field: f, From: from, To: to})
		}
	}
	return changes
}

// ActivityLogService writes and reads the audit trail. Write failures are
// logged and swallowed so they never undo the audited mutation.
type ActivityLogService struct {
	logs   repository.ActivityLogRepository
	logger *zap.Logger
}

// NewActivityLogService constructs the service.
func NewActivityLogService(logs repository.ActivityLogRepository, logger *zap.Logger) *ActivityLogService {
	return &ActivityLogService{logs: logs, logger: logger}
}

// Record writes a single free-text entry.
func (s *ActivityLogService) Record(ctx context.Context, actor *domain.User, action domain.ActivityAction, entityType, entityID, message string) {
	entry := domain.ActivityLog{
		UserID:     actor.ID,
		UserName:   actor.Name,
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		Details:    domain.ActivityDetails{Message: message},
	}
	if err := s.logs.CreateBatch(ctx, []domain.ActivityLog{entry}); err != nil {
		s.logger.Warn("activity log write failed",
			zap.String("entity_type", entityType),
			zap.String("entity_id", entityID),
			zap.Error(err))
	}
}

// RecordChanges writes one UPDATE row per change in a single call. No changes, no write.
func (s *ActivityLogService) RecordChanges(ctx context.Context, actor *domain.User, entityType, entityID string, changes []domain.FieldChange) {
	if len(changes) == 0 {
		return
	}
	entries := make([]domain.ActivityLog, 0, len(changes))
	for _, ch := range changes {
		entries = append(entries, domain.ActivityLog{
			UserID:     actor.ID,
			UserName:   actor.Name,
			Action:     domain.ActivityUpdate,
			EntityType: entityType,
			EntityID:   entityID,
			Details:    domain.ActivityDetails{Field: ch.Field, From: ch.From, To: ch.To},
		})
	}
	if err := s.logs.CreateBatch(ctx, entries); err != nil {
		s.logger.Warn("activity log write failed",
			zap.String("entity_type", entityType),
			zap.String("entity_id", entityID),
			zap.Int("changes", len(changes)),
			zap.Error(err))
	}
}

// ListForEntity returns the trail newest first. entityType is case-insensitive.
func (s *ActivityLogService) ListForEntity(ctx context.Context, entityType, entityID string) ([]domain.ActivityLog, error) {
	return s.logs.ListByEntity(ctx, strings.ToUpper(entityType), entityID)
}
