package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/sales-service/internal/domain"
)

// ActivityLogRepository stores audit entries.
type ActivityLogRepository interface {
	// CreateBatch writes all entries in one transaction.
	CreateBatch(ctx context.Context, entries []domain.ActivityLog) error
	ListByEntity(ctx context.Context, entityType, entityID string) ([]domain.ActivityLog, error)
}

type activityLogRepository struct {
	pool *pgxpool.Pool
}

// NewActivityLogRepository builds repository.
func NewActivityLogRepository(pool *pgxpool.Pool) ActivityLogRepository {
	return &activityLogRepository{pool: pool}
}

func (r *activityLogRepository) CreateBatch(ctx context.Context, entries []domain.ActivityLog) error {
	if len(entries) == 0 {
		return nil
	}
	const query = `
        INSERT INTO activity_logs (user_id, user_name, action, entity_type, entity_id, details)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING id, timestamp`
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		batch := &pgx.Batch{}
		for i := range entries {
			e := &entries[i]
			batch.Queue(query, e.UserID, e.UserName, e.Action, e.EntityType, e.EntityID, e.Details).
				QueryRow(func(row pgx.Row) error {
					return row.Scan(&e.ID, &e.Timestamp)
				})
		}
		return tx.SendBatch(ctx, batch).Close()
	})
}

func (r *activityLogRepository) ListByEntity(ctx context.Context, entityType, entityID string) ([]domain.ActivityLog, error) {
	const query = `
        SELECT id, user_id, user_name, action, entity_type, entity_id, details, timestamp
        FROM activity_logs WHERE entity_type=$1 AND entity_id=$2 ORDER BY timestamp DESC`
	rows, err := r.pool.Query(ctx, query, entityType, entityID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []domain.ActivityLog{}
	for rows.Next() {
		var entry domain.ActivityLog
		if err := rows.Scan(
			&entry.ID,
			&entry.UserID,
			&entry.UserName,
			&entry.Action,
			&entry.EntityType,
			&entry.EntityID,
			&entry.Details,
			&entry.Timestamp,
		); err != nil {
			return nil, err
		}
		result = append(result, entry)
	}
	return result, rows.Err()
}
