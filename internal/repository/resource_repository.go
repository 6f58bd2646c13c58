package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/sales-service/internal/domain"
)

// ResourceRepository persists file library entries.
type ResourceRepository interface {
	Create(ctx context.Context, res *domain.Resource) error
	GetByID(ctx context.Context, id string) (*domain.Resource, error)
	List(ctx context.Context) ([]domain.Resource, error)
	Delete(ctx context.Context, id string) error
}

type resourceRepository struct {
	pool *pgxpool.Pool
}

// NewResourceRepository constructs repository.
func NewResourceRepository(pool *pgxpool.Pool) ResourceRepository {
	return &resourceRepository{pool: pool}
}

func (r *resourceRepository) Create(ctx context.Context, res *domain.Resource) error {
	const query = `
        WITH inserted AS (
            INSERT INTO resources (title, description, file_path, file_type, file_size, author_id)
            VALUES ($1,$2,$3,$4,$5,$6)
            RETURNING id, created_at, author_id
        )
        SELECT i.id, i.created_at, u.name FROM inserted i JOIN users u ON u.id = i.author_id`
	return r.pool.QueryRow(ctx, query,
		res.Title,
		res.Description,
		res.FilePath,
		res.FileType,
		res.FileSize,
		res.AuthorID,
	).Scan(&res.ID, &res.CreatedAt, &res.AuthorName)
}

const resourceSelect = `
        SELECT r.id, r.title, r.description, r.file_path, r.file_type, r.file_size, r.author_id, u.name, r.created_at
        FROM resources r
        JOIN users u ON u.id = r.author_id`

func scanResource(row rowScanner) (domain.Resource, error) {
	var res domain.Resource
	err := row.Scan(&res.ID, &res.Title, &res.Description, &res.FilePath, &res.FileType, &res.FileSize, &res.AuthorID, &res.AuthorName, &res.CreatedAt)
	return res, err
}

func (r *resourceRepository) GetByID(ctx context.Context, id string) (*domain.Resource, error) {
	res, err := scanResource(r.pool.QueryRow(ctx, resourceSelect+` WHERE r.id=$1`, id))
	if err != nil {
		return nil, err
	}
	return &res, nil
}

func (r *resourceRepository) List(ctx context.Context) ([]domain.Resource, error) {
	rows, err := r.pool.Query(ctx, resourceSelect+` ORDER BY r.created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []domain.Resource{}
	for rows.Next() {
		res, err := scanResource(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, res)
	}
	return result, rows.Err()
}

func (r *resourceRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM resources WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
