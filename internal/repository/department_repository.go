package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/sales-service/internal/domain"
)

// DepartmentRepository handles department persistence.
type DepartmentRepository interface {
	Create(ctx context.Context, dept *domain.Department) error
	GetByID(ctx context.Context, id string) (*domain.Department, error)
	List(ctx context.Context) ([]domain.DepartmentSummary, error)
}

type departmentRepository struct {
	pool *pgxpool.Pool
}

// NewDepartmentRepository creates repository.
func NewDepartmentRepository(pool *pgxpool.Pool) DepartmentRepository {
	return &departmentRepository{pool: pool}
}

func (r *departmentRepository) Create(ctx context.Context, dept *domain.Department) error {
	const query = `
        INSERT INTO departments (name)
        VALUES ($1)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query, dept.Name).Scan(&dept.ID, &dept.CreatedAt, &dept.UpdatedAt)
}

func (r *departmentRepository) GetByID(ctx context.Context, id string) (*domain.Department, error) {
	const query = `SELECT id, name, created_at, updated_at FROM departments WHERE id=$1`
	var dept domain.Department
	if err := r.pool.QueryRow(ctx, query, id).Scan(&dept.ID, &dept.Name, &dept.CreatedAt, &dept.UpdatedAt); err != nil {
		return nil, err
	}
	return &dept, nil
}

func (r *departmentRepository) List(ctx context.Context) ([]domain.DepartmentSummary, error) {
	const query = `
        SELECT d.id, d.name, d.created_at, d.updated_at,
               (SELECT COUNT(*) FROM users u WHERE u.department_id = d.id),
               (SELECT COUNT(*) FROM teams t WHERE t.department_id = d.id)
        FROM departments d
        ORDER BY d.name`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []domain.DepartmentSummary{}
	for rows.Next() {
		var d domain.DepartmentSummary
		if err := rows.Scan(&d.ID, &d.Name, &d.CreatedAt, &d.UpdatedAt, &d.UserCount, &d.TeamCount); err != nil {
			return nil, err
		}
		result = append(result, d)
	}
	return result, rows.Err()
}
