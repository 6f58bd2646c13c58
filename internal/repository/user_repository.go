package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/sales-service/internal/domain"
)

// UserListFilter captures admin listing parameters.
type UserListFilter struct {
	DepartmentID *string
	TeamID       *string
	Status       *domain.UserStatus
	SortField    string
	SortOrder    string
}

// UserQuery selects users for chat targeting and notification fan-out.
type UserQuery struct {
	DepartmentID *string
	TeamID       *string
	Types        []domain.UserType
	// LevelBelow keeps users whose organization level is strictly lower.
	LevelBelow  *int
	ExcludeID   *string
	OrderByName bool
}

// UserRepository defines persistence access for accounts.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	Update(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByLoginID(ctx context.Context, loginID string) (*domain.User, error)
	ExistsByLoginIDOrEmail(ctx context.Context, loginID string, email *string) (bool, error)
	ListSummaries(ctx context.Context, filter UserListFilter) ([]domain.UserSummary, error)
	Find(ctx context.Context, query UserQuery) ([]domain.User, error)
}

type userRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository returns a Postgres-backed implementation.
func NewUserRepository(pool *pgxpool.Pool) UserRepository {
	return &userRepository{pool: pool}
}

const userColumns = `u.id, u.login_id, u.email, u.password_hash, u.name, u.phone, u.status, u.user_type,
       u.organization_level, u.organization_request, u.department_id, u.team_id, u.manager_id,
       u.created_at, u.updated_at`

func scanUser(row rowScanner, user *domain.User, extra ...any) error {
	dest := []any{
		&user.ID,
		&user.UserID,
		&user.Email,
		&user.PasswordHash,
		&user.Name,
		&user.Phone,
		&user.Status,
		&user.UserType,
		&user.OrganizationLevel,
		&user.OrganizationRequest,
		&user.DepartmentID,
		&user.TeamID,
		&user.ManagerID,
		&user.CreatedAt,
		&user.UpdatedAt,
	}
	return row.Scan(append(dest, extra...)...)
}

func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	const query = `
        INSERT INTO users (login_id, email, password_hash, name, phone, status, user_type,
                           organization_level, organization_request, department_id, team_id, manager_id)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
        RETURNING id, created_at, updated_at`

	return r.pool.QueryRow(ctx, query,
		user.UserID,
		user.Email,
		user.PasswordHash,
		user.Name,
		user.Phone,
		user.Status,
		user.UserType,
		user.OrganizationLevel,
		user.OrganizationRequest,
		user.DepartmentID,
		user.TeamID,
		user.ManagerID,
	).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
}

func (r *userRepository) Update(ctx context.Context, user *domain.User) error {
	const query = `
        UPDATE users SET email=$1, password_hash=$2, name=$3, phone=$4, status=$5, user_type=$6,
            organization_level=$7, department_id=$8, team_id=$9, manager_id=$10, updated_at=NOW()
        WHERE id=$11
        RETURNING updated_at`

	err := r.pool.QueryRow(ctx, query,
		user.Email,
		user.PasswordHash,
		user.Name,
		user.Phone,
		user.Status,
		user.UserType,
		user.OrganizationLevel,
		user.DepartmentID,
		user.TeamID,
		user.ManagerID,
		user.ID,
	).Scan(&user.UpdatedAt)
	return err
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users u WHERE u.id=$1`
	var user domain.User
	if err := scanUser(r.pool.QueryRow(ctx, query, id), &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) GetByLoginID(ctx context.Context, loginID string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users u WHERE u.login_id=$1`
	var user domain.User
	if err := scanUser(r.pool.QueryRow(ctx, query, loginID), &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) ExistsByLoginIDOrEmail(ctx context.Context, loginID string, email *string) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM users WHERE login_id=$1 OR ($2::text IS NOT NULL AND email=$2))`
	var exists bool
	err := r.pool.QueryRow(ctx, query, loginID, email).Scan(&exists)
	return exists, err
}

var userSortColumns = map[string]string{
	"customerCount":     "customer_count",
	"department":        "d.name",
	"team":              "t.name",
	"name":              "u.name",
	"userId":            "u.login_id",
	"createdAt":         "u.created_at",
	"status":            "u.status",
	"userType":          "u.user_type",
	"organizationLevel": "u.organization_level",
}

func (r *userRepository) ListSummaries(ctx context.Context, filter UserListFilter) ([]domain.UserSummary, error) {
	base := `SELECT ` + userColumns + `, d.name, t.name, m.name,
                    (SELECT COUNT(*) FROM customers c WHERE c.registered_by_id = u.id) AS customer_count
             FROM users u
             LEFT JOIN departments d ON d.id = u.department_id
             LEFT JOIN teams t ON t.id = u.team_id
             LEFT JOIN users m ON m.id = u.manager_id`
	clauses := []string{"1=1"}
	args := []any{}

	if filter.DepartmentID != nil {
		args = append(args, *filter.DepartmentID)
		clauses = append(clauses, fmt.Sprintf("u.department_id=$%d", len(args)))
	}
	if filter.TeamID != nil {
		args = append(args, *filter.TeamID)
		clauses = append(clauses, fmt.Sprintf("u.team_id=$%d", len(args)))
	}
	if filter.Status != nil {
		args = append(args, *filter.Status)
		clauses = append(clauses, fmt.Sprintf("u.status=$%d", len(args)))
	}

	column, ok := userSortColumns[filter.SortField]
	if !ok {
		column = "u.created_at"
	}
	query := fmt.Sprintf("%s WHERE %s ORDER BY %s %s NULLS LAST, u.id",
		base, strings.Join(clauses, " AND "), column, sortDirection(filter.SortOrder))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []domain.UserSummary{}
	for rows.Next() {
		var s domain.UserSummary
		if err := scanUser(rows, &s.User, &s.DepartmentName, &s.TeamName, &s.ManagerName, &s.CustomerCount); err != nil {
			return nil, err
		}
		result = append(result, s)
	}
	return result, rows.Err()
}

func (r *userRepository) Find(ctx context.Context, q UserQuery) ([]domain.User, error) {
	base := `SELECT ` + userColumns + ` FROM users u`
	clauses := []string{"1=1"}
	args := []any{}

	if q.DepartmentID != nil {
		args = append(args, *q.DepartmentID)
		clauses = append(clauses, fmt.Sprintf("u.department_id=$%d", len(args)))
	}
	if q.TeamID != nil {
		args = append(args, *q.TeamID)
		clauses = append(clauses, fmt.Sprintf("u.team_id=$%d", len(args)))
	}
	if len(q.Types) > 0 {
		placeholders := make([]string, len(q.Types))
		for i, t := range q.Types {
			args = append(args, t)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("u.user_type IN (%s)", strings.Join(placeholders, ",")))
	}
	if q.LevelBelow != nil {
		args = append(args, *q.LevelBelow)
		clauses = append(clauses, fmt.Sprintf("u.organization_level < $%d", len(args)))
	}
	if q.ExcludeID != nil {
		args = append(args, *q.ExcludeID)
		clauses = append(clauses, fmt.Sprintf("u.id <> $%d", len(args)))
	}

	order := "u.organization_level ASC, u.name ASC"
	if q.OrderByName {
		order = "u.name ASC"
	}
	query := fmt.Sprintf("%s WHERE %s ORDER BY %s", base, strings.Join(clauses, " AND "), order)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []domain.User{}
	for rows.Next() {
		var u domain.User
		if err := scanUser(rows, &u); err != nil {
			return nil, err
		}
		result = append(result, u)
	}
	return result, rows.Err()
}
