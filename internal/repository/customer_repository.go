package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/sales-service/internal/domain"
)

// CustomerFilter combines the visibility scope with user supplied filters.
// Scope fields restrict by registrant; the rest narrow the result further.
type CustomerFilter struct {
	RegisteredByID         *string
	RegistrantDepartmentID *string
	RegistrantTeamID       *string

	Source         *string
	Potential      *domain.Potential
	Status         *domain.CustomerStatus
	RegistrantName *string
	CreatedFrom    *time.Time
	CreatedTo      *time.Time
	SortField      string
	SortOrder      string
	Limit          int
	Offset         int
}

// CustomerRepository encapsulates customer persistence.
type CustomerRepository interface {
	Create(ctx context.Context, customer *domain.Customer) error
	Update(ctx context.Context, customer *domain.Customer) error
	GetByID(ctx context.Context, id string) (*domain.CustomerWithRegistrant, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filter CustomerFilter) ([]domain.CustomerWithRegistrant, error)
}

type customerRepository struct {
	pool *pgxpool.Pool
}

// NewCustomerRepository instantiates repository.
func NewCustomerRepository(pool *pgxpool.Pool) CustomerRepository {
	return &customerRepository{pool: pool}
}

const customerSelect = `
        SELECT c.id, c.name, c.phone, c.status, c.potential, c.notes, c.interested_property, c.source,
               c.registered_by_id, c.created_at, c.updated_at,
               u.id, u.name, u.user_type, u.department_id, u.team_id, u.manager_id
        FROM customers c
        JOIN users u ON u.id = c.registered_by_id`

func scanCustomer(row rowScanner) (domain.CustomerWithRegistrant, error) {
	var c domain.CustomerWithRegistrant
	err := row.Scan(
		&c.ID,
		&c.Name,
		&c.Phone,
		&c.Status,
		&c.Potential,
		&c.Notes,
		&c.InterestedProperty,
		&c.Source,
		&c.RegisteredByID,
		&c.CreatedAt,
		&c.UpdatedAt,
		&c.RegisteredBy.ID,
		&c.RegisteredBy.Name,
		&c.RegisteredBy.UserType,
		&c.RegisteredBy.DepartmentID,
		&c.RegisteredBy.TeamID,
		&c.RegisteredBy.ManagerID,
	)
	return c, err
}

func (r *customerRepository) Create(ctx context.Context, customer *domain.Customer) error {
	const query = `
        INSERT INTO customers (name, phone, status, potential, notes, interested_property, source, registered_by_id)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		customer.Name,
		customer.Phone,
		customer.Status,
		customer.Potential,
		customer.Notes,
		customer.InterestedProperty,
		customer.Source,
		customer.RegisteredByID,
	).Scan(&customer.ID, &customer.CreatedAt, &customer.UpdatedAt)
}

func (r *customerRepository) Update(ctx context.Context, customer *domain.Customer) error {
	const query = `
        UPDATE customers SET name=$1, phone=$2, status=$3, potential=$4, notes=$5,
            interested_property=$6, source=$7, updated_at=NOW()
        WHERE id=$8
        RETURNING updated_at`
	return r.pool.QueryRow(ctx, query,
		customer.Name,
		customer.Phone,
		customer.Status,
		customer.Potential,
		customer.Notes,
		customer.InterestedProperty,
		customer.Source,
		customer.ID,
	).Scan(&customer.UpdatedAt)
}

func (r *customerRepository) GetByID(ctx context.Context, id string) (*domain.CustomerWithRegistrant, error) {
	c, err := scanCustomer(r.pool.QueryRow(ctx, customerSelect+` WHERE c.id=$1`, id))
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *customerRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM customers WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

var customerSortColumns = map[string]string{
	"createdAt": "c.created_at",
	"updatedAt": "c.updated_at",
	"name":      "c.name",
	"status":    "c.status",
	"potential": "c.potential",
	"source":    "c.source",
}

func (r *customerRepository) List(ctx context.Context, filter CustomerFilter) ([]domain.CustomerWithRegistrant, error) {
	query, args := customerListQuery(filter)
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []domain.CustomerWithRegistrant{}
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, c)
	}
	return result, rows.Err()
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)

// containsPattern builds an ILIKE substring pattern that matches v literally.
func containsPattern(v string) string {
	return "%" + likeEscaper.Replace(strings.TrimSpace(v)) + "%"
}

func customerListQuery(filter CustomerFilter) (string, []any) {
	clauses := []string{"1=1"}
	args := []any{}

	if filter.RegisteredByID != nil {
		args = append(args, *filter.RegisteredByID)
		clauses = append(clauses, fmt.Sprintf("c.registered_by_id=$%d", len(args)))
	}
	if filter.RegistrantDepartmentID != nil {
		args = append(args, *filter.RegistrantDepartmentID)
		clauses = append(clauses, fmt.Sprintf("u.department_id=$%d", len(args)))
	}
	if filter.RegistrantTeamID != nil {
		args = append(args, *filter.RegistrantTeamID)
		clauses = append(clauses, fmt.Sprintf("u.team_id=$%d", len(args)))
	}
	if filter.Source != nil && strings.TrimSpace(*filter.Source) != "" {
		args = append(args, containsPattern(*filter.Source))
		clauses = append(clauses, fmt.Sprintf("c.source ILIKE $%d", len(args)))
	}
	if filter.Potential != nil {
		args = append(args, *filter.Potential)
		clauses = append(clauses, fmt.Sprintf("c.potential=$%d", len(args)))
	}
	if filter.Status != nil {
		args = append(args, *filter.Status)
		clauses = append(clauses, fmt.Sprintf("c.status=$%d", len(args)))
	}
	if filter.RegistrantName != nil && strings.TrimSpace(*filter.RegistrantName) != "" {
		args = append(args, containsPattern(*filter.RegistrantName))
		clauses = append(clauses, fmt.Sprintf("u.name ILIKE $%d", len(args)))
	}
	if filter.CreatedFrom != nil {
		args = append(args, *filter.CreatedFrom)
		clauses = append(clauses, fmt.Sprintf("c.created_at >= $%d", len(args)))
	}
	if filter.CreatedTo != nil {
		args = append(args, *filter.CreatedTo)
		clauses = append(clauses, fmt.Sprintf("c.created_at <= $%d", len(args)))
	}

	column, ok := customerSortColumns[filter.SortField]
	if !ok {
		column = "c.created_at"
	}
	query := fmt.Sprintf("%s WHERE %s ORDER BY %s %s, c.id", customerSelect, strings.Join(clauses, " AND "), column, sortDirection(filter.SortOrder))
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}
	return query, args
}
