package service

import (
	"context"
	"strings"

	"github.com/spec-kit/sales-service/internal/domain"
	"github.com/spec-kit/sales-service/internal/repository"
	apperrors "github.com/spec-kit/sales-service/pkg/util/errorutil"
)

// OrganizationService manages departments and teams.
type OrganizationService struct {
	departments repository.DepartmentRepository
	teams       repository.TeamRepository
	users       repository.UserRepository
}

// OrganizationDependencies bundles repositories for the organization service.
type OrganizationDependencies struct {
	DepartmentRepo repository.DepartmentRepository
	TeamRepo       repository.TeamRepository
	UserRepo       repository.UserRepository
}

// OrganizationTree is the whole organization in one payload.
type OrganizationTree struct {
	Departments []domain.DepartmentSummary `json:"departments"`
	Teams       []domain.TeamSummary       `json:"teams"`
	Users       []domain.UserSummary       `json:"users"`
}

// NewOrganizationService constructs the service.
func NewOrganizationService(deps OrganizationDependencies) *OrganizationService {
	return &OrganizationService{departments: deps.DepartmentRepo, teams: deps.TeamRepo, users: deps.UserRepo}
}

func (s *OrganizationService) ListDepartments(ctx context.Context) ([]domain.DepartmentSummary, error) {
	return s.departments.List(ctx)
}

func (s *OrganizationService) CreateDepartment(ctx context.Context, name string) (*domain.Department, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.NewValidationError("부서 이름은 필수입니다.", nil)
	}
	dept := &domain.Department{Name: name}
	if err := s.departments.Create(ctx, dept); err != nil {
		return nil, err
	}
	return dept, nil
}

func (s *OrganizationService) ListTeams(ctx context.Context) ([]domain.TeamSummary, error) {
	return s.teams.List(ctx)
}

// CreateTeam requires an existing department.
func (s *OrganizationService) CreateTeam(ctx context.Context, departmentID, name string) (*domain.Team, error) {
	name = strings.TrimSpace(name)
	if name == "" || strings.TrimSpace(departmentID) == "" {
		return nil, apperrors.NewValidationError("팀 이름과 부서는 필수입니다.", nil)
	}
	if _, err := s.departments.GetByID(ctx, departmentID); err != nil {
		return nil, notFoundAs(err, "부서를 찾을 수 없습니다.")
	}
	team := &domain.Team{DepartmentID: departmentID, Name: name}
	if err := s.teams.Create(ctx, team); err != nil {
		return nil, err
	}
	return team, nil
}

// Tree returns departments, teams and users with their customer counts.
func (s *OrganizationService) Tree(ctx context.Context) (*OrganizationTree, error) {
	departments, err := s.departments.List(ctx)
	if err != nil {
		return nil, err
	}
	teams, err := s.teams.List(ctx)
	if err != nil {
		return nil, err
	}
	users, err := s.users.ListSummaries(ctx, repository.UserListFilter{SortField: "name", SortOrder: "asc"})
	if err != nil {
		return nil, err
	}
	return &OrganizationTree{Departments: departments, Teams: teams, Users: users}, nil
}
