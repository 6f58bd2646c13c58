package service

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/sales-service/internal/auth"
	"github.com/spec-kit/sales-service/internal/config"
	"github.com/spec-kit/sales-service/internal/domain"
	"github.com/spec-kit/sales-service/internal/events"
	"github.com/spec-kit/sales-service/internal/repository"
	apperrors "github.com/spec-kit/sales-service/pkg/util/errorutil"
)

// maxManagerDepth bounds the walk up the manager chain when checking for cycles.
const maxManagerDepth = 64

var userTrackedFields = []string{"status", "userType", "organizationLevel", "departmentId", "teamId", "managerId"}

func userSnapshot(u *domain.User) Snapshot {
	return Snapshot{
		"status":            string(u.Status),
		"userType":          string(u.UserType),
		"organizationLevel": u.OrganizationLevel,
		"departmentId":      optional(u.DepartmentID),
		"teamId":            optional(u.TeamID),
		"managerId":         optional(u.ManagerID),
	}
}

// optional maps a nil pointer to an untyped nil so it compares equal to other nils.
func optional(p *string) any {
	if p == nil {
		return nil
	}
	return *p
}

// AdminService manages accounts and their place in the organization.
type AdminService struct {
	users       repository.UserRepository
	departments repository.DepartmentRepository
	teams       repository.TeamRepository
	customers   repository.CustomerRepository
	activity    *ActivityLogService
	dispatcher  events.Dispatcher
	logger      *zap.Logger

	bcryptCost      int
	defaultPassword string
}

// AdminDependencies bundles collaborators for the admin service.
type AdminDependencies struct {
	UserRepo       repository.UserRepository
	DepartmentRepo repository.DepartmentRepository
	TeamRepo       repository.TeamRepository
	CustomerRepo   repository.CustomerRepository
	Activity       *ActivityLogService
	Dispatcher     events.Dispatcher
	Logger         *zap.Logger
}

// CreateUserInput is the admin account creation payload.
type CreateUserInput struct {
	UserID       string
	Password     string
	Name         string
	Phone        string
	Email        *string
	UserType     domain.UserType
	DepartmentID *string
	TeamID       *string
	ManagerID    *string
}

// RegistrantCustomers is a registrant's customers with aggregate stats.
type RegistrantCustomers struct {
	Customers []domain.CustomerWithRegistrant `json:"customers"`
	Stats     domain.CustomerStats            `json:"stats"`
}

// NewAdminService constructs the service.
func NewAdminService(cfg config.AuthConfig, deps AdminDependencies) *AdminService {
	return &AdminService{
		users:           deps.UserRepo,
		departments:     deps.DepartmentRepo,
		teams:           deps.TeamRepo,
		customers:       deps.CustomerRepo,
		activity:        deps.Activity,
		dispatcher:      deps.Dispatcher,
		logger:          deps.Logger,
		bcryptCost:      cfg.BcryptCost,
		defaultPassword: cfg.DefaultPassword,
	}
}

// ApproveUser approves a PENDING account by login id.
func (s *AdminService) ApproveUser(ctx context.Context, actor *domain.User, loginID string) (*domain.User, error) {
	user, err := s.users.GetByLoginID(ctx, loginID)
	if err != nil {
		return nil, notFoundAs(err, msgUserNotFound)
	}
	if user.Status != domain.UserStatusPending {
		return nil, apperrors.NewValidationError("이미 처리된 요청입니다.", nil)
	}
	before := userSnapshot(user)
	user.Status = domain.UserStatusApproved
	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}
	s.activity.RecordChanges(ctx, actor, domain.EntityUser, user.ID, Diff([]string{"status"}, before, userSnapshot(user)))
	return user, nil
}

// ListUsers returns users with department, team and customer count.
func (s *AdminService) ListUsers(ctx context.Context, filter repository.UserListFilter) ([]domain.UserSummary, error) {
	return s.users.ListSummaries(ctx, filter)
}

// CreateUser creates an APPROVED account on behalf of an admin.
func (s *AdminService) CreateUser(ctx context.Context, actor *domain.User, input CreateUserInput) (*domain.User, error) {
	input.UserID = strings.TrimSpace(input.UserID)
	input.Email = trimmedOrNil(input.Email)
	if input.UserID == "" || strings.TrimSpace(input.Name) == "" || strings.TrimSpace(input.Phone) == "" {
		return nil, apperrors.NewValidationError("아이디, 이름, 연락처는 필수입니다.", nil)
	}
	if input.UserType == "" {
		input.UserType = domain.UserTypeSalesStaff
	}
	if !input.UserType.Valid() {
		return nil, apperrors.NewValidationError("잘못된 사용자 유형입니다.", map[string]any{"userType": input.UserType})
	}
	if err := s.checkOrg(ctx, input.DepartmentID, input.TeamID); err != nil {
		return nil, err
	}
	if input.ManagerID != nil {
		if _, err := s.users.GetByID(ctx, *input.ManagerID); err != nil {
			return nil, notFoundAs(err, "관리자를 찾을 수 없습니다.")
		}
	}

	exists, err := s.users.ExistsByLoginIDOrEmail(ctx, input.UserID, input.Email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, apperrors.NewConflict(msgDuplicateAccount, nil)
	}

	password := input.Password
	if password == "" {
		password = s.defaultPassword
	}
	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		UserID:            input.UserID,
		Email:             input.Email,
		PasswordHash:      hash,
		Name:              strings.TrimSpace(input.Name),
		Phone:             strings.TrimSpace(input.Phone),
		Status:            domain.UserStatusApproved,
		UserType:          input.UserType,
		OrganizationLevel: input.UserType.OrganizationLevel(),
		DepartmentID:      input.DepartmentID,
		TeamID:            input.TeamID,
		ManagerID:         input.ManagerID,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if apperrors.IsUniqueViolation(err) {
			return nil, apperrors.NewConflict(msgDuplicateAccount, nil)
		}
		return nil, err
	}

	s.activity.Record(ctx, actor, domain.ActivityCreate, domain.EntityUser, user.ID, fmt.Sprintf("사용자 %s을(를) 생성했습니다.", user.Name))
	publish(ctx, s.dispatcher, s.logger, events.Event{
		Type:    events.EventUserCreated,
		ActorID: actor.ID,
		Payload: events.UserCreatedPayload{UserID: user.ID, Name: user.Name},
	})
	return user, nil
}

// UpdateUserStatus changes an account's status and tells the account owner.
func (s *AdminService) UpdateUserStatus(ctx context.Context, actor *domain.User, id string, status domain.UserStatus) (*domain.User, error) {
	if !status.Valid() {
		return nil, apperrors.NewValidationError("잘못된 상태 값입니다.", map[string]any{"status": status})
	}
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundAs(err, msgUserNotFound)
	}
	before := userSnapshot(user)
	user.Status = status
	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}
	s.activity.RecordChanges(ctx, actor, domain.EntityUser, user.ID, Diff([]string{"status"}, before, userSnapshot(user)))
	publish(ctx, s.dispatcher, s.logger, events.Event{
		Type:    events.EventUserStatusChanged,
		ActorID: actor.ID,
		Payload: events.UserStatusChangedPayload{UserID: user.ID, NewStatus: status},
	})
	return user, nil
}

// CustomersByRegistrant lists a user's customers with counts by status and source.
func (s *AdminService) CustomersByRegistrant(ctx context.Context, id string) (*RegistrantCustomers, error) {
	if _, err := s.users.GetByID(ctx, id); err != nil {
		return nil, notFoundAs(err, msgUserNotFound)
	}
	customers, err := s.customers.List(ctx, repository.CustomerFilter{RegisteredByID: &id})
	if err != nil {
		return nil, err
	}
	return &RegistrantCustomers{Customers: customers, Stats: customerStats(customers)}, nil
}

func customerStats(customers []domain.CustomerWithRegistrant) domain.CustomerStats {
	byStatus := map[domain.CustomerStatus]int{}
	bySource := map[string]int{}
	noSource := 0
	for _, c := range customers {
		byStatus[c.Status]++
		if c.Source == nil {
			noSource++
		} else {
			bySource[*c.Source]++
		}
	}

	stats := domain.CustomerStats{ByStatus: []domain.StatusCount{}, BySource: []domain.SourceCount{}}
	for _, st := range []domain.CustomerStatus{
		domain.CustomerStatusRegistered,
		domain.CustomerStatusVisited,
		domain.CustomerStatusConsulted,
		domain.CustomerStatusContracted,
		domain.CustomerStatusCancelled,
	} {
		if n := byStatus[st]; n > 0 {
			stats.ByStatus = append(stats.ByStatus, domain.StatusCount{Status: st, Count: n})
		}
	}
	sources := make([]string, 0, len(bySource))
	for src := range bySource {
		sources = append(sources, src)
	}
	sort.Strings(sources)
	for _, src := range sources {
		src := src
		stats.BySource = append(stats.BySource, domain.SourceCount{Source: &src, Count: bySource[src]})
	}
	if noSource > 0 {
		stats.BySource = append(stats.BySource, domain.SourceCount{Count: noSource})
	}
	return stats
}

// SetManager sets or clears a user's manager. Self management and cycles in
// the manager tree are rejected; department alignment is not checked.
func (s *AdminService) SetManager(ctx context.Context, actor *domain.User, id string, managerID *string) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundAs(err, msgUserNotFound)
	}
	managerID = trimmedOrNil(managerID)
	if managerID != nil {
		if *managerID == user.ID {
			return nil, apperrors.NewValidationError("자기 자신을 관리자로 지정할 수 없습니다.", nil)
		}
		if err := s.checkNoCycle(ctx, user.ID, *managerID); err != nil {
			return nil, err
		}
	}

	before := userSnapshot(user)
	user.ManagerID = managerID
	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}
	s.activity.RecordChanges(ctx, actor, domain.EntityUser, user.ID, Diff([]string{"managerId"}, before, userSnapshot(user)))
	return user, nil
}

// checkNoCycle walks up from managerID and fails if it reaches userID.
func (s *AdminService) checkNoCycle(ctx context.Context, userID, managerID string) error {
	current := managerID
	for depth := 0; depth < maxManagerDepth; depth++ {
		m, err := s.users.GetByID(ctx, current)
		if err != nil {
			return notFoundAs(err, "관리자를 찾을 수 없습니다.")
		}
		if m.ManagerID == nil {
			return nil
		}
		if *m.ManagerID == userID {
			return apperrors.NewValidationError("관리 관계가 순환됩니다.", map[string]any{"managerId": managerID})
		}
		current = *m.ManagerID
	}
	return apperrors.NewValidationError("관리 관계가 너무 깊습니다.", nil)
}

// UpdateUserType changes the role and recomputes the organization level.
func (s *AdminService) UpdateUserType(ctx context.Context, actor *domain.User, id string, userType domain.UserType) (*domain.User, error) {
	if !userType.Valid() {
		return nil, apperrors.NewValidationError("잘못된 사용자 유형입니다.", map[string]any{"userType": userType})
	}
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundAs(err, msgUserNotFound)
	}
	before := userSnapshot(user)
	user.UserType = userType
	user.OrganizationLevel = userType.OrganizationLevel()
	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}
	s.activity.RecordChanges(ctx, actor, domain.EntityUser, user.ID,
		Diff([]string{"userType", "organizationLevel"}, before, userSnapshot(user)))
	return user, nil
}

// AssignOrg moves a user to a department and team. The user is notified when
// anything actually changed.
func (s *AdminService) AssignOrg(ctx context.Context, actor *domain.User, id string, departmentID, teamID *string) (*domain.User, error) {
	departmentID, teamID = trimmedOrNil(departmentID), trimmedOrNil(teamID)
	if err := s.checkOrg(ctx, departmentID, teamID); err != nil {
		return nil, err
	}
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundAs(err, msgUserNotFound)
	}
	before := userSnapshot(user)
	user.DepartmentID = departmentID
	user.TeamID = teamID
	changes := Diff([]string{"departmentId", "teamId"}, before, userSnapshot(user))
	if len(changes) == 0 {
		return user, nil
	}
	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}
	s.activity.RecordChanges(ctx, actor, domain.EntityUser, user.ID, changes)
	publish(ctx, s.dispatcher, s.logger, events.Event{
		Type:    events.EventUserOrgAssigned,
		ActorID: actor.ID,
		Payload: events.UserOrgAssignedPayload{UserID: user.ID, DepartmentID: departmentID, TeamID: teamID},
	})
	return user, nil
}

// checkOrg verifies referenced department and team exist and agree.
func (s *AdminService) checkOrg(ctx context.Context, departmentID, teamID *string) error {
	if departmentID != nil {
		if _, err := s.departments.GetByID(ctx, *departmentID); err != nil {
			return notFoundAs(err, "부서를 찾을 수 없습니다.")
		}
	}
	if teamID != nil {
		team, err := s.teams.GetByID(ctx, *teamID)
		if err != nil {
			return notFoundAs(err, "팀을 찾을 수 없습니다.")
		}
		if departmentID != nil && team.DepartmentID != *departmentID {
			return apperrors.NewValidationError("팀이 해당 부서에 속하지 않습니다.", nil)
		}
	}
	return nil
}

// notFoundAs turns a missing row into a 404 with message; other errors pass through.
func notFoundAs(err error, message string) error {
	if apperrors.IsNotFound(err) {
		return apperrors.NewNotFound(message, nil)
	}
	return err
}
