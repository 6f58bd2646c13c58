package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/sales-service/internal/auth"
	"github.com/spec-kit/sales-service/internal/config"
	"github.com/spec-kit/sales-service/internal/domain"
	"github.com/spec-kit/sales-service/internal/events"
	"github.com/spec-kit/sales-service/internal/repository"
	apperrors "github.com/spec-kit/sales-service/pkg/util/errorutil"
)

const (
	msgDuplicateAccount   = "이미 사용 중인 아이디 또는 이메일입니다."
	msgInvalidCredentials = "아이디 또는 비밀번호가 올바르지 않습니다."
	msgNotApproved        = "아직 승인되지 않은 계정입니다."
	msgUserNotFound       = "사용자를 찾을 수 없습니다."
)

// AuthService coordinates registration and login flows.
type AuthService struct {
	users      repository.UserRepository
	tokenMgr   *auth.TokenManager
	dispatcher events.Dispatcher
	logger     *zap.Logger
	bcryptCost int
}

// AuthDependencies encapsulates repo requirements for auth service.
type AuthDependencies struct {
	UserRepo   repository.UserRepository
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
}

// RegisterInput is the self sign-up payload.
type RegisterInput struct {
	UserID              string
	Password            string
	Name                string
	Phone               string
	Email               *string
	OrganizationRequest *string
}

// NewAuthService builds the service.
func NewAuthService(cfg config.Config, deps AuthDependencies) *AuthService {
	return &AuthService{
		users:      deps.UserRepo,
		tokenMgr:   auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes),
		dispatcher: deps.Dispatcher,
		logger:     deps.Logger,
		bcryptCost: cfg.Auth.BcryptCost,
	}
}

// Register creates a PENDING sales account and notifies the approvers.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*domain.User, error) {
	input.UserID = strings.TrimSpace(input.UserID)
	input.Email = trimmedOrNil(input.Email)
	if input.UserID == "" || input.Password == "" || strings.TrimSpace(input.Name) == "" || strings.TrimSpace(input.Phone) == "" {
		return nil, apperrors.NewValidationError("아이디, 비밀번호, 이름, 연락처는 필수입니다.", nil)
	}

	exists, err := s.users.ExistsByLoginIDOrEmail(ctx, input.UserID, input.Email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, apperrors.NewConflict(msgDuplicateAccount, nil)
	}

	hash, err := auth.HashPassword(input.Password, s.bcryptCost)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		UserID:              input.UserID,
		Email:               input.Email,
		PasswordHash:        hash,
		Name:                strings.TrimSpace(input.Name),
		Phone:               strings.TrimSpace(input.Phone),
		Status:              domain.UserStatusPending,
		UserType:            domain.UserTypeSalesStaff,
		OrganizationLevel:   domain.UserTypeSalesStaff.OrganizationLevel(),
		OrganizationRequest: trimmedOrNil(input.OrganizationRequest),
	}
	if err := s.users.Create(ctx, user); err != nil {
		if apperrors.IsUniqueViolation(err) {
			return nil, apperrors.NewConflict(msgDuplicateAccount, nil)
		}
		return nil, err
	}

	publish(ctx, s.dispatcher, s.logger, events.Event{
		Type:    events.EventUserRegistered,
		ActorID: user.ID,
		Payload: events.UserRegisteredPayload{UserID: user.ID, Name: user.Name, OrganizationRequest: user.OrganizationRequest},
	})
	return user, nil
}

// Login authenticates an approved account.
func (s *AuthService) Login(ctx context.Context, loginID, password string) (*domain.User, domain.Token, error) {
	user, err := s.users.GetByLoginID(ctx, strings.TrimSpace(loginID))
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, domain.Token{}, apperrors.NewUnauthorized(msgInvalidCredentials)
		}
		return nil, domain.Token{}, err
	}
	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		return nil, domain.Token{}, apperrors.NewUnauthorized(msgInvalidCredentials)
	}
	if user.Status != domain.UserStatusApproved {
		return nil, domain.Token{}, apperrors.NewUnauthorized(msgNotApproved)
	}
	if auth.NeedsRehash(user.PasswordHash, s.bcryptCost) {
		s.rehash(ctx, user, password)
	}

	token, err := s.tokenMgr.GenerateToken(domain.IdentityOf(user))
	if err != nil {
		return nil, domain.Token{}, err
	}
	return user, token, nil
}

// ChangePassword verifies current password before updating to new hash.
func (s *AuthService) ChangePassword(ctx context.Context, actor *domain.User, currentPassword, newPassword string) error {
	if newPassword == "" {
		return apperrors.NewValidationError("새 비밀번호를 입력해주세요.", nil)
	}
	user, err := s.users.GetByID(ctx, actor.ID)
	if err != nil {
		return err
	}
	if err := auth.ComparePassword(user.PasswordHash, currentPassword); err != nil {
		return apperrors.NewValidationError("현재 비밀번호가 올바르지 않습니다.", nil)
	}
	hash, err := auth.HashPassword(newPassword, s.bcryptCost)
	if err != nil {
		return err
	}
	user.PasswordHash = hash
	return s.users.Update(ctx, user)
}

func (s *AuthService) rehash(ctx context.Context, user *domain.User, password string) {
	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err == nil {
		user.PasswordHash = hash
		err = s.users.Update(ctx, user)
	}
	if err != nil {
		s.logger.Warn("password rehash failed", zap.String("user_id", user.ID), zap.Error(err))
	}
}

// TokenManager exposes the underlying token manager for middleware usage.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}

func trimmedOrNil(p *string) *string {
	if p == nil {
		return nil
	}
	v := strings.TrimSpace(*p)
	if v == "" {
		return nil
	}
	return &v
}
