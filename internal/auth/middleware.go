package auth

import (
	"context"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/sales-service/internal/domain"
	apperrors "github.com/spec-kit/sales-service/pkg/util/errorutil"
)

const (
	principalKey      = "auth_principal"
	socketAuthTimeout = 5 * time.Second
)

// UserLoader is the slice of the user repository the middleware needs.
type UserLoader interface {
	GetByID(ctx context.Context, id string) (*domain.User, error)
}

// AuthMiddleware validates bearer tokens and loads the current user.
type AuthMiddleware struct {
	tokens *TokenManager
	users  UserLoader
}

// NewAuthMiddleware constructs middleware.
func NewAuthMiddleware(tokens *TokenManager, users UserLoader) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens, users: users}
}

// Handle enforces authentication for protected routes.
func (m *AuthMiddleware) Handle(c *fiber.Ctx) error {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return apperrors.NewUnauthorized("인증 토큰이 필요합니다.")
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return apperrors.NewUnauthorized("잘못된 인증 헤더입니다.")
	}

	user, err := m.authenticate(c.UserContext(), strings.TrimSpace(parts[1]))
	if err != nil {
		return err
	}

	c.Locals(principalKey, user)
	return c.Next()
}

// VerifySocketToken authenticates the first frame of a realtime connection with
// the same rules as Handle and returns the user id.
func (m *AuthMiddleware) VerifySocketToken(token string) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), socketAuthTimeout)
	defer cancel()
	user, err := m.authenticate(ctx, token)
	if err != nil {
		return "", err
	}
	return user.ID, nil
}

// authenticate parses token and loads its user, who must still be APPROVED.
func (m *AuthMiddleware) authenticate(ctx context.Context, token string) (*domain.User, error) {
	claims, err := m.tokens.ParseToken(token)
	if err != nil {
		return nil, apperrors.NewUnauthorized("유효하지 않은 토큰입니다.")
	}

	user, err := m.users.GetByID(ctx, claims.ID)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, apperrors.NewUnauthorized("사용자를 찾을 수 없습니다.")
		}
		return nil, apperrors.MapError(err)
	}
	// tokens outlive suspensions
	if user.Status != domain.UserStatusApproved {
		return nil, apperrors.NewUnauthorized("사용이 중지된 계정입니다.")
	}
	return user, nil
}

// CurrentUser retrieves the authenticated user.
func CurrentUser(c *fiber.Ctx) (*domain.User, bool) {
	user, ok := c.Locals(principalKey).(*domain.User)
	return user, ok && user != nil
}

// SetCurrentUser stores the authenticated user on the request.
func SetCurrentUser(c *fiber.Ctx, user *domain.User) {
	c.Locals(principalKey, user)
}
