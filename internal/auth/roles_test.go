package auth

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/sales-service/internal/domain"
	apperrors "github.com/spec-kit/sales-service/pkg/util/errorutil"
)

type stubUsers map[string]*domain.User

func (s stubUsers) GetByID(_ context.Context, id string) (*domain.User, error) {
	if u, ok := s[id]; ok {
		return u, nil
	}
	return nil, pgx.ErrNoRows
}

func testApp(tm *TokenManager, users stubUsers) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			d := apperrors.ToDomainError(err)
			return c.Status(d.HTTPStatus).SendString(d.Code)
		},
	})
	mw := NewAuthMiddleware(tm, users)
	app.Get("/any", mw.Handle, RequireRoles(), func(c *fiber.Ctx) error { return c.SendString("ok") })
	app.Get("/admin", mw.Handle, RequireRoles(AdminRoles...), func(c *fiber.Ctx) error { return c.SendString("ok") })
	return app
}

func TestRequireRoles(t *testing.T) {
	tm := NewTokenManager("secret", 30)
	staff := &domain.User{ID: "s1", UserType: domain.UserTypeSalesStaff, Status: domain.UserStatusApproved}
	admin := &domain.User{ID: "a1", UserType: domain.UserTypeGeneralHQManager, Status: domain.UserStatusApproved}
	suspended := &domain.User{ID: "x1", UserType: domain.UserTypeSalesStaff, Status: domain.UserStatusSuspended}
	app := testApp(tm, stubUsers{"s1": staff, "a1": admin, "x1": suspended})

	bearer := func(u *domain.User) string {
		tok, err := tm.GenerateToken(domain.IdentityOf(u))
		require.NoError(t, err)
		return "Bearer " + tok.Value
	}

	cases := []struct {
		name   string
		path   string
		header string
		want   int
	}{
		{"no token", "/any", "", fiber.StatusUnauthorized},
		{"malformed header", "/any", "Token abc", fiber.StatusUnauthorized},
		{"staff on open route", "/any", bearer(staff), fiber.StatusOK},
		{"staff on admin route", "/admin", bearer(staff), fiber.StatusForbidden},
		{"admin on admin route", "/admin", bearer(admin), fiber.StatusOK},
		{"suspended user", "/any", bearer(suspended), fiber.StatusUnauthorized},
		{"deleted user", "/any", bearer(&domain.User{ID: "ghost"}), fiber.StatusUnauthorized},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", tc.path, nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tc.want, resp.StatusCode)
		})
	}
}

func TestHasRole(t *testing.T) {
	assert.True(t, HasRole(domain.UserTypeTeamLeader, GroupChatRoles))
	assert.False(t, HasRole(domain.UserTypeSalesStaff, GroupChatRoles))
}

func TestVerifySocketTokenRequiresApprovedUser(t *testing.T) {
	tm := NewTokenManager("secret", 30)
	active := &domain.User{ID: "s1", UserType: domain.UserTypeSalesStaff, Status: domain.UserStatusApproved}
	suspended := &domain.User{ID: "x1", UserType: domain.UserTypeSalesStaff, Status: domain.UserStatusSuspended}
	mw := NewAuthMiddleware(tm, stubUsers{"s1": active, "x1": suspended})

	token := func(u *domain.User) string {
		tok, err := tm.GenerateToken(domain.IdentityOf(u))
		require.NoError(t, err)
		return tok.Value
	}

	id, err := mw.VerifySocketToken(token(active))
	require.NoError(t, err)
	assert.Equal(t, "s1", id)

	_, err = mw.VerifySocketToken(token(suspended))
	assert.Equal(t, fiber.StatusUnauthorized, apperrors.ToDomainError(err).HTTPStatus)

	_, err = mw.VerifySocketToken(token(&domain.User{ID: "ghost"}))
	assert.Error(t, err)

	_, err = mw.VerifySocketToken("garbage")
	assert.Error(t, err)
}
