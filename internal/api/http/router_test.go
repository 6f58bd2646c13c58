package http

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/sales-service/internal/api/http/handlers"
	"github.com/spec-kit/sales-service/internal/auth"
	"github.com/spec-kit/sales-service/internal/domain"
	"github.com/spec-kit/sales-service/internal/observability"
)

type routeUsers map[string]*domain.User

func (u routeUsers) GetByID(_ context.Context, id string) (*domain.User, error) {
	if user, ok := u[id]; ok {
		return user, nil
	}
	return nil, pgx.ErrNoRows
}

// newRoutedApp registers every route over handlers without services, so a
// request that passes the gates reaches a handler and fails there with 500.
func newRoutedApp(t *testing.T, users routeUsers) (*fiber.App, *auth.TokenManager) {
	t.Helper()
	tm := auth.NewTokenManager("secret", 30)
	app := fiber.New()
	RegisterMiddlewares(app, zap.NewNop(), observability.NewMetrics(), "*", 0)
	RegisterRoutes(app, RouteConfig{
		Health:         &handlers.HealthHandler{},
		Auth:           &handlers.AuthHandler{},
		Admin:          &handlers.AdminHandler{},
		Customers:      &handlers.CustomerHandler{},
		Organization:   &handlers.OrganizationHandler{},
		Chat:           &handlers.ChatHandler{},
		Posts:          &handlers.PostHandler{},
		Resources:      &handlers.ResourceHandler{},
		SiteSettings:   &handlers.SiteSettingsHandler{},
		Notifications:  &handlers.NotificationHandler{},
		ActivityLogs:   handlers.NewActivityLogHandler(nil, nil),
		AuthMiddleware: auth.NewAuthMiddleware(tm, users),
	})
	return app, tm
}

func call(t *testing.T, app *fiber.App, method, path, token string) int {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	return resp.StatusCode
}

func TestRouteGates(t *testing.T) {
	partner := &domain.User{ID: "p1", UserType: domain.UserTypePartnerStaff, Status: domain.UserStatusApproved}
	admin := &domain.User{ID: "a1", UserType: domain.UserTypeAdminStaff, Status: domain.UserStatusApproved}
	app, tm := newRoutedApp(t, routeUsers{"p1": partner, "a1": admin})

	tokenOf := func(u *domain.User) string {
		tok, err := tm.GenerateToken(domain.IdentityOf(u))
		require.NoError(t, err)
		return tok.Value
	}
	partnerToken, adminToken := tokenOf(partner), tokenOf(admin)

	t.Run("organization is admin staff only", func(t *testing.T) {
		for _, path := range []string{"/api/organization/departments", "/api/organization/teams", "/api/organization/tree"} {
			assert.Equal(t, fiber.StatusForbidden, call(t, app, "GET", path, partnerToken), path)
			assert.NotEqual(t, fiber.StatusForbidden, call(t, app, "GET", path, adminToken), path)
		}
		assert.Equal(t, fiber.StatusForbidden, call(t, app, "POST", "/api/organization/teams", partnerToken))
	})

	t.Run("board reads are public", func(t *testing.T) {
		assert.NotEqual(t, fiber.StatusUnauthorized, call(t, app, "GET", "/api/posts", ""))
		assert.NotEqual(t, fiber.StatusUnauthorized, call(t, app, "GET", "/api/posts/x", ""))
		assert.Equal(t, fiber.StatusUnauthorized, call(t, app, "POST", "/api/posts/x/comments", ""))
		assert.Equal(t, fiber.StatusUnauthorized, call(t, app, "GET", "/api/customers", ""))
	})

	t.Run("user trails are admin only, customer trails are open", func(t *testing.T) {
		assert.Equal(t, fiber.StatusForbidden, call(t, app, "GET", "/api/logs/user/a1", partnerToken))
		assert.NotEqual(t, fiber.StatusForbidden, call(t, app, "GET", "/api/logs/customer/c1", partnerToken))
		assert.NotEqual(t, fiber.StatusForbidden, call(t, app, "GET", "/api/logs/user/p1", adminToken))
	})

	t.Run("client contract paths are routed", func(t *testing.T) {
		routes := []struct{ method, path string }{
			{"PUT", "/api/admin/users/p1/status"},
			{"PUT", "/api/admin/users/p1/set-manager"},
			{"PUT", "/api/admin/users/p1/user-type"},
			{"PUT", "/api/admin/users/p1/assign-org"},
			{"POST", "/api/chat/one-on-one"},
			{"POST", "/api/chat/messages"},
			{"PUT", "/api/notifications/read-all"},
			{"PUT", "/api/notifications/n1/read"},
		}
		for _, r := range routes {
			status := call(t, app, r.method, r.path, adminToken)
			assert.NotContains(t, []int{fiber.StatusNotFound, fiber.StatusMethodNotAllowed}, status, r.method+" "+r.path)
		}
	})
}
