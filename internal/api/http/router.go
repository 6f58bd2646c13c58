package http

import (
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	"github.com/spec-kit/sales-service/internal/api/http/handlers"
	"github.com/spec-kit/sales-service/internal/auth"
	apperrors "github.com/spec-kit/sales-service/pkg/util/errorutil"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Admin          *handlers.AdminHandler
	Customers      *handlers.CustomerHandler
	Organization   *handlers.OrganizationHandler
	Chat           *handlers.ChatHandler
	Posts          *handlers.PostHandler
	Resources      *handlers.ResourceHandler
	SiteSettings   *handlers.SiteSettingsHandler
	Notifications  *handlers.NotificationHandler
	ActivityLogs   *handlers.ActivityLogHandler
	Realtime       *handlers.RealtimeHandler
	Uploads        *handlers.UploadsHandler
	UploadsPrefix  string
	Metrics        http.Handler
	AuthRateLimit  int
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	if cfg.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(cfg.Metrics))
	}
	if cfg.Uploads != nil {
		app.Get(cfg.UploadsPrefix+"/*", cfg.Uploads.Serve)
	}
	if cfg.Realtime != nil {
		app.Use("/ws", cfg.Realtime.Upgrade)
		app.Get("/ws", cfg.Realtime.Serve())
	}

	api := app.Group("/api")

	authGroup := api.Group("/auth")
	if cfg.AuthRateLimit > 0 {
		authGroup.Use([]string{"/login", "/register"}, authLimiter(cfg.AuthRateLimit))
	}
	authGroup.Post("/register", cfg.Auth.Register)
	authGroup.Post("/login", cfg.Auth.Login)

	// Public so the login page can render branding.
	api.Get("/site-settings", cfg.SiteSettings.Get)
	api.Get("/posts", cfg.Posts.List)
	api.Get("/posts/:id", cfg.Posts.Get)

	protected := api.Group("", cfg.AuthMiddleware.Handle, auth.RequireRoles())
	protected.Get("/auth/me", cfg.Auth.Me)
	protected.Post("/auth/password", cfg.Auth.ChangePassword)

	// The PATCH forms are aliases of the PUT routes.
	admin := protected.Group("/admin/users", auth.RequireRoles(auth.AdminRoles...))
	admin.Get("/", cfg.Admin.ListUsers)
	admin.Post("/", cfg.Admin.CreateUser)
	admin.Post("/approve", cfg.Admin.Approve)
	admin.Put("/:id/status", cfg.Admin.UpdateStatus)
	admin.Patch("/:id/status", cfg.Admin.UpdateStatus)
	admin.Put("/:id/user-type", cfg.Admin.UpdateType)
	admin.Patch("/:id/type", cfg.Admin.UpdateType)
	admin.Put("/:id/set-manager", cfg.Admin.SetManager)
	admin.Patch("/:id/manager", cfg.Admin.SetManager)
	admin.Put("/:id/assign-org", cfg.Admin.AssignOrg)
	admin.Patch("/:id/organization", cfg.Admin.AssignOrg)
	admin.Get("/:id/customers", cfg.Admin.Customers)

	customers := protected.Group("/customers")
	customers.Get("/", cfg.Customers.List)
	customers.Post("/", cfg.Customers.Create)
	customers.Get("/:id", cfg.Customers.Get)
	customers.Put("/:id", cfg.Customers.Update)
	customers.Delete("/:id", cfg.Customers.Delete)

	org := protected.Group("/organization", auth.RequireRoles(auth.OrganizationRoles...))
	org.Get("/departments", cfg.Organization.Departments)
	org.Post("/departments", cfg.Organization.CreateDepartment)
	org.Get("/teams", cfg.Organization.Teams)
	org.Post("/teams", cfg.Organization.CreateTeam)
	org.Get("/tree", cfg.Organization.Tree)

	chat := protected.Group("/chat")
	chat.Get("/targets", cfg.Chat.Targets)
	chat.Get("/subordinates", cfg.Chat.Subordinates)
	chat.Get("/rooms", cfg.Chat.Rooms)
	chat.Post("/rooms", auth.RequireRoles(auth.GroupChatRoles...), cfg.Chat.CreateGroup)
	chat.Post("/one-on-one", cfg.Chat.OneOnOne)
	chat.Post("/rooms/direct", cfg.Chat.OneOnOne)
	chat.Delete("/rooms/:id", cfg.Chat.DeleteRoom)
	chat.Get("/rooms/:id/messages", cfg.Chat.Messages)
	chat.Post("/rooms/:id/messages", cfg.Chat.SendMessage)
	chat.Post("/messages", cfg.Chat.SendMessage)
	chat.Delete("/messages/:id", cfg.Chat.DeleteMessage)
	chat.Post("/upload", cfg.Chat.Upload)

	editor := auth.RequireRoles(auth.ContentEditorRoles...)

	posts := protected.Group("/posts")
	posts.Post("/", editor, cfg.Posts.Create)
	posts.Delete("/:id", editor, cfg.Posts.Delete)
	posts.Post("/:id/comments", cfg.Posts.AddComment)

	resources := protected.Group("/resources")
	resources.Get("/", cfg.Resources.List)
	resources.Post("/", editor, cfg.Resources.Create)
	resources.Delete("/:id", editor, cfg.Resources.Delete)

	protected.Put("/site-settings", editor, cfg.SiteSettings.Update)

	notifications := protected.Group("/notifications")
	notifications.Get("/", cfg.Notifications.List)
	notifications.Put("/read-all", cfg.Notifications.MarkAllRead)
	notifications.Patch("/read-all", cfg.Notifications.MarkAllRead)
	notifications.Put("/:id/read", cfg.Notifications.MarkRead)
	notifications.Patch("/:id/read", cfg.Notifications.MarkRead)

	protected.Get("/logs/:entityType/:entityId", cfg.ActivityLogs.List)
}

func authLimiter(perMinute int) fiber.Handler {
	return limiter.New(limiter.Config{
		Max:        perMinute,
		Expiration: time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return apperrors.NewDomainError("RATE_LIMITED", "요청이 너무 많습니다. 잠시 후 다시 시도해주세요.", fiber.StatusTooManyRequests, nil)
		},
	})
}
