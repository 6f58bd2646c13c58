package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/sales-service/internal/api/http"
	"github.com/spec-kit/sales-service/internal/api/http/handlers"
	"github.com/spec-kit/sales-service/internal/auth"
	"github.com/spec-kit/sales-service/internal/config"
	"github.com/spec-kit/sales-service/internal/events"
	"github.com/spec-kit/sales-service/internal/observability"
	"github.com/spec-kit/sales-service/internal/persistence"
	"github.com/spec-kit/sales-service/internal/realtime"
	"github.com/spec-kit/sales-service/internal/repository"
	"github.com/spec-kit/sales-service/internal/service"
	"github.com/spec-kit/sales-service/internal/storage"
	"github.com/spec-kit/sales-service/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger, cfg.App)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	metrics := observability.NewMetrics()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis, err := persistence.NewRedis(ctx, cfg.Redis, cfg.Realtime.Bus == config.RealtimeBusRedis, logger)
	if err != nil {
		logger.Fatal("failed to connect redis", zap.Error(err))
	}
	defer redis.Close()

	store, err := newStorage(ctx, cfg.Storage, logger)
	if err != nil {
		logger.Fatal("failed to init storage", zap.Error(err))
	}

	pool := pg.PoolHandle()
	userRepo := repository.NewUserRepository(pool)
	departmentRepo := repository.NewDepartmentRepository(pool)
	teamRepo := repository.NewTeamRepository(pool)
	customerRepo := repository.NewCustomerRepository(pool)
	roomRepo := repository.NewChatRoomRepository(pool)
	messageRepo := repository.NewChatMessageRepository(pool)
	postRepo := repository.NewPostRepository(pool)
	resourceRepo := repository.NewResourceRepository(pool)
	notificationRepo := repository.NewNotificationRepository(pool)
	settingsRepo := repository.NewSiteSettingsRepository(pool)
	activityRepo := repository.NewActivityLogRepository(pool)

	dispatcher := events.NewInMemoryDispatcher()

	registry := realtime.NewRegistry()
	localBus := realtime.NewLocalBus(registry, metrics, logger)
	var pusher realtime.Pusher = localBus
	var redisBus *realtime.RedisBus
	if cfg.Realtime.Bus == config.RealtimeBusRedis {
		redisBus = realtime.NewRedisBus(redis.Client, cfg.Realtime.Channel, localBus, logger)
		pusher = redisBus
	}

	activity := service.NewActivityLogService(activityRepo, logger)
	authService := service.NewAuthService(*cfg, service.AuthDependencies{
		UserRepo:   userRepo,
		Dispatcher: dispatcher,
		Logger:     logger,
	})
	adminService := service.NewAdminService(cfg.Auth, service.AdminDependencies{
		UserRepo:       userRepo,
		DepartmentRepo: departmentRepo,
		TeamRepo:       teamRepo,
		CustomerRepo:   customerRepo,
		Activity:       activity,
		Dispatcher:     dispatcher,
		Logger:         logger,
	})
	customerService := service.NewCustomerService(service.CustomerDependencies{
		CustomerRepo: customerRepo,
		Activity:     activity,
		Dispatcher:   dispatcher,
		Logger:       logger,
	})
	orgService := service.NewOrganizationService(service.OrganizationDependencies{
		DepartmentRepo: departmentRepo,
		TeamRepo:       teamRepo,
		UserRepo:       userRepo,
	})
	chatService := service.NewChatService(service.ChatDependencies{
		RoomRepo:    roomRepo,
		MessageRepo: messageRepo,
		UserRepo:    userRepo,
		Pusher:      pusher,
		Dispatcher:  dispatcher,
		Storage:     store,
		Logger:      logger,
	})
	postService := service.NewPostService(service.PostDependencies{
		PostRepo:   postRepo,
		Storage:    store,
		Dispatcher: dispatcher,
		Logger:     logger,
	})
	resourceService := service.NewResourceService(resourceRepo, store, logger)
	settingsService := service.NewSiteSettingsService(settingsRepo, store)
	notificationService := service.NewNotificationService(service.NotificationDependencies{
		NotificationRepo: notificationRepo,
		UserRepo:         userRepo,
		Pusher:           pusher,
		Dispatcher:       dispatcher,
		Metrics:          metrics,
		Logger:           logger,
	})

	worker.StartNotificationWorker(notificationService)
	if err := worker.StartRealtimeRelay(ctx, redisBus, logger); err != nil {
		logger.Fatal("failed to subscribe realtime channel", zap.Error(err))
	}

	tokens := authService.TokenManager()
	authMiddleware := auth.NewAuthMiddleware(tokens, userRepo)

	app := fiber.New(fiber.Config{
		AppName:   cfg.App.Name,
		BodyLimit: cfg.Storage.MaxUploadBytes(),
	})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.HTTP.AllowOrigins, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, registry.Len, readinessChecks(pg, redis, redisBus != nil, store)...),
		Auth:           handlers.NewAuthHandler(authService),
		Admin:          handlers.NewAdminHandler(adminService),
		Customers:      handlers.NewCustomerHandler(customerService),
		Organization:   handlers.NewOrganizationHandler(orgService),
		Chat:           handlers.NewChatHandler(chatService),
		Posts:          handlers.NewPostHandler(postService),
		Resources:      handlers.NewResourceHandler(resourceService),
		SiteSettings:   handlers.NewSiteSettingsHandler(settingsService),
		Notifications:  handlers.NewNotificationHandler(notificationService),
		ActivityLogs:   handlers.NewActivityLogHandler(activity, customerService),
		Realtime:       handlers.NewRealtimeHandler(realtime.NewServer(registry, authMiddleware.VerifySocketToken, logger)),
		Uploads:        handlers.NewUploadsHandler(store, logger),
		UploadsPrefix:  cfg.Storage.PublicPrefix,
		Metrics:        metrics.Handler(),
		AuthRateLimit:  cfg.HTTP.AuthRateLimit,
		AuthMiddleware: authMiddleware,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	cancel()
	_ = app.Shutdown()
}

func newStorage(ctx context.Context, cfg config.StorageConfig, logger *zap.Logger) (storage.Storage, error) {
	if cfg.Driver == config.StorageDriverMinio {
		return storage.NewMinioStorage(ctx, cfg, logger)
	}
	return storage.NewLocalStorage(cfg.LocalDir, cfg.PublicPrefix)
}

func readinessChecks(pg *persistence.Postgres, redis *persistence.Redis, redisRequired bool, store storage.Storage) []handlers.NamedChecker {
	checks := []handlers.NamedChecker{{Name: "postgres", Checker: pg}}
	if redisRequired {
		checks = append(checks, handlers.NamedChecker{Name: "redis", Checker: redis})
	}
	if c, ok := store.(handlers.Checker); ok {
		checks = append(checks, handlers.NamedChecker{Name: "storage", Checker: c})
	}
	return checks
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
