package worker

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/sales-service/internal/realtime"
	"github.com/spec-kit/sales-service/internal/service"
)

// StartNotificationWorker registers notification handlers.
func StartNotificationWorker(notificationService *service.NotificationService) {
	if notificationService == nil {
		return
	}
	notificationService.RegisterHandlers()
}

// StartRealtimeRelay subscribes to the shared push channel and delivers
// messages to sockets held by this instance until ctx is cancelled.
func StartRealtimeRelay(ctx context.Context, bus *realtime.RedisBus, logger *zap.Logger) error {
	if bus == nil {
		return nil
	}
	sub, err := bus.Subscribe(ctx)
	if err != nil {
		return err
	}
	go func() {
		bus.Run(ctx, sub)
		logger.Info("realtime relay stopped")
	}()
	return nil
}
