package worker

import (
	"go.uber.org/zap"

	"github.com/spec-kit/issue-board/internal/service"
)

// StartNotificationWorker registers notification handlers on the dispatcher.
func StartNotificationWorker(notificationService *service.NotificationService, logger *zap.Logger) {
	if notificationService == nil {
		logger.Info("notifications disabled")
		return
	}
	notificationService.RegisterHandlers()
	logger.Info("notification handlers registered")
}
