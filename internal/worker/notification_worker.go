package worker

import (
	"go.uber.org/zap"

	"github.com/spec-kit/middleman-engine/internal/config"
	"github.com/spec-kit/middleman-engine/internal/events"
	"github.com/spec-kit/middleman-engine/internal/platform"
	"github.com/spec-kit/middleman-engine/internal/service"
)

// StartNotificationWorker wires the notification service onto the event
// dispatcher and returns it.
func StartNotificationWorker(notifier platform.Notifier, channels config.ChannelConfig, dispatcher events.Dispatcher, logger *zap.Logger) *service.NotificationService {
	if notifier == nil || dispatcher == nil {
		return nil
	}
	return service.NewNotificationService(notifier, channels, dispatcher, logger)
}
