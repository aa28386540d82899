package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/auditkit/revision-service/internal/events"
)

// AuditLogService writes a structured log line for every domain event.
type AuditLogService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// NewAuditLogService creates the service.
func NewAuditLogService(dispatcher events.Dispatcher, logger *zap.Logger) *AuditLogService {
	return &AuditLogService{
		dispatcher: dispatcher,
		logger:     loggerOrNop(logger).Named("audit"),
	}
}

// RegisterHandlers subscribes to events.
func (a *AuditLogService) RegisterHandlers() {
	if a.dispatcher == nil {
		return
	}
	a.dispatcher.Subscribe(events.EventEntityCreated, a.handle("EntityCreated"))
	a.dispatcher.Subscribe(events.EventEntityUpdated, a.handle("EntityUpdated"))
	a.dispatcher.Subscribe(events.EventEntityMoved, a.handle("EntityMoved"))
	a.dispatcher.Subscribe(events.EventRevisionReverted, a.handle("RevisionReverted"))
	a.dispatcher.Subscribe(events.EventAlertChannelsUpdated, a.handle("AlertChannelsUpdated"))
	a.dispatcher.Subscribe(events.EventNotificationArchived, a.handle("NotificationArchived"))
	a.dispatcher.Subscribe(events.EventPluginFieldsChanged, a.handle("PluginFieldsChanged"))
}

func (a *AuditLogService) handle(name string) events.EventHandler {
	return func(_ context.Context, event events.Event) error {
		a.logger.Info(name,
			zap.String("event_id", event.ID),
			zap.String("subject", event.Subject),
			zap.Int64("actor_id", event.Actor.ID),
			zap.Any("payload", event.Payload))
		return nil
	}
}
