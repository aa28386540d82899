// Package service implements the application workflows on top of the
// repositories, the save engine and the timeline builder.
package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/auditkit/revision-service/internal/events"
)

func publish(ctx context.Context, dispatcher events.Dispatcher, logger *zap.Logger, event events.Event) {
	if dispatcher == nil {
		return
	}
	if err := dispatcher.Publish(ctx, event); err != nil {
		logger.Warn("event handler failed",
			zap.String("event_type", string(event.Type)),
			zap.String("subject", event.Subject),
			zap.Error(err))
	}
}

func loggerOrNop(logger *zap.Logger) *zap.Logger {
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}
