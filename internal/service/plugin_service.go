package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/auditkit/revision-service/internal/domain"
	"github.com/auditkit/revision-service/internal/enterprise"
	"github.com/auditkit/revision-service/internal/events"
	"github.com/auditkit/revision-service/internal/plugins"
)

// PluginService installs and clears optional form fields at runtime.
type PluginService struct {
	registry   *plugins.Registry
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// NewPluginService constructs the service.
func NewPluginService(registry *plugins.Registry, dispatcher events.Dispatcher, logger *zap.Logger) *PluginService {
	return &PluginService{registry: registry, dispatcher: dispatcher, logger: loggerOrNop(logger)}
}

// Fields returns the registered form fields.
func (s *PluginService) Fields() []plugins.FormField {
	return s.registry.Fields()
}

// InstallCacheTTL registers the cache_ttl field.
func (s *PluginService) InstallCacheTTL(ctx context.Context, principal domain.Principal) []plugins.FormField {
	s.registry.Install(enterprise.CacheTTLField)
	s.changed(ctx, principal)
	return s.registry.Fields()
}

// Clear removes every registered field.
func (s *PluginService) Clear(ctx context.Context, principal domain.Principal) {
	s.registry.Clear()
	s.changed(ctx, principal)
}

func (s *PluginService) changed(ctx context.Context, principal domain.Principal) {
	fields := s.registry.Fields()
	names := make([]string, 0, len(fields))
	for _, f := range fields {
		names = append(names, f.Name)
	}
	publish(ctx, s.dispatcher, s.logger, events.New(events.EventPluginFieldsChanged, "plugins/form-fields",
		principal.Actor(), events.PluginFieldsChangedPayload{Fields: names}))
}
