package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/auditkit/revision-service/internal/domain"
	"github.com/auditkit/revision-service/internal/events"
	"github.com/auditkit/revision-service/internal/plugins"
	"github.com/auditkit/revision-service/internal/repository"
	"github.com/auditkit/revision-service/internal/repository/memory"
	"github.com/auditkit/revision-service/internal/service"
)

var (
	editor = domain.Principal{UserID: 1, CommonName: "Ada Lovelace", Role: domain.RoleEditor}
	viewer = domain.Principal{UserID: 2, CommonName: "Vic Viewer", Role: domain.RoleViewer}
	admin  = domain.Principal{UserID: 3, CommonName: "Root Admin", Role: domain.RoleAdmin}
)

type fixture struct {
	repos      repository.Repositories
	registry   *plugins.Registry
	dispatcher events.Dispatcher
	entities   *service.EntityService
	revisions  *service.RevisionService
	audit      *service.AuditService
	published  []events.Event
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db, err := memory.New()
	require.NoError(t, err)

	f := &fixture{
		repos:      db.Repositories(),
		registry:   plugins.NewRegistry(),
		dispatcher: events.NewInMemoryDispatcher(),
	}
	record := func(_ context.Context, e events.Event) error {
		f.published = append(f.published, e)
		return nil
	}
	for _, et := range []events.EventType{
		events.EventEntityCreated,
		events.EventEntityUpdated,
		events.EventEntityMoved,
		events.EventRevisionReverted,
		events.EventAlertChannelsUpdated,
		events.EventNotificationArchived,
	} {
		f.dispatcher.Subscribe(et, record)
	}

	f.entities = service.NewEntityService(service.EntityDependencies{
		Repos:      f.repos,
		Registry:   f.registry,
		Dispatcher: f.dispatcher,
	})
	f.revisions = service.NewRevisionService(service.RevisionDependencies{
		Repos:      f.repos,
		Dispatcher: f.dispatcher,
	})
	f.audit = service.NewAuditService(service.AuditDependencies{
		Repos:      f.repos,
		Dispatcher: f.dispatcher,
	})
	return f
}

func (f *fixture) eventTypes() []events.EventType {
	out := make([]events.EventType, 0, len(f.published))
	for _, e := range f.published {
		out = append(out, e.Type)
	}
	return out
}

func (f *fixture) createQuestion(t *testing.T, name string) domain.Snapshot {
	t.Helper()
	res, err := f.entities.Save(context.Background(), editor, service.SaveInput{
		EntityType: domain.EntityQuestion,
		Name:       name,
		Content:    map[string]any{"query": "SELECT 1", "display": "table"},
	})
	require.NoError(t, err)
	return res.Entity
}

func strPtr(s string) *string { return &s }
