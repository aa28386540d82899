package service_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	redis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/auditkit/revision-service/internal/audit"
	"github.com/auditkit/revision-service/internal/cache"
	"github.com/auditkit/revision-service/internal/domain"
	"github.com/auditkit/revision-service/internal/events"
	"github.com/auditkit/revision-service/internal/service"
)

func seedNotifications(t *testing.T, f *fixture) (domain.Alert, domain.Subscription) {
	t.Helper()
	ctx := context.Background()

	col, err := f.entities.CreateCollection(ctx, editor, "Finance")
	require.NoError(t, err)
	q := f.createQuestion(t, "Revenue")
	_, err = f.entities.Move(ctx, editor, domain.EntityQuestion, *q.ID, &col.ID)
	require.NoError(t, err)
	dash, err := f.entities.Save(ctx, editor, service.SaveInput{EntityType: domain.EntityDashboard, Name: "Ops overview"})
	require.NoError(t, err)

	hour := 8
	created := time.Date(2021, 3, 7, 10, 0, 0, 0, time.UTC)
	alert := domain.Alert{
		CardID:    *q.ID,
		Condition: domain.AlertConditionRows,
		Channels: []domain.Channel{{
			Type:         domain.ChannelEmail,
			Enabled:      true,
			ScheduleType: domain.ScheduleDaily,
			ScheduleHour: &hour,
			Recipients:   []domain.Recipient{{Email: "a@example.com"}, {Email: "b@example.com"}},
		}},
		CreatorName: "Ada Lovelace",
		CreatedAt:   created,
	}
	require.NoError(t, f.repos.Alerts.Create(ctx, &alert))

	sub := domain.Subscription{
		DashboardID: *dash.Entity.ID,
		Channels: []domain.Channel{{
			Type:         domain.ChannelSlack,
			Enabled:      true,
			ScheduleType: domain.ScheduleWeekly,
			ScheduleDay:  "mon",
			SlackChannel: "#ops",
		}},
		Filters:     []domain.DashboardFilter{{Name: "state", Value: "CA"}},
		CreatorName: "Root Admin",
		CreatedAt:   created,
	}
	require.NoError(t, f.repos.Subscriptions.Create(ctx, &sub))
	return alert, sub
}

func TestAuditServiceTables(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	alert, sub := seedNotifications(t, f)

	t.Run("alerts table", func(t *testing.T) {
		view, err := f.audit.Alerts(ctx, "")
		require.NoError(t, err)
		assert.Equal(t, "Alerts", view.Name)
		assert.NotContains(t, view.Columns, "card_id")
		require.Len(t, view.Rows, 1)
		assert.Equal(t, alert.ID, view.Rows[0].ID)
		assert.Equal(t, []string{
			"Revenue",
			"a@example.com, b@example.com",
			"email",
			"Finance",
			"Every day at 8:00 AM",
			"Ada Lovelace",
			"3/7/2021",
			"Has any results",
		}, view.Rows[0].Cells)
	})

	t.Run("alerts search", func(t *testing.T) {
		view, err := f.audit.Alerts(ctx, "reve")
		require.NoError(t, err)
		assert.Len(t, view.Rows, 1)

		view, err = f.audit.Alerts(ctx, "nothing")
		require.NoError(t, err)
		assert.Empty(t, view.Rows)
	})

	t.Run("subscriptions table", func(t *testing.T) {
		view, err := f.audit.Subscriptions(ctx, "ops")
		require.NoError(t, err)
		require.Len(t, view.Rows, 1)
		assert.Equal(t, sub.ID, view.Rows[0].ID)
		assert.Equal(t, "#ops", view.Rows[0].Cells[1])
		assert.Equal(t, "slack", view.Rows[0].Cells[2])
		assert.Equal(t, "Our analytics", view.Rows[0].Cells[3])
		assert.Equal(t, "Every Monday", view.Rows[0].Cells[4])
		assert.Equal(t, "", view.Rows[0].Cells[5])
		assert.Equal(t, "state: CA", view.Rows[0].Cells[8])

		view, err = f.audit.Subscriptions(ctx, "sales")
		require.NoError(t, err)
		assert.Empty(t, view.Rows)
	})

	t.Run("unknown query", func(t *testing.T) {
		table := audit.Alerts()
		table.Card.Query.Fn = "audit.pages.missing/table"
		_, err := f.audit.RunTable(ctx, table)
		assert.Equal(t, http.StatusBadRequest, statusOf(err))

		table.Card.Query.Type = "native"
		_, err = f.audit.RunTable(ctx, table)
		assert.Equal(t, http.StatusBadRequest, statusOf(err))
	})
}

func TestAuditServiceEditing(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	alert, sub := seedNotifications(t, f)

	got, err := f.audit.Alert(ctx, alert.ID)
	require.NoError(t, err)
	assert.Equal(t, "Revenue", got.CardName)
	require.NotNil(t, got.Collection)
	assert.Equal(t, "Finance", got.Collection.Name)

	updated, err := f.audit.SetAlertChannels(ctx, admin, alert.ID, []domain.Channel{{
		Type:         domain.ChannelSlack,
		Enabled:      true,
		ScheduleType: domain.ScheduleHourly,
		SlackChannel: "#alerts",
	}})
	require.NoError(t, err)
	require.Len(t, updated.Channels, 1)
	assert.Equal(t, "#alerts", updated.Channels[0].SlackChannel)

	require.NoError(t, f.audit.DeleteAlert(ctx, admin, alert.ID))
	_, err = f.audit.Alert(ctx, alert.ID)
	assert.Equal(t, http.StatusNotFound, statusOf(err))
	assert.Equal(t, http.StatusNotFound, statusOf(f.audit.DeleteAlert(ctx, admin, alert.ID)))

	require.NoError(t, f.audit.DeleteSubscription(ctx, admin, sub.ID))
	assert.Equal(t, http.StatusNotFound, statusOf(f.audit.DeleteSubscription(ctx, admin, sub.ID)))

	view, err := f.audit.Subscriptions(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, view.Rows)

	assert.Contains(t, f.eventTypes(), events.EventAlertChannelsUpdated)
	assert.Contains(t, f.eventTypes(), events.EventNotificationArchived)
}

func TestAuditServiceCache(t *testing.T) {
	ctx := context.Background()
	mini, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mini.Close)
	client := redis.NewClient(&redis.Options{Addr: mini.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	f := newFixture(t)
	f.audit = service.NewAuditService(service.AuditDependencies{
		Repos:      f.repos,
		Cache:      cache.NewTableCache(client, time.Minute),
		Dispatcher: f.dispatcher,
	})
	f.audit.RegisterHandlers()
	alert, _ := seedNotifications(t, f)

	view, err := f.audit.Alerts(ctx, "")
	require.NoError(t, err)
	require.Len(t, view.Rows, 1)
	assert.NotEmpty(t, mini.Keys())

	// Archiving bypasses the service, so the cached table is still served.
	require.NoError(t, f.repos.Alerts.Archive(ctx, alert.ID))
	view, err = f.audit.Alerts(ctx, "")
	require.NoError(t, err)
	assert.Len(t, view.Rows, 1)
	assert.Equal(t, "3/7/2021", view.Rows[0].Cells[6])

	// A domain event drops the cached table.
	require.NoError(t, f.dispatcher.Publish(ctx, events.New(events.EventNotificationArchived, "alert/1", admin.Actor(), nil)))
	view, err = f.audit.Alerts(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, view.Rows)
}
