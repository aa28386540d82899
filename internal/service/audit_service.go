package service

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/auditkit/revision-service/internal/audit"
	"github.com/auditkit/revision-service/internal/cache"
	"github.com/auditkit/revision-service/internal/domain"
	"github.com/auditkit/revision-service/internal/events"
	"github.com/auditkit/revision-service/internal/observability"
	"github.com/auditkit/revision-service/internal/repository"
	apperrors "github.com/auditkit/revision-service/pkg/util/errorutil"
)

// QueryFunc answers an internal table query.
type QueryFunc func(ctx context.Context, args []any) (audit.Result, error)

// AuditService runs the audit tables and edits the notifications they list.
type AuditService struct {
	entities      repository.EntityRepository
	collections   repository.CollectionRepository
	alerts        repository.AlertRepository
	subscriptions repository.SubscriptionRepository
	cache         *cache.TableCache
	dispatcher    events.Dispatcher
	metrics       *observability.Metrics
	logger        *zap.Logger

	mu      sync.RWMutex
	queries map[string]QueryFunc
}

// AuditDependencies bundles collaborators for the audit service.
type AuditDependencies struct {
	Repos      repository.Repositories
	Cache      *cache.TableCache
	Dispatcher events.Dispatcher
	Metrics    *observability.Metrics
	Logger     *zap.Logger
}

// NewAuditService constructs the service with the built-in table queries.
func NewAuditService(deps AuditDependencies) *AuditService {
	s := &AuditService{
		entities:      deps.Repos.Entities,
		collections:   deps.Repos.Collections,
		alerts:        deps.Repos.Alerts,
		subscriptions: deps.Repos.Subscriptions,
		cache:         deps.Cache,
		dispatcher:    deps.Dispatcher,
		metrics:       deps.Metrics,
		logger:        loggerOrNop(deps.Logger),
		queries:       make(map[string]QueryFunc),
	}
	s.RegisterQuery(audit.SubscriptionsTableFn, s.subscriptionsTable)
	s.RegisterQuery(audit.AlertsTableFn, s.alertsTable)
	return s
}

// RegisterQuery makes fn available to tables with an internal query.
func (s *AuditService) RegisterQuery(fn string, q QueryFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.queries[fn] = q
}

// RegisterHandlers drops cached tables when their rows may have changed.
func (s *AuditService) RegisterHandlers() {
	if s.dispatcher == nil {
		return
	}
	s.dispatcher.Subscribe(events.EventAlertChannelsUpdated, s.invalidate(audit.AlertsTableFn))
	s.dispatcher.Subscribe(events.EventNotificationArchived, s.invalidate(audit.AlertsTableFn, audit.SubscriptionsTableFn))
	s.dispatcher.Subscribe(events.EventEntityUpdated, s.invalidate(audit.AlertsTableFn, audit.SubscriptionsTableFn))
	s.dispatcher.Subscribe(events.EventEntityMoved, s.invalidate(audit.AlertsTableFn, audit.SubscriptionsTableFn))
	s.dispatcher.Subscribe(events.EventRevisionReverted, s.invalidate(audit.AlertsTableFn, audit.SubscriptionsTableFn))
}

func (s *AuditService) invalidate(fns ...string) events.EventHandler {
	return func(ctx context.Context, _ events.Event) error {
		var errs []error
		for _, fn := range fns {
			if err := s.cache.Invalidate(ctx, fn); err != nil {
				errs = append(errs, err)
			}
		}
		return errors.Join(errs...)
	}
}

// RunTable executes a table's query and lays the rows out per its columns.
func (s *AuditService) RunTable(ctx context.Context, t audit.Table) (audit.View, error) {
	q := t.Card.Query
	if q.Type != audit.QueryTypeInternal {
		return audit.View{}, apperrors.NewValidationError("unsupported query type", map[string]any{"type": q.Type})
	}
	s.mu.RLock()
	run, ok := s.queries[q.Fn]
	s.mu.RUnlock()
	if !ok {
		return audit.View{}, apperrors.NewValidationError("unknown table query", map[string]any{"fn": q.Fn})
	}

	label := strings.ToLower(t.Card.Name)
	result, hit, err := s.cache.Get(ctx, q)
	if err != nil {
		s.logger.Warn("audit table cache read failed", zap.String("fn", q.Fn), zap.Error(err))
	}
	if s.cache.Enabled() {
		s.metrics.RecordTableCache(label, hit)
	}
	if !hit {
		result, err = run(ctx, q.Args)
		if err != nil {
			return audit.View{}, fmt.Errorf("run %s: %w", q.Fn, err)
		}
		if err := s.cache.Set(ctx, q, result); err != nil {
			s.logger.Warn("audit table cache write failed", zap.String("fn", q.Fn), zap.Error(err))
		}
	}
	return audit.Project(t, result), nil
}

// Subscriptions lists dashboard subscriptions whose dashboard name contains
// dashboardName.
func (s *AuditService) Subscriptions(ctx context.Context, dashboardName string) (audit.View, error) {
	return s.RunTable(ctx, audit.Subscriptions(dashboardName))
}

// Alerts lists question alerts whose question name contains search.
func (s *AuditService) Alerts(ctx context.Context, search string) (audit.View, error) {
	view, err := s.RunTable(ctx, audit.Alerts())
	if err != nil {
		return audit.View{}, err
	}
	return filterView(view, "card_name", search), nil
}

// Alert returns one active alert with its question and collection resolved.
func (s *AuditService) Alert(ctx context.Context, id int64) (*domain.Alert, error) {
	alert, err := s.activeAlert(ctx, id)
	if err != nil {
		return nil, err
	}
	s.resolveAlert(ctx, alert)
	return alert, nil
}

// SetAlertChannels replaces the delivery channels of an alert.
func (s *AuditService) SetAlertChannels(
	ctx context.Context,
	principal domain.Principal,
	id int64,
	channels []domain.Channel,
) (*domain.Alert, error) {
	if _, err := s.activeAlert(ctx, id); err != nil {
		return nil, err
	}
	if err := s.alerts.UpdateChannels(ctx, id, channels); err != nil {
		return nil, notFoundOr(err, "alert")
	}
	publish(ctx, s.dispatcher, s.logger, events.New(events.EventAlertChannelsUpdated, fmt.Sprintf("alert/%d", id),
		principal.Actor(), events.NotificationChangedPayload{Kind: events.NotificationAlert, ID: id}))
	return s.Alert(ctx, id)
}

// DeleteAlert archives an alert.
func (s *AuditService) DeleteAlert(ctx context.Context, principal domain.Principal, id int64) error {
	if _, err := s.activeAlert(ctx, id); err != nil {
		return err
	}
	if err := s.alerts.Archive(ctx, id); err != nil {
		return notFoundOr(err, "alert")
	}
	publish(ctx, s.dispatcher, s.logger, events.New(events.EventNotificationArchived, fmt.Sprintf("alert/%d", id),
		principal.Actor(), events.NotificationChangedPayload{Kind: events.NotificationAlert, ID: id}))
	return nil
}

// DeleteSubscription archives a dashboard subscription.
func (s *AuditService) DeleteSubscription(ctx context.Context, principal domain.Principal, id int64) error {
	sub, err := s.subscriptions.Get(ctx, id)
	if err != nil {
		return notFoundOr(err, "subscription")
	}
	if sub.Archived {
		return apperrors.NewNotFound("subscription", map[string]any{"id": id})
	}
	if err := s.subscriptions.Archive(ctx, id); err != nil {
		return notFoundOr(err, "subscription")
	}
	publish(ctx, s.dispatcher, s.logger, events.New(events.EventNotificationArchived, fmt.Sprintf("subscription/%d", id),
		principal.Actor(), events.NotificationChangedPayload{Kind: events.NotificationSubscription, ID: id}))
	return nil
}

func (s *AuditService) activeAlert(ctx context.Context, id int64) (*domain.Alert, error) {
	alert, err := s.alerts.Get(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "alert")
	}
	if alert.Archived {
		return nil, apperrors.NewNotFound("alert", map[string]any{"id": id})
	}
	return alert, nil
}

func (s *AuditService) subscriptionsTable(ctx context.Context, args []any) (audit.Result, error) {
	var dashboardName string
	if len(args) > 0 {
		dashboardName, _ = args[0].(string)
	}
	subs, err := s.subscriptions.ListActive(ctx)
	if err != nil {
		return audit.Result{}, err
	}

	result := audit.Result{Columns: []string{
		"id", "dashboard_id", "dashboard_name", "recipients", "type", "collection",
		"frequency", "last_sent", "created_by", "created_at", "filters",
	}}
	for _, sub := range subs {
		dashboard, collection := s.resolveEntity(ctx, domain.EntityDashboard, sub.DashboardID)
		if !containsFold(dashboard, dashboardName) {
			continue
		}
		var lastSent any
		if sub.LastSentAt != nil {
			lastSent = *sub.LastSentAt
		}
		result.Rows = append(result.Rows, []any{
			sub.ID,
			sub.DashboardID,
			dashboard,
			recipientList(sub.Channels),
			channelTypes(sub.Channels),
			collectionName(collection),
			frequency(sub.Channels),
			lastSent,
			sub.CreatorName,
			sub.CreatedAt,
			filterList(sub.Filters),
		})
	}
	return result, nil
}

func (s *AuditService) alertsTable(ctx context.Context, _ []any) (audit.Result, error) {
	alerts, err := s.alerts.ListActive(ctx)
	if err != nil {
		return audit.Result{}, err
	}

	result := audit.Result{Columns: []string{
		"id", "card_id", "card_name", "recipients", "subscription_type", "collection",
		"frequency", "created_by", "created_at", "comparison",
	}}
	for i := range alerts {
		alert := &alerts[i]
		s.resolveAlert(ctx, alert)
		result.Rows = append(result.Rows, []any{
			alert.ID,
			alert.CardID,
			alert.CardName,
			recipientList(alert.Channels),
			channelTypes(alert.Channels),
			collectionName(alert.Collection),
			frequency(alert.Channels),
			alert.CreatorName,
			alert.CreatedAt,
			comparison(*alert),
		})
	}
	return result, nil
}

func (s *AuditService) resolveAlert(ctx context.Context, alert *domain.Alert) {
	alert.CardName, alert.Collection = s.resolveEntity(ctx, domain.EntityQuestion, alert.CardID)
}

// resolveEntity looks up the name and collection of a notification target.
// A missing target resolves to empty values.
func (s *AuditService) resolveEntity(ctx context.Context, entityType domain.EntityType, id int64) (string, *domain.CollectionRef) {
	snap, err := s.entities.Get(ctx, entityType, id)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			s.logger.Warn("resolve notification target failed",
				zap.String("entity_type", string(entityType)),
				zap.Int64("entity_id", id),
				zap.Error(err))
		}
		return "", nil
	}
	if snap.CollectionID == nil {
		return snap.Name, nil
	}
	c, err := s.collections.Get(ctx, *snap.CollectionID)
	if err != nil {
		return snap.Name, &domain.CollectionRef{ID: *snap.CollectionID}
	}
	return snap.Name, &domain.CollectionRef{ID: c.ID, Name: c.Name}
}

func filterView(view audit.View, column, search string) audit.View {
	search = strings.TrimSpace(search)
	idx := slices.Index(view.Columns, column)
	if search == "" || idx < 0 {
		return view
	}
	rows := make([]audit.Row, 0, len(view.Rows))
	for _, row := range view.Rows {
		if containsFold(row.Cells[idx], search) {
			rows = append(rows, row)
		}
	}
	view.Rows = rows
	return view
}

func containsFold(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(strings.TrimSpace(sub)))
}
