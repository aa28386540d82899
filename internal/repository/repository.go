package repository

import (
	"context"
	"errors"

	"github.com/auditkit/revision-service/internal/domain"
)

// ErrNotFound is returned when a record does not exist.
var ErrNotFound = errors.New("record not found")

// EntityRepository stores questions and dashboards.
type EntityRepository interface {
	// Create assigns ID and timestamps on s.
	Create(ctx context.Context, s *domain.Snapshot) error
	Get(ctx context.Context, entityType domain.EntityType, id int64) (*domain.Snapshot, error)
	// Update replaces the stored snapshot and refreshes UpdatedAt on s.
	Update(ctx context.Context, s *domain.Snapshot) error
}

// RevisionRepository stores the append-only revision history.
type RevisionRepository interface {
	// Create assigns ID and, when unset, Timestamp on rev.
	Create(ctx context.Context, rev *domain.Revision) error
	Get(ctx context.Context, id int64) (*domain.Revision, error)
	// ListByEntity returns revisions newest first.
	ListByEntity(ctx context.Context, entityType domain.EntityType, entityID int64) ([]domain.Revision, error)
}

// CollectionRepository resolves collections.
type CollectionRepository interface {
	Create(ctx context.Context, c *domain.Collection) error
	Get(ctx context.Context, id int64) (*domain.Collection, error)
}

// AlertRepository stores question alerts.
type AlertRepository interface {
	Create(ctx context.Context, a *domain.Alert) error
	Get(ctx context.Context, id int64) (*domain.Alert, error)
	// ListActive returns non-archived alerts ordered by id.
	ListActive(ctx context.Context) ([]domain.Alert, error)
	UpdateChannels(ctx context.Context, id int64, channels []domain.Channel) error
	Archive(ctx context.Context, id int64) error
}

// SubscriptionRepository stores dashboard subscriptions.
type SubscriptionRepository interface {
	Create(ctx context.Context, s *domain.Subscription) error
	Get(ctx context.Context, id int64) (*domain.Subscription, error)
	// ListActive returns non-archived subscriptions ordered by id.
	ListActive(ctx context.Context) ([]domain.Subscription, error)
	Archive(ctx context.Context, id int64) error
}

// Repositories bundles one storage backend.
type Repositories struct {
	Entities      EntityRepository
	Revisions     RevisionRepository
	Collections   CollectionRepository
	Alerts        AlertRepository
	Subscriptions SubscriptionRepository
}
