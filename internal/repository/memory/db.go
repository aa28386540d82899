// Package memory implements the repositories on top of go-memdb. It backs
// local development and the service tests.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/hashicorp/go-memdb"

	"github.com/auditkit/revision-service/internal/domain"
	"github.com/auditkit/revision-service/internal/repository"
)

// DB is an in-memory database for entities, revisions and notifications.
type DB struct {
	db *memdb.MemDB

	mu   sync.Mutex
	seqs map[string]int64
	now  func() time.Time
}

// entityRow keys a snapshot by its non-pointer identity.
type entityRow struct {
	EntityType string
	ID         int64
	Snapshot   domain.Snapshot
}

// New returns a new in-memory database.
func New() (*DB, error) {
	memDB, err := memdb.NewMemDB(schema)
	if err != nil {
		return nil, fmt.Errorf("new memdb: %w", err)
	}

	return &DB{
		db:   memDB,
		seqs: make(map[string]int64),
		now:  func() time.Time { return time.Now().UTC() },
	}, nil
}

// Repositories exposes the database through the repository interfaces.
func (d *DB) Repositories() repository.Repositories {
	return repository.Repositories{
		Entities:      entities{d},
		Revisions:     revisions{d},
		Collections:   collections{d},
		Alerts:        alerts{d},
		Subscriptions: subscriptions{d},
	}
}

// SetClock replaces the time source used for timestamps.
func (d *DB) SetClock(now func() time.Time) {
	d.now = now
}

func (d *DB) nextID(table string) int64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.seqs[table]++
	return d.seqs[table]
}

type entities struct{ d *DB }

func (r entities) Create(_ context.Context, s *domain.Snapshot) error {
	txn := r.d.db.Txn(true)
	defer txn.Abort()

	id := r.d.nextID(tblEntities)
	now := r.d.now()
	s.ID = &id
	s.CreatedAt = now
	s.UpdatedAt = now

	row := &entityRow{EntityType: string(s.EntityType), ID: id, Snapshot: s.Clone()}
	if err := txn.Insert(tblEntities, row); err != nil {
		return fmt.Errorf("insert entity: %w", err)
	}
	txn.Commit()
	return nil
}

func (r entities) Get(_ context.Context, entityType domain.EntityType, id int64) (*domain.Snapshot, error) {
	txn := r.d.db.Txn(false)
	defer txn.Abort()

	raw, err := txn.First(tblEntities, "id", string(entityType), id)
	if err != nil {
		return nil, fmt.Errorf("find entity: %w", err)
	}
	if raw == nil {
		return nil, fmt.Errorf("%s %d: %w", entityType, id, repository.ErrNotFound)
	}
	s := raw.(*entityRow).Snapshot.Clone()
	return &s, nil
}

func (r entities) Update(_ context.Context, s *domain.Snapshot) error {
	if s.ID == nil {
		return fmt.Errorf("update unsaved %s: %w", s.EntityType, repository.ErrNotFound)
	}
	txn := r.d.db.Txn(true)
	defer txn.Abort()

	raw, err := txn.First(tblEntities, "id", string(s.EntityType), *s.ID)
	if err != nil {
		return fmt.Errorf("find entity: %w", err)
	}
	if raw == nil {
		return fmt.Errorf("%s %d: %w", s.EntityType, *s.ID, repository.ErrNotFound)
	}

	s.CreatedAt = raw.(*entityRow).Snapshot.CreatedAt
	s.UpdatedAt = r.d.now()
	row := &entityRow{EntityType: string(s.EntityType), ID: *s.ID, Snapshot: s.Clone()}
	if err := txn.Insert(tblEntities, row); err != nil {
		return fmt.Errorf("update entity: %w", err)
	}
	txn.Commit()
	return nil
}

type revisions struct{ d *DB }

func (r revisions) Create(_ context.Context, rev *domain.Revision) error {
	txn := r.d.db.Txn(true)
	defer txn.Abort()

	rev.ID = r.d.nextID(tblRevisions)
	if rev.Timestamp.IsZero() {
		rev.Timestamp = r.d.now()
	}
	stored := cloneRevision(*rev)
	if err := txn.Insert(tblRevisions, &stored); err != nil {
		return fmt.Errorf("insert revision: %w", err)
	}
	txn.Commit()
	return nil
}

func (r revisions) Get(_ context.Context, id int64) (*domain.Revision, error) {
	txn := r.d.db.Txn(false)
	defer txn.Abort()

	raw, err := txn.First(tblRevisions, "id", id)
	if err != nil {
		return nil, fmt.Errorf("find revision: %w", err)
	}
	if raw == nil {
		return nil, fmt.Errorf("revision %d: %w", id, repository.ErrNotFound)
	}
	rev := cloneRevision(*raw.(*domain.Revision))
	return &rev, nil
}

func (r revisions) ListByEntity(
	_ context.Context,
	entityType domain.EntityType,
	entityID int64,
) ([]domain.Revision, error) {
	txn := r.d.db.Txn(false)
	defer txn.Abort()

	iter, err := txn.Get(tblRevisions, "entity", string(entityType), entityID)
	if err != nil {
		return nil, fmt.Errorf("list revisions: %w", err)
	}

	var result []domain.Revision
	for raw := iter.Next(); raw != nil; raw = iter.Next() {
		result = append(result, cloneRevision(*raw.(*domain.Revision)))
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].ID > result[j].ID
	})
	return result, nil
}

type collections struct{ d *DB }

func (r collections) Create(_ context.Context, c *domain.Collection) error {
	txn := r.d.db.Txn(true)
	defer txn.Abort()

	c.ID = r.d.nextID(tblCollections)
	stored := *c
	if err := txn.Insert(tblCollections, &stored); err != nil {
		return fmt.Errorf("insert collection: %w", err)
	}
	txn.Commit()
	return nil
}

func (r collections) Get(_ context.Context, id int64) (*domain.Collection, error) {
	txn := r.d.db.Txn(false)
	defer txn.Abort()

	raw, err := txn.First(tblCollections, "id", id)
	if err != nil {
		return nil, fmt.Errorf("find collection: %w", err)
	}
	if raw == nil {
		return nil, fmt.Errorf("collection %d: %w", id, repository.ErrNotFound)
	}
	c := *raw.(*domain.Collection)
	return &c, nil
}

type alerts struct{ d *DB }

func (r alerts) Create(_ context.Context, a *domain.Alert) error {
	txn := r.d.db.Txn(true)
	defer txn.Abort()

	a.ID = r.d.nextID(tblAlerts)
	now := r.d.now()
	if a.CreatedAt.IsZero() {
		a.CreatedAt = now
	}
	a.UpdatedAt = now
	stored := cloneAlert(*a)
	if err := txn.Insert(tblAlerts, &stored); err != nil {
		return fmt.Errorf("insert alert: %w", err)
	}
	txn.Commit()
	return nil
}

func (r alerts) Get(_ context.Context, id int64) (*domain.Alert, error) {
	txn := r.d.db.Txn(false)
	defer txn.Abort()

	raw, err := txn.First(tblAlerts, "id", id)
	if err != nil {
		return nil, fmt.Errorf("find alert: %w", err)
	}
	if raw == nil {
		return nil, fmt.Errorf("alert %d: %w", id, repository.ErrNotFound)
	}
	a := cloneAlert(*raw.(*domain.Alert))
	return &a, nil
}

func (r alerts) ListActive(_ context.Context) ([]domain.Alert, error) {
	txn := r.d.db.Txn(false)
	defer txn.Abort()

	iter, err := txn.Get(tblAlerts, "archived", false)
	if err != nil {
		return nil, fmt.Errorf("list alerts: %w", err)
	}

	var result []domain.Alert
	for raw := iter.Next(); raw != nil; raw = iter.Next() {
		result = append(result, cloneAlert(*raw.(*domain.Alert)))
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].ID < result[j].ID
	})
	return result, nil
}

func (r alerts) UpdateChannels(_ context.Context, id int64, channels []domain.Channel) error {
	return r.modify(id, func(a *domain.Alert) {
		a.Channels = cloneChannels(channels)
	})
}

func (r alerts) Archive(_ context.Context, id int64) error {
	return r.modify(id, func(a *domain.Alert) {
		a.Archived = true
	})
}

func (r alerts) modify(id int64, fn func(a *domain.Alert)) error {
	txn := r.d.db.Txn(true)
	defer txn.Abort()

	raw, err := txn.First(tblAlerts, "id", id)
	if err != nil {
		return fmt.Errorf("find alert: %w", err)
	}
	if raw == nil {
		return fmt.Errorf("alert %d: %w", id, repository.ErrNotFound)
	}

	// Stored objects must not be mutated in place.
	updated := cloneAlert(*raw.(*domain.Alert))
	fn(&updated)
	updated.UpdatedAt = r.d.now()
	if err := txn.Insert(tblAlerts, &updated); err != nil {
		return fmt.Errorf("update alert: %w", err)
	}
	txn.Commit()
	return nil
}

type subscriptions struct{ d *DB }

func (r subscriptions) Create(_ context.Context, s *domain.Subscription) error {
	txn := r.d.db.Txn(true)
	defer txn.Abort()

	s.ID = r.d.nextID(tblSubscriptions)
	now := r.d.now()
	if s.CreatedAt.IsZero() {
		s.CreatedAt = now
	}
	s.UpdatedAt = now
	stored := cloneSubscription(*s)
	if err := txn.Insert(tblSubscriptions, &stored); err != nil {
		return fmt.Errorf("insert subscription: %w", err)
	}
	txn.Commit()
	return nil
}

func (r subscriptions) Get(_ context.Context, id int64) (*domain.Subscription, error) {
	txn := r.d.db.Txn(false)
	defer txn.Abort()

	raw, err := txn.First(tblSubscriptions, "id", id)
	if err != nil {
		return nil, fmt.Errorf("find subscription: %w", err)
	}
	if raw == nil {
		return nil, fmt.Errorf("subscription %d: %w", id, repository.ErrNotFound)
	}
	s := cloneSubscription(*raw.(*domain.Subscription))
	return &s, nil
}

func (r subscriptions) ListActive(_ context.Context) ([]domain.Subscription, error) {
	txn := r.d.db.Txn(false)
	defer txn.Abort()

	iter, err := txn.Get(tblSubscriptions, "archived", false)
	if err != nil {
		return nil, fmt.Errorf("list subscriptions: %w", err)
	}

	var result []domain.Subscription
	for raw := iter.Next(); raw != nil; raw = iter.Next() {
		result = append(result, cloneSubscription(*raw.(*domain.Subscription)))
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].ID < result[j].ID
	})
	return result, nil
}

func (r subscriptions) Archive(_ context.Context, id int64) error {
	txn := r.d.db.Txn(true)
	defer txn.Abort()

	raw, err := txn.First(tblSubscriptions, "id", id)
	if err != nil {
		return fmt.Errorf("find subscription: %w", err)
	}
	if raw == nil {
		return fmt.Errorf("subscription %d: %w", id, repository.ErrNotFound)
	}

	updated := cloneSubscription(*raw.(*domain.Subscription))
	updated.Archived = true
	updated.UpdatedAt = r.d.now()
	if err := txn.Insert(tblSubscriptions, &updated); err != nil {
		return fmt.Errorf("update subscription: %w", err)
	}
	txn.Commit()
	return nil
}
