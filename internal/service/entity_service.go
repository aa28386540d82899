package service

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"strings"

	"go.uber.org/zap"

	"github.com/auditkit/revision-service/internal/domain"
	"github.com/auditkit/revision-service/internal/events"
	"github.com/auditkit/revision-service/internal/observability"
	"github.com/auditkit/revision-service/internal/plugins"
	"github.com/auditkit/revision-service/internal/repository"
	"github.com/auditkit/revision-service/internal/revisions"
	"github.com/auditkit/revision-service/internal/save"
	apperrors "github.com/auditkit/revision-service/pkg/util/errorutil"
)

// EntityService coordinates saving and moving questions and dashboards.
type EntityService struct {
	entities    repository.EntityRepository
	revisions   repository.RevisionRepository
	collections repository.CollectionRepository
	engine      *save.Engine
	registry    *plugins.Registry
	dispatcher  events.Dispatcher
	metrics     *observability.Metrics
	logger      *zap.Logger
}

// EntityDependencies bundles collaborators for the entity service.
type EntityDependencies struct {
	Repos      repository.Repositories
	Registry   *plugins.Registry
	Dispatcher events.Dispatcher
	Metrics    *observability.Metrics
	Logger     *zap.Logger
}

// SaveInput is an edited snapshot submitted by a client.
type SaveInput struct {
	EntityType   domain.EntityType
	ID           *int64
	SaveAsNew    bool
	CollectionID *int64
	Name         string
	Description  *string
	Content      map[string]any
	Extensions   map[string]any
}

// SaveResult reports what the save did. Revision is nil on reject.
type SaveResult struct {
	Action   save.Action
	Entity   domain.Snapshot
	Revision *domain.Revision
}

// NewEntityService constructs the service.
func NewEntityService(deps EntityDependencies) *EntityService {
	return &EntityService{
		entities:    deps.Repos.Entities,
		revisions:   deps.Repos.Revisions,
		collections: deps.Repos.Collections,
		engine:      save.NewEngine(deps.Registry),
		registry:    deps.Registry,
		dispatcher:  deps.Dispatcher,
		metrics:     deps.Metrics,
		logger:      loggerOrNop(deps.Logger),
	}
}

// Get returns one entity.
func (s *EntityService) Get(ctx context.Context, entityType domain.EntityType, id int64) (*domain.Snapshot, error) {
	snap, err := s.entities.Get(ctx, entityType, id)
	if err != nil {
		return nil, notFoundOr(err, string(entityType))
	}
	return snap, nil
}

// Save persists an edited snapshot as a new entity, an overwrite of the
// original, or not at all when nothing changed.
func (s *EntityService) Save(ctx context.Context, principal domain.Principal, input SaveInput) (*SaveResult, error) {
	if !principal.CanWrite() {
		return nil, apperrors.NewForbidden("write access required")
	}
	if strings.TrimSpace(input.Name) == "" {
		return nil, apperrors.NewValidationError("name is required", map[string]any{"field": "name"})
	}
	if err := s.validateExtensions(input.Extensions); err != nil {
		return nil, err
	}

	var original *domain.Snapshot
	if input.ID != nil && !input.SaveAsNew {
		snap, err := s.entities.Get(ctx, input.EntityType, *input.ID)
		if err != nil {
			return nil, notFoundOr(err, string(input.EntityType))
		}
		original = snap
	}

	current := domain.Snapshot{
		ID:           input.ID,
		EntityType:   input.EntityType,
		CollectionID: input.CollectionID,
		Name:         strings.TrimSpace(input.Name),
		Description:  input.Description,
		Content:      input.Content,
		Extensions:   input.Extensions,
	}
	var opts []save.DecideOption
	if input.SaveAsNew {
		opts = append(opts, save.AsNew())
	}

	decision := s.engine.Decide(original, current, opts...)
	s.metrics.RecordSaveDecision(string(input.EntityType), string(decision.Action))

	switch decision.Action {
	case save.ActionReject:
		s.logger.Debug("save rejected; no changes",
			zap.String("entity_type", string(input.EntityType)),
			zap.Int64("entity_id", *original.ID))
		return &SaveResult{Action: decision.Action, Entity: *original}, nil
	case save.ActionCreate:
		return s.create(ctx, principal, decision.Payload)
	default:
		return s.update(ctx, principal, *original, decision.Payload)
	}
}

func (s *EntityService) create(ctx context.Context, principal domain.Principal, payload domain.Snapshot) (*SaveResult, error) {
	payload.ID = nil
	if err := s.checkCollection(ctx, payload.CollectionID); err != nil {
		return nil, err
	}
	if err := s.entities.Create(ctx, &payload); err != nil {
		return nil, fmt.Errorf("create %s: %w", payload.EntityType, err)
	}

	state := payload.State()
	rev := &domain.Revision{
		EntityType: payload.EntityType,
		EntityID:   *payload.ID,
		User:       principal.Actor(),
		IsCreation: true,
		Object:     &state,
	}
	if err := s.revisions.Create(ctx, rev); err != nil {
		return nil, fmt.Errorf("record revision: %w", err)
	}

	s.publish(ctx, events.New(events.EventEntityCreated, subject(payload.EntityType, *payload.ID), principal.Actor(),
		events.EntitySavedPayload{EntityType: payload.EntityType, EntityID: *payload.ID, RevisionID: rev.ID}))
	s.logger.Info("entity created",
		zap.String("entity_type", string(payload.EntityType)),
		zap.Int64("entity_id", *payload.ID),
		zap.Int64("user_id", principal.UserID))

	return &SaveResult{Action: save.ActionCreate, Entity: payload, Revision: rev}, nil
}

func (s *EntityService) update(
	ctx context.Context,
	principal domain.Principal,
	original domain.Snapshot,
	payload domain.Snapshot,
) (*SaveResult, error) {
	payload.Archived = original.Archived
	payload.Extensions = s.keepUnregistered(original.Extensions, payload.Extensions)
	diff := revisions.DiffStates(original.State(), payload.State())
	if err := s.entities.Update(ctx, &payload); err != nil {
		return nil, notFoundOr(err, string(payload.EntityType))
	}

	state := payload.State()
	rev := &domain.Revision{
		EntityType:  payload.EntityType,
		EntityID:    *payload.ID,
		User:        principal.Actor(),
		Description: revisions.Describe(diff),
		Diff:        diff,
		Object:      &state,
	}
	if err := s.revisions.Create(ctx, rev); err != nil {
		return nil, fmt.Errorf("record revision: %w", err)
	}

	s.publish(ctx, events.New(events.EventEntityUpdated, subject(payload.EntityType, *payload.ID), principal.Actor(),
		events.EntitySavedPayload{
			EntityType: payload.EntityType,
			EntityID:   *payload.ID,
			RevisionID: rev.ID,
			Fields:     revisions.Fields(diff),
		}))

	return &SaveResult{Action: save.ActionUpdate, Entity: payload, Revision: rev}, nil
}

// Move changes the collection an entity belongs to. Moving to the current
// collection records nothing.
func (s *EntityService) Move(
	ctx context.Context,
	principal domain.Principal,
	entityType domain.EntityType,
	id int64,
	collectionID *int64,
) (*SaveResult, error) {
	if !principal.CanWrite() {
		return nil, apperrors.NewForbidden("write access required")
	}
	original, err := s.entities.Get(ctx, entityType, id)
	if err != nil {
		return nil, notFoundOr(err, string(entityType))
	}
	if sameCollection(original.CollectionID, collectionID) {
		return &SaveResult{Action: save.ActionReject, Entity: *original}, nil
	}
	if err := s.checkCollection(ctx, collectionID); err != nil {
		return nil, err
	}

	moved := original.Clone()
	moved.CollectionID = collectionID
	diff := revisions.DiffStates(original.State(), moved.State())
	if err := s.entities.Update(ctx, &moved); err != nil {
		return nil, notFoundOr(err, string(entityType))
	}

	state := moved.State()
	rev := &domain.Revision{
		EntityType:  entityType,
		EntityID:    id,
		User:        principal.Actor(),
		Description: revisions.Describe(diff),
		Diff:        diff,
		Object:      &state,
	}
	if err := s.revisions.Create(ctx, rev); err != nil {
		return nil, fmt.Errorf("record revision: %w", err)
	}

	s.publish(ctx, events.New(events.EventEntityMoved, subject(entityType, id), principal.Actor(),
		events.EntityMovedPayload{
			EntityType:       entityType,
			EntityID:         id,
			FromCollectionID: original.CollectionID,
			ToCollectionID:   collectionID,
		}))

	return &SaveResult{Action: save.ActionUpdate, Entity: moved, Revision: rev}, nil
}

// CreateCollection adds a collection entities can be saved or moved into.
func (s *EntityService) CreateCollection(ctx context.Context, principal domain.Principal, name string) (*domain.Collection, error) {
	if !principal.CanWrite() {
		return nil, apperrors.NewForbidden("write access required")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.NewValidationError("name is required", map[string]any{"field": "name"})
	}
	c := &domain.Collection{Name: name}
	if err := s.collections.Create(ctx, c); err != nil {
		return nil, fmt.Errorf("create collection: %w", err)
	}
	return c, nil
}

func (s *EntityService) validateExtensions(ext map[string]any) error {
	details := map[string]any{}
	for _, field := range s.registry.Fields() {
		v, ok := ext[field.Name]
		if !ok || v == nil {
			continue
		}
		if _, err := field.Normalize(v); err != nil {
			details[field.Name] = err.Error()
		}
	}
	if len(details) > 0 {
		return apperrors.NewValidationError("invalid extension values", details)
	}
	return nil
}

// keepUnregistered carries stored extension values whose field is not
// registered into the persisted state, so edits made without the field
// installed leave them alone.
func (s *EntityService) keepUnregistered(stored, edited map[string]any) map[string]any {
	var out map[string]any
	for k, v := range stored {
		if _, ok := s.registry.Lookup(k); ok {
			continue
		}
		if out == nil {
			out = maps.Clone(edited)
			if out == nil {
				out = make(map[string]any, len(stored))
			}
		}
		out[k] = v
	}
	if out == nil {
		return edited
	}
	return out
}

func (s *EntityService) checkCollection(ctx context.Context, id *int64) error {
	if id == nil {
		return nil
	}
	if _, err := s.collections.Get(ctx, *id); err != nil {
		return notFoundOr(err, "collection")
	}
	return nil
}

func (s *EntityService) publish(ctx context.Context, event events.Event) {
	publish(ctx, s.dispatcher, s.logger, event)
}

func sameCollection(a, b *int64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func subject(entityType domain.EntityType, id int64) string {
	return fmt.Sprintf("%s/%d", entityType, id)
}

// notFoundOr turns a missing record into a NOT_FOUND error for resource.
func notFoundOr(err error, resource string) error {
	if errors.Is(err, repository.ErrNotFound) {
		return apperrors.NewNotFound(resource, nil)
	}
	return err
}
