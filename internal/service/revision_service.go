package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/auditkit/revision-service/internal/domain"
	"github.com/auditkit/revision-service/internal/events"
	"github.com/auditkit/revision-service/internal/observability"
	"github.com/auditkit/revision-service/internal/repository"
	"github.com/auditkit/revision-service/internal/revisions"
	apperrors "github.com/auditkit/revision-service/pkg/util/errorutil"
)

// RevisionService serves entity history.
type RevisionService struct {
	entities   repository.EntityRepository
	revisions  repository.RevisionRepository
	dispatcher events.Dispatcher
	metrics    *observability.Metrics
	logger     *zap.Logger
}

// RevisionDependencies bundles collaborators for the revision service.
type RevisionDependencies struct {
	Repos      repository.Repositories
	Dispatcher events.Dispatcher
	Metrics    *observability.Metrics
	Logger     *zap.Logger
}

// FieldDiff is one changed field of a revision with its rendered diff.
type FieldDiff struct {
	Field   string `json:"field"`
	Before  any    `json:"before"`
	After   any    `json:"after"`
	Unified string `json:"unified"`
}

// NewRevisionService constructs the service.
func NewRevisionService(deps RevisionDependencies) *RevisionService {
	return &RevisionService{
		entities:   deps.Repos.Entities,
		revisions:  deps.Repos.Revisions,
		dispatcher: deps.Dispatcher,
		metrics:    deps.Metrics,
		logger:     loggerOrNop(deps.Logger),
	}
}

// Timeline returns the entity's history as display entries, newest first.
func (s *RevisionService) Timeline(
	ctx context.Context,
	principal domain.Principal,
	entityType domain.EntityType,
	id int64,
) ([]domain.TimelineEntry, error) {
	if _, err := s.entities.Get(ctx, entityType, id); err != nil {
		return nil, notFoundOr(err, string(entityType))
	}
	revs, err := s.revisions.ListByEntity(ctx, entityType, id)
	if err != nil {
		return nil, fmt.Errorf("list revisions: %w", err)
	}

	return revisions.BuildTimeline(revs, principal.CanWrite(),
		revisions.WithDropObserver(func(rev domain.Revision, reason revisions.DropReason) {
			s.metrics.RecordDroppedRevision(string(reason))
			s.logger.Debug("revision left out of timeline",
				zap.Int64("revision_id", rev.ID),
				zap.String("reason", string(reason)))
		}),
	), nil
}

// Diff renders every changed field of one revision.
func (s *RevisionService) Diff(
	ctx context.Context,
	entityType domain.EntityType,
	id int64,
	revisionID int64,
) ([]FieldDiff, error) {
	rev, err := s.revision(ctx, entityType, id, revisionID)
	if err != nil {
		return nil, err
	}

	fields := revisions.Fields(rev.Diff)
	out := make([]FieldDiff, 0, len(fields))
	for _, field := range fields {
		change := rev.Diff[field]
		unified, err := revisions.UnifiedDiff(field, change)
		if err != nil {
			return nil, fmt.Errorf("diff %s: %w", field, err)
		}
		out = append(out, FieldDiff{Field: field, Before: change.Before, After: change.After, Unified: unified})
	}
	return out, nil
}

// Revert restores the state recorded by an earlier revision. The collection
// is kept. The newest shown revision is the current state and cannot be the
// target.
func (s *RevisionService) Revert(
	ctx context.Context,
	principal domain.Principal,
	entityType domain.EntityType,
	id int64,
	revisionID int64,
) (*domain.Snapshot, *domain.Revision, error) {
	if !principal.CanWrite() {
		return nil, nil, apperrors.NewForbidden("write access required")
	}
	current, err := s.entities.Get(ctx, entityType, id)
	if err != nil {
		return nil, nil, notFoundOr(err, string(entityType))
	}
	revs, err := s.revisions.ListByEntity(ctx, entityType, id)
	if err != nil {
		return nil, nil, fmt.Errorf("list revisions: %w", err)
	}

	target, latest := findRevision(revs, revisionID)
	if target == nil {
		return nil, nil, apperrors.NewNotFound("revision", map[string]any{"revision_id": revisionID})
	}
	if latest {
		return nil, nil, apperrors.NewConflict("cannot revert to the current revision", map[string]any{"revision_id": revisionID})
	}
	if target.Object == nil {
		return nil, nil, apperrors.NewConflict("revision has no recorded state", map[string]any{"revision_id": revisionID})
	}

	restored := current.Clone()
	restored.Name = target.Object.Name
	restored.Description = target.Object.Description
	restored.Content = target.Object.Content
	restored.Extensions = target.Object.Extensions
	restored = restored.Clone()

	diff := revisions.DiffStates(current.State(), restored.State())
	if len(diff) == 0 {
		return nil, nil, apperrors.NewConflict("entity already matches the revision", map[string]any{"revision_id": revisionID})
	}
	if err := s.entities.Update(ctx, &restored); err != nil {
		return nil, nil, notFoundOr(err, string(entityType))
	}

	after := restored.State()
	rev := &domain.Revision{
		EntityType:  entityType,
		EntityID:    id,
		User:        principal.Actor(),
		IsReversion: true,
		Description: revisions.Describe(diff),
		Diff:        diff,
		Object:      &after,
	}
	if err := s.revisions.Create(ctx, rev); err != nil {
		return nil, nil, fmt.Errorf("record revision: %w", err)
	}

	publish(ctx, s.dispatcher, s.logger, events.New(events.EventRevisionReverted, subject(entityType, id), principal.Actor(),
		events.RevisionRevertedPayload{
			EntityType:       entityType,
			EntityID:         id,
			TargetRevisionID: revisionID,
			RevisionID:       rev.ID,
		}))

	return &restored, rev, nil
}

func (s *RevisionService) revision(ctx context.Context, entityType domain.EntityType, id, revisionID int64) (*domain.Revision, error) {
	rev, err := s.revisions.Get(ctx, revisionID)
	if err != nil {
		return nil, notFoundOr(err, "revision")
	}
	if rev.EntityType != entityType || rev.EntityID != id {
		return nil, apperrors.NewNotFound("revision", map[string]any{"revision_id": revisionID})
	}
	return rev, nil
}

// findRevision locates id in revs (newest first). latest reports whether it
// is the first revision a timeline would show.
func findRevision(revs []domain.Revision, id int64) (target *domain.Revision, latest bool) {
	seenValid := false
	for i := range revs {
		valid := revisions.IsValidRevision(revs[i])
		if revs[i].ID == id {
			return &revs[i], valid && !seenValid
		}
		if valid {
			seenValid = true
		}
	}
	return nil, false
}
