package service_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/auditkit/revision-service/internal/domain"
	"github.com/auditkit/revision-service/internal/enterprise"
	"github.com/auditkit/revision-service/internal/events"
	"github.com/auditkit/revision-service/internal/save"
	"github.com/auditkit/revision-service/internal/service"
	apperrors "github.com/auditkit/revision-service/pkg/util/errorutil"
)

func statusOf(err error) int {
	return apperrors.ToDomainError(err).HTTPStatus
}

func TestEntityServiceSave(t *testing.T) {
	ctx := context.Background()

	t.Run("create records a creation revision", func(t *testing.T) {
		f := newFixture(t)
		res, err := f.entities.Save(ctx, editor, service.SaveInput{
			EntityType: domain.EntityQuestion,
			Name:       "  Orders  ",
			Content:    map[string]any{"query": "SELECT 1"},
		})
		require.NoError(t, err)
		assert.Equal(t, save.ActionCreate, res.Action)
		require.NotNil(t, res.Entity.ID)
		assert.Equal(t, "Orders", res.Entity.Name)
		require.NotNil(t, res.Revision)
		assert.True(t, res.Revision.IsCreation)

		revs, err := f.repos.Revisions.ListByEntity(ctx, domain.EntityQuestion, *res.Entity.ID)
		require.NoError(t, err)
		assert.Len(t, revs, 1)
		assert.Equal(t, []events.EventType{events.EventEntityCreated}, f.eventTypes())
	})

	t.Run("unchanged save is rejected", func(t *testing.T) {
		f := newFixture(t)
		q := f.createQuestion(t, "Orders")

		res, err := f.entities.Save(ctx, editor, service.SaveInput{
			EntityType: domain.EntityQuestion,
			ID:         q.ID,
			Name:       "Orders",
			Content:    map[string]any{"query": "SELECT 1", "display": "table"},
		})
		require.NoError(t, err)
		assert.Equal(t, save.ActionReject, res.Action)
		assert.Nil(t, res.Revision)

		revs, err := f.repos.Revisions.ListByEntity(ctx, domain.EntityQuestion, *q.ID)
		require.NoError(t, err)
		assert.Len(t, revs, 1)
	})

	t.Run("update records a described diff", func(t *testing.T) {
		f := newFixture(t)
		q := f.createQuestion(t, "Orders")

		res, err := f.entities.Save(ctx, editor, service.SaveInput{
			EntityType:  domain.EntityQuestion,
			ID:          q.ID,
			Name:        "Orders by month",
			Description: strPtr("Monthly totals"),
			Content:     map[string]any{"query": "SELECT 1", "display": "table"},
		})
		require.NoError(t, err)
		assert.Equal(t, save.ActionUpdate, res.Action)
		require.NotNil(t, res.Revision)
		assert.Contains(t, res.Revision.Description, `renamed this from "Orders" to "Orders by month"`)
		assert.Contains(t, res.Revision.Diff, "name")
		assert.Contains(t, res.Revision.Diff, "description")

		got, err := f.repos.Entities.Get(ctx, domain.EntityQuestion, *q.ID)
		require.NoError(t, err)
		assert.Equal(t, "Orders by month", got.Name)
		assert.Equal(t, q.CreatedAt, got.CreatedAt)
	})

	t.Run("collection changes on save are ignored", func(t *testing.T) {
		f := newFixture(t)
		q := f.createQuestion(t, "Orders")
		col := &domain.Collection{Name: "Finance"}
		require.NoError(t, f.repos.Collections.Create(ctx, col))

		res, err := f.entities.Save(ctx, editor, service.SaveInput{
			EntityType:   domain.EntityQuestion,
			ID:           q.ID,
			CollectionID: &col.ID,
			Name:         "Orders",
			Content:      map[string]any{"query": "SELECT 1", "display": "table"},
		})
		require.NoError(t, err)
		assert.Equal(t, save.ActionReject, res.Action)
		assert.Nil(t, res.Entity.CollectionID)
	})

	t.Run("save as new copies", func(t *testing.T) {
		f := newFixture(t)
		q := f.createQuestion(t, "Orders")

		res, err := f.entities.Save(ctx, editor, service.SaveInput{
			EntityType: domain.EntityQuestion,
			ID:         q.ID,
			SaveAsNew:  true,
			Name:       "Orders",
		})
		require.NoError(t, err)
		assert.Equal(t, save.ActionCreate, res.Action)
		assert.NotEqual(t, *q.ID, *res.Entity.ID)
	})

	t.Run("extensions follow the registry", func(t *testing.T) {
		f := newFixture(t)
		q := f.createQuestion(t, "Orders")
		input := service.SaveInput{
			EntityType: domain.EntityQuestion,
			ID:         q.ID,
			Name:       "Orders",
			Content:    map[string]any{"query": "SELECT 1", "display": "table"},
			Extensions: map[string]any{"cache_ttl": float64(10)},
		}

		res, err := f.entities.Save(ctx, editor, input)
		require.NoError(t, err)
		assert.Equal(t, save.ActionReject, res.Action)

		f.registry.Install(enterprise.CacheTTLField)
		res, err = f.entities.Save(ctx, editor, input)
		require.NoError(t, err)
		assert.Equal(t, save.ActionUpdate, res.Action)
		assert.Equal(t, map[string]any{"cache_ttl": int64(10)}, res.Entity.Extensions)
		assert.Equal(t, "changed the cache ttl.", res.Revision.Description)

		input.Extensions = map[string]any{"cache_ttl": "soon"}
		_, err = f.entities.Save(ctx, editor, input)
		assert.Equal(t, http.StatusBadRequest, statusOf(err))
	})

	t.Run("null field on an entity saved before install is rejected", func(t *testing.T) {
		f := newFixture(t)
		q := f.createQuestion(t, "Orders")
		f.registry.Install(enterprise.CacheTTLField)

		res, err := f.entities.Save(ctx, editor, service.SaveInput{
			EntityType: domain.EntityQuestion,
			ID:         q.ID,
			Name:       "Orders",
			Content:    map[string]any{"query": "SELECT 1", "display": "table"},
			Extensions: map[string]any{"cache_ttl": nil},
		})
		require.NoError(t, err)
		assert.Equal(t, save.ActionReject, res.Action)
		assert.Nil(t, res.Revision)

		revs, err := f.repos.Revisions.ListByEntity(ctx, domain.EntityQuestion, *q.ID)
		require.NoError(t, err)
		assert.Len(t, revs, 1)
	})

	t.Run("edits without the field installed keep its stored value", func(t *testing.T) {
		f := newFixture(t)
		f.registry.Install(enterprise.CacheTTLField)
		created, err := f.entities.Save(ctx, editor, service.SaveInput{
			EntityType: domain.EntityQuestion,
			Name:       "Orders",
			Content:    map[string]any{"query": "SELECT 1"},
			Extensions: map[string]any{"cache_ttl": float64(60)},
		})
		require.NoError(t, err)
		require.Equal(t, save.ActionCreate, created.Action)

		f.registry.Clear()
		res, err := f.entities.Save(ctx, editor, service.SaveInput{
			EntityType: domain.EntityQuestion,
			ID:         created.Entity.ID,
			Name:       "Orders",
			Content:    map[string]any{"query": "SELECT 2"},
		})
		require.NoError(t, err)
		require.Equal(t, save.ActionUpdate, res.Action)
		assert.Equal(t, "changed the query.", res.Revision.Description)

		stored, err := f.entities.Get(ctx, domain.EntityQuestion, *created.Entity.ID)
		require.NoError(t, err)
		assert.Equal(t, map[string]any{"cache_ttl": int64(60)}, stored.Extensions)
	})

	t.Run("failures", func(t *testing.T) {
		f := newFixture(t)
		missing := int64(404)

		_, err := f.entities.Save(ctx, viewer, service.SaveInput{EntityType: domain.EntityQuestion, Name: "x"})
		assert.Equal(t, http.StatusForbidden, statusOf(err))

		_, err = f.entities.Save(ctx, editor, service.SaveInput{EntityType: domain.EntityQuestion, Name: " "})
		assert.Equal(t, http.StatusBadRequest, statusOf(err))

		_, err = f.entities.Save(ctx, editor, service.SaveInput{EntityType: domain.EntityQuestion, ID: &missing, Name: "x"})
		assert.Equal(t, http.StatusNotFound, statusOf(err))

		_, err = f.entities.Save(ctx, editor, service.SaveInput{EntityType: domain.EntityQuestion, CollectionID: &missing, Name: "x"})
		assert.Equal(t, http.StatusNotFound, statusOf(err))
	})
}

func TestEntityServiceMove(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	q := f.createQuestion(t, "Orders")
	col, err := f.entities.CreateCollection(ctx, editor, "Finance")
	require.NoError(t, err)

	res, err := f.entities.Move(ctx, editor, domain.EntityQuestion, *q.ID, &col.ID)
	require.NoError(t, err)
	assert.Equal(t, save.ActionUpdate, res.Action)
	assert.Equal(t, "moved this to another collection.", res.Revision.Description)
	assert.Equal(t, col.ID, *res.Entity.CollectionID)

	res, err = f.entities.Move(ctx, editor, domain.EntityQuestion, *q.ID, &col.ID)
	require.NoError(t, err)
	assert.Equal(t, save.ActionReject, res.Action)

	missing := int64(99)
	_, err = f.entities.Move(ctx, editor, domain.EntityQuestion, *q.ID, &missing)
	assert.Equal(t, http.StatusNotFound, statusOf(err))

	_, err = f.entities.Move(ctx, viewer, domain.EntityQuestion, *q.ID, nil)
	assert.Equal(t, http.StatusForbidden, statusOf(err))

	assert.Contains(t, f.eventTypes(), events.EventEntityMoved)
}
