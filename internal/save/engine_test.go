package save_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/auditkit/revision-service/internal/domain"
	"github.com/auditkit/revision-service/internal/plugins"
	"github.com/auditkit/revision-service/internal/save"
)

var cacheTTL = plugins.FormField{Name: "cache_ttl", Type: plugins.FieldInteger}

func id(v int64) *int64 { return &v }

func question(content string) domain.Snapshot {
	return domain.Snapshot{
		EntityType: domain.EntityQuestion,
		Name:       "Orders",
		Content: map[string]any{
			"display":       "table",
			"dataset_query": map[string]any{"query": content},
		},
	}
}

func TestDecide(t *testing.T) {
	t.Run("absent original creates", func(t *testing.T) {
		engine := save.NewEngine(plugins.NewRegistry())
		current := question("count")
		current.CollectionID = id(3)

		decision := engine.Decide(nil, current)
		assert.Equal(t, save.ActionCreate, decision.Action)
		assert.Equal(t, current, decision.Payload)
	})

	t.Run("unchanged edit is rejected", func(t *testing.T) {
		engine := save.NewEngine(plugins.NewRegistry())
		original := question("count")
		original.ID = id(5)
		original.CollectionID = id(5)

		decision := engine.Decide(&original, original.Clone())
		assert.Equal(t, save.ActionReject, decision.Action)
	})

	t.Run("content edit keeps the original collection", func(t *testing.T) {
		engine := save.NewEngine(plugins.NewRegistry())
		original := question("A")
		original.ID = id(5)
		original.CollectionID = id(5)

		current := question("B")
		current.ID = id(5)
		current.CollectionID = nil

		decision := engine.Decide(&original, current)
		require.Equal(t, save.ActionUpdate, decision.Action)
		require.NotNil(t, decision.Payload.ID)
		require.NotNil(t, decision.Payload.CollectionID)
		assert.Equal(t, int64(5), *decision.Payload.ID)
		assert.Equal(t, int64(5), *decision.Payload.CollectionID)
		assert.Equal(t, map[string]any{"query": "B"}, decision.Payload.Content["dataset_query"])
	})

	t.Run("collection change alone is not an edit", func(t *testing.T) {
		engine := save.NewEngine(plugins.NewRegistry())
		original := question("A")
		original.ID = id(5)
		original.CollectionID = id(5)

		current := original.Clone()
		current.CollectionID = id(9)

		decision := engine.Decide(&original, current)
		assert.Equal(t, save.ActionReject, decision.Action)
		assert.Equal(t, int64(5), *decision.Payload.CollectionID)
	})

	t.Run("payload does not alias the input", func(t *testing.T) {
		engine := save.NewEngine(plugins.NewRegistry())
		original := question("A")
		original.ID = id(1)
		current := question("B")

		decision := engine.Decide(&original, current)
		decision.Payload.Content["display"] = "bar"
		*decision.Payload.ID = 99
		assert.Equal(t, "table", current.Content["display"])
		assert.Equal(t, int64(1), *original.ID)
	})

	t.Run("save as new ignores the original", func(t *testing.T) {
		engine := save.NewEngine(plugins.NewRegistry())
		original := question("A")
		original.ID = id(5)
		original.CollectionID = id(5)

		current := question("A")
		current.ID = id(5)
		current.CollectionID = id(8)

		decision := engine.Decide(&original, current, save.AsNew())
		assert.Equal(t, save.ActionCreate, decision.Action)
		assert.Nil(t, decision.Payload.ID)
		assert.Equal(t, int64(8), *decision.Payload.CollectionID)
	})
}

func TestDecideExtensions(t *testing.T) {
	t.Run("empty registry strips extension fields", func(t *testing.T) {
		engine := save.NewEngine(plugins.NewRegistry())
		original := question("A")
		original.ID = id(1)

		current := question("B")
		current.Extensions = map[string]any{"cache_ttl": 10}

		decision := engine.Decide(&original, current)
		assert.Equal(t, save.ActionUpdate, decision.Action)
		assert.Nil(t, decision.Payload.Extensions)

		created := engine.Decide(nil, current)
		assert.Nil(t, created.Payload.Extensions)
	})

	t.Run("empty registry ignores extension-only differences", func(t *testing.T) {
		engine := save.NewEngine(plugins.NewRegistry())
		original := question("A")
		original.ID = id(1)
		original.Extensions = map[string]any{"cache_ttl": int64(1)}

		current := original.Clone()
		current.Extensions = map[string]any{"cache_ttl": int64(2)}

		assert.Equal(t, save.ActionReject, engine.Decide(&original, current).Action)
	})

	t.Run("registered field makes cache ttl changes an update", func(t *testing.T) {
		reg := plugins.NewRegistry()
		reg.Install(cacheTTL)
		engine := save.NewEngine(reg)

		original := question("A")
		original.ID = id(1)
		original.Extensions = map[string]any{"cache_ttl": int64(1)}

		current := original.Clone()
		current.Extensions = map[string]any{"cache_ttl": float64(2), "unknown": "x"}

		decision := engine.Decide(&original, current)
		require.Equal(t, save.ActionUpdate, decision.Action)
		assert.Equal(t, map[string]any{"cache_ttl": int64(2)}, decision.Payload.Extensions)
	})

	t.Run("registered field compares normalised values", func(t *testing.T) {
		reg := plugins.NewRegistry()
		reg.Install(cacheTTL)
		engine := save.NewEngine(reg)

		original := question("A")
		original.ID = id(1)
		original.Extensions = map[string]any{"cache_ttl": int64(4)}

		current := original.Clone()
		current.Extensions = map[string]any{"cache_ttl": float64(4)}

		assert.Equal(t, save.ActionReject, engine.Decide(&original, current).Action)
	})

	t.Run("null registered field matches an absent key", func(t *testing.T) {
		reg := plugins.NewRegistry()
		reg.Install(cacheTTL)
		engine := save.NewEngine(reg)

		original := question("A")
		original.ID = id(1)

		current := original.Clone()
		current.Extensions = map[string]any{"cache_ttl": nil}

		decision := engine.Decide(&original, current)
		assert.Equal(t, save.ActionReject, decision.Action)
		assert.Nil(t, decision.Payload.Extensions)
	})

	t.Run("null registered field clears a stored value", func(t *testing.T) {
		reg := plugins.NewRegistry()
		reg.Install(cacheTTL)
		engine := save.NewEngine(reg)

		original := question("A")
		original.ID = id(1)
		original.Extensions = map[string]any{"cache_ttl": int64(30)}

		current := original.Clone()
		current.Extensions = map[string]any{"cache_ttl": nil}

		decision := engine.Decide(&original, current)
		assert.Equal(t, save.ActionUpdate, decision.Action)
		assert.Nil(t, decision.Payload.Extensions)
	})

	t.Run("installing and clearing takes effect on the next call", func(t *testing.T) {
		reg := plugins.NewRegistry()
		engine := save.NewEngine(reg)

		original := question("A")
		original.ID = id(1)
		original.Extensions = map[string]any{"cache_ttl": int64(1)}
		current := original.Clone()
		current.Extensions = map[string]any{"cache_ttl": int64(2)}

		assert.Equal(t, save.ActionReject, engine.Decide(&original, current).Action)
		reg.Install(cacheTTL)
		assert.Equal(t, save.ActionUpdate, engine.Decide(&original, current).Action)
		reg.Clear()
		assert.Equal(t, save.ActionReject, engine.Decide(&original, current).Action)
	})

	t.Run("nil registry is the baseline", func(t *testing.T) {
		engine := save.NewEngine(nil)
		current := question("A")
		current.Extensions = map[string]any{"cache_ttl": 1}
		assert.Nil(t, engine.Decide(nil, current).Payload.Extensions)
	})
}
