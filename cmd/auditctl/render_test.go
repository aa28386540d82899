package main

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/auditkit/revision-service/internal/api/dto"
	"github.com/auditkit/revision-service/internal/audit"
)

func TestRenderView(t *testing.T) {
	t.Run("placeholder when empty", func(t *testing.T) {
		view := audit.View{Placeholder: "No alerts", Columns: []string{"card_name"}}
		assert.Equal(t, "No alerts", renderView(view))
	})

	t.Run("rows in column order", func(t *testing.T) {
		view := audit.View{
			Columns: []string{"card_name", "recipients"},
			Rows:    []audit.Row{{ID: 1, Cells: []string{"Revenue", "ops@example.com"}}},
		}
		out := renderView(view)
		assert.Contains(t, out, "CARD_NAME")
		assert.Contains(t, out, "Revenue")
		assert.Less(t, strings.Index(out, "Revenue"), strings.Index(out, "ops@example.com"))
	})
}

func TestRenderTimeline(t *testing.T) {
	out := renderTimeline([]dto.TimelineEntryResponse{{
		Timestamp:    0,
		Title:        "Ada Lovelace created this",
		IsRevertable: false,
		Revision:     dto.RevisionResponse{ID: 7},
	}})
	assert.Contains(t, out, "Ada Lovelace created this")
	assert.Contains(t, out, "1970-01-01T00:00:00Z")
	assert.Contains(t, out, "7")
}
