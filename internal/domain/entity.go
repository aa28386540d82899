package domain

import (
	"fmt"
	"maps"
	"time"
)

// EntityType differentiates the versioned entities that keep a history.
type EntityType string

const (
	EntityQuestion  EntityType = "question"
	EntityDashboard EntityType = "dashboard"
)

// ParseEntityType maps a route segment (singular or plural) to an EntityType.
func ParseEntityType(raw string) (EntityType, error) {
	switch raw {
	case "question", "questions", "card", "cards":
		return EntityQuestion, nil
	case "dashboard", "dashboards":
		return EntityDashboard, nil
	default:
		return "", fmt.Errorf("unknown entity type %q", raw)
	}
}

// Snapshot is the persisted or in-progress state of a question or dashboard.
type Snapshot struct {
	ID           *int64
	EntityType   EntityType
	CollectionID *int64
	Name         string
	Description  *string
	Content      map[string]any
	Extensions   map[string]any
	Archived     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// IsPersisted reports whether the snapshot has been saved before.
func (s Snapshot) IsPersisted() bool {
	return s.ID != nil
}

// Clone returns a copy that shares no pointers or maps with s.
func (s Snapshot) Clone() Snapshot {
	out := s
	out.ID = cloneInt64(s.ID)
	out.CollectionID = cloneInt64(s.CollectionID)
	if s.Description != nil {
		d := *s.Description
		out.Description = &d
	}
	out.Content = maps.Clone(s.Content)
	out.Extensions = maps.Clone(s.Extensions)
	return out
}

// State extracts the revisable part of the snapshot.
func (s Snapshot) State() EntityState {
	state := EntityState{
		Name:         s.Name,
		CollectionID: cloneInt64(s.CollectionID),
		Content:      maps.Clone(s.Content),
		Extensions:   maps.Clone(s.Extensions),
	}
	if s.Description != nil {
		d := *s.Description
		state.Description = &d
	}
	return state
}

// EntityState is the content recorded with each revision and restored on revert.
type EntityState struct {
	Name         string         `json:"name"`
	Description  *string        `json:"description,omitempty"`
	CollectionID *int64         `json:"collection_id,omitempty"`
	Content      map[string]any `json:"content,omitempty"`
	Extensions   map[string]any `json:"extensions,omitempty"`
}

func cloneInt64(v *int64) *int64 {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

// Collection groups questions and dashboards.
type Collection struct {
	ID   int64
	Name string
}
