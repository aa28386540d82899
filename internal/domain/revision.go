package domain

import "time"

// Actor is the user who produced a revision.
type Actor struct {
	ID         int64
	CommonName string
}

// FieldChange holds the before and after value of one changed field.
type FieldChange struct {
	Before any `json:"before"`
	After  any `json:"after"`
}

// Diff maps a field name to its change. Content keys are prefixed with
// "content." and extension keys with "extensions.".
type Diff map[string]FieldChange

// Revision is one historical snapshot of a change to a versioned entity.
// Revisions are append-only.
type Revision struct {
	ID          int64
	EntityType  EntityType
	EntityID    int64
	Timestamp   time.Time
	User        Actor
	IsCreation  bool
	IsReversion bool
	Description string
	Diff        Diff
	Object      *EntityState
}

// TimelineEntry is a display-ready projection of one Revision.
type TimelineEntry struct {
	Timestamp    int64
	Icon         string
	Title        string
	Description  string
	IsRevertable bool
	Revision     Revision
}
