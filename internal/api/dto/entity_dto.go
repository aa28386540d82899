package dto

import (
	"time"

	"github.com/auditkit/revision-service/internal/domain"
	"github.com/auditkit/revision-service/internal/revisions"
	"github.com/auditkit/revision-service/internal/save"
)

// SaveEntityRequest payload. An id without save_as_new overwrites that entity.
type SaveEntityRequest struct {
	ID           *int64         `json:"id" validate:"omitempty,gt=0"`
	SaveAsNew    bool           `json:"save_as_new"`
	CollectionID *int64         `json:"collection_id" validate:"omitempty,gt=0"`
	Name         string         `json:"name" validate:"required,max=254"`
	Description  *string        `json:"description" validate:"omitempty,max=10000"`
	Content      map[string]any `json:"content"`
	Extensions   map[string]any `json:"extensions"`
}

// MoveEntityRequest payload. A null collection_id moves to the root collection.
type MoveEntityRequest struct {
	CollectionID *int64 `json:"collection_id" validate:"omitempty,gt=0"`
}

// RevertRequest payload.
type RevertRequest struct {
	RevisionID int64 `json:"revision_id" validate:"required,gt=0"`
}

// CreateCollectionRequest payload.
type CreateCollectionRequest struct {
	Name string `json:"name" validate:"required,max=254"`
}

// EntityResponse describes a stored question or dashboard.
type EntityResponse struct {
	ID           int64             `json:"id"`
	EntityType   domain.EntityType `json:"entity_type"`
	CollectionID *int64            `json:"collection_id"`
	Name         string            `json:"name"`
	Description  *string           `json:"description"`
	Content      map[string]any    `json:"content"`
	Extensions   map[string]any    `json:"extensions,omitempty"`
	Archived     bool              `json:"archived"`
	CreatedAt    time.Time         `json:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at"`
}

// RevisionResponse describes one revision.
type RevisionResponse struct {
	ID          int64               `json:"id"`
	Timestamp   time.Time           `json:"timestamp"`
	UserID      int64               `json:"user_id"`
	UserName    string              `json:"user_name"`
	IsCreation  bool                `json:"is_creation"`
	IsReversion bool                `json:"is_reversion"`
	Description string              `json:"description"`
	Diff        domain.Diff         `json:"diff,omitempty"`
	Object      *domain.EntityState `json:"object,omitempty"`
}

// SaveResponse reports the outcome of a save, move or revert.
type SaveResponse struct {
	Action   save.Action       `json:"action"`
	Entity   EntityResponse    `json:"entity"`
	Revision *RevisionResponse `json:"revision,omitempty"`
}

// TimelineEntryResponse is one displayed history event.
type TimelineEntryResponse struct {
	Timestamp    int64            `json:"timestamp"`
	Icon         string           `json:"icon"`
	Title        string           `json:"title"`
	Description  string           `json:"description"`
	IsRevertable bool             `json:"isRevertable"`
	Revision     RevisionResponse `json:"revision"`
}

// CollectionResponse describes a collection.
type CollectionResponse struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Entity converts a snapshot.
func Entity(s domain.Snapshot) EntityResponse {
	resp := EntityResponse{
		EntityType:   s.EntityType,
		CollectionID: s.CollectionID,
		Name:         s.Name,
		Description:  s.Description,
		Content:      s.Content,
		Extensions:   s.Extensions,
		Archived:     s.Archived,
		CreatedAt:    s.CreatedAt,
		UpdatedAt:    s.UpdatedAt,
	}
	if s.ID != nil {
		resp.ID = *s.ID
	}
	if resp.Content == nil {
		resp.Content = map[string]any{}
	}
	return resp
}

// Revision converts a revision.
func Revision(r domain.Revision) RevisionResponse {
	return RevisionResponse{
		ID:          r.ID,
		Timestamp:   r.Timestamp,
		UserID:      r.User.ID,
		UserName:    r.User.CommonName,
		IsCreation:  r.IsCreation,
		IsReversion: r.IsReversion,
		Description: revisions.Description(r),
		Diff:        r.Diff,
		Object:      r.Object,
	}
}

// SaveResult converts a save outcome.
func SaveResult(action save.Action, entity domain.Snapshot, rev *domain.Revision) SaveResponse {
	resp := SaveResponse{Action: action, Entity: Entity(entity)}
	if rev != nil {
		r := Revision(*rev)
		resp.Revision = &r
	}
	return resp
}

// Timeline converts timeline entries.
func Timeline(entries []domain.TimelineEntry) []TimelineEntryResponse {
	out := make([]TimelineEntryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, TimelineEntryResponse{
			Timestamp:    e.Timestamp,
			Icon:         e.Icon,
			Title:        e.Title,
			Description:  e.Description,
			IsRevertable: e.IsRevertable,
			Revision:     Revision(e.Revision),
		})
	}
	return out
}
