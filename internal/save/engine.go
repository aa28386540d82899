// Package save classifies a pending entity edit as create, update or reject
// and computes the payload the caller should persist.
package save

import (
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/auditkit/revision-service/internal/domain"
	"github.com/auditkit/revision-service/internal/plugins"
)

// Action is the persistence intent computed by Decide.
type Action string

const (
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionReject Action = "reject"
)

// Decision is the outcome of Decide. Payload is what the caller should send
// to the persistence layer; for ActionReject nothing needs to be sent.
type Decision struct {
	Action  Action
	Payload domain.Snapshot
}

type decideOptions struct {
	asNew bool
}

// DecideOption adjusts a single decision.
type DecideOption func(*decideOptions)

// AsNew saves the edit as a new entity even when an original exists. The new
// entity goes to the collection chosen on the current snapshot.
func AsNew() DecideOption {
	return func(o *decideOptions) {
		o.asNew = true
	}
}

// Engine decides how an edited snapshot is persisted.
type Engine struct {
	registry *plugins.Registry
}

// NewEngine builds an engine reading optional fields from registry. A nil
// registry behaves as an empty one.
func NewEngine(registry *plugins.Registry) *Engine {
	return &Engine{registry: registry}
}

// Decide compares current against original. On the overwrite path the
// payload always keeps the original's id and collection. The registry is
// read on every call, so installing or clearing a field applies immediately.
func (e *Engine) Decide(original *domain.Snapshot, current domain.Snapshot, opts ...DecideOption) Decision {
	var o decideOptions
	for _, opt := range opts {
		opt(&o)
	}

	fields := e.registry.Fields()
	payload := current.Clone()
	payload.Extensions = projectExtensions(current.Extensions, fields)

	if original == nil || o.asNew {
		if o.asNew {
			payload.ID = nil
		}
		return Decision{Action: ActionCreate, Payload: payload}
	}

	payload.ID = cloneID(original.ID)
	payload.CollectionID = cloneID(original.CollectionID)
	payload.EntityType = original.EntityType
	payload.CreatedAt = original.CreatedAt

	if sameContent(*original, payload, fields) {
		return Decision{Action: ActionReject, Payload: payload}
	}
	return Decision{Action: ActionUpdate, Payload: payload}
}

// dirtyFields is the part of a snapshot that makes it dirty.
type dirtyFields struct {
	Name        string
	Description string
	Content     map[string]any
	Extensions  map[string]any
}

func sameContent(original, payload domain.Snapshot, fields []plugins.FormField) bool {
	a := dirtyFields{
		Name:        original.Name,
		Description: deref(original.Description),
		Content:     original.Content,
		Extensions:  projectExtensions(original.Extensions, fields),
	}
	b := dirtyFields{
		Name:        payload.Name,
		Description: deref(payload.Description),
		Content:     payload.Content,
		Extensions:  payload.Extensions,
	}
	return cmp.Equal(a, b, cmpopts.EquateEmpty())
}

// projectExtensions keeps only registered fields, normalised by type tag.
// Unregistered keys are dropped without being looked at. A null value is the
// same as an absent key.
func projectExtensions(ext map[string]any, fields []plugins.FormField) map[string]any {
	if len(fields) == 0 {
		return nil
	}
	out := make(map[string]any, len(fields))
	for _, f := range fields {
		v, ok := ext[f.Name]
		if !ok {
			continue
		}
		if norm, err := f.Normalize(v); err == nil {
			v = norm
		}
		if v == nil {
			continue
		}
		out[f.Name] = v
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func cloneID(v *int64) *int64 {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
