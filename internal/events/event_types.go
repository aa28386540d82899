package events

import (
	"time"

	"github.com/google/uuid"

	"github.com/auditkit/revision-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventEntityCreated        EventType = "entity_created"
	EventEntityUpdated        EventType = "entity_updated"
	EventEntityMoved          EventType = "entity_moved"
	EventRevisionReverted     EventType = "revision_reverted"
	EventAlertChannelsUpdated EventType = "alert_channels_updated"
	EventNotificationArchived EventType = "notification_archived"
	EventPluginFieldsChanged  EventType = "plugin_fields_changed"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID        string       `json:"id"`
	Type      EventType    `json:"type"`
	Subject   string       `json:"subject"`
	Actor     domain.Actor `json:"actor"`
	Timestamp time.Time    `json:"timestamp"`
	Payload   any          `json:"payload"`
}

// New stamps an event with a fresh id and the current time.
func New(eventType EventType, subject string, actor domain.Actor, payload any) Event {
	return Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		Subject:   subject,
		Actor:     actor,
		Timestamp: time.Now().UTC(),
		Payload:   payload,
	}
}

// EntitySavedPayload payload for created and updated entities.
type EntitySavedPayload struct {
	EntityType domain.EntityType `json:"entity_type"`
	EntityID   int64             `json:"entity_id"`
	RevisionID int64             `json:"revision_id"`
	Fields     []string          `json:"fields,omitempty"`
}

// EntityMovedPayload payload.
type EntityMovedPayload struct {
	EntityType       domain.EntityType `json:"entity_type"`
	EntityID         int64             `json:"entity_id"`
	FromCollectionID *int64            `json:"from_collection_id,omitempty"`
	ToCollectionID   *int64            `json:"to_collection_id,omitempty"`
}

// RevisionRevertedPayload payload.
type RevisionRevertedPayload struct {
	EntityType       domain.EntityType `json:"entity_type"`
	EntityID         int64             `json:"entity_id"`
	TargetRevisionID int64             `json:"target_revision_id"`
	RevisionID       int64             `json:"revision_id"`
}

// NotificationKind distinguishes alerts from subscriptions.
type NotificationKind string

const (
	NotificationAlert        NotificationKind = "alert"
	NotificationSubscription NotificationKind = "subscription"
)

// NotificationChangedPayload payload for channel updates and archives.
type NotificationChangedPayload struct {
	Kind NotificationKind `json:"kind"`
	ID   int64            `json:"id"`
}

// PluginFieldsChangedPayload payload.
type PluginFieldsChangedPayload struct {
	Fields []string `json:"fields"`
}
