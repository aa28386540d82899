package dto

import (
	"time"

	"github.com/auditkit/revision-service/internal/domain"
	"github.com/auditkit/revision-service/internal/plugins"
)

// RecipientRequest payload.
type RecipientRequest struct {
	UserID *int64 `json:"user_id" validate:"omitempty,gt=0"`
	Email  string `json:"email" validate:"required,email"`
}

// ChannelRequest payload.
type ChannelRequest struct {
	Type         string             `json:"channel_type" validate:"required,oneof=email slack"`
	Enabled      bool               `json:"enabled"`
	ScheduleType string             `json:"schedule_type" validate:"required,oneof=hourly daily weekly monthly"`
	ScheduleHour *int               `json:"schedule_hour" validate:"omitempty,min=0,max=23"`
	ScheduleDay  string             `json:"schedule_day" validate:"omitempty,oneof=mon tue wed thu fri sat sun"`
	Recipients   []RecipientRequest `json:"recipients" validate:"omitempty,dive"`
	SlackChannel string             `json:"slack_channel" validate:"required_if=Type slack"`
}

// SetChannelsRequest payload.
type SetChannelsRequest struct {
	Channels []ChannelRequest `json:"channels" validate:"required,min=1,dive"`
}

// Domain converts the payload.
func (r SetChannelsRequest) Domain() []domain.Channel {
	out := make([]domain.Channel, 0, len(r.Channels))
	for _, ch := range r.Channels {
		recipients := make([]domain.Recipient, 0, len(ch.Recipients))
		for _, rc := range ch.Recipients {
			recipients = append(recipients, domain.Recipient{UserID: rc.UserID, Email: rc.Email})
		}
		out = append(out, domain.Channel{
			Type:         domain.ChannelType(ch.Type),
			Enabled:      ch.Enabled,
			ScheduleType: domain.ScheduleType(ch.ScheduleType),
			ScheduleHour: ch.ScheduleHour,
			ScheduleDay:  ch.ScheduleDay,
			Recipients:   recipients,
			SlackChannel: ch.SlackChannel,
		})
	}
	return out
}

// AlertResponse describes an alert being edited.
type AlertResponse struct {
	ID          int64                 `json:"id"`
	CardID      int64                 `json:"card_id"`
	CardName    string                `json:"card_name"`
	Collection  *CollectionResponse   `json:"collection"`
	Condition   domain.AlertCondition `json:"condition"`
	AboveGoal   *bool                 `json:"above_goal,omitempty"`
	Channels    []domain.Channel      `json:"channels"`
	CreatorName string                `json:"creator_name"`
	CreatedAt   time.Time             `json:"created_at"`
	UpdatedAt   time.Time             `json:"updated_at"`
}

// Alert converts an alert.
func Alert(a domain.Alert) AlertResponse {
	resp := AlertResponse{
		ID:          a.ID,
		CardID:      a.CardID,
		CardName:    a.CardName,
		Condition:   a.Condition,
		AboveGoal:   a.AboveGoal,
		Channels:    a.Channels,
		CreatorName: a.CreatorName,
		CreatedAt:   a.CreatedAt,
		UpdatedAt:   a.UpdatedAt,
	}
	if resp.Channels == nil {
		resp.Channels = []domain.Channel{}
	}
	if a.Collection != nil {
		resp.Collection = &CollectionResponse{ID: a.Collection.ID, Name: a.Collection.Name}
	}
	return resp
}

// FormFieldResponse describes a registered form field.
type FormFieldResponse struct {
	Name string            `json:"name"`
	Type plugins.FieldType `json:"type"`
}

// FormFields converts registered fields.
func FormFields(fields []plugins.FormField) []FormFieldResponse {
	out := make([]FormFieldResponse, 0, len(fields))
	for _, f := range fields {
		out = append(out, FormFieldResponse{Name: f.Name, Type: f.Type})
	}
	return out
}
