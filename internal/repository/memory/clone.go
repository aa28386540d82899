package memory

import (
	"maps"
	"slices"

	"github.com/auditkit/revision-service/internal/domain"
)

func cloneRevision(r domain.Revision) domain.Revision {
	out := r
	out.Diff = maps.Clone(r.Diff)
	if r.Object != nil {
		obj := *r.Object
		obj.Content = maps.Clone(r.Object.Content)
		obj.Extensions = maps.Clone(r.Object.Extensions)
		out.Object = &obj
	}
	return out
}

func cloneChannels(channels []domain.Channel) []domain.Channel {
	if channels == nil {
		return nil
	}
	out := make([]domain.Channel, len(channels))
	for i, ch := range channels {
		ch.Recipients = slices.Clone(ch.Recipients)
		out[i] = ch
	}
	return out
}

func cloneAlert(a domain.Alert) domain.Alert {
	out := a
	out.Channels = cloneChannels(a.Channels)
	return out
}

func cloneSubscription(s domain.Subscription) domain.Subscription {
	out := s
	out.Channels = cloneChannels(s.Channels)
	out.Filters = slices.Clone(s.Filters)
	return out
}
