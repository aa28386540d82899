// Package revisions turns raw revision history into display timelines and
// computes the diffs and descriptions recorded with new revisions.
package revisions

import (
	"github.com/auditkit/revision-service/internal/domain"
)

// DropReason tells a DropObserver why a revision produced no entry.
type DropReason string

const (
	DropInvalid   DropReason = "invalid"
	DropNoMessage DropReason = "no_message"
)

// Validator decides whether a revision is well formed.
type Validator func(domain.Revision) bool

// Decomposer derives the title and description for a revision's raw message.
type Decomposer func(rev domain.Revision, raw string) (Message, bool)

// DropObserver is told about every revision left out of a timeline.
type DropObserver func(rev domain.Revision, reason DropReason)

type options struct {
	valid     Validator
	decompose Decomposer
	onDrop    DropObserver
}

// Option customises BuildTimeline collaborators.
type Option func(*options)

// WithValidator replaces IsValidRevision.
func WithValidator(v Validator) Option {
	return func(o *options) {
		if v != nil {
			o.valid = v
		}
	}
}

// WithDecomposer replaces DecomposeMessage.
func WithDecomposer(d Decomposer) Option {
	return func(o *options) {
		if d != nil {
			o.decompose = d
		}
	}
}

// WithDropObserver registers a callback for dropped revisions. It does not
// change the returned timeline.
func WithDropObserver(fn DropObserver) Option {
	return func(o *options) {
		o.onDrop = fn
	}
}

// BuildTimeline projects revisions, newest first, into timeline entries. The
// input order is kept. Revisions failing validation or yielding no message are
// skipped. Only entries after the first valid one are revertable, and only
// when canWrite is set.
func BuildTimeline(revs []domain.Revision, canWrite bool, opts ...Option) []domain.TimelineEntry {
	o := options{valid: IsValidRevision, decompose: DecomposeMessage}
	for _, opt := range opts {
		opt(&o)
	}

	valid := make([]domain.Revision, 0, len(revs))
	for _, rev := range revs {
		if !o.valid(rev) {
			o.dropped(rev, DropInvalid)
			continue
		}
		valid = append(valid, rev)
	}

	entries := make([]domain.TimelineEntry, 0, len(valid))
	for i, rev := range valid {
		msg, ok := o.decompose(rev, Description(rev))
		if !ok {
			o.dropped(rev, DropNoMessage)
			continue
		}
		entries = append(entries, domain.TimelineEntry{
			Timestamp:    rev.Timestamp.UnixMilli(),
			Icon:         EventIcon,
			Title:        rev.User.CommonName + " " + msg.Title,
			Description:  msg.Description,
			IsRevertable: canWrite && i != 0,
			Revision:     rev,
		})
	}
	return entries
}

func (o options) dropped(rev domain.Revision, reason DropReason) {
	if o.onDrop != nil {
		o.onDrop(rev, reason)
	}
}
