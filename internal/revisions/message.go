package revisions

import (
	"fmt"

	"github.com/auditkit/revision-service/internal/domain"
)

// EventIcon is the icon shown next to every revision in a timeline.
const EventIcon = "pencil"

const (
	creationDescription = "First revision."
	creationTitle       = "created this"
)

// Message is the title/description pair derived from a revision.
type Message struct {
	Title       string
	Description string
}

// Description returns the raw message for a revision.
func Description(rev domain.Revision) string {
	switch {
	case rev.IsCreation:
		return creationDescription
	case rev.IsReversion:
		return fmt.Sprintf("Reverted to an earlier revision and %s", rev.Description)
	default:
		return rev.Description
	}
}

// IsValidRevision reports whether a revision carries anything worth showing.
func IsValidRevision(rev domain.Revision) bool {
	if rev.IsCreation || rev.IsReversion {
		return true
	}
	return len(rev.Diff) > 0 || rev.Description != ""
}

// DecomposeMessage splits a raw message into a title and description.
// Creation messages are complete descriptions and get a fixed title.
func DecomposeMessage(rev domain.Revision, raw string) (Message, bool) {
	if raw == "" {
		return Message{}, false
	}
	if rev.IsCreation {
		return Message{Title: creationTitle, Description: raw}, true
	}
	return Message{Title: raw}, true
}
