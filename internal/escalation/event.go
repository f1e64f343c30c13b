package escalation

import (
	"time"

	"github.com/google/uuid"
)

// Event is emitted when a reply is flagged for human handoff.
type Event struct {
	EventID       uuid.UUID `json:"event_id"`
	SessionID     string    `json:"session_id"`
	UserMessage   string    `json:"user_message"`
	Reply         string    `json:"reply"`
	Reason        Reason    `json:"reason"`
	MatchedPhrase string    `json:"matched_phrase,omitempty"`
	Timestamp     time.Time `json:"timestamp"`
}

// NewEvent builds an Event for a flagged exchange.
func NewEvent(sessionID, userMessage, reply string, d Decision, at time.Time) Event {
	return Event{
		EventID:       uuid.New(),
		SessionID:     sessionID,
		UserMessage:   userMessage,
		Reply:         reply,
		Reason:        d.Reason,
		MatchedPhrase: d.Phrase,
		Timestamp:     at.UTC(),
	}
}
