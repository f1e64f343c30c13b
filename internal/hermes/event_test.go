package hermes

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/MikeSquared-Agency/supportbot/internal/escalation"
)

func TestEscalationEventParsing(t *testing.T) {
	raw := `{
		"event_id": "9f6ed519-1111-2222-3333-444444444444",
		"session_id": "abc123",
		"user_message": "my order never arrived",
		"reply": "Let me connect you with a human agent.",
		"reason": "signal_phrase",
		"matched_phrase": "connect you with a human",
		"timestamp": "2025-03-01T12:00:00Z"
	}`

	var ev escalation.Event
	if err := json.Unmarshal([]byte(raw), &ev); err != nil {
		t.Fatalf("failed to parse escalation event: %v", err)
	}

	if ev.EventID != uuid.MustParse("9f6ed519-1111-2222-3333-444444444444") {
		t.Errorf("unexpected event id %s", ev.EventID)
	}
	if ev.SessionID != "abc123" {
		t.Errorf("expected session_id 'abc123', got '%s'", ev.SessionID)
	}
	if ev.Reason != escalation.ReasonSignalPhrase {
		t.Errorf("expected reason signal_phrase, got '%s'", ev.Reason)
	}
	if ev.MatchedPhrase != "connect you with a human" {
		t.Errorf("unexpected matched phrase '%s'", ev.MatchedPhrase)
	}
	if !ev.Timestamp.Equal(time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)) {
		t.Errorf("unexpected timestamp %s", ev.Timestamp)
	}
}

func TestEscalationEventOmitsEmptyPhrase(t *testing.T) {
	ev := escalation.Event{
		EventID:   uuid.New(),
		SessionID: "s",
		Reason:    escalation.ReasonNoFAQMatch,
	}

	data, err := json.Marshal(ev)
	if err != nil {
		t.Fatalf("failed to marshal: %v", err)
	}

	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatal(err)
	}
	if _, ok := raw["matched_phrase"]; ok {
		t.Error("expected matched_phrase to be omitted when empty")
	}
	if raw["reason"] != "no_faq_match" {
		t.Errorf("expected reason no_faq_match, got %v", raw["reason"])
	}
}
