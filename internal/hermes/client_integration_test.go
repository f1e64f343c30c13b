//go:build integration

package hermes

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/MikeSquared-Agency/supportbot/internal/escalation"
)

func skipWithoutNATS(t *testing.T) string {
	t.Helper()
	url := os.Getenv("NATS_URL")
	if url == "" {
		t.Skip("NATS_URL not set, skipping integration test")
	}
	return url
}

func TestIntegration_NotifyEscalation(t *testing.T) {
	natsURL := skipWithoutNATS(t)
	ctx := context.Background()

	client, err := NewClient(ctx, natsURL, os.Getenv("NATS_TOKEN"), slog.Default())
	if err != nil {
		t.Fatalf("failed to connect: %v", err)
	}
	defer client.Close()

	sub, err := nats.Connect(natsURL, nats.Token(os.Getenv("NATS_TOKEN")))
	if err != nil {
		t.Fatalf("failed to connect subscriber: %v", err)
	}
	defer sub.Close()

	received := make(chan escalation.Event, 1)

	_, err = sub.Subscribe(SubjectEscalation, func(msg *nats.Msg) {
		var ev escalation.Event
		json.Unmarshal(msg.Data, &ev)
		received <- ev
	})
	if err != nil {
		t.Fatalf("subscribe failed: %v", err)
	}

	// Give subscription time to propagate
	time.Sleep(100 * time.Millisecond)

	sent := escalation.NewEvent("integration-session", "help", "I'm not sure.",
		escalation.Decision{Escalate: true, Reason: escalation.ReasonSignalPhrase, Phrase: "i'm not sure"}, time.Now())
	if err := client.NotifyEscalation(ctx, sent); err != nil {
		t.Fatalf("publish failed: %v", err)
	}

	select {
	case ev := <-received:
		if ev.EventID != sent.EventID || ev.SessionID != "integration-session" {
			t.Errorf("unexpected event %+v", ev)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for escalation event")
	}
}
