package slack

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/MikeSquared-Agency/supportbot/internal/escalation"
)

const defaultPostMessageURL = "https://slack.com/api/chat.postMessage"

// maxQuoteLen keeps long replies from flooding the channel.
const maxQuoteLen = 500

// Poster alerts the human-support channel about escalated conversations.
type Poster struct {
	token   string
	channel string
	client  *http.Client
	logger  *slog.Logger
	apiURL  string
}

func NewPoster(token, channel string, logger *slog.Logger) *Poster {
	return &Poster{
		token:   token,
		channel: channel,
		client:  &http.Client{Timeout: 10 * time.Second},
		apiURL:  defaultPostMessageURL,
		logger:  logger,
	}
}

// NotifyEscalation posts an alert for ev to the configured channel.
func (p *Poster) NotifyEscalation(ctx context.Context, ev escalation.Event) error {
	_, err := p.PostEscalation(ctx, ev)
	return err
}

// PostEscalation posts the alert and returns the message timestamp (ts).
func (p *Poster) PostEscalation(ctx context.Context, ev escalation.Event) (string, error) {
	text := formatEscalationMessage(ev)

	body, err := json.Marshal(map[string]any{
		"channel": p.channel,
		"text":    text,
		"blocks": []map[string]any{
			{
				"type": "section",
				"text": map[string]any{
					"type": "mrkdwn",
					"text": text,
				},
			},
			{
				"type": "context",
				"elements": []map[string]any{
					{
						"type": "mrkdwn",
						"text": fmt.Sprintf("Event `%s`", ev.EventID),
					},
				},
			},
		},
	})
	if err != nil {
		return "", fmt.Errorf("marshal slack payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.apiURL, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json; charset=utf-8")
	req.Header.Set("Authorization", "Bearer "+p.token)

	resp, err := p.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("slack post: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	var slackResp struct {
		OK    bool   `json:"ok"`
		TS    string `json:"ts"`
		Error string `json:"error,omitempty"`
	}
	if err := json.Unmarshal(respBody, &slackResp); err != nil {
		return "", fmt.Errorf("parse slack response: %w", err)
	}
	if !slackResp.OK {
		return "", fmt.Errorf("slack error: %s", slackResp.Error)
	}

	p.logger.Info("posted escalation to slack", "ts", slackResp.TS, "session_id", ev.SessionID)
	return slackResp.TS, nil
}

func formatEscalationMessage(ev escalation.Event) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "*Customer needs a human* (session `%s`)\n", ev.SessionID)
	fmt.Fprintf(&sb, "*Reason:* %s", describeReason(ev.Reason))
	if ev.MatchedPhrase != "" {
		fmt.Fprintf(&sb, " (%q)", ev.MatchedPhrase)
	}
	sb.WriteString("\n\n")
	fmt.Fprintf(&sb, "*Customer:* %s\n", quote(ev.UserMessage))
	fmt.Fprintf(&sb, "*Bot:* %s", quote(ev.Reply))

	return sb.String()
}

func describeReason(r escalation.Reason) string {
	switch r {
	case escalation.ReasonSignalPhrase:
		return "assistant signalled it could not help"
	case escalation.ReasonEmptyMessage:
		return "empty customer message"
	case escalation.ReasonNoFAQMatch:
		return "question not covered by the FAQ"
	default:
		return string(r)
	}
}

func quote(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "_(empty)_"
	}
	if r := []rune(s); len(r) > maxQuoteLen {
		s = string(r[:maxQuoteLen]) + "…"
	}
	return s
}
