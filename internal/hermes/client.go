package hermes

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/MikeSquared-Agency/supportbot/internal/escalation"
)

const (
	// SubjectEscalation carries escalation.Event payloads for human agents.
	SubjectEscalation = "support.escalation.requested"
	// SubjectRegistered is announced once on startup.
	SubjectRegistered = "support.agent.registered"
)

type Client struct {
	conn   *nats.Conn
	logger *slog.Logger
}

func NewClient(ctx context.Context, url, token string, logger *slog.Logger) (*Client, error) {
	opts := []nats.Option{
		nats.Name("supportbot"),
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(60),
		nats.ReconnectWait(2 * time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Warn("nats disconnected", "error", err)
			}
		}),
		nats.ReconnectHandler(func(_ *nats.Conn) {
			logger.Info("nats reconnected")
		}),
	}
	if token != "" {
		opts = append(opts, nats.Token(token))
	}

	nc, err := nats.Connect(url, opts...)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}

	return &Client{conn: nc, logger: logger}, nil
}

func (c *Client) Publish(subject string, data any) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}
	return c.conn.Publish(subject, payload)
}

// NotifyEscalation publishes ev on SubjectEscalation.
func (c *Client) NotifyEscalation(ctx context.Context, ev escalation.Event) error {
	if err := c.Publish(SubjectEscalation, ev); err != nil {
		return fmt.Errorf("publish escalation: %w", err)
	}
	c.logger.Info("escalation published", "event_id", ev.EventID, "session_id", ev.SessionID, "reason", ev.Reason)
	return nil
}

func (c *Client) Close() {
	c.conn.Close()
}
