package support

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/MikeSquared-Agency/supportbot/internal/escalation"
	"github.com/MikeSquared-Agency/supportbot/internal/llm"
	"github.com/MikeSquared-Agency/supportbot/internal/store"
)

const (
	defaultTimeout = 30 * time.Second
	notifyTimeout  = 10 * time.Second
)

// ConversationStore is the persistence the service needs.
type ConversationStore interface {
	History(ctx context.Context, sessionID string) ([]store.Turn, error)
	AppendTurn(ctx context.Context, sessionID, userContent, assistantContent string) error
	FAQs(ctx context.Context) ([]store.FAQ, error)
}

// Notifier is told about every escalated exchange.
type Notifier interface {
	NotifyEscalation(ctx context.Context, ev escalation.Event) error
}

type Options struct {
	// Timeout bounds each provider call. Zero means 30s.
	Timeout time.Duration
	// MaxFAQContext caps the FAQ context in characters. Zero means unlimited.
	MaxFAQContext int
}

// Reply is what the widget shows for one user message.
type Reply struct {
	Text            string
	NeedsEscalation bool
}

// Service runs one chat exchange end to end.
type Service struct {
	store     ConversationStore
	provider  llm.Provider
	notifiers []Notifier
	opts      Options
	logger    *slog.Logger
	now       func() time.Time
}

func New(st ConversationStore, provider llm.Provider, opts Options, logger *slog.Logger, notifiers ...Notifier) *Service {
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	return &Service{
		store:     st,
		provider:  provider,
		notifiers: notifiers,
		opts:      opts,
		logger:    logger,
		now:       time.Now,
	}
}

// HandleMessage reads the session history, asks the provider for a reply,
// flags it for escalation when needed and records the exchange.
func (s *Service) HandleMessage(ctx context.Context, sessionID, message string) (*Reply, error) {
	if sessionID == "" || strings.TrimSpace(message) == "" {
		return nil, &Error{Kind: KindValidation, Op: "validate", Err: ErrMissingFields}
	}

	log := s.logger.With("session_id", sessionID)

	history, err := s.store.History(ctx, sessionID)
	if err != nil {
		log.Error("failed to load history", "error", err)
		return nil, &Error{Kind: KindStore, Op: "load history", Err: err}
	}

	faqs, err := s.store.FAQs(ctx)
	if err != nil {
		log.Error("failed to load faqs", "error", err)
		return nil, &Error{Kind: KindStore, Op: "load faqs", Err: err}
	}

	faqCtx, truncated := faqContext(faqs, s.opts.MaxFAQContext)
	if truncated {
		log.Warn("faq context truncated", "faqs", len(faqs), "max_chars", s.opts.MaxFAQContext)
	}

	raw, err := s.complete(ctx, buildMessages(faqCtx, history, message))
	if err != nil {
		log.Error("provider call failed", "error", err, "kind", KindOf(err))
		return nil, err
	}

	questions := make([]string, len(faqs))
	for i, f := range faqs {
		questions[i] = f.Question
	}
	decision := escalation.Classify(message, raw, questions)
	text := composeReply(raw, decision.Escalate)

	if err := s.store.AppendTurn(ctx, sessionID, message, text); err != nil {
		log.Error("failed to save exchange", "error", err)
		return nil, &Error{Kind: KindStore, Op: "save exchange", Err: err}
	}

	if decision.Escalate {
		s.notify(ctx, escalation.NewEvent(sessionID, message, raw, decision, s.now()))
	}

	log.Info("message handled",
		"history_turns", len(history),
		"needs_escalation", decision.Escalate,
		"reason", decision.Reason,
	)

	return &Reply{Text: text, NeedsEscalation: decision.Escalate}, nil
}

// History returns the stored conversation for sessionID.
func (s *Service) History(ctx context.Context, sessionID string) ([]store.Turn, error) {
	turns, err := s.store.History(ctx, sessionID)
	if err != nil {
		s.logger.Error("failed to load history", "session_id", sessionID, "error", err)
		return nil, &Error{Kind: KindStore, Op: "load history", Err: err}
	}
	return turns, nil
}

func (s *Service) complete(ctx context.Context, messages []llm.Message) (string, error) {
	cctx, cancel := context.WithTimeout(ctx, s.opts.Timeout)
	defer cancel()

	reply, err := s.provider.Complete(cctx, messages)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(cctx.Err(), context.DeadlineExceeded) {
			return "", &Error{Kind: KindProviderTimeout, Op: "complete", Err: err}
		}
		return "", &Error{Kind: KindProvider, Op: "complete", Err: err}
	}
	return reply, nil
}

// notify fans ev out to every notifier. Failures are logged, never returned.
// The exchange is already stored, so a client disconnect must not drop the alert.
func (s *Service) notify(ctx context.Context, ev escalation.Event) {
	if len(s.notifiers) == 0 {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), notifyTimeout)
	defer cancel()

	for _, n := range s.notifiers {
		if err := n.NotifyEscalation(ctx, ev); err != nil {
			s.logger.Warn("escalation notification failed", "event_id", ev.EventID, "error", err)
		}
	}
}
