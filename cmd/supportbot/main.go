package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/MikeSquared-Agency/supportbot/internal/api"
	"github.com/MikeSquared-Agency/supportbot/internal/config"
	"github.com/MikeSquared-Agency/supportbot/internal/hermes"
	"github.com/MikeSquared-Agency/supportbot/internal/llm"
	"github.com/MikeSquared-Agency/supportbot/internal/slack"
	"github.com/MikeSquared-Agency/supportbot/internal/store"
	"github.com/MikeSquared-Agency/supportbot/internal/support"
)

type conversationStore interface {
	support.ConversationStore
	EnsureInitialized(ctx context.Context) error
	Close()
}

func main() {
	// A missing .env is fine; the environment may already be populated.
	_ = godotenv.Load()

	cfg := config.Load()
	setupLogging(cfg.LogLevel)

	slog.Info("supportbot starting", "port", cfg.Port)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Conversation store
	var st conversationStore
	if cfg.DatabaseURL != "" {
		pg, err := store.NewPGStore(ctx, cfg.DatabaseURL)
		if err != nil {
			slog.Error("failed to connect to database", "error", err)
			os.Exit(1)
		}
		st = pg
		slog.Info("database connected")
	} else {
		st = store.NewFileStore(cfg.DataDir)
		slog.Info("using file store", "dir", cfg.DataDir)
	}
	defer st.Close()

	if err := st.EnsureInitialized(ctx); err != nil {
		slog.Error("failed to initialize store", "error", err)
		os.Exit(1)
	}

	// LLM provider
	provider, err := newProvider(cfg)
	if err != nil {
		slog.Error("llm provider not configured", "error", err)
		os.Exit(1)
	}

	// Escalation notifiers are optional; the bot still flags replies without them.
	var notifiers []support.Notifier

	var hermesClient *hermes.Client
	if cfg.NatsURL != "" {
		hermesClient, err = hermes.NewClient(ctx, cfg.NatsURL, cfg.NatsToken, slog.Default())
		if err != nil {
			slog.Error("failed to connect to NATS", "error", err)
			os.Exit(1)
		}
		defer hermesClient.Close()
		notifiers = append(notifiers, hermesClient)
		slog.Info("NATS connected", "url", cfg.NatsURL)
	} else {
		slog.Warn("NATS not configured, escalation events will not be published")
	}

	if cfg.SlackBotToken != "" && cfg.SlackChannel != "" {
		notifiers = append(notifiers, slack.NewPoster(cfg.SlackBotToken, cfg.SlackChannel, slog.Default()))
		slog.Info("slack poster ready", "channel", cfg.SlackChannel)
	} else {
		slog.Warn("slack not configured, escalations will not be posted")
	}

	svc := support.New(st, provider, support.Options{
		Timeout:       cfg.LLMTimeout,
		MaxFAQContext: cfg.MaxFAQContext,
	}, slog.Default(), notifiers...)

	// HTTP API
	srv := api.NewServer(cfg.Port, svc, cfg.StaticDir, splitList(cfg.CORSOrigins))
	go func() {
		if err := srv.Start(); err != nil {
			slog.Error("HTTP server error", "error", err)
			cancel()
		}
	}()

	if hermesClient != nil {
		if err := hermesClient.Publish(hermes.SubjectRegistered, map[string]any{
			"timestamp": time.Now().UTC().Format(time.RFC3339),
			"port":      cfg.Port,
			"provider":  cfg.LLMProvider,
		}); err != nil {
			slog.Warn("failed to publish registration", "error", err)
		}
	}

	slog.Info("supportbot ready", "port", cfg.Port, "provider", cfg.LLMProvider)

	// Graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sigCh:
	case <-ctx.Done():
	}
	slog.Info("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Warn("HTTP shutdown error", "error", err)
	}
	slog.Info("supportbot stopped")
}

func newProvider(cfg config.Config) (llm.Provider, error) {
	switch cfg.LLMProvider {
	case "anthropic":
		if cfg.AnthropicAPIKey == "" {
			return nil, fmt.Errorf("ANTHROPIC_API_KEY is required")
		}
		slog.Info("anthropic client ready", "model", cfg.AnthropicModel)
		return llm.NewAnthropic(cfg.AnthropicAPIKey, cfg.AnthropicModel, cfg.MaxTokens, cfg.Temperature), nil
	case "openrouter", "":
		if cfg.OpenRouterAPIKey == "" {
			return nil, fmt.Errorf("OPENROUTER_API_KEY is required")
		}
		slog.Info("openrouter client ready", "model", cfg.OpenRouterModel)
		return llm.NewOpenRouter(llm.OpenRouterConfig{
			APIKey:      cfg.OpenRouterAPIKey,
			Model:       cfg.OpenRouterModel,
			SiteURL:     cfg.SiteURL,
			SiteName:    cfg.SiteName,
			Temperature: cfg.Temperature,
			MaxTokens:   cfg.MaxTokens,
		}), nil
	default:
		return nil, fmt.Errorf("unknown LLM_PROVIDER %q (want openrouter or anthropic)", cfg.LLMProvider)
	}
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func setupLogging(level string) {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl})
	slog.SetDefault(slog.New(handler))
}
