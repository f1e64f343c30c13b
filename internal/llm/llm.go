package llm

import "context"

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Provider turns an ordered message list (system prompt first) into one
// assistant reply.
type Provider interface {
	Complete(ctx context.Context, messages []Message) (string, error)
}
