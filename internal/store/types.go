package store

import "time"

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Turn is one message in a conversation. Turns are never modified after they are written.
type Turn struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// FAQ is a static question/answer pair used as reference context.
type FAQ struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// DefaultFAQs is seeded once when no FAQ set exists yet.
var DefaultFAQs = []FAQ{
	{
		Question: "What are your business hours?",
		Answer:   "Our business hours are Monday to Friday, 9 AM to 5 PM.",
	},
	{
		Question: "How do I reset my password?",
		Answer:   "You can reset your password by clicking on the 'Forgot Password' link on the login page.",
	},
	{
		Question: "Do you offer refunds?",
		Answer:   "Yes, we offer refunds within 30 days of purchase.",
	},
}

func newExchange(userContent, assistantContent string, at time.Time) []Turn {
	return []Turn{
		{Role: RoleUser, Content: userContent, Timestamp: at},
		{Role: RoleAssistant, Content: assistantContent, Timestamp: at},
	}
}
