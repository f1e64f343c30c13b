package support

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/MikeSquared-Agency/supportbot/internal/llm"
	"github.com/MikeSquared-Agency/supportbot/internal/store"
)

// HandoffNotice prefixes every reply that is flagged for a human.
const HandoffNotice = "I'm not able to fully answer your question. Let me connect you with a human agent who can help you better. "

const systemPromptTemplate = `You are a helpful customer support AI assistant. Your goal is to provide accurate, helpful responses to customer queries. If you don't know the answer or if the query is outside the scope of the provided FAQs, suggest escalating to a human agent.

Here are some frequently asked questions you can reference:

%s

If the user's query matches one of these FAQs, provide the corresponding answer.
If the query is related but not exactly matching, provide a helpful response based on the FAQs.
If the query is completely unrelated to the FAQs, politely suggest escalating to a human agent.`

// faqContext renders FAQs as "Q:/A:" blocks. With maxChars > 0 only whole
// entries that fit are kept; the second return value reports truncation.
func faqContext(faqs []store.FAQ, maxChars int) (string, bool) {
	var sb strings.Builder
	size := 0
	for i, faq := range faqs {
		entry := fmt.Sprintf("Q: %s\nA: %s", faq.Question, faq.Answer)
		sep := 0
		if i > 0 {
			sep = 2
		}
		n := utf8.RuneCountInString(entry) + sep
		if maxChars > 0 && size+n > maxChars {
			return sb.String(), true
		}
		if sep > 0 {
			sb.WriteString("\n\n")
		}
		sb.WriteString(entry)
		size += n
	}
	return sb.String(), false
}

// buildMessages lays out the provider request: system prompt with FAQ
// context, prior turns, then the current user message.
func buildMessages(faqCtx string, history []store.Turn, userMessage string) []llm.Message {
	messages := make([]llm.Message, 0, len(history)+2)
	messages = append(messages, llm.Message{
		Role:    llm.RoleSystem,
		Content: fmt.Sprintf(systemPromptTemplate, faqCtx),
	})
	for _, t := range history {
		messages = append(messages, llm.Message{Role: t.Role, Content: t.Content})
	}
	messages = append(messages, llm.Message{Role: llm.RoleUser, Content: userMessage})
	return messages
}

func composeReply(reply string, escalate bool) string {
	if escalate {
		return HandoffNotice + reply
	}
	return reply
}
