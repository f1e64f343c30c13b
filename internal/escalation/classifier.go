package escalation

import "strings"

// Reason explains why a reply was flagged for a human.
type Reason string

const (
	ReasonNone         Reason = ""
	ReasonSignalPhrase Reason = "signal_phrase"
	ReasonEmptyMessage Reason = "empty_message"
	ReasonNoFAQMatch   Reason = "no_faq_match"
)

// similarityThreshold is exclusive: a score of exactly 0.5 is not a match.
const similarityThreshold = 0.5

// signalPhrases are matched case-insensitively as substrings of the model reply.
var signalPhrases = []string{
	"connect you with a human",
	"escalate",
	"human agent",
	"i don't know",
	"i'm not sure",
	"i cannot provide",
	"i can't provide",
}

// Decision is the outcome of Classify.
type Decision struct {
	Escalate bool
	Reason   Reason
	// Phrase is the signal phrase that matched, if any.
	Phrase string
}

// ShouldEscalate reports whether the exchange should be handed off to a human.
func ShouldEscalate(userMessage, reply string, questions []string) bool {
	return Classify(userMessage, reply, questions).Escalate
}

// Classify decides escalation from the model reply, the user's message and the
// FAQ questions the assistant was given. It is deterministic and side-effect free.
func Classify(userMessage, reply string, questions []string) Decision {
	msg := strings.ToLower(userMessage)
	replyLower := strings.ToLower(reply)

	for _, phrase := range signalPhrases {
		if strings.Contains(replyLower, phrase) {
			return Decision{Escalate: true, Reason: ReasonSignalPhrase, Phrase: phrase}
		}
	}

	// A blank message would otherwise be "contained" in every question.
	if strings.TrimSpace(msg) == "" {
		return Decision{Escalate: true, Reason: ReasonEmptyMessage}
	}

	for _, q := range questions {
		if relatedToQuestion(msg, strings.ToLower(q)) {
			return Decision{}
		}
	}

	return Decision{Escalate: true, Reason: ReasonNoFAQMatch}
}

func relatedToQuestion(msg, question string) bool {
	if strings.Contains(msg, question) || strings.Contains(question, msg) {
		return true
	}
	return Similarity(msg, question) > similarityThreshold
}

// Similarity is a naive bag-of-words overlap score in [0,1]: the number of words
// of a (counted per occurrence) that appear anywhere in b, divided by the length
// of the longer word sequence. Two empty inputs score 0.
func Similarity(a, b string) float64 {
	words1 := strings.Fields(a)
	words2 := strings.Fields(b)

	longest := max(len(words1), len(words2))
	if longest == 0 {
		return 0
	}

	present := make(map[string]struct{}, len(words2))
	for _, w := range words2 {
		present[w] = struct{}{}
	}

	common := 0
	for _, w := range words1 {
		if _, ok := present[w]; ok {
			common++
		}
	}

	return float64(common) / float64(longest)
}
