package guardrail

import (
	"regexp"
	"strings"
)

// greetingPattern matches a bare greeting, optionally followed by
// punctuation and nothing else.
var greetingPattern = regexp.MustCompile(`^(hi|hello|hey|good morning|good afternoon|good evening|greetings)[\s.!?,]*$`)

// genericPatterns match conversational filler that should skip FAQ
// search entirely.
var genericPatterns = []*regexp.Regexp{
	greetingPattern,
	regexp.MustCompile(`^(help|help me|i need help|can you help( me)?)[.!?]*$`),
	regexp.MustCompile(`^(what|why|how|when|where|who)[.!?]*$`),
	regexp.MustCompile(`^(tell me more|go on|more|continue)[.!?]*$`),
	regexp.MustCompile(`^(ok|okay|yes|no|yeah|yep|nope|sure|thanks|thank you|great|cool|nice)[.!?]*$`),
}

// followUpPatterns match contextual follow-ups that should be answered
// from conversation history rather than a fresh FAQ search.
var followUpPatterns = []*regexp.Regexp{
	regexp.MustCompile(`^why (is|are|do|does|did|it|that|this|they|he|she)\b`),
	regexp.MustCompile(`^what about\b`),
	regexp.MustCompile(`^(and|but|so|then) (what|why|how|when|where|who)\b`),
}

// IsGeneric reports whether a message is conversational filler.
func IsGeneric(message string) bool {
	normalized := strings.ToLower(strings.TrimSpace(message))
	for _, p := range genericPatterns {
		if p.MatchString(normalized) {
			return true
		}
	}
	return false
}

// IsContextualFollowUp reports whether a message refers back to the
// previous turn.
func IsContextualFollowUp(message string) bool {
	normalized := strings.ToLower(strings.TrimSpace(message))
	for _, p := range followUpPatterns {
		if p.MatchString(normalized) {
			return true
		}
	}
	return false
}
