package guardrail

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/convodesk/support-engine/internal/conversation"
)

// Reason classifies why a message was short-circuited.
type Reason string

const (
	ReasonOffTopic   Reason = "off_topic"
	ReasonEscalation Reason = "escalation"
)

// Decision is a guardrail verdict for one message. Produced transiently
// per request and never persisted here.
type Decision struct {
	Handled  bool
	Response string
	Reason   Reason
	// Detail is the matched deny-list keyword or escalation category.
	Detail string
}

// ContextBuffer clears stored conversation context on a greeting reset.
type ContextBuffer interface {
	Clear(ctx context.Context, id conversation.Identity) error
}

// Pipeline runs the ordered pre-processing checks. It is independent of
// which generative backend serves the request.
type Pipeline struct {
	rules   Rules
	history ContextBuffer
	logger  zerolog.Logger
}

// NewPipeline creates a guardrail pipeline with the given rule tables.
func NewPipeline(rules Rules, history ContextBuffer, logger zerolog.Logger) *Pipeline {
	return &Pipeline{
		rules:   rules,
		history: history,
		logger:  logger.With().Str("component", "guardrail").Logger(),
	}
}

// Preprocess runs the checks in order and returns a Decision on the
// first hit, or nil to continue to AI processing.
//
// A bare greeting clears the conversation context buffer as a side
// effect but does not short-circuit: the greeting still flows through
// the later checks.
func (p *Pipeline) Preprocess(ctx context.Context, message string, id conversation.Identity) *Decision {
	normalized := strings.ToLower(strings.Join(strings.Fields(message), " "))

	if greetingPattern.MatchString(normalized) && p.history != nil {
		if err := p.history.Clear(ctx, id); err != nil {
			p.logger.Warn().Err(err).Msg("Context reset failed")
		} else {
			p.logger.Debug().Msg("Greeting received, conversation context cleared")
		}
	}

	for _, keyword := range p.rules.OffTopicKeywords {
		if strings.Contains(normalized, keyword) {
			p.logger.Info().Str("keyword", keyword).Msg("Off-topic message blocked")
			return &Decision{
				Handled:  true,
				Response: fmt.Sprintf(p.rules.Responses.OffTopic, keyword),
				Reason:   ReasonOffTopic,
				Detail:   keyword,
			}
		}
	}

	for _, group := range p.rules.Escalation {
		for _, pattern := range group.Patterns {
			if strings.Contains(normalized, pattern) {
				p.logger.Info().Str("category", group.Category).Msg("Escalation detected")
				return &Decision{
					Handled:  true,
					Response: fmt.Sprintf(p.rules.Responses.Escalation, group.Category),
					Reason:   ReasonEscalation,
					Detail:   group.Category,
				}
			}
		}
	}

	return nil
}

// IsShortVague reports whether a message is too short and generic to be
// worth an FAQ search: three words or fewer with no domain keyword.
func (p *Pipeline) IsShortVague(message string) bool {
	words := strings.Fields(message)
	if len(words) > 3 {
		return false
	}
	lowered := strings.ToLower(message)
	for _, keyword := range p.rules.DomainKeywords {
		if strings.Contains(lowered, keyword) {
			return false
		}
	}
	return true
}
