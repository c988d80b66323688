// Package compose maps a match score to one of four response strategies
// and produces the instruction set for the generative call, or a direct
// answer that bypasses it.
package compose

import (
	"fmt"

	"github.com/convodesk/support-engine/internal/match"
)

// Plan is the composed response strategy for one message.
type Plan struct {
	// FAQContext is injected into the generative call's system context.
	// Empty at the low and none tiers.
	FAQContext string
	// SkipAI is set at the very_high tier: the FAQ answer is returned
	// verbatim and no generative call is made.
	SkipAI bool
	// DirectResponse is the verbatim FAQ answer when SkipAI is set.
	DirectResponse string
	// Tier is the confidence band the plan was built from.
	Tier match.Confidence
}

// The four tiers are the central behavioral contract: band boundaries
// at 0.4, 0.6, and 0.8, with the generative call skipped entirely at
// very_high.
//
//	very_high  score >= 0.8  direct FAQ answer, no AI
//	high       0.6 - 0.8     answer injected, rephrase naturally
//	medium     0.4 - 0.6     q+a injected as reference, clarify if unclear
//	low/none   score < 0.4   no FAQ context
func Compose(message string, result match.Result) Plan {
	switch result.Confidence {
	case match.ConfidenceVeryHigh:
		return Plan{
			SkipAI:         true,
			DirectResponse: result.Record.Answer,
			Tier:           match.ConfidenceVeryHigh,
		}
	case match.ConfidenceHigh:
		return Plan{
			FAQContext: fmt.Sprintf(
				"A knowledge base entry answers the customer's question. Rephrase this answer naturally in one or two sentences, keeping every fact intact:\n%s",
				result.Record.Answer,
			),
			Tier: match.ConfidenceHigh,
		}
	case match.ConfidenceMedium:
		return Plan{
			FAQContext: fmt.Sprintf(
				"A knowledge base entry may be relevant. Use it as reference; if the customer's intent is unclear, ask a clarifying question instead of guessing.\nQ: %s\nA: %s",
				result.Record.Question,
				result.Record.Answer,
			),
			Tier: match.ConfidenceMedium,
		}
	default:
		return Plan{Tier: result.Confidence}
	}
}
