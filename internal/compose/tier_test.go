package compose

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/convodesk/support-engine/internal/faq"
	"github.com/convodesk/support-engine/internal/match"
)

func matchResult(score float64) match.Result {
	return match.Result{
		Record: &faq.Record{
			ID:       "faq-1",
			Question: "How do I check my balance?",
			Answer:   "Dial *123# from your phone.",
		},
		Score:      score,
		Confidence: match.ConfidenceForScore(score),
		MatchType:  match.MatchTypeKeyword,
	}
}

func TestComposeTiers(t *testing.T) {
	tests := []struct {
		name       string
		score      float64
		tier       match.Confidence
		skipAI     bool
		hasContext bool
	}{
		{name: "very high skips the model", score: 0.85, tier: match.ConfidenceVeryHigh, skipAI: true},
		{name: "boundary 0.8 is very high", score: 0.8, tier: match.ConfidenceVeryHigh, skipAI: true},
		{name: "high rephrases", score: 0.75, tier: match.ConfidenceHigh, hasContext: true},
		{name: "boundary 0.6 is high", score: 0.6, tier: match.ConfidenceHigh, hasContext: true},
		{name: "medium references", score: 0.5, tier: match.ConfidenceMedium, hasContext: true},
		{name: "boundary 0.4 is medium", score: 0.4, tier: match.ConfidenceMedium, hasContext: true},
		{name: "low gets no context", score: 0.3, tier: match.ConfidenceLow},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan := Compose("how do I check my balance", matchResult(tt.score))

			assert.Equal(t, tt.tier, plan.Tier)
			assert.Equal(t, tt.skipAI, plan.SkipAI)
			if tt.skipAI {
				assert.Equal(t, "Dial *123# from your phone.", plan.DirectResponse)
			} else {
				assert.Empty(t, plan.DirectResponse)
			}
			if tt.hasContext {
				assert.Contains(t, plan.FAQContext, "Dial *123#")
			} else {
				assert.Empty(t, plan.FAQContext)
			}
		})
	}
}

func TestComposeMediumIncludesQuestion(t *testing.T) {
	plan := Compose("balance?", matchResult(0.5))

	require.Equal(t, match.ConfidenceMedium, plan.Tier)
	assert.Contains(t, plan.FAQContext, "Q: How do I check my balance?")
	assert.Contains(t, plan.FAQContext, "A: Dial *123#")
}

func TestComposeHighOmitsQuestion(t *testing.T) {
	plan := Compose("balance?", matchResult(0.7))

	require.Equal(t, match.ConfidenceHigh, plan.Tier)
	assert.NotContains(t, plan.FAQContext, "How do I check my balance?")
}

// A score produces the same plan whether lexical or semantic matching
// supplied it.
func TestComposeMatcherParity(t *testing.T) {
	for _, score := range []float64{0.85, 0.7, 0.5, 0.2} {
		lexical := matchResult(score)
		semantic := matchResult(score)
		semantic.MatchType = match.MatchTypeSemantic

		assert.Equal(t, Compose("q", lexical), Compose("q", semantic))
	}
}

func TestComposeNoMatch(t *testing.T) {
	plan := Compose("anything", match.NoMatch())

	assert.Equal(t, match.ConfidenceNone, plan.Tier)
	assert.False(t, plan.SkipAI)
	assert.Empty(t, plan.FAQContext)
	assert.Empty(t, plan.DirectResponse)
}
