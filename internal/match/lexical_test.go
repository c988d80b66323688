package match

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/convodesk/support-engine/internal/faq"
)

func testRecord(id, question string) faq.Record {
	return faq.Record{
		ID:       id,
		Question: question,
		Answer:   "An answer.",
		Category: "General",
		Keywords: joinKeywords(question),
	}
}

func joinKeywords(question string) string {
	kws := faq.ExtractKeywords(question)
	out := ""
	for i, kw := range kws {
		if i > 0 {
			out += " "
		}
		out += kw
	}
	return out
}

func TestLexicalMatchTiers(t *testing.T) {
	matcher := NewLexicalMatcher()
	records := []faq.Record{
		testRecord("exact", "How do I check my balance?"),
		testRecord("data", "How do I check my data balance?"),
		testRecord("router", "reset my router"),
	}

	tests := []struct {
		name       string
		query      string
		wantID     string
		wantScore  float64
		wantType   MatchType
		confidence Confidence
	}{
		{
			name:       "exact question match",
			query:      "  HOW do I   check my balance?",
			wantID:     "exact",
			wantScore:  1.0,
			wantType:   MatchTypeExact,
			confidence: ConfidenceVeryHigh,
		},
		{
			name:       "query contained in question",
			query:      "check my data balance",
			wantID:     "data",
			wantScore:  0.9,
			wantType:   MatchTypePhrase,
			confidence: ConfidenceVeryHigh,
		},
		{
			name:       "question contained in query",
			query:      "how can i reset my router please",
			wantID:     "router",
			wantScore:  0.85,
			wantType:   MatchTypePhrase,
			confidence: ConfidenceVeryHigh,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := matcher.Match(context.Background(), tt.query, records)
			require.NoError(t, err)
			require.NotNil(t, result.Record)
			assert.Equal(t, tt.wantID, result.Record.ID)
			assert.InDelta(t, tt.wantScore, result.Score, 1e-9)
			assert.Equal(t, tt.wantType, result.MatchType)
			assert.Equal(t, tt.confidence, result.Confidence)
		})
	}
}

// A fully matched keyword query is capped at 0.8 and then boosted by the
// comprehensive bonus, landing above the cap. This boundary is pinned on
// purpose.
func TestLexicalKeywordBonusExceedsCap(t *testing.T) {
	matcher := NewLexicalMatcher()
	records := []faq.Record{testRecord("slow", "Why is my internet so slow?")}

	result, err := matcher.Match(context.Background(), "internet slow", records)
	require.NoError(t, err)
	require.NotNil(t, result.Record)

	assert.Equal(t, MatchTypeKeyword, result.MatchType)
	assert.InDelta(t, 0.8*1.15, result.Score, 1e-9)
	assert.Equal(t, ConfidenceVeryHigh, result.Confidence)
}

func TestLexicalKeywordPartialMatch(t *testing.T) {
	matcher := NewLexicalMatcher()
	records := []faq.Record{testRecord("plan", "How do I change my plan?")}

	// Only "plan" matches; 2.0 of a possible 6.0, no comprehensive bonus.
	result, err := matcher.Match(context.Background(), "upgrade plan pricing", records)
	require.NoError(t, err)
	require.NotNil(t, result.Record)

	assert.Equal(t, MatchTypeKeyword, result.MatchType)
	assert.InDelta(t, 2.0/6.0, result.Score, 1e-9)
	assert.Equal(t, ConfidenceLow, result.Confidence)
}

func TestLexicalKeywordSubstringWeight(t *testing.T) {
	matcher := NewLexicalMatcher()
	records := []faq.Record{testRecord("router", "Why does my router disconnect?")}

	// "routers" matches "router" as a substring: 1.5 of 2.0, then the
	// comprehensive bonus.
	result, err := matcher.Match(context.Background(), "routers", records)
	require.NoError(t, err)
	require.NotNil(t, result.Record)

	assert.InDelta(t, 0.75*1.15, result.Score, 1e-9)
}

func TestLexicalStoredKeywordWeight(t *testing.T) {
	matcher := NewLexicalMatcher()
	records := []faq.Record{{
		ID:       "topup",
		Question: "How do I top up?",
		Answer:   "Open the app and choose top up.",
		Keywords: "recharge topup credit",
	}}

	// "recharge" only appears in the stored keyword field: 1.0 of 2.0,
	// then the comprehensive bonus.
	result, err := matcher.Match(context.Background(), "recharge", records)
	require.NoError(t, err)
	require.NotNil(t, result.Record)

	assert.InDelta(t, 0.5*1.15, result.Score, 1e-9)
	assert.Equal(t, ConfidenceMedium, result.Confidence)
}

func TestLexicalNoMatch(t *testing.T) {
	matcher := NewLexicalMatcher()
	records := []faq.Record{testRecord("billing", "How do I pay my bill?")}

	tests := []struct {
		name  string
		query string
	}{
		{name: "no keyword overlap", query: "zebra migration patterns"},
		{name: "stop words only", query: "the and for"},
		{name: "empty query", query: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := matcher.Match(context.Background(), tt.query, records)
			require.NoError(t, err)
			assert.Nil(t, result.Record)
			assert.Zero(t, result.Score)
			assert.Equal(t, ConfidenceNone, result.Confidence)
		})
	}
}

func TestLexicalTieKeepsFirstRecord(t *testing.T) {
	matcher := NewLexicalMatcher()
	records := []faq.Record{
		testRecord("first", "Billing question one?"),
		testRecord("second", "Billing question two?"),
	}

	result, err := matcher.Match(context.Background(), "billing", records)
	require.NoError(t, err)
	require.NotNil(t, result.Record)
	assert.Equal(t, "first", result.Record.ID)
}

func TestLexicalEmptyCollection(t *testing.T) {
	matcher := NewLexicalMatcher()

	result, err := matcher.Match(context.Background(), "anything at all", nil)
	require.NoError(t, err)
	assert.Nil(t, result.Record)
	assert.Equal(t, ConfidenceNone, result.Confidence)
}
