package match

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/convodesk/support-engine/internal/faq"
)

// stubEmbedder maps known texts to fixed vectors so similarities are
// fully deterministic.
type stubEmbedder struct {
	vectors map[string][]float32
	err     error
	calls   int
}

func (e *stubEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	e.calls++
	if e.err != nil {
		return nil, e.err
	}
	out := make([][]float32, len(texts))
	for i, text := range texts {
		if strings.TrimSpace(text) == "" {
			continue
		}
		out[i] = e.vectors[text]
	}
	return out, nil
}

func (e *stubEmbedder) EmbedSingle(ctx context.Context, text string) ([]float32, error) {
	vectors, err := e.Embed(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

func (e *stubEmbedder) Model() string  { return "stub" }
func (e *stubEmbedder) Dimension() int { return 3 }

func newSemanticFixture(embedder *stubEmbedder) (*SemanticMatcher, []faq.Record) {
	records := []faq.Record{
		{ID: "billing", Question: "How do I pay my bill?", Answer: "Use the payments page."},
		{ID: "network", Question: "Why is my internet slow?", Answer: "Restart your router."},
	}
	index := NewMemoryIndex(3)
	matcher := NewSemanticMatcher(embedder, index, zerolog.Nop(), SemanticConfig{})
	return matcher, records
}

func TestSemanticMatch(t *testing.T) {
	embedder := &stubEmbedder{vectors: map[string][]float32{
		"How do I pay my bill?":     {1, 0, 0},
		"Why is my internet slow?":  {0, 1, 0},
		"my connection is sluggish": {0.1, 0.9, 0},
	}}
	matcher, records := newSemanticFixture(embedder)
	ctx := context.Background()

	require.NoError(t, matcher.Sync(ctx, records))

	result, err := matcher.Match(ctx, "my connection is sluggish", records)
	require.NoError(t, err)
	require.NotNil(t, result.Record)

	assert.Equal(t, "network", result.Record.ID)
	assert.Equal(t, MatchTypeSemantic, result.MatchType)
	assert.Greater(t, result.Score, 0.9)
	assert.Equal(t, ConfidenceVeryHigh, result.Confidence)
}

func TestSemanticSearchBlankQuery(t *testing.T) {
	embedder := &stubEmbedder{vectors: map[string][]float32{}}
	matcher, records := newSemanticFixture(embedder)

	sr := matcher.Search(context.Background(), "   ", records, SearchOptions{})
	assert.True(t, sr.Success)
	assert.Empty(t, sr.Results)
	assert.Zero(t, embedder.calls, "blank query must not reach the provider")
}

func TestSemanticSearchSkipsOrphanedHits(t *testing.T) {
	embedder := &stubEmbedder{vectors: map[string][]float32{
		"How do I pay my bill?":    {1, 0, 0},
		"Why is my internet slow?": {0, 1, 0},
		"pay bill":                 {1, 0, 0},
	}}
	matcher, records := newSemanticFixture(embedder)
	ctx := context.Background()

	require.NoError(t, matcher.Sync(ctx, records))

	// Drop the billing record from the snapshot; its vector is still
	// indexed and must be ignored.
	sr := matcher.Search(ctx, "pay bill", records[1:], SearchOptions{})
	require.True(t, sr.Success)
	for _, scored := range sr.Results {
		assert.NotEqual(t, "billing", scored.Record.ID)
	}
}

func TestSemanticMatchProviderError(t *testing.T) {
	embedder := &stubEmbedder{err: errors.New("provider down")}
	matcher, records := newSemanticFixture(embedder)

	_, err := matcher.Match(context.Background(), "anything", records)
	assert.Error(t, err)
}

func TestFallbackMatcherDegradesToLexical(t *testing.T) {
	records := []faq.Record{{
		ID:       "billing",
		Question: "How do I pay my bill?",
		Answer:   "Use the payments page.",
		Keywords: "pay bill",
	}}

	t.Run("primary error", func(t *testing.T) {
		embedder := &stubEmbedder{err: errors.New("provider down")}
		semantic, _ := newSemanticFixture(embedder)
		matcher := NewMatcher(semantic, NewLexicalMatcher(), zerolog.Nop())

		result, err := matcher.Match(context.Background(), "How do I pay my bill?", records)
		require.NoError(t, err)
		require.NotNil(t, result.Record)
		assert.Equal(t, MatchTypeExact, result.MatchType)
	})

	t.Run("primary no match", func(t *testing.T) {
		embedder := &stubEmbedder{vectors: map[string][]float32{
			"How do I pay my bill?": {0, 0, 1},
		}}
		semantic, _ := newSemanticFixture(embedder)
		matcher := NewMatcher(semantic, NewLexicalMatcher(), zerolog.Nop())

		// Nothing indexed, so the semantic side finds nothing.
		result, err := matcher.Match(context.Background(), "How do I pay my bill?", records)
		require.NoError(t, err)
		require.NotNil(t, result.Record)
		assert.Equal(t, MatchTypeExact, result.MatchType)
	})

	t.Run("nil semantic uses lexical directly", func(t *testing.T) {
		matcher := NewMatcher(nil, NewLexicalMatcher(), zerolog.Nop())

		result, err := matcher.Match(context.Background(), "How do I pay my bill?", records)
		require.NoError(t, err)
		require.NotNil(t, result.Record)
		assert.Equal(t, MatchTypeExact, result.MatchType)
	})
}
