package match

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/convodesk/support-engine/internal/faq"
)

// Matcher finds the best FAQ match for a query against a record snapshot.
type Matcher interface {
	Match(ctx context.Context, query string, records []faq.Record) (Result, error)
}

// FallbackMatcher prefers a primary matcher and degrades to a fallback
// when the primary errors or finds nothing. The capability chain is
// fixed at construction time.
type FallbackMatcher struct {
	primary  Matcher
	fallback Matcher
	logger   zerolog.Logger
}

// NewMatcher resolves the matcher chain once: semantic preferred when
// available, lexical otherwise. The lexical matcher is always present
// so the system functions without an embedding provider.
func NewMatcher(semantic *SemanticMatcher, lexical *LexicalMatcher, logger zerolog.Logger) Matcher {
	if semantic == nil {
		return lexical
	}
	return &FallbackMatcher{
		primary:  semantic,
		fallback: lexical,
		logger:   logger.With().Str("component", "matcher").Logger(),
	}
}

// Match tries the primary matcher and falls back on error or no match.
func (m *FallbackMatcher) Match(ctx context.Context, query string, records []faq.Record) (Result, error) {
	result, err := m.primary.Match(ctx, query, records)
	if err != nil {
		m.logger.Warn().Err(err).Msg("Primary matcher failed, falling back")
		return m.fallback.Match(ctx, query, records)
	}
	if result.Confidence == ConfidenceNone {
		return m.fallback.Match(ctx, query, records)
	}
	return result, nil
}
