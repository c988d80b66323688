// Package match scores user queries against the FAQ corpus. The lexical
// matcher ranks with tiered exact/phrase/keyword scoring; the semantic
// matcher ranks by embedding cosine similarity and degrades gracefully
// to the lexical matcher when embeddings are unavailable.
package match

import "github.com/convodesk/support-engine/internal/faq"

// Confidence is the tier derived from a match score.
type Confidence string

const (
	ConfidenceNone     Confidence = "none"
	ConfidenceLow      Confidence = "low"
	ConfidenceMedium   Confidence = "medium"
	ConfidenceHigh     Confidence = "high"
	ConfidenceVeryHigh Confidence = "very_high"
)

// MatchType identifies the scoring tier that produced a match.
type MatchType string

const (
	MatchTypeKeyword  MatchType = "keyword"
	MatchTypePhrase   MatchType = "phrase"
	MatchTypeExact    MatchType = "exact"
	MatchTypeSemantic MatchType = "semantic"
)

// Result is the outcome of matching a query against the FAQ corpus.
// Derived per request, never stored.
type Result struct {
	Record     *faq.Record
	Score      float64
	Confidence Confidence
	MatchType  MatchType
}

// NoMatch is the zero result returned when nothing scores above the floor.
func NoMatch() Result {
	return Result{Confidence: ConfidenceNone}
}

// ConfidenceForScore maps a score to its confidence tier. The 0.4, 0.6,
// and 0.8 band boundaries are shared by every matcher so tiering behaves
// identically regardless of which matcher supplied the score.
func ConfidenceForScore(score float64) Confidence {
	switch {
	case score >= 0.8:
		return ConfidenceVeryHigh
	case score >= 0.6:
		return ConfidenceHigh
	case score >= 0.4:
		return ConfidenceMedium
	default:
		return ConfidenceLow
	}
}
