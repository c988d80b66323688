package match

import (
	"context"
	"strings"

	"github.com/convodesk/support-engine/internal/faq"
)

// Scoring constants. These thresholds are behavioral contracts; tests
// pin them.
const (
	exactScore          = 1.0
	phraseContainsQuery = 0.9
	queryContainsPhrase = 0.85
	keywordScoreCap     = 0.8
	minPhraseQueryLen   = 10
	scoreFloor          = 0.2

	weightQuestionExact     = 2.0
	weightQuestionSubstring = 1.5
	weightStoredExact       = 1.0
	weightStoredSubstring   = 0.7
	substringMinLen         = 4

	comprehensiveBonus     = 1.15
	comprehensiveThreshold = 0.8
)

// LexicalMatcher ranks FAQ records with tiered exact, phrase, and
// weighted keyword scoring. Search is a pure function over the record
// snapshot it is given.
type LexicalMatcher struct{}

// NewLexicalMatcher creates a lexical matcher.
func NewLexicalMatcher() *LexicalMatcher {
	return &LexicalMatcher{}
}

// Match scores the query against every record and returns the single
// best match. Ties keep the first-encountered record. A best score
// below 0.2 yields no match.
func (m *LexicalMatcher) Match(ctx context.Context, query string, records []faq.Record) (Result, error) {
	normalizedQuery := normalize(query)
	queryKeywords := faq.ExtractKeywords(query)
	if len(queryKeywords) == 0 {
		return NoMatch(), nil
	}

	best := NoMatch()
	for i := range records {
		score, matchType := scoreRecord(normalizedQuery, queryKeywords, &records[i])
		if score > best.Score {
			best = Result{
				Record:    &records[i],
				Score:     score,
				MatchType: matchType,
			}
		}
	}

	if best.Score < scoreFloor {
		return NoMatch(), nil
	}
	best.Confidence = ConfidenceForScore(best.Score)
	return best, nil
}

// scoreRecord computes the score for one record via the first applicable
// tier: exact, phrase, then weighted keywords.
func scoreRecord(normalizedQuery string, queryKeywords []string, record *faq.Record) (float64, MatchType) {
	normalizedQuestion := normalize(record.Question)

	if normalizedQuery == normalizedQuestion {
		return exactScore, MatchTypeExact
	}

	if len(normalizedQuery) > minPhraseQueryLen {
		if strings.Contains(normalizedQuestion, normalizedQuery) {
			return phraseContainsQuery, MatchTypePhrase
		}
		if strings.Contains(normalizedQuery, normalizedQuestion) {
			return queryContainsPhrase, MatchTypePhrase
		}
	}

	return keywordScore(queryKeywords, record), MatchTypeKeyword
}

// keywordScore weighs each query keyword against the question's keyword
// set first, then the stored keyword field. The first qualifying match
// per query keyword wins; there is no double counting. The raw score is
// capped at 0.8 before the comprehensive-match bonus, so the bonus can
// legitimately push the final score above the cap.
func keywordScore(queryKeywords []string, record *faq.Record) float64 {
	questionKeywords := faq.ExtractKeywords(record.Question)
	storedKeywords := strings.Fields(record.Keywords)

	var weighted float64
	matched := 0
	for _, kw := range queryKeywords {
		w := keywordWeight(kw, questionKeywords, storedKeywords)
		if w > 0 {
			weighted += w
			matched++
		}
	}

	score := weighted / (float64(len(queryKeywords)) * 2.0)
	if score > keywordScoreCap {
		score = keywordScoreCap
	}
	// Bonus applies after the cap: a fully matched long query may score
	// above 0.8. Preserved intentionally; see the boundary-case test.
	if float64(matched) >= comprehensiveThreshold*float64(len(queryKeywords)) {
		score *= comprehensiveBonus
	}
	return score
}

func keywordWeight(kw string, questionKeywords, storedKeywords []string) float64 {
	if containsExact(questionKeywords, kw) {
		return weightQuestionExact
	}
	if len(kw) > substringMinLen && containsSubstring(questionKeywords, kw) {
		return weightQuestionSubstring
	}
	if containsExact(storedKeywords, kw) {
		return weightStoredExact
	}
	if len(kw) > substringMinLen && containsSubstring(storedKeywords, kw) {
		return weightStoredSubstring
	}
	return 0
}

func containsExact(set []string, kw string) bool {
	for _, s := range set {
		if s == kw {
			return true
		}
	}
	return false
}

// containsSubstring matches in either direction: the keyword inside a
// set entry or a set entry inside the keyword.
func containsSubstring(set []string, kw string) bool {
	for _, s := range set {
		if strings.Contains(s, kw) || strings.Contains(kw, s) {
			return true
		}
	}
	return false
}

// normalize lowercases and collapses internal whitespace.
func normalize(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}
