package faq

import (
	"strings"
	"unicode"
)

// stopWords are filtered out during keyword extraction. Articles,
// pronouns, auxiliary verbs, and common prepositions and conjunctions.
var stopWords = map[string]struct{}{
	"the": {}, "a": {}, "an": {}, "and": {}, "or": {}, "but": {},
	"in": {}, "on": {}, "at": {}, "to": {}, "for": {}, "of": {},
	"with": {}, "by": {}, "from": {}, "about": {},
	"is": {}, "are": {}, "was": {}, "were": {}, "be": {}, "been": {},
	"have": {}, "has": {}, "had": {}, "do": {}, "does": {}, "did": {},
	"will": {}, "would": {}, "could": {}, "should": {}, "can": {}, "may": {},
	"i": {}, "you": {}, "he": {}, "she": {}, "it": {}, "we": {}, "they": {},
	"this": {}, "that": {}, "these": {}, "those": {},
}

// ExtractKeywords normalizes text into a stop-word-filtered keyword list.
// It lowercases, strips everything that is not a word character or
// whitespace, splits on whitespace, drops stop words and tokens of
// length <= 2, and dedupes while preserving insertion order. A pure
// function: identical input always yields identical output.
func ExtractKeywords(text string) []string {
	lowered := strings.ToLower(text)

	var b strings.Builder
	b.Grow(len(lowered))
	for _, r := range lowered {
		switch {
		case r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		case unicode.IsSpace(r):
			b.WriteRune(r)
		}
	}

	var keywords []string
	seen := make(map[string]struct{})
	for _, token := range strings.Fields(b.String()) {
		if len(token) <= 2 {
			continue
		}
		if _, stop := stopWords[token]; stop {
			continue
		}
		if _, dup := seen[token]; dup {
			continue
		}
		seen[token] = struct{}{}
		keywords = append(keywords, token)
	}
	return keywords
}
