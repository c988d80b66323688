package faq

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractKeywords(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{
			name:     "lowercases and strips punctuation",
			input:    "How do I check my DATA balance?!",
			expected: []string{"how", "check", "data", "balance"},
		},
		{
			name:     "drops stop words and short tokens",
			input:    "what is the best plan for me",
			expected: []string{"what", "best", "plan"},
		},
		{
			name:     "preserves insertion order and dedupes",
			input:    "roaming charges roaming abroad",
			expected: []string{"roaming", "charges", "abroad"},
		},
		{
			name:     "empty input",
			input:    "",
			expected: nil,
		},
		{
			name:     "all stop words",
			input:    "is it the a an",
			expected: nil,
		},
		{
			name:     "keeps digits and underscores",
			input:    "activate my 4g_lte sim",
			expected: []string{"activate", "4g_lte", "sim"},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, ExtractKeywords(tc.input))
		})
	}
}

func TestExtractKeywords_Deterministic(t *testing.T) {
	input := "Why is my internet connection so slow today?"
	first := ExtractKeywords(input)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, ExtractKeywords(input))
	}
}
