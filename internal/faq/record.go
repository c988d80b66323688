// Package faq provides the FAQ knowledge base: records, keyword
// extraction, durable storage, and CSV import.
package faq

import (
	"errors"
	"strings"
	"time"
)

// Common errors.
var (
	ErrValidation = errors.New("validation failed")
	ErrNotFound   = errors.New("record not found")
	ErrBadFormat  = errors.New("malformed import input")
)

// DefaultCategory is assigned when a record is created without a category.
const DefaultCategory = "General"

// Record is a stored FAQ entry. Keywords are always derived from the
// question on create and update, never supplied by callers.
type Record struct {
	ID        string    `json:"id"`
	Question  string    `json:"question"`
	Answer    string    `json:"answer"`
	Category  string    `json:"category"`
	Keywords  string    `json:"keywords"`
	CreatedAt time.Time `json:"createdAt"`
}

// CategoryCount holds a category name with its record count.
type CategoryCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// QA is a question/answer pair returned by category listings.
type QA struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// deriveKeywords produces the stored keyword field for a question.
func deriveKeywords(question string) string {
	return strings.Join(ExtractKeywords(question), " ")
}
