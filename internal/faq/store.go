package faq

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Backend persists the FAQ collection as a whole. Implementations load
// and rewrite the entire ordered sequence; there is no partial update at
// the storage layer.
type Backend interface {
	Load(ctx context.Context) ([]Record, error)
	Save(ctx context.Context, records []Record) error
}

// Store manages FAQ records over a Backend. Writes are read-modify-write
// over the whole collection and serialized by a mutex; reads take a
// fresh snapshot from the backend.
type Store struct {
	mu      sync.Mutex
	backend Backend
	logger  zerolog.Logger
}

// NewStore creates a FAQ store over the given backend.
func NewStore(backend Backend, logger zerolog.Logger) *Store {
	return &Store{
		backend: backend,
		logger:  logger.With().Str("component", "faq_store").Logger(),
	}
}

// Load returns the current collection. It fails soft: a missing or
// corrupt backing resource yields an empty sequence, never an error.
func (s *Store) Load(ctx context.Context) []Record {
	records, err := s.backend.Load(ctx)
	if err != nil {
		s.logger.Warn().Err(err).Msg("Load failed, returning empty collection")
		return []Record{}
	}
	if records == nil {
		records = []Record{}
	}
	return records
}

// Save persists the whole collection.
func (s *Store) Save(ctx context.Context, records []Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.backend.Save(ctx, records)
}

// Add validates, appends, and persists a new record. The id is freshly
// generated and keywords are derived from the question.
func (s *Store) Add(ctx context.Context, question, answer, category string) (*Record, error) {
	question = strings.TrimSpace(question)
	answer = strings.TrimSpace(answer)
	if question == "" || answer == "" {
		return nil, fmt.Errorf("%w: question and answer are required", ErrValidation)
	}

	record := newRecord(question, answer, category)

	s.mu.Lock()
	defer s.mu.Unlock()

	records := s.Load(ctx)
	records = append(records, record)
	if err := s.backend.Save(ctx, records); err != nil {
		return nil, fmt.Errorf("persist collection: %w", err)
	}

	s.logger.Info().Str("faq_id", record.ID).Str("category", record.Category).Msg("FAQ added")
	return &record, nil
}

// Update replaces question, answer, and category of an existing record,
// re-derives its keywords, and preserves created_at.
func (s *Store) Update(ctx context.Context, id, question, answer, category string) (*Record, error) {
	question = strings.TrimSpace(question)
	answer = strings.TrimSpace(answer)
	if question == "" || answer == "" {
		return nil, fmt.Errorf("%w: question and answer are required", ErrValidation)
	}
	if category = strings.TrimSpace(category); category == "" {
		category = DefaultCategory
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	records := s.Load(ctx)
	for i := range records {
		if records[i].ID != id {
			continue
		}
		records[i].Question = question
		records[i].Answer = answer
		records[i].Category = category
		records[i].Keywords = deriveKeywords(question)
		if err := s.backend.Save(ctx, records); err != nil {
			return nil, fmt.Errorf("persist collection: %w", err)
		}
		updated := records[i]
		return &updated, nil
	}
	return nil, fmt.Errorf("%w: faq %s", ErrNotFound, id)
}

// Delete removes a record by id and rewrites the collection. It reports
// whether a record was actually removed.
func (s *Store) Delete(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	records := s.Load(ctx)
	kept := records[:0]
	removed := false
	for _, r := range records {
		if r.ID == id {
			removed = true
			continue
		}
		kept = append(kept, r)
	}
	if !removed {
		return false, nil
	}
	if err := s.backend.Save(ctx, kept); err != nil {
		return false, fmt.Errorf("persist collection: %w", err)
	}
	return true, nil
}

// GetByID retrieves a record by id.
func (s *Store) GetByID(ctx context.Context, id string) (*Record, error) {
	for _, r := range s.Load(ctx) {
		if r.ID == id {
			record := r
			return &record, nil
		}
	}
	return nil, fmt.Errorf("%w: faq %s", ErrNotFound, id)
}

// Count returns the number of stored records.
func (s *Store) Count(ctx context.Context) int {
	return len(s.Load(ctx))
}

// TopCategories returns up to limit categories sorted by descending
// record count. Ties keep first-encountered category order.
func (s *Store) TopCategories(ctx context.Context, limit int) []CategoryCount {
	counts := make(map[string]int)
	var order []string
	for _, r := range s.Load(ctx) {
		if _, seen := counts[r.Category]; !seen {
			order = append(order, r.Category)
		}
		counts[r.Category]++
	}

	result := make([]CategoryCount, 0, len(order))
	for _, name := range order {
		result = append(result, CategoryCount{Name: name, Count: counts[name]})
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Count > result[j].Count
	})

	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result
}

// CategoryQuestions returns up to limit question/answer pairs for a
// category, in storage order.
func (s *Store) CategoryQuestions(ctx context.Context, category string, limit int) []QA {
	var result []QA
	for _, r := range s.Load(ctx) {
		if r.Category != category {
			continue
		}
		result = append(result, QA{Question: r.Question, Answer: r.Answer})
		if limit > 0 && len(result) >= limit {
			break
		}
	}
	return result
}

func newRecord(question, answer, category string) Record {
	if category = strings.TrimSpace(category); category == "" {
		category = DefaultCategory
	}
	return Record{
		ID:        uuid.NewString(),
		Question:  question,
		Answer:    answer,
		Category:  category,
		Keywords:  deriveKeywords(question),
		CreatedAt: time.Now().UTC(),
	}
}
