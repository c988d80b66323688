package match

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/convodesk/support-engine/internal/embedding"
	"github.com/convodesk/support-engine/internal/faq"
)

// SearchOptions configures a semantic search.
type SearchOptions struct {
	Threshold    float64
	Limit        int
	ReturnScores bool
}

// Scored pairs a record with its cosine similarity.
type Scored struct {
	Record     faq.Record
	Similarity float64
}

// SearchResult is the outcome of a semantic search.
type SearchResult struct {
	Success bool
	Results []Scored
	Err     error
}

// SemanticMatcher ranks FAQ records by embedding cosine similarity.
type SemanticMatcher struct {
	embedder  embedding.Embedder
	index     VectorIndex
	logger    zerolog.Logger
	threshold float64
	limit     int
	timeout   time.Duration
}

// SemanticConfig holds semantic matcher settings.
type SemanticConfig struct {
	Threshold float64
	Limit     int
	// Timeout bounds each embedding call. Embedding is a short
	// interactive call, not a batch job.
	Timeout time.Duration
}

// NewSemanticMatcher creates a semantic matcher over an embedder and a
// vector index.
func NewSemanticMatcher(embedder embedding.Embedder, index VectorIndex, logger zerolog.Logger, cfg SemanticConfig) *SemanticMatcher {
	if cfg.Threshold <= 0 {
		cfg.Threshold = 0.4
	}
	if cfg.Limit <= 0 {
		cfg.Limit = 5
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &SemanticMatcher{
		embedder:  embedder,
		index:     index,
		logger:    logger.With().Str("component", "semantic_matcher").Logger(),
		threshold: cfg.Threshold,
		limit:     cfg.Limit,
		timeout:   cfg.Timeout,
	}
}

// Sync embeds every record's question and upserts it into the index.
// Blank questions are skipped, not errors.
func (m *SemanticMatcher) Sync(ctx context.Context, records []faq.Record) error {
	texts := make([]string, len(records))
	for i, r := range records {
		texts[i] = r.Question
	}

	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	vectors, err := m.embedder.Embed(ctx, texts)
	if err != nil {
		return fmt.Errorf("embed questions: %w", err)
	}

	indexed := 0
	for i, v := range vectors {
		if v == nil {
			continue
		}
		if err := m.index.Upsert(ctx, records[i].ID, v); err != nil {
			return fmt.Errorf("index faq %s: %w", records[i].ID, err)
		}
		indexed++
	}

	m.logger.Debug().Int("indexed", indexed).Int("total", len(records)).Msg("Vector index synced")
	return nil
}

// Search runs an embedding-based similarity query over the snapshot.
// Empty or whitespace-only queries yield an empty successful result
// without touching the embedding provider.
func (m *SemanticMatcher) Search(ctx context.Context, query string, records []faq.Record, opts SearchOptions) SearchResult {
	if strings.TrimSpace(query) == "" {
		return SearchResult{Success: true}
	}
	if opts.Threshold <= 0 {
		opts.Threshold = m.threshold
	}
	if opts.Limit <= 0 {
		opts.Limit = m.limit
	}

	embedCtx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	vector, err := m.embedder.EmbedSingle(embedCtx, query)
	if err != nil {
		return SearchResult{Err: fmt.Errorf("embed query: %w", err)}
	}
	if vector == nil {
		return SearchResult{Success: true}
	}

	hits, err := m.index.Query(ctx, vector, opts.Threshold, opts.Limit)
	if err != nil {
		return SearchResult{Err: fmt.Errorf("query index: %w", err)}
	}

	byID := make(map[string]*faq.Record, len(records))
	for i := range records {
		byID[records[i].ID] = &records[i]
	}

	var results []Scored
	for _, hit := range hits {
		record, ok := byID[hit.ID]
		if !ok {
			// Index lags the store after a delete; skip the orphan.
			continue
		}
		results = append(results, Scored{Record: *record, Similarity: hit.Similarity})
	}

	return SearchResult{Success: true, Results: results}
}

// Match implements Matcher: the best semantic hit as a tiered Result.
func (m *SemanticMatcher) Match(ctx context.Context, query string, records []faq.Record) (Result, error) {
	sr := m.Search(ctx, query, records, SearchOptions{})
	if sr.Err != nil {
		return NoMatch(), sr.Err
	}
	if len(sr.Results) == 0 {
		return NoMatch(), nil
	}

	top := sr.Results[0]
	record := top.Record
	return Result{
		Record:     &record,
		Score:      top.Similarity,
		Confidence: ConfidenceForScore(top.Similarity),
		MatchType:  MatchTypeSemantic,
	}, nil
}
