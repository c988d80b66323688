package match

import (
	"context"
	"errors"
	"math"
	"sort"
	"sync"
)

// ErrDimensionMismatch indicates a query vector of the wrong dimension.
var ErrDimensionMismatch = errors.New("vector dimension mismatch")

// IndexMatch is a vector index hit, similarity in [0, 1].
type IndexMatch struct {
	ID         string
	Similarity float64
}

// VectorIndex stores FAQ question embeddings and answers top-N cosine
// similarity queries.
type VectorIndex interface {
	// Query returns up to limit entries with similarity >= threshold,
	// ordered by descending similarity.
	Query(ctx context.Context, vector []float32, threshold float64, limit int) ([]IndexMatch, error)
	// Upsert inserts or replaces the vector for an id.
	Upsert(ctx context.Context, id string, vector []float32) error
	// Delete removes ids from the index.
	Delete(ctx context.Context, ids ...string) error
	// Count returns the number of indexed vectors.
	Count(ctx context.Context) (int, error)
}

// MemoryIndex is a brute-force in-memory cosine index. Sufficient for
// FAQ corpora, which stay in the hundreds of entries.
type MemoryIndex struct {
	mu        sync.RWMutex
	dimension int
	vectors   map[string][]float32
}

// NewMemoryIndex creates an empty index for vectors of the given dimension.
func NewMemoryIndex(dimension int) *MemoryIndex {
	if dimension <= 0 {
		dimension = 768
	}
	return &MemoryIndex{
		dimension: dimension,
		vectors:   make(map[string][]float32),
	}
}

// Query scans all vectors and returns the top matches.
func (x *MemoryIndex) Query(ctx context.Context, vector []float32, threshold float64, limit int) ([]IndexMatch, error) {
	x.mu.RLock()
	defer x.mu.RUnlock()

	if len(x.vectors) == 0 {
		return nil, nil
	}
	if len(vector) != x.dimension {
		return nil, ErrDimensionMismatch
	}

	var matches []IndexMatch
	for id, v := range x.vectors {
		sim := cosineSimilarity(vector, v)
		if sim >= threshold {
			matches = append(matches, IndexMatch{ID: id, Similarity: sim})
		}
	}

	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Similarity != matches[j].Similarity {
			return matches[i].Similarity > matches[j].Similarity
		}
		return matches[i].ID < matches[j].ID
	})

	if limit > 0 && len(matches) > limit {
		matches = matches[:limit]
	}
	return matches, nil
}

// Upsert inserts or replaces the vector for an id.
func (x *MemoryIndex) Upsert(ctx context.Context, id string, vector []float32) error {
	if len(vector) != x.dimension {
		return ErrDimensionMismatch
	}
	x.mu.Lock()
	defer x.mu.Unlock()
	stored := make([]float32, len(vector))
	copy(stored, vector)
	x.vectors[id] = stored
	return nil
}

// Delete removes ids from the index.
func (x *MemoryIndex) Delete(ctx context.Context, ids ...string) error {
	x.mu.Lock()
	defer x.mu.Unlock()
	for _, id := range ids {
		delete(x.vectors, id)
	}
	return nil
}

// Count returns the number of indexed vectors.
func (x *MemoryIndex) Count(ctx context.Context) (int, error) {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return len(x.vectors), nil
}

// cosineSimilarity computes cosine similarity between two equal-length
// vectors, clamped to [0, 1].
func cosineSimilarity(a, b []float32) float64 {
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	sim := dot / (math.Sqrt(normA) * math.Sqrt(normB))
	if sim < 0 {
		return 0
	}
	if sim > 1 {
		return 1
	}
	return sim
}
