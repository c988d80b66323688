// Package chat orchestrates one inbound message through dedup, the
// conversation lock, guardrails, FAQ matching, response tiering, and
// the generative call.
package chat

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/convodesk/support-engine/internal/cache"
)

// ErrDuplicateRequest indicates a replay of a known message id.
var ErrDuplicateRequest = errors.New("duplicate request")

// DefaultDedupTTL is how long a message id stays known.
const DefaultDedupTTL = 5 * time.Minute

// Deduper rejects replays of recently seen message ids. The check and
// the record write are one atomic SetNX so two concurrent identical
// requests can never both proceed.
type Deduper struct {
	cache cache.Client
	ttl   time.Duration
}

// NewDeduper creates a deduper over the shared cache.
func NewDeduper(c cache.Client, ttl time.Duration) *Deduper {
	if ttl <= 0 {
		ttl = DefaultDedupTTL
	}
	return &Deduper{cache: c, ttl: ttl}
}

// Claim records the message id, failing with ErrDuplicateRequest if it
// was already claimed within the TTL.
func (d *Deduper) Claim(ctx context.Context, messageID string) error {
	ok, err := d.cache.SetNX(ctx, cache.Key("dedup", messageID), []byte("1"), d.ttl)
	if err != nil {
		return fmt.Errorf("dedup check: %w", err)
	}
	if !ok {
		return fmt.Errorf("%w: message %s", ErrDuplicateRequest, messageID)
	}
	return nil
}
