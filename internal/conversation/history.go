package conversation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/convodesk/support-engine/internal/cache"
)

// Message is one conversation turn.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Buffer is the cache-backed conversation history. Appends are
// best-effort on the request path: a failed write is logged, never
// fatal to the turn that produced it.
type Buffer struct {
	cache    cache.Client
	logger   zerolog.Logger
	ttl      time.Duration
	maxTurns int
}

// BufferConfig holds history buffer settings.
type BufferConfig struct {
	TTL      time.Duration
	MaxTurns int
}

// NewBuffer creates a history buffer over the shared cache.
func NewBuffer(c cache.Client, logger zerolog.Logger, cfg BufferConfig) *Buffer {
	if cfg.TTL <= 0 {
		cfg.TTL = 24 * time.Hour
	}
	if cfg.MaxTurns <= 0 {
		cfg.MaxTurns = 20
	}
	return &Buffer{
		cache:    c,
		logger:   logger.With().Str("component", "history").Logger(),
		ttl:      cfg.TTL,
		maxTurns: cfg.MaxTurns,
	}
}

// Messages returns the buffered turns for a conversation, oldest first.
func (b *Buffer) Messages(ctx context.Context, id Identity) ([]Message, error) {
	data, err := b.cache.Get(ctx, id.HistoryKey())
	if errors.Is(err, cache.ErrCacheMiss) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load history: %w", err)
	}

	var messages []Message
	if err := json.Unmarshal(data, &messages); err != nil {
		return nil, fmt.Errorf("decode history: %w", err)
	}
	return messages, nil
}

// Append adds turns to the buffer, trimming to the newest maxTurns.
// History entries append in request order because the conversation lock
// serializes turns.
func (b *Buffer) Append(ctx context.Context, id Identity, turns ...Message) error {
	messages, err := b.Messages(ctx, id)
	if err != nil {
		b.logger.Warn().Err(err).Msg("History read failed, starting fresh")
		messages = nil
	}

	messages = append(messages, turns...)
	if len(messages) > b.maxTurns {
		messages = messages[len(messages)-b.maxTurns:]
	}

	data, err := json.Marshal(messages)
	if err != nil {
		return fmt.Errorf("encode history: %w", err)
	}
	if err := b.cache.Set(ctx, id.HistoryKey(), data, b.ttl); err != nil {
		return fmt.Errorf("store history: %w", err)
	}
	return nil
}

// Clear empties the buffer for a conversation.
func (b *Buffer) Clear(ctx context.Context, id Identity) error {
	return b.cache.Delete(ctx, id.HistoryKey())
}
