package conversation

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/convodesk/support-engine/internal/cache"
)

func newTestBuffer(cfg BufferConfig) *Buffer {
	return NewBuffer(cache.NewMemoryClient(100), zerolog.Nop(), cfg)
}

func TestBufferAppendAndMessages(t *testing.T) {
	buffer := newTestBuffer(BufferConfig{})
	ctx := context.Background()
	id := lockIdentity()

	messages, err := buffer.Messages(ctx, id)
	require.NoError(t, err)
	assert.Empty(t, messages, "a fresh conversation has no history")

	require.NoError(t, buffer.Append(ctx, id,
		Message{Role: "user", Content: "why is my bill so high"},
		Message{Role: "assistant", Content: "Let me check that for you."},
	))

	messages, err = buffer.Messages(ctx, id)
	require.NoError(t, err)
	require.Len(t, messages, 2)
	assert.Equal(t, "user", messages[0].Role)
	assert.Equal(t, "why is my bill so high", messages[0].Content)
	assert.Equal(t, "assistant", messages[1].Role)
}

func TestBufferTrimsToMaxTurns(t *testing.T) {
	buffer := newTestBuffer(BufferConfig{MaxTurns: 4})
	ctx := context.Background()
	id := lockIdentity()

	for i := 0; i < 6; i++ {
		require.NoError(t, buffer.Append(ctx, id, Message{
			Role:    "user",
			Content: fmt.Sprintf("turn %d", i),
		}))
	}

	messages, err := buffer.Messages(ctx, id)
	require.NoError(t, err)
	require.Len(t, messages, 4)
	assert.Equal(t, "turn 2", messages[0].Content)
	assert.Equal(t, "turn 5", messages[3].Content)
}

func TestBufferClear(t *testing.T) {
	buffer := newTestBuffer(BufferConfig{})
	ctx := context.Background()
	id := lockIdentity()

	require.NoError(t, buffer.Append(ctx, id, Message{Role: "user", Content: "hello there"}))
	require.NoError(t, buffer.Clear(ctx, id))

	messages, err := buffer.Messages(ctx, id)
	require.NoError(t, err)
	assert.Empty(t, messages)
}

func TestBufferTTLExpiry(t *testing.T) {
	buffer := newTestBuffer(BufferConfig{TTL: 20 * time.Millisecond})
	ctx := context.Background()
	id := lockIdentity()

	require.NoError(t, buffer.Append(ctx, id, Message{Role: "user", Content: "hello there"}))
	time.Sleep(30 * time.Millisecond)

	messages, err := buffer.Messages(ctx, id)
	require.NoError(t, err)
	assert.Empty(t, messages, "expired history reads as empty")
}

func TestBufferIsolation(t *testing.T) {
	buffer := newTestBuffer(BufferConfig{})
	ctx := context.Background()

	first := lockIdentity()
	second := lockIdentity()
	second.UserID = "user-2"

	require.NoError(t, buffer.Append(ctx, first, Message{Role: "user", Content: "mine"}))

	messages, err := buffer.Messages(ctx, second)
	require.NoError(t, err)
	assert.Empty(t, messages)
}
