package chat

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/convodesk/support-engine/internal/cache"
)

func TestDeduperClaim(t *testing.T) {
	deduper := NewDeduper(cache.NewMemoryClient(100), 0)
	ctx := context.Background()

	require.NoError(t, deduper.Claim(ctx, "msg-1"))
	assert.ErrorIs(t, deduper.Claim(ctx, "msg-1"), ErrDuplicateRequest)
	require.NoError(t, deduper.Claim(ctx, "msg-2"))
}

func TestDeduperClaimConcurrent(t *testing.T) {
	deduper := NewDeduper(cache.NewMemoryClient(100), 0)
	ctx := context.Background()

	const workers = 16
	var wg sync.WaitGroup
	results := make(chan error, workers)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results <- deduper.Claim(ctx, "contested")
		}()
	}
	wg.Wait()
	close(results)

	won := 0
	for err := range results {
		if err == nil {
			won++
		} else {
			assert.ErrorIs(t, err, ErrDuplicateRequest)
		}
	}
	assert.Equal(t, 1, won, "exactly one claim must win")
}

func TestDeduperTTLExpiry(t *testing.T) {
	deduper := NewDeduper(cache.NewMemoryClient(100), 20*time.Millisecond)
	ctx := context.Background()

	require.NoError(t, deduper.Claim(ctx, "msg-1"))
	assert.ErrorIs(t, deduper.Claim(ctx, "msg-1"), ErrDuplicateRequest)

	time.Sleep(30 * time.Millisecond)
	assert.NoError(t, deduper.Claim(ctx, "msg-1"), "expired ids can be claimed again")
}
