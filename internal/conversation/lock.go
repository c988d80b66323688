package conversation

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"github.com/convodesk/support-engine/internal/cache"
)

// ErrLockTimeout indicates the lock could not be acquired before the
// context deadline.
var ErrLockTimeout = errors.New("conversation lock timeout")

// DefaultLockTTL bounds how long a crashed holder can block a
// conversation. On expiry the lock is treated as released.
const DefaultLockTTL = 60 * time.Second

// Lock serializes turns within one conversation across workers. At most
// one in-flight generative call per conversation. Acquisition blocks
// with timeout rather than failing fast; the TTL guarantees forward
// progress if a holder crashes mid-call.
type Lock struct {
	cache cache.Client
	ttl   time.Duration
}

// NewLock creates a conversation lock over the shared cache.
func NewLock(c cache.Client, ttl time.Duration) *Lock {
	if ttl <= 0 {
		ttl = DefaultLockTTL
	}
	return &Lock{cache: c, ttl: ttl}
}

// Acquire blocks until the conversation lock is held or ctx expires.
// The returned release func is best-effort: the TTL is the real
// guarantee against deadlock. Release is token-guarded, so a holder
// that outlived the TTL cannot delete a successor's lock; the
// check-then-delete window is one cache round trip.
func (l *Lock) Acquire(ctx context.Context, id Identity) (release func(), err error) {
	key := id.LockKey()
	token := []byte(uuid.NewString())

	backoff := 50 * time.Millisecond
	for {
		ok, err := l.cache.SetNX(ctx, key, token, l.ttl)
		if err != nil {
			return nil, fmt.Errorf("acquire lock: %w", err)
		}
		if ok {
			return func() {
				// Release must not inherit a cancelled request context.
				releaseCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				current, err := l.cache.Get(releaseCtx, key)
				if err != nil || !bytes.Equal(current, token) {
					return
				}
				_ = l.cache.Delete(releaseCtx, key)
			}, nil
		}

		// Jittered poll until the holder releases or the TTL expires.
		wait := backoff + time.Duration(rand.Int63n(int64(backoff/2)))
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: %v", ErrLockTimeout, ctx.Err())
		case <-time.After(wait):
		}
		if backoff < time.Second {
			backoff *= 2
		}
	}
}
