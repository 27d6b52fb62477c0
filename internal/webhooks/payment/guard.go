package payment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/paclead/splitsettle/pkg/redis"
)

const completionScope = "payment-webhook"

// CompletionGuard remembers stable refs whose processing finished so that
// gateway retries can be acknowledged without touching the database. It is
// an optimization only: the database constraints remain authoritative.
type CompletionGuard struct {
	store redis.IdempotencyStore
	ttl   time.Duration
}

func NewCompletionGuard(store redis.IdempotencyStore, ttl time.Duration) (*CompletionGuard, error) {
	if store == nil {
		return nil, errors.New("idempotency store is required")
	}
	if ttl < 0 {
		return nil, errors.New("ttl must be non-negative")
	}
	return &CompletionGuard{store: store, ttl: ttl}, nil
}

// Completed reports whether stableRef was marked done.
func (g *CompletionGuard) Completed(ctx context.Context, stableRef string) (bool, error) {
	if stableRef == "" {
		return false, errors.New("stable ref is required")
	}
	_, err := g.store.Get(ctx, g.store.IdempotencyKey(completionScope, stableRef))
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("get completion marker: %w", err)
	}
	return true, nil
}

// MarkCompleted records stableRef as done. Call only after every write for
// the event committed.
func (g *CompletionGuard) MarkCompleted(ctx context.Context, stableRef string) error {
	if stableRef == "" {
		return errors.New("stable ref is required")
	}
	key := g.store.IdempotencyKey(completionScope, stableRef)
	if err := g.store.Set(ctx, key, "1", g.ttl); err != nil {
		return fmt.Errorf("set completion marker: %w", err)
	}
	return nil
}
