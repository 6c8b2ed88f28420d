package ezmanagewebhook

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/forkandfield/catersync/pkg/redis"
)

// IdempotencyGuard short-circuits redelivered webhook events. The fingerprint
// is entity id plus occurred_at, so a re-sent event with a new occurred_at
// still reaches the orchestrator (which de-dups on data, not delivery).
type IdempotencyGuard struct {
	store redis.IdempotencyStore
	ttl   time.Duration
	scope string
}

func NewIdempotencyGuard(store redis.IdempotencyStore, ttl time.Duration, scope string) (*IdempotencyGuard, error) {
	if store == nil {
		return nil, errors.New("idempotency store is required")
	}
	if ttl < 0 {
		return nil, errors.New("ttl must be non-negative")
	}
	if scope == "" {
		return nil, errors.New("scope is required")
	}
	return &IdempotencyGuard{
		store: store,
		ttl:   ttl,
		scope: scope,
	}, nil
}

// Fingerprint derives the idempotency key for one delivery.
func Fingerprint(entityID, occurredAt string) string {
	return fmt.Sprintf("%s:%s", entityID, occurredAt)
}

// CheckAndMark returns true when this delivery was already seen.
func (g *IdempotencyGuard) CheckAndMark(ctx context.Context, fingerprint string) (bool, error) {
	if fingerprint == "" {
		return false, errors.New("fingerprint is required")
	}
	key := g.store.IdempotencyKey(g.scope, fingerprint)
	set, err := g.store.SetNX(ctx, key, "1", g.ttl)
	if err != nil {
		return false, fmt.Errorf("set idempotency key: %w", err)
	}
	return !set, nil
}

// Release clears the mark so a failed delivery can be retried by the sender.
func (g *IdempotencyGuard) Release(ctx context.Context, fingerprint string) error {
	if fingerprint == "" {
		return errors.New("fingerprint is required")
	}
	key := g.store.IdempotencyKey(g.scope, fingerprint)
	return g.store.Del(ctx, key)
}
