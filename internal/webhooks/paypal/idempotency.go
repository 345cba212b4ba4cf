package paypalwebhook

import (
	"context"
	"time"

	redisstore "github.com/motorclubhq/clubhub-backend/pkg/redis"
)

const idempotencyScope = "paypal:webhook"

// Guard deduplicates webhook deliveries by provider event id. PayPal retries
// aggressively; SetNX lets only the first delivery through.
type Guard struct {
	store redisstore.IdempotencyStore
	ttl   time.Duration
}

// NewGuard builds a guard. A zero ttl falls back to 30 days, past PayPal's
// retry horizon.
func NewGuard(store redisstore.IdempotencyStore, ttl time.Duration) *Guard {
	if ttl <= 0 {
		ttl = 30 * 24 * time.Hour
	}
	return &Guard{store: store, ttl: ttl}
}

// CheckAndMark claims the event id. It returns true when this delivery is
// the first; duplicates get false.
func (g *Guard) CheckAndMark(ctx context.Context, eventID string) (bool, error) {
	if eventID == "" {
		// Events without an id cannot be deduplicated; let them through.
		return true, nil
	}
	key := g.store.IdempotencyKey(idempotencyScope, eventID)
	return g.store.SetNX(ctx, key, time.Now().UTC().Format(time.RFC3339), g.ttl)
}

// Release drops the claim so a failed delivery can be retried by the
// provider.
func (g *Guard) Release(ctx context.Context, eventID string) error {
	if eventID == "" {
		return nil
	}
	return g.store.Del(ctx, g.store.IdempotencyKey(idempotencyScope, eventID))
}
