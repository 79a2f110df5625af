package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/sistema-pedidos/orders-api/internal/api/metrics"
)

// DefaultIdempotencyTTL bounds how long an Idempotency-Key replays its order.
const DefaultIdempotencyTTL = 24 * time.Hour

// IdempotencyStore maps a caller's Idempotency-Key to the order it created.
// Key format: idempotency:order:<owner_id>:<key>
type IdempotencyStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewIdempotencyStore wraps client. A non-positive ttl falls back to
// DefaultIdempotencyTTL.
func NewIdempotencyStore(client *redis.Client, ttl time.Duration) *IdempotencyStore {
	if ttl <= 0 {
		ttl = DefaultIdempotencyTTL
	}
	return &IdempotencyStore{client: client, ttl: ttl}
}

// Lookup returns the order remembered for key, if any.
func (s *IdempotencyStore) Lookup(ctx context.Context, ownerID int64, key string) (int64, bool, error) {
	raw, err := s.client.Get(ctx, s.key(ownerID, key)).Result()
	if errors.Is(err, redis.Nil) {
		metrics.IdempotencyLookupsTotal.WithLabelValues("miss").Inc()
		return 0, false, nil
	}
	if err != nil {
		metrics.IdempotencyLookupsTotal.WithLabelValues("error").Inc()
		return 0, false, fmt.Errorf("idempotency lookup: %w", err)
	}

	orderID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		metrics.IdempotencyLookupsTotal.WithLabelValues("error").Inc()
		return 0, false, fmt.Errorf("idempotency lookup: bad value %q: %w", raw, err)
	}
	metrics.IdempotencyLookupsTotal.WithLabelValues("hit").Inc()
	return orderID, true, nil
}

// Remember stores orderID under key unless the key is already taken, so the
// first order created for a key wins.
func (s *IdempotencyStore) Remember(ctx context.Context, ownerID int64, key string, orderID int64) error {
	if err := s.client.SetNX(ctx, s.key(ownerID, key), strconv.FormatInt(orderID, 10), s.ttl).Err(); err != nil {
		return fmt.Errorf("idempotency remember: %w", err)
	}
	return nil
}

func (s *IdempotencyStore) key(ownerID int64, key string) string {
	return fmt.Sprintf("idempotency:order:%d:%s", ownerID, key)
}
