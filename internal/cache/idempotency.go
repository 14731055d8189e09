package cache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"paylinkBack/internal/models"
)

const (
	// reservePlaceholder marks a key claimed by an in-flight request. The
	// short TTL prevents a crashed winner from blocking the key forever.
	reservePlaceholder = "__reserved__"
	reserveTTL         = 30 * time.Second

	// ResultTTL bounds how long a finished creation result is replayed.
	ResultTTL = 5 * time.Minute

	waitInterval = 50 * time.Millisecond
	waitBudget   = 2 * time.Second
)

// IdempotencyStore maps client-supplied idempotency keys to the serialized
// result of the first creation request that carried them.
type IdempotencyStore struct {
	rdb *redis.Client
}

func NewIdempotencyStore(rdb *redis.Client) *IdempotencyStore {
	return &IdempotencyStore{rdb: rdb}
}

func idempotencyKey(key string) string {
	return "idempotency:" + key
}

// Reserve atomically claims the key for the caller or returns the result
// already produced under it.
//
// Returns (nil, true, nil) when the caller won the reservation and must
// produce the result. Returns (result, false, nil) when a previous request
// already published one. A caller that loses the race to an in-flight
// reservation waits briefly for the winner's result; if none appears within
// the budget, models.ErrRequestInProgress is returned.
func (s *IdempotencyStore) Reserve(ctx context.Context, key string) ([]byte, bool, error) {
	k := idempotencyKey(key)

	set, err := s.rdb.SetNX(ctx, k, reservePlaceholder, reserveTTL).Result()
	if err != nil {
		return nil, false, err
	}
	if set {
		return nil, true, nil
	}

	deadline := time.Now().Add(waitBudget)
	for {
		val, err := s.rdb.Get(ctx, k).Result()
		if errors.Is(err, redis.Nil) {
			// winner released the key without a result; claim it
			set, err := s.rdb.SetNX(ctx, k, reservePlaceholder, reserveTTL).Result()
			if err != nil {
				return nil, false, err
			}
			if set {
				return nil, true, nil
			}
		} else if err != nil {
			return nil, false, err
		} else if val != reservePlaceholder {
			return []byte(val), false, nil
		}

		if time.Now().After(deadline) {
			return nil, false, models.ErrRequestInProgress
		}
		select {
		case <-ctx.Done():
			return nil, false, ctx.Err()
		case <-time.After(waitInterval):
		}
	}
}

// StoreResult publishes the final result under the key, replacing the
// reservation placeholder.
func (s *IdempotencyStore) StoreResult(ctx context.Context, key string, result []byte) error {
	return s.rdb.Set(ctx, idempotencyKey(key), result, ResultTTL).Err()
}

// Release drops a reservation whose request failed, so the key can be
// retried immediately.
func (s *IdempotencyStore) Release(ctx context.Context, key string) error {
	return s.rdb.Del(ctx, idempotencyKey(key)).Err()
}
