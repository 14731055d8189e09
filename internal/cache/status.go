package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"paylinkBack/internal/models"
)

const (
	// StatusReadTTL bounds staleness for polling clients while a payment
	// is still in flight.
	StatusReadTTL = time.Minute
	// StatusFinalTTL applies once a payment is terminal and can no longer
	// change.
	StatusFinalTTL = 15 * time.Minute
)

// PaymentCache holds denormalized payment snapshots for polling clients.
type PaymentCache struct {
	rdb *redis.Client
}

func NewPaymentCache(rdb *redis.Client) *PaymentCache {
	return &PaymentCache{rdb: rdb}
}

func statusKey(id string) string {
	return "payment_status:" + id
}

func (c *PaymentCache) Get(ctx context.Context, id string) (models.Payment, bool, error) {
	val, err := c.rdb.Get(ctx, statusKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return models.Payment{}, false, nil
	}
	if err != nil {
		return models.Payment{}, false, err
	}
	var payment models.Payment
	if err := json.Unmarshal(val, &payment); err != nil {
		return models.Payment{}, false, err
	}
	return payment, true, nil
}

func (c *PaymentCache) Set(ctx context.Context, payment models.Payment, ttl time.Duration) error {
	val, err := json.Marshal(payment)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, statusKey(payment.ID), val, ttl).Err()
}
