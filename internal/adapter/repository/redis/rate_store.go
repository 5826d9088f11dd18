package redis

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
)

const rateSnapshotKey = "walletcore:rates:snapshot"

// RateStore implements usecase.RateStore using Redis. The whole rate table
// is stored as one JSON document so a load never observes a partial refresh.
type RateStore struct {
	client *redis.Client
	key    string
}

// NewRateStore creates a new RateStore.
func NewRateStore(client *redis.Client) *RateStore {
	return &RateStore{
		client: client,
		key:    rateSnapshotKey,
	}
}

// SaveRates stores the rate table snapshot with a TTL.
func (s *RateStore) SaveRates(ctx context.Context, rates map[string]decimal.Decimal, ttl time.Duration) error {
	payload, err := json.Marshal(rates)
	if err != nil {
		return err
	}

	return s.client.Set(ctx, s.key, payload, ttl).Err()
}

// LoadRates returns the stored snapshot, or nil when none exists.
func (s *RateStore) LoadRates(ctx context.Context) (map[string]decimal.Decimal, error) {
	payload, err := s.client.Get(ctx, s.key).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var rates map[string]decimal.Decimal
	if err := json.Unmarshal(payload, &rates); err != nil {
		return nil, err
	}
	return rates, nil
}
