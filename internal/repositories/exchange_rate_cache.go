package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/sbilibin2017/pf-wallet/internal/logger"
)

// ExchangeRateCacheRepository provides cached exchange rates using Redis
type ExchangeRateCacheRepository struct {
	client *redis.Client
	exp    time.Duration // expiration duration for cached rates
}

// NewExchangeRateCacheRepository creates a new repository instance with optional TTL
func NewExchangeRateCacheRepository(client *redis.Client, expiration time.Duration) *ExchangeRateCacheRepository {
	return &ExchangeRateCacheRepository{
		client: client,
		exp:    expiration,
	}
}

// Get fetches a cached exchange rate between two currencies
func (r *ExchangeRateCacheRepository) Get(ctx context.Context, base, target string) (decimal.Decimal, error) {
	key := fmt.Sprintf("exchange_rate:%s:%s", base, target)

	val, err := r.client.Get(ctx, key).Result()
	if err != nil {
		logger.Log.Infow(
			"key", key,
			"result", val,
			"error", err,
		)
		if err == redis.Nil {
			return decimal.Zero, fmt.Errorf("exchange rate not found in cache for %s->%s", base, target)
		}
		return decimal.Zero, err
	}

	rate, err := decimal.NewFromString(val)
	if err != nil {
		logger.Log.Infow(
			"key", key,
			"value", val,
			"error", err,
		)
		return decimal.Zero, err
	}

	logger.Log.Infow(
		"key", key,
		"value", val,
		"result", rate,
		"error", nil,
	)

	return rate, nil
}

// Set caches a new exchange rate in Redis with expiration
func (r *ExchangeRateCacheRepository) Set(ctx context.Context, base, target string, rate decimal.Decimal) error {
	key := fmt.Sprintf("exchange_rate:%s:%s", base, target)
	err := r.client.Set(ctx, key, rate.String(), r.exp).Err()

	logger.Log.Infow(
		"key", key,
		"rate", rate,
		"result", "ok",
		"error", err,
	)

	return err
}
