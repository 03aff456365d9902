package services

import (
	"context"
	"database/sql"
	"errors"

	"github.com/shopspring/decimal"

	"github.com/sbilibin2017/pf-wallet/internal/logger"
	"github.com/sbilibin2017/pf-wallet/internal/models"
)

// RateStoreReader reads exchange rates persisted in the database.
type RateStoreReader interface {
	Get(ctx context.Context, base, target string) (decimal.Decimal, error)
	ListByBase(ctx context.Context, base string) ([]models.ExchangeRateDB, error)
}

// RateStoreWriter persists exchange rates.
type RateStoreWriter interface {
	Upsert(ctx context.Context, base, target string, rate decimal.Decimal) error
}

// RateCache caches exchange rates with a TTL.
type RateCache interface {
	Get(ctx context.Context, base, target string) (decimal.Decimal, error)
	Set(ctx context.Context, base, target string, rate decimal.Decimal) error
}

// RateFetcher fetches a full rate table from the external rates API.
type RateFetcher interface {
	FetchRates(ctx context.Context, base string) (map[string]decimal.Decimal, error)
}

// RateService resolves exchange rates and performs currency conversion.
//
// Rate direction is fixed in one place: a stored rate (base, target, R) means
// 1 unit of base = R units of target. A direct row is multiplied; when only
// the inverse row exists the amount is divided by it. No other component
// applies rates.
type RateService struct {
	store   RateStoreReader
	writer  RateStoreWriter
	cache   RateCache
	fetcher RateFetcher
}

// NewRateService creates a new RateService.
func NewRateService(store RateStoreReader, writer RateStoreWriter, cache RateCache, fetcher RateFetcher) *RateService {
	return &RateService{
		store:   store,
		writer:  writer,
		cache:   cache,
		fetcher: fetcher,
	}
}

// GetRate returns the rate from base to target. Lookup order: cache, stored
// direct row, stored inverse row (inverted). ErrConversionUnavailable when no
// row exists in either direction.
func (svc *RateService) GetRate(ctx context.Context, base, target string) (decimal.Decimal, error) {
	if base == target {
		return decimal.NewFromInt(1), nil
	}

	if svc.cache != nil {
		if rate, err := svc.cache.Get(ctx, base, target); err == nil {
			return rate, nil
		}
	}

	rate, err := svc.store.Get(ctx, base, target)
	if err == nil {
		svc.cacheRate(ctx, base, target, rate)
		return rate, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		logger.Log.Errorw("failed to read exchange rate", "base", base, "target", target, "error", err)
		return decimal.Zero, err
	}

	inverse, err := svc.store.Get(ctx, target, base)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return decimal.Zero, ErrConversionUnavailable
		}
		logger.Log.Errorw("failed to read inverse exchange rate", "base", target, "target", base, "error", err)
		return decimal.Zero, err
	}
	if inverse.IsZero() {
		return decimal.Zero, ErrConversionUnavailable
	}

	rate = decimal.NewFromInt(1).DivRound(inverse, 12)
	svc.cacheRate(ctx, base, target, rate)
	return rate, nil
}

// Convert converts amount from one currency to another using GetRate.
func (svc *RateService) Convert(ctx context.Context, amount decimal.Decimal, from, to string) (decimal.Decimal, error) {
	if from == to {
		return amount, nil
	}

	rate, err := svc.GetRate(ctx, from, to)
	if err != nil {
		return decimal.Zero, err
	}

	return amount.Mul(rate), nil
}

// RefreshRates fetches the full rate table for base from the external source
// and upserts every row. The fetch fails closed: on timeout or error nothing
// is written and the stored rates stay as they were.
func (svc *RateService) RefreshRates(ctx context.Context, base string) error {
	rates, err := svc.fetcher.FetchRates(ctx, base)
	if err != nil {
		logger.Log.Errorw("failed to refresh rates", "base", base, "error", err)
		return err
	}

	for target, rate := range rates {
		if target == base {
			continue
		}
		if err := svc.writer.Upsert(ctx, base, target, rate); err != nil {
			logger.Log.Errorw("failed to upsert rate", "base", base, "target", target, "error", err)
			return err
		}
	}

	logger.Log.Infow("rates refreshed", "base", base, "count", len(rates))
	return nil
}

// GetRates returns the stored rate table for a base currency.
func (svc *RateService) GetRates(ctx context.Context, base string) ([]models.ExchangeRateDB, error) {
	return svc.store.ListByBase(ctx, base)
}

func (svc *RateService) cacheRate(ctx context.Context, base, target string, rate decimal.Decimal) {
	if svc.cache == nil {
		return
	}
	if err := svc.cache.Set(ctx, base, target, rate); err != nil {
		logger.Log.Errorw("failed to cache exchange rate", "base", base, "target", target, "error", err)
	}
}
