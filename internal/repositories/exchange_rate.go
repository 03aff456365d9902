package repositories

import (
	"context"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/sbilibin2017/pf-wallet/internal/logger"
	"github.com/sbilibin2017/pf-wallet/internal/models"
)

// ExchangeRateWriteRepository persists exchange rates fetched from the
// external source.
type ExchangeRateWriteRepository struct {
	db *sqlx.DB
}

func NewExchangeRateWriteRepository(db *sqlx.DB) *ExchangeRateWriteRepository {
	return &ExchangeRateWriteRepository{db: db}
}

// Upsert stores a rate row keyed by (base, target) and bumps last_updated.
func (r *ExchangeRateWriteRepository) Upsert(ctx context.Context, base, target string, rate decimal.Decimal) error {
	query := `
		INSERT INTO exchange_rates (base, target, rate, last_updated)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (base, target)
		DO UPDATE SET rate = EXCLUDED.rate, last_updated = NOW()
	`
	args := []any{base, target, rate}

	_, err := r.db.ExecContext(ctx, query, args...)

	logger.Log.Infow(
		"query", strings.Join(strings.Fields(query), " "),
		"args", args,
		"error", err,
	)

	return err
}

// ExchangeRateReadRepository reads stored exchange rates.
type ExchangeRateReadRepository struct {
	db *sqlx.DB
}

func NewExchangeRateReadRepository(db *sqlx.DB) *ExchangeRateReadRepository {
	return &ExchangeRateReadRepository{db: db}
}

// Get returns the stored rate for (base, target). sql.ErrNoRows when absent.
func (r *ExchangeRateReadRepository) Get(ctx context.Context, base, target string) (decimal.Decimal, error) {
	const query = `
		SELECT rate FROM exchange_rates WHERE base = $1 AND target = $2
	`

	var rate decimal.Decimal
	err := r.db.GetContext(ctx, &rate, query, base, target)

	logger.Log.Infow(
		"query", strings.Join(strings.Fields(query), " "),
		"args", []any{base, target},
		"result", rate,
		"error", err,
	)

	return rate, err
}

// ListByBase returns all stored rates for a base currency.
func (r *ExchangeRateReadRepository) ListByBase(ctx context.Context, base string) ([]models.ExchangeRateDB, error) {
	const query = `
		SELECT base, target, rate, last_updated
		FROM exchange_rates
		WHERE base = $1
		ORDER BY target
	`

	var rates []models.ExchangeRateDB
	err := r.db.SelectContext(ctx, &rates, query, base)

	logger.Log.Infow(
		"query", strings.Join(strings.Fields(query), " "),
		"args", []any{base},
		"result", len(rates),
		"error", err,
	)

	return rates, err
}
