package repositories

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/sbilibin2017/pf-wallet/internal/logger"
	"github.com/sbilibin2017/pf-wallet/internal/models"
)

// TransactionWriteRepository handles transaction write operations
type TransactionWriteRepository struct {
	db       *sqlx.DB
	txGetter func(ctx context.Context) *sqlx.Tx
}

func NewTransactionWriteRepository(db *sqlx.DB, txGetter func(ctx context.Context) *sqlx.Tx) *TransactionWriteRepository {
	return &TransactionWriteRepository{db: db, txGetter: txGetter}
}

func (r *TransactionWriteRepository) executor(ctx context.Context) sqlx.ExtContext {
	if r.txGetter != nil {
		if tx := r.txGetter(ctx); tx != nil {
			return tx
		}
	}
	return r.db
}

// Save inserts a new transaction row.
func (r *TransactionWriteRepository) Save(ctx context.Context, txn models.TransactionDB) error {
	query := `
		INSERT INTO transactions
			(transaction_id, user_id, wallet_id, category_id, amount, type, description, occurred_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW())
	`
	args := []any{
		txn.TransactionID, txn.UserID, txn.WalletID, txn.CategoryID,
		txn.Amount, txn.Type, txn.Description, txn.OccurredAt,
	}

	_, err := r.executor(ctx).ExecContext(ctx, query, args...)

	logger.Log.Infow(
		"query", strings.Join(strings.Fields(query), " "),
		"args", args,
		"error", err,
	)

	return err
}

// Update rewrites a transaction's mutable fields.
func (r *TransactionWriteRepository) Update(ctx context.Context, txn models.TransactionDB) (int64, error) {
	query := `
		UPDATE transactions
		SET wallet_id = $3, category_id = $4, amount = $5, type = $6,
		    description = $7, occurred_at = $8, updated_at = NOW()
		WHERE transaction_id = $1 AND user_id = $2
	`
	args := []any{
		txn.TransactionID, txn.UserID, txn.WalletID, txn.CategoryID,
		txn.Amount, txn.Type, txn.Description, txn.OccurredAt,
	}

	res, err := r.executor(ctx).ExecContext(ctx, query, args...)
	var rowsAffected int64
	if res != nil {
		rowsAffected, _ = res.RowsAffected()
	}

	logger.Log.Infow(
		"query", strings.Join(strings.Fields(query), " "),
		"args", args,
		"result", rowsAffected,
		"error", err,
	)

	return rowsAffected, err
}

// Delete removes a transaction owned by userID.
func (r *TransactionWriteRepository) Delete(ctx context.Context, userID, transactionID uuid.UUID) (int64, error) {
	query := `
		DELETE FROM transactions WHERE transaction_id = $1 AND user_id = $2
	`
	args := []any{transactionID, userID}

	res, err := r.executor(ctx).ExecContext(ctx, query, args...)
	var rowsAffected int64
	if res != nil {
		rowsAffected, _ = res.RowsAffected()
	}

	logger.Log.Infow(
		"query", strings.Join(strings.Fields(query), " "),
		"args", args,
		"result", rowsAffected,
		"error", err,
	)

	return rowsAffected, err
}

// TransactionReadRepository handles transaction read operations
type TransactionReadRepository struct {
	db       *sqlx.DB
	txGetter func(ctx context.Context) *sqlx.Tx
}

func NewTransactionReadRepository(db *sqlx.DB, txGetter func(ctx context.Context) *sqlx.Tx) *TransactionReadRepository {
	return &TransactionReadRepository{db: db, txGetter: txGetter}
}

func (r *TransactionReadRepository) executor(ctx context.Context) sqlx.ExtContext {
	if r.txGetter != nil {
		if tx := r.txGetter(ctx); tx != nil {
			return tx
		}
	}
	return r.db
}

// GetByID returns the transaction if it exists and belongs to userID.
func (r *TransactionReadRepository) GetByID(ctx context.Context, userID, transactionID uuid.UUID) (*models.TransactionDB, error) {
	const query = `
		SELECT transaction_id, user_id, wallet_id, category_id, amount, type, description, occurred_at, created_at, updated_at
		FROM transactions
		WHERE transaction_id = $1 AND user_id = $2
	`

	var txn models.TransactionDB
	err := sqlx.GetContext(ctx, r.executor(ctx), &txn, query, transactionID, userID)

	logger.Log.Infow(
		"query", strings.Join(strings.Fields(query), " "),
		"args", []any{transactionID, userID},
		"error", err,
	)

	if err != nil {
		return nil, err
	}
	return &txn, nil
}

// List returns the user's transactions, optionally filtered by wallet and
// occurrence window, newest first.
func (r *TransactionReadRepository) List(ctx context.Context, userID uuid.UUID, walletID *uuid.UUID, from, to *time.Time) ([]models.TransactionDB, error) {
	const query = `
		SELECT transaction_id, user_id, wallet_id, category_id, amount, type, description, occurred_at, created_at, updated_at
		FROM transactions
		WHERE user_id = $1
		  AND ($2::UUID IS NULL OR wallet_id = $2)
		  AND ($3::TIMESTAMP IS NULL OR occurred_at >= $3)
		  AND ($4::TIMESTAMP IS NULL OR occurred_at <= $4)
		ORDER BY occurred_at DESC
	`
	args := []any{userID, walletID, from, to}

	var txns []models.TransactionDB
	err := sqlx.SelectContext(ctx, r.executor(ctx), &txns, query, args...)

	logger.Log.Infow(
		"query", strings.Join(strings.Fields(query), " "),
		"args", args,
		"result", len(txns),
		"error", err,
	)

	return txns, err
}

// SumInScope returns the signed sum of the user's transactions for a category,
// optionally narrowed to one wallet and an occurrence window. This is the
// goal-progress aggregation.
func (r *TransactionReadRepository) SumInScope(ctx context.Context, userID, categoryID uuid.UUID, walletID *uuid.UUID, from, to *time.Time) (decimal.Decimal, error) {
	const query = `
		SELECT COALESCE(SUM(CASE WHEN type = 'expense' THEN -amount ELSE amount END), 0)
		FROM transactions
		WHERE user_id = $1
		  AND category_id = $2
		  AND ($3::UUID IS NULL OR wallet_id = $3)
		  AND ($4::TIMESTAMP IS NULL OR occurred_at >= $4)
		  AND ($5::TIMESTAMP IS NULL OR occurred_at <= $5)
	`
	args := []any{userID, categoryID, walletID, from, to}

	var sum decimal.Decimal
	err := sqlx.GetContext(ctx, r.executor(ctx), &sum, query, args...)

	logger.Log.Infow(
		"query", strings.Join(strings.Fields(query), " "),
		"args", args,
		"result", sum,
		"error", err,
	)

	return sum, err
}
