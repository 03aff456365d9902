package repositories

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/sbilibin2017/pf-wallet/internal/logger"
	"github.com/sbilibin2017/pf-wallet/internal/models"
)

// WalletWriteRepository handles wallet write operations
type WalletWriteRepository struct {
	db       *sqlx.DB
	txGetter func(ctx context.Context) *sqlx.Tx
}

func NewWalletWriteRepository(db *sqlx.DB, txGetter func(ctx context.Context) *sqlx.Tx) *WalletWriteRepository {
	return &WalletWriteRepository{db: db, txGetter: txGetter}
}

func (r *WalletWriteRepository) executor(ctx context.Context) sqlx.ExtContext {
	if r.txGetter != nil {
		if tx := r.txGetter(ctx); tx != nil {
			return tx
		}
	}
	return r.db
}

// Save inserts a new wallet with a zero balance.
func (r *WalletWriteRepository) Save(ctx context.Context, wallet models.WalletDB) error {
	query := `
		INSERT INTO wallets (wallet_id, user_id, name, currency, type, balance, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
	`
	args := []any{wallet.WalletID, wallet.UserID, wallet.Name, wallet.Currency, wallet.Type, wallet.Balance}

	_, err := r.executor(ctx).ExecContext(ctx, query, args...)

	logger.Log.Infow(
		"query", strings.Join(strings.Fields(query), " "),
		"args", args,
		"error", err,
	)

	return err
}

// Update changes a wallet's display name and type. Balance and currency are
// never written here; balance moves only through ApplyDelta.
func (r *WalletWriteRepository) Update(ctx context.Context, userID, walletID uuid.UUID, name, walletType string) (int64, error) {
	query := `
		UPDATE wallets
		SET name = $3, type = $4, updated_at = NOW()
		WHERE wallet_id = $1 AND user_id = $2
	`
	args := []any{walletID, userID, name, walletType}

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

// Delete removes a wallet together with its transactions. Both statements run
// on the caller's transaction so the pair is atomic.
func (r *WalletWriteRepository) Delete(ctx context.Context, userID, walletID uuid.UUID) (int64, error) {
	ex := r.executor(ctx)

	const deleteTransactions = `
		DELETE FROM transactions WHERE wallet_id = $1 AND user_id = $2
	`
	if _, err := ex.ExecContext(ctx, deleteTransactions, walletID, userID); err != nil {
		logger.Log.Infow(
			"query", strings.Join(strings.Fields(deleteTransactions), " "),
			"args", []any{walletID, userID},
			"error", err,
		)
		return 0, err
	}

	const deleteWallet = `
		DELETE FROM wallets WHERE wallet_id = $1 AND user_id = $2
	`
	res, err := ex.ExecContext(ctx, deleteWallet, walletID, userID)
	var rowsAffected int64
	if res != nil {
		rowsAffected, _ = res.RowsAffected()
	}

	logger.Log.Infow(
		"query", strings.Join(strings.Fields(deleteWallet), " "),
		"args", []any{walletID, userID},
		"result", rowsAffected,
		"error", err,
	)

	return rowsAffected, err
}

// ApplyDelta adds a signed amount to the wallet balance and returns the new
// balance. The wallet must exist; sql.ErrNoRows surfaces otherwise.
func (r *WalletWriteRepository) ApplyDelta(ctx context.Context, walletID uuid.UUID, delta decimal.Decimal) (decimal.Decimal, error) {
	query := `
		UPDATE wallets
		SET balance = balance + $2, updated_at = NOW()
		WHERE wallet_id = $1
		RETURNING balance
	`
	args := []any{walletID, delta}

	var balance decimal.Decimal
	err := sqlx.GetContext(ctx, r.executor(ctx), &balance, query, args...)

	logger.Log.Infow(
		"query", strings.Join(strings.Fields(query), " "),
		"args", args,
		"result", balance,
		"error", err,
	)

	return balance, err
}

// WalletReadRepository handles wallet read operations
type WalletReadRepository struct {
	db       *sqlx.DB
	txGetter func(ctx context.Context) *sqlx.Tx
}

func NewWalletReadRepository(db *sqlx.DB, txGetter func(ctx context.Context) *sqlx.Tx) *WalletReadRepository {
	return &WalletReadRepository{db: db, txGetter: txGetter}
}

func (r *WalletReadRepository) executor(ctx context.Context) sqlx.ExtContext {
	if r.txGetter != nil {
		if tx := r.txGetter(ctx); tx != nil {
			return tx
		}
	}
	return r.db
}

// GetByID returns the wallet if it exists and belongs to userID.
func (r *WalletReadRepository) GetByID(ctx context.Context, userID, walletID uuid.UUID) (*models.WalletDB, error) {
	const query = `
		SELECT wallet_id, user_id, name, currency, type, balance, created_at, updated_at
		FROM wallets
		WHERE wallet_id = $1 AND user_id = $2
	`

	var wallet models.WalletDB
	err := sqlx.GetContext(ctx, r.executor(ctx), &wallet, query, walletID, userID)

	logger.Log.Infow(
		"query", strings.Join(strings.Fields(query), " "),
		"args", []any{walletID, userID},
		"error", err,
	)

	if err != nil {
		return nil, err
	}
	return &wallet, nil
}

// ListByUserID returns all wallets owned by userID ordered by creation time.
func (r *WalletReadRepository) ListByUserID(ctx context.Context, userID uuid.UUID) ([]models.WalletDB, error) {
	const query = `
		SELECT wallet_id, user_id, name, currency, type, balance, created_at, updated_at
		FROM wallets
		WHERE user_id = $1
		ORDER BY created_at
	`

	var wallets []models.WalletDB
	err := sqlx.SelectContext(ctx, r.executor(ctx), &wallets, query, userID)

	logger.Log.Infow(
		"query", strings.Join(strings.Fields(query), " "),
		"args", []any{userID},
		"result", len(wallets),
		"error", err,
	)

	return wallets, err
}

// SumTransactions returns the signed sum of all transactions referencing the
// wallet. Used to verify the ledger invariant in tests and audits.
func (r *WalletReadRepository) SumTransactions(ctx context.Context, walletID uuid.UUID) (decimal.Decimal, error) {
	const query = `
		SELECT COALESCE(SUM(CASE WHEN type = 'expense' THEN -amount ELSE amount END), 0)
		FROM transactions
		WHERE wallet_id = $1
	`

	var sum decimal.Decimal
	err := sqlx.GetContext(ctx, r.executor(ctx), &sum, query, walletID)

	logger.Log.Infow(
		"query", strings.Join(strings.Fields(query), " "),
		"args", []any{walletID},
		"result", sum,
		"error", err,
	)

	return sum, err
}
