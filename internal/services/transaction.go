package services

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/sbilibin2017/pf-wallet/internal/logger"
	"github.com/sbilibin2017/pf-wallet/internal/models"
)

// TransactionReader defines transaction read operations used by services.
type TransactionReader interface {
	GetByID(ctx context.Context, userID, transactionID uuid.UUID) (*models.TransactionDB, error)
	List(ctx context.Context, userID uuid.UUID, walletID *uuid.UUID, from, to *time.Time) ([]models.TransactionDB, error)
}

// TransactionWriter defines transaction write operations used by services.
type TransactionWriter interface {
	Save(ctx context.Context, txn models.TransactionDB) error
	Update(ctx context.Context, txn models.TransactionDB) (int64, error)
	Delete(ctx context.Context, userID, transactionID uuid.UUID) (int64, error)
}

// CategoryReader defines category read operations used by services.
type CategoryReader interface {
	GetByID(ctx context.Context, userID, categoryID uuid.UUID) (*models.CategoryDB, error)
	GetSystem(ctx context.Context, name, categoryType string) (*models.CategoryDB, error)
	ListForUser(ctx context.Context, userID uuid.UUID) ([]models.CategoryDB, error)
}

// LedgerWriter applies signed deltas to wallet balances.
type LedgerWriter interface {
	ApplyDelta(ctx context.Context, walletID uuid.UUID, delta decimal.Decimal) (decimal.Decimal, error)
}

// TransactionService creates, updates and deletes transactions while keeping
// the wallet balance equal to the signed sum of its transactions. Every
// mutation pairs a transaction-record write with the matching ledger delta,
// inside the caller's database transaction.
type TransactionService struct {
	reader     TransactionReader
	writer     TransactionWriter
	wallets    WalletReader
	categories CategoryReader
	ledger     LedgerWriter
}

// NewTransactionService creates a new TransactionService.
func NewTransactionService(
	reader TransactionReader,
	writer TransactionWriter,
	wallets WalletReader,
	categories CategoryReader,
	ledger LedgerWriter,
) *TransactionService {
	return &TransactionService{
		reader:     reader,
		writer:     writer,
		wallets:    wallets,
		categories: categories,
		ledger:     ledger,
	}
}

// Create records a transaction and applies its signed amount to the wallet.
func (svc *TransactionService) Create(
	ctx context.Context,
	userID, walletID, categoryID uuid.UUID,
	amount decimal.Decimal,
	txType, description string,
	occurredAt time.Time,
) (*models.TransactionDB, error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, ErrInvalidAmount
	}
	if txType != models.TypeIncome && txType != models.TypeExpense {
		return nil, ErrInvalidType
	}

	if _, err := svc.wallets.GetByID(ctx, userID, walletID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrWalletNotFound
		}
		return nil, err
	}
	if _, err := svc.categories.GetByID(ctx, userID, categoryID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCategoryNotFound
		}
		return nil, err
	}

	txn := models.TransactionDB{
		TransactionID: uuid.New(),
		UserID:        userID,
		WalletID:      walletID,
		CategoryID:    categoryID,
		Amount:        amount,
		Type:          txType,
		Description:   description,
		OccurredAt:    occurredAt,
	}

	if err := svc.writer.Save(ctx, txn); err != nil {
		logger.Log.Errorw("failed to save transaction", "userID", userID, "walletID", walletID, "error", err)
		return nil, err
	}

	if _, err := svc.ledger.ApplyDelta(ctx, walletID, txn.Signed()); err != nil {
		logger.Log.Errorw("failed to apply transaction to wallet", "walletID", walletID, "error", err)
		return nil, err
	}

	return &txn, nil
}

// Update rewrites a transaction and applies the balance difference. When the
// wallet changed, the old wallet receives the full reversal and the new
// wallet the full signed amount.
func (svc *TransactionService) Update(
	ctx context.Context,
	userID, transactionID, walletID, categoryID uuid.UUID,
	amount decimal.Decimal,
	txType, description string,
	occurredAt time.Time,
) (*models.TransactionDB, error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, ErrInvalidAmount
	}
	if txType != models.TypeIncome && txType != models.TypeExpense {
		return nil, ErrInvalidType
	}

	old, err := svc.reader.GetByID(ctx, userID, transactionID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTransactionNotFound
		}
		return nil, err
	}

	if _, err := svc.wallets.GetByID(ctx, userID, walletID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrWalletNotFound
		}
		return nil, err
	}
	if _, err := svc.categories.GetByID(ctx, userID, categoryID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCategoryNotFound
		}
		return nil, err
	}

	updated := models.TransactionDB{
		TransactionID: transactionID,
		UserID:        userID,
		WalletID:      walletID,
		CategoryID:    categoryID,
		Amount:        amount,
		Type:          txType,
		Description:   description,
		OccurredAt:    occurredAt,
	}

	rows, err := svc.writer.Update(ctx, updated)
	if err != nil {
		logger.Log.Errorw("failed to update transaction", "transactionID", transactionID, "error", err)
		return nil, err
	}
	if rows == 0 {
		return nil, ErrTransactionNotFound
	}

	if old.WalletID == walletID {
		delta := updated.Signed().Sub(old.Signed())
		if !delta.IsZero() {
			if _, err := svc.ledger.ApplyDelta(ctx, walletID, delta); err != nil {
				logger.Log.Errorw("failed to apply update delta", "walletID", walletID, "error", err)
				return nil, err
			}
		}
		return &updated, nil
	}

	if _, err := svc.ledger.ApplyDelta(ctx, old.WalletID, old.Signed().Neg()); err != nil {
		logger.Log.Errorw("failed to reverse old wallet", "walletID", old.WalletID, "error", err)
		return nil, err
	}
	if _, err := svc.ledger.ApplyDelta(ctx, walletID, updated.Signed()); err != nil {
		logger.Log.Errorw("failed to apply to new wallet", "walletID", walletID, "error", err)
		return nil, err
	}

	return &updated, nil
}

// Delete removes a transaction and reverses its effect on the wallet.
func (svc *TransactionService) Delete(ctx context.Context, userID, transactionID uuid.UUID) error {
	txn, err := svc.reader.GetByID(ctx, userID, transactionID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrTransactionNotFound
		}
		return err
	}

	rows, err := svc.writer.Delete(ctx, userID, transactionID)
	if err != nil {
		logger.Log.Errorw("failed to delete transaction", "transactionID", transactionID, "error", err)
		return err
	}
	if rows == 0 {
		return ErrTransactionNotFound
	}

	if _, err := svc.ledger.ApplyDelta(ctx, txn.WalletID, txn.Signed().Neg()); err != nil {
		logger.Log.Errorw("failed to reverse transaction", "walletID", txn.WalletID, "error", err)
		return err
	}

	return nil
}

// List returns the user's transactions, optionally filtered by wallet and
// occurrence window.
func (svc *TransactionService) List(ctx context.Context, userID uuid.UUID, walletID *uuid.UUID, from, to *time.Time) ([]models.TransactionDB, error) {
	return svc.reader.List(ctx, userID, walletID, from, to)
}
