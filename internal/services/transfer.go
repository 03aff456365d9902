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

// TransferResult reports the two legs of a completed transfer and the
// resulting wallet balances.
type TransferResult struct {
	Withdrawal  models.TransactionDB // Expense leg on the source wallet
	Deposit     models.TransactionDB // Income leg on the destination wallet
	FromBalance decimal.Decimal      // Source balance after the transfer
	ToBalance   decimal.Decimal      // Destination balance after the transfer
}

// TransferService moves money between two wallets of the same owner. The two
// legs are recorded as linked transactions tagged with the system internal
// transfer categories, and both the records and the ledger deltas share the
// caller's database transaction: a failure anywhere leaves neither leg
// committed.
type TransferService struct {
	wallets    WalletReader
	txns       TransactionWriter
	categories CategoryReader
	ledger     LedgerWriter
	converter  Converter
}

// NewTransferService creates a new TransferService.
func NewTransferService(
	wallets WalletReader,
	txns TransactionWriter,
	categories CategoryReader,
	ledger LedgerWriter,
	converter Converter,
) *TransferService {
	return &TransferService{
		wallets:    wallets,
		txns:       txns,
		categories: categories,
		ledger:     ledger,
		converter:  converter,
	}
}

// Transfer debits amount (in the source wallet's currency) from the source
// wallet and credits the converted amount to the destination wallet. All
// validation happens before any write.
func (svc *TransferService) Transfer(
	ctx context.Context,
	userID, fromWalletID, toWalletID uuid.UUID,
	amount decimal.Decimal,
) (*TransferResult, error) {
	if fromWalletID == toWalletID {
		return nil, ErrSameWallet
	}
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, ErrInvalidAmount
	}

	from, err := svc.wallets.GetByID(ctx, userID, fromWalletID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrWalletNotFound
		}
		return nil, err
	}
	to, err := svc.wallets.GetByID(ctx, userID, toWalletID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrWalletNotFound
		}
		return nil, err
	}

	credit := amount
	if from.Currency != to.Currency {
		credit, err = svc.converter.Convert(ctx, amount, from.Currency, to.Currency)
		if err != nil {
			logger.Log.Errorw("transfer conversion failed",
				"from", from.Currency, "to", to.Currency, "error", err)
			return nil, err
		}
	}

	expenseCategory, err := svc.categories.GetSystem(ctx, models.InternalTransferCategory, models.TypeExpense)
	if err != nil {
		logger.Log.Errorw("internal transfer expense category missing", "error", err)
		return nil, err
	}
	incomeCategory, err := svc.categories.GetSystem(ctx, models.InternalTransferCategory, models.TypeIncome)
	if err != nil {
		logger.Log.Errorw("internal transfer income category missing", "error", err)
		return nil, err
	}

	now := time.Now()

	withdrawal := models.TransactionDB{
		TransactionID: uuid.New(),
		UserID:        userID,
		WalletID:      fromWalletID,
		CategoryID:    expenseCategory.CategoryID,
		Amount:        amount,
		Type:          models.TypeExpense,
		Description:   "Transfer to " + to.Name,
		OccurredAt:    now,
	}
	deposit := models.TransactionDB{
		TransactionID: uuid.New(),
		UserID:        userID,
		WalletID:      toWalletID,
		CategoryID:    incomeCategory.CategoryID,
		Amount:        credit,
		Type:          models.TypeIncome,
		Description:   "Transfer from " + from.Name,
		OccurredAt:    now,
	}

	if err := svc.txns.Save(ctx, withdrawal); err != nil {
		logger.Log.Errorw("failed to save withdrawal leg", "walletID", fromWalletID, "error", err)
		return nil, err
	}
	if err := svc.txns.Save(ctx, deposit); err != nil {
		logger.Log.Errorw("failed to save deposit leg", "walletID", toWalletID, "error", err)
		return nil, err
	}

	fromBalance, err := svc.ledger.ApplyDelta(ctx, fromWalletID, withdrawal.Signed())
	if err != nil {
		logger.Log.Errorw("failed to debit source wallet", "walletID", fromWalletID, "error", err)
		return nil, err
	}
	toBalance, err := svc.ledger.ApplyDelta(ctx, toWalletID, deposit.Signed())
	if err != nil {
		logger.Log.Errorw("failed to credit destination wallet", "walletID", toWalletID, "error", err)
		return nil, err
	}

	logger.Log.Infow("transfer completed",
		"userID", userID,
		"from", fromWalletID,
		"to", toWalletID,
		"debit", amount,
		"credit", credit,
	)

	return &TransferResult{
		Withdrawal:  withdrawal,
		Deposit:     deposit,
		FromBalance: fromBalance,
		ToBalance:   toBalance,
	}, nil
}
