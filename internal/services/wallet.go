package services

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/sbilibin2017/pf-wallet/internal/logger"
	"github.com/sbilibin2017/pf-wallet/internal/models"
)

// WalletReader defines wallet read operations used by services.
type WalletReader interface {
	GetByID(ctx context.Context, userID, walletID uuid.UUID) (*models.WalletDB, error)
	ListByUserID(ctx context.Context, userID uuid.UUID) ([]models.WalletDB, error)
}

// WalletWriter defines wallet write operations used by services.
type WalletWriter interface {
	Save(ctx context.Context, wallet models.WalletDB) error
	Update(ctx context.Context, userID, walletID uuid.UUID, name, walletType string) (int64, error)
	Delete(ctx context.Context, userID, walletID uuid.UUID) (int64, error)
	ApplyDelta(ctx context.Context, walletID uuid.UUID, delta decimal.Decimal) (decimal.Decimal, error)
}

// Converter converts amounts between currencies.
type Converter interface {
	Convert(ctx context.Context, amount decimal.Decimal, from, to string) (decimal.Decimal, error)
}

// WalletService manages wallets and their balances. Balances move only
// through ApplyDelta calls made alongside transaction-record writes, inside
// the caller's database transaction; the wallet balance therefore always
// equals the signed sum of its transactions.
type WalletService struct {
	reader    WalletReader
	writer    WalletWriter
	converter Converter
}

// NewWalletService creates a new WalletService.
func NewWalletService(reader WalletReader, writer WalletWriter, converter Converter) *WalletService {
	return &WalletService{
		reader:    reader,
		writer:    writer,
		converter: converter,
	}
}

// Create makes a new wallet with a zero balance.
func (svc *WalletService) Create(ctx context.Context, userID uuid.UUID, name, currency, walletType string) (*models.WalletDB, error) {
	if walletType != models.WalletTypeAccount && walletType != models.WalletTypeSavings {
		walletType = models.WalletTypeAccount
	}

	wallet := models.WalletDB{
		WalletID: uuid.New(),
		UserID:   userID,
		Name:     name,
		Currency: currency,
		Type:     walletType,
		Balance:  decimal.Zero,
	}

	if err := svc.writer.Save(ctx, wallet); err != nil {
		logger.Log.Errorw("failed to save wallet", "userID", userID, "name", name, "error", err)
		return nil, err
	}

	return &wallet, nil
}

// Get returns a wallet owned by userID.
func (svc *WalletService) Get(ctx context.Context, userID, walletID uuid.UUID) (*models.WalletDB, error) {
	wallet, err := svc.reader.GetByID(ctx, userID, walletID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrWalletNotFound
		}
		logger.Log.Errorw("failed to get wallet", "userID", userID, "walletID", walletID, "error", err)
		return nil, err
	}
	return wallet, nil
}

// List returns all wallets owned by userID.
func (svc *WalletService) List(ctx context.Context, userID uuid.UUID) ([]models.WalletDB, error) {
	return svc.reader.ListByUserID(ctx, userID)
}

// Update renames or retypes a wallet.
func (svc *WalletService) Update(ctx context.Context, userID, walletID uuid.UUID, name, walletType string) error {
	if walletType != models.WalletTypeAccount && walletType != models.WalletTypeSavings {
		return ErrInvalidType
	}

	rows, err := svc.writer.Update(ctx, userID, walletID, name, walletType)
	if err != nil {
		logger.Log.Errorw("failed to update wallet", "userID", userID, "walletID", walletID, "error", err)
		return err
	}
	if rows == 0 {
		return ErrWalletNotFound
	}
	return nil
}

// Delete removes a wallet and all transactions referencing it, as one unit.
func (svc *WalletService) Delete(ctx context.Context, userID, walletID uuid.UUID) error {
	rows, err := svc.writer.Delete(ctx, userID, walletID)
	if err != nil {
		logger.Log.Errorw("failed to delete wallet", "userID", userID, "walletID", walletID, "error", err)
		return err
	}
	if rows == 0 {
		return ErrWalletNotFound
	}
	return nil
}

// GetConvertedBalance returns the wallet balance expressed in targetCurrency,
// converting from the wallet's native currency.
func (svc *WalletService) GetConvertedBalance(ctx context.Context, userID, walletID uuid.UUID, targetCurrency string) (decimal.Decimal, error) {
	wallet, err := svc.Get(ctx, userID, walletID)
	if err != nil {
		return decimal.Zero, err
	}

	if targetCurrency == "" || targetCurrency == wallet.Currency {
		return wallet.Balance, nil
	}

	converted, err := svc.converter.Convert(ctx, wallet.Balance, wallet.Currency, targetCurrency)
	if err != nil {
		logger.Log.Errorw("failed to convert balance",
			"walletID", walletID, "from", wallet.Currency, "to", targetCurrency, "error", err)
		return decimal.Zero, err
	}

	return converted, nil
}
