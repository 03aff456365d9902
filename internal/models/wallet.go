package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Wallet types
const (
	WalletTypeAccount = "account"
	WalletTypeSavings = "savings"
)

// WalletDB represents a wallet row in the database
type WalletDB struct {
	WalletID  uuid.UUID       `json:"wallet_id" db:"wallet_id"`   // Unique wallet identifier
	UserID    uuid.UUID       `json:"user_id" db:"user_id"`       // Identifier of the wallet's owner
	Name      string          `json:"name" db:"name"`             // Display name
	Currency  string          `json:"currency" db:"currency"`     // Currency code (e.g., USD, EUR)
	Type      string          `json:"type" db:"type"`             // Wallet type: account or savings
	Balance   decimal.Decimal `json:"balance" db:"balance"`       // Current balance in the wallet
	CreatedAt time.Time       `json:"created_at" db:"created_at"` // Timestamp when the wallet was created
	UpdatedAt time.Time       `json:"updated_at" db:"updated_at"` // Timestamp of the last wallet update
}
