package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Transaction and category types
const (
	TypeIncome  = "income"
	TypeExpense = "expense"
)

// TransactionDB represents a transaction row in the database.
// Amount is stored as a positive magnitude; Type carries the direction.
type TransactionDB struct {
	TransactionID uuid.UUID       `json:"transaction_id" db:"transaction_id"` // Unique transaction identifier
	UserID        uuid.UUID       `json:"user_id" db:"user_id"`               // Identifier of the owning user
	WalletID      uuid.UUID       `json:"wallet_id" db:"wallet_id"`           // Wallet the transaction applies to
	CategoryID    uuid.UUID       `json:"category_id" db:"category_id"`       // Category reference
	Amount        decimal.Decimal `json:"amount" db:"amount"`                 // Positive magnitude
	Type          string          `json:"type" db:"type"`                     // income or expense
	Description   string          `json:"description" db:"description"`       // Free-form description
	OccurredAt    time.Time       `json:"occurred_at" db:"occurred_at"`       // When the transaction happened
	CreatedAt     time.Time       `json:"created_at" db:"created_at"`         // Row creation timestamp
	UpdatedAt     time.Time       `json:"updated_at" db:"updated_at"`         // Last update timestamp
}

// Signed returns the transaction's effect on its wallet balance:
// positive for income, negative for expense.
func (t TransactionDB) Signed() decimal.Decimal {
	if t.Type == TypeExpense {
		return t.Amount.Neg()
	}
	return t.Amount
}

// SignedAmount applies the income/expense sign convention to a magnitude.
func SignedAmount(amount decimal.Decimal, txType string) decimal.Decimal {
	if txType == TypeExpense {
		return amount.Neg()
	}
	return amount
}
