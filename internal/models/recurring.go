package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Recurring transaction frequencies
const (
	FrequencyDaily   = "daily"
	FrequencyWeekly  = "weekly"
	FrequencyMonthly = "monthly"
)

// RecurringTransactionDB represents a recurring transaction template.
// NextRunDate only ever moves forward, and only after the materialized
// transaction for the current period has been created.
type RecurringTransactionDB struct {
	RecurringID uuid.UUID       `json:"recurring_id" db:"recurring_id"`   // Unique template identifier
	UserID      uuid.UUID       `json:"user_id" db:"user_id"`             // Owning user
	WalletID    uuid.UUID       `json:"wallet_id" db:"wallet_id"`         // Wallet materialized transactions go to
	CategoryID  uuid.UUID       `json:"category_id" db:"category_id"`     // Category of materialized transactions
	Amount      decimal.Decimal `json:"amount" db:"amount"`               // Positive magnitude
	Type        string          `json:"type" db:"type"`                   // income or expense
	Description string          `json:"description" db:"description"`     // Copied onto materialized transactions
	Frequency   string          `json:"frequency" db:"frequency"`         // daily, weekly or monthly
	NextRunDate time.Time       `json:"next_run_date" db:"next_run_date"` // Next date the template is due
	CreatedAt   time.Time       `json:"created_at" db:"created_at"`       // Row creation timestamp
	UpdatedAt   time.Time       `json:"updated_at" db:"updated_at"`       // Last update timestamp
}

// NextAfter returns the run date one period after t for the template's
// frequency. Monthly stepping uses calendar months.
func (r RecurringTransactionDB) NextAfter(t time.Time) time.Time {
	switch r.Frequency {
	case FrequencyDaily:
		return t.AddDate(0, 0, 1)
	case FrequencyWeekly:
		return t.AddDate(0, 0, 7)
	default:
		return t.AddDate(0, 1, 0)
	}
}

// ValidFrequency reports whether f is a supported recurrence frequency.
func ValidFrequency(f string) bool {
	switch f {
	case FrequencyDaily, FrequencyWeekly, FrequencyMonthly:
		return true
	}
	return false
}
