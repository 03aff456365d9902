package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ExchangeRateDB represents a stored exchange rate.
// A row (Base, Target, Rate) means 1 unit of Base equals Rate units of Target.
type ExchangeRateDB struct {
	Base        string          `json:"base" db:"base"`                 // Base currency code
	Target      string          `json:"target" db:"target"`             // Target currency code
	Rate        decimal.Decimal `json:"rate" db:"rate"`                 // Target units per one base unit
	LastUpdated time.Time       `json:"last_updated" db:"last_updated"` // When the rate was last refreshed
}
