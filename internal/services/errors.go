package services

import "errors"

// Error variables shared across services. Handlers map these to HTTP
// statuses; everything else surfaces as an internal error with no detail.
var (
	ErrUserAlreadyExists  = errors.New("username or email already exists")
	ErrUserDoesNotExist   = errors.New("username does not exist")
	ErrInvalidCredentials = errors.New("invalid username or password")

	// ErrWalletNotFound covers both a missing wallet and a wallet owned by
	// another user; callers cannot tell the two apart.
	ErrWalletNotFound       = errors.New("wallet not found")
	ErrTransactionNotFound  = errors.New("transaction not found")
	ErrCategoryNotFound     = errors.New("category not found")
	ErrGoalNotFound         = errors.New("goal not found")
	ErrRecurringNotFound    = errors.New("recurring transaction not found")
	ErrNotificationNotFound = errors.New("notification not found")

	ErrInvalidAmount    = errors.New("amount must be positive")
	ErrInvalidName      = errors.New("name must not be empty")
	ErrInvalidType      = errors.New("type must be income or expense")
	ErrSameWallet       = errors.New("source and destination wallets must differ")
	ErrInvalidFrequency = errors.New("frequency must be daily, weekly or monthly")
	ErrCategoryInUse    = errors.New("category is referenced by transactions or goals")

	// ErrConversionUnavailable is returned when no exchange rate is known for
	// a currency pair. A conversion never falls back to a fabricated rate.
	ErrConversionUnavailable = errors.New("exchange rate unavailable")
)
