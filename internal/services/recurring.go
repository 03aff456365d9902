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

// maxCatchUpSteps bounds how many missed periods one run materializes for a
// single template. Anything older is caught up on subsequent runs.
const maxCatchUpSteps = 36

// RecurringReader defines recurring-transaction read operations.
type RecurringReader interface {
	GetByID(ctx context.Context, userID, recurringID uuid.UUID) (*models.RecurringTransactionDB, error)
	ListByUserID(ctx context.Context, userID uuid.UUID) ([]models.RecurringTransactionDB, error)
	ListDueByUserID(ctx context.Context, userID uuid.UUID, now time.Time) ([]models.RecurringTransactionDB, error)
	ListUserIDsWithDue(ctx context.Context, now time.Time) ([]uuid.UUID, error)
}

// RecurringWriter defines recurring-transaction write operations.
type RecurringWriter interface {
	Save(ctx context.Context, rec models.RecurringTransactionDB) error
	Update(ctx context.Context, rec models.RecurringTransactionDB) (int64, error)
	AdvanceNextRun(ctx context.Context, recurringID uuid.UUID, nextRun time.Time) error
	Delete(ctx context.Context, userID, recurringID uuid.UUID) (int64, error)
}

// RunResult reports one recurring run: transactions created and templates
// skipped because their wallet or category no longer exists.
type RunResult struct {
	Materialized []models.TransactionDB `json:"materialized"`
	Skipped      []uuid.UUID            `json:"skipped"`
}

// RecurringService manages recurring-transaction templates and materializes
// the due ones. Catch-up is full: a template three days overdue on a daily
// frequency produces one transaction per missed day, each dated at its missed
// run date, and the schedule advances only alongside the created transaction.
type RecurringService struct {
	reader     RecurringReader
	writer     RecurringWriter
	wallets    WalletReader
	categories CategoryReader
	txns       TransactionWriter
	ledger     LedgerWriter
	now        func() time.Time
}

// NewRecurringService creates a new RecurringService.
func NewRecurringService(
	reader RecurringReader,
	writer RecurringWriter,
	wallets WalletReader,
	categories CategoryReader,
	txns TransactionWriter,
	ledger LedgerWriter,
) *RecurringService {
	return &RecurringService{
		reader:     reader,
		writer:     writer,
		wallets:    wallets,
		categories: categories,
		txns:       txns,
		ledger:     ledger,
		now:        time.Now,
	}
}

// Create makes a new recurring transaction template.
func (svc *RecurringService) Create(ctx context.Context, rec models.RecurringTransactionDB) (*models.RecurringTransactionDB, error) {
	if rec.Amount.LessThanOrEqual(decimal.Zero) {
		return nil, ErrInvalidAmount
	}
	if rec.Type != models.TypeIncome && rec.Type != models.TypeExpense {
		return nil, ErrInvalidType
	}
	if !models.ValidFrequency(rec.Frequency) {
		return nil, ErrInvalidFrequency
	}

	if _, err := svc.wallets.GetByID(ctx, rec.UserID, rec.WalletID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrWalletNotFound
		}
		return nil, err
	}
	if _, err := svc.categories.GetByID(ctx, rec.UserID, rec.CategoryID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCategoryNotFound
		}
		return nil, err
	}

	rec.RecurringID = uuid.New()

	if err := svc.writer.Save(ctx, rec); err != nil {
		logger.Log.Errorw("failed to save recurring transaction", "userID", rec.UserID, "error", err)
		return nil, err
	}

	return &rec, nil
}

// Update rewrites a template. The repository refuses a next_run_date earlier
// than the stored one, which surfaces here as not found.
func (svc *RecurringService) Update(ctx context.Context, rec models.RecurringTransactionDB) error {
	if rec.Amount.LessThanOrEqual(decimal.Zero) {
		return ErrInvalidAmount
	}
	if rec.Type != models.TypeIncome && rec.Type != models.TypeExpense {
		return ErrInvalidType
	}
	if !models.ValidFrequency(rec.Frequency) {
		return ErrInvalidFrequency
	}

	rows, err := svc.writer.Update(ctx, rec)
	if err != nil {
		logger.Log.Errorw("failed to update recurring transaction", "recurringID", rec.RecurringID, "error", err)
		return err
	}
	if rows == 0 {
		return ErrRecurringNotFound
	}
	return nil
}

// Delete removes a template.
func (svc *RecurringService) Delete(ctx context.Context, userID, recurringID uuid.UUID) error {
	rows, err := svc.writer.Delete(ctx, userID, recurringID)
	if err != nil {
		logger.Log.Errorw("failed to delete recurring transaction", "recurringID", recurringID, "error", err)
		return err
	}
	if rows == 0 {
		return ErrRecurringNotFound
	}
	return nil
}

// List returns all templates owned by userID.
func (svc *RecurringService) List(ctx context.Context, userID uuid.UUID) ([]models.RecurringTransactionDB, error) {
	return svc.reader.ListByUserID(ctx, userID)
}

// RunDue materializes every due template for a user. A template whose wallet
// or category has disappeared is skipped and reported; it never aborts the
// rest of the batch.
func (svc *RecurringService) RunDue(ctx context.Context, userID uuid.UUID) (*RunResult, error) {
	now := svc.now()

	due, err := svc.reader.ListDueByUserID(ctx, userID, now)
	if err != nil {
		return nil, err
	}

	result := &RunResult{}
	for i := range due {
		rec := &due[i]

		if _, err := svc.wallets.GetByID(ctx, userID, rec.WalletID); err != nil {
			logger.Log.Warnw("skipping recurring transaction, wallet missing",
				"recurringID", rec.RecurringID, "walletID", rec.WalletID)
			result.Skipped = append(result.Skipped, rec.RecurringID)
			continue
		}
		if _, err := svc.categories.GetByID(ctx, userID, rec.CategoryID); err != nil {
			logger.Log.Warnw("skipping recurring transaction, category missing",
				"recurringID", rec.RecurringID, "categoryID", rec.CategoryID)
			result.Skipped = append(result.Skipped, rec.RecurringID)
			continue
		}

		materialized, err := svc.materialize(ctx, rec, now)
		if err != nil {
			return nil, err
		}
		result.Materialized = append(result.Materialized, materialized...)
	}

	return result, nil
}

// RunDueAll runs RunDue for every user with due templates, each in its own
// database transaction via runUser. One user's failure is logged and the
// batch continues.
func (svc *RecurringService) RunDueAll(ctx context.Context, runUser func(ctx context.Context, userID uuid.UUID) error) error {
	userIDs, err := svc.reader.ListUserIDsWithDue(ctx, svc.now())
	if err != nil {
		return err
	}

	for _, userID := range userIDs {
		if err := runUser(ctx, userID); err != nil {
			logger.Log.Errorw("recurring run failed for user", "userID", userID, "error", err)
		}
	}

	return nil
}

// materialize creates one transaction per missed period, dated at the missed
// run date, advancing the schedule after each created transaction.
func (svc *RecurringService) materialize(ctx context.Context, rec *models.RecurringTransactionDB, now time.Time) ([]models.TransactionDB, error) {
	var created []models.TransactionDB

	runDate := rec.NextRunDate
	for steps := 0; !runDate.After(now) && steps < maxCatchUpSteps; steps++ {
		txn := models.TransactionDB{
			TransactionID: uuid.New(),
			UserID:        rec.UserID,
			WalletID:      rec.WalletID,
			CategoryID:    rec.CategoryID,
			Amount:        rec.Amount,
			Type:          rec.Type,
			Description:   rec.Description,
			OccurredAt:    runDate,
		}

		if err := svc.txns.Save(ctx, txn); err != nil {
			logger.Log.Errorw("failed to materialize recurring transaction",
				"recurringID", rec.RecurringID, "error", err)
			return nil, err
		}
		if _, err := svc.ledger.ApplyDelta(ctx, rec.WalletID, txn.Signed()); err != nil {
			logger.Log.Errorw("failed to apply materialized transaction",
				"walletID", rec.WalletID, "error", err)
			return nil, err
		}

		runDate = rec.NextAfter(runDate)
		if err := svc.writer.AdvanceNextRun(ctx, rec.RecurringID, runDate); err != nil {
			logger.Log.Errorw("failed to advance recurring schedule",
				"recurringID", rec.RecurringID, "error", err)
			return nil, err
		}

		created = append(created, txn)
	}

	return created, nil
}
