package repositories

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/sbilibin2017/pf-wallet/internal/logger"
	"github.com/sbilibin2017/pf-wallet/internal/models"
)

const recurringColumns = `
	recurring_id, user_id, wallet_id, category_id, amount, type, description,
	frequency, next_run_date, created_at, updated_at
`

// RecurringWriteRepository handles recurring-transaction write operations
type RecurringWriteRepository struct {
	db       *sqlx.DB
	txGetter func(ctx context.Context) *sqlx.Tx
}

func NewRecurringWriteRepository(db *sqlx.DB, txGetter func(ctx context.Context) *sqlx.Tx) *RecurringWriteRepository {
	return &RecurringWriteRepository{db: db, txGetter: txGetter}
}

func (r *RecurringWriteRepository) executor(ctx context.Context) sqlx.ExtContext {
	if r.txGetter != nil {
		if tx := r.txGetter(ctx); tx != nil {
			return tx
		}
	}
	return r.db
}

// Save inserts a recurring transaction template.
func (r *RecurringWriteRepository) Save(ctx context.Context, rec models.RecurringTransactionDB) error {
	query := `
		INSERT INTO recurring_transactions
			(recurring_id, user_id, wallet_id, category_id, amount, type, description,
			 frequency, next_run_date, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW(), NOW())
	`
	args := []any{
		rec.RecurringID, rec.UserID, rec.WalletID, rec.CategoryID, rec.Amount,
		rec.Type, rec.Description, rec.Frequency, rec.NextRunDate,
	}

	_, err := r.executor(ctx).ExecContext(ctx, query, args...)

	logger.Log.Infow(
		"query", strings.Join(strings.Fields(query), " "),
		"args", args,
		"error", err,
	)

	return err
}

// Update rewrites a template's fields. The WHERE clause refuses to move
// next_run_date backward.
func (r *RecurringWriteRepository) Update(ctx context.Context, rec models.RecurringTransactionDB) (int64, error) {
	query := `
		UPDATE recurring_transactions
		SET wallet_id = $3, category_id = $4, amount = $5, type = $6,
		    description = $7, frequency = $8, next_run_date = $9, updated_at = NOW()
		WHERE recurring_id = $1 AND user_id = $2 AND next_run_date <= $9
	`
	args := []any{
		rec.RecurringID, rec.UserID, rec.WalletID, rec.CategoryID, rec.Amount,
		rec.Type, rec.Description, rec.Frequency, rec.NextRunDate,
	}

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

// AdvanceNextRun moves the schedule forward. nextRun must be later than the
// stored date; the guard makes the advance monotonic.
func (r *RecurringWriteRepository) AdvanceNextRun(ctx context.Context, recurringID uuid.UUID, nextRun time.Time) error {
	query := `
		UPDATE recurring_transactions
		SET next_run_date = $2, updated_at = NOW()
		WHERE recurring_id = $1 AND next_run_date < $2
	`
	args := []any{recurringID, nextRun}

	_, err := r.executor(ctx).ExecContext(ctx, query, args...)

	logger.Log.Infow(
		"query", strings.Join(strings.Fields(query), " "),
		"args", args,
		"error", err,
	)

	return err
}

// Delete removes a template owned by userID.
func (r *RecurringWriteRepository) Delete(ctx context.Context, userID, recurringID uuid.UUID) (int64, error) {
	query := `
		DELETE FROM recurring_transactions WHERE recurring_id = $1 AND user_id = $2
	`
	args := []any{recurringID, userID}

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

// RecurringReadRepository handles recurring-transaction read operations
type RecurringReadRepository struct {
	db       *sqlx.DB
	txGetter func(ctx context.Context) *sqlx.Tx
}

func NewRecurringReadRepository(db *sqlx.DB, txGetter func(ctx context.Context) *sqlx.Tx) *RecurringReadRepository {
	return &RecurringReadRepository{db: db, txGetter: txGetter}
}

func (r *RecurringReadRepository) executor(ctx context.Context) sqlx.ExtContext {
	if r.txGetter != nil {
		if tx := r.txGetter(ctx); tx != nil {
			return tx
		}
	}
	return r.db
}

// GetByID returns the template if it exists and belongs to userID.
func (r *RecurringReadRepository) GetByID(ctx context.Context, userID, recurringID uuid.UUID) (*models.RecurringTransactionDB, error) {
	query := `SELECT ` + recurringColumns + ` FROM recurring_transactions WHERE recurring_id = $1 AND user_id = $2`

	var rec models.RecurringTransactionDB
	err := sqlx.GetContext(ctx, r.executor(ctx), &rec, query, recurringID, userID)

	logger.Log.Infow(
		"query", strings.Join(strings.Fields(query), " "),
		"args", []any{recurringID, userID},
		"error", err,
	)

	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// ListByUserID returns all templates owned by userID.
func (r *RecurringReadRepository) ListByUserID(ctx context.Context, userID uuid.UUID) ([]models.RecurringTransactionDB, error) {
	query := `SELECT ` + recurringColumns + ` FROM recurring_transactions WHERE user_id = $1 ORDER BY next_run_date`

	var recs []models.RecurringTransactionDB
	err := sqlx.SelectContext(ctx, r.executor(ctx), &recs, query, userID)

	logger.Log.Infow(
		"query", strings.Join(strings.Fields(query), " "),
		"args", []any{userID},
		"result", len(recs),
		"error", err,
	)

	return recs, err
}

// ListDueByUserID returns the user's templates with next_run_date at or
// before now.
func (r *RecurringReadRepository) ListDueByUserID(ctx context.Context, userID uuid.UUID, now time.Time) ([]models.RecurringTransactionDB, error) {
	query := `SELECT ` + recurringColumns + ` FROM recurring_transactions WHERE user_id = $1 AND next_run_date <= $2 ORDER BY next_run_date`

	var recs []models.RecurringTransactionDB
	err := sqlx.SelectContext(ctx, r.executor(ctx), &recs, query, userID, now)

	logger.Log.Infow(
		"query", strings.Join(strings.Fields(query), " "),
		"args", []any{userID, now},
		"result", len(recs),
		"error", err,
	)

	return recs, err
}

// ListUserIDsWithDue returns the distinct owners of due templates.
func (r *RecurringReadRepository) ListUserIDsWithDue(ctx context.Context, now time.Time) ([]uuid.UUID, error) {
	const query = `
		SELECT DISTINCT user_id FROM recurring_transactions WHERE next_run_date <= $1
	`

	var userIDs []uuid.UUID
	err := sqlx.SelectContext(ctx, r.executor(ctx), &userIDs, query, now)

	logger.Log.Infow(
		"query", strings.Join(strings.Fields(query), " "),
		"args", []any{now},
		"result", len(userIDs),
		"error", err,
	)

	return userIDs, err
}
