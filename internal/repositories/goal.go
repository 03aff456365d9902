package repositories

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/sbilibin2017/pf-wallet/internal/logger"
	"github.com/sbilibin2017/pf-wallet/internal/models"
)

const goalColumns = `
	goal_id, user_id, category_id, wallet_id, name, type, target_amount,
	threshold_percent, start_date, end_date, active,
	near_limit_notified, exceeded_notified, deadline_notified, success_notified,
	created_at, updated_at
`

// GoalWriteRepository handles goal write operations
type GoalWriteRepository struct {
	db       *sqlx.DB
	txGetter func(ctx context.Context) *sqlx.Tx
}

func NewGoalWriteRepository(db *sqlx.DB, txGetter func(ctx context.Context) *sqlx.Tx) *GoalWriteRepository {
	return &GoalWriteRepository{db: db, txGetter: txGetter}
}

func (r *GoalWriteRepository) executor(ctx context.Context) sqlx.ExtContext {
	if r.txGetter != nil {
		if tx := r.txGetter(ctx); tx != nil {
			return tx
		}
	}
	return r.db
}

// Save inserts a new goal.
func (r *GoalWriteRepository) Save(ctx context.Context, goal models.GoalDB) error {
	query := `
		INSERT INTO goals
			(goal_id, user_id, category_id, wallet_id, name, type, target_amount,
			 threshold_percent, start_date, end_date, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, NOW(), NOW())
	`
	args := []any{
		goal.GoalID, goal.UserID, goal.CategoryID, goal.WalletID, goal.Name, goal.Type,
		goal.TargetAmount, goal.ThresholdPercent, goal.StartDate, goal.EndDate, goal.Active,
	}

	_, err := r.executor(ctx).ExecContext(ctx, query, args...)

	logger.Log.Infow(
		"query", strings.Join(strings.Fields(query), " "),
		"args", args,
		"error", err,
	)

	return err
}

// Update rewrites the goal's user-editable fields and resets all notified
// flags, so a changed target or window is evaluated afresh.
func (r *GoalWriteRepository) Update(ctx context.Context, goal models.GoalDB) (int64, error) {
	query := `
		UPDATE goals
		SET category_id = $3, wallet_id = $4, name = $5, type = $6,
		    target_amount = $7, threshold_percent = $8, start_date = $9, end_date = $10,
		    active = $11,
		    near_limit_notified = FALSE, exceeded_notified = FALSE,
		    deadline_notified = FALSE, success_notified = FALSE,
		    updated_at = NOW()
		WHERE goal_id = $1 AND user_id = $2
	`
	args := []any{
		goal.GoalID, goal.UserID, goal.CategoryID, goal.WalletID, goal.Name, goal.Type,
		goal.TargetAmount, goal.ThresholdPercent, goal.StartDate, goal.EndDate, goal.Active,
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

// SetNotified marks notification flags that have fired. Flags only ever move
// from false to true here; Update is the single reset path.
func (r *GoalWriteRepository) SetNotified(ctx context.Context, goalID uuid.UUID, nearLimit, exceeded, deadline, success bool) error {
	query := `
		UPDATE goals
		SET near_limit_notified = near_limit_notified OR $2,
		    exceeded_notified = exceeded_notified OR $3,
		    deadline_notified = deadline_notified OR $4,
		    success_notified = success_notified OR $5,
		    updated_at = NOW()
		WHERE goal_id = $1
	`
	args := []any{goalID, nearLimit, exceeded, deadline, success}

	_, err := r.executor(ctx).ExecContext(ctx, query, args...)

	logger.Log.Infow(
		"query", strings.Join(strings.Fields(query), " "),
		"args", args,
		"error", err,
	)

	return err
}

// Delete removes a goal owned by userID.
func (r *GoalWriteRepository) Delete(ctx context.Context, userID, goalID uuid.UUID) (int64, error) {
	query := `
		DELETE FROM goals WHERE goal_id = $1 AND user_id = $2
	`
	args := []any{goalID, userID}

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

// GoalReadRepository handles goal read operations
type GoalReadRepository struct {
	db       *sqlx.DB
	txGetter func(ctx context.Context) *sqlx.Tx
}

func NewGoalReadRepository(db *sqlx.DB, txGetter func(ctx context.Context) *sqlx.Tx) *GoalReadRepository {
	return &GoalReadRepository{db: db, txGetter: txGetter}
}

func (r *GoalReadRepository) executor(ctx context.Context) sqlx.ExtContext {
	if r.txGetter != nil {
		if tx := r.txGetter(ctx); tx != nil {
			return tx
		}
	}
	return r.db
}

// GetByID returns the goal if it exists and belongs to userID.
func (r *GoalReadRepository) GetByID(ctx context.Context, userID, goalID uuid.UUID) (*models.GoalDB, error) {
	query := `SELECT ` + goalColumns + ` FROM goals WHERE goal_id = $1 AND user_id = $2`

	var goal models.GoalDB
	err := sqlx.GetContext(ctx, r.executor(ctx), &goal, query, goalID, userID)

	logger.Log.Infow(
		"query", strings.Join(strings.Fields(query), " "),
		"args", []any{goalID, userID},
		"error", err,
	)

	if err != nil {
		return nil, err
	}
	return &goal, nil
}

// ListByUserID returns all goals owned by userID.
func (r *GoalReadRepository) ListByUserID(ctx context.Context, userID uuid.UUID) ([]models.GoalDB, error) {
	query := `SELECT ` + goalColumns + ` FROM goals WHERE user_id = $1 ORDER BY created_at`

	var goals []models.GoalDB
	err := sqlx.SelectContext(ctx, r.executor(ctx), &goals, query, userID)

	logger.Log.Infow(
		"query", strings.Join(strings.Fields(query), " "),
		"args", []any{userID},
		"result", len(goals),
		"error", err,
	)

	return goals, err
}

// ListActiveByUserID returns the user's active goals.
func (r *GoalReadRepository) ListActiveByUserID(ctx context.Context, userID uuid.UUID) ([]models.GoalDB, error) {
	query := `SELECT ` + goalColumns + ` FROM goals WHERE user_id = $1 AND active ORDER BY created_at`

	var goals []models.GoalDB
	err := sqlx.SelectContext(ctx, r.executor(ctx), &goals, query, userID)

	logger.Log.Infow(
		"query", strings.Join(strings.Fields(query), " "),
		"args", []any{userID},
		"result", len(goals),
		"error", err,
	)

	return goals, err
}

// ListUserIDsWithActiveGoals returns the distinct owners of active goals,
// the population the periodic evaluation batch walks.
func (r *GoalReadRepository) ListUserIDsWithActiveGoals(ctx context.Context) ([]uuid.UUID, error) {
	const query = `
		SELECT DISTINCT user_id FROM goals WHERE active
	`

	var userIDs []uuid.UUID
	err := sqlx.SelectContext(ctx, r.executor(ctx), &userIDs, query)

	logger.Log.Infow(
		"query", strings.Join(strings.Fields(query), " "),
		"result", len(userIDs),
		"error", err,
	)

	return userIDs, err
}
