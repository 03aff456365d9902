package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/sbilibin2017/pf-wallet/internal/logger"
	"github.com/sbilibin2017/pf-wallet/internal/models"
)

// goalDeadlineWindow is how close a goal's end date must be before a
// deadline reminder fires.
const goalDeadlineWindow = 72 * time.Hour

// GoalStatus is the evaluated state of a goal at a point in time.
type GoalStatus struct {
	GoalID         uuid.UUID       `json:"goal_id"`
	CurrentAmount  decimal.Decimal `json:"current_amount"`
	IsNearLimit    bool            `json:"is_near_limit"`
	IsCrossed      bool            `json:"is_crossed"`
	IsNearDeadline bool            `json:"is_near_deadline"`
	IsSuccessful   bool            `json:"is_successful"`
}

// GoalReader defines goal read operations used by services.
type GoalReader interface {
	GetByID(ctx context.Context, userID, goalID uuid.UUID) (*models.GoalDB, error)
	ListByUserID(ctx context.Context, userID uuid.UUID) ([]models.GoalDB, error)
	ListActiveByUserID(ctx context.Context, userID uuid.UUID) ([]models.GoalDB, error)
	ListUserIDsWithActiveGoals(ctx context.Context) ([]uuid.UUID, error)
}

// GoalWriter defines goal write operations used by services.
type GoalWriter interface {
	Save(ctx context.Context, goal models.GoalDB) error
	Update(ctx context.Context, goal models.GoalDB) (int64, error)
	SetNotified(ctx context.Context, goalID uuid.UUID, nearLimit, exceeded, deadline, success bool) error
	Delete(ctx context.Context, userID, goalID uuid.UUID) (int64, error)
}

// GoalProgressReader aggregates transactions in a goal's scope.
type GoalProgressReader interface {
	SumInScope(ctx context.Context, userID, categoryID uuid.UUID, walletID *uuid.UUID, from, to *time.Time) (decimal.Decimal, error)
}

// SettingsReader reads a user's notification preferences.
type SettingsReader interface {
	GetSettings(ctx context.Context, userID uuid.UUID) (models.NotificationSettingsDB, error)
}

// Notifier delivers a notification to a user.
type Notifier interface {
	Notify(ctx context.Context, userID uuid.UUID, message string) (uuid.UUID, error)
}

// GoalService manages goals and evaluates their progress against transaction
// history. Each threshold crossing notifies at most once: the notified flags
// persisted on the goal row gate re-delivery across evaluations.
type GoalService struct {
	reader   GoalReader
	writer   GoalWriter
	progress GoalProgressReader
	settings SettingsReader
	notifier Notifier
	now      func() time.Time
}

// NewGoalService creates a new GoalService.
func NewGoalService(
	reader GoalReader,
	writer GoalWriter,
	progress GoalProgressReader,
	settings SettingsReader,
	notifier Notifier,
) *GoalService {
	return &GoalService{
		reader:   reader,
		writer:   writer,
		progress: progress,
		settings: settings,
		notifier: notifier,
		now:      time.Now,
	}
}

// Create makes a new goal.
func (svc *GoalService) Create(ctx context.Context, goal models.GoalDB) (*models.GoalDB, error) {
	if goal.TargetAmount.LessThanOrEqual(decimal.Zero) {
		return nil, ErrInvalidAmount
	}
	if goal.Type != models.TypeIncome && goal.Type != models.TypeExpense {
		return nil, ErrInvalidType
	}
	if goal.ThresholdPercent <= 0 || goal.ThresholdPercent > 100 {
		goal.ThresholdPercent = 80
	}

	goal.GoalID = uuid.New()
	goal.Active = true

	if err := svc.writer.Save(ctx, goal); err != nil {
		logger.Log.Errorw("failed to save goal", "userID", goal.UserID, "name", goal.Name, "error", err)
		return nil, err
	}

	return &goal, nil
}

// Update rewrites a goal's editable fields. Notified flags reset so the
// changed goal is re-evaluated from scratch.
func (svc *GoalService) Update(ctx context.Context, goal models.GoalDB) error {
	if goal.TargetAmount.LessThanOrEqual(decimal.Zero) {
		return ErrInvalidAmount
	}
	if goal.Type != models.TypeIncome && goal.Type != models.TypeExpense {
		return ErrInvalidType
	}

	rows, err := svc.writer.Update(ctx, goal)
	if err != nil {
		logger.Log.Errorw("failed to update goal", "goalID", goal.GoalID, "error", err)
		return err
	}
	if rows == 0 {
		return ErrGoalNotFound
	}
	return nil
}

// Delete removes a goal.
func (svc *GoalService) Delete(ctx context.Context, userID, goalID uuid.UUID) error {
	rows, err := svc.writer.Delete(ctx, userID, goalID)
	if err != nil {
		logger.Log.Errorw("failed to delete goal", "goalID", goalID, "error", err)
		return err
	}
	if rows == 0 {
		return ErrGoalNotFound
	}
	return nil
}

// List returns all goals owned by userID.
func (svc *GoalService) List(ctx context.Context, userID uuid.UUID) ([]models.GoalDB, error) {
	return svc.reader.ListByUserID(ctx, userID)
}

// Status evaluates one goal on demand.
func (svc *GoalService) Status(ctx context.Context, userID, goalID uuid.UUID) (*GoalStatus, error) {
	goal, err := svc.reader.GetByID(ctx, userID, goalID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrGoalNotFound
		}
		return nil, err
	}

	status, err := svc.Evaluate(ctx, goal)
	if err != nil {
		return nil, err
	}
	return status, nil
}

// Evaluate computes a goal's status from the transactions in its scope.
//
// An expense goal is a spending limit: the current amount is the magnitude of
// net spending in scope. It is near-limit in [threshold%*target, target) and
// crossed at or past target. An income goal is a savings target, successful
// at or past target. The deadline check fires when the end date is inside the
// lookahead window and the goal has not already finished.
func (svc *GoalService) Evaluate(ctx context.Context, goal *models.GoalDB) (*GoalStatus, error) {
	sum, err := svc.progress.SumInScope(ctx, goal.UserID, goal.CategoryID, goal.WalletID, goal.StartDate, goal.EndDate)
	if err != nil {
		logger.Log.Errorw("failed to sum goal scope", "goalID", goal.GoalID, "error", err)
		return nil, err
	}

	current := sum
	if goal.Type == models.TypeExpense {
		// Net spending is a negative signed sum; progress against a limit is
		// its magnitude.
		current = sum.Neg()
	}
	if current.IsNegative() {
		current = decimal.Zero
	}

	status := &GoalStatus{
		GoalID:        goal.GoalID,
		CurrentAmount: current,
	}

	threshold := goal.TargetAmount.
		Mul(decimal.NewFromInt(int64(goal.ThresholdPercent))).
		Div(decimal.NewFromInt(100))

	switch goal.Type {
	case models.TypeExpense:
		status.IsCrossed = current.GreaterThanOrEqual(goal.TargetAmount)
		status.IsNearLimit = !status.IsCrossed && current.GreaterThanOrEqual(threshold)
	case models.TypeIncome:
		status.IsSuccessful = current.GreaterThanOrEqual(goal.TargetAmount)
	}

	if goal.EndDate != nil && goal.Active && !status.IsCrossed && !status.IsSuccessful {
		until := goal.EndDate.Sub(svc.now())
		status.IsNearDeadline = until >= 0 && until <= goalDeadlineWindow
	}

	return status, nil
}

// CheckUser evaluates all of a user's active goals and emits one
// notification per newly-true state, honoring the user's preferences.
func (svc *GoalService) CheckUser(ctx context.Context, userID uuid.UUID) ([]GoalStatus, error) {
	goals, err := svc.reader.ListActiveByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	settings, err := svc.settings.GetSettings(ctx, userID)
	if err != nil {
		logger.Log.Errorw("failed to read notification settings", "userID", userID, "error", err)
		return nil, err
	}

	statuses := make([]GoalStatus, 0, len(goals))
	for i := range goals {
		goal := &goals[i]

		status, err := svc.Evaluate(ctx, goal)
		if err != nil {
			logger.Log.Errorw("goal evaluation failed", "goalID", goal.GoalID, "error", err)
			continue
		}
		statuses = append(statuses, *status)

		svc.notifyTransitions(ctx, goal, status, settings)
	}

	return statuses, nil
}

// CheckAll runs CheckUser for every user with active goals. Users are
// processed independently; one failure never aborts the batch.
func (svc *GoalService) CheckAll(ctx context.Context) error {
	userIDs, err := svc.reader.ListUserIDsWithActiveGoals(ctx)
	if err != nil {
		return err
	}

	for _, userID := range userIDs {
		if _, err := svc.CheckUser(ctx, userID); err != nil {
			logger.Log.Errorw("goal check failed for user", "userID", userID, "error", err)
		}
	}

	return nil
}

// notifyTransitions sends at most one notification per state that is true
// now but has not been notified before, then persists the fired flags.
func (svc *GoalService) notifyTransitions(ctx context.Context, goal *models.GoalDB, status *GoalStatus, settings models.NotificationSettingsDB) {
	var nearLimit, exceeded, deadline, success bool

	if status.IsNearLimit && !goal.NearLimitNotified && settings.NotifyNearLimit {
		msg := fmt.Sprintf("Goal %q is at %s of its %s limit", goal.Name, status.CurrentAmount, goal.TargetAmount)
		if svc.send(ctx, goal.UserID, msg) {
			nearLimit = true
		}
	}
	if status.IsCrossed && !goal.ExceededNotified && settings.NotifyExceeded {
		msg := fmt.Sprintf("Goal %q exceeded its limit of %s", goal.Name, goal.TargetAmount)
		if svc.send(ctx, goal.UserID, msg) {
			exceeded = true
		}
	}
	if status.IsNearDeadline && !goal.DeadlineNotified && settings.NotifyDeadline {
		msg := fmt.Sprintf("Goal %q ends on %s", goal.Name, goal.EndDate.Format("2006-01-02"))
		if svc.send(ctx, goal.UserID, msg) {
			deadline = true
		}
	}
	if status.IsSuccessful && !goal.SuccessNotified && settings.NotifySuccess {
		msg := fmt.Sprintf("Congratulations! Goal %q reached its target of %s", goal.Name, goal.TargetAmount)
		if svc.send(ctx, goal.UserID, msg) {
			success = true
		}
	}

	if nearLimit || exceeded || deadline || success {
		if err := svc.writer.SetNotified(ctx, goal.GoalID, nearLimit, exceeded, deadline, success); err != nil {
			logger.Log.Errorw("failed to persist notified flags", "goalID", goal.GoalID, "error", err)
		}
	}
}

func (svc *GoalService) send(ctx context.Context, userID uuid.UUID, message string) bool {
	if _, err := svc.notifier.Notify(ctx, userID, message); err != nil {
		logger.Log.Errorw("failed to send goal notification", "userID", userID, "error", err)
		return false
	}
	return true
}
