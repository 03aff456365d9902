package repositories

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/sbilibin2017/pf-wallet/internal/logger"
	"github.com/sbilibin2017/pf-wallet/internal/models"
)

// CategoryWriteRepository handles category write operations
type CategoryWriteRepository struct {
	db       *sqlx.DB
	txGetter func(ctx context.Context) *sqlx.Tx
}

func NewCategoryWriteRepository(db *sqlx.DB, txGetter func(ctx context.Context) *sqlx.Tx) *CategoryWriteRepository {
	return &CategoryWriteRepository{db: db, txGetter: txGetter}
}

func (r *CategoryWriteRepository) executor(ctx context.Context) sqlx.ExtContext {
	if r.txGetter != nil {
		if tx := r.txGetter(ctx); tx != nil {
			return tx
		}
	}
	return r.db
}

// Save inserts a user category.
func (r *CategoryWriteRepository) Save(ctx context.Context, category models.CategoryDB) error {
	query := `
		INSERT INTO categories (category_id, user_id, name, type, created_at)
		VALUES ($1, $2, $3, $4, NOW())
	`
	args := []any{category.CategoryID, category.UserID, category.Name, category.Type}

	_, err := r.executor(ctx).ExecContext(ctx, query, args...)

	logger.Log.Infow(
		"query", strings.Join(strings.Fields(query), " "),
		"args", args,
		"error", err,
	)

	return err
}

// Delete removes a user category. System categories (user_id IS NULL) cannot
// be deleted through this path.
func (r *CategoryWriteRepository) Delete(ctx context.Context, userID, categoryID uuid.UUID) (int64, error) {
	query := `
		DELETE FROM categories WHERE category_id = $1 AND user_id = $2
	`
	args := []any{categoryID, userID}

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

// CategoryReadRepository handles category read operations
type CategoryReadRepository struct {
	db       *sqlx.DB
	txGetter func(ctx context.Context) *sqlx.Tx
}

func NewCategoryReadRepository(db *sqlx.DB, txGetter func(ctx context.Context) *sqlx.Tx) *CategoryReadRepository {
	return &CategoryReadRepository{db: db, txGetter: txGetter}
}

func (r *CategoryReadRepository) executor(ctx context.Context) sqlx.ExtContext {
	if r.txGetter != nil {
		if tx := r.txGetter(ctx); tx != nil {
			return tx
		}
	}
	return r.db
}

// GetByID returns the category when it is global or owned by userID.
func (r *CategoryReadRepository) GetByID(ctx context.Context, userID, categoryID uuid.UUID) (*models.CategoryDB, error) {
	const query = `
		SELECT category_id, user_id, name, type, created_at
		FROM categories
		WHERE category_id = $1 AND (user_id = $2 OR user_id IS NULL)
	`

	var category models.CategoryDB
	err := sqlx.GetContext(ctx, r.executor(ctx), &category, query, categoryID, userID)

	logger.Log.Infow(
		"query", strings.Join(strings.Fields(query), " "),
		"args", []any{categoryID, userID},
		"error", err,
	)

	if err != nil {
		return nil, err
	}
	return &category, nil
}

// GetSystem returns the global category with the given name and type.
func (r *CategoryReadRepository) GetSystem(ctx context.Context, name, categoryType string) (*models.CategoryDB, error) {
	const query = `
		SELECT category_id, user_id, name, type, created_at
		FROM categories
		WHERE user_id IS NULL AND name = $1 AND type = $2
	`

	var category models.CategoryDB
	err := sqlx.GetContext(ctx, r.executor(ctx), &category, query, name, categoryType)

	logger.Log.Infow(
		"query", strings.Join(strings.Fields(query), " "),
		"args", []any{name, categoryType},
		"error", err,
	)

	if err != nil {
		return nil, err
	}
	return &category, nil
}

// CountReferences returns how many transactions, recurring templates and
// goals reference the category.
func (r *CategoryReadRepository) CountReferences(ctx context.Context, categoryID uuid.UUID) (int64, error) {
	const query = `
		SELECT (SELECT COUNT(*) FROM transactions WHERE category_id = $1)
		     + (SELECT COUNT(*) FROM recurring_transactions WHERE category_id = $1)
		     + (SELECT COUNT(*) FROM goals WHERE category_id = $1)
	`

	var count int64
	err := sqlx.GetContext(ctx, r.executor(ctx), &count, query, categoryID)

	logger.Log.Infow(
		"query", strings.Join(strings.Fields(query), " "),
		"args", []any{categoryID},
		"result", count,
		"error", err,
	)

	return count, err
}

// ListForUser returns global categories plus the user's own, name order.
func (r *CategoryReadRepository) ListForUser(ctx context.Context, userID uuid.UUID) ([]models.CategoryDB, error) {
	const query = `
		SELECT category_id, user_id, name, type, created_at
		FROM categories
		WHERE user_id = $1 OR user_id IS NULL
		ORDER BY name
	`

	var categories []models.CategoryDB
	err := sqlx.SelectContext(ctx, r.executor(ctx), &categories, query, userID)

	logger.Log.Infow(
		"query", strings.Join(strings.Fields(query), " "),
		"args", []any{userID},
		"result", len(categories),
		"error", err,
	)

	return categories, err
}
