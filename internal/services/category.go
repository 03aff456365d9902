package services

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"github.com/sbilibin2017/pf-wallet/internal/logger"
	"github.com/sbilibin2017/pf-wallet/internal/models"
)

// CategoryWriter defines category write operations used by services.
type CategoryWriter interface {
	Save(ctx context.Context, category models.CategoryDB) error
	Delete(ctx context.Context, userID, categoryID uuid.UUID) (int64, error)
}

// CategoryUsageReader counts references to a category from transactions,
// recurring templates and goals.
type CategoryUsageReader interface {
	CountReferences(ctx context.Context, categoryID uuid.UUID) (int64, error)
}

// CategoryService manages user categories. System categories (no owner) are
// visible to everyone but can never be modified or deleted through it.
type CategoryService struct {
	reader CategoryReader
	writer CategoryWriter
	usage  CategoryUsageReader
}

// NewCategoryService creates a new CategoryService.
func NewCategoryService(reader CategoryReader, writer CategoryWriter, usage CategoryUsageReader) *CategoryService {
	return &CategoryService{
		reader: reader,
		writer: writer,
		usage:  usage,
	}
}

// Create adds a category owned by the user.
func (svc *CategoryService) Create(ctx context.Context, userID uuid.UUID, name, categoryType string) (*models.CategoryDB, error) {
	if name == "" {
		return nil, ErrInvalidName
	}
	if categoryType != models.TypeIncome && categoryType != models.TypeExpense {
		return nil, ErrInvalidType
	}

	owner := userID
	category := models.CategoryDB{
		CategoryID: uuid.New(),
		UserID:     &owner,
		Name:       name,
		Type:       categoryType,
	}

	if err := svc.writer.Save(ctx, category); err != nil {
		logger.Log.Errorw("failed to save category", "userID", userID, "name", name, "error", err)
		return nil, err
	}

	return &category, nil
}

// List returns the system categories plus the user's own.
func (svc *CategoryService) List(ctx context.Context, userID uuid.UUID) ([]models.CategoryDB, error) {
	return svc.reader.ListForUser(ctx, userID)
}

// Delete removes a user-owned category. A category still referenced by a
// transaction, recurring template or goal stays put.
func (svc *CategoryService) Delete(ctx context.Context, userID, categoryID uuid.UUID) error {
	category, err := svc.reader.GetByID(ctx, userID, categoryID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrCategoryNotFound
		}
		return err
	}
	if category.UserID == nil {
		return ErrCategoryNotFound
	}

	count, err := svc.usage.CountReferences(ctx, categoryID)
	if err != nil {
		return err
	}
	if count > 0 {
		return ErrCategoryInUse
	}

	rows, err := svc.writer.Delete(ctx, userID, categoryID)
	if err != nil {
		logger.Log.Errorw("failed to delete category", "categoryID", categoryID, "error", err)
		return err
	}
	if rows == 0 {
		return ErrCategoryNotFound
	}

	return nil
}
