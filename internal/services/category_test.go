package services_test

import (
	"context"
	"database/sql"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/sbilibin2017/pf-wallet/internal/models"
	"github.com/sbilibin2017/pf-wallet/internal/services"
)

func TestCategoryService_Create(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockReader := services.NewMockCategoryReader(ctrl)
	mockWriter := services.NewMockCategoryWriter(ctrl)
	mockUsage := services.NewMockCategoryUsageReader(ctrl)

	svc := services.NewCategoryService(mockReader, mockWriter, mockUsage)
	userID := uuid.New()

	t.Run("creates an owned category", func(t *testing.T) {
		mockWriter.EXPECT().Save(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, c models.CategoryDB) error {
				assert.NotNil(t, c.UserID)
				assert.Equal(t, userID, *c.UserID)
				return nil
			})

		category, err := svc.Create(context.Background(), userID, "Groceries", models.TypeExpense)
		assert.NoError(t, err)
		assert.Equal(t, "Groceries", category.Name)
		assert.Equal(t, models.TypeExpense, category.Type)
	})

	t.Run("empty name is rejected", func(t *testing.T) {
		_, err := svc.Create(context.Background(), userID, "", models.TypeExpense)
		assert.ErrorIs(t, err, services.ErrInvalidName)
	})

	t.Run("unknown type is rejected", func(t *testing.T) {
		_, err := svc.Create(context.Background(), userID, "Groceries", "transfer")
		assert.ErrorIs(t, err, services.ErrInvalidType)
	})
}

func TestCategoryService_Delete(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockReader := services.NewMockCategoryReader(ctrl)
	mockWriter := services.NewMockCategoryWriter(ctrl)
	mockUsage := services.NewMockCategoryUsageReader(ctrl)

	svc := services.NewCategoryService(mockReader, mockWriter, mockUsage)

	userID := uuid.New()
	categoryID := uuid.New()
	owner := userID
	owned := &models.CategoryDB{CategoryID: categoryID, UserID: &owner, Name: "Groceries", Type: models.TypeExpense}

	t.Run("unused owned category is deleted", func(t *testing.T) {
		mockReader.EXPECT().GetByID(gomock.Any(), userID, categoryID).Return(owned, nil)
		mockUsage.EXPECT().CountReferences(gomock.Any(), categoryID).Return(int64(0), nil)
		mockWriter.EXPECT().Delete(gomock.Any(), userID, categoryID).Return(int64(1), nil)

		assert.NoError(t, svc.Delete(context.Background(), userID, categoryID))
	})

	t.Run("referenced category stays put", func(t *testing.T) {
		mockReader.EXPECT().GetByID(gomock.Any(), userID, categoryID).Return(owned, nil)
		mockUsage.EXPECT().CountReferences(gomock.Any(), categoryID).Return(int64(3), nil)

		assert.ErrorIs(t, svc.Delete(context.Background(), userID, categoryID), services.ErrCategoryInUse)
	})

	t.Run("system category cannot be deleted", func(t *testing.T) {
		system := &models.CategoryDB{CategoryID: categoryID, Name: models.InternalTransferCategory, Type: models.TypeExpense}
		mockReader.EXPECT().GetByID(gomock.Any(), userID, categoryID).Return(system, nil)

		assert.ErrorIs(t, svc.Delete(context.Background(), userID, categoryID), services.ErrCategoryNotFound)
	})

	t.Run("missing category", func(t *testing.T) {
		mockReader.EXPECT().GetByID(gomock.Any(), userID, categoryID).Return(nil, sql.ErrNoRows)

		assert.ErrorIs(t, svc.Delete(context.Background(), userID, categoryID), services.ErrCategoryNotFound)
	})
}

func TestCategoryService_List(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockReader := services.NewMockCategoryReader(ctrl)
	svc := services.NewCategoryService(mockReader, services.NewMockCategoryWriter(ctrl), services.NewMockCategoryUsageReader(ctrl))

	userID := uuid.New()
	want := []models.CategoryDB{
		{CategoryID: uuid.New(), Name: models.InternalTransferCategory, Type: models.TypeExpense},
		{CategoryID: uuid.New(), UserID: &userID, Name: "Groceries", Type: models.TypeExpense},
	}
	mockReader.EXPECT().ListForUser(gomock.Any(), userID).Return(want, nil)

	got, err := svc.List(context.Background(), userID)
	assert.NoError(t, err)
	assert.Equal(t, want, got)
}
