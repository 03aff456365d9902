package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/sbilibin2017/pf-wallet/internal/jwt"
	"github.com/sbilibin2017/pf-wallet/internal/logger"
	"github.com/sbilibin2017/pf-wallet/internal/services"
)

// DeleteCategoryTokener defines only the methods needed by this handler.
type DeleteCategoryTokener interface {
	GetTokenFromRequest(ctx context.Context, r *http.Request) (string, error)
	GetClaims(ctx context.Context, tokenString string) (*jwt.Claims, error)
}

// CategoryDeleter defines the interface that the service must implement.
type CategoryDeleter interface {
	Delete(ctx context.Context, userID, categoryID uuid.UUID) error
}

// DeleteCategoryResponse represents a successful category deletion
// swagger:model DeleteCategoryResponse
type DeleteCategoryResponse struct {
	// Success message
	// default: Category deleted successfully
	Message string `json:"message"`
}

// NewDeleteCategoryHandler returns an HTTP handler for deleting a user
// category. System categories and categories still referenced by
// transactions, templates or goals cannot be deleted.
// @Summary Delete a category
// @Tags categories
// @Produce json
// @Param categoryID path string true "Category ID"
// @Success 200 {object} handlers.DeleteCategoryResponse "Category deleted"
// @Failure 400 {object} handlers.CategoryErrorResponse "Invalid category ID or category in use"
// @Failure 401 {object} handlers.CategoryErrorResponse "Unauthorized"
// @Failure 404 {object} handlers.CategoryErrorResponse "Category not found"
// @Router /categories/{categoryID} [delete]
// @Security BearerAuth
func NewDeleteCategoryHandler(
	svc CategoryDeleter,
	tokenGetter DeleteCategoryTokener,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		tokenStr, err := tokenGetter.GetTokenFromRequest(ctx, r)
		if err != nil {
			logger.Log.Errorw("failed to get token from request", "error", err)
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(CategoryErrorResponse{Error: "Unauthorized"})
			return
		}

		claims, err := tokenGetter.GetClaims(ctx, tokenStr)
		if err != nil {
			logger.Log.Errorw("failed to get claims from token", "error", err)
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(CategoryErrorResponse{Error: "Unauthorized"})
			return
		}

		categoryID, err := uuid.Parse(chi.URLParam(r, "categoryID"))
		if err != nil {
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(CategoryErrorResponse{Error: "Invalid category ID"})
			return
		}

		err = svc.Delete(ctx, claims.UserID, categoryID)
		if err != nil {
			switch {
			case errors.Is(err, services.ErrCategoryInUse):
				w.WriteHeader(http.StatusBadRequest)
				json.NewEncoder(w).Encode(CategoryErrorResponse{Error: "Category is still in use"})
			case errors.Is(err, services.ErrCategoryNotFound):
				w.WriteHeader(http.StatusNotFound)
				json.NewEncoder(w).Encode(CategoryErrorResponse{Error: "Category not found"})
			default:
				logger.Log.Errorw("failed to delete category", "categoryID", categoryID, "error", err)
				w.WriteHeader(http.StatusInternalServerError)
				json.NewEncoder(w).Encode(CategoryErrorResponse{Error: "Internal server error"})
			}
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(DeleteCategoryResponse{Message: "Category deleted successfully"})
	}
}
