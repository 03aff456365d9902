package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/google/uuid"

	"github.com/sbilibin2017/pf-wallet/internal/jwt"
	"github.com/sbilibin2017/pf-wallet/internal/logger"
	"github.com/sbilibin2017/pf-wallet/internal/models"
)

// ListCategoriesTokener defines only the methods needed by this handler.
type ListCategoriesTokener interface {
	GetTokenFromRequest(ctx context.Context, r *http.Request) (string, error)
	GetClaims(ctx context.Context, tokenString string) (*jwt.Claims, error)
}

// CategoryLister defines the interface that the service must implement.
type CategoryLister interface {
	List(ctx context.Context, userID uuid.UUID) ([]models.CategoryDB, error)
}

// ListCategoriesResponse represents the category list response
// swagger:model ListCategoriesResponse
type ListCategoriesResponse struct {
	Categories []CategoryResponse `json:"categories"`
}

// NewListCategoriesHandler returns an HTTP handler listing the system
// categories plus the user's own.
// @Summary List categories
// @Tags categories
// @Produce json
// @Success 200 {object} handlers.ListCategoriesResponse "Categories returned"
// @Failure 401 {object} handlers.CategoryErrorResponse "Unauthorized"
// @Router /categories [get]
// @Security BearerAuth
func NewListCategoriesHandler(
	svc CategoryLister,
	tokenGetter ListCategoriesTokener,
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

		categories, err := svc.List(ctx, claims.UserID)
		if err != nil {
			logger.Log.Errorw("failed to list categories", "userID", claims.UserID, "error", err)
			w.WriteHeader(http.StatusInternalServerError)
			json.NewEncoder(w).Encode(CategoryErrorResponse{Error: "Internal server error"})
			return
		}

		resp := ListCategoriesResponse{Categories: make([]CategoryResponse, 0, len(categories))}
		for _, category := range categories {
			resp.Categories = append(resp.Categories, toCategoryResponse(category))
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(resp)
	}
}
