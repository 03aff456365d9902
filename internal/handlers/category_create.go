package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"

	"github.com/sbilibin2017/pf-wallet/internal/jwt"
	"github.com/sbilibin2017/pf-wallet/internal/logger"
	"github.com/sbilibin2017/pf-wallet/internal/models"
	"github.com/sbilibin2017/pf-wallet/internal/services"
)

// CreateCategoryTokener defines only the methods needed by this handler.
type CreateCategoryTokener interface {
	GetTokenFromRequest(ctx context.Context, r *http.Request) (string, error)
	GetClaims(ctx context.Context, tokenString string) (*jwt.Claims, error)
}

// CategoryCreator defines the interface that the service must implement.
type CategoryCreator interface {
	Create(ctx context.Context, userID uuid.UUID, name, categoryType string) (*models.CategoryDB, error)
}

// CreateCategoryRequest represents the JSON body for creating a category
// swagger:model CreateCategoryRequest
type CreateCategoryRequest struct {
	// Category name
	// required: true
	// default: Groceries
	Name string `json:"name"`

	// income or expense
	// required: true
	// default: expense
	Type string `json:"type"`
}

// CategoryResponse represents a category returned by the API
// swagger:model CategoryResponse
type CategoryResponse struct {
	CategoryID uuid.UUID `json:"category_id"`
	Name       string    `json:"name"`
	Type       string    `json:"type"`
	System     bool      `json:"system"`
}

// CategoryErrorResponse represents an error response for category endpoints
// swagger:model CategoryErrorResponse
type CategoryErrorResponse struct {
	// Error message
	// default: Invalid name or type
	Error string `json:"error"`
}

func toCategoryResponse(c models.CategoryDB) CategoryResponse {
	return CategoryResponse{
		CategoryID: c.CategoryID,
		Name:       c.Name,
		Type:       c.Type,
		System:     c.UserID == nil,
	}
}

// NewCreateCategoryHandler returns an HTTP handler for creating a user category.
// @Summary Create a category
// @Tags categories
// @Accept json
// @Produce json
// @Param request body handlers.CreateCategoryRequest true "Create Category Request"
// @Success 201 {object} handlers.CategoryResponse "Category created"
// @Failure 400 {object} handlers.CategoryErrorResponse "Invalid name or type"
// @Failure 401 {object} handlers.CategoryErrorResponse "Unauthorized"
// @Router /categories [post]
// @Security BearerAuth
func NewCreateCategoryHandler(
	svc CategoryCreator,
	tokenGetter CreateCategoryTokener,
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

		var req CreateCategoryRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			logger.Log.Errorw("failed to decode create category request", "error", err)
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(CategoryErrorResponse{Error: "Invalid request body"})
			return
		}

		category, err := svc.Create(ctx, claims.UserID, req.Name, req.Type)
		if err != nil {
			switch {
			case errors.Is(err, services.ErrInvalidName),
				errors.Is(err, services.ErrInvalidType):
				w.WriteHeader(http.StatusBadRequest)
				json.NewEncoder(w).Encode(CategoryErrorResponse{Error: "Invalid name or type"})
			default:
				logger.Log.Errorw("failed to create category", "userID", claims.UserID, "error", err)
				w.WriteHeader(http.StatusInternalServerError)
				json.NewEncoder(w).Encode(CategoryErrorResponse{Error: "Internal server error"})
			}
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(toCategoryResponse(*category))
	}
}
