package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/sbilibin2017/pf-wallet/internal/jwt"
	"github.com/sbilibin2017/pf-wallet/internal/logger"
	"github.com/sbilibin2017/pf-wallet/internal/models"
	"github.com/sbilibin2017/pf-wallet/internal/services"
)

// CreateGoalTokener defines only the methods needed by this handler.
type CreateGoalTokener interface {
	GetTokenFromRequest(ctx context.Context, r *http.Request) (string, error)
	GetClaims(ctx context.Context, tokenString string) (*jwt.Claims, error)
}

// GoalCreator defines the interface that the service must implement.
type GoalCreator interface {
	Create(ctx context.Context, goal models.GoalDB) (*models.GoalDB, error)
}

// GoalRequest represents the JSON body for creating or updating a goal
// swagger:model GoalRequest
type GoalRequest struct {
	// Category the goal tracks
	// required: true
	CategoryID uuid.UUID `json:"category_id"`

	// Optional wallet scope
	WalletID *uuid.UUID `json:"wallet_id"`

	// Display name
	// required: true
	// default: Monthly groceries
	Name string `json:"name"`

	// expense for a spending limit, income for a savings target
	// required: true
	// default: expense
	Type string `json:"type"`

	// Limit or target amount
	// required: true
	// default: 500.0
	TargetAmount decimal.Decimal `json:"target_amount"`

	// Near-limit threshold as percent of target; defaults to 80
	ThresholdPercent int `json:"threshold_percent"`

	// Optional window start
	StartDate *time.Time `json:"start_date"`

	// Optional deadline
	EndDate *time.Time `json:"end_date"`
}

// GoalResponse represents a goal returned by the API
// swagger:model GoalResponse
type GoalResponse struct {
	GoalID           uuid.UUID       `json:"goal_id"`
	CategoryID       uuid.UUID       `json:"category_id"`
	WalletID         *uuid.UUID      `json:"wallet_id,omitempty"`
	Name             string          `json:"name"`
	Type             string          `json:"type"`
	TargetAmount     decimal.Decimal `json:"target_amount"`
	ThresholdPercent int             `json:"threshold_percent"`
	StartDate        *time.Time      `json:"start_date,omitempty"`
	EndDate          *time.Time      `json:"end_date,omitempty"`
	Active           bool            `json:"active"`
}

// GoalErrorResponse represents an error response for goal endpoints
// swagger:model GoalErrorResponse
type GoalErrorResponse struct {
	// Error message
	// default: Goal not found
	Error string `json:"error"`
}

func toGoalResponse(g models.GoalDB) GoalResponse {
	return GoalResponse{
		GoalID:           g.GoalID,
		CategoryID:       g.CategoryID,
		WalletID:         g.WalletID,
		Name:             g.Name,
		Type:             g.Type,
		TargetAmount:     g.TargetAmount,
		ThresholdPercent: g.ThresholdPercent,
		StartDate:        g.StartDate,
		EndDate:          g.EndDate,
		Active:           g.Active,
	}
}

// NewCreateGoalHandler returns an HTTP handler for creating a goal.
// @Summary Create a goal
// @Description Creates a spending limit (expense) or savings target (income) against a category, optionally scoped to one wallet and a date window.
// @Tags goals
// @Accept json
// @Produce json
// @Param request body handlers.GoalRequest true "Create Goal Request"
// @Success 201 {object} handlers.GoalResponse "Goal created"
// @Failure 400 {object} handlers.GoalErrorResponse "Invalid amount or type"
// @Failure 401 {object} handlers.GoalErrorResponse "Unauthorized"
// @Router /goals [post]
// @Security BearerAuth
func NewCreateGoalHandler(
	svc GoalCreator,
	tokenGetter CreateGoalTokener,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		tokenStr, err := tokenGetter.GetTokenFromRequest(ctx, r)
		if err != nil {
			logger.Log.Errorw("failed to get token from request", "error", err)
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(GoalErrorResponse{Error: "Unauthorized"})
			return
		}

		claims, err := tokenGetter.GetClaims(ctx, tokenStr)
		if err != nil {
			logger.Log.Errorw("failed to get claims from token", "error", err)
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(GoalErrorResponse{Error: "Unauthorized"})
			return
		}

		var req GoalRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			logger.Log.Errorw("failed to decode create goal request", "error", err)
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(GoalErrorResponse{Error: "Invalid request body"})
			return
		}

		goal, err := svc.Create(ctx, models.GoalDB{
			UserID:           claims.UserID,
			CategoryID:       req.CategoryID,
			WalletID:         req.WalletID,
			Name:             req.Name,
			Type:             req.Type,
			TargetAmount:     req.TargetAmount,
			ThresholdPercent: req.ThresholdPercent,
			StartDate:        req.StartDate,
			EndDate:          req.EndDate,
		})
		if err != nil {
			switch {
			case errors.Is(err, services.ErrInvalidAmount),
				errors.Is(err, services.ErrInvalidType):
				w.WriteHeader(http.StatusBadRequest)
				json.NewEncoder(w).Encode(GoalErrorResponse{Error: "Invalid amount or type"})
			default:
				logger.Log.Errorw("failed to create goal", "userID", claims.UserID, "error", err)
				w.WriteHeader(http.StatusInternalServerError)
				json.NewEncoder(w).Encode(GoalErrorResponse{Error: "Internal server error"})
			}
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(toGoalResponse(*goal))
	}
}
