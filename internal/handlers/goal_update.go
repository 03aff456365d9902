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
	"github.com/sbilibin2017/pf-wallet/internal/models"
	"github.com/sbilibin2017/pf-wallet/internal/services"
)

// UpdateGoalTokener defines only the methods needed by this handler.
type UpdateGoalTokener interface {
	GetTokenFromRequest(ctx context.Context, r *http.Request) (string, error)
	GetClaims(ctx context.Context, tokenString string) (*jwt.Claims, error)
}

// GoalUpdater defines the interface that the service must implement.
type GoalUpdater interface {
	Update(ctx context.Context, goal models.GoalDB) error
}

// UpdateGoalRequest represents the JSON body for updating a goal
// swagger:model UpdateGoalRequest
type UpdateGoalRequest struct {
	GoalRequest

	// Whether the goal is evaluated
	// default: true
	Active bool `json:"active"`
}

// UpdateGoalResponse represents a successful goal update
// swagger:model UpdateGoalResponse
type UpdateGoalResponse struct {
	// Success message
	// default: Goal updated successfully
	Message string `json:"message"`
}

// NewUpdateGoalHandler returns an HTTP handler for updating a goal. Updating
// resets the goal's notification state, so a changed goal is re-evaluated
// from scratch.
// @Summary Update a goal
// @Tags goals
// @Accept json
// @Produce json
// @Param goalID path string true "Goal ID"
// @Param request body handlers.UpdateGoalRequest true "Update Goal Request"
// @Success 200 {object} handlers.UpdateGoalResponse "Goal updated"
// @Failure 400 {object} handlers.GoalErrorResponse "Invalid request"
// @Failure 401 {object} handlers.GoalErrorResponse "Unauthorized"
// @Failure 404 {object} handlers.GoalErrorResponse "Goal not found"
// @Router /goals/{goalID} [put]
// @Security BearerAuth
func NewUpdateGoalHandler(
	svc GoalUpdater,
	tokenGetter UpdateGoalTokener,
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

		goalID, err := uuid.Parse(chi.URLParam(r, "goalID"))
		if err != nil {
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(GoalErrorResponse{Error: "Invalid goal ID"})
			return
		}

		var req UpdateGoalRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			logger.Log.Errorw("failed to decode update goal request", "error", err)
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(GoalErrorResponse{Error: "Invalid request body"})
			return
		}

		err = svc.Update(ctx, models.GoalDB{
			GoalID:           goalID,
			UserID:           claims.UserID,
			CategoryID:       req.CategoryID,
			WalletID:         req.WalletID,
			Name:             req.Name,
			Type:             req.Type,
			TargetAmount:     req.TargetAmount,
			ThresholdPercent: req.ThresholdPercent,
			StartDate:        req.StartDate,
			EndDate:          req.EndDate,
			Active:           req.Active,
		})
		if err != nil {
			switch {
			case errors.Is(err, services.ErrInvalidAmount),
				errors.Is(err, services.ErrInvalidType):
				w.WriteHeader(http.StatusBadRequest)
				json.NewEncoder(w).Encode(GoalErrorResponse{Error: "Invalid amount or type"})
			case errors.Is(err, services.ErrGoalNotFound):
				w.WriteHeader(http.StatusNotFound)
				json.NewEncoder(w).Encode(GoalErrorResponse{Error: "Goal not found"})
			default:
				logger.Log.Errorw("failed to update goal", "goalID", goalID, "error", err)
				w.WriteHeader(http.StatusInternalServerError)
				json.NewEncoder(w).Encode(GoalErrorResponse{Error: "Internal server error"})
			}
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(UpdateGoalResponse{Message: "Goal updated successfully"})
	}
}
