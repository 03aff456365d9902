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

// GoalStatusTokener defines only the methods needed by this handler.
type GoalStatusTokener interface {
	GetTokenFromRequest(ctx context.Context, r *http.Request) (string, error)
	GetClaims(ctx context.Context, tokenString string) (*jwt.Claims, error)
}

// GoalStatusReader defines the interface that the service must implement.
type GoalStatusReader interface {
	Status(ctx context.Context, userID, goalID uuid.UUID) (*services.GoalStatus, error)
}

// NewGoalStatusHandler returns an HTTP handler evaluating one goal on demand:
// its current amount and the near-limit, crossed, near-deadline and success
// flags.
// @Summary Get goal status
// @Tags goals
// @Produce json
// @Param goalID path string true "Goal ID"
// @Success 200 {object} services.GoalStatus "Status returned"
// @Failure 400 {object} handlers.GoalErrorResponse "Invalid goal ID"
// @Failure 401 {object} handlers.GoalErrorResponse "Unauthorized"
// @Failure 404 {object} handlers.GoalErrorResponse "Goal not found"
// @Router /goals/{goalID}/status [get]
// @Security BearerAuth
func NewGoalStatusHandler(
	svc GoalStatusReader,
	tokenGetter GoalStatusTokener,
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

		status, err := svc.Status(ctx, claims.UserID, goalID)
		if err != nil {
			switch {
			case errors.Is(err, services.ErrGoalNotFound):
				w.WriteHeader(http.StatusNotFound)
				json.NewEncoder(w).Encode(GoalErrorResponse{Error: "Goal not found"})
			default:
				logger.Log.Errorw("failed to evaluate goal", "goalID", goalID, "error", err)
				w.WriteHeader(http.StatusInternalServerError)
				json.NewEncoder(w).Encode(GoalErrorResponse{Error: "Internal server error"})
			}
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(status)
	}
}
