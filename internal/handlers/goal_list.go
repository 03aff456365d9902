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

// ListGoalsTokener defines only the methods needed by this handler.
type ListGoalsTokener interface {
	GetTokenFromRequest(ctx context.Context, r *http.Request) (string, error)
	GetClaims(ctx context.Context, tokenString string) (*jwt.Claims, error)
}

// GoalLister defines the interface that the service must implement.
type GoalLister interface {
	List(ctx context.Context, userID uuid.UUID) ([]models.GoalDB, error)
}

// ListGoalsResponse represents the goal list response
// swagger:model ListGoalsResponse
type ListGoalsResponse struct {
	Goals []GoalResponse `json:"goals"`
}

// NewListGoalsHandler returns an HTTP handler listing the user's goals.
// @Summary List goals
// @Tags goals
// @Produce json
// @Success 200 {object} handlers.ListGoalsResponse "Goals returned"
// @Failure 401 {object} handlers.GoalErrorResponse "Unauthorized"
// @Router /goals [get]
// @Security BearerAuth
func NewListGoalsHandler(
	svc GoalLister,
	tokenGetter ListGoalsTokener,
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

		goals, err := svc.List(ctx, claims.UserID)
		if err != nil {
			logger.Log.Errorw("failed to list goals", "userID", claims.UserID, "error", err)
			w.WriteHeader(http.StatusInternalServerError)
			json.NewEncoder(w).Encode(GoalErrorResponse{Error: "Internal server error"})
			return
		}

		resp := ListGoalsResponse{Goals: make([]GoalResponse, 0, len(goals))}
		for _, goal := range goals {
			resp.Goals = append(resp.Goals, toGoalResponse(goal))
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(resp)
	}
}
