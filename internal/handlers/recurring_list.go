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

// ListRecurringTokener defines only the methods needed by this handler.
type ListRecurringTokener interface {
	GetTokenFromRequest(ctx context.Context, r *http.Request) (string, error)
	GetClaims(ctx context.Context, tokenString string) (*jwt.Claims, error)
}

// RecurringLister defines the interface that the service must implement.
type RecurringLister interface {
	List(ctx context.Context, userID uuid.UUID) ([]models.RecurringTransactionDB, error)
}

// ListRecurringResponse represents the recurring template list response
// swagger:model ListRecurringResponse
type ListRecurringResponse struct {
	Recurring []RecurringResponse `json:"recurring"`
}

// NewListRecurringHandler returns an HTTP handler listing the user's
// recurring transaction templates.
// @Summary List recurring transactions
// @Tags recurring
// @Produce json
// @Success 200 {object} handlers.ListRecurringResponse "Templates returned"
// @Failure 401 {object} handlers.RecurringErrorResponse "Unauthorized"
// @Router /recurring [get]
// @Security BearerAuth
func NewListRecurringHandler(
	svc RecurringLister,
	tokenGetter ListRecurringTokener,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		tokenStr, err := tokenGetter.GetTokenFromRequest(ctx, r)
		if err != nil {
			logger.Log.Errorw("failed to get token from request", "error", err)
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(RecurringErrorResponse{Error: "Unauthorized"})
			return
		}

		claims, err := tokenGetter.GetClaims(ctx, tokenStr)
		if err != nil {
			logger.Log.Errorw("failed to get claims from token", "error", err)
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(RecurringErrorResponse{Error: "Unauthorized"})
			return
		}

		templates, err := svc.List(ctx, claims.UserID)
		if err != nil {
			logger.Log.Errorw("failed to list recurring transactions", "userID", claims.UserID, "error", err)
			w.WriteHeader(http.StatusInternalServerError)
			json.NewEncoder(w).Encode(RecurringErrorResponse{Error: "Internal server error"})
			return
		}

		resp := ListRecurringResponse{Recurring: make([]RecurringResponse, 0, len(templates))}
		for _, rec := range templates {
			resp.Recurring = append(resp.Recurring, toRecurringResponse(rec))
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(resp)
	}
}
