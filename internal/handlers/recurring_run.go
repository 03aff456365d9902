package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/google/uuid"

	"github.com/sbilibin2017/pf-wallet/internal/jwt"
	"github.com/sbilibin2017/pf-wallet/internal/logger"
	"github.com/sbilibin2017/pf-wallet/internal/services"
)

// RunRecurringTokener defines only the methods needed by this handler.
type RunRecurringTokener interface {
	GetTokenFromRequest(ctx context.Context, r *http.Request) (string, error)
	GetClaims(ctx context.Context, tokenString string) (*jwt.Claims, error)
}

// RecurringRunner defines the interface that the service must implement.
type RecurringRunner interface {
	RunDue(ctx context.Context, userID uuid.UUID) (*services.RunResult, error)
}

// RunRecurringResponse represents the outcome of a manual recurring run
// swagger:model RunRecurringResponse
type RunRecurringResponse struct {
	// Transactions created this run
	Materialized []TransactionResponse `json:"materialized"`

	// Templates skipped because their wallet or category no longer exists
	Skipped []uuid.UUID `json:"skipped"`
}

// NewRunRecurringHandler returns an HTTP handler that materializes every due
// recurring template for the user, catching up all missed periods. Each
// created transaction is dated at the period it covers.
// @Summary Run due recurring transactions
// @Tags recurring
// @Produce json
// @Success 200 {object} handlers.RunRecurringResponse "Run completed"
// @Failure 401 {object} handlers.RecurringErrorResponse "Unauthorized"
// @Router /recurring/run [post]
// @Security BearerAuth
func NewRunRecurringHandler(
	svc RecurringRunner,
	tokenGetter RunRecurringTokener,
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

		result, err := svc.RunDue(ctx, claims.UserID)
		if err != nil {
			logger.Log.Errorw("failed to run recurring transactions", "userID", claims.UserID, "error", err)
			w.WriteHeader(http.StatusInternalServerError)
			json.NewEncoder(w).Encode(RecurringErrorResponse{Error: "Internal server error"})
			return
		}

		resp := RunRecurringResponse{
			Materialized: make([]TransactionResponse, 0, len(result.Materialized)),
			Skipped:      result.Skipped,
		}
		for _, txn := range result.Materialized {
			resp.Materialized = append(resp.Materialized, toTransactionResponse(txn))
		}
		if resp.Skipped == nil {
			resp.Skipped = []uuid.UUID{}
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(resp)
	}
}
