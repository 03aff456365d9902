package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/sbilibin2017/pf-wallet/internal/jwt"
	"github.com/sbilibin2017/pf-wallet/internal/logger"
)

// RefreshRatesTokener defines only the methods needed by this handler.
type RefreshRatesTokener interface {
	GetTokenFromRequest(ctx context.Context, r *http.Request) (string, error)
	GetClaims(ctx context.Context, tokenString string) (*jwt.Claims, error)
}

// RatesRefresher defines the interface that the service must implement.
type RatesRefresher interface {
	RefreshRates(ctx context.Context, base string) error
}

// RefreshRatesRequest represents the JSON body for a rate refresh
// swagger:model RefreshRatesRequest
type RefreshRatesRequest struct {
	// Base currency code
	// default: USD
	Base string `json:"base"`
}

// RefreshRatesResponse represents a successful rate refresh
// swagger:model RefreshRatesResponse
type RefreshRatesResponse struct {
	// Success message
	// default: Exchange rates refreshed successfully
	Message string `json:"message"`
}

// NewRefreshRatesHandler returns an HTTP handler that pulls fresh rates for a
// base currency from the external rates provider and upserts them into the
// store. Stored rates stay untouched when the provider is unreachable.
// @Summary Refresh exchange rates
// @Tags rates
// @Accept json
// @Produce json
// @Param request body handlers.RefreshRatesRequest false "Refresh Request"
// @Success 200 {object} handlers.RefreshRatesResponse "Rates refreshed"
// @Failure 401 {object} handlers.RatesErrorResponse "Unauthorized"
// @Failure 502 {object} handlers.RatesErrorResponse "Rates provider unavailable"
// @Router /rates/refresh [post]
// @Security BearerAuth
func NewRefreshRatesHandler(
	svc RatesRefresher,
	tokenGetter RefreshRatesTokener,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		tokenStr, err := tokenGetter.GetTokenFromRequest(ctx, r)
		if err != nil {
			logger.Log.Errorw("failed to get token from request", "error", err)
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(RatesErrorResponse{Error: "Unauthorized"})
			return
		}

		if _, err := tokenGetter.GetClaims(ctx, tokenStr); err != nil {
			logger.Log.Errorw("failed to get claims from token", "error", err)
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(RatesErrorResponse{Error: "Unauthorized"})
			return
		}

		var req RefreshRatesRequest
		if r.Body != nil {
			_ = json.NewDecoder(r.Body).Decode(&req)
		}
		if req.Base == "" {
			req.Base = "USD"
		}

		if err := svc.RefreshRates(ctx, req.Base); err != nil {
			logger.Log.Errorw("failed to refresh rates", "base", req.Base, "error", err)
			w.WriteHeader(http.StatusBadGateway)
			json.NewEncoder(w).Encode(RatesErrorResponse{Error: "Rates provider unavailable"})
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(RefreshRatesResponse{Message: "Exchange rates refreshed successfully"})
	}
}
