package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/sbilibin2017/pf-wallet/internal/jwt"
	"github.com/sbilibin2017/pf-wallet/internal/models"
	"github.com/sbilibin2017/pf-wallet/internal/services"
)

func TestCreateTransactionHandler(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	userID := uuid.New()
	walletID := uuid.New()
	categoryID := uuid.New()
	transactionID := uuid.New()
	occurredAt := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	body := fmt.Sprintf(
		`{"wallet_id":%q,"category_id":%q,"amount":42.5,"type":"expense","description":"Groceries","occurred_at":%q}`,
		walletID, categoryID, occurredAt.Format(time.RFC3339))

	tests := []struct {
		name         string
		body         string
		setupMocks   func(svc *MockTransactionCreator, tok *MockCreateTransactionTokener)
		expectedCode int
		expectedErr  string
	}{
		{
			name: "success",
			body: body,
			setupMocks: func(svc *MockTransactionCreator, tok *MockCreateTransactionTokener) {
				tok.EXPECT().GetTokenFromRequest(gomock.Any(), gomock.Any()).Return("token", nil)
				tok.EXPECT().GetClaims(gomock.Any(), "token").Return(&jwt.Claims{UserID: userID}, nil)
				svc.EXPECT().
					Create(gomock.Any(), userID, walletID, categoryID,
						decimal.RequireFromString("42.5"), "expense", "Groceries", occurredAt).
					Return(&models.TransactionDB{
						TransactionID: transactionID,
						WalletID:      walletID,
						CategoryID:    categoryID,
						Amount:        decimal.RequireFromString("42.5"),
						Type:          "expense",
						Description:   "Groceries",
						OccurredAt:    occurredAt,
					}, nil)
			},
			expectedCode: http.StatusCreated,
		},
		{
			name: "defaults occurred_at to now",
			body: fmt.Sprintf(`{"wallet_id":%q,"category_id":%q,"amount":10,"type":"income"}`, walletID, categoryID),
			setupMocks: func(svc *MockTransactionCreator, tok *MockCreateTransactionTokener) {
				tok.EXPECT().GetTokenFromRequest(gomock.Any(), gomock.Any()).Return("token", nil)
				tok.EXPECT().GetClaims(gomock.Any(), "token").Return(&jwt.Claims{UserID: userID}, nil)
				svc.EXPECT().
					Create(gomock.Any(), userID, walletID, categoryID,
						decimal.NewFromInt(10), "income", "", gomock.Any()).
					DoAndReturn(func(_ interface{}, _, wID, cID uuid.UUID, amount decimal.Decimal, txType, desc string, at time.Time) (*models.TransactionDB, error) {
						assert.WithinDuration(t, time.Now(), at, 5*time.Second)
						return &models.TransactionDB{
							TransactionID: transactionID,
							WalletID:      wID,
							CategoryID:    cID,
							Amount:        amount,
							Type:          txType,
							OccurredAt:    at,
						}, nil
					})
			},
			expectedCode: http.StatusCreated,
		},
		{
			name: "invalid amount",
			body: fmt.Sprintf(`{"wallet_id":%q,"category_id":%q,"amount":0,"type":"expense"}`, walletID, categoryID),
			setupMocks: func(svc *MockTransactionCreator, tok *MockCreateTransactionTokener) {
				tok.EXPECT().GetTokenFromRequest(gomock.Any(), gomock.Any()).Return("token", nil)
				tok.EXPECT().GetClaims(gomock.Any(), "token").Return(&jwt.Claims{UserID: userID}, nil)
				// gomock compares decimals structurally; the zero must be
				// built the way the JSON decoder builds it (decimal.Zero
				// carries a different exponent).
				svc.EXPECT().
					Create(gomock.Any(), userID, walletID, categoryID,
						decimal.RequireFromString("0"), "expense", "", gomock.Any()).
					Return(nil, services.ErrInvalidAmount)
			},
			expectedCode: http.StatusBadRequest,
			expectedErr:  "Invalid amount or type",
		},
		{
			name: "unknown category",
			body: body,
			setupMocks: func(svc *MockTransactionCreator, tok *MockCreateTransactionTokener) {
				tok.EXPECT().GetTokenFromRequest(gomock.Any(), gomock.Any()).Return("token", nil)
				tok.EXPECT().GetClaims(gomock.Any(), "token").Return(&jwt.Claims{UserID: userID}, nil)
				svc.EXPECT().
					Create(gomock.Any(), userID, walletID, categoryID,
						decimal.RequireFromString("42.5"), "expense", "Groceries", occurredAt).
					Return(nil, services.ErrCategoryNotFound)
			},
			expectedCode: http.StatusNotFound,
			expectedErr:  "Wallet or category not found",
		},
		{
			name: "invalid json",
			body: `{broken`,
			setupMocks: func(svc *MockTransactionCreator, tok *MockCreateTransactionTokener) {
				tok.EXPECT().GetTokenFromRequest(gomock.Any(), gomock.Any()).Return("token", nil)
				tok.EXPECT().GetClaims(gomock.Any(), "token").Return(&jwt.Claims{UserID: userID}, nil)
			},
			expectedCode: http.StatusBadRequest,
			expectedErr:  "Invalid request body",
		},
		{
			name: "unauthorized",
			body: body,
			setupMocks: func(svc *MockTransactionCreator, tok *MockCreateTransactionTokener) {
				tok.EXPECT().GetTokenFromRequest(gomock.Any(), gomock.Any()).Return("", errors.New("no token"))
			},
			expectedCode: http.StatusUnauthorized,
			expectedErr:  "Unauthorized",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockSvc := NewMockTransactionCreator(ctrl)
			mockTok := NewMockCreateTransactionTokener(ctrl)
			tt.setupMocks(mockSvc, mockTok)

			handler := NewCreateTransactionHandler(mockSvc, mockTok)

			req := httptest.NewRequest(http.MethodPost, "/transactions", bytes.NewBufferString(tt.body))
			rr := httptest.NewRecorder()
			handler(rr, req)

			assert.Equal(t, tt.expectedCode, rr.Code)

			if tt.expectedErr != "" {
				var resp TransactionErrorResponse
				assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
				assert.Equal(t, tt.expectedErr, resp.Error)
				return
			}

			var resp TransactionResponse
			assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
			assert.Equal(t, transactionID, resp.TransactionID)
			assert.Equal(t, walletID, resp.WalletID)
			assert.Equal(t, categoryID, resp.CategoryID)
		})
	}
}
