package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"rental-backoffice/internal/domain"
	"rental-backoffice/internal/repository/memory"
	"rental-backoffice/internal/security"
	"rental-backoffice/internal/service"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

type downStore struct{}

func (downStore) Ping(context.Context) error { return errors.New("connection refused") }

type apiFixture struct {
	router        http.Handler
	operatorToken string
	adminToken    string
}

func newAPIFixture(t *testing.T) *apiFixture {
	t.Helper()
	store := memory.New()
	store.SetOperatorName(1, "Ana")
	clock := domain.FixedClock{T: time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC)}
	audit := service.NewAuditRecorder(store.Repos().Audit, clock)

	h := NewHandler(Services{
		Cashier:  service.NewCashierService(store, clock, audit),
		Rental:   service.NewRentalService(store, clock, audit),
		Payment:  service.NewPaymentService(store, clock, audit),
		Dispatch: service.NewDispatchService(store, clock, audit),
		Item:     service.NewItemService(store, clock, audit),
		Client:   service.NewClientService(store, clock, audit),
		Report:   service.NewReportService(store, clock),
	}, store)

	tm := security.NewTokenManager(testSecret, time.Hour)
	opTok, err := tm.GenerateAccessToken(1, "Ana", domain.RoleOperator)
	require.NoError(t, err)
	adminTok, err := tm.GenerateAccessToken(9, "Root", domain.RoleAdmin)
	require.NoError(t, err)

	return &apiFixture{router: NewRouter(h, tm), operatorToken: opTok, adminToken: adminTok}
}

func (f *apiFixture) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestHealth(t *testing.T) {
	f := newAPIFixture(t)
	rec := f.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get(RequestIDHeader))

	router := NewRouter(NewHandler(Services{}, downStore{}), security.NewTokenManager(testSecret, time.Hour))
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestRequestIDIsPropagated(t *testing.T) {
	f := newAPIFixture(t)
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(RequestIDHeader, "req-42")
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	assert.Equal(t, "req-42", rec.Header().Get(RequestIDHeader))
}

func TestAuthMiddleware(t *testing.T) {
	f := newAPIFixture(t)

	tests := []struct {
		name   string
		path   string
		token  string
		status int
	}{
		{"MissingToken", "/api/v1/dashboard", "", http.StatusUnauthorized},
		{"GarbageToken", "/api/v1/dashboard", "not-a-jwt", http.StatusUnauthorized},
		{"OperatorOnAccessRoute", "/api/v1/dashboard", f.operatorToken, http.StatusOK},
		{"OperatorOnAdminRoute", "/api/v1/cashier/reports/daily?date=2024-01-01", f.operatorToken, http.StatusForbidden},
		{"AdminOnAdminRoute", "/api/v1/cashier/reports/daily?date=2024-01-01", f.adminToken, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := f.do(t, http.MethodGet, tt.path, tt.token, nil)
			assert.Equal(t, tt.status, rec.Code, rec.Body.String())
		})
	}
}

func TestCashierEndpoints(t *testing.T) {
	f := newAPIFixture(t)

	rec := f.do(t, http.MethodPost, "/api/v1/cashier/open", f.operatorToken, map[string]any{"opening_balance": "100.00"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	reg := decode[domain.CashRegister](t, rec)
	assert.Equal(t, domain.RegisterStatusOpen, reg.Status)

	rec = f.do(t, http.MethodPost, "/api/v1/cashier/open", f.operatorToken, map[string]any{"opening_balance": "50.00"})
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "CONFLICT", decode[errorResponse](t, rec).Code)

	rec = f.do(t, http.MethodPost, "/api/v1/cashier/open", f.adminToken, map[string]any{"opening_balance": "-1"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(t, http.MethodPost, "/api/v1/cashier/transactions", f.operatorToken, map[string]any{
		"type":           "entry",
		"category":       "rental_payment",
		"amount":         "30.00",
		"description":    "walk-in",
		"payment_method": "cash",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	tx := decode[domain.CashTransaction](t, rec)
	assert.Equal(t, reg.ID, tx.RegisterID)

	rec = f.do(t, http.MethodGet, "/api/v1/cashier/current", f.operatorToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	current := decode[map[string]*domain.CashRegister](t, rec)
	require.NotNil(t, current["register"])
	assert.Equal(t, reg.ID, current["register"].ID)

	rec = f.do(t, http.MethodGet, fmt.Sprintf("/api/v1/cashier/registers/%d/summary", reg.ID), f.operatorToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	sum := decode[domain.RegisterSummary](t, rec)
	assert.True(t, sum.CurrentBalance.Equal(decimal.RequireFromString("130")), sum.CurrentBalance.String())

	rec = f.do(t, http.MethodPost, fmt.Sprintf("/api/v1/cashier/transactions/%d/cancel", tx.ID), f.operatorToken, map[string]any{"reason": "no"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(t, http.MethodGet, "/api/v1/cashier/registers/999", f.operatorToken, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = f.do(t, http.MethodGet, "/api/v1/cashier/transactions?cancelled=maybe", f.operatorToken, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(t, http.MethodPost, fmt.Sprintf("/api/v1/cashier/registers/%d/close", reg.ID), f.operatorToken, map[string]any{"observations": "end of day"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	closed := decode[domain.CashRegister](t, rec)
	assert.Equal(t, domain.RegisterStatusClosed, closed.Status)
	require.True(t, closed.ClosingBalance.Valid)
	assert.True(t, closed.ClosingBalance.Decimal.Equal(decimal.RequireFromString("130")))

	rec = f.do(t, http.MethodPost, "/api/v1/cashier/transactions", f.operatorToken, map[string]any{
		"type": "entry", "category": "other", "amount": "1.00", "description": "late",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestRentalEndpoints(t *testing.T) {
	f := newAPIFixture(t)

	rec := f.do(t, http.MethodPost, "/api/v1/items", f.operatorToken, map[string]any{"name": "Saw"})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = f.do(t, http.MethodPost, "/api/v1/items", f.adminToken, map[string]any{
		"name":          "Circular saw",
		"internal_code": "SAW-01",
		"category":      "tools",
		"rental_value":  "10.00",
		"rental_period": "hour",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	item := decode[domain.Item](t, rec)

	rec = f.do(t, http.MethodPost, "/api/v1/clients", f.operatorToken, map[string]any{"name": "Carla"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	client := decode[domain.Client](t, rec)

	rec = f.do(t, http.MethodPost, "/api/v1/rentals", f.operatorToken, map[string]any{
		"client_id":         client.ID,
		"item_id":           item.ID,
		"start_date":        "2024-01-01T10:00",
		"expected_end_date": "2024-01-01T12:00",
		"deposit":           "5.00",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	rental := decode[domain.Rental](t, rec)
	assert.True(t, rental.TotalValue.Equal(decimal.RequireFromString("20")))

	rec = f.do(t, http.MethodPost, "/api/v1/rentals", f.operatorToken, map[string]any{
		"client_id":         client.ID,
		"item_id":           item.ID,
		"start_date":        "tomorrow",
		"expected_end_date": "2024-01-01T12:00",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(t, http.MethodGet, fmt.Sprintf("/api/v1/rentals/%d/balance", rental.ID), f.operatorToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	bal := decode[domain.RentalBalance](t, rec)
	assert.True(t, bal.Remaining.Equal(decimal.RequireFromString("15")), bal.Remaining.String())

	rec = f.do(t, http.MethodPost, "/api/v1/payments", f.operatorToken, map[string]any{
		"rental_id": rental.ID, "amount": "15.01", "payment_method": "pix",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(t, http.MethodPost, fmt.Sprintf("/api/v1/rentals/%d/send-to-cashier", rental.ID), f.operatorToken, map[string]any{"mode": "deposit"})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = f.do(t, http.MethodPost, "/api/v1/cashier/open", f.operatorToken, map[string]any{"opening_balance": "0"})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = f.do(t, http.MethodPost, fmt.Sprintf("/api/v1/rentals/%d/send-to-cashier", rental.ID), f.operatorToken, map[string]any{"mode": "deposit"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	sent := decode[map[string][]domain.CashTransaction](t, rec)
	require.Len(t, sent["transactions"], 1)
	assert.Equal(t, domain.CategoryDeposit, sent["transactions"][0].Category)

	rec = f.do(t, http.MethodPost, fmt.Sprintf("/api/v1/rentals/%d/complete", rental.ID), f.operatorToken, map[string]any{"actual_end_date": "2024-01-01T12:30"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	done := decode[domain.Rental](t, rec)
	assert.Equal(t, domain.RentalStatusCompleted, done.Status)
	assert.True(t, done.LateFee.Equal(decimal.RequireFromString("5")), done.LateFee.String())

	rec = f.do(t, http.MethodPost, "/api/v1/rentals/check-overdue", f.operatorToken, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	rec = f.do(t, http.MethodPost, "/api/v1/rentals/check-overdue", f.adminToken, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = f.do(t, http.MethodGet, fmt.Sprintf("/api/v1/audit?resource=rental&resource_id=%d", rental.ID), f.adminToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	events := decode[[]domain.AuditEvent](t, rec)
	require.NotEmpty(t, events)
	assert.Equal(t, domain.AuditRentalCreate, events[0].Action)
	assert.NotEmpty(t, events[0].RequestID)
}

func TestDecodeRejectsUnknownFields(t *testing.T) {
	f := newAPIFixture(t)
	rec := f.do(t, http.MethodPost, "/api/v1/clients", f.operatorToken, map[string]any{"name": "Carla", "nickname": "C"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, statusFor(domain.NotFound("rental")))
	assert.Equal(t, http.StatusConflict, statusFor(domain.Conflict("busy")))
	assert.Equal(t, http.StatusBadRequest, statusFor(domain.Validation("bad")))
	assert.Equal(t, http.StatusForbidden, statusFor(domain.Forbidden("nope")))
	assert.Equal(t, http.StatusInternalServerError, statusFor(errors.New("boom")))
}
