package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/sjperalta/fintera-obligations/internal/config"
	"github.com/sjperalta/fintera-obligations/internal/middleware"
	"github.com/sjperalta/fintera-obligations/internal/models"
	"github.com/sjperalta/fintera-obligations/internal/repository/repotest"
	"github.com/sjperalta/fintera-obligations/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter(t *testing.T) (*gin.Engine, *repotest.Store) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := repotest.NewStore()
	svcs := services.NewServices(store.Repositories(), nil, &config.Config{RecurringHorizonMonths: 1}, nil)

	router := gin.New()
	router.Use(middleware.AuditContext())
	NewHandlers(svcs).RegisterRoutes(router.Group("/api/v1"))
	return router, store
}

func perform(router *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(middleware.ActorHeader, "tester")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

const billBody = `{"obligation": {
	"kind": "bill_receivable",
	"description": "Factura 0045",
	"total_amount": "450.00",
	"installment_count": 3,
	"interval_days": 30,
	"first_due_date": "2025-01-01",
	"generate": true
}}`

func createGenerated(t *testing.T, router *gin.Engine) models.ObligationResponse {
	t.Helper()
	w := perform(router, http.MethodPost, "/api/v1/obligations", billBody)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return decode[models.ObligationResponse](t, w)
}

func TestObligationHandler_CreateAndGenerate(t *testing.T) {
	router, _ := newTestRouter(t)

	obligation := createGenerated(t, router)

	assert.Equal(t, models.KindBillReceivable, obligation.Kind)
	assert.Equal(t, models.StatusPending, obligation.Status)
	require.Len(t, obligation.Installments, 3)
	for i, due := range []string{"2025-01-01", "2025-01-31", "2025-03-02"} {
		assert.Equal(t, due, obligation.Installments[i].DueDate)
		assert.True(t, obligation.Installments[i].Amount.Equal(decimal.NewFromInt(150)))
	}
	assert.True(t, obligation.OutstandingTotal.Equal(decimal.NewFromInt(450)))

	w := perform(router, http.MethodPost, fmt.Sprintf("/api/v1/obligations/%d/generate", obligation.ID), "")
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestObligationHandler_CreateWithoutGenerate(t *testing.T) {
	router, store := newTestRouter(t)

	w := perform(router, http.MethodPost, "/api/v1/obligations",
		`{"kind": "cost_fixed", "recurring_amount": "500", "due_day": 5, "start_month": "2025-01", "end_month": "2025-03"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	obligation := decode[models.ObligationResponse](t, w)
	assert.Empty(t, obligation.Installments)
	assert.False(t, obligation.OpenEnded)

	w = perform(router, http.MethodPost, fmt.Sprintf("/api/v1/obligations/%d/generate", obligation.ID), "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, 3, store.CountInstallments(obligation.ID))

	w = perform(router, http.MethodGet, fmt.Sprintf("/api/v1/obligations/%d/installments", obligation.ID), "")
	require.Equal(t, http.StatusOK, w.Code)
	list := decode[struct {
		Installments []models.InstallmentResponse `json:"installments"`
	}](t, w)
	require.Len(t, list.Installments, 3)
	assert.Equal(t, "2025-03-05", list.Installments[2].DueDate)
}

func TestObligationHandler_CreateRejectsBadInput(t *testing.T) {
	router, store := newTestRouter(t)

	tests := []struct {
		name string
		body string
	}{
		{"missing kind", `{"total_amount": "100", "installment_count": 1, "interval_days": 1, "first_due_date": "2025-01-01"}`},
		{"bad date", `{"kind": "bill_payable", "total_amount": "100", "installment_count": 1, "interval_days": 1, "first_due_date": "01/01/2025"}`},
		{"zero installments", `{"kind": "bill_payable", "total_amount": "100", "installment_count": 0, "interval_days": 1, "first_due_date": "2025-01-01"}`},
		{"not json", `kind=bill_payable`},
		{"bad month", `{"kind": "cost_fixed", "recurring_amount": "10", "due_day": 1, "start_month": "enero"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := perform(router, http.MethodPost, "/api/v1/obligations", tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
			assert.Contains(t, w.Body.String(), "error")
		})
	}
	assert.Zero(t, store.CountObligations())
}

func TestObligationHandler_ShowIndexDelete(t *testing.T) {
	router, store := newTestRouter(t)
	obligation := createGenerated(t, router)
	createGenerated(t, router)

	w := perform(router, http.MethodGet, fmt.Sprintf("/api/v1/obligations/%d", obligation.ID), "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, obligation.GUID, decode[models.ObligationResponse](t, w).GUID)

	w = perform(router, http.MethodGet, "/api/v1/obligations?kind=bill_receivable&per_page=1", "")
	require.Equal(t, http.StatusOK, w.Code)
	page := decode[struct {
		Pagination struct {
			Total      int64 `json:"total"`
			TotalPages int64 `json:"total_pages"`
		} `json:"pagination"`
	}](t, w)
	assert.Equal(t, int64(2), page.Pagination.Total)
	assert.Equal(t, int64(2), page.Pagination.TotalPages)

	w = perform(router, http.MethodDelete, fmt.Sprintf("/api/v1/obligations/%d", obligation.ID), "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Zero(t, store.CountInstallments(obligation.ID))

	w = perform(router, http.MethodGet, fmt.Sprintf("/api/v1/obligations/%d", obligation.ID), "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = perform(router, http.MethodGet, "/api/v1/obligations/abc", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestObligationHandler_Cancel(t *testing.T) {
	router, store := newTestRouter(t)
	obligation := createGenerated(t, router)

	w := perform(router, http.MethodPost, fmt.Sprintf("/api/v1/obligations/%d/cancel", obligation.ID), "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, models.StatusCancelled, decode[models.ObligationResponse](t, w).Status)
	for _, inst := range obligation.Installments {
		assert.Equal(t, models.StatusCancelled, store.Installment(inst.ID).Status)
	}

	w = perform(router, http.MethodPost, fmt.Sprintf("/api/v1/obligations/%d/cancel", obligation.ID), "")
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestObligationHandler_ExtendAndRecompute(t *testing.T) {
	router, _ := newTestRouter(t)
	obligation := createGenerated(t, router)

	// only open-ended recurring schedules can be extended
	w := perform(router, http.MethodPost, fmt.Sprintf("/api/v1/obligations/%d/extend", obligation.ID), "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = perform(router, http.MethodPost, "/api/v1/obligations",
		`{"kind": "cost_fixed", "recurring_amount": "80", "due_day": 10, "start_month": "2025-01", "generate": true}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	recurring := decode[models.ObligationResponse](t, w)
	assert.True(t, recurring.OpenEnded)

	w = perform(router, http.MethodPost, fmt.Sprintf("/api/v1/obligations/%d/extend", recurring.ID), "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"added": 0}`, w.Body.String())

	w = perform(router, http.MethodPost, fmt.Sprintf("/api/v1/obligations/%d/recompute", obligation.ID), "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"pending"`)
}

func TestObligationHandler_Export(t *testing.T) {
	router, _ := newTestRouter(t)
	obligation := createGenerated(t, router)

	w := perform(router, http.MethodGet, fmt.Sprintf("/api/v1/obligations/%d/export?format=csv", obligation.ID), "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/csv", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), ".csv")
	assert.Contains(t, w.Body.String(), "2025-01-31")

	w = perform(router, http.MethodGet, fmt.Sprintf("/api/v1/obligations/%d/export?format=docx", obligation.ID), "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = perform(router, http.MethodGet, "/api/v1/obligations/999/export?format=pdf", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestInstallmentHandler_Update(t *testing.T) {
	router, store := newTestRouter(t)
	obligation := createGenerated(t, router)
	first := obligation.Installments[0].ID
	path := fmt.Sprintf("/api/v1/installments/%d", first)

	w := perform(router, http.MethodPatch, path, `{"status": "paid", "paid_date": "2999-01-01"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code, "payments cannot be dated in the future")

	w = perform(router, http.MethodPatch, path, `{"status": "paid", "paid_date": "2025-01-02", "payment_notes": "transferencia"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	paid := decode[models.InstallmentResponse](t, w)
	assert.Equal(t, models.StatusPaid, paid.Status)
	require.NotNil(t, paid.PaidDate)
	assert.Equal(t, "2025-01-02", *paid.PaidDate)

	w = perform(router, http.MethodPatch, path, `{"status": "pending"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = perform(router, http.MethodPatch, path, `{"status": "archived"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = perform(router, http.MethodPatch, path, `{"installment": {"payment_notes": "recibo 12"}}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "recibo 12", *store.Installment(first).PaymentNotes)
	assert.Equal(t, models.StatusPaid, store.Installment(first).Status)

	w = perform(router, http.MethodGet, path, "")
	require.Equal(t, http.StatusOK, w.Code)

	w = perform(router, http.MethodPatch, "/api/v1/installments/999", `{"status": "cancelled"}`)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestInstallmentHandler_PrematureOverdue(t *testing.T) {
	router, _ := newTestRouter(t)

	w := perform(router, http.MethodPost, "/api/v1/obligations",
		`{"kind": "bill_payable", "total_amount": "90", "installment_count": 1, "interval_days": 1, "first_due_date": "2999-01-01", "generate": true}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	obligation := decode[models.ObligationResponse](t, w)

	w = perform(router, http.MethodPatch, fmt.Sprintf("/api/v1/installments/%d", obligation.Installments[0].ID), `{"status": "overdue"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestSweepHandler(t *testing.T) {
	router, store := newTestRouter(t)
	obligation := createGenerated(t, router)

	w := perform(router, http.MethodPost, "/api/v1/sweeps/overdue", "")
	require.Equal(t, http.StatusOK, w.Code)
	result := decode[services.SweepResult](t, w)
	assert.Equal(t, 3, result.Transitioned)
	assert.Equal(t, models.StatusOverdue, store.Obligation(obligation.ID).Status)

	w = perform(router, http.MethodPost, "/api/v1/sweeps/overdue", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Zero(t, decode[services.SweepResult](t, w).Transitioned)

	w = perform(router, http.MethodPost, "/api/v1/sweeps/extend", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"added": 0}`, w.Body.String())
}

func TestProfitShareHandler(t *testing.T) {
	router, _ := newTestRouter(t)

	w := perform(router, http.MethodPost, "/api/v1/profit_split", `{"bill_amount": "1000", "expenses": "200", "extras": "50"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	split := decode[struct {
		Split        services.ProfitSplit `json:"split"`
		Unprofitable bool                 `json:"unprofitable"`
	}](t, w)
	assert.True(t, split.Split.Profit.Equal(decimal.NewFromInt(800)))
	assert.True(t, split.Split.PartnerShare.Equal(decimal.NewFromInt(450)))
	assert.True(t, split.Split.OwnShare.Equal(decimal.NewFromInt(400)))
	assert.False(t, split.Unprofitable)

	w = perform(router, http.MethodPost, "/api/v1/profit_split", `{"bill_amount": "1000.005", "expenses": "200"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())

	w = perform(router, http.MethodPost, "/api/v1/profit_shares", `{"profit_share": {
		"bill_amount": "1000", "expenses": "200", "extras": "50",
		"description": "Factura 0012", "installment_count": 3, "interval_days": 30,
		"first_due_date": "2025-01-01", "generate": true
	}}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode[struct {
		Obligation models.ObligationResponse `json:"obligation"`
	}](t, w)
	assert.Equal(t, models.KindProfitShare, created.Obligation.Kind)
	assert.Len(t, created.Obligation.Installments, 3)

	w = perform(router, http.MethodPost, "/api/v1/profit_shares", `{"bill_amount": "300", "expenses": "300", "installment_count": 1, "interval_days": 1, "first_due_date": "2025-01-01"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code, "a zero partner share is rejected")

	w = perform(router, http.MethodPost, "/api/v1/profit_shares", `{"bill_amount": "300", "installment_count": 1, "interval_days": 1}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHealthAndJobs(t *testing.T) {
	router, _ := newTestRouter(t)

	w := perform(router, http.MethodGet, "/api/v1/health", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"ok"`)

	w = perform(router, http.MethodGet, "/api/v1/jobs/status", "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err    error
		status int
	}{
		{services.ErrNotFound, http.StatusNotFound},
		{fmt.Errorf("%w: count", services.ErrInvalidSchedule), http.StatusBadRequest},
		{services.ErrInvalidPaymentDate, http.StatusBadRequest},
		{services.ErrAlreadyGenerated, http.StatusConflict},
		{services.ErrIllegalTransition, http.StatusUnprocessableEntity},
		{services.ErrPrematureTransition, http.StatusUnprocessableEntity},
		{fmt.Errorf("connection refused"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.status, statusFor(tt.err), tt.err.Error())
	}
}

func TestHealth_DatabaseDown(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	health := NewHealthHandler(func(context.Context) error { return errors.New("connection refused") })
	router.GET("/health", health.Index)

	w := perform(router, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), `"database":"unreachable"`)
}
