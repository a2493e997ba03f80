package http

import (
	"net/http"

	"rental-backoffice/internal/domain"

	"github.com/shopspring/decimal"
)

type createPaymentRequest struct {
	RentalID      int64                `json:"rental_id"`
	Amount        decimal.Decimal      `json:"amount"`
	PaymentMethod domain.PaymentMethod `json:"payment_method"`
	PaymentDate   string               `json:"payment_date"`
	Notes         string               `json:"notes"`
}

func (h *Handler) CreatePayment(w http.ResponseWriter, r *http.Request) {
	a, ok := requireActor(w, r)
	if !ok {
		return
	}
	var req createPaymentRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	date, err := parseOptionalTime(req.PaymentDate)
	if err != nil {
		writeError(w, r, err)
		return
	}
	p, err := h.svc.Payment.CreatePayment(r.Context(), a, domain.NewPayment{
		RentalID:    req.RentalID,
		Amount:      req.Amount,
		Method:      req.PaymentMethod,
		PaymentDate: date,
		Notes:       req.Notes,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (h *Handler) ListPayments(w http.ResponseWriter, r *http.Request) {
	var (
		f   domain.PaymentFilter
		err error
	)
	if f.RentalID, err = queryInt64(r, "rental_id"); err != nil {
		writeError(w, r, err)
		return
	}
	f.Method = domain.PaymentMethod(r.URL.Query().Get("payment_method"))
	payments, err := h.svc.Payment.ListPayments(r.Context(), f)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, payments)
}

func (h *Handler) GetPayment(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	p, err := h.svc.Payment.GetPayment(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *Handler) RentalBalance(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	bal, err := h.svc.Payment.GetBalance(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, bal)
}
