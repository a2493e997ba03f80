package http

import (
	"net/http"

	"rental-backoffice/internal/domain"

	"github.com/shopspring/decimal"
)

type createRentalRequest struct {
	ClientID        int64           `json:"client_id"`
	ItemID          int64           `json:"item_id"`
	StartDate       string          `json:"start_date"`
	ExpectedEndDate string          `json:"expected_end_date"`
	Deposit         decimal.Decimal `json:"deposit"`
	Discount        decimal.Decimal `json:"discount"`
	Observations    string          `json:"observations"`
	PricingTierID   *int64          `json:"pricing_tier_id"`
}

type completeRentalRequest struct {
	ActualEndDate string `json:"actual_end_date"`
}

type sendToCashierRequest struct {
	Mode          domain.SendMode      `json:"mode"`
	PaymentMethod domain.PaymentMethod `json:"payment_method"`
	Amount        decimal.Decimal      `json:"amount"`
}

func (h *Handler) CreateRental(w http.ResponseWriter, r *http.Request) {
	a, ok := requireActor(w, r)
	if !ok {
		return
	}
	var req createRentalRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	start, err := domain.ParseLocal(req.StartDate)
	if err != nil {
		writeError(w, r, err)
		return
	}
	end, err := domain.ParseLocal(req.ExpectedEndDate)
	if err != nil {
		writeError(w, r, err)
		return
	}

	rental, err := h.svc.Rental.CreateRental(r.Context(), a, domain.NewRental{
		ClientID:        req.ClientID,
		ItemID:          req.ItemID,
		StartDate:       start,
		ExpectedEndDate: end,
		Deposit:         req.Deposit,
		Discount:        req.Discount,
		Observations:    req.Observations,
		PricingTierID:   req.PricingTierID,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, rental)
}

func (h *Handler) ListRentals(w http.ResponseWriter, r *http.Request) {
	var (
		f   domain.RentalFilter
		err error
	)
	f.Status = domain.RentalStatus(r.URL.Query().Get("status"))
	if f.ClientID, err = queryInt64(r, "client_id"); err != nil {
		writeError(w, r, err)
		return
	}
	if f.ItemID, err = queryInt64(r, "item_id"); err != nil {
		writeError(w, r, err)
		return
	}
	rentals, err := h.svc.Rental.ListRentals(r.Context(), f)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rentals)
}

func (h *Handler) GetRental(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	rental, err := h.svc.Rental.GetRental(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rental)
}

func (h *Handler) CompleteRental(w http.ResponseWriter, r *http.Request) {
	a, ok := requireActor(w, r)
	if !ok {
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req completeRentalRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	actualEnd, err := parseOptionalTime(req.ActualEndDate)
	if err != nil {
		writeError(w, r, err)
		return
	}
	rental, err := h.svc.Rental.CompleteRental(r.Context(), a, id, actualEnd)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rental)
}

func (h *Handler) CancelRental(w http.ResponseWriter, r *http.Request) {
	a, ok := requireActor(w, r)
	if !ok {
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	rental, err := h.svc.Rental.CancelRental(r.Context(), a, id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rental)
}

func (h *Handler) SendToCashier(w http.ResponseWriter, r *http.Request) {
	a, ok := requireActor(w, r)
	if !ok {
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req sendToCashierRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	txs, err := h.svc.Dispatch.SendToCashier(r.Context(), a, id, domain.SendToCashier{
		Mode:          req.Mode,
		PaymentMethod: req.PaymentMethod,
		Amount:        req.Amount,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string][]domain.CashTransaction{"transactions": txs})
}

func (h *Handler) CheckOverdue(w http.ResponseWriter, r *http.Request) {
	n, err := h.svc.Rental.CheckOverdueRentals(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"updated": n})
}
