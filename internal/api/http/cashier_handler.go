package http

import (
	"net/http"

	"rental-backoffice/internal/domain"

	"github.com/shopspring/decimal"
)

type openRegisterRequest struct {
	OpeningBalance decimal.Decimal `json:"opening_balance"`
	Observations   string          `json:"observations"`
}

type closeRegisterRequest struct {
	Observations string `json:"observations"`
}

type createTransactionRequest struct {
	RegisterID    int64                      `json:"cash_register_id"`
	Type          domain.TransactionType     `json:"type"`
	Category      domain.TransactionCategory `json:"category"`
	Amount        decimal.Decimal            `json:"amount"`
	Description   string                     `json:"description"`
	PaymentMethod *domain.PaymentMethod      `json:"payment_method"`
	Reference     *domain.Reference          `json:"reference"`
}

type cancelTransactionRequest struct {
	Reason string `json:"reason"`
}

type registerList struct {
	Registers []domain.CashRegister `json:"registers"`
	Total     int64                 `json:"total"`
}

type transactionList struct {
	Transactions []domain.CashTransaction `json:"transactions"`
	Total        int64                    `json:"total"`
}

func (h *Handler) OpenRegister(w http.ResponseWriter, r *http.Request) {
	a, ok := requireActor(w, r)
	if !ok {
		return
	}
	var req openRegisterRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	reg, err := h.svc.Cashier.OpenRegister(r.Context(), a, req.OpeningBalance, req.Observations)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, reg)
}

// CurrentRegister answers with a null register when the operator has none open.
func (h *Handler) CurrentRegister(w http.ResponseWriter, r *http.Request) {
	a, ok := requireActor(w, r)
	if !ok {
		return
	}
	reg, err := h.svc.Cashier.GetOpenRegister(r.Context(), a.UserID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]*domain.CashRegister{"register": reg})
}

func (h *Handler) ListRegisters(w http.ResponseWriter, r *http.Request) {
	var (
		f   domain.RegisterFilter
		err error
	)
	if f.OperatorID, err = queryInt64(r, "operator_id"); err != nil {
		writeError(w, r, err)
		return
	}
	f.Status = domain.RegisterStatus(r.URL.Query().Get("status"))
	if f.From, err = queryTime(r, "start_date"); err != nil {
		writeError(w, r, err)
		return
	}
	if f.To, err = queryTime(r, "end_date"); err != nil {
		writeError(w, r, err)
		return
	}
	limit, err := queryInt64(r, "limit")
	if err != nil {
		writeError(w, r, err)
		return
	}
	offset, err := queryInt64(r, "offset")
	if err != nil {
		writeError(w, r, err)
		return
	}
	f.Limit, f.Offset = int(limit), int(offset)

	regs, total, err := h.svc.Cashier.ListRegisters(r.Context(), f)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, registerList{Registers: regs, Total: total})
}

func (h *Handler) GetRegister(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	reg, err := h.svc.Cashier.GetRegister(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, reg)
}

func (h *Handler) RegisterSummary(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	sum, err := h.svc.Cashier.GetRegisterSummary(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sum)
}

func (h *Handler) CloseRegister(w http.ResponseWriter, r *http.Request) {
	a, ok := requireActor(w, r)
	if !ok {
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req closeRegisterRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	reg, err := h.svc.Cashier.CloseRegister(r.Context(), a, id, req.Observations)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, reg)
}

// CreateTransaction posts into the operator's open register when no register
// id is given.
func (h *Handler) CreateTransaction(w http.ResponseWriter, r *http.Request) {
	a, ok := requireActor(w, r)
	if !ok {
		return
	}
	var req createTransactionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if req.RegisterID == 0 {
		reg, err := h.svc.Cashier.GetOpenRegister(r.Context(), a.UserID)
		if err != nil {
			writeError(w, r, err)
			return
		}
		if reg == nil {
			writeError(w, r, domain.Conflict("no open cash register for operator"))
			return
		}
		req.RegisterID = reg.ID
	}

	tx, err := h.svc.Cashier.CreateTransaction(r.Context(), a, domain.NewTransaction{
		RegisterID:    req.RegisterID,
		Type:          req.Type,
		Category:      req.Category,
		Amount:        req.Amount,
		Description:   req.Description,
		PaymentMethod: req.PaymentMethod,
		Reference:     req.Reference,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, tx)
}

func (h *Handler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	var (
		f   domain.TransactionFilter
		err error
	)
	q := r.URL.Query()
	if f.RegisterID, err = queryInt64(r, "cash_register_id"); err != nil {
		writeError(w, r, err)
		return
	}
	f.Type = domain.TransactionType(q.Get("type"))
	f.Category = domain.TransactionCategory(q.Get("category"))
	if f.Cancelled, err = queryBool(r, "cancelled"); err != nil {
		writeError(w, r, err)
		return
	}
	if f.From, err = queryTime(r, "start_date"); err != nil {
		writeError(w, r, err)
		return
	}
	if f.To, err = queryTime(r, "end_date"); err != nil {
		writeError(w, r, err)
		return
	}
	limit, err := queryInt64(r, "limit")
	if err != nil {
		writeError(w, r, err)
		return
	}
	offset, err := queryInt64(r, "offset")
	if err != nil {
		writeError(w, r, err)
		return
	}
	f.Limit, f.Offset = int(limit), int(offset)

	txs, total, err := h.svc.Cashier.ListTransactions(r.Context(), f)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, transactionList{Transactions: txs, Total: total})
}

func (h *Handler) GetTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	tx, err := h.svc.Cashier.GetTransaction(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tx)
}

func (h *Handler) CancelTransaction(w http.ResponseWriter, r *http.Request) {
	a, ok := requireActor(w, r)
	if !ok {
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req cancelTransactionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	tx, err := h.svc.Cashier.CancelTransaction(r.Context(), a, id, req.Reason)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tx)
}

func (h *Handler) DailyReport(w http.ResponseWriter, r *http.Request) {
	day, err := domain.ParseDay(r.URL.Query().Get("date"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	rep, err := h.svc.Cashier.DailyReport(r.Context(), day)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

func (h *Handler) PeriodReport(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	start, err := domain.ParseDay(q.Get("start_date"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	end, err := domain.ParseDay(q.Get("end_date"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	rep, err := h.svc.Cashier.PeriodReport(r.Context(), start, end)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rep)
}
