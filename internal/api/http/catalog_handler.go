package http

import (
	"net/http"

	"rental-backoffice/internal/domain"

	"github.com/shopspring/decimal"
)

type createItemRequest struct {
	Name            string               `json:"name"`
	Code            string               `json:"internal_code"`
	Category        string               `json:"category"`
	BaseRentalValue decimal.Decimal      `json:"rental_value"`
	RentalPeriod    domain.RentalPeriod  `json:"rental_period"`
	Observations    string               `json:"observations"`
	PricingTiers    []domain.PricingTier `json:"pricing_tiers"`
}

type updateItemRequest struct {
	Name            *string              `json:"name"`
	Code            *string              `json:"internal_code"`
	Category        *string              `json:"category"`
	BaseRentalValue *decimal.Decimal     `json:"rental_value"`
	RentalPeriod    *domain.RentalPeriod `json:"rental_period"`
	Observations    *string              `json:"observations"`
}

type maintenanceRequest struct {
	Maintenance bool `json:"maintenance"`
}

type pricingRequest struct {
	Tiers []domain.PricingTier `json:"tiers"`
}

type clientRequest struct {
	Name         string `json:"name"`
	Document     string `json:"document"`
	Phone        string `json:"phone"`
	Email        string `json:"email"`
	Address      string `json:"address"`
	Observations string `json:"observations"`
}

func (c clientRequest) toDomain() *domain.Client {
	return &domain.Client{
		Name:         c.Name,
		Document:     c.Document,
		Phone:        c.Phone,
		Email:        c.Email,
		Address:      c.Address,
		Observations: c.Observations,
	}
}

func (h *Handler) CreateItem(w http.ResponseWriter, r *http.Request) {
	a, ok := requireActor(w, r)
	if !ok {
		return
	}
	var req createItemRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	item, err := h.svc.Item.CreateItem(r.Context(), a, domain.NewItem{
		Name:            req.Name,
		Code:            req.Code,
		Category:        req.Category,
		BaseRentalValue: req.BaseRentalValue,
		RentalPeriod:    req.RentalPeriod,
		Observations:    req.Observations,
		PricingTiers:    req.PricingTiers,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, item)
}

func (h *Handler) ListItems(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	items, err := h.svc.Item.ListItems(r.Context(), domain.ItemFilter{
		Category: q.Get("category"),
		Status:   domain.ItemStatus(q.Get("status")),
		Search:   q.Get("search"),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *Handler) ListCategories(w http.ResponseWriter, r *http.Request) {
	cats, err := h.svc.Item.ListCategories(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cats)
}

func (h *Handler) GetItem(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	item, err := h.svc.Item.GetItem(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (h *Handler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	a, ok := requireActor(w, r)
	if !ok {
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req updateItemRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	item, err := h.svc.Item.UpdateItem(r.Context(), a, id, domain.ItemUpdate{
		Name:            req.Name,
		Code:            req.Code,
		Category:        req.Category,
		BaseRentalValue: req.BaseRentalValue,
		RentalPeriod:    req.RentalPeriod,
		Observations:    req.Observations,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (h *Handler) DeleteItem(w http.ResponseWriter, r *http.Request) {
	a, ok := requireActor(w, r)
	if !ok {
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.svc.Item.DeactivateItem(r.Context(), a, id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) SetMaintenance(w http.ResponseWriter, r *http.Request) {
	a, ok := requireActor(w, r)
	if !ok {
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req maintenanceRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	item, err := h.svc.Item.SetMaintenance(r.Context(), a, id, req.Maintenance)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (h *Handler) ListPricing(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	tiers, err := h.svc.Item.ListPricing(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tiers)
}

func (h *Handler) ReplacePricing(w http.ResponseWriter, r *http.Request) {
	a, ok := requireActor(w, r)
	if !ok {
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req pricingRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	tiers, err := h.svc.Item.ReplacePricing(r.Context(), a, id, req.Tiers)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tiers)
}

func (h *Handler) CreateClient(w http.ResponseWriter, r *http.Request) {
	a, ok := requireActor(w, r)
	if !ok {
		return
	}
	var req clientRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	c, err := h.svc.Client.CreateClient(r.Context(), a, req.toDomain())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

func (h *Handler) ListClients(w http.ResponseWriter, r *http.Request) {
	active, err := queryBool(r, "active")
	if err != nil {
		writeError(w, r, err)
		return
	}
	clients, err := h.svc.Client.ListClients(r.Context(), domain.ClientFilter{
		Search:     r.URL.Query().Get("search"),
		ActiveOnly: active != nil && *active,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, clients)
}

func (h *Handler) GetClient(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	c, err := h.svc.Client.GetClient(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (h *Handler) UpdateClient(w http.ResponseWriter, r *http.Request) {
	a, ok := requireActor(w, r)
	if !ok {
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req clientRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	c := req.toDomain()
	c.ID = id
	updated, err := h.svc.Client.UpdateClient(r.Context(), a, c)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *Handler) DeleteClient(w http.ResponseWriter, r *http.Request) {
	a, ok := requireActor(w, r)
	if !ok {
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.svc.Client.DeactivateClient(r.Context(), a, id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
