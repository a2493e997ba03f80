package http

import (
	"net/http"
)

func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	d, err := h.svc.Report.Dashboard(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func (h *Handler) AuditTrail(w http.ResponseWriter, r *http.Request) {
	id, err := queryInt64(r, "resource_id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	events, err := h.svc.Report.AuditTrail(r.Context(), r.URL.Query().Get("resource"), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, events)
}
