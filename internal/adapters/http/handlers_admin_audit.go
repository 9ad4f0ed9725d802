package web

import (
	"net/http"
	"strconv"
)

// handleAuditTrail returns the most recent audit events (GET /api/audit)
// PRE: Admin session; optional limit query param (default 100, max 1000)
// POST: Returns events ordered by timestamp desc
func handleAuditTrail(w http.ResponseWriter, r *http.Request) {
	limit := 100
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 && l <= 1000 {
			limit = l
		}
	}

	events, err := stores.AuditStore.List(r.Context(), limit)
	if err != nil {
		internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, events)
}
