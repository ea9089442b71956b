package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"stockplane/internal/fetch"
	"stockplane/pkg/api"
)

// Fetch handles POST /fetch.
// The strategy that actually served the data, any fallback warnings and
// the preserved errors are all part of the reply so callers can tell
// fresh data from stale.
func (h *Handlers) Fetch(w http.ResponseWriter, r *http.Request) {
	var req api.FetchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.httpError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.Site == "" {
		h.httpError(w, "site is required", http.StatusBadRequest)
		return
	}
	mode, err := fetch.ParseMode(req.Mode)
	if err != nil {
		h.httpError(w, err.Error(), http.StatusBadRequest)
		return
	}

	res, err := h.engine.Fetch(r.Context(), req.Site, req.SKUs, mode)
	if err != nil {
		status := http.StatusInternalServerError
		if strings.Contains(err.Error(), "unknown site") {
			status = http.StatusNotFound
		}
		h.httpError(w, err.Error(), status)
		return
	}

	status := http.StatusOK
	if !res.OK() {
		status = http.StatusBadGateway
		if res.OriginalError == "No SKUs provided" {
			status = http.StatusBadRequest
		}
	}
	h.respondJson(w, status, res)
}
