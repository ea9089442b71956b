package handlers

import (
	"net/http"
	"strings"

	"stockplane/internal/importer"
	"stockplane/pkg/api"
)

// RunImport handles POST /imports/{site}/{kind}/run.
// It blocks until the import reaches a terminal state, which can take
// hours for big catalogs; callers are expected to set generous client
// timeouts or run through the CLI.
func (h *Handlers) RunImport(w http.ResponseWriter, r *http.Request) {
	site := r.PathValue("site")
	kind := r.PathValue("kind")
	if site == "" || kind == "" {
		h.httpError(w, "site and kind are required", http.StatusBadRequest)
		return
	}

	out, err := h.engine.RunImport(r.Context(), site, kind)
	if err != nil {
		status := http.StatusInternalServerError
		if strings.Contains(err.Error(), "unknown site") || strings.Contains(err.Error(), "no ") {
			status = http.StatusNotFound
		}
		h.httpError(w, err.Error(), status)
		return
	}

	status := http.StatusOK
	if !out.Completed() {
		// The run itself finished, its outcome did not.
		status = http.StatusBadGateway
		if out.State == importer.StateTimedOut {
			status = http.StatusGatewayTimeout
		}
	}
	h.respondJson(w, status, api.RunImportResponse{
		RunID:           out.RunID,
		State:           string(out.State),
		Reason:          out.Reason,
		TriggerAttempts: out.TriggerAttempts,
		PollAttempts:    out.PollAttempts,
		ElapsedMS:       out.ElapsedMS,
	})
}
