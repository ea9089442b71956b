package handlers

import (
	"math"
	"net/http"
	"strconv"

	"stockplane/pkg/api"
)

// defaultRetentionDays is how much metric history DELETE /metrics keeps
// when the caller does not say.
const defaultRetentionDays = 30

// MetricsReport handles GET /metrics/report.
func (h *Handlers) MetricsReport(w http.ResponseWriter, r *http.Request) {
	buckets, err := h.engine.MetricsReport(r.Context())
	if err != nil {
		h.httpError(w, "Failed to build metrics report", http.StatusInternalServerError)
		return
	}

	resp := api.MetricsReportResponse{Buckets: make([]api.MetricsBucketResponse, 0, len(buckets))}
	for _, b := range buckets {
		resp.Buckets = append(resp.Buckets, api.MetricsBucketResponse{
			Date:        b.Date,
			Strategy:    b.Strategy,
			Calls:       int(b.Calls),
			TotalTimeMS: b.TotalTime,
			TotalSKUs:   int(b.TotalSKUs),
			AvgTimeMS:   int64(math.Round(b.AvgTime)),
			AvgSKUs:     int(math.Round(b.AvgSKUs)),
		})
	}
	h.respondJson(w, http.StatusOK, resp)
}

// PruneMetrics handles DELETE /metrics?retention_days=N.
func (h *Handlers) PruneMetrics(w http.ResponseWriter, r *http.Request) {
	days := defaultRetentionDays
	if s := r.URL.Query().Get("retention_days"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			h.httpError(w, "retention_days must be a non-negative integer", http.StatusBadRequest)
			return
		}
		days = n
	}

	deleted, err := h.engine.PruneMetrics(r.Context(), days)
	if err != nil {
		h.httpError(w, "Failed to prune metrics", http.StatusInternalServerError)
		return
	}
	h.respondJson(w, http.StatusOK, api.PruneMetricsResponse{Deleted: deleted})
}
