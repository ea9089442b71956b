// Package api contains shared JSON request/response structs.
// This package is shared between the CLI, the daemon, and the remote
// WooCommerce connector endpoints.
package api

// RecalcRequest is the body sent to the targeted recalculation endpoint.
// Mode is always "targeted": recalculating the whole catalog for a handful
// of SKUs is not acceptable.
type RecalcRequest struct {
	SKUs []string `json:"skus"`
	Mode string   `json:"mode"`
}

// RecalcResponse is the recalculation endpoint's reply.
type RecalcResponse struct {
	Success           bool   `json:"success"`
	ProductsProcessed int    `json:"products_processed"`
	ProductsSkipped   int    `json:"products_skipped"`
	CacheHits         int    `json:"cache_hits,omitempty"`
	Message           string `json:"message,omitempty"`
}

// StockReadRequest is the body sent to the batched stock read endpoint.
type StockReadRequest struct {
	SKUs []string `json:"skus"`
}

// StockResult is one per-SKU row from the stock read endpoint.
type StockResult struct {
	SKU           string `json:"sku"`
	PreorderCount int    `json:"preorder_count"`
	ShelfCount    int    `json:"shelf_count"`
	ImageURL      string `json:"image_url,omitempty"`
	Skipped       bool   `json:"skipped"`
	Reason        string `json:"reason,omitempty"`
}

// StockReadMeta carries the read endpoint's processing statistics.
type StockReadMeta struct {
	TotalSKUs        int     `json:"total_skus"`
	Processed        int     `json:"processed"`
	Skipped          int     `json:"skipped"`
	ProcessingMS     int64   `json:"processing_ms"`
	GatingEfficiency float64 `json:"gating_efficiency"`
}

// StockReadResponse is the batched stock read endpoint's reply.
type StockReadResponse struct {
	Success bool          `json:"success"`
	Message string        `json:"message,omitempty"`
	Results []StockResult `json:"results"`
	Meta    StockReadMeta `json:"meta"`
}

// FetchRequest is the daemon's request body for POST /fetch.
type FetchRequest struct {
	SKUs []string `json:"skus"`
	Site string   `json:"site"`
	// Mode is one of "fast_read", "force_recompute", "auto".
	Mode string `json:"mode,omitempty"`
}

// RunImportResponse is the daemon's reply for POST /imports/{site}/{kind}/run.
type RunImportResponse struct {
	RunID           string `json:"run_id"`
	State           string `json:"state"`
	Reason          string `json:"reason,omitempty"`
	TriggerAttempts int    `json:"trigger_attempts"`
	PollAttempts    int    `json:"poll_attempts"`
	ElapsedMS       int64  `json:"elapsed_ms"`
}

// MetricsBucketResponse is one aggregated metrics row in report replies.
type MetricsBucketResponse struct {
	Date        string `json:"date"`
	Strategy    string `json:"strategy"`
	Calls       int    `json:"calls"`
	TotalTimeMS int64  `json:"total_time_ms"`
	TotalSKUs   int    `json:"total_skus"`
	AvgTimeMS   int64  `json:"avg_time_ms"`
	AvgSKUs     int    `json:"avg_skus"`
}

// MetricsReportResponse is the daemon's reply for GET /metrics/report.
type MetricsReportResponse struct {
	Buckets []MetricsBucketResponse `json:"buckets"`
}

// PruneMetricsResponse is the daemon's reply for DELETE /metrics.
type PruneMetricsResponse struct {
	Deleted int `json:"deleted"`
}

// ErrorResponse is the standard error response format.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}
