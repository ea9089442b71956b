package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"stockplane/internal/engine"
	"stockplane/internal/fetch"
	"stockplane/internal/importer"
	"stockplane/internal/metrics"
	"stockplane/internal/remote"
	"stockplane/internal/sites"
	"stockplane/internal/store/memory"
	"stockplane/pkg/api"
)

// newTestHandlers wires a full engine over a fake remote site so handler
// tests exercise the real trigger/poll and fetch paths.
func newTestHandlers(t *testing.T) (*Handlers, *memory.Store) {
	t.Helper()

	mux := http.NewServeMux()
	polls := 0
	mux.HandleFunc("/wp-load.php", func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("action") {
		case "trigger":
			fmt.Fprint(w, "Import #7 started")
		case "poll":
			polls++
			if polls < 2 {
				fmt.Fprint(w, "processing...")
				return
			}
			fmt.Fprint(w, "Import complete")
		}
	})
	mux.HandleFunc("/stock", func(w http.ResponseWriter, r *http.Request) {
		var req api.StockReadRequest
		json.NewDecoder(r.Body).Decode(&req)
		resp := api.StockReadResponse{Success: true}
		for _, sku := range req.SKUs {
			resp.Results = append(resp.Results, api.StockResult{SKU: sku, ShelfCount: 1})
		}
		json.NewEncoder(w).Encode(resp)
	})
	mux.HandleFunc("/recalc", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(api.RecalcResponse{Success: true, ProductsProcessed: 1})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	provider := sites.NewProvider([]sites.Site{{
		Name:         "demo",
		ImportURL:    srv.URL + "/wp-load.php",
		ImportKey:    "k",
		StockReadURL: srv.URL + "/stock",
		RecalcURL:    srv.URL + "/recalc",
		APIToken:     "tok",
		Imports:      map[string]string{"stock": "7"},
	}})

	client := remote.New(log, remote.WithBackoff(time.Millisecond, 2*time.Millisecond))
	kv := memory.New()
	recorder := metrics.NewRecorder(kv, log)
	e := engine.New(
		provider,
		importer.NewRunner(client, log),
		fetch.NewSelector(client, recorder, log, fetch.WithSettleDelay(0), fetch.WithRequestRetries(1)),
		recorder,
		log,
		engine.WithRunConfig(importer.RunConfig{
			MaxTriggerRetries: 2,
			RequestRetries:    1,
			MaxPollAttempts:   5,
			JobTimeout:        time.Hour,
			BudgetMargin:      time.Hour,
		}),
	)
	return New(e, nil), kv
}

func TestRunImport(t *testing.T) {
	h, _ := newTestHandlers(t)

	req := httptest.NewRequest(http.MethodPost, "/imports/demo/stock/run", nil)
	req.SetPathValue("site", "demo")
	req.SetPathValue("kind", "stock")
	rr := httptest.NewRecorder()
	h.RunImport(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rr.Code, rr.Body.String())
	}
	var resp api.RunImportResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.State != string(importer.StateCompleted) {
		t.Errorf("state = %s (%s)", resp.State, resp.Reason)
	}
	if resp.RunID == "" {
		t.Error("missing run ID")
	}
}

func TestRunImportUnknownSite(t *testing.T) {
	h, _ := newTestHandlers(t)

	req := httptest.NewRequest(http.MethodPost, "/imports/nope/stock/run", nil)
	req.SetPathValue("site", "nope")
	req.SetPathValue("kind", "stock")
	rr := httptest.NewRecorder()
	h.RunImport(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rr.Code)
	}
}

func TestRunImportUnknownKind(t *testing.T) {
	h, _ := newTestHandlers(t)

	req := httptest.NewRequest(http.MethodPost, "/imports/demo/picking/run", nil)
	req.SetPathValue("site", "demo")
	req.SetPathValue("kind", "picking")
	rr := httptest.NewRecorder()
	h.RunImport(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rr.Code)
	}
}

func TestFetch(t *testing.T) {
	h, _ := newTestHandlers(t)

	body, _ := json.Marshal(api.FetchRequest{Site: "demo", SKUs: []string{"A"}, Mode: "fast_read"})
	req := httptest.NewRequest(http.MethodPost, "/fetch", bytes.NewReader(body))
	rr := httptest.NewRecorder()
	h.Fetch(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rr.Code, rr.Body.String())
	}
	var res fetch.Result
	if err := json.Unmarshal(rr.Body.Bytes(), &res); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if res.Strategy != fetch.StrategyFastRead {
		t.Errorf("strategy = %s", res.Strategy)
	}
}

func TestFetchEmptySKUs(t *testing.T) {
	h, _ := newTestHandlers(t)

	body, _ := json.Marshal(api.FetchRequest{Site: "demo"})
	req := httptest.NewRequest(http.MethodPost, "/fetch", bytes.NewReader(body))
	rr := httptest.NewRecorder()
	h.Fetch(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rr.Code)
	}
}

func TestFetchUnknownModeRejected(t *testing.T) {
	h, _ := newTestHandlers(t)

	body, _ := json.Marshal(api.FetchRequest{Site: "demo", SKUs: []string{"A"}, Mode: "recompute"})
	req := httptest.NewRequest(http.MethodPost, "/fetch", bytes.NewReader(body))
	rr := httptest.NewRecorder()
	h.Fetch(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rr.Code)
	}
	var resp api.ErrorResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Error != `unknown fetch mode "recompute"` {
		t.Errorf("error = %q", resp.Error)
	}
}

func TestFetchInvalidBody(t *testing.T) {
	h, _ := newTestHandlers(t)

	req := httptest.NewRequest(http.MethodPost, "/fetch", bytes.NewReader([]byte("{broken")))
	rr := httptest.NewRecorder()
	h.Fetch(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rr.Code)
	}
}

func TestMetricsReportAndPrune(t *testing.T) {
	h, kv := newTestHandlers(t)
	ctx := context.Background()

	// A current bucket via a real fetch, plus one stale seeded bucket.
	body, _ := json.Marshal(api.FetchRequest{Site: "demo", SKUs: []string{"A"}})
	req := httptest.NewRequest(http.MethodPost, "/fetch", bytes.NewReader(body))
	h.Fetch(httptest.NewRecorder(), req)
	if err := kv.Set(ctx, "metrics_fast_read_2001-01-01", `{"calls":4,"totalTime":100,"totalSkus":8}`); err != nil {
		t.Fatal(err)
	}

	rr := httptest.NewRecorder()
	h.MetricsReport(rr, httptest.NewRequest(http.MethodGet, "/metrics/report", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("report status = %d", rr.Code)
	}
	var report api.MetricsReportResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &report); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(report.Buckets) != 2 {
		t.Fatalf("buckets = %d, want 2", len(report.Buckets))
	}
	last := report.Buckets[len(report.Buckets)-1]
	if last.Date != "2001-01-01" || last.AvgTimeMS != 25 || last.AvgSKUs != 2 {
		t.Errorf("oldest bucket = %+v", last)
	}

	rr = httptest.NewRecorder()
	h.PruneMetrics(rr, httptest.NewRequest(http.MethodDelete, "/metrics?retention_days=30", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("prune status = %d", rr.Code)
	}
	var pruned api.PruneMetricsResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &pruned); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if pruned.Deleted != 1 {
		t.Errorf("deleted = %d, want 1", pruned.Deleted)
	}
}

func TestPruneMetricsRejectsBadRetention(t *testing.T) {
	h, _ := newTestHandlers(t)

	for _, q := range []string{"retention_days=-1", "retention_days=abc"} {
		rr := httptest.NewRecorder()
		h.PruneMetrics(rr, httptest.NewRequest(http.MethodDelete, "/metrics?"+q, nil))
		if rr.Code != http.StatusBadRequest {
			t.Errorf("%s: status = %d, want 400", q, rr.Code)
		}
	}
}

func TestHealthz(t *testing.T) {
	h, _ := newTestHandlers(t)

	rr := httptest.NewRecorder()
	h.Healthz(rr, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rr.Code != http.StatusOK {
		t.Errorf("status = %d", rr.Code)
	}
}

func TestReadyzReportsStoreFailure(t *testing.T) {
	h, _ := newTestHandlers(t)
	h.ready = func(context.Context) error { return fmt.Errorf("connection refused") }

	rr := httptest.NewRecorder()
	h.Readyz(rr, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	if rr.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", rr.Code)
	}
}
