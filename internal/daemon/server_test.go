package daemon

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"stockplane/internal/config"
	"stockplane/internal/engine"
	"stockplane/internal/fetch"
	"stockplane/internal/importer"
	"stockplane/internal/metrics"
	"stockplane/internal/remote"
	"stockplane/internal/sites"
	"stockplane/internal/store/memory"
)

func newTestServer() *Server {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	client := remote.New(log, remote.WithBackoff(time.Millisecond, 2*time.Millisecond))
	kv := memory.New()
	recorder := metrics.NewRecorder(kv, log)
	e := engine.New(
		sites.NewProvider([]sites.Site{{Name: "demo", ImportURL: "http://127.0.0.1:1/wp-load.php"}}),
		importer.NewRunner(client, log),
		fetch.NewSelector(client, recorder, log),
		recorder,
		log,
	)
	cfg := &config.Config{APIToken: "secret", APIRateLimit: 0}
	return New(":0", e, cfg, http.NotFoundHandler(), nil)
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	srv := newTestServer()

	for _, tt := range []struct {
		method, path string
	}{
		{http.MethodPost, "/imports/demo/stock/run"},
		{http.MethodPost, "/fetch"},
		{http.MethodGet, "/metrics/report"},
		{http.MethodDelete, "/metrics"},
	} {
		req := httptest.NewRequest(tt.method, tt.path, nil)
		rr := httptest.NewRecorder()
		srv.Handler().ServeHTTP(rr, req)
		if rr.Code != http.StatusUnauthorized {
			t.Errorf("%s %s without token: status = %d, want 401", tt.method, tt.path, rr.Code)
		}
	}
}

func TestProbesAreOpen(t *testing.T) {
	srv := newTestServer()

	for _, path := range []string{"/healthz", "/readyz"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rr := httptest.NewRecorder()
		srv.Handler().ServeHTTP(rr, req)
		if rr.Code != http.StatusOK {
			t.Errorf("GET %s: status = %d, want 200", path, rr.Code)
		}
	}
}

func TestAuthorizedMetricsReport(t *testing.T) {
	srv := newTestServer()

	req := httptest.NewRequest(http.MethodGet, "/metrics/report", nil)
	req.Header.Set("Authorization", "Bearer secret")
	rr := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rr.Code)
	}
}
