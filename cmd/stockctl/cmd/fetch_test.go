package cmd

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/viper"

	"stockplane/pkg/api"
)

func TestFetchCommand_FastRead(t *testing.T) {
	resetViper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/stock") {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		json.NewEncoder(w).Encode(api.StockReadResponse{
			Success: true,
			Results: []api.StockResult{
				{SKU: "SKU-001", PreorderCount: 2, ShelfCount: 14},
				{SKU: "SKU-404", Skipped: true, Reason: "not found"},
			},
		})
	}))
	defer server.Close()

	viper.Set("sites", writeSitesFile(t, server.URL))
	viper.Set("metrics-file", filepath.Join(t.TempDir(), "metrics.json"))

	output := runCLI(t, "fetch", "demo", "SKU-001", "SKU-404", "--mode", "fast_read")

	if !strings.Contains(output, "Strategy: fast_read") {
		t.Errorf("expected fast_read strategy, got:\n%s", output)
	}
	if !strings.Contains(output, "SKU-001") || !strings.Contains(output, "14") {
		t.Errorf("expected stock rows, got:\n%s", output)
	}
	if !strings.Contains(output, "skipped: not found") {
		t.Errorf("expected skipped note, got:\n%s", output)
	}
}

func TestFetchCommand_UnknownModeRejected(t *testing.T) {
	resetViper()

	output := runCLI(t, "fetch", "demo", "SKU-001", "--mode", "recompute")

	if !strings.Contains(output, `unknown fetch mode "recompute"`) {
		t.Errorf("expected mode rejection, got:\n%s", output)
	}
}

func TestFetchCommand_BothPathsDown(t *testing.T) {
	resetViper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusInternalServerError)
	}))
	defer server.Close()

	viper.Set("sites", writeSitesFile(t, server.URL))
	viper.Set("metrics-file", filepath.Join(t.TempDir(), "metrics.json"))
	viper.Set("request-retries", 1)

	output := runCLI(t, "fetch", "demo", "SKU-001", "--mode", "fast_read")

	if !strings.Contains(output, "Fetch failed (critical_failure)") {
		t.Errorf("expected critical failure, got:\n%s", output)
	}
}
