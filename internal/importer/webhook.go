package importer

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"
)

// FireWebhook POSTs the outcome to url and never fails the run over it.
// Notification is strictly best effort: the import already finished, and a
// broken webhook receiver must not change the outcome.
func FireWebhook(ctx context.Context, log *slog.Logger, url string, outcome Outcome) {
	if url == "" {
		return
	}
	body, err := json.Marshal(outcome)
	if err != nil {
		log.Warn("webhook payload encoding failed", "error", err)
		return
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		log.Warn("webhook request build failed", "url", url, "error", err)
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		log.Warn("webhook delivery failed", "url", url, "error", err)
		return
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		log.Warn("webhook receiver rejected outcome", "url", url, "status", resp.StatusCode)
		return
	}
	log.Info("webhook delivered", "url", url, "run_id", outcome.RunID)
}
