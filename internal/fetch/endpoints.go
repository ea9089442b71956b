package fetch

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"stockplane/internal/remote"
	"stockplane/internal/sites"
	"stockplane/pkg/api"
)

func authHeader(token string) http.Header {
	h := http.Header{}
	h.Set("Content-Type", "application/json")
	if token != "" {
		h.Set("Authorization", "Bearer "+token)
	}
	return h
}

// readStock calls the batched stock read endpoint.
func (s *Selector) readStock(ctx context.Context, site sites.Site, skus []string) (*api.StockReadResponse, error) {
	body, err := json.Marshal(api.StockReadRequest{SKUs: skus})
	if err != nil {
		return nil, fmt.Errorf("encode stock read request: %w", err)
	}

	resp, err := s.client.Do(ctx, remote.Request{
		Method: http.MethodPost,
		URL:    site.StockReadURL,
		Header: authHeader(site.APIToken),
		Body:   body,
	}, s.requestRetries)
	if err != nil {
		return nil, fmt.Errorf("stock read: %w", err)
	}

	var out api.StockReadResponse
	if err := json.Unmarshal([]byte(resp.Body), &out); err != nil {
		return nil, fmt.Errorf("decode stock read response: %w", err)
	}
	if !out.Success {
		return nil, fmt.Errorf("stock read rejected: %s", out.Message)
	}
	return &out, nil
}

// recompute calls the targeted recalculation endpoint. Mode is always
// "targeted"; full-catalog recalculation is never requested from here.
func (s *Selector) recompute(ctx context.Context, site sites.Site, skus []string) (*api.RecalcResponse, error) {
	body, err := json.Marshal(api.RecalcRequest{SKUs: skus, Mode: "targeted"})
	if err != nil {
		return nil, fmt.Errorf("encode recalc request: %w", err)
	}

	resp, err := s.client.Do(ctx, remote.Request{
		Method: http.MethodPost,
		URL:    site.RecalcURL,
		Header: authHeader(site.APIToken),
		Body:   body,
	}, s.requestRetries)
	if err != nil {
		return nil, fmt.Errorf("recalc: %w", err)
	}

	var out api.RecalcResponse
	if err := json.Unmarshal([]byte(resp.Body), &out); err != nil {
		return nil, fmt.Errorf("decode recalc response: %w", err)
	}
	if !out.Success {
		return nil, fmt.Errorf("recalc rejected: %s", out.Message)
	}
	return &out, nil
}
