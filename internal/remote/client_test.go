package remote

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"stockplane/internal/logger"
)

func newTestClient() *Client {
	return New(logger.New(), WithBackoff(time.Millisecond, 5*time.Millisecond), WithTimeout(2*time.Second))
}

func TestDo_SuccessAfterTransientFailures(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) <= 2 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte("Import started"))
	}))
	defer server.Close()

	resp, err := newTestClient().Do(context.Background(), Request{Method: http.MethodGet, URL: server.URL}, 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Errorf("got status %d, want 200", resp.StatusCode)
	}
	if resp.Body != "Import started" {
		t.Errorf("got body %q", resp.Body)
	}
	if got := atomic.LoadInt32(&calls); got != 3 {
		t.Errorf("expected 3 attempts, got %d", got)
	}
}

func TestDo_ExhaustsRetriesAndReturnsLastReason(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		http.Error(w, "gateway exploded", http.StatusBadGateway)
	}))
	defer server.Close()

	_, err := newTestClient().Do(context.Background(), Request{Method: http.MethodGet, URL: server.URL}, 3)
	if err == nil {
		t.Fatal("expected error after exhausting retries")
	}
	if got := atomic.LoadInt32(&calls); got != 3 {
		t.Errorf("expected exactly 3 attempts, got %d", got)
	}
	if !strings.Contains(err.Error(), "502") {
		t.Errorf("expected last status in error, got: %v", err)
	}
}

func TestDo_WrongKeyIsFatal_SingleAttempt(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.Write([]byte("ERROR: Wrong Key provided"))
	}))
	defer server.Close()

	_, err := newTestClient().Do(context.Background(), Request{Method: http.MethodGet, URL: server.URL}, 5)
	if !errors.Is(err, ErrWrongKey) {
		t.Fatalf("expected ErrWrongKey, got %v", err)
	}
	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Errorf("expected exactly 1 attempt, got %d", got)
	}
}

func TestDo_ForbiddenIsPermanent_NoRetry(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	_, err := newTestClient().Do(context.Background(), Request{Method: http.MethodGet, URL: server.URL}, 5)
	if err == nil {
		t.Fatal("expected error for 403")
	}
	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Errorf("expected exactly 1 attempt, got %d", got)
	}
}

func TestDo_NotFoundIsPermanent_NoRetry(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	_, err := newTestClient().Do(context.Background(), Request{Method: http.MethodGet, URL: server.URL}, 4)
	if err == nil {
		t.Fatal("expected error for 404")
	}
	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Errorf("expected exactly 1 attempt, got %d", got)
	}
}

func TestDo_ContextCancellationStopsRetries(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestClient().Do(ctx, Request{Method: http.MethodGet, URL: server.URL}, 5)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestDo_SendsHeadersAndBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer token-123" {
			t.Errorf("missing Authorization header, got %q", r.Header.Get("Authorization"))
		}
		if r.Method != http.MethodPost {
			t.Errorf("got method %s, want POST", r.Method)
		}
		w.Write([]byte(`{"success":true}`))
	}))
	defer server.Close()

	header := http.Header{}
	header.Set("Authorization", "Bearer token-123")

	_, err := newTestClient().Do(context.Background(), Request{
		Method: http.MethodPost,
		URL:    server.URL,
		Header: header,
		Body:   []byte(`{"skus":["SKU1"]}`),
	}, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestSnippet_Truncates(t *testing.T) {
	long := strings.Repeat("x", 500)
	got := Snippet(long, 100)
	if len(got) != 103 {
		t.Errorf("expected 103 chars (100 + ellipsis), got %d", len(got))
	}
	if Snippet("short", 100) != "short" {
		t.Error("short strings should pass through")
	}
}
