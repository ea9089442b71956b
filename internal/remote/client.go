// Package remote issues HTTP requests to the WordPress-side endpoints with
// bounded retries, backoff, and failure classification.
//
// The remote contract is loose: legacy import endpoints report business
// failures inside 200 responses, so transport success and business success
// are classified separately. Transient failures are retried with
// exponential backoff; permanent failures (auth, DNS) stop immediately; a
// credential rejection inside a 200 body is fatal and surfaces as
// ErrWrongKey without further attempts.
package remote

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"net"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

// ErrWrongKey signals a credential rejection reported inside a 200 response.
// Retrying cannot fix a bad key, so callers must stop the whole run.
var ErrWrongKey = errors.New("incorrect import key detected in response")

// wrongKeyMarker is the free-text marker legacy endpoints put in otherwise
// successful responses when the import key is rejected.
const wrongKeyMarker = "wrong key"

// maxLoggedBody bounds response snippets in logs.
const maxLoggedBody = 300

// Request describes one outbound call.
type Request struct {
	Method string
	URL    string
	Header http.Header
	Body   []byte
}

// Response is the transport-level result of a successful call.
type Response struct {
	StatusCode int
	Body       string
	Elapsed    time.Duration
}

// Client sends requests with retries and rate limiting.
type Client struct {
	httpClient  *http.Client
	limiter     *rate.Limiter
	log         *slog.Logger
	backoffBase time.Duration
	backoffCap  time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout overrides the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.httpClient.Timeout = d }
}

// WithRateLimit caps outbound requests per second.
func WithRateLimit(rps float64) Option {
	return func(c *Client) {
		if rps > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(rps), 1)
		}
	}
}

// WithBackoff overrides the retry backoff base and cap.
func WithBackoff(base, cap time.Duration) Option {
	return func(c *Client) {
		c.backoffBase = base
		c.backoffCap = cap
	}
}

// New creates a client with the default 30s timeout and no rate limit.
func New(log *slog.Logger, opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		log:         log,
		backoffBase: 5 * time.Second,
		backoffCap:  60 * time.Second,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Do sends the request up to maxRetries times.
//
// A 200 response whose body contains the wrong-key marker returns
// ErrWrongKey immediately. 401/403/404 statuses and DNS failures stop
// retrying and return the failure. Everything else retries after
// base * 2^attempt (plus jitter, capped), and the last transient reason is
// returned when attempts exhaust.
func (c *Client) Do(ctx context.Context, req Request, maxRetries int) (*Response, error) {
	if maxRetries <= 0 {
		maxRetries = 1
	}

	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				return nil, err
			}
		}

		resp, err := c.send(ctx, req, attempt, maxRetries)
		if err == nil {
			return resp, nil
		}
		if errors.Is(err, ErrWrongKey) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}

		lastErr = err
		if isPermanent(err) {
			c.log.Warn("permanent failure, stopping retries",
				"url", req.URL, "attempt", attempt+1, "error", err)
			break
		}

		if attempt < maxRetries-1 {
			delay := c.backoffDelay(attempt)
			c.log.Info("transient failure, backing off",
				"url", req.URL, "attempt", attempt+1, "max_retries", maxRetries,
				"delay", delay, "error", err)
			if err := sleepCtx(ctx, delay); err != nil {
				return nil, err
			}
		}
	}

	return nil, fmt.Errorf("request failed after %d attempts: %w", maxRetries, lastErr)
}

// send performs one attempt and classifies the outcome.
func (c *Client) send(ctx context.Context, req Request, attempt, maxRetries int) (*Response, error) {
	var bodyReader io.Reader
	if len(req.Body) > 0 {
		bodyReader = bytes.NewReader(req.Body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, req.URL, bodyReader)
	if err != nil {
		return nil, &permanentError{fmt.Errorf("failed to build request: %w", err)}
	}
	for k, vs := range req.Header {
		for _, v := range vs {
			httpReq.Header.Add(k, v)
		}
	}

	start := time.Now()
	httpResp, err := c.httpClient.Do(httpReq)
	elapsed := time.Since(start)

	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if isDNSFailure(err) {
			c.log.Warn("hostname resolution failed", "url", req.URL, "error", err)
			return nil, &permanentError{err}
		}
		return nil, err
	}
	defer httpResp.Body.Close()

	raw, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	body := string(raw)

	c.log.Info("remote request",
		"url", req.URL,
		"attempt", attempt+1,
		"max_retries", maxRetries,
		"status", httpResp.StatusCode,
		"elapsed", elapsed,
		"body", Snippet(body, maxLoggedBody))

	if httpResp.StatusCode == http.StatusOK {
		if strings.Contains(strings.ToLower(body), wrongKeyMarker) {
			return nil, fmt.Errorf("%w: %s", ErrWrongKey, Snippet(body, 200))
		}
		return &Response{StatusCode: httpResp.StatusCode, Body: body, Elapsed: elapsed}, nil
	}

	statusErr := fmt.Errorf("HTTP status %d: %s", httpResp.StatusCode, Snippet(body, 200))
	switch httpResp.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden, http.StatusNotFound:
		return nil, &permanentError{statusErr}
	}
	return nil, statusErr
}

// backoffDelay returns base * 2^attempt plus up to 1s of jitter, capped.
func (c *Client) backoffDelay(attempt int) time.Duration {
	d := c.backoffBase << uint(attempt)
	if d > c.backoffCap || d <= 0 {
		d = c.backoffCap
	}
	jitter := time.Duration(rand.Int63n(int64(time.Second)))
	if c.backoffBase < time.Second {
		// Keep jitter proportional for short test backoffs.
		jitter = time.Duration(rand.Int63n(int64(c.backoffBase) + 1))
	}
	return d + jitter
}

// permanentError marks a failure that retrying cannot fix.
type permanentError struct {
	err error
}

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

// isPermanent reports whether err should stop the retry loop.
func isPermanent(err error) bool {
	var p *permanentError
	return errors.As(err, &p)
}

// isDNSFailure reports whether err is a hostname resolution failure.
func isDNSFailure(err error) bool {
	var dnsErr *net.DNSError
	return errors.As(err, &dnsErr)
}

// Snippet truncates s for logging and error messages.
func Snippet(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

// sleepCtx sleeps for d unless the context is cancelled first.
func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
