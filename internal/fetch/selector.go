// Package fetch picks and executes a stock retrieval strategy against the
// WooCommerce connector endpoints, with cross-fallback between the cheap
// cached read and the expensive recompute-then-read path.
package fetch

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"stockplane/internal/budget"
	"stockplane/internal/remote"
	"stockplane/internal/sites"
	"stockplane/pkg/api"
)

// Mode is the caller's requested freshness/cost tradeoff.
type Mode string

const (
	// ModeFastRead returns whatever the remote cache holds.
	ModeFastRead Mode = "fast_read"
	// ModeForceRecompute recalculates stock before reading.
	ModeForceRecompute Mode = "force_recompute"
	// ModeAuto lets the selector choose. It currently always picks the
	// fast path; the mode exists so callers do not hardcode a choice the
	// selector may later make from metrics.
	ModeAuto Mode = "auto"
)

// ParseMode validates a caller-supplied mode string. The empty string
// means ModeAuto; anything outside the known set is an error so typos
// surface instead of silently taking the fast path.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeFastRead, ModeForceRecompute, ModeAuto:
		return Mode(s), nil
	case "":
		return ModeAuto, nil
	default:
		return "", fmt.Errorf("unknown fetch mode %q", s)
	}
}

// Strategy names identify which execution path actually served a fetch.
// They are recorded into metrics buckets and must stay stable.
const (
	StrategyFastRead          = "fast_read"
	StrategyRecomputeThenRead = "recompute_then_read"
	StrategyFallbackFastRead  = "fallback_fast_read"
	StrategyFallbackRecompute = "fallback_recompute_then_read"
	StrategyCriticalFailure   = "critical_failure"
)

// Result is the outcome of one fetch, whichever path served it.
type Result struct {
	Strategy string                 `json:"strategy"`
	Response *api.StockReadResponse `json:"response,omitempty"`
	Recalc   *api.RecalcResponse    `json:"recalc,omitempty"`
	Warnings []string               `json:"warnings,omitempty"`
	// OriginalError is the failure of the path the caller asked for,
	// preserved even when a fallback path succeeded.
	OriginalError string        `json:"original_error,omitempty"`
	FallbackError string        `json:"fallback_error,omitempty"`
	Elapsed       time.Duration `json:"-"`
}

// OK reports whether the fetch produced stock data.
func (r Result) OK() bool {
	return r.Strategy != StrategyCriticalFailure
}

// Recorder receives one observation per fetch. Recording is best effort.
type Recorder interface {
	Record(ctx context.Context, strategy string, elapsed time.Duration, skus int) error
}

// Selector executes fetches with strategy fallback.
type Selector struct {
	client         *remote.Client
	rec            Recorder
	log            *slog.Logger
	tracer         trace.Tracer
	settleDelay    time.Duration
	requestRetries int
}

// Option configures a Selector.
type Option func(*Selector)

// WithSettleDelay overrides the pause between a recompute and the read
// that follows it.
func WithSettleDelay(d time.Duration) Option {
	return func(s *Selector) { s.settleDelay = d }
}

// WithRequestRetries overrides the per-endpoint retry budget.
func WithRequestRetries(n int) Option {
	return func(s *Selector) { s.requestRetries = n }
}

// NewSelector creates a Selector. The default settle delay is one second:
// the connector's recalculation commits asynchronously, and reading back
// immediately can return the pre-recompute values.
func NewSelector(client *remote.Client, rec Recorder, log *slog.Logger, opts ...Option) *Selector {
	s := &Selector{
		client:         client,
		rec:            rec,
		log:            log,
		tracer:         otel.Tracer("stockplane/fetch"),
		settleDelay:    time.Second,
		requestRetries: 3,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Fetch retrieves stock data for skus from site using mode, falling back
// to the opposite strategy when the requested one fails. Exactly one
// metrics observation is recorded per call, under the strategy that
// actually finished the fetch.
func (s *Selector) Fetch(ctx context.Context, site sites.Site, skus []string, mode Mode) Result {
	start := time.Now()

	ctx, span := s.tracer.Start(ctx, "fetch.Fetch",
		trace.WithAttributes(
			attribute.String("site", site.Name),
			attribute.String("mode", string(mode)),
			attribute.Int("skus", len(skus)),
		))
	defer span.End()

	res := s.fetch(ctx, site, skus, mode)
	res.Elapsed = time.Since(start)
	span.SetAttributes(attribute.String("strategy", res.Strategy))

	if s.rec != nil {
		if err := s.rec.Record(ctx, res.Strategy, res.Elapsed, len(skus)); err != nil {
			s.log.Warn("metrics recording failed", "strategy", res.Strategy, "error", err)
		}
	}
	s.log.Info("fetch finished",
		"site", site.Name,
		"mode", mode,
		"strategy", res.Strategy,
		"skus", len(skus),
		"elapsed", res.Elapsed)
	return res
}

func (s *Selector) fetch(ctx context.Context, site sites.Site, skus []string, mode Mode) Result {
	if len(skus) == 0 {
		return Result{
			Strategy:      StrategyCriticalFailure,
			OriginalError: "No SKUs provided",
		}
	}

	if mode == ModeAuto || mode == "" {
		mode = ModeFastRead
	}

	switch mode {
	case ModeForceRecompute:
		return s.recomputePath(ctx, site, skus)
	default:
		return s.fastPath(ctx, site, skus)
	}
}

// fastPath reads cached stock; on failure it falls back to the full
// recompute-then-read path.
func (s *Selector) fastPath(ctx context.Context, site sites.Site, skus []string) Result {
	read, err := s.readStock(ctx, site, skus)
	if err == nil {
		return Result{Strategy: StrategyFastRead, Response: read}
	}
	s.log.Warn("fast read failed, falling back to recompute", "site", site.Name, "error", err)

	recalc, recalcErr := s.recompute(ctx, site, skus)
	if recalcErr == nil {
		if serr := budget.Sleep(ctx, s.settleDelay); serr != nil {
			return Result{
				Strategy:      StrategyCriticalFailure,
				OriginalError: err.Error(),
				FallbackError: serr.Error(),
			}
		}
		read, readErr := s.readStock(ctx, site, skus)
		if readErr == nil {
			return Result{
				Strategy:      StrategyFallbackRecompute,
				Response:      read,
				Recalc:        recalc,
				Warnings:      []string{"Fast read failed, forced recalculation"},
				OriginalError: err.Error(),
			}
		}
		recalcErr = readErr
	}
	return Result{
		Strategy:      StrategyCriticalFailure,
		OriginalError: err.Error(),
		FallbackError: recalcErr.Error(),
	}
}

// recomputePath recalculates then reads; when either step fails it still
// tries a plain cached read so the caller gets stale data over no data.
func (s *Selector) recomputePath(ctx context.Context, site sites.Site, skus []string) Result {
	recalc, recalcErr := s.recompute(ctx, site, skus)
	if recalcErr == nil {
		if serr := budget.Sleep(ctx, s.settleDelay); serr != nil {
			return Result{
				Strategy:      StrategyCriticalFailure,
				OriginalError: serr.Error(),
			}
		}
		read, err := s.readStock(ctx, site, skus)
		if err == nil {
			return Result{Strategy: StrategyRecomputeThenRead, Response: read, Recalc: recalc}
		}
		s.log.Warn("read after recalculation failed, retrying plain read", "site", site.Name, "error", err)
		recalcErr = err
	} else {
		s.log.Warn("recalculation failed, falling back to cached read", "site", site.Name, "error", recalcErr)
	}

	read, readErr := s.readStock(ctx, site, skus)
	if readErr == nil {
		return Result{
			Strategy:      StrategyFallbackFastRead,
			Response:      read,
			Warnings:      []string{"Recalculation failed, returned cached data"},
			OriginalError: recalcErr.Error(),
		}
	}
	return Result{
		Strategy:      StrategyCriticalFailure,
		OriginalError: recalcErr.Error(),
		FallbackError: readErr.Error(),
	}
}
