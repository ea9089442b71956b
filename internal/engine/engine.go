// Package engine assembles the import runner, the fetch selector and the
// metrics recorder behind one façade shared by the daemon and the CLI.
package engine

import (
	"context"
	"log/slog"

	"stockplane/internal/fetch"
	"stockplane/internal/importer"
	"stockplane/internal/metrics"
	"stockplane/internal/observability"
	"stockplane/internal/sites"
)

// Engine executes import runs and stock fetches for configured sites.
type Engine struct {
	sites    *sites.Provider
	runner   *importer.Runner
	selector *fetch.Selector
	recorder *metrics.Recorder
	log      *slog.Logger
	runCfg   importer.RunConfig
}

// Option configures an Engine.
type Option func(*Engine)

// WithRunConfig overrides the timing policy applied to import runs.
func WithRunConfig(cfg importer.RunConfig) Option {
	return func(e *Engine) { e.runCfg = cfg }
}

// New creates an Engine.
func New(provider *sites.Provider, runner *importer.Runner, selector *fetch.Selector, recorder *metrics.Recorder, log *slog.Logger, opts ...Option) *Engine {
	e := &Engine{
		sites:    provider,
		runner:   runner,
		selector: selector,
		recorder: recorder,
		log:      log,
		runCfg:   importer.DefaultRunConfig(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// RunImport drives the named import kind on the named site to a terminal
// state. A configured webhook receives the outcome asynchronously; the
// returned outcome does not wait for it.
func (e *Engine) RunImport(ctx context.Context, siteName, kind string) (importer.Outcome, error) {
	site, err := e.sites.Lookup(siteName)
	if err != nil {
		return importer.Outcome{}, err
	}
	importID, err := site.ImportID(kind)
	if err != nil {
		return importer.Outcome{}, err
	}

	out := e.runner.Run(ctx, importer.JobSpec{
		Site:      site.Name,
		ImportURL: site.ImportURL,
		ImportID:  importID,
		ImportKey: site.ImportKey,
	}, e.runCfg)

	observability.ImportRuns.WithLabelValues(site.Name, string(out.State)).Inc()

	if site.WebhookURL != "" {
		// Detached from the request context so a client disconnect does
		// not lose the notification.
		go importer.FireWebhook(context.WithoutCancel(ctx), e.log, site.WebhookURL, out)
	}
	return out, nil
}

// Fetch retrieves stock data for skus from the named site.
func (e *Engine) Fetch(ctx context.Context, siteName string, skus []string, mode fetch.Mode) (fetch.Result, error) {
	site, err := e.sites.Lookup(siteName)
	if err != nil {
		return fetch.Result{}, err
	}

	res := e.selector.Fetch(ctx, site, skus, mode)
	observability.FetchCalls.WithLabelValues(site.Name, res.Strategy).Inc()
	observability.FetchDuration.WithLabelValues(res.Strategy).Observe(res.Elapsed.Seconds())
	return res, nil
}

// MetricsReport returns the per-strategy day buckets, newest first.
func (e *Engine) MetricsReport(ctx context.Context) ([]metrics.Bucket, error) {
	return e.recorder.Report(ctx)
}

// PruneMetrics removes buckets older than retentionDays.
func (e *Engine) PruneMetrics(ctx context.Context, retentionDays int) (int, error) {
	return e.recorder.Prune(ctx, retentionDays)
}

// Sites returns the configured site names, sorted.
func (e *Engine) Sites() []string {
	return e.sites.Names()
}
