package importer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"stockplane/internal/budget"
	"stockplane/internal/logger"
	"stockplane/internal/remote"
)

const (
	actionTrigger = "trigger"
	actionPoll    = "poll"
)

// Runner executes import runs against remote sites.
type Runner struct {
	client *remote.Client
	log    *slog.Logger
	tracer trace.Tracer
}

// NewRunner creates a Runner on top of the given retry client.
func NewRunner(client *remote.Client, log *slog.Logger) *Runner {
	return &Runner{
		client: client,
		log:    log,
		tracer: otel.Tracer("stockplane/importer"),
	}
}

// Run drives one import job to a terminal state: trigger with bounded
// retries, wait out the initial delay, then poll until the remote body
// reports completion or a bound trips. Run never returns an error; every
// failure mode is an Outcome with a terminal State and a Reason.
//
// The execution budget is checked before every remote call and takes
// priority over the job timeout: running out of our own time is a
// different failure than the remote job being slow, and the reason string
// must say which one it was.
func (r *Runner) Run(ctx context.Context, spec JobSpec, cfg RunConfig) Outcome {
	cfg = cfg.withDefaults()
	start := time.Now()

	runID := uuid.NewString()
	ctx = logger.WithRunID(ctx, runID)
	log := logger.FromContext(ctx, r.log).With("site", spec.Site, "import_id", spec.ImportID)

	ctx, span := r.tracer.Start(ctx, "importer.Run",
		trace.WithAttributes(
			attribute.String("site", spec.Site),
			attribute.String("import_id", spec.ImportID),
		))
	defer span.End()

	out := Outcome{
		RunID:    runID,
		Site:     spec.Site,
		ImportID: spec.ImportID,
		State:    StateNotStarted,
	}
	finish := func(state State, reason string) Outcome {
		out.State = state
		out.Reason = reason
		out.Elapsed = time.Since(start)
		out.ElapsedMS = out.Elapsed.Milliseconds()
		span.SetAttributes(attribute.String("state", string(state)))
		log.Info("import run finished",
			"state", state,
			"reason", reason,
			"trigger_attempts", out.TriggerAttempts,
			"poll_attempts", out.PollAttempts,
			"elapsed", out.Elapsed)
		return out
	}

	// Trigger phase.
	out.State = StateTriggering
	var lastTriggerErr error
	triggered := false
	for attempt := 1; attempt <= cfg.MaxTriggerRetries; attempt++ {
		if budget.Exceeded(start, cfg.BudgetMargin) {
			return finish(StateTimedOut, fmt.Sprintf(
				"execution budget of %s exhausted before import could be triggered (%d attempts)",
				cfg.BudgetMargin, out.TriggerAttempts))
		}

		out.TriggerAttempts = attempt
		resp, err := r.client.Do(ctx, remote.Request{
			Method: "GET",
			URL:    buildImportURL(spec, actionTrigger),
			Header: browserHeaders(),
		}, cfg.RequestRetries)
		if err != nil {
			if errors.Is(err, remote.ErrWrongKey) {
				return finish(StateFailed, fmt.Sprintf("Incorrect Import Key: %v", err))
			}
			if ctx.Err() != nil {
				return finish(StateAborted, ctx.Err().Error())
			}
			lastTriggerErr = err
			log.Warn("trigger attempt failed", "attempt", attempt, "error", err)
			if attempt < cfg.MaxTriggerRetries {
				if err := budget.Sleep(ctx, cfg.RetryDelay); err != nil {
					return finish(StateAborted, err.Error())
				}
			}
			continue
		}

		switch classify(resp.Body) {
		case markerWrongKey:
			return finish(StateFailed, "Incorrect Import Key: rejected by remote")
		case markerFailed:
			// Business failure reported inside a 200 trigger response;
			// there is no job to poll.
			return finish(StateFailed, fmt.Sprintf(
				"trigger rejected: %s", remote.Snippet(resp.Body, 200)))
		case markerCompleted:
			out.State = StateTriggered
			return finish(StateCompleted, "import completed on trigger")
		default:
			triggered = true
		}
		if triggered {
			break
		}
	}
	if !triggered {
		return finish(StateFailed, fmt.Sprintf(
			"failed to trigger import after %d attempts: %v",
			out.TriggerAttempts, lastTriggerErr))
	}

	out.State = StateTriggered
	log.Info("import triggered", "attempts", out.TriggerAttempts)
	if err := budget.Sleep(ctx, cfg.InitialDelay); err != nil {
		return finish(StateAborted, err.Error())
	}

	// Poll phase.
	out.State = StatePolling
	pollStart := time.Now()
	for attempt := 1; attempt <= cfg.MaxPollAttempts; attempt++ {
		if budget.Exceeded(start, cfg.BudgetMargin) {
			return finish(StateTimedOut, fmt.Sprintf(
				"execution budget of %s exhausted after %d poll attempts",
				cfg.BudgetMargin, out.PollAttempts))
		}
		if time.Since(pollStart) > cfg.JobTimeout {
			return finish(StateTimedOut, fmt.Sprintf(
				"job timeout of %s exceeded after %d poll attempts",
				cfg.JobTimeout, out.PollAttempts))
		}

		out.PollAttempts = attempt
		resp, err := r.client.Do(ctx, remote.Request{
			Method: "GET",
			URL:    buildImportURL(spec, actionPoll),
			Header: browserHeaders(),
		}, cfg.RequestRetries)
		if err != nil {
			if errors.Is(err, remote.ErrWrongKey) {
				return finish(StateFailed, fmt.Sprintf("Incorrect Import Key: %v", err))
			}
			if ctx.Err() != nil {
				return finish(StateAborted, ctx.Err().Error())
			}
			// A failed poll tells us nothing about the job; keep polling.
			log.Warn("poll attempt failed", "attempt", attempt, "error", err)
		} else {
			switch classify(resp.Body) {
			case markerCompleted:
				return finish(StateCompleted, fmt.Sprintf(
					"import completed after %d poll attempts", attempt))
			case markerWrongKey:
				return finish(StateFailed, "Incorrect Import Key: rejected by remote")
			case markerFailed:
				return finish(StateFailed, fmt.Sprintf(
					"remote reported failure: %s", remote.Snippet(resp.Body, 200)))
			case markerAlreadyRunning:
				out.AlreadyRunning++
				log.Debug("import still running", "attempt", attempt)
			default:
				log.Debug("import in progress", "attempt", attempt)
			}
		}

		if attempt < cfg.MaxPollAttempts {
			if err := budget.Sleep(ctx, cfg.PollInterval); err != nil {
				return finish(StateAborted, err.Error())
			}
		}
	}

	return finish(StateTimedOut, fmt.Sprintf(
		"import processing timed out after %d poll attempts (remote reported already running %d times)",
		out.PollAttempts, out.AlreadyRunning))
}
