// Package importer drives one remote WP All Import job from trigger to a
// terminal state.
package importer

import "time"

// State is one stop of the import run state machine.
// NotStarted, Triggering, Triggered and Polling are transitional;
// Completed, Failed, TimedOut and Aborted are terminal.
type State string

const (
	StateNotStarted State = "not_started"
	StateTriggering State = "triggering"
	StateTriggered  State = "triggered"
	StatePolling    State = "polling"
	StateCompleted  State = "completed"
	StateFailed     State = "failed"
	StateTimedOut   State = "timed_out"
	StateAborted    State = "aborted"
)

// Terminal reports whether s is a terminal state.
func (s State) Terminal() bool {
	switch s {
	case StateCompleted, StateFailed, StateTimedOut, StateAborted:
		return true
	}
	return false
}

// JobSpec identifies one remote batch job. Immutable once constructed.
type JobSpec struct {
	// Site is the site name, for logging and metrics only.
	Site string

	// ImportURL is the WP All Import entry point (wp-load.php).
	ImportURL string

	// ImportID is the numeric WP All Import ID.
	ImportID string

	// ImportKey is the shared import secret.
	ImportKey string
}

// RunConfig is the numeric retry/timing policy for one run.
type RunConfig struct {
	// MaxTriggerRetries bounds the trigger phase. The inter-retry delay is
	// fixed (RetryDelay): the remote system needs a cooldown, it is not
	// overloaded.
	MaxTriggerRetries int

	// RequestRetries is passed to the HTTP client for each remote call.
	RequestRetries int

	// RetryDelay separates trigger attempts.
	RetryDelay time.Duration

	// InitialDelay separates a successful trigger from the first poll; the
	// remote job needs lead time before it has any state to report.
	InitialDelay time.Duration

	// PollInterval separates poll attempts.
	PollInterval time.Duration

	// MaxPollAttempts bounds the poll phase.
	MaxPollAttempts int

	// JobTimeout is this import's own processing ceiling, measured from
	// the first poll.
	JobTimeout time.Duration

	// BudgetMargin is the overall execution ceiling, measured from the
	// start of the run. It must stay below the deployment's hard limit so
	// the run can fail with a clear reason instead of being killed.
	BudgetMargin time.Duration
}

// DefaultRunConfig returns the production policy.
func DefaultRunConfig() RunConfig {
	return RunConfig{
		MaxTriggerRetries: 5,
		RequestRetries:    3,
		RetryDelay:        20 * time.Second,
		InitialDelay:      30 * time.Second,
		PollInterval:      5 * time.Second,
		MaxPollAttempts:   60,
		JobTimeout:        6 * time.Hour,
		BudgetMargin:      5*time.Minute + 30*time.Second,
	}
}

// withDefaults fills invalid values. Zero delays are kept as-is so callers
// can run without suspension points; zero ceilings fall back to defaults.
func (c RunConfig) withDefaults() RunConfig {
	def := DefaultRunConfig()
	if c.MaxTriggerRetries <= 0 {
		c.MaxTriggerRetries = def.MaxTriggerRetries
	}
	if c.RequestRetries <= 0 {
		c.RequestRetries = def.RequestRetries
	}
	if c.MaxPollAttempts <= 0 {
		c.MaxPollAttempts = def.MaxPollAttempts
	}
	if c.JobTimeout <= 0 {
		c.JobTimeout = def.JobTimeout
	}
	if c.BudgetMargin <= 0 {
		c.BudgetMargin = def.BudgetMargin
	}
	if c.RetryDelay < 0 {
		c.RetryDelay = 0
	}
	if c.InitialDelay < 0 {
		c.InitialDelay = 0
	}
	if c.PollInterval < 0 {
		c.PollInterval = 0
	}
	return c
}

// Outcome is the terminal result of a run. Immutable once returned.
type Outcome struct {
	RunID           string        `json:"run_id"`
	Site            string        `json:"site"`
	ImportID        string        `json:"import_id"`
	State           State         `json:"state"`
	Reason          string        `json:"reason,omitempty"`
	TriggerAttempts int           `json:"trigger_attempts"`
	PollAttempts    int           `json:"poll_attempts"`
	AlreadyRunning  int           `json:"already_running_responses,omitempty"`
	Elapsed         time.Duration `json:"-"`
	ElapsedMS       int64         `json:"elapsed_ms"`
}

// Completed reports whether the run finished successfully.
func (o Outcome) Completed() bool {
	return o.State == StateCompleted
}
