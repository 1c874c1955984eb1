// Package execution orders, gates, runs, and records provisioning steps.
package execution

import (
	"time"

	"github.com/hoistlabs/hoist/internal/domain/step"
)

// Result captures the outcome of one step in a run. Immutable once
// recorded: the With* builders return copies.
type Result struct {
	stepID     step.ID
	status     step.Status
	skipReason step.SkipReason
	output     string
	err        error
	attempts   int
	startedAt  time.Time
	duration   time.Duration
}

// NewResult creates a Result.
func NewResult(stepID step.ID, status step.Status) Result {
	return Result{stepID: stepID, status: status}
}

// StepID returns the ID of the step.
func (r Result) StepID() step.ID { return r.stepID }

// Status returns the recorded status.
func (r Result) Status() step.Status { return r.status }

// SkipReason explains a skipped status; empty otherwise.
func (r Result) SkipReason() step.SkipReason { return r.skipReason }

// Output returns the captured, redacted, bounded action output.
func (r Result) Output() string { return r.output }

// Error returns the failure, if any.
func (r Result) Error() error { return r.err }

// Attempts returns how many times the action ran, counting retries.
func (r Result) Attempts() int { return r.attempts }

// StartedAt returns when the step began.
func (r Result) StartedAt() time.Time { return r.startedAt }

// Duration returns the total time across all attempts.
func (r Result) Duration() time.Duration { return r.duration }

// Converged returns true if the step succeeded or was already satisfied.
func (r Result) Converged() bool {
	return r.status.Converged() && r.skipReason != step.SkipDependencyFailed
}

// WithSkipReason returns a copy with the skip reason set.
func (r Result) WithSkipReason(reason step.SkipReason) Result {
	r.skipReason = reason
	return r
}

// WithOutput returns a copy with the output set.
func (r Result) WithOutput(output string) Result {
	r.output = output
	return r
}

// WithError returns a copy with the error set.
func (r Result) WithError(err error) Result {
	r.err = err
	return r
}

// WithAttempts returns a copy with the attempt count set.
func (r Result) WithAttempts(n int) Result {
	r.attempts = n
	return r
}

// WithTiming returns a copy with start time and duration set.
func (r Result) WithTiming(startedAt time.Time, duration time.Duration) Result {
	r.startedAt = startedAt
	r.duration = duration
	return r
}
