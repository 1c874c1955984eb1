package runlog

import (
	"time"

	"github.com/hoistlabs/hoist/internal/domain/execution"
	"github.com/hoistlabs/hoist/internal/domain/step"
)

// Process exit codes.
const (
	ExitOK          = 0 // every step succeeded or was already satisfied
	ExitFailed      = 1 // a step failed under an abort policy
	ExitInvalid     = 2 // invalid invocation or configuration
	ExitInterrupted = 3 // interrupted by signal
)

// Summary aggregates a run's results for the final report and exit code.
type Summary struct {
	Total     int
	Succeeded int
	Failed    int
	Warned    int
	Skipped   int
	Aborted   int
	Duration  time.Duration
}

// Summarize builds a Summary from recorded results.
func Summarize(results []execution.Result) Summary {
	summary := Summary{Total: len(results)}
	for _, r := range results {
		switch r.Status() {
		case step.StatusSucceeded:
			summary.Succeeded++
		case step.StatusFailed:
			summary.Failed++
		case step.StatusWarned:
			summary.Warned++
		case step.StatusSkipped:
			summary.Skipped++
		case step.StatusAborted:
			summary.Aborted++
		}
		summary.Duration += r.Duration()
	}
	return summary
}

// Converged returns true if the run left the host in the declared state:
// nothing failed, nothing was left unexecuted.
func (s Summary) Converged() bool {
	return s.Failed == 0 && s.Aborted == 0
}

// ExitCode maps the summary to the process exit code.
func (s Summary) ExitCode() int {
	if s.Failed > 0 || s.Aborted > 0 {
		return ExitFailed
	}
	return ExitOK
}
