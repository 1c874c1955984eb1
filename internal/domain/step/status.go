package step

// Status represents the recorded outcome of a step.
type Status string

const (
	// StatusSucceeded indicates the step's action ran and its goal state holds.
	StatusSucceeded Status = "succeeded"
	// StatusFailed indicates the step's action failed under an abort policy
	// or exhausted its retries.
	StatusFailed Status = "failed"
	// StatusWarned indicates the step failed under a warn-and-continue
	// policy; the run proceeded.
	StatusWarned Status = "warned"
	// StatusSkipped indicates the step did not run, either because its goal
	// state already held or because a dependency failed.
	StatusSkipped Status = "skipped"
	// StatusAborted indicates the step was left unexecuted because an
	// earlier step failed under an abort policy (skipped-due-to-abort).
	StatusAborted Status = "skipped-due-to-abort"
)

// String returns the string representation of the status.
func (s Status) String() string {
	return string(s)
}

// Ran returns true if the step's action was actually invoked.
func (s Status) Ran() bool {
	switch s {
	case StatusSucceeded, StatusFailed, StatusWarned:
		return true
	case StatusSkipped, StatusAborted:
		return false
	}
	return false
}

// Converged returns true if the status counts toward a clean exit:
// either the action succeeded or the goal state already held.
func (s Status) Converged() bool {
	return s == StatusSucceeded || s == StatusSkipped
}

// SkipReason explains why a step was recorded StatusSkipped.
type SkipReason string

const (
	// SkipSatisfied means the postcondition probe reported the goal state
	// already holds.
	SkipSatisfied SkipReason = "already-satisfied"
	// SkipDependencyFailed means a declared dependency failed earlier in
	// the run.
	SkipDependencyFailed SkipReason = "dependency-failed"
	// SkipUnknownState means the probe could not run and the step is
	// marked skip-on-unknown.
	SkipUnknownState SkipReason = "probe-unknown"
)
