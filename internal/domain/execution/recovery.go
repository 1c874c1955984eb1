package execution

import (
	"time"

	"github.com/hoistlabs/hoist/internal/domain/step"
)

// Decision is the recovery controller's verdict on a step failure.
type Decision int

const (
	// DecisionAbort stops the run; remaining steps are recorded as
	// skipped-due-to-abort.
	DecisionAbort Decision = iota
	// DecisionContinue records the failure as a warning and proceeds.
	DecisionContinue
	// DecisionRetry re-runs the step after a backoff delay.
	DecisionRetry
)

// String returns a readable form of the decision.
func (d Decision) String() string {
	switch d {
	case DecisionAbort:
		return "abort"
	case DecisionContinue:
		return "continue"
	case DecisionRetry:
		return "retry"
	default:
		return "unknown"
	}
}

// defaultBackoffBase is the first retry delay; each further retry doubles it.
const defaultBackoffBase = 500 * time.Millisecond

// Controller decides, purely from a step's declared failure policy, how a
// failure affects the rest of the run.
type Controller struct {
	backoffBase time.Duration
}

// NewController creates a Controller with the default backoff.
func NewController() *Controller {
	return &Controller{backoffBase: defaultBackoffBase}
}

// WithBackoffBase overrides the first retry delay (tests use a tiny one).
func (c *Controller) WithBackoffBase(d time.Duration) *Controller {
	if d > 0 {
		c.backoffBase = d
	}
	return c
}

// OnFailure decides what happens after a failed attempt. attempt is
// 1-based: the count of attempts made so far. For retry policies the
// returned delay grows exponentially; once retries are exhausted the
// policy falls back to abort semantics.
func (c *Controller) OnFailure(s step.Step, attempt int) (Decision, time.Duration) {
	policy := s.Policy()

	switch policy.Kind() {
	case step.PolicyWarn:
		return DecisionContinue, 0
	case step.PolicyRetry:
		if attempt <= policy.Retries() {
			return DecisionRetry, c.backoff(attempt)
		}
		return DecisionAbort, 0
	default:
		return DecisionAbort, 0
	}
}

// backoff returns the delay before the given retry (1-based attempt that
// just failed): base, 2*base, 4*base, ...
func (c *Controller) backoff(attempt int) time.Duration {
	delay := c.backoffBase
	for i := 1; i < attempt; i++ {
		delay *= 2
	}
	return delay
}
