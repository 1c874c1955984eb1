// Package probe provides read-only checks of whether a step's goal state
// already holds on the host.
package probe

import "context"

// Result is the three-valued outcome of an idempotency probe.
type Result string

const (
	// Satisfied means the goal state already holds; the step can be skipped.
	Satisfied Result = "satisfied"
	// NotSatisfied means the goal state does not hold; the step must run.
	NotSatisfied Result = "not-satisfied"
	// Unknown means the probe itself could not run (e.g. the status tool is
	// unavailable). Treated conservatively as NotSatisfied unless the step
	// is marked skip-on-unknown.
	Unknown Result = "unknown"
)

// String returns the string representation of the result.
func (r Result) String() string {
	return string(r)
}

// Probe checks whether a goal state holds. Probes must be read-only:
// they never mutate host state.
type Probe interface {
	// Probe reports whether the goal state holds. A nil error with Unknown
	// is valid; an error also implies Unknown.
	Probe(ctx context.Context) (Result, error)

	// Describe returns a short human-readable description of the check.
	Describe() string
}

// Func adapts a function to the Probe interface.
type Func struct {
	Desc string
	Fn   func(ctx context.Context) (Result, error)
}

// Probe invokes the wrapped function.
func (f Func) Probe(ctx context.Context) (Result, error) {
	return f.Fn(ctx)
}

// Describe returns the description.
func (f Func) Describe() string {
	return f.Desc
}

// Always returns a probe with a fixed result, useful for steps that must
// run every time (result NotSatisfied) and in tests.
func Always(result Result) Probe {
	return Func{
		Desc: "always " + result.String(),
		Fn: func(_ context.Context) (Result, error) {
			return result, nil
		},
	}
}
