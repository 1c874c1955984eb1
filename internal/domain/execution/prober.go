package execution

import (
	"context"

	"github.com/hoistlabs/hoist/internal/domain/probe"
	"github.com/hoistlabs/hoist/internal/domain/step"
)

// Prober evaluates a step's postcondition probe and applies the policy
// for the ambiguous case: a probe that cannot run yields Unknown, which
// is treated as NotSatisfied unless the step opts into skip-on-unknown.
type Prober struct{}

// NewProber creates a new Prober.
func NewProber() *Prober {
	return &Prober{}
}

// Probe returns the step's current state. A probe error is reported as
// Unknown together with a ProbeError; the caller decides what that means
// for the step.
func (p *Prober) Probe(ctx context.Context, s step.Step) (probe.Result, error) {
	state, err := s.Check().Probe(ctx)
	if err != nil {
		return probe.Unknown, &step.ProbeError{StepID: s.ID(), Underlying: err}
	}
	return state, nil
}

// Gate decides whether a step should be skipped right now. The second
// return value is the reason when skip is true.
func (p *Prober) Gate(ctx context.Context, s step.Step) (bool, step.SkipReason, error) {
	state, err := p.Probe(ctx, s)

	switch state {
	case probe.Satisfied:
		return true, step.SkipSatisfied, nil
	case probe.Unknown:
		if s.SkipOnUnknown() {
			return true, step.SkipUnknownState, nil
		}
		// Conservative default: prefer re-running a safe action over
		// silently skipping required work.
		return false, "", err
	default:
		return false, "", nil
	}
}
