package execution

import (
	"github.com/hoistlabs/hoist/internal/domain/probe"
	"github.com/hoistlabs/hoist/internal/domain/step"
)

// RunPlan is the dependency-ordered sequence of steps for one invocation.
// The planner constructs it and nothing mutates it afterwards.
type RunPlan struct {
	steps []step.Step
}

// newRunPlan creates a RunPlan over an already-ordered step sequence.
func newRunPlan(steps []step.Step) *RunPlan {
	return &RunPlan{steps: steps}
}

// Len returns the number of steps.
func (p *RunPlan) Len() int {
	return len(p.steps)
}

// IsEmpty returns true if the plan has no steps.
func (p *RunPlan) IsEmpty() bool {
	return len(p.steps) == 0
}

// Steps returns the ordered steps.
func (p *RunPlan) Steps() []step.Step {
	return p.steps
}

// HasDestructive returns true if any step is marked destructive.
func (p *RunPlan) HasDestructive() bool {
	for _, s := range p.steps {
		if s.Destructive() {
			return true
		}
	}
	return false
}

// DestructiveSteps returns the destructive steps in plan order.
func (p *RunPlan) DestructiveSteps() []step.Step {
	var out []step.Step
	for _, s := range p.steps {
		if s.Destructive() {
			out = append(out, s)
		}
	}
	return out
}

// SecretsNeeded returns the names of secrets any planned step declares.
func (p *RunPlan) SecretsNeeded() []string {
	seen := make(map[string]bool)
	var names []string
	for _, s := range p.steps {
		for _, name := range s.Secrets() {
			if !seen[name] {
				seen[name] = true
				names = append(names, name)
			}
		}
	}
	return names
}

// PreviewEntry pairs a planned step with its probed state.
type PreviewEntry struct {
	Step  step.Step
	State probe.Result
	Err   error
}

// WouldRun returns true if executing the plan now would run this step.
func (e PreviewEntry) WouldRun() bool {
	if e.State == probe.Satisfied {
		return false
	}
	if e.State == probe.Unknown && e.Step.SkipOnUnknown() {
		return false
	}
	return true
}

// PreviewSummary aggregates a preview.
type PreviewSummary struct {
	Total     int
	WouldRun  int
	Satisfied int
	Unknown   int
}

// Summarize aggregates preview entries.
func Summarize(entries []PreviewEntry) PreviewSummary {
	summary := PreviewSummary{Total: len(entries)}
	for _, e := range entries {
		switch e.State {
		case probe.Satisfied:
			summary.Satisfied++
		case probe.Unknown:
			summary.Unknown++
		case probe.NotSatisfied:
		}
		if e.WouldRun() {
			summary.WouldRun++
		}
	}
	return summary
}
