package execution

import (
	"context"

	"github.com/hoistlabs/hoist/internal/domain/step"
)

// Planner builds a RunPlan from a step graph. Planning never mutates host
// state; a CycleError or missing dependency aborts before anything runs.
type Planner struct{}

// NewPlanner creates a new Planner.
func NewPlanner() *Planner {
	return &Planner{}
}

// Plan orders the graph's steps by declared dependencies, declaration
// order breaking ties so identical inputs always produce identical plans.
func (p *Planner) Plan(graph *step.Graph) (*RunPlan, error) {
	sorted, err := graph.TopologicalSort()
	if err != nil {
		return nil, err
	}
	return newRunPlan(sorted), nil
}

// Preview probes every planned step without mutating the host, for plan
// display and dry runs.
func (p *Planner) Preview(ctx context.Context, plan *RunPlan, prober *Prober) []PreviewEntry {
	entries := make([]PreviewEntry, 0, plan.Len())
	for _, s := range plan.Steps() {
		state, err := prober.Probe(ctx, s)
		entries = append(entries, PreviewEntry{Step: s, State: state, Err: err})
	}
	return entries
}
