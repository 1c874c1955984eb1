package step

import (
	"fmt"
)

// Graph is a directed acyclic graph of steps. It preserves declaration
// order so topological sorting is deterministic: when several steps are
// simultaneously eligible, the one declared first runs first.
type Graph struct {
	steps      map[string]Step
	order      []string            // declaration order of step IDs
	dependsOn  map[string][]string // step ID -> dependency IDs
	dependedBy map[string][]string // step ID -> dependents
}

// NewGraph creates an empty Graph.
func NewGraph() *Graph {
	return &Graph{
		steps:      make(map[string]Step),
		dependsOn:  make(map[string][]string),
		dependedBy: make(map[string][]string),
	}
}

// Len returns the number of steps in the graph.
func (g *Graph) Len() int {
	return len(g.steps)
}

// Add registers a step. Returns ErrDuplicateStep if a step with the same
// ID already exists.
func (g *Graph) Add(s Step) error {
	if err := s.Validate(); err != nil {
		return err
	}

	id := s.ID().String()
	if _, exists := g.steps[id]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateStep, id)
	}

	g.steps[id] = s
	g.order = append(g.order, id)

	deps := s.DependsOn()
	depIDs := make([]string, len(deps))
	for i, dep := range deps {
		depID := dep.String()
		depIDs[i] = depID
		g.dependedBy[depID] = append(g.dependedBy[depID], id)
	}
	g.dependsOn[id] = depIDs

	return nil
}

// Get retrieves a step by ID.
func (g *Graph) Get(id ID) (Step, bool) {
	s, ok := g.steps[id.String()]
	return s, ok
}

// Steps returns all steps in declaration order.
func (g *Graph) Steps() []Step {
	steps := make([]Step, 0, len(g.steps))
	for _, id := range g.order {
		steps = append(steps, g.steps[id])
	}
	return steps
}

// Validate checks that every declared dependency resolves to a step.
func (g *Graph) Validate() error {
	for _, id := range g.order {
		for _, depID := range g.dependsOn[id] {
			if _, exists := g.steps[depID]; !exists {
				return fmt.Errorf("%w: step %q depends on %q", ErrMissingDep, id, depID)
			}
		}
	}
	return nil
}

// TopologicalSort returns steps in dependency order, declaration order
// breaking ties. Returns a CycleError naming the cycle's members when the
// graph is not acyclic.
func (g *Graph) TopologicalSort() ([]Step, error) {
	if err := g.Validate(); err != nil {
		return nil, err
	}

	inDegree := make(map[string]int, len(g.steps))
	for _, id := range g.order {
		inDegree[id] = len(g.dependsOn[id])
	}

	sorted := make([]Step, 0, len(g.steps))
	done := make(map[string]bool, len(g.steps))

	// Kahn's algorithm. Instead of a queue, each round scans the
	// declaration order for the first eligible step, which makes the
	// result stable for identical inputs.
	for len(sorted) < len(g.steps) {
		picked := ""
		for _, id := range g.order {
			if !done[id] && inDegree[id] == 0 {
				picked = id
				break
			}
		}
		if picked == "" {
			return nil, &CycleError{Members: g.cycleMembers(done)}
		}

		done[picked] = true
		sorted = append(sorted, g.steps[picked])
		for _, dependent := range g.dependedBy[picked] {
			inDegree[dependent]--
		}
	}

	return sorted, nil
}

// cycleMembers walks the unsorted remainder of the graph to recover one
// concrete cycle for the error message.
func (g *Graph) cycleMembers(done map[string]bool) []string {
	start := ""
	for _, id := range g.order {
		if !done[id] {
			start = id
			break
		}
	}
	if start == "" {
		return nil
	}

	// Follow dependencies among unresolved steps until a node repeats.
	seen := make(map[string]int)
	path := []string{}
	current := start
	for {
		if at, ok := seen[current]; ok {
			return append(path[at:], current)
		}
		seen[current] = len(path)
		path = append(path, current)

		next := ""
		for _, depID := range g.dependsOn[current] {
			if !done[depID] {
				next = depID
				break
			}
		}
		if next == "" {
			// Should not happen for a true cycle; report the path as-is.
			return path
		}
		current = next
	}
}
