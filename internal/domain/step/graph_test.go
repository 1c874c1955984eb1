package step

import (
	"context"
	"errors"
	"testing"

	"github.com/hoistlabs/hoist/internal/domain/probe"
)

func newTestStep(id string, deps ...string) Step {
	action := FuncAction{
		Desc: "noop",
		Fn: func(_ context.Context, _ Env) (string, error) {
			return "", nil
		},
	}
	s := New(MustNewID(id), probe.Always(probe.NotSatisfied), action)
	if len(deps) > 0 {
		ids := make([]ID, len(deps))
		for i, dep := range deps {
			ids[i] = MustNewID(dep)
		}
		s = s.WithDependsOn(ids...)
	}
	return s
}

func TestGraph_Empty(t *testing.T) {
	graph := NewGraph()

	if graph.Len() != 0 {
		t.Errorf("Len() = %d, want 0", graph.Len())
	}
	if len(graph.Steps()) != 0 {
		t.Errorf("Steps() len = %d, want 0", len(graph.Steps()))
	}
}

func TestGraph_AddDuplicate(t *testing.T) {
	graph := NewGraph()

	if err := graph.Add(newTestStep("packages:install:git")); err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	err := graph.Add(newTestStep("packages:install:git"))

	if !errors.Is(err, ErrDuplicateStep) {
		t.Errorf("Add() error = %v, want %v", err, ErrDuplicateStep)
	}
}

func TestGraph_ValidateMissingDep(t *testing.T) {
	graph := NewGraph()
	_ = graph.Add(newTestStep("services:up:nginx", "packages:install:nginx"))

	err := graph.Validate()
	if !errors.Is(err, ErrMissingDep) {
		t.Errorf("Validate() error = %v, want %v", err, ErrMissingDep)
	}
}

func TestGraph_TopologicalSort_DependencyOrder(t *testing.T) {
	graph := NewGraph()
	_ = graph.Add(newTestStep("c", "b"))
	_ = graph.Add(newTestStep("b", "a"))
	_ = graph.Add(newTestStep("a"))

	sorted, err := graph.TopologicalSort()
	if err != nil {
		t.Fatalf("TopologicalSort() error = %v", err)
	}

	got := make([]string, len(sorted))
	for i, s := range sorted {
		got[i] = s.ID().String()
	}
	want := []string{"a", "b", "c"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("order = %v, want %v", got, want)
		}
	}
}

func TestGraph_TopologicalSort_DeclarationOrderBreaksTies(t *testing.T) {
	// All three are immediately eligible; the plan must follow
	// declaration order, not map iteration order.
	graph := NewGraph()
	_ = graph.Add(newTestStep("zeta"))
	_ = graph.Add(newTestStep("alpha"))
	_ = graph.Add(newTestStep("mid"))

	for i := 0; i < 10; i++ {
		sorted, err := graph.TopologicalSort()
		if err != nil {
			t.Fatalf("TopologicalSort() error = %v", err)
		}
		got := []string{sorted[0].ID().String(), sorted[1].ID().String(), sorted[2].ID().String()}
		if got[0] != "zeta" || got[1] != "alpha" || got[2] != "mid" {
			t.Fatalf("order = %v, want declaration order", got)
		}
	}
}

func TestGraph_TopologicalSort_CycleError(t *testing.T) {
	graph := NewGraph()
	_ = graph.Add(newTestStep("a", "b"))
	_ = graph.Add(newTestStep("b", "a"))

	_, err := graph.TopologicalSort()

	var cycleErr *CycleError
	if !errors.As(err, &cycleErr) {
		t.Fatalf("TopologicalSort() error = %v, want CycleError", err)
	}
	if len(cycleErr.Members) < 2 {
		t.Errorf("cycle members = %v, want at least the two participants", cycleErr.Members)
	}
	members := make(map[string]bool)
	for _, m := range cycleErr.Members {
		members[m] = true
	}
	if !members["a"] || !members["b"] {
		t.Errorf("cycle members = %v, want both a and b named", cycleErr.Members)
	}
}

func TestGraph_TopologicalSort_DiamondIsStable(t *testing.T) {
	graph := NewGraph()
	_ = graph.Add(newTestStep("base"))
	_ = graph.Add(newTestStep("left", "base"))
	_ = graph.Add(newTestStep("right", "base"))
	_ = graph.Add(newTestStep("top", "left", "right"))

	sorted, err := graph.TopologicalSort()
	if err != nil {
		t.Fatalf("TopologicalSort() error = %v", err)
	}

	got := make([]string, len(sorted))
	for i, s := range sorted {
		got[i] = s.ID().String()
	}
	want := []string{"base", "left", "right", "top"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("order = %v, want %v", got, want)
		}
	}
}
