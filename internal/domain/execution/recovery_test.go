package execution

import (
	"context"
	"testing"
	"time"

	"github.com/hoistlabs/hoist/internal/domain/probe"
	"github.com/hoistlabs/hoist/internal/domain/step"
)

func policyStep(t *testing.T, policy step.FailurePolicy) step.Step {
	t.Helper()
	s := runnableStep("p", probe.Always(probe.NotSatisfied), func(context.Context, step.Env) (string, error) {
		return "", nil
	})
	return s.WithPolicy(policy)
}

func TestController_AbortPolicy(t *testing.T) {
	controller := NewController()
	decision, delay := controller.OnFailure(policyStep(t, step.Abort()), 1)

	if decision != DecisionAbort {
		t.Errorf("decision = %v, want %v", decision, DecisionAbort)
	}
	if delay != 0 {
		t.Errorf("delay = %v, want 0", delay)
	}
}

func TestController_WarnPolicy(t *testing.T) {
	controller := NewController()
	decision, _ := controller.OnFailure(policyStep(t, step.WarnAndContinue()), 1)

	if decision != DecisionContinue {
		t.Errorf("decision = %v, want %v", decision, DecisionContinue)
	}
}

func TestController_RetryBackoffDoubles(t *testing.T) {
	controller := NewController().WithBackoffBase(100 * time.Millisecond)
	s := policyStep(t, step.Retry(3))

	wantDelays := []time.Duration{
		100 * time.Millisecond,
		200 * time.Millisecond,
		400 * time.Millisecond,
	}
	for attempt := 1; attempt <= 3; attempt++ {
		decision, delay := controller.OnFailure(s, attempt)
		if decision != DecisionRetry {
			t.Fatalf("attempt %d decision = %v, want %v", attempt, decision, DecisionRetry)
		}
		if delay != wantDelays[attempt-1] {
			t.Errorf("attempt %d delay = %v, want %v", attempt, delay, wantDelays[attempt-1])
		}
	}

	// Retries exhausted: fourth failure aborts.
	decision, _ := controller.OnFailure(s, 4)
	if decision != DecisionAbort {
		t.Errorf("exhausted decision = %v, want %v", decision, DecisionAbort)
	}
}

func TestDecision_String(t *testing.T) {
	if DecisionAbort.String() != "abort" || DecisionRetry.String() != "retry" || DecisionContinue.String() != "continue" {
		t.Error("Decision.String() mismatch")
	}
}
