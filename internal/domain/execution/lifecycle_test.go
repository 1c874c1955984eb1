package execution

import (
	"testing"

	"github.com/hoistlabs/hoist/internal/domain/step"
)

func startedLifecycle(t *testing.T) *Lifecycle {
	t.Helper()
	lc, err := NewLifecycle()
	if err != nil {
		t.Fatalf("NewLifecycle() error = %v", err)
	}
	t.Cleanup(lc.Stop)
	return lc
}

func TestLifecycle_SuccessPath(t *testing.T) {
	lc := startedLifecycle(t)

	if lc.State() != LifecyclePending {
		t.Fatalf("initial state = %q, want %q", lc.State(), LifecyclePending)
	}

	lc.Signal(EventProbe)
	lc.Signal(EventRun)
	if lc.State() != LifecycleRunning {
		t.Fatalf("state after run = %q, want %q", lc.State(), LifecycleRunning)
	}
	if lc.Terminal() {
		t.Error("running step reported terminal")
	}
	if _, ok := lc.Status(); ok {
		t.Error("in-flight machine mapped to a recorded status")
	}

	lc.Signal(EventSucceed)
	if !lc.Terminal() {
		t.Error("succeeded step not terminal")
	}
	status, ok := lc.Status()
	if !ok || status != step.StatusSucceeded {
		t.Errorf("Status() = %v/%v, want %v", status, ok, step.StatusSucceeded)
	}
}

func TestLifecycle_SkipPath(t *testing.T) {
	lc := startedLifecycle(t)

	lc.Signal(EventProbe)
	lc.Signal(EventSkip)

	if lc.State() != LifecycleSkipped || !lc.Terminal() {
		t.Errorf("state = %q terminal = %v, want skipped terminal", lc.State(), lc.Terminal())
	}
	if status, ok := lc.Status(); !ok || status != step.StatusSkipped {
		t.Errorf("Status() = %v/%v, want %v", status, ok, step.StatusSkipped)
	}
}

func TestLifecycle_RetryLoopsBackToRunning(t *testing.T) {
	lc := startedLifecycle(t)

	lc.Signal(EventProbe)
	lc.Signal(EventRun)
	lc.Signal(EventFail)
	if lc.State() != LifecycleFailed {
		t.Fatalf("state after failure = %q, want %q", lc.State(), LifecycleFailed)
	}

	lc.Signal(EventRetry)
	if lc.State() != LifecycleRunning {
		t.Fatalf("state after retry = %q, want %q", lc.State(), LifecycleRunning)
	}
	if lc.Terminal() {
		t.Error("retrying step reported terminal")
	}

	lc.Signal(EventSucceed)
	if status, ok := lc.Status(); !ok || status != step.StatusSucceeded {
		t.Errorf("Status() = %v/%v, want %v", status, ok, step.StatusSucceeded)
	}
}

func TestLifecycle_WarnPolicyResolvesFailure(t *testing.T) {
	lc := startedLifecycle(t)

	lc.Signal(EventProbe)
	lc.Signal(EventRun)
	lc.Signal(EventFail)
	lc.Signal(EventWarn)

	if lc.State() != LifecycleWarned || !lc.Terminal() {
		t.Errorf("state = %q terminal = %v, want warned terminal", lc.State(), lc.Terminal())
	}
	if status, ok := lc.Status(); !ok || status != step.StatusWarned {
		t.Errorf("Status() = %v/%v, want %v", status, ok, step.StatusWarned)
	}
}
