package execution

import (
	"fmt"

	"github.com/felixgeelhaar/statekit"

	"github.com/hoistlabs/hoist/internal/domain/step"
)

// Lifecycle states for one step within a run.
const (
	LifecyclePending   = "pending"
	LifecycleProbing   = "probing"
	LifecycleSkipped   = "skipped"
	LifecycleRunning   = "running"
	LifecycleSucceeded = "succeeded"
	LifecycleWarned    = "warned"
	LifecycleFailed    = "failed"
)

// Lifecycle events.
const (
	EventProbe   = "PROBE"
	EventSkip    = "SKIP"
	EventRun     = "RUN"
	EventSucceed = "SUCCEED"
	EventFail    = "FAIL"
	EventRetry   = "RETRY"
	EventWarn    = "WARN"
)

// lifecycleContext is the (empty) context type for the step machine.
type lifecycleContext struct{}

// Lifecycle is the explicit per-step state machine:
// pending -> probing -> {skipped | running} -> {succeeded | failed},
// with failed looping back to running via retry or resolving to warned
// under a warn-and-continue policy. The executor records the status the
// terminal state maps to.
type Lifecycle struct {
	interp *statekit.Interpreter[lifecycleContext]
}

// NewLifecycle builds and starts a fresh step lifecycle machine.
func NewLifecycle() (*Lifecycle, error) {
	machine, err := statekit.NewMachine[lifecycleContext]("step-lifecycle").
		WithInitial(LifecyclePending).
		WithContext(lifecycleContext{}).
		State(LifecyclePending).
		On(EventProbe).Target(LifecycleProbing).Done().
		State(LifecycleProbing).
		On(EventSkip).Target(LifecycleSkipped).
		On(EventRun).Target(LifecycleRunning).Done().
		State(LifecycleSkipped).Done().
		State(LifecycleRunning).
		On(EventSucceed).Target(LifecycleSucceeded).
		On(EventFail).Target(LifecycleFailed).Done().
		State(LifecycleSucceeded).Done().
		State(LifecycleFailed).
		On(EventRetry).Target(LifecycleRunning).
		On(EventWarn).Target(LifecycleWarned).Done().
		State(LifecycleWarned).Done().
		Build()
	if err != nil {
		return nil, fmt.Errorf("building step lifecycle: %w", err)
	}

	interp := statekit.NewInterpreter(machine)
	interp.Start()
	return &Lifecycle{interp: interp}, nil
}

// Signal sends an event to the machine.
func (l *Lifecycle) Signal(event string) {
	l.interp.Send(statekit.Event{Type: statekit.EventType(event)})
}

// State returns the current lifecycle state.
func (l *Lifecycle) State() string {
	return string(l.interp.State().Value)
}

// Status maps the machine's state onto a recorded step status. The
// second return is false while the machine is still in flight.
func (l *Lifecycle) Status() (step.Status, bool) {
	switch l.State() {
	case LifecycleSkipped:
		return step.StatusSkipped, true
	case LifecycleSucceeded:
		return step.StatusSucceeded, true
	case LifecycleWarned:
		return step.StatusWarned, true
	case LifecycleFailed:
		return step.StatusFailed, true
	}
	return "", false
}

// Terminal reports whether the step has reached a final state.
func (l *Lifecycle) Terminal() bool {
	_, ok := l.Status()
	return ok
}

// Stop shuts the interpreter down.
func (l *Lifecycle) Stop() {
	l.interp.Stop()
}
