package execution

import (
	"context"
	"errors"
	"time"

	"github.com/hoistlabs/hoist/internal/domain/probe"
	"github.com/hoistlabs/hoist/internal/domain/secret"
	"github.com/hoistlabs/hoist/internal/domain/step"
	"github.com/hoistlabs/hoist/internal/ports"
)

// defaultOutputCap bounds how much captured output a result may carry.
const defaultOutputCap = 8 * 1024

// Recorder persists results as they happen. The executor is the only
// caller during a run (single-writer invariant).
type Recorder interface {
	Record(ctx context.Context, result Result) error
}

// ProgressEvent notifies an observer about run progress.
type ProgressEvent struct {
	Index  int // 1-based position in the plan
	Total  int
	StepID step.ID
	// Started is true when the step begins; false carries the result.
	Started bool
	Result  Result
}

// Executor runs a RunPlan sequentially: probe gate, action with timeout,
// recovery decision, record. Steps execute one at a time in plan order
// because actions mutate shared host-level resources.
type Executor struct {
	prober    *Prober
	recovery  *Controller
	recorder  Recorder
	redactor  *secret.Redactor
	logger    ports.Logger
	observer  func(ProgressEvent)
	outputCap int
}

// NewExecutor creates an Executor.
func NewExecutor(recovery *Controller, recorder Recorder, redactor *secret.Redactor, logger ports.Logger) *Executor {
	return &Executor{
		prober:    NewProber(),
		recovery:  recovery,
		recorder:  recorder,
		redactor:  redactor,
		logger:    logger,
		outputCap: defaultOutputCap,
	}
}

// WithObserver sets a progress callback, used by the live apply view.
func (e *Executor) WithObserver(fn func(ProgressEvent)) *Executor {
	e.observer = fn
	return e
}

// WithOutputCap overrides the captured-output bound.
func (e *Executor) WithOutputCap(n int) *Executor {
	if n > 0 {
		e.outputCap = n
	}
	return e
}

// Run executes the plan. Every step produces exactly one recorded result;
// after an abort-policy failure the remaining steps are recorded as
// skipped-due-to-abort rather than silently omitted. Run returns the
// context error when interrupted, with the partial results intact.
func (e *Executor) Run(ctx context.Context, plan *RunPlan, secrets *secret.Store) ([]Result, error) {
	results := make([]Result, 0, plan.Len())
	unrunnable := make(map[string]bool)
	aborted := false

	for i, s := range plan.Steps() {
		if err := ctx.Err(); err != nil {
			return results, err
		}

		if aborted {
			results = append(results, e.record(ctx, NewResult(s.ID(), step.StatusAborted)))
			continue
		}

		e.notifyStart(i+1, plan.Len(), s.ID())

		result := e.runStep(ctx, s, secrets, unrunnable)
		results = append(results, e.record(ctx, result))
		e.notifyFinish(i+1, plan.Len(), result)

		switch result.Status() {
		case step.StatusFailed:
			unrunnable[s.ID().String()] = true
			aborted = true
		case step.StatusWarned:
			unrunnable[s.ID().String()] = true
		case step.StatusSkipped:
			if result.SkipReason() == step.SkipDependencyFailed {
				unrunnable[s.ID().String()] = true
			}
		}
	}

	return results, ctx.Err()
}

// runStep drives one step through its lifecycle machine. The recorded
// status comes from the machine's terminal state; the fallback passed to
// the status closure applies only when the machine failed to build, or
// when it is not terminal at record time, which is logged as an error.
func (e *Executor) runStep(ctx context.Context, s step.Step, secrets *secret.Store, unrunnable map[string]bool) Result {
	lc, lcErr := NewLifecycle()
	if lcErr == nil {
		defer lc.Stop()
	}
	signal := func(event string) {
		if lcErr == nil {
			lc.Signal(event)
		}
	}
	status := func(fallback step.Status) step.Status {
		if lcErr != nil {
			return fallback
		}
		st, ok := lc.Status()
		if !ok {
			e.logger.Error(ctx, "step lifecycle not terminal at record time",
				ports.F("step", s.ID().String()), ports.F("state", lc.State()))
			return fallback
		}
		return st
	}

	// Steps whose dependencies failed are skipped, never run.
	for _, dep := range s.DependsOn() {
		if unrunnable[dep.String()] {
			return NewResult(s.ID(), step.StatusSkipped).
				WithSkipReason(step.SkipDependencyFailed)
		}
	}

	signal(EventProbe)

	skip, reason, probeErr := e.prober.Gate(ctx, s)
	if skip {
		signal(EventSkip)
		return NewResult(s.ID(), status(step.StatusSkipped)).WithSkipReason(reason)
	}
	if probeErr != nil {
		e.logger.Warn(ctx, "probe inconclusive, running step",
			ports.F("step", s.ID().String()), ports.F("error", probeErr.Error()))
	}

	signal(EventRun)

	startedAt := time.Now()
	attempt := 0
	for {
		attempt++
		output, err := e.runAction(ctx, s, secrets)
		output = e.bound(e.redactor.Scrub(output))

		if err == nil {
			signal(EventSucceed)
			return NewResult(s.ID(), status(step.StatusSucceeded)).
				WithOutput(output).
				WithAttempts(attempt).
				WithTiming(startedAt, time.Since(startedAt))
		}

		signal(EventFail)
		err = e.redact(e.classify(s, err))
		e.logger.Error(ctx, "step attempt failed",
			ports.F("step", s.ID().String()),
			ports.F("attempt", attempt),
			ports.F("error", err.Error()))

		// The whole run stops on interruption, not just this step.
		if ctx.Err() != nil {
			return NewResult(s.ID(), status(step.StatusFailed)).
				WithOutput(output).
				WithError(err).
				WithAttempts(attempt).
				WithTiming(startedAt, time.Since(startedAt))
		}

		decision, delay := e.recovery.OnFailure(s, attempt)
		switch decision {
		case DecisionRetry:
			e.logger.Info(ctx, "retrying step",
				ports.F("step", s.ID().String()), ports.F("delay", delay.String()))
			if !sleep(ctx, delay) {
				return NewResult(s.ID(), status(step.StatusFailed)).
					WithOutput(output).
					WithError(err).
					WithAttempts(attempt).
					WithTiming(startedAt, time.Since(startedAt))
			}
			signal(EventRetry)
		case DecisionContinue:
			signal(EventWarn)
			return NewResult(s.ID(), status(step.StatusWarned)).
				WithOutput(output).
				WithError(err).
				WithAttempts(attempt).
				WithTiming(startedAt, time.Since(startedAt))
		default:
			return NewResult(s.ID(), status(step.StatusFailed)).
				WithOutput(output).
				WithError(err).
				WithAttempts(attempt).
				WithTiming(startedAt, time.Since(startedAt))
		}
	}
}

// runAction checks the precondition, resolves secrets, and runs the
// action under the step's timeout. The action's process is terminated
// before control returns when the deadline passes.
func (e *Executor) runAction(ctx context.Context, s step.Step, secrets *secret.Store) (string, error) {
	if pre := s.Precondition(); pre != nil {
		state, err := pre.Probe(ctx)
		if err != nil {
			return "", &step.ProbeError{StepID: s.ID(), Underlying: err}
		}
		if state != probe.Satisfied {
			return "", &step.ExecutionError{StepID: s.ID(),
				Underlying: errors.New("precondition not met: " + pre.Describe())}
		}
	}

	env := step.Env{}
	if len(s.Secrets()) > 0 {
		resolved, err := secrets.Resolve(s.Secrets())
		if err != nil {
			return "", &step.ExecutionError{StepID: s.ID(), Underlying: err}
		}
		env.Secrets = resolved
	}

	actionCtx, cancel := context.WithTimeout(ctx, s.Timeout())
	defer cancel()

	return s.Action().Run(actionCtx, env)
}

// classify maps raw action errors into the domain taxonomy.
func (e *Executor) classify(s step.Step, err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return &step.TimeoutError{StepID: s.ID(), Limit: s.Timeout()}
	}
	var execErr *step.ExecutionError
	var probeErr *step.ProbeError
	if errors.As(err, &execErr) || errors.As(err, &probeErr) {
		return err
	}
	return &step.ExecutionError{StepID: s.ID(), Underlying: err}
}

// redact scrubs secret values out of an error's message. The original
// error stays reachable through Unwrap for errors.As callers; only its
// rendered text is replaced.
func (e *Executor) redact(err error) error {
	if err == nil {
		return nil
	}
	msg := err.Error()
	scrubbed := e.redactor.Scrub(msg)
	if scrubbed == msg {
		return err
	}
	return &redactedError{msg: scrubbed, cause: err}
}

type redactedError struct {
	msg   string
	cause error
}

func (r *redactedError) Error() string { return r.msg }

func (r *redactedError) Unwrap() error { return r.cause }

// record persists a result; recording failures are logged, never fatal,
// so a broken log disk does not strand a half-provisioned host silently.
func (e *Executor) record(ctx context.Context, result Result) Result {
	if e.recorder != nil {
		if err := e.recorder.Record(ctx, result); err != nil {
			e.logger.Error(ctx, "failed to record result",
				ports.F("step", result.StepID().String()), ports.F("error", err.Error()))
		}
	}
	return result
}

func (e *Executor) notifyStart(index, total int, id step.ID) {
	if e.observer != nil {
		e.observer(ProgressEvent{Index: index, Total: total, StepID: id, Started: true})
	}
}

func (e *Executor) notifyFinish(index, total int, result Result) {
	if e.observer != nil {
		e.observer(ProgressEvent{Index: index, Total: total, StepID: result.StepID(), Result: result})
	}
}

// bound truncates output to the configured cap.
func (e *Executor) bound(s string) string {
	if len(s) <= e.outputCap {
		return s
	}
	return s[:e.outputCap] + "\n[output truncated]"
}

// sleep waits for d unless the context ends first; returns false when
// interrupted.
func sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
