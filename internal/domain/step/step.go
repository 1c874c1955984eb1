// Package step defines the declarative unit of provisioning work: what a
// step does, what it depends on, how to tell whether it already happened,
// and how its failure affects the run.
package step

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/hoistlabs/hoist/internal/domain/probe"
	"github.com/hoistlabs/hoist/internal/ports"
)

// DefaultTimeout bounds a step's action when no explicit timeout is declared.
const DefaultTimeout = 10 * time.Minute

// Env carries the values the executor passes into an action. Secrets are
// resolved by the executor alone; no other component reads raw values.
type Env struct {
	Secrets map[string]string
}

// Action is the work a step performs. Run returns the action's combined
// output for the run log; implementations must stop promptly when the
// context is cancelled.
type Action interface {
	Run(ctx context.Context, env Env) (output string, err error)

	// Describe returns a short human-readable description of the action.
	Describe() string
}

// CommandAction runs a host command through a CommandRunner. Declared
// secrets are injected into the child environment under SecretEnv's keys,
// never interpolated into the argument vector.
type CommandAction struct {
	Runner  ports.CommandRunner
	Command string
	Args    []string
	// SecretEnv maps child environment variable names to declared secret
	// names, e.g. {"DB_ROOT_PASSWORD": "db-root-password"}.
	SecretEnv map[string]string
}

// Run executes the command.
func (a CommandAction) Run(ctx context.Context, env Env) (string, error) {
	var extra []string
	for key, name := range a.SecretEnv {
		if v, ok := env.Secrets[name]; ok {
			extra = append(extra, key+"="+v)
		}
	}

	result, err := a.Runner.RunEnv(ctx, extra, a.Command, a.Args...)
	if err != nil {
		return result.Combined(), err
	}
	if !result.Success() {
		return result.Combined(), fmt.Errorf("%s exited with code %d", a.Command, result.ExitCode)
	}
	return result.Combined(), nil
}

// Describe returns the command line without environment values.
func (a CommandAction) Describe() string {
	if len(a.Args) == 0 {
		return a.Command
	}
	return a.Command + " " + strings.Join(a.Args, " ")
}

// FuncAction adapts a function to the Action interface.
type FuncAction struct {
	Desc string
	Fn   func(ctx context.Context, env Env) (string, error)
}

// Run invokes the wrapped function.
func (a FuncAction) Run(ctx context.Context, env Env) (string, error) {
	return a.Fn(ctx, env)
}

// Describe returns the description.
func (a FuncAction) Describe() string {
	return a.Desc
}

// Step is one declarative unit of provisioning work. A Step is immutable
// once built; the planner and executor never mutate it.
type Step struct {
	id            ID
	summary       string
	dependsOn     []ID
	precondition  probe.Probe
	check         probe.Probe
	action        Action
	policy        FailurePolicy
	timeout       time.Duration
	secrets       []string
	skipOnUnknown bool
	privileged    bool
	destructive   bool
}

// New creates a Step with the required parts: identity, the postcondition
// probe that decides idempotent skipping, and the action.
func New(id ID, check probe.Probe, action Action) Step {
	return Step{
		id:      id,
		check:   check,
		action:  action,
		policy:  Abort(),
		timeout: DefaultTimeout,
	}
}

// WithSummary sets a one-line human description.
func (s Step) WithSummary(summary string) Step {
	s.summary = summary
	return s
}

// WithDependsOn declares the steps that must complete before this one.
func (s Step) WithDependsOn(ids ...ID) Step {
	s.dependsOn = append([]ID(nil), ids...)
	return s
}

// WithPrecondition sets an optional gate probe checked before the action
// runs; an unsatisfied precondition fails the step.
func (s Step) WithPrecondition(p probe.Probe) Step {
	s.precondition = p
	return s
}

// WithPolicy sets the failure policy.
func (s Step) WithPolicy(p FailurePolicy) Step {
	s.policy = p
	return s
}

// WithTimeout bounds the action's execution time.
func (s Step) WithTimeout(d time.Duration) Step {
	if d > 0 {
		s.timeout = d
	}
	return s
}

// WithSecrets declares the secret names this step's action needs.
func (s Step) WithSecrets(names ...string) Step {
	s.secrets = append([]string(nil), names...)
	return s
}

// WithSkipOnUnknown marks the step safe to skip when its probe cannot run.
// The default is the conservative opposite: re-run on Unknown.
func (s Step) WithSkipOnUnknown(skip bool) Step {
	s.skipOnUnknown = skip
	return s
}

// WithPrivileged marks the step as requiring elevated privilege.
func (s Step) WithPrivileged(privileged bool) Step {
	s.privileged = privileged
	return s
}

// WithDestructive marks the step as mutating data an operator may want
// backed up first; provisioning asks for confirmation before such steps.
func (s Step) WithDestructive(destructive bool) Step {
	s.destructive = destructive
	return s
}

// ID returns the unique identifier.
func (s Step) ID() ID { return s.id }

// Summary returns the one-line description, falling back to the action's.
func (s Step) Summary() string {
	if s.summary != "" {
		return s.summary
	}
	if s.action != nil {
		return s.action.Describe()
	}
	return s.id.String()
}

// DependsOn returns the declared dependency IDs.
func (s Step) DependsOn() []ID { return s.dependsOn }

// Precondition returns the optional gate probe, or nil.
func (s Step) Precondition() probe.Probe { return s.precondition }

// Check returns the postcondition probe.
func (s Step) Check() probe.Probe { return s.check }

// Action returns the step's action.
func (s Step) Action() Action { return s.action }

// Policy returns the declared failure policy.
func (s Step) Policy() FailurePolicy { return s.policy }

// Timeout returns the per-step execution bound.
func (s Step) Timeout() time.Duration { return s.timeout }

// Secrets returns the declared secret names.
func (s Step) Secrets() []string { return s.secrets }

// SkipOnUnknown reports whether an Unknown probe result skips the step.
func (s Step) SkipOnUnknown() bool { return s.skipOnUnknown }

// Privileged reports whether the step needs elevated privilege.
func (s Step) Privileged() bool { return s.privileged }

// Destructive reports whether the step mutates operator data.
func (s Step) Destructive() bool { return s.destructive }

// Validate checks the step's declaration is complete.
func (s Step) Validate() error {
	if s.id.IsZero() {
		return NewValidationError("id", "step ID is required")
	}
	if s.check == nil {
		return NewValidationError(s.id.String(), "postcondition probe is required")
	}
	if s.action == nil {
		return NewValidationError(s.id.String(), "action is required")
	}
	return nil
}
