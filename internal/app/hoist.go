// Package app wires the provisioning engine together and drives a run
// end to end: load, plan, collect, execute, report.
package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/hoistlabs/hoist/internal/adapters/command"
	"github.com/hoistlabs/hoist/internal/adapters/logging"
	"github.com/hoistlabs/hoist/internal/adapters/terminal"
	"github.com/hoistlabs/hoist/internal/domain/execution"
	"github.com/hoistlabs/hoist/internal/domain/runlog"
	"github.com/hoistlabs/hoist/internal/domain/secret"
	"github.com/hoistlabs/hoist/internal/domain/step"
	"github.com/hoistlabs/hoist/internal/manifest"
	"github.com/hoistlabs/hoist/internal/ports"
	"github.com/hoistlabs/hoist/internal/stack"
	"github.com/hoistlabs/hoist/internal/tui"
)

// SettingsFilename is the operator settings file looked up next to the
// manifest.
const SettingsFilename = "hoist.toml"

// Hoist is the application orchestrator.
type Hoist struct {
	runner    ports.CommandRunner
	prompter  ports.Prompter
	logger    ports.Logger
	planner   *execution.Planner
	out       io.Writer
	styles    tui.Styles
	euid      func() int
	observer  func(execution.ProgressEvent)
	presets   map[string]string
	nonInter  bool
	assumeYes bool
}

// New creates a Hoist application with real adapters.
func New(out io.Writer) *Hoist {
	return &Hoist{
		runner:   command.NewRealRunner(),
		prompter: terminal.NewPrompter(),
		logger:   logging.NewConsoleLogger(),
		planner:  execution.NewPlanner(),
		out:      out,
		styles:   tui.DefaultStyles(),
		euid:     os.Geteuid,
		presets:  make(map[string]string),
	}
}

// WithRunner substitutes the command runner (tests use a mock).
func (h *Hoist) WithRunner(runner ports.CommandRunner) *Hoist {
	h.runner = runner
	return h
}

// WithPrompter substitutes the prompter.
func (h *Hoist) WithPrompter(p ports.Prompter) *Hoist {
	h.prompter = p
	return h
}

// WithLogger substitutes the logger.
func (h *Hoist) WithLogger(logger ports.Logger) *Hoist {
	h.logger = logger
	return h
}

// WithEUID substitutes the effective-UID lookup (tests use a stub).
func (h *Hoist) WithEUID(fn func() int) *Hoist {
	h.euid = fn
	return h
}

// WithObserver sets a progress callback for the live apply view.
func (h *Hoist) WithObserver(fn func(execution.ProgressEvent)) *Hoist {
	h.observer = fn
	return h
}

// WithSecretPreset supplies a secret value ahead of collection.
func (h *Hoist) WithSecretPreset(name, value string) *Hoist {
	h.presets[name] = value
	return h
}

// WithNonInteractive disables all prompting; secrets must come from
// presets or the environment, and confirmation gates refuse instead of
// asking.
func (h *Hoist) WithNonInteractive(enabled bool) *Hoist {
	h.nonInter = enabled
	return h
}

// WithAssumeYes auto-confirms the destructive-step gate.
func (h *Hoist) WithAssumeYes(enabled bool) *Hoist {
	h.assumeYes = enabled
	return h
}

// Load reads and validates the manifest and the operator settings living
// next to it.
func (h *Hoist) Load(manifestPath string) (*manifest.Manifest, manifest.Settings, error) {
	m, err := manifest.LoadFile(manifestPath)
	if err != nil {
		return nil, manifest.Settings{}, err
	}

	settingsPath := filepath.Join(filepath.Dir(manifestPath), SettingsFilename)
	settings, err := manifest.LoadSettings(settingsPath)
	if err != nil {
		return nil, manifest.Settings{}, err
	}

	return m, settings, nil
}

// Plan compiles the manifest into a dependency-ordered run plan.
func (h *Hoist) Plan(m *manifest.Manifest, settings manifest.Settings) (*execution.RunPlan, error) {
	compiler := stack.NewCompiler(h.runner).WithDefaultTimeout(settings.DefaultTimeout())
	graph, err := compiler.Compile(m)
	if err != nil {
		return nil, fmt.Errorf("compiling manifest: %w", err)
	}
	return h.planner.Plan(graph)
}

// Preview probes every planned step without touching the host.
func (h *Hoist) Preview(ctx context.Context, plan *execution.RunPlan) []execution.PreviewEntry {
	return h.planner.Preview(ctx, plan, execution.NewProber())
}

// CheckPrivileges verifies the process can run every privileged step in
// the plan. It runs before secret collection so an operator is never
// prompted for credentials a doomed run cannot use.
func (h *Hoist) CheckPrivileges(plan *execution.RunPlan) error {
	for _, s := range plan.Steps() {
		if s.Privileged() && h.euid() != 0 {
			return &step.PermissionError{
				Message: fmt.Sprintf("step %q requires root; re-run with elevated privileges", s.ID()),
			}
		}
	}
	return nil
}

// CollectSecrets gathers every secret the planned steps declare. Secrets
// declared in the manifest but needed by no planned step are not collected.
func (h *Hoist) CollectSecrets(m *manifest.Manifest, plan *execution.RunPlan) (*secret.Store, error) {
	needed := make(map[string]bool)
	for _, name := range plan.SecretsNeeded() {
		needed[name] = true
	}

	var specs []secret.Spec
	for _, spec := range stack.SecretSpecs(m) {
		if needed[spec.Name] {
			specs = append(specs, spec)
		}
	}

	collector := secret.NewCollector(h.prompter).WithNonInteractive(h.nonInter)
	for name, value := range h.presets {
		collector = collector.WithPreset(name, value)
	}
	return collector.Collect(specs)
}

// ConfirmDestructive gates destructive steps behind operator confirmation.
// Returns nil when the run may proceed.
func (h *Hoist) ConfirmDestructive(plan *execution.RunPlan) error {
	destructive := plan.DestructiveSteps()
	if len(destructive) == 0 || h.assumeYes {
		return nil
	}
	if h.nonInter {
		return fmt.Errorf("plan contains destructive steps; pass --yes to confirm non-interactively")
	}

	h.printf("\nThe following steps may overwrite data (back up first):\n")
	for _, s := range destructive {
		h.printf("  ! %s: %s\n", s.ID(), s.Summary())
	}

	answer, err := h.prompter.ReadLine("Proceed? [y/N]: ")
	if err != nil {
		return fmt.Errorf("reading confirmation: %w", err)
	}
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return nil
	default:
		return fmt.Errorf("aborted by operator")
	}
}

// Outcome is the final result of a provisioning run.
type Outcome struct {
	Results []execution.Result
	Summary runlog.Summary
	RunID   string
	LogPath string
}

// Execute runs the plan with collected secrets, recording every result to
// a fresh run log under settings.LogDir.
func (h *Hoist) Execute(ctx context.Context, plan *execution.RunPlan, secrets *secret.Store, settings manifest.Settings) (*Outcome, error) {
	log, err := runlog.NewFileLog(settings.LogDir)
	if err != nil {
		return nil, err
	}
	defer func() { _ = log.Close() }()

	recovery := execution.NewController().WithBackoffBase(settings.RetryBackoffBase())
	executor := execution.NewExecutor(recovery, log, secret.NewRedactor(secrets), h.logger).
		WithOutputCap(settings.OutputCap)
	if h.observer != nil {
		executor = executor.WithObserver(h.observer)
	}

	results, runErr := executor.Run(ctx, plan, secrets)

	outcome := &Outcome{
		Results: results,
		Summary: runlog.Summarize(results),
		RunID:   log.RunID(),
		LogPath: log.Path(),
	}
	return outcome, runErr
}

// PrintPlan outputs a human-readable plan preview.
func (h *Hoist) PrintPlan(entries []execution.PreviewEntry) {
	summary := execution.Summarize(entries)

	h.printf("\nProvisioning Plan\n")
	h.printf("=================\n\n")

	if summary.WouldRun == 0 {
		h.printf("Nothing to do. The host matches the manifest.\n")
		return
	}

	h.printf("Steps: %d total, %d to run, %d satisfied", summary.Total, summary.WouldRun, summary.Satisfied)
	if summary.Unknown > 0 {
		h.printf(", %d unknown", summary.Unknown)
	}
	h.printf("\n\n")

	for _, entry := range entries {
		marker := "+"
		if !entry.WouldRun() {
			marker = "✓"
		}
		h.printf("  %s %s", marker, entry.Step.ID())
		if summary := entry.Step.Summary(); summary != "" {
			h.printf("  %s", h.styles.Muted.Render(summary))
		}
		h.printf("\n")
	}

	h.printf("\nRun 'hoist provision' to execute this plan.\n")
}

// PrintResults outputs per-step results.
func (h *Hoist) PrintResults(results []execution.Result) {
	h.printf("\nResults\n")
	h.printf("=======\n\n")

	for _, r := range results {
		h.printf("  %s %s", h.styles.RenderStatus(r.Status()), r.StepID())
		switch r.Status() {
		case step.StatusSkipped:
			h.printf(" %s", h.styles.Muted.Render("("+string(r.SkipReason())+")"))
		case step.StatusAborted:
			h.printf(" %s", h.styles.Muted.Render("(not run: earlier step aborted)"))
		case step.StatusFailed, step.StatusWarned:
			if err := r.Error(); err != nil {
				h.printf(": %v", err)
			}
		}
		// Timing only means something for steps whose action was invoked.
		if r.Status().Ran() && r.Duration() > 0 {
			h.printf(" %s", h.styles.Muted.Render("["+r.Duration().Round(10*time.Millisecond).String()+"]"))
		}
		h.printf("\n")
	}
}

// PrintSummary outputs the run's closing summary.
func (h *Hoist) PrintSummary(outcome *Outcome) {
	s := outcome.Summary
	h.printf("\nSummary: %d succeeded, %d failed, %d warned, %d skipped",
		s.Succeeded, s.Failed, s.Warned, s.Skipped)
	if s.Aborted > 0 {
		h.printf(", %d not run", s.Aborted)
	}
	h.printf(" (%s)\n", s.Duration.Round(10*time.Millisecond))
	h.printf("Run log: %s\n", outcome.LogPath)
}

// printf writes to the output writer, ignoring errors.
func (h *Hoist) printf(format string, args ...interface{}) {
	_, _ = fmt.Fprintf(h.out, format, args...)
}
