package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/hoistlabs/hoist/internal/app"
	"github.com/hoistlabs/hoist/internal/domain/execution"
	"github.com/hoistlabs/hoist/internal/domain/secret"
	"github.com/hoistlabs/hoist/internal/manifest"
	"github.com/hoistlabs/hoist/internal/tui"
)

var provisionCmd = &cobra.Command{
	Use:   "provision",
	Short: "Converge the host toward the manifest",
	Long: `Provision compiles the manifest into a dependency-ordered plan and
executes it. Steps whose probe reports the host already satisfied are
skipped, so re-running over a provisioned host changes nothing.

Secrets are collected once, up front, and never written to the run log.`,
	RunE: runProvision,
}

var (
	provisionDryRun bool
	provisionLogDir string
)

func init() {
	rootCmd.AddCommand(provisionCmd)

	provisionCmd.Flags().BoolVar(&provisionDryRun, "dry-run", false, "show the plan without executing it")
	provisionCmd.Flags().StringVar(&provisionLogDir, "log-dir", "", "override the run log directory")
}

func runProvision(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	hoist, err := newHoist()
	if err != nil {
		return err
	}

	m, settings, err := hoist.Load(manifestPath)
	if err != nil {
		return err
	}
	if err := applyOverrides(m); err != nil {
		return err
	}
	if provisionLogDir != "" {
		settings.LogDir = provisionLogDir
	}

	plan, err := hoist.Plan(m, settings)
	if err != nil {
		return err
	}

	if provisionDryRun {
		entries := hoist.Preview(ctx, plan)
		hoist.PrintPlan(entries)
		fmt.Println("\n[Dry run - no changes made]")
		return nil
	}

	// Privilege first, confirmation second, secrets last: the operator is
	// never prompted for credentials a doomed run cannot use.
	if err := hoist.CheckPrivileges(plan); err != nil {
		return err
	}
	if err := hoist.ConfirmDestructive(plan); err != nil {
		return err
	}
	secrets, err := hoist.CollectSecrets(m, plan)
	if err != nil {
		return err
	}

	outcome, runErr := execute(ctx, hoist, plan, secrets, settings)
	if outcome != nil {
		hoist.PrintResults(outcome.Results)
		hoist.PrintSummary(outcome)
	}

	if runErr != nil {
		if errors.Is(runErr, context.Canceled) {
			return errInterrupted
		}
		return runErr
	}
	if outcome != nil && !outcome.Summary.Converged() {
		return errRunFailed
	}
	return nil
}

// execute runs the plan, with the live view when stdout is a terminal.
func execute(ctx context.Context, hoist *app.Hoist, plan *execution.RunPlan, secrets *secret.Store, settings manifest.Settings) (*app.Outcome, error) {
	if !term.IsTerminal(int(os.Stdout.Fd())) || nonInteractive {
		return hoist.Execute(ctx, plan, secrets, settings)
	}

	program := tui.NewApplyProgram(plan.Len())
	hoist = hoist.WithObserver(program.Observer())

	var (
		outcome *app.Outcome
		runErr  error
	)
	done := make(chan struct{})
	go func() {
		defer close(done)
		outcome, runErr = hoist.Execute(ctx, plan, secrets, settings)
		program.Done(runErr)
	}()

	if _, viewErr := program.Run(); viewErr != nil {
		// The view failing must not kill the run; wait for the executor.
		<-done
		return outcome, runErr
	}
	<-done
	return outcome, runErr
}
