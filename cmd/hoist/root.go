package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hoistlabs/hoist/internal/adapters/logging"
	"github.com/hoistlabs/hoist/internal/app"
	"github.com/hoistlabs/hoist/internal/domain/runlog"
	"github.com/hoistlabs/hoist/internal/manifest"
	"github.com/hoistlabs/hoist/internal/ports"
)

var (
	// Global flags
	manifestPath   string
	verbose        bool
	yesFlag        bool
	nonInteractive bool
	secretFlags    []string
	siteName       string
	adminUser      string
)

// Run-outcome sentinels mapped to process exit codes.
var (
	errRunFailed   = errors.New("provisioning failed")
	errInterrupted = errors.New("interrupted")
)

var rootCmd = &cobra.Command{
	Use:   "hoist",
	Short: "A declarative, idempotent host provisioner",
	Long: `Hoist converges a host toward the stack declared in hoist.yaml.

Every step carries a probe that decides whether it already happened, so
a run only does the work the host is actually missing and a second run
over a provisioned host changes nothing.`,
	SilenceErrors: true, // We handle error formatting ourselves
	SilenceUsage:  true, // Don't show usage on error
}

// Execute runs the root command and maps the result to an exit code.
func Execute(ctx context.Context) int {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		switch {
		case errors.Is(err, errRunFailed):
			return runlog.ExitFailed
		case errors.Is(err, errInterrupted), errors.Is(err, context.Canceled):
			printError(err)
			return runlog.ExitInterrupted
		default:
			printError(err)
			return runlog.ExitInvalid
		}
	}
	return runlog.ExitOK
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&manifestPath, "manifest", "m", manifest.DefaultPath, "path to the stack manifest")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().BoolVarP(&yesFlag, "yes", "y", false, "auto-confirm destructive steps")
	rootCmd.PersistentFlags().BoolVar(&nonInteractive, "non-interactive", false, "never prompt; fail when input would be needed")
	rootCmd.PersistentFlags().StringArrayVar(&secretFlags, "secret", nil, "preset a secret as name=value (repeatable)")
	rootCmd.PersistentFlags().StringVar(&siteName, "site", "", "override the manifest's site name")
	rootCmd.PersistentFlags().StringVar(&adminUser, "admin-user", "", "override the manifest's admin user")

	rootCmd.AddCommand(versionCmd)
}

// applyOverrides folds flag-level overrides into the loaded manifest.
func applyOverrides(m *manifest.Manifest) error {
	if siteName != "" {
		if err := manifest.ValidateSiteName(siteName); err != nil {
			return err
		}
		m.Site.Name = siteName
	}
	if adminUser != "" {
		m.Site.AdminUser = adminUser
	}
	return nil
}

// newHoist builds the application from the global flags.
func newHoist() (*app.Hoist, error) {
	hoist := app.New(os.Stdout).
		WithAssumeYes(yesFlag).
		WithNonInteractive(nonInteractive)
	if verbose {
		hoist = hoist.WithLogger(logging.NewConsoleLogger(logging.WithLevel(ports.LevelDebug)))
	}

	for _, kv := range secretFlags {
		name, value, ok := strings.Cut(kv, "=")
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid --secret %q, want name=value", kv)
		}
		hoist = hoist.WithSecretPreset(name, value)
	}
	return hoist, nil
}

// printError prints an error message to stderr.
func printError(err error) {
	fmt.Fprintf(os.Stderr, "Error: %s\n", err)
}
