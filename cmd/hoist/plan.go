package main

import (
	"github.com/spf13/cobra"
)

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Show what provisioning would do, without changing the host",
	Long: `Plan compiles the manifest, orders the steps by their dependencies,
and probes each one to show which would run. Nothing is executed.`,
	RunE: runPlan,
}

func init() {
	rootCmd.AddCommand(planCmd)
}

func runPlan(cmd *cobra.Command, _ []string) error {
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

	plan, err := hoist.Plan(m, settings)
	if err != nil {
		return err
	}

	entries := hoist.Preview(cmd.Context(), plan)
	hoist.PrintPlan(entries)
	return nil
}
