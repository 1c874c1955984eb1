package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check the manifest without touching the host",
	Long: `Validate parses the manifest, checks its internal consistency, and
compiles it into a plan to surface unknown references and dependency
cycles before anything runs.`,
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(_ *cobra.Command, _ []string) error {
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

	fmt.Printf("%s is valid: %d steps planned for site %q\n", manifestPath, plan.Len(), m.Site.Name)
	return nil
}
