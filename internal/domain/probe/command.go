package probe

import (
	"context"
	"fmt"
	"strings"

	"github.com/hoistlabs/hoist/internal/ports"
)

// ServiceActive checks whether a service-manager unit reports active.
// Generalizes the classic `systemctl is-active` guard.
type ServiceActive struct {
	Runner  ports.CommandRunner
	Service string
}

// Probe runs the status query.
func (p ServiceActive) Probe(ctx context.Context) (Result, error) {
	result, err := p.Runner.Run(ctx, "systemctl", "is-active", "--quiet", p.Service)
	if err != nil {
		return Unknown, err
	}
	if result.Success() {
		return Satisfied, nil
	}
	return NotSatisfied, nil
}

// Describe returns the check description.
func (p ServiceActive) Describe() string {
	return fmt.Sprintf("service %s is active", p.Service)
}

// PackageInstalled checks whether a package is installed via the package
// manager's query interface.
type PackageInstalled struct {
	Runner  ports.CommandRunner
	Package string
}

// Probe queries the package database.
func (p PackageInstalled) Probe(ctx context.Context) (Result, error) {
	result, err := p.Runner.Run(ctx, "dpkg-query", "-W", "-f=${db:Status-Status}", p.Package)
	if err != nil {
		return Unknown, err
	}
	// dpkg-query exits nonzero when the package is not known at all.
	if !result.Success() {
		return NotSatisfied, nil
	}
	if strings.Contains(result.Stdout, "installed") {
		return Satisfied, nil
	}
	return NotSatisfied, nil
}

// Describe returns the check description.
func (p PackageInstalled) Describe() string {
	return fmt.Sprintf("package %s is installed", p.Package)
}

// CommandSucceeds is satisfied when an arbitrary read-only command exits 0.
type CommandSucceeds struct {
	Runner  ports.CommandRunner
	Command string
	Args    []string
}

// Probe runs the command.
func (p CommandSucceeds) Probe(ctx context.Context) (Result, error) {
	result, err := p.Runner.Run(ctx, p.Command, p.Args...)
	if err != nil {
		return Unknown, err
	}
	if result.Success() {
		return Satisfied, nil
	}
	return NotSatisfied, nil
}

// Describe returns the check description.
func (p CommandSucceeds) Describe() string {
	return fmt.Sprintf("%s %s exits 0", p.Command, strings.Join(p.Args, " "))
}

// OutputContains is satisfied when a command's stdout contains a marker
// string. Covers guards of the "run a query, grep for a line" shape.
type OutputContains struct {
	Runner  ports.CommandRunner
	Command string
	Args    []string
	Marker  string
}

// Probe runs the command and scans its output.
func (p OutputContains) Probe(ctx context.Context) (Result, error) {
	result, err := p.Runner.Run(ctx, p.Command, p.Args...)
	if err != nil {
		return Unknown, err
	}
	if !result.Success() {
		return NotSatisfied, nil
	}
	if strings.Contains(result.Stdout, p.Marker) {
		return Satisfied, nil
	}
	return NotSatisfied, nil
}

// Describe returns the check description.
func (p OutputContains) Describe() string {
	return fmt.Sprintf("%s output contains %q", p.Command, p.Marker)
}
