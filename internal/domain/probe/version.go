package probe

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/mod/semver"

	"github.com/hoistlabs/hoist/internal/ports"
)

// versionPattern extracts the first dotted version from command output.
var versionPattern = regexp.MustCompile(`v?(\d+(?:\.\d+){0,2})`)

// MinVersion is satisfied when a tool reports a version at or above the
// floor, compared as semver rather than as strings.
type MinVersion struct {
	Runner ports.CommandRunner
	// Command is the tool to query, e.g. ["node", "--version"].
	Command string
	Args    []string
	// Floor is the minimum acceptable version, e.g. "18" or "18.2.0".
	Floor string
}

// Probe runs the version query and compares against the floor.
func (p MinVersion) Probe(ctx context.Context) (Result, error) {
	result, err := p.Runner.Run(ctx, p.Command, p.Args...)
	if err != nil {
		return Unknown, err
	}
	if !result.Success() {
		return NotSatisfied, nil
	}

	found := ExtractVersion(result.Combined())
	if found == "" {
		return Unknown, fmt.Errorf("no version in output of %s", p.Command)
	}

	if semver.Compare(canonical(found), canonical(p.Floor)) >= 0 {
		return Satisfied, nil
	}
	return NotSatisfied, nil
}

// Describe returns the check description.
func (p MinVersion) Describe() string {
	return fmt.Sprintf("%s version >= %s", p.Command, p.Floor)
}

// ExtractVersion returns the first dotted version found in s, without a
// leading "v". Returns "" when none is present.
func ExtractVersion(s string) string {
	m := versionPattern.FindStringSubmatch(s)
	if m == nil {
		return ""
	}
	return m[1]
}

// canonical pads a version to the vMAJOR.MINOR.PATCH form semver expects.
func canonical(v string) string {
	v = strings.TrimPrefix(strings.TrimSpace(v), "v")
	switch strings.Count(v, ".") {
	case 0:
		v += ".0.0"
	case 1:
		v += ".0"
	}
	return "v" + v
}
