package probe

import (
	"context"
	"fmt"
	"os"
	"strings"
)

// FileExists is satisfied when a path exists on the host filesystem.
type FileExists struct {
	Path string
}

// Probe stats the path.
func (p FileExists) Probe(_ context.Context) (Result, error) {
	_, err := os.Stat(p.Path)
	if err == nil {
		return Satisfied, nil
	}
	if os.IsNotExist(err) {
		return NotSatisfied, nil
	}
	return Unknown, err
}

// Describe returns the check description.
func (p FileExists) Describe() string {
	return fmt.Sprintf("path %s exists", p.Path)
}

// FileContains is satisfied when a file exists and contains a marker,
// used for managed config blocks that are appended exactly once.
type FileContains struct {
	Path   string
	Marker string
}

// Probe reads the file and scans for the marker.
func (p FileContains) Probe(_ context.Context) (Result, error) {
	data, err := os.ReadFile(p.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return NotSatisfied, nil
		}
		return Unknown, err
	}
	if strings.Contains(string(data), p.Marker) {
		return Satisfied, nil
	}
	return NotSatisfied, nil
}

// Describe returns the check description.
func (p FileContains) Describe() string {
	return fmt.Sprintf("file %s contains %q", p.Path, p.Marker)
}
