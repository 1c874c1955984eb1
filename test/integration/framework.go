// Package integration provides test utilities for integration testing.
package integration

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/hoistlabs/hoist/internal/adapters/logging"
	"github.com/hoistlabs/hoist/internal/app"
	"github.com/hoistlabs/hoist/internal/ports"
	"github.com/hoistlabs/hoist/internal/testutil/mocks"
)

// TestHarness wires a Hoist application against a mock host.
type TestHarness struct {
	T       *testing.T
	TempDir string
	Output  *bytes.Buffer
	Runner  *mocks.CommandRunner

	hoist *app.Hoist
}

// NewHarness creates a new test harness. The mock runner answers every
// command with success by default, so the host looks cooperative until a
// test teaches it otherwise.
func NewHarness(t *testing.T) *TestHarness {
	t.Helper()

	runner := mocks.NewCommandRunner()
	runner.SetDefault(ports.CommandResult{ExitCode: 0})

	output := &bytes.Buffer{}
	hoist := app.New(output).
		WithRunner(runner).
		WithLogger(logging.NewNopLogger()).
		WithEUID(func() int { return 0 }).
		WithNonInteractive(true)

	return &TestHarness{
		T:       t,
		TempDir: t.TempDir(),
		Output:  output,
		Runner:  runner,
		hoist:   hoist,
	}
}

// Hoist returns the application instance.
func (h *TestHarness) Hoist() *app.Hoist {
	return h.hoist
}

// WriteManifest writes a hoist.yaml into the temp directory and returns
// its path.
func (h *TestHarness) WriteManifest(content string) string {
	h.T.Helper()

	path := filepath.Join(h.TempDir, "hoist.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		h.T.Fatalf("failed to write manifest: %v", err)
	}
	return path
}

// WriteSettings writes a hoist.toml next to the manifest.
func (h *TestHarness) WriteSettings(content string) {
	h.T.Helper()

	path := filepath.Join(h.TempDir, app.SettingsFilename)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		h.T.Fatalf("failed to write settings: %v", err)
	}
}

// MarkUnsatisfied teaches the mock host that a probe command fails, so
// the step guarding it will run.
func (h *TestHarness) MarkUnsatisfied(command string, args ...string) {
	h.Runner.AddResult(command, args, ports.CommandResult{ExitCode: 1})
}

// OutputContains checks if the output buffer contains a string.
func (h *TestHarness) OutputContains(s string) bool {
	return bytes.Contains(h.Output.Bytes(), []byte(s))
}
