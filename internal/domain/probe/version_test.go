package probe

import (
	"context"
	"testing"

	"github.com/hoistlabs/hoist/internal/ports"
	"github.com/hoistlabs/hoist/internal/testutil/mocks"
)

func TestExtractVersion(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"v18.19.1", "18.19.1"},
		{"Python 3.11.2", "3.11.2"},
		{"bench 5.x-dev not here", "5"},
		{"node: 20.1", "20.1"},
		{"no digits at all", ""},
	}
	for _, tt := range tests {
		if got := ExtractVersion(tt.input); got != tt.want {
			t.Errorf("ExtractVersion(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestMinVersion(t *testing.T) {
	tests := []struct {
		name   string
		output string
		floor  string
		want   Result
	}{
		{"above floor", "v18.19.1", "18", Satisfied},
		{"exact floor", "5.0.0", "5.0.0", Satisfied},
		{"below floor", "16.20.2", "18", NotSatisfied},
		{"partial version padded", "18", "18.0.0", Satisfied},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runner := mocks.NewCommandRunner()
			runner.AddResult("node", []string{"--version"}, ports.CommandResult{ExitCode: 0, Stdout: tt.output})

			p := MinVersion{Runner: runner, Command: "node", Args: []string{"--version"}, Floor: tt.floor}
			state, err := p.Probe(context.Background())
			if err != nil {
				t.Fatalf("Probe() error = %v", err)
			}
			if state != tt.want {
				t.Errorf("state = %v, want %v", state, tt.want)
			}
		})
	}
}

func TestMinVersion_NoVersionInOutputIsUnknown(t *testing.T) {
	runner := mocks.NewCommandRunner()
	runner.AddResult("node", []string{"--version"}, ports.CommandResult{ExitCode: 0, Stdout: "garbage"})

	p := MinVersion{Runner: runner, Command: "node", Args: []string{"--version"}, Floor: "18"}
	state, err := p.Probe(context.Background())
	if state != Unknown {
		t.Errorf("state = %v, want %v", state, Unknown)
	}
	if err == nil {
		t.Error("Probe() should report the parse failure")
	}
}

func TestMinVersion_ToolMissingIsNotSatisfied(t *testing.T) {
	runner := mocks.NewCommandRunner()
	runner.AddResult("node", []string{"--version"}, ports.CommandResult{ExitCode: 127, Stderr: "not found"})

	p := MinVersion{Runner: runner, Command: "node", Args: []string{"--version"}, Floor: "18"}
	state, err := p.Probe(context.Background())
	if err != nil {
		t.Fatalf("Probe() error = %v", err)
	}
	if state != NotSatisfied {
		t.Errorf("state = %v, want %v", state, NotSatisfied)
	}
}
