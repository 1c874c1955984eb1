package probe

import (
	"context"
	"errors"
	"testing"

	"github.com/hoistlabs/hoist/internal/ports"
	"github.com/hoistlabs/hoist/internal/testutil/mocks"
)

func TestServiceActive(t *testing.T) {
	runner := mocks.NewCommandRunner()
	runner.AddResult("systemctl", []string{"is-active", "--quiet", "nginx"}, ports.CommandResult{ExitCode: 0})

	state, err := ServiceActive{Runner: runner, Service: "nginx"}.Probe(context.Background())
	if err != nil {
		t.Fatalf("Probe() error = %v", err)
	}
	if state != Satisfied {
		t.Errorf("state = %v, want %v", state, Satisfied)
	}

	runner.AddResult("systemctl", []string{"is-active", "--quiet", "nginx"}, ports.CommandResult{ExitCode: 3})
	state, _ = ServiceActive{Runner: runner, Service: "nginx"}.Probe(context.Background())
	if state != NotSatisfied {
		t.Errorf("inactive state = %v, want %v", state, NotSatisfied)
	}
}

func TestServiceActive_RunnerErrorIsUnknown(t *testing.T) {
	runner := mocks.NewCommandRunner()
	runner.AddError("systemctl", []string{"is-active", "--quiet", "nginx"}, errors.New("systemctl not found"))

	state, err := ServiceActive{Runner: runner, Service: "nginx"}.Probe(context.Background())
	if state != Unknown {
		t.Errorf("state = %v, want %v", state, Unknown)
	}
	if err == nil {
		t.Error("Probe() should surface the runner error")
	}
}

func TestPackageInstalled(t *testing.T) {
	runner := mocks.NewCommandRunner()
	args := []string{"-W", "-f=${db:Status-Status}", "mariadb-server"}

	runner.AddResult("dpkg-query", args, ports.CommandResult{ExitCode: 0, Stdout: "installed"})
	state, err := PackageInstalled{Runner: runner, Package: "mariadb-server"}.Probe(context.Background())
	if err != nil {
		t.Fatalf("Probe() error = %v", err)
	}
	if state != Satisfied {
		t.Errorf("state = %v, want %v", state, Satisfied)
	}

	// Known to dpkg but not in the installed state.
	runner.AddResult("dpkg-query", args, ports.CommandResult{ExitCode: 0, Stdout: "config-files"})
	state, _ = PackageInstalled{Runner: runner, Package: "mariadb-server"}.Probe(context.Background())
	if state != NotSatisfied {
		t.Errorf("removed package state = %v, want %v", state, NotSatisfied)
	}

	// Unknown package: dpkg-query exits nonzero.
	runner.AddResult("dpkg-query", args, ports.CommandResult{ExitCode: 1, Stderr: "no packages found"})
	state, _ = PackageInstalled{Runner: runner, Package: "mariadb-server"}.Probe(context.Background())
	if state != NotSatisfied {
		t.Errorf("unknown package state = %v, want %v", state, NotSatisfied)
	}
}

func TestOutputContains(t *testing.T) {
	runner := mocks.NewCommandRunner()
	runner.AddResult("supervisorctl", []string{"status"}, ports.CommandResult{
		ExitCode: 0,
		Stdout:   "web    RUNNING   pid 120, uptime 1:02:03",
	})

	p := OutputContains{Runner: runner, Command: "supervisorctl", Args: []string{"status"}, Marker: "RUNNING"}
	state, err := p.Probe(context.Background())
	if err != nil {
		t.Fatalf("Probe() error = %v", err)
	}
	if state != Satisfied {
		t.Errorf("state = %v, want %v", state, Satisfied)
	}

	runner.AddResult("supervisorctl", []string{"status"}, ports.CommandResult{
		ExitCode: 0,
		Stdout:   "web    STOPPED",
	})
	state, _ = p.Probe(context.Background())
	if state != NotSatisfied {
		t.Errorf("state = %v, want %v", state, NotSatisfied)
	}
}

func TestCommandSucceeds(t *testing.T) {
	runner := mocks.NewCommandRunner()
	runner.AddResult("test", []string{"-d", "/opt/app"}, ports.CommandResult{ExitCode: 1})

	state, err := CommandSucceeds{Runner: runner, Command: "test", Args: []string{"-d", "/opt/app"}}.Probe(context.Background())
	if err != nil {
		t.Fatalf("Probe() error = %v", err)
	}
	if state != NotSatisfied {
		t.Errorf("state = %v, want %v", state, NotSatisfied)
	}
}
