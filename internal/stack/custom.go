package stack

import (
	"fmt"

	"github.com/hoistlabs/hoist/internal/domain/probe"
	"github.com/hoistlabs/hoist/internal/domain/step"
	"github.com/hoistlabs/hoist/internal/manifest"
)

// compileCustom turns free-form manifest steps into graph steps. Custom
// steps order themselves only through their declared needs; the layer
// barriers of the built-in concerns do not apply to them.
func (c *Compiler) compileCustom(graph *step.Graph, m *manifest.Manifest) error {
	for _, cs := range m.Steps {
		id, err := step.NewID(cs.ID)
		if err != nil {
			return fmt.Errorf("custom step %q: %w", cs.ID, err)
		}

		check, err := c.buildProbe(cs.Probe)
		if err != nil {
			return fmt.Errorf("custom step %q: %w", cs.ID, err)
		}

		policy, err := step.ParsePolicy(cs.Policy)
		if err != nil {
			return fmt.Errorf("custom step %q: %w", cs.ID, err)
		}

		var needs []step.ID
		for _, need := range cs.Needs {
			needID, err := step.NewID(need)
			if err != nil {
				return fmt.Errorf("custom step %q needs: %w", cs.ID, err)
			}
			needs = append(needs, needID)
		}

		secretEnv := make(map[string]string, len(cs.Secrets))
		for _, name := range cs.Secrets {
			secretEnv[secretEnvVar(name)] = name
		}

		s := step.New(id, check, step.CommandAction{
			Runner:    c.runner,
			Command:   "sh",
			Args:      []string{"-c", cs.Run},
			SecretEnv: secretEnv,
		}).
			WithSummary(cs.Summary).
			WithDependsOn(needs...).
			WithPolicy(policy).
			WithSecrets(cs.Secrets...).
			WithSkipOnUnknown(cs.SkipOnUnknown).
			WithPrivileged(cs.Privileged).
			WithDestructive(cs.Destructive)

		timeout, err := manifest.ParseTimeout(cs.Timeout)
		if err != nil {
			return fmt.Errorf("custom step %q: %w", cs.ID, err)
		}
		if timeout > 0 {
			s = s.WithTimeout(timeout)
		} else {
			s = c.finish(s)
		}

		if err := graph.Add(s); err != nil {
			return err
		}
	}
	return nil
}

// buildProbe constructs the probe a custom step declared.
func (c *Compiler) buildProbe(decl manifest.ProbeDecl) (probe.Probe, error) {
	switch {
	case decl.FileExists != "":
		return probe.FileExists{Path: decl.FileExists}, nil
	case decl.FileContains != nil:
		return probe.FileContains{Path: decl.FileContains.Path, Marker: decl.FileContains.Marker}, nil
	case decl.Service != "":
		return probe.ServiceActive{Runner: c.runner, Service: decl.Service}, nil
	case decl.Package != "":
		return probe.PackageInstalled{Runner: c.runner, Package: decl.Package}, nil
	case decl.Command != "":
		return probe.CommandSucceeds{Runner: c.runner, Command: "sh", Args: []string{"-c", decl.Command}}, nil
	case decl.MinVersion != nil:
		return probe.MinVersion{
			Runner:  c.runner,
			Command: decl.MinVersion.Command,
			Args:    []string{"--version"},
			Floor:   decl.MinVersion.Floor,
		}, nil
	default:
		return nil, fmt.Errorf("no probe declared")
	}
}

// secretEnvVar derives the child environment variable name for a declared
// secret, e.g. "db-root-password" becomes "HOIST_SECRET_DB_ROOT_PASSWORD".
func secretEnvVar(name string) string {
	out := make([]byte, 0, len(name))
	for i := 0; i < len(name); i++ {
		ch := name[i]
		switch {
		case ch >= 'a' && ch <= 'z':
			out = append(out, ch-'a'+'A')
		case ch >= 'A' && ch <= 'Z', ch >= '0' && ch <= '9':
			out = append(out, ch)
		default:
			out = append(out, '_')
		}
	}
	return "HOIST_SECRET_" + string(out)
}
