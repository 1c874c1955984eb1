package stack

import (
	"github.com/hoistlabs/hoist/internal/domain/probe"
	"github.com/hoistlabs/hoist/internal/domain/step"
	"github.com/hoistlabs/hoist/internal/manifest"
)

// compilePackages emits the package-index refresh and one install step per
// declared package. Index refresh is a network operation and retries once
// before giving up; installs abort the run on failure because everything
// downstream needs them.
func (c *Compiler) compilePackages(graph *step.Graph, m *manifest.Manifest) ([]step.ID, error) {
	var ids []step.ID

	if m.Packages.UpdateIndex {
		id := step.MustNewID("packages:update-index")
		s := step.New(id,
			// Lists on disk mean the index has been fetched at least once.
			probe.CommandSucceeds{
				Runner:  c.runner,
				Command: "sh",
				Args:    []string{"-c", "ls /var/lib/apt/lists/*Packages* >/dev/null 2>&1"},
			},
			step.CommandAction{
				Runner:  c.runner,
				Command: "apt-get",
				Args:    []string{"update", "-qq"},
			},
		).
			WithSummary("refresh package index").
			WithPolicy(step.Retry(2)).
			WithPrivileged(true)
		if err := graph.Add(c.finish(s)); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}

	for _, pkg := range m.Packages.Install {
		id := step.MustNewID("packages:install:" + pkg)
		s := step.New(id,
			probe.PackageInstalled{Runner: c.runner, Package: pkg},
			step.CommandAction{
				Runner:  c.runner,
				Command: "apt-get",
				Args:    []string{"install", "-y", "-qq", pkg},
			},
		).
			WithSummary("install package " + pkg).
			WithPrivileged(true)
		if m.Packages.UpdateIndex {
			s = s.WithDependsOn(step.MustNewID("packages:update-index"))
		}
		if err := graph.Add(c.finish(s)); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}

	return ids, nil
}
