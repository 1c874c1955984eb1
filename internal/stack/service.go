package stack

import (
	"github.com/hoistlabs/hoist/internal/domain/probe"
	"github.com/hoistlabs/hoist/internal/domain/step"
	"github.com/hoistlabs/hoist/internal/manifest"
)

// compileServices emits one enable-and-start step per declared unit.
// Services depend on every package step: the unit files come from the
// packages, and the manager cannot start what is not installed.
func (c *Compiler) compileServices(graph *step.Graph, m *manifest.Manifest, after []step.ID) ([]step.ID, error) {
	var ids []step.ID

	for _, svc := range m.Services {
		args := []string{"start", svc.Name}
		summary := "start service " + svc.Name
		if svc.Enable {
			args = []string{"enable", "--now", svc.Name}
			summary = "enable and start service " + svc.Name
		}

		id := step.MustNewID("services:up:" + svc.Name)
		s := step.New(id,
			probe.ServiceActive{Runner: c.runner, Service: svc.Name},
			step.CommandAction{
				Runner:  c.runner,
				Command: "systemctl",
				Args:    args,
			},
		).
			WithSummary(summary).
			WithDependsOn(after...).
			WithPrivileged(true)
		if err := graph.Add(c.finish(s)); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}

	return ids, nil
}
