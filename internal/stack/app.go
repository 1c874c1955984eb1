package stack

import (
	"fmt"
	"path/filepath"

	"github.com/hoistlabs/hoist/internal/domain/probe"
	"github.com/hoistlabs/hoist/internal/domain/step"
	"github.com/hoistlabs/hoist/internal/manifest"
)

// compileApp emits the vendor-toolchain scaffold: a workbench init and the
// site creation. Site creation writes a fresh schema into the database, so
// it is marked destructive and gated behind operator confirmation.
func (c *Compiler) compileApp(graph *step.Graph, m *manifest.Manifest, after []step.ID) ([]step.ID, error) {
	app := m.App
	if app == nil {
		return nil, nil
	}

	var ids []step.ID

	if app.MinVersion != "" {
		id := step.MustNewID("app:toolchain")
		s := step.New(id,
			probe.MinVersion{
				Runner:  c.runner,
				Command: app.Tool,
				Args:    []string{"--version"},
				Floor:   app.MinVersion,
			},
			step.CommandAction{
				Runner:  c.runner,
				Command: "sh",
				Args:    []string{"-c", fmt.Sprintf("pip3 install --upgrade %s", app.Tool)},
			},
		).
			WithSummary(fmt.Sprintf("ensure %s >= %s", app.Tool, app.MinVersion)).
			WithDependsOn(after...)
		if err := graph.Add(c.finish(s)); err != nil {
			return nil, err
		}
		ids = append(ids, id)
		after = []step.ID{id}
	}

	initID := step.MustNewID("app:init")
	initStep := step.New(initID,
		probe.FileExists{Path: app.Workdir},
		step.CommandAction{
			Runner:  c.runner,
			Command: app.Tool,
			Args:    []string{"init", app.Workdir},
		},
	).
		WithSummary("initialize workbench at " + app.Workdir).
		WithDependsOn(after...)
	if err := graph.Add(c.finish(initStep)); err != nil {
		return nil, err
	}
	ids = append(ids, initID)

	siteID := step.MustNewID("app:site:" + m.Site.Name)
	siteArgs := []string{"new-site", m.Site.Name}
	secretEnv := map[string]string{}
	var secretNames []string
	if db := m.Database; db != nil {
		siteArgs = append(siteArgs, "--db-name", db.Name)
		secretEnv["MYSQL_ROOT_PASSWORD"] = db.RootSecret
		secretNames = append(secretNames, db.RootSecret)
	}
	if app.AdminSecret != "" {
		secretEnv["ADMIN_PASSWORD"] = app.AdminSecret
		secretNames = append(secretNames, app.AdminSecret)
	}
	siteStep := step.New(siteID,
		probe.FileExists{Path: filepath.Join(app.Workdir, "sites", m.Site.Name)},
		step.CommandAction{
			Runner:    c.runner,
			Command:   app.Tool,
			Args:      siteArgs,
			SecretEnv: secretEnv,
		},
	).
		WithSummary("create site " + m.Site.Name).
		WithDependsOn(initID).
		WithSecrets(secretNames...).
		WithDestructive(true)
	if err := graph.Add(c.finish(siteStep)); err != nil {
		return nil, err
	}
	ids = append(ids, siteID)

	return ids, nil
}
