package stack

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"

	ini "gopkg.in/ini.v1"

	"github.com/hoistlabs/hoist/internal/domain/probe"
	"github.com/hoistlabs/hoist/internal/domain/step"
	"github.com/hoistlabs/hoist/internal/manifest"
)

// compileSupervisor emits one step per supervised program. The action
// renders the program's INI file and tells the supervisor to pick it up in
// the same step, so a reload happens exactly when the config changed. The
// probe looks for the rendered command line in the file, which also
// catches manifest edits to an existing program.
func (c *Compiler) compileSupervisor(graph *step.Graph, m *manifest.Manifest, after []step.ID) ([]step.ID, error) {
	sup := m.Supervisor
	if sup == nil {
		return nil, nil
	}

	var ids []step.ID

	for _, prog := range sup.Programs {
		prog := prog
		confPath := filepath.Join(sup.ConfDir, prog.Name+".conf")

		id := step.MustNewID("supervisor:program:" + prog.Name)
		s := step.New(id,
			probe.FileContains{Path: confPath, Marker: "command = " + prog.Command},
			step.FuncAction{
				Desc: "render " + confPath + " and reload supervisor",
				Fn: func(ctx context.Context, _ step.Env) (string, error) {
					if err := renderProgram(confPath, prog); err != nil {
						return "", err
					}
					result, err := c.runner.Run(ctx, "sh", "-c",
						"supervisorctl reread && supervisorctl update")
					if err != nil {
						return result.Combined(), err
					}
					if !result.Success() {
						return result.Combined(), fmt.Errorf("supervisorctl update exited with code %d", result.ExitCode)
					}
					return "wrote " + confPath + "\n" + result.Combined(), nil
				},
			},
		).
			WithSummary("supervise program " + prog.Name).
			WithDependsOn(after...).
			WithPrivileged(true)
		if err := graph.Add(c.finish(s)); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}

	return ids, nil
}

// renderProgram writes a [program:<name>] section in supervisor's INI
// dialect.
func renderProgram(path string, prog manifest.Program) error {
	file := ini.Empty()
	section, err := file.NewSection("program:" + prog.Name)
	if err != nil {
		return fmt.Errorf("rendering program %s: %w", prog.Name, err)
	}

	section.Key("command").SetValue(prog.Command)
	if prog.Directory != "" {
		section.Key("directory").SetValue(prog.Directory)
	}
	if prog.User != "" {
		section.Key("user").SetValue(prog.User)
	}
	section.Key("autostart").SetValue(strconv.FormatBool(prog.Autostart))
	section.Key("autorestart").SetValue("true")
	section.Key("redirect_stderr").SetValue("true")

	if err := file.SaveTo(path); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
