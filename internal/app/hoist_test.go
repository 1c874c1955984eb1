package app

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hoistlabs/hoist/internal/adapters/logging"
	"github.com/hoistlabs/hoist/internal/domain/step"
	"github.com/hoistlabs/hoist/internal/ports"
	"github.com/hoistlabs/hoist/internal/testutil/mocks"
)

const testManifest = `
site:
  name: shop.example.com

secrets:
  - name: db-root-password
    prompt: Root password
    masked: true
  - name: unused-secret
    prompt: Goes uncollected

packages:
  install: [mariadb-server]

steps:
  - id: db:tune
    run: mysql -e 'SET GLOBAL x = 1'
    probe:
      command_succeeds: "true"
    needs: [packages:install:mariadb-server]
    secrets: [db-root-password]
    privileged: true
`

func writeManifest(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "hoist.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func newTestHoist(out *bytes.Buffer) *Hoist {
	return New(out).
		WithRunner(mocks.NewCommandRunner()).
		WithLogger(logging.NewNopLogger()).
		WithEUID(func() int { return 0 })
}

func TestHoist_LoadAndPlan(t *testing.T) {
	path := writeManifest(t, testManifest)
	hoist := newTestHoist(&bytes.Buffer{})

	m, settings, err := hoist.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "shop.example.com", m.Site.Name)

	plan, err := hoist.Plan(m, settings)
	require.NoError(t, err)
	assert.Equal(t, 2, plan.Len())
	assert.Equal(t, []string{"db-root-password"}, plan.SecretsNeeded())
}

func TestHoist_CheckPrivileges(t *testing.T) {
	path := writeManifest(t, testManifest)
	hoist := newTestHoist(&bytes.Buffer{}).WithEUID(func() int { return 1000 })

	m, settings, err := hoist.Load(path)
	require.NoError(t, err)
	plan, err := hoist.Plan(m, settings)
	require.NoError(t, err)

	err = hoist.CheckPrivileges(plan)
	var permErr *step.PermissionError
	require.ErrorAs(t, err, &permErr)

	hoist = hoist.WithEUID(func() int { return 0 })
	assert.NoError(t, hoist.CheckPrivileges(plan))
}

func TestHoist_CollectSecretsOnlyNeeded(t *testing.T) {
	path := writeManifest(t, testManifest)
	hoist := newTestHoist(&bytes.Buffer{}).
		WithSecretPreset("db-root-password", "hunter2").
		WithNonInteractive(true)

	m, settings, err := hoist.Load(path)
	require.NoError(t, err)
	plan, err := hoist.Plan(m, settings)
	require.NoError(t, err)

	store, err := hoist.CollectSecrets(m, plan)
	require.NoError(t, err)

	// The declared-but-unreferenced secret is not collected.
	assert.Equal(t, []string{"db-root-password"}, store.Names())
}

func TestHoist_ConfirmDestructive(t *testing.T) {
	destructive := `
site:
  name: shop.example.com
steps:
  - id: db:reset
    run: echo reset
    probe:
      command_succeeds: "false"
    destructive: true
`
	path := writeManifest(t, destructive)

	t.Run("operator accepts", func(t *testing.T) {
		out := &bytes.Buffer{}
		hoist := newTestHoist(out).WithPrompter(mocks.NewPrompter("y"))
		m, settings, err := hoist.Load(path)
		require.NoError(t, err)
		plan, err := hoist.Plan(m, settings)
		require.NoError(t, err)

		assert.NoError(t, hoist.ConfirmDestructive(plan))
		assert.Contains(t, out.String(), "db:reset")
	})

	t.Run("operator declines", func(t *testing.T) {
		hoist := newTestHoist(&bytes.Buffer{}).WithPrompter(mocks.NewPrompter("n"))
		m, settings, err := hoist.Load(path)
		require.NoError(t, err)
		plan, err := hoist.Plan(m, settings)
		require.NoError(t, err)

		assert.Error(t, hoist.ConfirmDestructive(plan))
	})

	t.Run("assume yes skips the prompt", func(t *testing.T) {
		hoist := newTestHoist(&bytes.Buffer{}).WithAssumeYes(true)
		m, settings, err := hoist.Load(path)
		require.NoError(t, err)
		plan, err := hoist.Plan(m, settings)
		require.NoError(t, err)

		assert.NoError(t, hoist.ConfirmDestructive(plan))
	})

	t.Run("non-interactive refuses", func(t *testing.T) {
		hoist := newTestHoist(&bytes.Buffer{}).WithNonInteractive(true)
		m, settings, err := hoist.Load(path)
		require.NoError(t, err)
		plan, err := hoist.Plan(m, settings)
		require.NoError(t, err)

		err = hoist.ConfirmDestructive(plan)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "--yes")
	})
}

func TestHoist_ExecuteEndToEnd(t *testing.T) {
	path := writeManifest(t, testManifest)
	out := &bytes.Buffer{}

	runner := mocks.NewCommandRunner()
	runner.SetDefault(ports.CommandResult{ExitCode: 0, Stdout: "ok"})
	// Both probes report "not there yet" so both steps actually run.
	runner.AddResult("dpkg-query", []string{"-W", "-f=${db:Status-Status}", "mariadb-server"},
		ports.CommandResult{ExitCode: 1})
	runner.AddResult("sh", []string{"-c", "true"}, ports.CommandResult{ExitCode: 1})

	hoist := New(out).
		WithRunner(runner).
		WithLogger(logging.NewNopLogger()).
		WithEUID(func() int { return 0 }).
		WithSecretPreset("db-root-password", "hunter2").
		WithNonInteractive(true)

	m, settings, err := hoist.Load(path)
	require.NoError(t, err)
	settings.LogDir = t.TempDir()

	plan, err := hoist.Plan(m, settings)
	require.NoError(t, err)
	require.NoError(t, hoist.CheckPrivileges(plan))

	secrets, err := hoist.CollectSecrets(m, plan)
	require.NoError(t, err)

	outcome, err := hoist.Execute(context.Background(), plan, secrets, settings)
	require.NoError(t, err)
	require.NotNil(t, outcome)

	assert.True(t, outcome.Summary.Converged())
	assert.Equal(t, 2, outcome.Summary.Total)
	assert.FileExists(t, outcome.LogPath)

	// The secret went to the child environment of the custom step, never
	// into an argument vector.
	var sawSecretEnv bool
	for _, call := range runner.Calls() {
		for _, arg := range call.Args {
			assert.NotContains(t, arg, "hunter2")
		}
		for _, kv := range call.Env {
			if kv == "HOIST_SECRET_DB_ROOT_PASSWORD=hunter2" {
				sawSecretEnv = true
			}
		}
	}
	assert.True(t, sawSecretEnv, "secret never reached the action environment")

	// And never the run log.
	data, err := os.ReadFile(outcome.LogPath)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "hunter2")

	hoist.PrintResults(outcome.Results)
	hoist.PrintSummary(outcome)
	assert.Contains(t, out.String(), "Run log:")
}

func TestHoist_PlanSurfacesCycle(t *testing.T) {
	cyclic := `
site:
  name: shop.example.com
steps:
  - id: a
    run: echo a
    probe:
      file_exists: /tmp/a
    needs: [b]
  - id: b
    run: echo b
    probe:
      file_exists: /tmp/b
    needs: [a]
`
	path := writeManifest(t, cyclic)
	hoist := newTestHoist(&bytes.Buffer{})

	m, settings, err := hoist.Load(path)
	require.NoError(t, err)

	_, err = hoist.Plan(m, settings)
	var cycleErr *step.CycleError
	require.True(t, errors.As(err, &cycleErr), "Plan() error = %v, want CycleError", err)
	assert.Contains(t, err.Error(), "cyclic dependency")
}
