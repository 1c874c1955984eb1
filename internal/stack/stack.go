// Package stack compiles a manifest into executable provisioning steps.
// Each concern (packages, services, database, app scaffold, supervisor,
// proxy) contributes steps the way a provider contributes to a build:
// deterministic IDs, read-only probes, idempotent actions.
package stack

import (
	"time"

	"github.com/hoistlabs/hoist/internal/domain/secret"
	"github.com/hoistlabs/hoist/internal/domain/step"
	"github.com/hoistlabs/hoist/internal/manifest"
	"github.com/hoistlabs/hoist/internal/ports"
)

// Compiler turns a manifest into a step graph.
type Compiler struct {
	runner         ports.CommandRunner
	defaultTimeout time.Duration
}

// NewCompiler creates a Compiler executing through the given runner.
func NewCompiler(runner ports.CommandRunner) *Compiler {
	return &Compiler{runner: runner}
}

// WithDefaultTimeout sets the timeout applied to steps without their own.
func (c *Compiler) WithDefaultTimeout(d time.Duration) *Compiler {
	c.defaultTimeout = d
	return c
}

// Compile builds the full step graph in stack order: packages, then
// services, then database, then app scaffold, then supervisor and proxy.
// Later layers depend on the whole previous layer; inside a layer,
// declaration order rules.
func (c *Compiler) Compile(m *manifest.Manifest) (*step.Graph, error) {
	graph := step.NewGraph()

	packageIDs, err := c.compilePackages(graph, m)
	if err != nil {
		return nil, err
	}

	serviceIDs, err := c.compileServices(graph, m, packageIDs)
	if err != nil {
		return nil, err
	}
	if len(serviceIDs) == 0 {
		serviceIDs = packageIDs
	}

	databaseIDs, err := c.compileDatabase(graph, m, serviceIDs)
	if err != nil {
		return nil, err
	}
	if len(databaseIDs) == 0 {
		databaseIDs = serviceIDs
	}

	appIDs, err := c.compileApp(graph, m, databaseIDs)
	if err != nil {
		return nil, err
	}
	if len(appIDs) == 0 {
		appIDs = databaseIDs
	}

	if _, err := c.compileSupervisor(graph, m, appIDs); err != nil {
		return nil, err
	}
	if _, err := c.compileProxy(graph, m, appIDs); err != nil {
		return nil, err
	}
	if err := c.compileCustom(graph, m); err != nil {
		return nil, err
	}

	if err := graph.Validate(); err != nil {
		return nil, err
	}
	return graph, nil
}

// finish applies compiler-wide defaults to a step.
func (c *Compiler) finish(s step.Step) step.Step {
	if c.defaultTimeout > 0 {
		s = s.WithTimeout(c.defaultTimeout)
	}
	return s
}

// SecretSpecs converts manifest secret declarations into collection specs.
// Every declared secret must be non-empty; masked ones are collected
// without echo and never logged.
func SecretSpecs(m *manifest.Manifest) []secret.Spec {
	specs := make([]secret.Spec, 0, len(m.Secrets))
	for _, decl := range m.Secrets {
		specs = append(specs, secret.Spec{
			Name:     decl.Name,
			Prompt:   decl.Prompt,
			Masked:   decl.Masked,
			EnvVar:   decl.Env,
			Validate: secret.NotEmpty(decl.Name),
		})
	}
	return specs
}
