package stack

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/template"

	"github.com/hoistlabs/hoist/internal/domain/probe"
	"github.com/hoistlabs/hoist/internal/domain/step"
	"github.com/hoistlabs/hoist/internal/manifest"
)

// siteTemplate is the rendered reverse-proxy server block. The proxy_pass
// line doubles as the probe marker, so changing the upstream port in the
// manifest re-renders the site.
var siteTemplate = template.Must(template.New("site").Parse(`server {
    listen 80;
    server_name {{ .ServerName }};

    location / {
        proxy_pass http://127.0.0.1:{{ .UpstreamPort }};
        proxy_set_header Host $host;
        proxy_set_header X-Real-IP $remote_addr;
        proxy_set_header X-Forwarded-Proto $scheme;
    }
}
`))

// compileProxy emits the reverse-proxy site render-and-reload step. The
// proxy is the outermost, most cosmetic layer of the stack: a failure here
// leaves the app reachable on its upstream port, so the step warns instead
// of aborting the run.
func (c *Compiler) compileProxy(graph *step.Graph, m *manifest.Manifest, after []step.ID) ([]step.ID, error) {
	proxy := m.Proxy
	if proxy == nil {
		return nil, nil
	}

	confPath := filepath.Join(proxy.SitesDir, proxy.ServerName+".conf")
	marker := fmt.Sprintf("proxy_pass http://127.0.0.1:%d;", proxy.UpstreamPort)

	id := step.MustNewID("proxy:site:" + proxy.ServerName)
	s := step.New(id,
		probe.FileContains{Path: confPath, Marker: marker},
		step.FuncAction{
			Desc: "render " + confPath + " and reload proxy",
			Fn: func(ctx context.Context, _ step.Env) (string, error) {
				var buf strings.Builder
				if err := siteTemplate.Execute(&buf, proxy); err != nil {
					return "", fmt.Errorf("rendering site %s: %w", proxy.ServerName, err)
				}
				if err := os.WriteFile(confPath, []byte(buf.String()), 0o644); err != nil {
					return "", fmt.Errorf("writing %s: %w", confPath, err)
				}

				// Validate before reloading so a bad render never takes the
				// proxy down.
				check, err := c.runner.Run(ctx, "nginx", "-t")
				if err != nil {
					return check.Combined(), err
				}
				if !check.Success() {
					return check.Combined(), fmt.Errorf("proxy config validation failed")
				}

				reload, err := c.runner.Run(ctx, "systemctl", "reload", "nginx")
				if err != nil {
					return reload.Combined(), err
				}
				if !reload.Success() {
					return reload.Combined(), fmt.Errorf("proxy reload exited with code %d", reload.ExitCode)
				}
				return "wrote " + confPath + "\n" + reload.Combined(), nil
			},
		},
	).
		WithSummary("publish site " + proxy.ServerName).
		WithDependsOn(after...).
		WithPolicy(step.WarnAndContinue()).
		WithPrivileged(true)
	if err := graph.Add(c.finish(s)); err != nil {
		return nil, err
	}

	return []step.ID{id}, nil
}
