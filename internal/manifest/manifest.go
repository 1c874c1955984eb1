// Package manifest defines the declarative description of the stack a
// host should converge to, and loads it from YAML.
package manifest

import (
	"fmt"
	"regexp"
	"time"
)

// ParseTimeout parses a custom step's timeout declaration; empty means
// "use the default".
func ParseTimeout(s string) (time.Duration, error) {
	if s == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid timeout %q: %w", s, err)
	}
	return d, nil
}

// Manifest is the top-level hoist.yaml structure.
type Manifest struct {
	Site       Site         `yaml:"site"`
	Secrets    []SecretDecl `yaml:"secrets,omitempty"`
	Packages   Packages     `yaml:"packages,omitempty"`
	Services   []Service    `yaml:"services,omitempty"`
	Database   *Database    `yaml:"database,omitempty"`
	App        *App         `yaml:"app,omitempty"`
	Supervisor *Supervisor  `yaml:"supervisor,omitempty"`
	Proxy      *Proxy       `yaml:"proxy,omitempty"`
	Steps      []CustomStep `yaml:"steps,omitempty"`
}

// Site identifies the application instance being provisioned.
type Site struct {
	Name      string `yaml:"name"`
	AdminUser string `yaml:"admin_user,omitempty"`
}

// SecretDecl declares a credential the run collects up front.
type SecretDecl struct {
	Name   string `yaml:"name"`
	Prompt string `yaml:"prompt"`
	Masked bool   `yaml:"masked,omitempty"`
	Env    string `yaml:"env,omitempty"`
}

// Packages lists system packages to install.
type Packages struct {
	UpdateIndex bool     `yaml:"update_index,omitempty"`
	Install     []string `yaml:"install,omitempty"`
}

// Service declares a service-manager unit to enable and start.
type Service struct {
	Name   string `yaml:"name"`
	Enable bool   `yaml:"enable,omitempty"`
}

// Database declares the database bootstrap: a database, an application
// user, and the secrets holding their credentials.
type Database struct {
	Name       string `yaml:"name"`
	User       string `yaml:"user"`
	RootSecret string `yaml:"root_secret"`
	UserSecret string `yaml:"user_secret"`
}

// App declares the application scaffold performed through the vendor's
// toolchain.
type App struct {
	Tool       string `yaml:"tool"`
	MinVersion string `yaml:"min_version,omitempty"`
	Workdir    string `yaml:"workdir"`
	// AdminSecret names the secret for the initial admin account.
	AdminSecret string `yaml:"admin_secret,omitempty"`
}

// Supervisor declares process-supervisor programs to render and load.
type Supervisor struct {
	ConfDir  string    `yaml:"conf_dir"`
	Programs []Program `yaml:"programs"`
}

// Program is one supervised process.
type Program struct {
	Name      string `yaml:"name"`
	Command   string `yaml:"command"`
	Directory string `yaml:"directory,omitempty"`
	User      string `yaml:"user,omitempty"`
	Autostart bool   `yaml:"autostart,omitempty"`
}

// Proxy declares the reverse-proxy site wiring.
type Proxy struct {
	SitesDir     string `yaml:"sites_dir"`
	ServerName   string `yaml:"server_name"`
	UpstreamPort int    `yaml:"upstream_port"`
}

// CustomStep is a free-form declarative step in the manifest.
type CustomStep struct {
	ID      string    `yaml:"id"`
	Summary string    `yaml:"summary,omitempty"`
	Run     string    `yaml:"run"`
	Probe   ProbeDecl `yaml:"probe"`
	Needs   []string  `yaml:"needs,omitempty"`
	Policy  string    `yaml:"policy,omitempty"`
	// Timeout is a Go duration string such as "90s" or "5m".
	Timeout       string   `yaml:"timeout,omitempty"`
	Secrets       []string `yaml:"secrets,omitempty"`
	SkipOnUnknown bool     `yaml:"skip_on_unknown,omitempty"`
	Privileged    bool     `yaml:"privileged,omitempty"`
	Destructive   bool     `yaml:"destructive,omitempty"`
}

// ProbeDecl declares a custom step's postcondition check. Exactly one
// field must be set.
type ProbeDecl struct {
	FileExists   string            `yaml:"file_exists,omitempty"`
	FileContains *FileContainsDecl `yaml:"file_contains,omitempty"`
	Service      string            `yaml:"service_active,omitempty"`
	Package      string            `yaml:"package_installed,omitempty"`
	Command      string            `yaml:"command_succeeds,omitempty"`
	MinVersion   *MinVersionDecl   `yaml:"min_version,omitempty"`
}

// FileContainsDecl checks a file for a marker string.
type FileContainsDecl struct {
	Path   string `yaml:"path"`
	Marker string `yaml:"marker"`
}

// MinVersionDecl checks a tool reports at least a version floor.
type MinVersionDecl struct {
	Command string `yaml:"command"`
	Floor   string `yaml:"floor"`
}

// count returns how many probe variants are set.
func (p ProbeDecl) count() int {
	n := 0
	if p.FileExists != "" {
		n++
	}
	if p.FileContains != nil {
		n++
	}
	if p.Service != "" {
		n++
	}
	if p.Package != "" {
		n++
	}
	if p.Command != "" {
		n++
	}
	if p.MinVersion != nil {
		n++
	}
	return n
}

// siteNamePattern accepts hostnames and bare identifiers.
var siteNamePattern = regexp.MustCompile(`^[a-z0-9]([a-z0-9.-]*[a-z0-9])?$`)

// ValidateSiteName checks a site identifier, shared with the interactive
// prompt validator.
func ValidateSiteName(name string) error {
	if name == "" {
		return fmt.Errorf("site name must not be empty")
	}
	if !siteNamePattern.MatchString(name) {
		return fmt.Errorf("site name %q must be a lowercase hostname-style identifier", name)
	}
	return nil
}

// Validate checks the manifest's internal consistency.
func (m *Manifest) Validate() error {
	if err := ValidateSiteName(m.Site.Name); err != nil {
		return err
	}

	declared := make(map[string]bool, len(m.Secrets))
	for _, s := range m.Secrets {
		if s.Name == "" {
			return fmt.Errorf("secret declaration missing name")
		}
		if declared[s.Name] {
			return fmt.Errorf("secret %q declared twice", s.Name)
		}
		declared[s.Name] = true
	}

	if db := m.Database; db != nil {
		if db.Name == "" || db.User == "" {
			return fmt.Errorf("database requires name and user")
		}
		for _, ref := range []string{db.RootSecret, db.UserSecret} {
			if ref == "" {
				return fmt.Errorf("database requires root_secret and user_secret")
			}
			if !declared[ref] {
				return fmt.Errorf("database references undeclared secret %q", ref)
			}
		}
	}

	if app := m.App; app != nil {
		if app.Tool == "" || app.Workdir == "" {
			return fmt.Errorf("app requires tool and workdir")
		}
		if app.AdminSecret != "" && !declared[app.AdminSecret] {
			return fmt.Errorf("app references undeclared secret %q", app.AdminSecret)
		}
	}

	if sup := m.Supervisor; sup != nil {
		if sup.ConfDir == "" {
			return fmt.Errorf("supervisor requires conf_dir")
		}
		for _, prog := range sup.Programs {
			if prog.Name == "" || prog.Command == "" {
				return fmt.Errorf("supervisor program requires name and command")
			}
		}
	}

	if proxy := m.Proxy; proxy != nil {
		if proxy.SitesDir == "" || proxy.ServerName == "" || proxy.UpstreamPort == 0 {
			return fmt.Errorf("proxy requires sites_dir, server_name, and upstream_port")
		}
	}

	for _, cs := range m.Steps {
		if cs.ID == "" {
			return fmt.Errorf("custom step missing id")
		}
		if cs.Run == "" {
			return fmt.Errorf("custom step %q missing run command", cs.ID)
		}
		if n := cs.Probe.count(); n != 1 {
			return fmt.Errorf("custom step %q must declare exactly one probe, has %d", cs.ID, n)
		}
		if _, err := ParseTimeout(cs.Timeout); err != nil {
			return fmt.Errorf("custom step %q: %w", cs.ID, err)
		}
		for _, ref := range cs.Secrets {
			if !declared[ref] {
				return fmt.Errorf("custom step %q references undeclared secret %q", cs.ID, ref)
			}
		}
	}

	return nil
}
