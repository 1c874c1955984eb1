package manifest

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

// Settings are operator-level knobs, separate from the stack manifest.
// Loaded from hoist.toml next to the manifest when present.
type Settings struct {
	// LogDir is where run logs are written.
	LogDir string `toml:"log_dir"`
	// DefaultTimeoutSeconds bounds steps that declare no timeout.
	DefaultTimeoutSeconds int `toml:"default_timeout_seconds"`
	// RetryBackoffMs is the first retry delay in milliseconds.
	RetryBackoffMs int `toml:"retry_backoff_ms"`
	// OutputCap bounds captured output per recorded result, in bytes.
	OutputCap int `toml:"output_cap"`
}

// DefaultSettings returns the built-in defaults.
func DefaultSettings() Settings {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return Settings{
		LogDir:                filepath.Join(home, ".hoist", "runs"),
		DefaultTimeoutSeconds: 600,
		RetryBackoffMs:        500,
		OutputCap:             8 * 1024,
	}
}

// DefaultTimeout returns the default step timeout as a duration.
func (s Settings) DefaultTimeout() time.Duration {
	return time.Duration(s.DefaultTimeoutSeconds) * time.Second
}

// RetryBackoffBase returns the first retry delay as a duration.
func (s Settings) RetryBackoffBase() time.Duration {
	return time.Duration(s.RetryBackoffMs) * time.Millisecond
}

// LoadSettings reads hoist.toml from path, falling back to defaults when
// the file does not exist. Fields omitted in the file keep their defaults.
func LoadSettings(path string) (Settings, error) {
	settings := DefaultSettings()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return settings, nil
		}
		return settings, fmt.Errorf("reading settings: %w", err)
	}

	if err := toml.Unmarshal(data, &settings); err != nil {
		return settings, fmt.Errorf("parsing settings: %w", err)
	}
	return settings, nil
}
