package manifest

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// DefaultPath is the manifest file looked up when no flag is given.
const DefaultPath = "hoist.yaml"

// LoadFile reads and validates a manifest YAML file.
func LoadFile(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading manifest: %w", err)
	}
	return Load(data)
}

// Load parses and validates manifest YAML bytes.
func Load(data []byte) (*Manifest, error) {
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing manifest: %w", err)
	}
	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("invalid manifest: %w", err)
	}
	return &m, nil
}
