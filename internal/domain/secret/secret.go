// Package secret collects and guards credentials for a provisioning run.
// Values live only in process memory for the lifetime of the run and are
// scrubbed from every captured output before anything is recorded.
package secret

import (
	"errors"
	"sort"
	"strings"

	"github.com/hoistlabs/hoist/internal/domain/step"
)

// ErrNotCollected indicates a step declared a secret that was never
// collected.
var ErrNotCollected = errors.New("secret was not collected")

// Validator checks a collected value before it is accepted.
type Validator func(value string) error

// NotEmpty rejects blank input.
func NotEmpty(field string) Validator {
	return func(value string) error {
		if strings.TrimSpace(value) == "" {
			return step.NewValidationError(field, "value must not be empty")
		}
		return nil
	}
}

// MinLength rejects values shorter than n characters.
func MinLength(field string, n int) Validator {
	return func(value string) error {
		if len(value) < n {
			return step.NewValidationError(field, "value is too short")
		}
		return nil
	}
}

// Spec declares one secret the run needs.
type Spec struct {
	// Name identifies the secret; steps reference it by this name.
	Name string
	// Prompt is the human-readable request shown to the operator.
	Prompt string
	// Masked controls whether terminal input is echoed.
	Masked bool
	// EnvVar, when set, allows non-interactive runs to source the value
	// from the process environment.
	EnvVar string
	// Validate is applied to collected input; nil accepts anything.
	Validate Validator
}

// Value is a collected secret. Its raw content is reachable only through
// Reveal, which the executor alone calls; fmt-style printing is masked.
type Value struct {
	name      string
	sensitive bool
	raw       string
}

// NewValue creates a collected value.
func NewValue(name, raw string, sensitive bool) Value {
	return Value{name: name, raw: raw, sensitive: sensitive}
}

// Name returns the secret's name.
func (v Value) Name() string { return v.name }

// Sensitive reports whether the value must never be logged.
func (v Value) Sensitive() bool { return v.sensitive }

// Reveal returns the raw content. Only the executor should call this.
func (v Value) Reveal() string { return v.raw }

// String masks the content so accidental printing never leaks it.
func (v Value) String() string {
	if v.sensitive {
		return v.name + ":********"
	}
	return v.name + ":" + v.raw
}

// GoString masks the content for %#v as well.
func (v Value) GoString() string { return v.String() }

// Store holds collected values, read-only after collection.
type Store struct {
	values map[string]Value
}

// NewStore creates a Store from collected values.
func NewStore(values []Value) *Store {
	m := make(map[string]Value, len(values))
	for _, v := range values {
		m[v.name] = v
	}
	return &Store{values: m}
}

// Resolve returns the raw values for the named secrets, for injection
// into a step's action environment.
func (s *Store) Resolve(names []string) (map[string]string, error) {
	resolved := make(map[string]string, len(names))
	for _, name := range names {
		v, ok := s.values[name]
		if !ok {
			return nil, errors.New("secret " + name + ": " + ErrNotCollected.Error())
		}
		resolved[name] = v.raw
	}
	return resolved, nil
}

// SensitiveValues returns every sensitive raw value, longest first, for
// redaction registration.
func (s *Store) SensitiveValues() []string {
	raws := make([]string, 0, len(s.values))
	for _, v := range s.values {
		if v.sensitive && v.raw != "" {
			raws = append(raws, v.raw)
		}
	}
	sort.Slice(raws, func(i, j int) bool { return len(raws[i]) > len(raws[j]) })
	return raws
}

// Names returns the collected secret names in sorted order.
func (s *Store) Names() []string {
	names := make([]string, 0, len(s.values))
	for name := range s.values {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
