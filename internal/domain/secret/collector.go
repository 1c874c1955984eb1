package secret

import (
	"errors"
	"fmt"
	"os"

	"github.com/hoistlabs/hoist/internal/domain/step"
	"github.com/hoistlabs/hoist/internal/ports"
)

// maxPromptAttempts bounds re-prompting on validation failure before the
// run aborts.
const maxPromptAttempts = 3

// Collector gathers secrets once, before planning, through an interactive
// prompter or from the environment in non-interactive runs.
type Collector struct {
	prompter       ports.Prompter
	nonInteractive bool
	// presets are values supplied up front (flags), keyed by secret name.
	presets map[string]string
}

// NewCollector creates a Collector using the given prompter.
func NewCollector(prompter ports.Prompter) *Collector {
	return &Collector{
		prompter: prompter,
		presets:  make(map[string]string),
	}
}

// WithNonInteractive disables prompting; every secret must come from a
// preset or its declared environment variable.
func (c *Collector) WithNonInteractive(enabled bool) *Collector {
	c.nonInteractive = enabled
	return c
}

// WithPreset supplies a value ahead of collection, e.g. from a flag.
func (c *Collector) WithPreset(name, value string) *Collector {
	c.presets[name] = value
	return c
}

// Collect gathers a value for every spec. Collection is strictly
// sequential and is the only part of a run that blocks on human input.
func (c *Collector) Collect(specs []Spec) (*Store, error) {
	values := make([]Value, 0, len(specs))
	for _, spec := range specs {
		v, err := c.collectOne(spec)
		if err != nil {
			return nil, err
		}
		values = append(values, v)
	}
	return NewStore(values), nil
}

func (c *Collector) collectOne(spec Spec) (Value, error) {
	if preset, ok := c.presets[spec.Name]; ok {
		if err := c.validate(spec, preset); err != nil {
			return Value{}, err
		}
		return NewValue(spec.Name, preset, spec.Masked), nil
	}

	if spec.EnvVar != "" {
		if v, ok := os.LookupEnv(spec.EnvVar); ok {
			if err := c.validate(spec, v); err != nil {
				return Value{}, err
			}
			return NewValue(spec.Name, v, spec.Masked), nil
		}
	}

	if c.nonInteractive {
		return Value{}, step.NewValidationError(spec.Name,
			fmt.Sprintf("no value provided and prompting is disabled (set %s or pass a flag)", spec.EnvVar))
	}

	for attempt := 0; attempt < maxPromptAttempts; attempt++ {
		var (
			input string
			err   error
		)
		if spec.Masked {
			input, err = c.prompter.ReadSecret(spec.Prompt + ": ")
		} else {
			input, err = c.prompter.ReadLine(spec.Prompt + ": ")
		}
		if err != nil {
			return Value{}, fmt.Errorf("reading %s: %w", spec.Name, err)
		}

		if err := c.validate(spec, input); err != nil {
			var verr *step.ValidationError
			if errors.As(err, &verr) && attempt < maxPromptAttempts-1 {
				_, _ = fmt.Fprintf(os.Stderr, "  %v, try again\n", err)
				continue
			}
			return Value{}, err
		}
		return NewValue(spec.Name, input, spec.Masked), nil
	}

	return Value{}, step.NewValidationError(spec.Name, "no valid value after repeated prompts")
}

func (c *Collector) validate(spec Spec, value string) error {
	if spec.Validate == nil {
		return nil
	}
	return spec.Validate(value)
}
