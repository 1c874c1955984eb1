package step

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Sentinel errors for graph operations.
var (
	ErrDuplicateStep = errors.New("step with this ID already exists")
	ErrMissingDep    = errors.New("step depends on nonexistent step")
)

// ValidationError indicates bad operator input or a malformed declaration.
// It is fatal to the current prompt or invocation, not to the process.
type ValidationError struct {
	Field   string
	Message string
}

// Error returns the formatted message.
func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// NewValidationError creates a ValidationError.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// ProbeError indicates an idempotency probe could not run to completion.
// The prober maps it to an Unknown result; policy decides what happens next.
type ProbeError struct {
	StepID     ID
	Underlying error
}

// Error returns the formatted message.
func (e *ProbeError) Error() string {
	return fmt.Sprintf("probe for step %q failed: %v", e.StepID.String(), e.Underlying)
}

// Unwrap returns the underlying error.
func (e *ProbeError) Unwrap() error {
	return e.Underlying
}

// ExecutionError indicates a step's action returned a failure.
type ExecutionError struct {
	StepID     ID
	ExitCode   int
	Underlying error
}

// Error returns the formatted message.
func (e *ExecutionError) Error() string {
	if e.Underlying != nil {
		return fmt.Sprintf("step %q failed: %v", e.StepID.String(), e.Underlying)
	}
	return fmt.Sprintf("step %q failed with exit code %d", e.StepID.String(), e.ExitCode)
}

// Unwrap returns the underlying error.
func (e *ExecutionError) Unwrap() error {
	return e.Underlying
}

// TimeoutError indicates a step's action exceeded its time bound.
// The underlying action is terminated before the executor returns.
type TimeoutError struct {
	StepID ID
	Limit  time.Duration
}

// Error returns the formatted message.
func (e *TimeoutError) Error() string {
	return fmt.Sprintf("step %q timed out after %s", e.StepID.String(), e.Limit)
}

// CycleError indicates the dependency graph has a cycle. No valid plan
// exists, so planning aborts before any host mutation.
type CycleError struct {
	Members []string
}

// Error returns the formatted message including the cycle's member step IDs.
func (e *CycleError) Error() string {
	return fmt.Sprintf("cyclic dependency detected: %s", strings.Join(e.Members, " -> "))
}

// PermissionError indicates the process lacks required privilege.
// It is checked once at startup, before any secret collection.
type PermissionError struct {
	Message string
}

// Error returns the formatted message.
func (e *PermissionError) Error() string {
	return e.Message
}
