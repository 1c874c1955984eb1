package step

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// PolicyKind names a failure policy.
type PolicyKind string

const (
	// PolicyAbort stops the run on failure; remaining steps are recorded
	// as skipped-due-to-abort.
	PolicyAbort PolicyKind = "abort"
	// PolicyWarn records the failure and continues with the next step.
	PolicyWarn PolicyKind = "warn-and-continue"
	// PolicyRetry re-runs the step up to N additional times with
	// exponential backoff, then falls back to abort semantics.
	PolicyRetry PolicyKind = "retry"
)

// FailurePolicy declares how a step failure affects the run.
type FailurePolicy struct {
	kind    PolicyKind
	retries int
}

// Abort returns the abort policy.
func Abort() FailurePolicy {
	return FailurePolicy{kind: PolicyAbort}
}

// WarnAndContinue returns the warn-and-continue policy.
func WarnAndContinue() FailurePolicy {
	return FailurePolicy{kind: PolicyWarn}
}

// Retry returns a retry policy with n additional attempts.
func Retry(n int) FailurePolicy {
	if n < 0 {
		n = 0
	}
	return FailurePolicy{kind: PolicyRetry, retries: n}
}

// retryPattern matches "retry(N)".
var retryPattern = regexp.MustCompile(`^retry\((\d+)\)$`)

// ParsePolicy parses a policy declaration such as "abort",
// "warn-and-continue", or "retry(3)".
func ParsePolicy(s string) (FailurePolicy, error) {
	switch v := strings.TrimSpace(s); {
	case v == "" || v == string(PolicyAbort):
		return Abort(), nil
	case v == string(PolicyWarn):
		return WarnAndContinue(), nil
	default:
		if m := retryPattern.FindStringSubmatch(v); m != nil {
			n, err := strconv.Atoi(m[1])
			if err != nil {
				return FailurePolicy{}, fmt.Errorf("invalid retry count %q: %w", m[1], err)
			}
			return Retry(n), nil
		}
		return FailurePolicy{}, fmt.Errorf("unknown failure policy %q", s)
	}
}

// Kind returns the policy kind.
func (p FailurePolicy) Kind() PolicyKind {
	if p.kind == "" {
		return PolicyAbort
	}
	return p.kind
}

// Retries returns the number of additional attempts for a retry policy.
func (p FailurePolicy) Retries() int {
	return p.retries
}

// String returns the declaration form of the policy.
func (p FailurePolicy) String() string {
	if p.Kind() == PolicyRetry {
		return fmt.Sprintf("retry(%d)", p.retries)
	}
	return string(p.Kind())
}
