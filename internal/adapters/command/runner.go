// Package command provides command execution adapters.
package command

import (
	"bytes"
	"context"
	"errors"
	"os"
	"os/exec"

	"github.com/hoistlabs/hoist/internal/ports"
)

// captureCap bounds per-stream capture so a verbose installer cannot grow
// memory without limit. The head of the stream is kept.
const captureCap = 64 * 1024

// cappedBuffer accepts writes but stops retaining bytes past its cap.
type cappedBuffer struct {
	buf bytes.Buffer
	cap int
}

func (b *cappedBuffer) Write(p []byte) (int, error) {
	if remaining := b.cap - b.buf.Len(); remaining > 0 {
		if len(p) > remaining {
			b.buf.Write(p[:remaining])
		} else {
			b.buf.Write(p)
		}
	}
	return len(p), nil
}

func (b *cappedBuffer) String() string {
	return b.buf.String()
}

// RealRunner executes actual host commands.
type RealRunner struct{}

// NewRealRunner creates a new RealRunner.
func NewRealRunner() *RealRunner {
	return &RealRunner{}
}

// Run executes a command and returns the result.
func (r *RealRunner) Run(ctx context.Context, command string, args ...string) (ports.CommandResult, error) {
	return r.RunEnv(ctx, nil, command, args...)
}

// RunEnv executes a command with additional environment variables.
// exec.CommandContext kills the process when the context is cancelled or
// its deadline passes, so the caller's timeout bounds the child's lifetime.
func (r *RealRunner) RunEnv(ctx context.Context, env []string, command string, args ...string) (ports.CommandResult, error) {
	cmd := exec.CommandContext(ctx, command, args...)
	if len(env) > 0 {
		cmd.Env = append(os.Environ(), env...)
	}

	stdout := &cappedBuffer{cap: captureCap}
	stderr := &cappedBuffer{cap: captureCap}
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	err := cmd.Run()

	result := ports.CommandResult{
		ExitCode: 0,
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
	}

	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			result.ExitCode = exitErr.ExitCode()
			// Surface the timeout rather than the -1 exit of the killed child.
			if ctxErr := ctx.Err(); ctxErr != nil {
				return result, ctxErr
			}
			return result, nil
		}
		return result, err
	}

	return result, nil
}

// Ensure RealRunner implements ports.CommandRunner.
var _ ports.CommandRunner = (*RealRunner)(nil)
