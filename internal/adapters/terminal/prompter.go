// Package terminal provides an interactive prompter backed by the
// controlling terminal.
package terminal

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/hoistlabs/hoist/internal/ports"
)

// Prompter reads operator input from a terminal. Secret input is read
// without echo when stdin is a real terminal; otherwise it falls back to
// a plain line read so scripted runs keep working.
type Prompter struct {
	in     *os.File
	out    io.Writer
	reader *bufio.Reader
}

// NewPrompter creates a Prompter reading from stdin and writing prompts
// to stderr, keeping stdout clean for reports.
func NewPrompter() *Prompter {
	return &Prompter{
		in:     os.Stdin,
		out:    os.Stderr,
		reader: bufio.NewReader(os.Stdin),
	}
}

// ReadLine displays the prompt and returns one trimmed line of input.
func (p *Prompter) ReadLine(prompt string) (string, error) {
	_, _ = fmt.Fprint(p.out, prompt)
	line, err := p.reader.ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// ReadSecret displays the prompt and reads input without echoing.
func (p *Prompter) ReadSecret(prompt string) (string, error) {
	_, _ = fmt.Fprint(p.out, prompt)

	fd := int(p.in.Fd())
	if !term.IsTerminal(fd) {
		line, err := p.reader.ReadString('\n')
		if err != nil && line == "" {
			return "", err
		}
		return strings.TrimSpace(line), nil
	}

	raw, err := term.ReadPassword(fd)
	_, _ = fmt.Fprintln(p.out)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(raw)), nil
}

// Ensure Prompter implements ports.Prompter.
var _ ports.Prompter = (*Prompter)(nil)
