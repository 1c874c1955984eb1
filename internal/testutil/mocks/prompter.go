package mocks

import (
	"fmt"
	"sync"

	"github.com/hoistlabs/hoist/internal/ports"
)

// Prompter is a test double for ports.Prompter that replays scripted
// answers in order.
type Prompter struct {
	mu      sync.Mutex
	answers []string
	prompts []string
}

// NewPrompter creates a Prompter that returns the given answers in order.
func NewPrompter(answers ...string) *Prompter {
	return &Prompter{answers: answers}
}

// ReadLine returns the next scripted answer.
func (p *Prompter) ReadLine(prompt string) (string, error) {
	return p.next(prompt)
}

// ReadSecret returns the next scripted answer.
func (p *Prompter) ReadSecret(prompt string) (string, error) {
	return p.next(prompt)
}

// Prompts returns the prompts shown so far, in order.
func (p *Prompter) Prompts() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.prompts))
	copy(out, p.prompts)
	return out
}

func (p *Prompter) next(prompt string) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.prompts = append(p.prompts, prompt)
	if len(p.answers) == 0 {
		return "", fmt.Errorf("no scripted answer for prompt %q", prompt)
	}
	answer := p.answers[0]
	p.answers = p.answers[1:]
	return answer, nil
}

// Ensure Prompter implements ports.Prompter.
var _ ports.Prompter = (*Prompter)(nil)
