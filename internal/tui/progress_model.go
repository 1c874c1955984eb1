package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/hoistlabs/hoist/internal/domain/execution"
	"github.com/hoistlabs/hoist/internal/domain/step"
)

// ProgressMsg carries one executor progress event into the view.
type ProgressMsg execution.ProgressEvent

// RunDoneMsg is sent when the executor returns.
type RunDoneMsg struct {
	Err error
}

// applyModel is the Bubble Tea model for the live provisioning view.
type applyModel struct {
	styles    Styles
	spin      spinner.Model
	total     int
	finished  int
	failed    int
	current   string
	lines     []string
	done      bool
	cancelled bool
}

func newApplyModel(total int) applyModel {
	styles := DefaultStyles()
	spin := spinner.New()
	spin.Spinner = spinner.Dot
	spin.Style = styles.Spinner

	return applyModel{
		styles: styles,
		spin:   spin,
		total:  total,
	}
}

// Init starts the spinner.
func (m applyModel) Init() tea.Cmd {
	return m.spin.Tick
}

// Update handles messages.
func (m applyModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			m.cancelled = true
			return m, tea.Quit
		}

	case ProgressMsg:
		if msg.Started {
			m.current = msg.StepID.String()
			return m, nil
		}
		m.current = ""
		m.finished++
		status := msg.Result.Status()
		if status == step.StatusFailed {
			m.failed++
		}
		line := fmt.Sprintf("  %s %s", m.styles.RenderStatus(status), msg.Result.StepID())
		if status == step.StatusSkipped {
			line += m.styles.Muted.Render(" (" + string(msg.Result.SkipReason()) + ")")
		}
		m.lines = append(m.lines, line)
		return m, nil

	case RunDoneMsg:
		m.done = true
		return m, tea.Quit

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd
	}

	return m, nil
}

// View renders the view.
func (m applyModel) View() string {
	var b strings.Builder

	b.WriteString(m.styles.Title.Render("Provisioning"))
	b.WriteString("\n")

	for _, line := range m.lines {
		b.WriteString(line)
		b.WriteString("\n")
	}

	if m.current != "" && !m.done {
		b.WriteString(fmt.Sprintf("  %s %s\n", m.spin.View(), m.current))
	}

	progress := fmt.Sprintf("%d/%d steps", m.finished, m.total)
	if m.failed > 0 {
		progress += fmt.Sprintf(" (%d failed)", m.failed)
	}
	b.WriteString(m.styles.Muted.Render(progress))
	b.WriteString("\n")

	return b.String()
}

// Cancelled reports whether the operator interrupted the view.
func (m applyModel) Cancelled() bool {
	return m.cancelled
}

// ApplyProgram runs the live provisioning view while the executor works in
// the caller's goroutine. Events flow in through Observer; Done ends the
// view.
type ApplyProgram struct {
	program *tea.Program
}

// NewApplyProgram creates the program for a plan of the given size.
func NewApplyProgram(total int) *ApplyProgram {
	return &ApplyProgram{
		program: tea.NewProgram(newApplyModel(total)),
	}
}

// Observer returns the executor progress callback feeding this view.
func (p *ApplyProgram) Observer() func(execution.ProgressEvent) {
	return func(event execution.ProgressEvent) {
		p.program.Send(ProgressMsg(event))
	}
}

// Done tells the view the run has finished.
func (p *ApplyProgram) Done(err error) {
	p.program.Send(RunDoneMsg{Err: err})
}

// Run blocks until the view exits and reports whether the operator
// cancelled it.
func (p *ApplyProgram) Run() (bool, error) {
	model, err := p.program.Run()
	if err != nil {
		return false, err
	}
	if m, ok := model.(applyModel); ok {
		return m.Cancelled(), nil
	}
	return false, nil
}
