package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/hoistlabs/hoist/internal/domain/step"
)

// StatusIcon returns the display icon for a recorded step status.
func StatusIcon(status step.Status) string {
	switch status {
	case step.StatusSucceeded:
		return "✓"
	case step.StatusFailed:
		return "✗"
	case step.StatusWarned:
		return "⚠"
	case step.StatusSkipped:
		return "-"
	case step.StatusAborted:
		return "⏭"
	default:
		return "○"
	}
}

// StatusStyle returns the style used to render a step status.
func (s Styles) StatusStyle(status step.Status) lipgloss.Style {
	switch status {
	case step.StatusSucceeded:
		return s.Success
	case step.StatusFailed:
		return s.Error
	case step.StatusWarned:
		return s.Warning
	default:
		return s.Muted
	}
}

// RenderStatus renders the icon for a status in its color.
func (s Styles) RenderStatus(status step.Status) string {
	return s.StatusStyle(status).Render(StatusIcon(status))
}
