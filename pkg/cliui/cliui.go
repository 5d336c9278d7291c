// Package cliui provides reusable terminal UI helpers (prompt styling,
// markdown rendering) for reel CLI commands.
package cliui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
)

var (
	SuccessMark = lipgloss.NewStyle().Foreground(lipgloss.Color("82")).Render("✓")
	FailMark    = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Render("✗")

	// DimStyle renders secondary detail like elapsed times.
	DimStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))

	// UserPromptStyle and AssistantPromptStyle render the speaker labels
	// in the chat loop.
	UserPromptStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("39")).Bold(true)
	AssistantPromptStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("212")).Bold(true)

	// ErrorStyle renders transport failures inline in the chat transcript.
	ErrorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
)

// Mark returns a ✓ for nil errors or ✗ for non-nil errors.
func Mark(err error) string {
	if err != nil {
		return FailMark
	}
	return SuccessMark
}

// FormatDuration formats a duration for display (e.g. "12ms" or "3.2s").
func FormatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	return fmt.Sprintf("%.1fs", d.Seconds())
}

// RenderMarkdown renders markdown content for terminal display using glamour.
func RenderMarkdown(content string) (string, error) {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(80),
	)
	if err != nil {
		return content, err
	}

	rendered, err := r.Render(content)
	if err != nil {
		return content, err
	}

	return rendered, nil
}
