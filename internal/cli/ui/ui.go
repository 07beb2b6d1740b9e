// Package ui holds the terminal styles shared by the commands
package ui

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
)

var (
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	keyStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("99")).Bold(true)
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("243"))
)

// Success prints a check-marked line
func Success(w io.Writer, format string, args ...any) {
	fmt.Fprintln(w, successStyle.Render("✓ "+fmt.Sprintf(format, args...)))
}

// Warn prints a warning line
func Warn(w io.Writer, format string, args ...any) {
	fmt.Fprintln(w, warnStyle.Render("⚠ "+fmt.Sprintf(format, args...)))
}

// Error prints a failure line
func Error(w io.Writer, format string, args ...any) {
	fmt.Fprintln(w, errorStyle.Render(fmt.Sprintf(format, args...)))
}

// Field prints an indented key/value pair
func Field(w io.Writer, key, value string) {
	fmt.Fprintf(w, "  %s %s\n", keyStyle.Render(key+":"), value)
}

// Muted prints a de-emphasised line
func Muted(w io.Writer, format string, args ...any) {
	fmt.Fprintln(w, mutedStyle.Render(fmt.Sprintf(format, args...)))
}
