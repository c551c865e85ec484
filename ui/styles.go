package ui

import "github.com/charmbracelet/lipgloss"

// Palette shared by the progress view and plain command output.
const (
	colorAccent  = lipgloss.Color("86")
	colorBanner  = lipgloss.Color("235")
	colorOK      = lipgloss.Color("46")
	colorFailed  = lipgloss.Color("196")
	colorWarning = lipgloss.Color("214")
	colorInfo    = lipgloss.Color("33")
	colorActive  = lipgloss.Color("39")
	colorMuted   = lipgloss.Color("245")
)

var (
	HeaderStyle = lipgloss.NewStyle().
			Foreground(colorAccent).
			Background(colorBanner).
			Bold(true).
			Padding(0, 2).
			MarginBottom(1)

	SuccessStyle = lipgloss.NewStyle().Foreground(colorOK).Bold(true)
	ErrorStyle   = lipgloss.NewStyle().Foreground(colorFailed).Bold(true)
	WarningStyle = lipgloss.NewStyle().Foreground(colorWarning)
	InfoStyle    = lipgloss.NewStyle().Foreground(colorInfo)

	// ExportingStyle marks the status line while assets are still being written
	ExportingStyle = lipgloss.NewStyle().Foreground(colorActive).Bold(true)

	// HelpStyle is used for key hints under the asset list
	HelpStyle = lipgloss.NewStyle().Foreground(colorMuted)
)
