package render

import (
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Styles holds the lipgloss styles used in text mode.
type Styles struct {
	Header1 lipgloss.Style
	Header2 lipgloss.Style
	Bold    lipgloss.Style
	Muted   lipgloss.Style
	Success lipgloss.Style
	Error   lipgloss.Style
	Warning lipgloss.Style
	Info    lipgloss.Style

	// proof listings
	Number lipgloss.Style
	Bar    lipgloss.Style
	Rule   lipgloss.Style
}

// newStyles binds styles to out. Without a terminal every style renders
// plain text.
func newStyles(out io.Writer, color bool) *Styles {
	lr := lipgloss.NewRenderer(out)
	if color {
		lr.SetColorProfile(termenv.ANSI256)
	} else {
		lr.SetColorProfile(termenv.Ascii)
	}

	return &Styles{
		Header1: lr.NewStyle().Bold(true).Foreground(lipgloss.Color("12")),
		Header2: lr.NewStyle().Bold(true).Foreground(lipgloss.Color("14")),
		Bold:    lr.NewStyle().Bold(true),
		Muted:   lr.NewStyle().Foreground(lipgloss.Color("8")),
		Success: lr.NewStyle().Foreground(lipgloss.Color("10")),
		Error:   lr.NewStyle().Bold(true).Foreground(lipgloss.Color("9")),
		Warning: lr.NewStyle().Foreground(lipgloss.Color("11")),
		Info:    lr.NewStyle().Foreground(lipgloss.Color("12")),
		Number:  lr.NewStyle().Foreground(lipgloss.Color("8")),
		Bar:     lr.NewStyle().Foreground(lipgloss.Color("6")),
		Rule:    lr.NewStyle().Italic(true).Foreground(lipgloss.Color("13")),
	}
}
