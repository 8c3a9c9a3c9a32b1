package dashboard

import "github.com/charmbracelet/lipgloss"

type styles struct {
	title    lipgloss.Style
	subtitle lipgloss.Style
	label    lipgloss.Style
	value    lipgloss.Style
	ok       lipgloss.Style
	fail     lipgloss.Style
	faint    lipgloss.Style
	keyHint  lipgloss.Style
	disabled lipgloss.Style
	section  lipgloss.Style
}

func newStyles() styles {
	return styles{
		title:    lipgloss.NewStyle().Bold(true),
		subtitle: lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		label:    lipgloss.NewStyle().Foreground(lipgloss.Color("250")),
		value:    lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
		ok:       lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("42")),
		fail:     lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("203")),
		faint:    lipgloss.NewStyle().Faint(true),
		keyHint:  lipgloss.NewStyle().Foreground(lipgloss.Color("39")),
		disabled: lipgloss.NewStyle().Foreground(lipgloss.Color("238")),
		section:  lipgloss.NewStyle().MarginTop(1),
	}
}
