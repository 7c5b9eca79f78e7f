package form

import "github.com/charmbracelet/lipgloss"

type styles struct {
	title          lipgloss.Style
	label          lipgloss.Style
	value          lipgloss.Style
	muted          lipgloss.Style
	focused        lipgloss.Style
	button         lipgloss.Style
	buttonFocused  lipgloss.Style
	buttonDisabled lipgloss.Style
	status         lipgloss.Style
	statusOK       lipgloss.Style
	statusWarn     lipgloss.Style
	frame          lipgloss.Style
	frameFocused   lipgloss.Style
	frameTitle     lipgloss.Style
	modal          lipgloss.Style
	modalTitle     lipgloss.Style
	help           lipgloss.Style
}

func newStyles() styles {
	return styles{
		title:          lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39")),
		label:          lipgloss.NewStyle().Foreground(lipgloss.Color("250")).Width(22),
		value:          lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
		muted:          lipgloss.NewStyle().Faint(true),
		focused:        lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("159")),
		button:         lipgloss.NewStyle().Padding(0, 1).Foreground(lipgloss.Color("252")).Background(lipgloss.Color("238")),
		buttonFocused:  lipgloss.NewStyle().Padding(0, 1).Bold(true).Foreground(lipgloss.Color("16")).Background(lipgloss.Color("159")),
		buttonDisabled: lipgloss.NewStyle().Padding(0, 1).Faint(true).Background(lipgloss.Color("236")),
		status:         lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
		statusOK:       lipgloss.NewStyle().Foreground(lipgloss.Color("78")),
		statusWarn:     lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("203")),
		frame:          lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("240")),
		frameFocused:   lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("159")),
		frameTitle:     lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
		modal:          lipgloss.NewStyle().Border(lipgloss.DoubleBorder()).BorderForeground(lipgloss.Color("203")).Padding(1, 2),
		modalTitle:     lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("203")),
		help:           lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
	}
}
