package tui

import "github.com/charmbracelet/lipgloss"

type styles struct {
	title       lipgloss.Style
	description lipgloss.Style
	meta        lipgloss.Style
	markText    func(string) string
	cursor      lipgloss.Style
	status      lipgloss.Style
	failure     lipgloss.Style
	empty       lipgloss.Style
}

func defaultStyles() styles {
	return styles{
		title:       lipgloss.NewStyle().Bold(true),
		description: lipgloss.NewStyle().Faint(true),
		meta:        lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
		markText:    MarkText,
		cursor:      lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12")),
		status:      lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
		failure:     lipgloss.NewStyle().Foreground(lipgloss.Color("9")),
		empty:       lipgloss.NewStyle().Italic(true).Faint(true),
	}
}

// markStyle is the style of highlighted query matches.
func markStyle() lipgloss.Style {
	return lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("0")).Background(lipgloss.Color("11"))
}

// MarkText renders text in the match highlight style. Its signature fits output.Options.Mark.
func MarkText(text string) string {
	return markStyle().Render(text)
}
