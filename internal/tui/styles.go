package tui

import "github.com/charmbracelet/lipgloss"

var (
	appStyle        = lipgloss.NewStyle().Padding(1, 2)
	titleStyle      = lipgloss.NewStyle().Bold(true)
	helpStyle       = lipgloss.NewStyle().Faint(true)
	errorStyle      = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))
	noticeStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	overlayBoxStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(1, 2)

	stateStyles = map[string]lipgloss.Style{
		"active":           lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10")),
		"initializing":     lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("11")),
		"recreating":       lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("11")),
		"disconnecting":    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9")),
		"cleaning_session": lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9")),
	}
)

func stateStyle(state string) lipgloss.Style {
	if s, ok := stateStyles[state]; ok {
		return s
	}
	return titleStyle
}
