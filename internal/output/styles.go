package output

import "github.com/charmbracelet/lipgloss"

var (
	accentColor  = lipgloss.Color("#4ECDC4")
	warningColor = lipgloss.Color("#FFE66D")
	errorColor   = lipgloss.Color("#FF6B6B")
	subtleColor  = lipgloss.Color("#666666")

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(accentColor)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			BorderStyle(lipgloss.NormalBorder()).
			BorderBottom(true).
			BorderForeground(subtleColor)

	cellStyle = lipgloss.NewStyle().
			PaddingRight(2)

	subtleStyle  = lipgloss.NewStyle().Foreground(subtleColor)
	warningStyle = lipgloss.NewStyle().Foreground(warningColor)
	errorStyle   = lipgloss.NewStyle().Foreground(errorColor)

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(subtleColor).
			Padding(0, 1)
)

// emptyPattern is how the empty pattern is shown in reports.
const emptyPattern = `""`

func displayPattern(p string) string {
	if p == "" {
		return subtleStyle.Render(emptyPattern)
	}
	return p
}
