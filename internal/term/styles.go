package term

import "github.com/charmbracelet/lipgloss"

var (
	colorBlue    = lipgloss.Color("#3b82f6")
	colorCyan    = lipgloss.Color("#22d3ee")
	colorYellow  = lipgloss.Color("#eab308")
	colorRed     = lipgloss.Color("#ef4444")
	colorGreen   = lipgloss.Color("#22c55e")
	colorDim     = lipgloss.Color("#6b7280")

	titleStyle = lipgloss.NewStyle().
			Foreground(colorBlue).
			Bold(true)

	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorBlue).
			Padding(1, 2)

	headerStyle = lipgloss.NewStyle().
			Foreground(colorBlue).
			Bold(true)

	pathStyle = lipgloss.NewStyle().
			Foreground(colorCyan)

	dimStyle = lipgloss.NewStyle().
			Foreground(colorDim)

	reasoningStyle = lipgloss.NewStyle().
			Foreground(colorDim).
			Italic(true)

	noticeStyle = lipgloss.NewStyle().
			Foreground(colorYellow)

	errorStyle = lipgloss.NewStyle().
			Foreground(colorRed).
			Bold(true)

	okStyle = lipgloss.NewStyle().
		Foreground(colorGreen).
		Bold(true)

	promptStyle = lipgloss.NewStyle().
			Foreground(colorBlue).
			Bold(true)

	diffCellStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder()).
			BorderForeground(colorBlue).
			Padding(0, 1)

	diffOldStyle = diffCellStyle.
			Foreground(colorRed)

	diffNewStyle = diffCellStyle.
			Foreground(colorGreen)
)
