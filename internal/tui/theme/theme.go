package theme

import "github.com/charmbracelet/lipgloss"

// Palette.
var (
	ColorPrimary   = lipgloss.Color("63")  // Purple
	ColorBorder    = lipgloss.Color("238") // Dark gray
	ColorMuted     = lipgloss.Color("245") // Light gray
	ColorHighlight = lipgloss.Color("229") // Yellow
	ColorSuccess   = lipgloss.Color("42")  // Green
	ColorWarning   = lipgloss.Color("214") // Orange
	ColorError     = lipgloss.Color("196") // Red
)

var (
	StyleTitle   = lipgloss.NewStyle().Foreground(ColorPrimary).Bold(true)
	StyleMuted   = lipgloss.NewStyle().Foreground(ColorMuted)
	StyleSuccess = lipgloss.NewStyle().Foreground(ColorSuccess)
	StyleWarning = lipgloss.NewStyle().Foreground(ColorWarning)
	StyleError   = lipgloss.NewStyle().Foreground(ColorError)

	// StylePaneTitle heads every pane.
	StylePaneTitle = StyleTitle.Padding(0, 1)

	// StyleSelected marks the list entry under the cursor.
	StyleSelected = lipgloss.NewStyle().Foreground(ColorHighlight).Bold(true)

	StyleStatusBar = lipgloss.NewStyle().
			Background(lipgloss.Color("236")).
			Foreground(lipgloss.Color("252")).
			Padding(0, 1)
)

// Pane frames a pane, with the accent border when it has focus.
func Pane(focused bool) lipgloss.Style {
	color := ColorBorder
	if focused {
		color = ColorPrimary
	}
	return lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(color)
}

// Dialog frames a modal box in the given accent color.
func Dialog(accent lipgloss.Color) lipgloss.Style {
	return lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(accent).
		Padding(1, 2)
}
