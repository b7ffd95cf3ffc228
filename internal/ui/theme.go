package ui

import "github.com/charmbracelet/lipgloss"

// Theme is the color palette for the terminal client. ANSI 256-color
// codes keep it legible across terminals.
type Theme struct {
	NormalText lipgloss.Color
	FaintText  lipgloss.Color
	Accent     lipgloss.Color
	ErrorText  lipgloss.Color
	OKText     lipgloss.Color

	SelectedBackground lipgloss.Color
	SelectedForeground lipgloss.Color

	BorderColor lipgloss.Color
	HelpText    lipgloss.Color

	// OTP cells.
	CellBorder       lipgloss.Color
	CellActiveBorder lipgloss.Color
}

// DefaultTheme is the built-in dark-terminal scheme.
var DefaultTheme = Theme{
	NormalText: lipgloss.Color("252"),
	FaintText:  lipgloss.Color("243"),
	Accent:     lipgloss.Color("75"),
	ErrorText:  lipgloss.Color("203"),
	OKText:     lipgloss.Color("78"),

	SelectedBackground: lipgloss.Color("24"),
	SelectedForeground: lipgloss.Color("255"),

	BorderColor: lipgloss.Color("238"),
	HelpText:    lipgloss.Color("241"),

	CellBorder:       lipgloss.Color("240"),
	CellActiveBorder: lipgloss.Color("75"),
}
