package tui

import (
	"github.com/charmbracelet/lipgloss"
)

// Colors follow the game's nation-color palette: beige for the unaligned pool we recruit from.
var (
	colorBrand    = lipgloss.Color("#C8A165") // Beige
	colorBrandDim = lipgloss.Color("#7A6240")
	colorAccent   = lipgloss.Color("#4FA3D9") // Blue

	colorWarning = lipgloss.Color("#FF9933")
	colorError   = lipgloss.Color("#FF3366")
	colorSuccess = lipgloss.Color("#33CC66")
	colorMuted   = lipgloss.Color("#777788")

	colorBgPanel = lipgloss.Color("#141418")
)

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorBrand).
			MarginBottom(1)

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorBrand)

	menuStyle = lipgloss.NewStyle().
			Border(lipgloss.DoubleBorder()).
			BorderForeground(colorBrandDim).
			Padding(0, 1)

	menuItemStyle = lipgloss.NewStyle().
			Foreground(colorAccent).
			Padding(0, 1)

	menuItemSelectedStyle = lipgloss.NewStyle().
				Foreground(colorBgPanel).
				Background(colorBrand).
				Bold(true).
				Padding(0, 1)

	formStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorAccent).
			Padding(0, 1)

	labelStyle = lipgloss.NewStyle().
			Foreground(colorMuted)

	labelFocusedStyle = lipgloss.NewStyle().
				Foreground(colorBrand).
				Bold(true)

	inputPromptStyle = lipgloss.NewStyle().
				Foreground(colorBrand).
				Bold(true)

	statusOKStyle = lipgloss.NewStyle().
			Foreground(colorSuccess)

	statusWarnStyle = lipgloss.NewStyle().
			Foreground(colorWarning).
			Bold(true)

	statusErrorStyle = lipgloss.NewStyle().
				Foreground(colorError).
				Bold(true)

	helpKeyStyle = lipgloss.NewStyle().
			Foreground(colorAccent).
			Bold(true)

	helpDescStyle = lipgloss.NewStyle().
			Foreground(colorMuted)

	dimmedStyle = lipgloss.NewStyle().
			Foreground(colorMuted)
)
