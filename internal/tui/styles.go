package tui

import "github.com/charmbracelet/lipgloss"

// Color palette.
var (
	colorRed       = lipgloss.Color("#ff5555")
	colorGreen     = lipgloss.Color("#50fa7b")
	colorYellow    = lipgloss.Color("#f1fa8c")
	colorBlue      = lipgloss.Color("#8be9fd")
	colorPurple    = lipgloss.Color("#bd93f9")
	colorDim       = lipgloss.Color("#6272a4")
	colorBgLight   = lipgloss.Color("#343746")
	colorFg        = lipgloss.Color("#f8f8f2")
	colorBorder    = lipgloss.Color("#44475a")
	colorHighlight = lipgloss.Color("#44475a")
)

// Style definitions.
var (
	// File list styles
	fileListStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorBorder).
			Padding(0, 1)

	fileItemStyle = lipgloss.NewStyle().
			Foreground(colorFg)

	fileItemSelectedStyle = lipgloss.NewStyle().
				Foreground(colorFg).
				Background(colorHighlight).
				Bold(true)

	fileItemDoneStyle = lipgloss.NewStyle().
				Foreground(colorGreen)

	// Hunk view styles
	hunkViewStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorBorder).
			Padding(0, 1)

	lineNumberStyle = lipgloss.NewStyle().
			Foreground(colorDim).
			Width(4).
			Align(lipgloss.Right)

	addedLineStyle = lipgloss.NewStyle().
			Foreground(colorGreen)

	deletedLineStyle = lipgloss.NewStyle().
				Foreground(colorRed)

	contextLineStyle = lipgloss.NewStyle().
				Foreground(colorFg)

	hunkHeaderStyle = lipgloss.NewStyle().
			Foreground(colorPurple).
			Bold(true)

	hunkHeaderSelectedStyle = lipgloss.NewStyle().
				Foreground(colorPurple).
				Background(colorHighlight).
				Bold(true)

	fileHeaderStyle = lipgloss.NewStyle().
			Foreground(colorBlue).
			Bold(true).
			Padding(0, 0, 1, 0)

	// Status badges
	badgeApprovedStyle = lipgloss.NewStyle().
				Foreground(colorGreen).
				Bold(true)

	badgeRejectedStyle = lipgloss.NewStyle().
				Foreground(colorRed).
				Bold(true)

	badgeTrustedStyle = lipgloss.NewStyle().
				Foreground(colorBlue)

	badgeDeferredStyle = lipgloss.NewStyle().
				Foreground(colorYellow)

	badgePendingStyle = lipgloss.NewStyle().
				Foreground(colorDim)

	labelStyle = lipgloss.NewStyle().
			Foreground(colorYellow)

	// Guide panel styles
	guideViewStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorBorder).
			Padding(0, 1)

	guideHeaderStyle = lipgloss.NewStyle().
				Foreground(colorPurple).
				Bold(true).
				Padding(0, 0, 1, 0)

	guideActiveStyle = lipgloss.NewStyle().
				Foreground(colorFg).
				Background(colorHighlight).
				Bold(true)

	guidePhaseStyle = lipgloss.NewStyle().
			Foreground(colorDim).
			Bold(true)

	// Status bar
	statusBarStyle = lipgloss.NewStyle().
			Foreground(colorFg).
			Background(colorBgLight).
			Padding(0, 1)

	// Help bar
	helpBarStyle = lipgloss.NewStyle().
			Foreground(colorDim)

	helpKeyStyle = lipgloss.NewStyle().
			Foreground(colorYellow)
)
