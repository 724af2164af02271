package render

import "github.com/charmbracelet/lipgloss"

// Color palette for the session screens
var (
	PrimaryColor  = lipgloss.Color("#7D56F4") // Purple - titles, borders
	SelectedColor = lipgloss.Color("#FFFFFF") // White - selected item text
	MutedColor    = lipgloss.Color("#626262") // Gray - hints, unselected
	WarningColor  = lipgloss.Color("#FFA500") // Orange - strikes, notices
	AccentColor   = lipgloss.Color("#43BF6D") // Green - logged-in marker
)

// Shared styles for the frame renderer
var (
	// TitleStyle is for the menu title line
	TitleStyle = lipgloss.NewStyle().
			Foreground(PrimaryColor).
			Bold(true)

	// SelectedItemStyle is the inverted bar on the selected menu item
	SelectedItemStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#000000")).
				Background(SelectedColor)

	// ItemStyle is for unselected menu items
	ItemStyle = lipgloss.NewStyle()

	// InputLabelStyle is for the text-entry prompt
	InputLabelStyle = lipgloss.NewStyle().
			Foreground(MutedColor)

	// InputEditingStyle marks the input line while it captures keys
	InputEditingStyle = lipgloss.NewStyle().
				Foreground(SelectedColor).
				Bold(true)

	// NoticeStyle is for the one-line status message
	NoticeStyle = lipgloss.NewStyle().
			Foreground(WarningColor)

	// FooterStyle is for the key-hint footer
	FooterStyle = lipgloss.NewStyle().
			Foreground(MutedColor)

	// AccountStyle is for the logged-in account line
	AccountStyle = lipgloss.NewStyle().
			Foreground(AccentColor)
)
