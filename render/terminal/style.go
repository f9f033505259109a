package terminal

import "github.com/charmbracelet/lipgloss"

var (
	// Side colors: blue for the user, coral for the character.
	colorUser = lipgloss.AdaptiveColor{Light: "#1e88e5", Dark: "#90caf9"}
	colorChar = lipgloss.AdaptiveColor{Light: "#e53935", Dark: "#ff6b6b"}

	colorBright    = lipgloss.AdaptiveColor{Light: "#0f172a", Dark: "#f1f5f9"}
	colorDim       = lipgloss.AdaptiveColor{Light: "#94a3b8", Dark: "#64748b"}
	colorHighlight = lipgloss.AdaptiveColor{Light: "#b45309", Dark: "#ffeb3b"}
)

var (
	styleUserBadge = lipgloss.NewStyle().Foreground(colorUser).Bold(true)
	styleCharBadge = lipgloss.NewStyle().Foreground(colorChar).Bold(true)

	styleTitle = lipgloss.NewStyle().Foreground(colorChar).Bold(true)
	styleMeta  = lipgloss.NewStyle().Foreground(colorDim)

	styleStat      = lipgloss.NewStyle().Foreground(colorBright).Bold(true)
	styleStatLabel = lipgloss.NewStyle().Foreground(colorDim)

	styleUserBar = lipgloss.NewStyle().Foreground(colorUser)
	styleCharBar = lipgloss.NewStyle().Foreground(colorChar)

	styleTerm      = lipgloss.NewStyle().Foreground(colorBright)
	styleTermCount = lipgloss.NewStyle().Foreground(colorDim)
	styleHighlight = lipgloss.NewStyle().Foreground(colorHighlight).Bold(true)
	styleMemTitle  = lipgloss.NewStyle().Foreground(colorUser).Bold(true)

	styleSeparator = lipgloss.NewStyle().Foreground(colorDim)
)
