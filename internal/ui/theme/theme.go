package theme

import (
	"image/color"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/pses/internal/level"
)

// Color palette
var (
	Primary   = lipgloss.Color("#8B5CF6") // Vivid Purple
	Secondary = lipgloss.Color("#14B8A6") // Teal
	Accent    = lipgloss.Color("#F97316") // Orange
	Success   = lipgloss.Color("#22C55E") // Green
	Error     = lipgloss.Color("#F43F5E") // Rose
	Text      = lipgloss.Color("#F8FAFC") // White
	TextDim   = lipgloss.Color("#94A3B8") // Slate
	Border    = lipgloss.Color("#334155") // Slate
)

// Typography
var (
	Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(Primary)

	Label = lipgloss.NewStyle().
		Foreground(TextDim)

	Body = lipgloss.NewStyle().
		Foreground(Text)

	Hint = lipgloss.NewStyle().
		Foreground(TextDim).
		Italic(true)

	Failure = lipgloss.NewStyle().
		Foreground(Error).
		Bold(true)
)

var Card = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(Border).
	Padding(0, 2)

// LevelColor returns the accent color for a proficiency level.
func LevelColor(l level.Level) color.Color {
	switch l {
	case level.Advanced:
		return Success
	case level.Intermediate:
		return Secondary
	default:
		return Accent
	}
}

// LevelBadge renders the level name in its accent color.
func LevelBadge(l level.Level) string {
	return lipgloss.NewStyle().
		Bold(true).
		Foreground(LevelColor(l)).
		Render(l.String())
}
