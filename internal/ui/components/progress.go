package components

import (
	"fmt"
	"image/color"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/pses/internal/ui/theme"
)

// ProbabilityBar displays a probability as a horizontal bar.
type ProbabilityBar struct {
	Label      string
	LabelWidth int
	Value      float64
	Width      int
	Fill       color.Color
}

// NewProbabilityBar creates a bar filled in the secondary color.
func NewProbabilityBar(label string, value float64, width int) ProbabilityBar {
	return ProbabilityBar{
		Label: label,
		Value: value,
		Width: width,
		Fill:  theme.Secondary,
	}
}

// View renders the bar followed by the value as a percentage.
func (p ProbabilityBar) View() string {
	var result string

	if p.Label != "" {
		label := p.Label
		if pad := p.LabelWidth - lipgloss.Width(label); pad > 0 {
			label += strings.Repeat(" ", pad)
		}
		result += theme.Label.Render(label) + "  "
	}

	barWidth := p.Width - lipgloss.Width(result) - 8
	if barWidth < 4 {
		barWidth = 4
	}

	filled := int(float64(barWidth) * p.Value)
	if filled > barWidth {
		filled = barWidth
	}
	if filled < 0 {
		filled = 0
	}
	empty := barWidth - filled

	fill := p.Fill
	if fill == nil {
		fill = theme.Secondary
	}
	result += lipgloss.NewStyle().Background(fill).Render(strings.Repeat(" ", filled))
	result += lipgloss.NewStyle().Background(theme.Border).Render(strings.Repeat(" ", empty))
	result += theme.Hint.Render(fmt.Sprintf("  %5.1f%%", p.Value*100))

	return result
}
