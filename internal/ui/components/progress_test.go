package components

import (
	"strings"
	"testing"

	"charm.land/lipgloss/v2"
	"github.com/stretchr/testify/assert"
)

func TestProbabilityBarWidth(t *testing.T) {
	for _, v := range []float64{0, 0.37, 1, 1.5, -0.2} {
		bar := NewProbabilityBar("Beginner", v, 40)
		bar.LabelWidth = 12
		assert.Equal(t, 40, lipgloss.Width(bar.View()), "value %v", v)
	}
}

func TestProbabilityBarPercent(t *testing.T) {
	view := NewProbabilityBar("", 0.256, 30).View()
	assert.True(t, strings.HasSuffix(strings.TrimSpace(stripStyles(view)), "25.6%"))
}

func TestProbabilityBarMinimumWidth(t *testing.T) {
	bar := NewProbabilityBar("Intermediate", 0.5, 5)
	// Label, separator, 4-cell bar and the 8-cell percentage.
	assert.Equal(t, len("Intermediate")+2+4+8, lipgloss.Width(bar.View()))
}

// stripStyles drops ANSI escape sequences.
func stripStyles(s string) string {
	var b strings.Builder
	inEsc := false
	for _, r := range s {
		switch {
		case r == '\x1b':
			inEsc = true
		case inEsc && (r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z'):
			inEsc = false
		case !inEsc:
			b.WriteRune(r)
		}
	}
	return b.String()
}
