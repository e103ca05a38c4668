// Package level defines the proficiency classes predicted for a learner.
package level

import "fmt"

// Level is a proficiency class. The numeric value is the class index used
// by the classifier, so the order here must not change.
type Level int

const (
	Beginner Level = iota
	Intermediate
	Advanced
)

// Count is the number of proficiency classes.
const Count = 3

// All returns every level in class-index order.
func All() []Level {
	return []Level{Beginner, Intermediate, Advanced}
}

func (l Level) String() string {
	switch l {
	case Beginner:
		return "Beginner"
	case Intermediate:
		return "Intermediate"
	case Advanced:
		return "Advanced"
	default:
		return fmt.Sprintf("Level(%d)", int(l))
	}
}

// Valid reports whether l is one of the defined classes.
func (l Level) Valid() bool {
	return l >= Beginner && l <= Advanced
}

// Parse returns the Level whose name is s.
func Parse(s string) (Level, error) {
	for _, l := range All() {
		if l.String() == s {
			return l, nil
		}
	}
	return 0, fmt.Errorf("unknown level %q", s)
}
