package domain

import (
	"fmt"
	"strings"
)

// PriorityMode selects the order scoring strategy for a planning run.
type PriorityMode int

const (
	PriorityBalance PriorityMode = iota
	PriorityDistance
	PriorityLoad
	PriorityEmission
)

var priorityModeNames = map[PriorityMode]string{
	PriorityBalance:  "balance",
	PriorityDistance: "distance",
	PriorityLoad:     "load",
	PriorityEmission: "emission",
}

func (m PriorityMode) String() string {
	if s, ok := priorityModeNames[m]; ok {
		return s
	}
	return fmt.Sprintf("PriorityMode(%d)", int(m))
}

// ParsePriorityMode maps the request value onto a mode.
func ParsePriorityMode(s string) (PriorityMode, error) {
	norm := strings.ToLower(strings.TrimSpace(s))
	for m, name := range priorityModeNames {
		if name == norm {
			return m, nil
		}
	}

	return 0, fmt.Errorf("priority %q must be one of balance, distance, load, emission: %w", s, ErrInvalidRequest)
}
