package domain

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// Minutes from midnight. Routing works on a single service day.
const (
	StartOfDayMinutes = 8 * 60
	minutesPerDay     = 24 * 60
)

var clockLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"15:04:05",
	"15:04",
}

// ParseClock parses a time-of-day and returns it as minutes from midnight.
// Only the hour and minute are kept. An empty value is midnight.
func ParseClock(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}

	for _, layout := range clockLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return t.Hour()*60 + t.Minute(), nil
		}
	}

	return 0, fmt.Errorf("parse clock %q: %w", s, ErrMalformedLocation)
}

// FormatClock renders minutes from midnight as HH:MM:SS, wrapping past midnight.
func FormatClock(minutes float64) string {
	total := int(math.Floor(minutes * 60))
	total %= minutesPerDay * 60
	if total < 0 {
		total += minutesPerDay * 60
	}

	return fmt.Sprintf("%02d:%02d:%02d", total/3600, (total/60)%60, total%60)
}
