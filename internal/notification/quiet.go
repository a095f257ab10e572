package notification

import (
	"fmt"
	"time"
)

// QuietWindow is a time-of-day window during which notifications are
// recorded but not delivered to any sink. A window whose start is after
// its end wraps past midnight.
type QuietWindow struct {
	startMin int // Minutes since midnight
	endMin   int
}

// ParseQuietWindow parses "HH:MM" start and end times.
func ParseQuietWindow(start, end string) (QuietWindow, error) {
	s, err := parseClock(start)
	if err != nil {
		return QuietWindow{}, fmt.Errorf("quiet start: %w", err)
	}
	e, err := parseClock(end)
	if err != nil {
		return QuietWindow{}, fmt.Errorf("quiet end: %w", err)
	}
	return QuietWindow{startMin: s, endMin: e}, nil
}

// Contains reports whether t's time-of-day falls inside the window.
// Equal start and end means an empty window, not a full day.
func (w QuietWindow) Contains(t time.Time) bool {
	if w.startMin == w.endMin {
		return false
	}
	min := t.Hour()*60 + t.Minute()
	if w.startMin < w.endMin {
		return min >= w.startMin && min < w.endMin
	}
	// Wraps midnight, e.g. 22:00-07:00.
	return min >= w.startMin || min < w.endMin
}

// parseClock rejects anything time.Parse does not fully consume, so
// trailing garbage like "22:0x" is an error rather than 22:00.
func parseClock(s string) (int, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, fmt.Errorf("invalid clock time %q", s)
	}
	return t.Hour()*60 + t.Minute(), nil
}
