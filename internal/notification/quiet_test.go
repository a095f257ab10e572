package notification

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clock(hour, min int) time.Time {
	return time.Date(2024, 1, 8, hour, min, 0, 0, time.UTC)
}

func TestQuietWindowContains(t *testing.T) {
	tests := []struct {
		name   string
		start  string
		end    string
		at     time.Time
		inside bool
	}{
		{"same-day window, inside", "13:00", "15:00", clock(14, 0), true},
		{"same-day window, at start", "13:00", "15:00", clock(13, 0), true},
		{"same-day window, at end is outside", "13:00", "15:00", clock(15, 0), false},
		{"same-day window, before", "13:00", "15:00", clock(12, 59), false},
		{"midnight wrap, late evening", "22:00", "07:00", clock(23, 30), true},
		{"midnight wrap, early morning", "22:00", "07:00", clock(6, 59), true},
		{"midnight wrap, midday", "22:00", "07:00", clock(12, 0), false},
		{"midnight wrap, at end is outside", "22:00", "07:00", clock(7, 0), false},
		{"equal start and end is empty", "09:00", "09:00", clock(9, 0), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, err := ParseQuietWindow(tt.start, tt.end)
			require.NoError(t, err)
			assert.Equal(t, tt.inside, w.Contains(tt.at))
		})
	}
}

func TestParseQuietWindowRejectsGarbage(t *testing.T) {
	tests := []struct {
		name  string
		start string
		end   string
	}{
		{"hour out of range", "25:00", "07:00"},
		{"not a clock time", "22:00", "nope"},
		{"trailing garbage after minutes", "22:0x", "07:00"},
		{"garbage with leading digits", "2:0ab", "07:00"},
		{"minute out of range", "22:61", "07:00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseQuietWindow(tt.start, tt.end)
			assert.Error(t, err)
		})
	}
}
