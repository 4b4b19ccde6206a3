package timeparsing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Fixed reference time: Wednesday, January 15, 2025, 10:00:00 AM
var refNow = time.Date(2025, 1, 15, 10, 0, 0, 0, time.UTC)

func TestParseCompactDuration(t *testing.T) {
	tests := []struct {
		input string
		want  time.Time
	}{
		{"+6h", refNow.Add(6 * time.Hour)},
		{"-1d", refNow.AddDate(0, 0, -1)},
		{"+2w", refNow.AddDate(0, 0, 14)},
		{"3m", refNow.AddDate(0, 3, 0)},
		{"1y", refNow.AddDate(1, 0, 0)},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseCompactDuration(tt.input, refNow)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := ParseCompactDuration("tomorrow", refNow)
	assert.Error(t, err)
	assert.False(t, IsCompactDuration("6 hours"))
}

func TestParseAbsolute(t *testing.T) {
	got, err := ParseAbsolute("2025-02-01", refNow)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC), got)

	got, err = ParseAbsolute("2025-02-01T08:30:00Z", refNow)
	require.NoError(t, err)
	assert.Equal(t, 8, got.Hour())

	_, err = ParseAbsolute("02/01/2025", refNow)
	assert.Error(t, err)
}

func TestParseRelativeTime(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantDay int
		wantErr bool
	}{
		{name: "compact", input: "+1d", wantDay: 16},
		{name: "absolute", input: "2025-01-20", wantDay: 20},
		{name: "tomorrow", input: "tomorrow", wantDay: 16},
		{name: "mixed case", input: "Tomorrow", wantDay: 16},
		{name: "next monday", input: "next monday", wantDay: 20},
		{name: "blank", input: "  ", wantErr: true},
		{name: "gibberish", input: "qwerty uiop", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseRelativeTime(tt.input, refNow)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, time.January, got.Month())
			assert.Equal(t, tt.wantDay, got.Day())
		})
	}
}

func TestParseRelativeTimeEmpty(t *testing.T) {
	_, err := ParseRelativeTime("", refNow)
	assert.ErrorIs(t, err, ErrEmpty)
}

func TestParseDateTruncates(t *testing.T) {
	got, err := ParseDate("+6h", refNow)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC), got)
}

func TestNormalizeClock(t *testing.T) {
	tests := []struct {
		input   string
		want    string
		wantErr bool
	}{
		{"9:30", "09:30", false},
		{"17:05", "17:05", false},
		{" 00:00 ", "00:00", false},
		{"24:00", "", true},
		{"5pm", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := NormalizeClock(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
