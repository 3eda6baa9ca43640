package bot

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEventTime_UTC(t *testing.T) {
	got, err := parseEventTime("2026-09-15", "18:30", "UTC")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 9, 15, 18, 30, 0, 0, time.UTC), got)
}

func TestParseEventTime_OffsetZones(t *testing.T) {
	// Etc/GMT zones use the POSIX sign convention: Etc/GMT-2 is UTC+2.
	got, err := parseEventTime("2026-09-15", "18:30", "Etc/GMT-2")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 9, 15, 16, 30, 0, 0, time.UTC), got)

	got, err = parseEventTime("2026-09-15", "18:30", "Etc/GMT+5")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 9, 15, 23, 30, 0, 0, time.UTC), got)
}

func TestParseEventTime_Invalid(t *testing.T) {
	_, err := parseEventTime("2026-09-15", "18:30", "Mars/Olympus")
	assert.Error(t, err)

	_, err = parseEventTime("15-09-2026", "18:30", "UTC")
	assert.Error(t, err)

	_, err = parseEventTime("2026-09-15", "6:30pm", "UTC")
	assert.Error(t, err)
}

func TestParseEventID(t *testing.T) {
	id, ok := parseEventID("42")
	assert.True(t, ok)
	assert.Equal(t, uint64(42), id)

	_, ok = parseEventID("not-a-number")
	assert.False(t, ok)

	_, ok = parseEventID("")
	assert.False(t, ok)
}

func TestTimeZoneChoices_MapToLoadableZones(t *testing.T) {
	for _, tz := range timeZones {
		_, err := time.LoadLocation(tz.Zone)
		assert.NoError(t, err, tz.Label)
	}
}
