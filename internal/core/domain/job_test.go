package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestStatus_Valid(t *testing.T) {
	for _, s := range []Status{StatusQueued, StatusRunning, StatusCompleted, StatusFailed, StatusCancelled} {
		assert.True(t, s.Valid(), "%s", s)
	}
	assert.False(t, Status("paused").Valid())
	assert.False(t, Status("").Valid())
}

func TestStatus_Terminal(t *testing.T) {
	assert.False(t, StatusQueued.Terminal())
	assert.False(t, StatusRunning.Terminal())
	assert.True(t, StatusCompleted.Terminal())
	assert.True(t, StatusFailed.Terminal())
	assert.True(t, StatusCancelled.Terminal())
}

func TestTimestamp_FixedWidthUTC(t *testing.T) {
	local := time.Date(2026, 8, 30, 12, 30, 45, 0, time.FixedZone("CEST", 2*3600))
	got := Timestamp(local)
	assert.Equal(t, "2026-08-30T10:30:45Z", got)

	// Lexicographic order on the rendered form must match time order.
	later := Timestamp(local.Add(time.Second))
	assert.Less(t, got, later)
}
