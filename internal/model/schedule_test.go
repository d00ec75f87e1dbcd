package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestWeeklyScheduleWindow(t *testing.T) {
	ws := WeeklySchedule{
		time.Monday:  {Weekday: time.Monday, StartTime: "09:00", EndTime: "17:00"},
		time.Tuesday: {Weekday: time.Tuesday, StartTime: "09:00", EndTime: "13:00", Closed: true},
	}

	start, end, ok := ws.Window(time.Monday)
	assert.True(t, ok)
	assert.Equal(t, "09:00", start)
	assert.Equal(t, "17:00", end)

	// Closed day and unconfigured day both read as unavailable.
	_, _, ok = ws.Window(time.Tuesday)
	assert.False(t, ok)
	_, _, ok = ws.Window(time.Sunday)
	assert.False(t, ok)
}

func TestDay(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	assert.NoError(t, err)

	ts := time.Date(2026, 3, 2, 23, 45, 12, 999, loc)
	day := Day(ts)

	assert.Equal(t, time.Date(2026, 3, 2, 0, 0, 0, 0, loc), day)
	assert.Equal(t, day, Day(day))
}
