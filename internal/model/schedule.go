package model

import (
	"time"

	"github.com/google/uuid"
)

// DaySchedule is one weekday entry of a dentist's working-hours template.
// StartTime/EndTime use the "15:04" clock format; Closed marks the whole
// day unavailable regardless of the window.
type DaySchedule struct {
	ID        uuid.UUID    `db:"id" json:"id"`
	DentistID uuid.UUID    `db:"dentist_id" json:"dentist_id"`
	Weekday   time.Weekday `db:"weekday" json:"weekday"`
	StartTime string       `db:"start_time" json:"start_time"`
	EndTime   string       `db:"end_time" json:"end_time"`
	Closed    bool         `db:"closed" json:"closed"`
}

// WeeklySchedule maps weekday to its template entry. Absent weekdays are
// treated as closed.
type WeeklySchedule map[time.Weekday]*DaySchedule

// Window returns the open window for the given weekday, or ok=false when
// the day is closed or not configured.
func (ws WeeklySchedule) Window(day time.Weekday) (start, end string, ok bool) {
	ds, found := ws[day]
	if !found || ds.Closed {
		return "", "", false
	}
	return ds.StartTime, ds.EndTime, true
}
