package availability

import (
	"fmt"
	"time"

	"github.com/smilecare/scheduler-api/internal/model"
)

const clockLayout = "15:04"

// ComputeSlots partitions the weekday window for date into contiguous,
// non-overlapping slot tokens of the given duration, starting at the
// window's opening time. A closed or unconfigured weekday yields an empty
// sequence. A final partial slot that does not fit the window is dropped.
// Pure function of its inputs.
func ComputeSlots(schedule model.WeeklySchedule, date time.Time, duration time.Duration) []string {
	start, end, ok := schedule.Window(date.Weekday())
	if !ok {
		return nil
	}
	return partition(start, end, duration)
}

func partition(start, end string, duration time.Duration) []string {
	if duration <= 0 {
		return nil
	}

	open, err := time.Parse(clockLayout, start)
	if err != nil {
		return nil
	}
	close, err := time.Parse(clockLayout, end)
	if err != nil || !close.After(open) {
		return nil
	}

	var slots []string
	for cur := open; !cur.Add(duration).After(close); cur = cur.Add(duration) {
		slots = append(slots, formatToken(cur, cur.Add(duration)))
	}
	return slots
}

func formatToken(start, end time.Time) string {
	return fmt.Sprintf("%s-%s", start.Format(clockLayout), end.Format(clockLayout))
}
