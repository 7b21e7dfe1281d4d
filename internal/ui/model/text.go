package model

import "time"

// TruncateString cuts s to limit characters and appends an ellipsis when it
// was longer. The cut always lands on a rune boundary.
func TruncateString(s string, limit int) string {
	if limit < 0 {
		limit = 0
	}
	n := 0
	for i := range s {
		if n == limit {
			return s[:i] + "..."
		}
		n++
	}
	return s
}

const (
	scheduleDateTime = "Jan 2, 2006 3:04 PM"
	scheduleTime     = "3:04 PM"
)

// Schedule renders the event window for display. Events ending on the day they
// start only repeat the end time.
func (e Event) Schedule(loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}
	start := e.Start.In(loc)
	end := e.End.In(loc)
	sy, sm, sd := start.Date()
	ey, em, ed := end.Date()
	if sy == ey && sm == em && sd == ed {
		return start.Format(scheduleDateTime) + " - " + end.Format(scheduleTime)
	}
	return start.Format(scheduleDateTime) + " - " + end.Format(scheduleDateTime)
}
