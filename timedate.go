package svcbot

import "fmt"

// DiffForHumans renders the distance between two Unix timestamps as a coarse
// "N unit(s) ago" phrase followed by the exact elapsed time in HH:MM:SS.
// The unit bucket is chosen from the absolute difference; the clock-style
// remainder keeps the sign of the raw difference. supervisord reports start,
// stop, and now as Unix seconds, so no sub-second resolution is needed.
func DiffForHumans(t1, t2 int64) string {
	diff := t2 - t1

	abs := diff
	if abs < 0 {
		abs = -abs
	}

	var unit string
	var value int64
	switch {
	case abs <= 59:
		unit, value = "second", abs
	case abs <= 3599:
		unit, value = "minute", abs/60
	case abs <= 86399:
		unit, value = "hour", abs/3600
	case abs <= 2591999:
		unit, value = "day", abs/86400
	case abs <= 31535999:
		unit, value = "month", abs/86400/30
	default:
		unit, value = "year", abs/86400/365
	}

	plural := "s"
	if value == 1 {
		plural = ""
	}

	hours := diff / 3600
	minutes := (diff / 60) % 60
	seconds := diff % 60

	return fmt.Sprintf("%d %s%s ago (%02d:%02d:%02d)", value, unit, plural, hours, minutes, seconds)
}
