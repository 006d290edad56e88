package engine

import "time"

// NextOccurrence returns the first time at or after now when the routine is
// scheduled. A routine with no recognizable days runs every day. Inactive
// routines and routines with an unreadable time have no next occurrence.
func NextOccurrence(rt Routine, now time.Time) (time.Time, bool) {
	if !rt.Active {
		return time.Time{}, false
	}
	clock, err := time.Parse("15:04", rt.Time)
	if err != nil {
		return time.Time{}, false
	}

	days := map[time.Weekday]bool{}
	for _, d := range rt.Days {
		if wd, ok := ParseWeekday(d); ok {
			days[wd] = true
		}
	}

	base := time.Date(now.Year(), now.Month(), now.Day(), clock.Hour(), clock.Minute(), 0, 0, now.Location())
	for i := 0; i < 8; i++ {
		at := base.AddDate(0, 0, i)
		if at.Before(now) {
			continue
		}
		if len(days) == 0 || days[at.Weekday()] {
			return at, true
		}
	}
	return time.Time{}, false
}
