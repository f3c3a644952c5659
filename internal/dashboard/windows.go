package dashboard

import "time"

// Windows are the UTC reporting boundaries derived from one instant.
type Windows struct {
	Now        time.Time
	Today      time.Time
	WeekStart  time.Time
	MonthStart time.Time
}

// WindowsAt computes the windows for now: midnight today, the most recent
// Sunday at midnight, and the first of the month at midnight.
func WindowsAt(now time.Time) Windows {
	now = now.UTC()
	today := StartOfDay(now)
	return Windows{
		Now:        now,
		Today:      today,
		WeekStart:  today.AddDate(0, 0, -int(today.Weekday())),
		MonthStart: time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC),
	}
}

func StartOfDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
