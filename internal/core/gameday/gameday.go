// Package gameday contains calendar arithmetic in the reference timezone.
// All day-boundary decisions of the engine go through here so that the
// scheduler and the regeneration guards agree on what "a day" is.
package gameday

import "time"

// Start returns midnight of t's calendar day in loc.
func Start(t time.Time, loc *time.Location) time.Time {
	lt := t.In(loc)
	return time.Date(lt.Year(), lt.Month(), lt.Day(), 0, 0, 0, 0, loc)
}

// Key returns the calendar date of t in loc formatted as YYYY-MM-DD.
func Key(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(time.DateOnly)
}

// DaysBetween returns the number of calendar-day boundaries crossed going
// from a to b in loc. Times on the same date yield 0; negative when b is
// before a. Computed on dates, so DST shifts never produce fractional days.
func DaysBetween(a, b time.Time, loc *time.Location) int {
	ay, am, ad := a.In(loc).Date()
	by, bm, bd := b.In(loc).Date()
	da := time.Date(ay, am, ad, 0, 0, 0, 0, time.UTC)
	db := time.Date(by, bm, bd, 0, 0, 0, 0, time.UTC)
	return int(db.Sub(da).Hours() / 24)
}

// AddDaysAtHour returns the instant `days` calendar days after t in loc,
// at t's hour with minutes, seconds and nanoseconds zeroed.
func AddDaysAtHour(t time.Time, days int, loc *time.Location) time.Time {
	lt := t.In(loc)
	return time.Date(lt.Year(), lt.Month(), lt.Day()+days, lt.Hour(), 0, 0, 0, loc)
}

// NextAt returns the first instant strictly after t at hour:minute in loc.
func NextAt(t time.Time, hour, minute int, loc *time.Location) time.Time {
	lt := t.In(loc)
	next := time.Date(lt.Year(), lt.Month(), lt.Day(), hour, minute, 0, 0, loc)
	if !next.After(lt) {
		next = time.Date(lt.Year(), lt.Month(), lt.Day()+1, hour, minute, 0, 0, loc)
	}
	return next
}
