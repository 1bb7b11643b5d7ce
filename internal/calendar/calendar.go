// Package calendar holds the date arithmetic behind the month view: month
// grid layout and calendar-day matching of medication events.
//
// Every operation is total. Where the arithmetic cannot produce a value the
// input is returned unchanged instead of an error.
package calendar

import (
	"time"
)

const (
	minMonthDays     = 28
	defaultMonthDays = 31
)

// Calendar fixes the two locale-dependent inputs of the layout: the time zone
// in which days are counted and the weekday shown in the first column.
type Calendar struct {
	Location     *time.Location
	FirstWeekday time.Weekday
}

// New returns a Calendar. A nil location means time.Local and an out of range
// weekday means Sunday.
func New(loc *time.Location, first time.Weekday) Calendar {
	if loc == nil {
		loc = time.Local
	}
	if first < time.Sunday || first > time.Saturday {
		first = time.Sunday
	}
	return Calendar{Location: loc, FirstWeekday: first}
}

// Loc is the calendar's zone, time.Local when unset.
func (c Calendar) Loc() *time.Location {
	if c.Location == nil {
		return time.Local
	}
	return c.Location
}

// StartOfDay returns midnight of t's day in the calendar's zone.
func (c Calendar) StartOfDay(t time.Time) time.Time {
	y, m, d := t.In(c.Loc()).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, c.Loc())
}

// StartOfMonth returns midnight of the first day of t's month.
func (c Calendar) StartOfMonth(t time.Time) time.Time {
	y, m, _ := t.In(c.Loc()).Date()
	return time.Date(y, m, 1, 0, 0, 0, 0, c.Loc())
}

// DayRange returns the first and last day-of-month of t's month. A result
// outside 28..31 is replaced by 1..31.
func (c Calendar) DayRange(t time.Time) (first, last int) {
	y, m, _ := t.In(c.Loc()).Date()
	last = time.Date(y, m+1, 0, 0, 0, 0, 0, c.Loc()).Day()
	if last < minMonthDays || last > defaultMonthDays {
		return 1, defaultMonthDays
	}
	return 1, last
}

// DaysInMonth is the length of t's month.
func (c Calendar) DaysInMonth(t time.Time) int {
	_, last := c.DayRange(t)
	return last
}

// AddMonths moves t by n months, clamping the day to the target month's
// length (Jan 31 + 1 month is the last day of February). Time of day is kept.
func (c Calendar) AddMonths(t time.Time, n int) time.Time {
	local := t.In(c.Loc())
	y, m, d := local.Date()
	target := time.Date(y, m+time.Month(n), 1, 0, 0, 0, 0, c.Loc())
	if last := c.DaysInMonth(target); d > last {
		d = last
	}
	out := time.Date(target.Year(), target.Month(), d,
		local.Hour(), local.Minute(), local.Second(), local.Nanosecond(), c.Loc())
	if out.Month() != target.Month() {
		return t
	}
	return out
}

// SameDay is calendar-day equality: same year, month and day in the
// calendar's zone, ignoring time of day.
func (c Calendar) SameDay(a, b time.Time) bool {
	ay, am, ad := a.In(c.Loc()).Date()
	by, bm, bd := b.In(c.Loc()).Date()
	return ay == by && am == bm && ad == bd
}

// SameMonth reports whether a and b fall in the same year and month.
func (c Calendar) SameMonth(a, b time.Time) bool {
	ay, am, _ := a.In(c.Loc()).Date()
	by, bm, _ := b.In(c.Loc()).Date()
	return ay == by && am == bm
}

// LeadingOffset is the number of padding cells before day 1 of t's month.
// Always within 0..6.
func (c Calendar) LeadingOffset(t time.Time) int {
	weekday := c.StartOfMonth(t).Weekday()
	return (int(weekday) - int(c.FirstWeekday) + 7) % 7
}

// Weekdays lists the seven weekdays in column order.
func (c Calendar) Weekdays() [7]time.Weekday {
	var out [7]time.Weekday
	for i := range out {
		out[i] = time.Weekday((int(c.FirstWeekday) + i) % 7)
	}
	return out
}
