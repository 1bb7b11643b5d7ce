// Package view owns the screen state of the medication calendar and turns it
// into a render-ready description. State only changes through Reduce.
package view

import (
	"time"

	"medcal/internal/calendar"
	"medcal/internal/model"
)

// State is the transient selection of the screen.
type State struct {
	// CurrentMonth is any instant inside the displayed month.
	CurrentMonth time.Time
	// SelectedDate is midnight of the day whose doses are listed.
	SelectedDate time.Time
}

// NewState opens the screen on now's month with today selected.
func NewState(cal calendar.Calendar, now time.Time) State {
	return State{
		CurrentMonth: now.In(cal.Loc()),
		SelectedDate: cal.StartOfDay(now),
	}
}

// Action is a user intent applied by Reduce.
type Action interface {
	actionName() string
}

type (
	// NextMonth moves the grid one month forward.
	NextMonth struct{}
	// PrevMonth moves the grid one month back.
	PrevMonth struct{}
	// SelectDate selects a day.
	SelectDate struct{ Date time.Time }
	// SelectCell selects a grid cell; padding cells are ignored.
	SelectCell struct{ Cell model.GridCell }
	// Today jumps back to now's month and day.
	Today struct{ Now time.Time }
)

func (NextMonth) actionName() string  { return "next_month" }
func (PrevMonth) actionName() string  { return "prev_month" }
func (SelectDate) actionName() string { return "select_date" }
func (SelectCell) actionName() string { return "select_cell" }
func (Today) actionName() string      { return "today" }

// ActionName is the metrics/log label of an action.
func ActionName(a Action) string {
	if a == nil {
		return "none"
	}
	return a.actionName()
}

// Reduce applies a to s and returns the new state. Every month change is
// followed by Reconcile, so the selection always lies in the shown month.
func Reduce(cal calendar.Calendar, s State, a Action) State {
	switch act := a.(type) {
	case NextMonth:
		s.CurrentMonth = cal.AddMonths(s.CurrentMonth, 1)
		return Reconcile(cal, s)
	case PrevMonth:
		s.CurrentMonth = cal.AddMonths(s.CurrentMonth, -1)
		return Reconcile(cal, s)
	case SelectDate:
		s.SelectedDate = cal.StartOfDay(act.Date)
		if !cal.SameMonth(s.SelectedDate, s.CurrentMonth) {
			s.CurrentMonth = s.SelectedDate
		}
		return s
	case SelectCell:
		if act.Cell.IsPadding() {
			return s
		}
		return Reduce(cal, s, SelectDate{Date: *act.Cell.Date})
	case Today:
		return NewState(cal, act.Now)
	default:
		return s
	}
}

// Reconcile resets the selection to the first day of CurrentMonth when it
// lies in another month.
func Reconcile(cal calendar.Calendar, s State) State {
	if cal.SameMonth(s.SelectedDate, s.CurrentMonth) {
		return s
	}
	s.SelectedDate = cal.StartOfMonth(s.CurrentMonth)
	return s
}
