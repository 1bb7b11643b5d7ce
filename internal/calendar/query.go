package calendar

import (
	"slices"
	"time"

	"github.com/samber/lo"

	"medcal/internal/model"
)

// EventSource is anything that can list medication events in insertion order.
type EventSource interface {
	All() []model.MedicationEvent
}

// EventsOn returns the events scheduled on date's calendar day, ordered by
// ScheduledDate. Ties keep insertion order.
func (c Calendar) EventsOn(src EventSource, date time.Time) []model.MedicationEvent {
	out := lo.Filter(src.All(), func(e model.MedicationEvent, _ int) bool {
		return c.SameDay(e.ScheduledDate, date)
	})
	slices.SortStableFunc(out, func(a, b model.MedicationEvent) int {
		return a.ScheduledDate.Compare(b.ScheduledDate)
	})
	return out
}

// HasEventsOn reports whether at least one event falls on date's day.
func (c Calendar) HasEventsOn(src EventSource, date time.Time) bool {
	return lo.ContainsBy(src.All(), func(e model.MedicationEvent) bool {
		return c.SameDay(e.ScheduledDate, date)
	})
}

// CountOn returns the number of events on date's day.
func (c Calendar) CountOn(src EventSource, date time.Time) int {
	return lo.CountBy(src.All(), func(e model.MedicationEvent) bool {
		return c.SameDay(e.ScheduledDate, date)
	})
}

// EventsOnCell is EventsOn for a grid cell. Padding cells never match.
func (c Calendar) EventsOnCell(src EventSource, cell model.GridCell) []model.MedicationEvent {
	if cell.IsPadding() {
		return nil
	}
	return c.EventsOn(src, *cell.Date)
}

// HasEventsOnCell is HasEventsOn for a grid cell. Padding cells never match.
func (c Calendar) HasEventsOnCell(src EventSource, cell model.GridCell) bool {
	if cell.IsPadding() {
		return false
	}
	return c.HasEventsOn(src, *cell.Date)
}
