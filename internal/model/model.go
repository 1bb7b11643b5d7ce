package model

import (
	"time"

	"github.com/google/uuid"
)

// MedicationEvent is one scheduled dose. Values are created once at startup
// and never mutated afterwards.
type MedicationEvent struct {
	// ID only gives list rendering a stable identity; it is unique per run.
	ID uuid.UUID

	Name   string
	Dosage string

	// ScheduledDate is the absolute date and time of the dose.
	ScheduledDate time.Time

	// Notes is optional (e.g. "식후 30분").
	Notes *string
}

// NewMedicationEvent builds an event with a freshly generated ID.
func NewMedicationEvent(name, dosage string, at time.Time, notes *string) MedicationEvent {
	return MedicationEvent{
		ID:            uuid.New(),
		Name:          name,
		Dosage:        dosage,
		ScheduledDate: at,
		Notes:         notes,
	}
}

// HasNotes reports whether the event carries a non-empty note.
func (e MedicationEvent) HasNotes() bool {
	return e.Notes != nil && *e.Notes != ""
}

// GridCell is one square of a month grid. Padding cells have Day == 0 and no
// Date; real cells carry Day 1..31 and the midnight of that day.
type GridCell struct {
	Day  int
	Date *time.Time
}

// IsPadding reports whether the cell only aligns the first day to its column.
func (c GridCell) IsPadding() bool {
	return c.Day == 0 || c.Date == nil
}
