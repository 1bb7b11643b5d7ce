// Package store holds the in-memory medication events shown by the calendar.
package store

import (
	"slices"

	"medcal/internal/model"
)

// Store is an immutable, insertion-ordered list of medication events.
type Store struct {
	events []model.MedicationEvent
}

// New copies events into a Store.
func New(events []model.MedicationEvent) *Store {
	return &Store{events: slices.Clone(events)}
}

// All returns the events in insertion order. The slice is a copy, so
// callers may sort or filter it freely.
func (s *Store) All() []model.MedicationEvent {
	if s == nil {
		return nil
	}
	return slices.Clone(s.events)
}

// Len is the number of events.
func (s *Store) Len() int {
	if s == nil {
		return 0
	}
	return len(s.events)
}
