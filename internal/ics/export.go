// Package ics renders the medication schedule as an iCalendar feed so that
// the doses can be viewed in any calendar application.
package ics

import (
	"errors"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"

	"medcal/internal/model"
)

const (
	productID       = "-//medcal//Medication Calendar//KO"
	defaultDuration = 15 * time.Minute
)

// ExportOptions tunes Encode. Zero values are replaced by defaults.
type ExportOptions struct {
	// Name is shown by clients as the calendar title (X-WR-CALNAME).
	Name string
	// Location is advertised as X-WR-TIMEZONE.
	Location *time.Location
	// Duration is the length given to every dose event.
	Duration time.Duration
	// Stamp is written as DTSTAMP; tests pin it.
	Stamp time.Time
}

// Encode serializes events into an iCalendar document. Each dose becomes one
// VEVENT whose UID is the event ID.
func Encode(events []model.MedicationEvent, opts ExportOptions) (string, error) {
	if opts.Duration <= 0 {
		opts.Duration = defaultDuration
	}
	if opts.Stamp.IsZero() {
		opts.Stamp = time.Now()
	}

	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId(productID)
	if opts.Name != "" {
		cal.SetXWRCalName(opts.Name)
	}
	if opts.Location != nil {
		cal.SetXWRTimezone(opts.Location.String())
	}

	for _, e := range events {
		if e.ScheduledDate.IsZero() {
			return "", errors.New("ics: event " + e.ID.String() + " has no scheduled date")
		}
		ve := cal.AddEvent(e.ID.String() + "@medcal")
		ve.SetDtStampTime(opts.Stamp.UTC())
		ve.SetStartAt(e.ScheduledDate.UTC())
		ve.SetEndAt(e.ScheduledDate.Add(opts.Duration).UTC())
		ve.SetSummary(summary(e))
		if e.HasNotes() {
			ve.SetDescription(*e.Notes)
		}
	}

	return cal.Serialize(ical.WithNewLineWindows), nil
}

func summary(e model.MedicationEvent) string {
	return strings.TrimSpace(e.Name + " " + e.Dosage)
}
