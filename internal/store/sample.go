package store

import (
	"time"

	"github.com/teambition/rrule-go"

	appLog "medcal/internal/log"
	"medcal/internal/model"
)

// maxRecurrenceDays bounds the expansion window of a recurring seed.
const maxRecurrenceDays = 62

// Seed describes sample doses relative to a reference day. A seed with an
// RRule (e.g. "FREQ=DAILY;COUNT=3") expands into one event per occurrence,
// starting at DayOffset/Hour/Minute.
type Seed struct {
	Name      string
	Dosage    string
	DayOffset int
	Hour      int
	Minute    int
	Notes     string
	RRule     string
}

// SampleSeeds is the fixed demo schedule.
var SampleSeeds = []Seed{
	{Name: "메트포르민", Dosage: "500mg", DayOffset: 0, Hour: 8, Notes: "아침 식후 30분"},
	{Name: "메트포르민", Dosage: "500mg", DayOffset: 0, Hour: 20, Notes: "저녁 식후 30분"},
	{Name: "암로디핀", Dosage: "5mg", DayOffset: -1, Hour: 7, Minute: 30},
	{Name: "비타민 D", Dosage: "1000IU", DayOffset: 1, Hour: 9, Notes: "물과 함께 복용"},
	{Name: "아목시실린", Dosage: "250mg", DayOffset: 2, Hour: 8, Notes: "3일간 복용", RRule: "FREQ=DAILY;COUNT=3"},
	{Name: "오메가3", Dosage: "1캡슐", DayOffset: 3, Hour: 7},
	{Name: "이부프로펜", Dosage: "200mg", DayOffset: 5, Hour: 14, Notes: "통증 시에만"},
	{Name: "철분제", Dosage: "65mg", DayOffset: 7, Hour: 21},
	{Name: "암로디핀", Dosage: "5mg", DayOffset: -3, Hour: 7, Minute: 30},
}

// Sample builds the demo store relative to ref: each dose lands on
// midnight(ref) + DayOffset days + Hour:Minute in loc.
func Sample(ref time.Time, loc *time.Location) *Store {
	return New(Expand(SampleSeeds, ref, loc))
}

// Expand turns seeds into events in seed order; recurring seeds contribute
// their occurrences in time order at their position in the list.
func Expand(seeds []Seed, ref time.Time, loc *time.Location) []model.MedicationEvent {
	if loc == nil {
		loc = time.Local
	}
	y, m, d := ref.In(loc).Date()

	out := make([]model.MedicationEvent, 0, len(seeds))
	for _, s := range seeds {
		base := time.Date(y, m, d+s.DayOffset, s.Hour, s.Minute, 0, 0, loc)
		var notes *string
		if s.Notes != "" {
			n := s.Notes
			notes = &n
		}
		for _, at := range occurrences(s, base) {
			out = append(out, model.NewMedicationEvent(s.Name, s.Dosage, at, notes))
		}
	}
	return out
}

func occurrences(s Seed, base time.Time) []time.Time {
	if s.RRule == "" {
		return []time.Time{base}
	}

	r, err := rrule.StrToRRule(s.RRule)
	if err != nil {
		appLog.Error("sample: failed to parse RRULE; using single dose", err, "name", s.Name, "rrule", s.RRule)
		return []time.Time{base}
	}
	r.DTStart(base)

	times := r.Between(base, base.AddDate(0, 0, maxRecurrenceDays), true)
	if len(times) == 0 {
		return []time.Time{base}
	}
	for i := range times {
		times[i] = times[i].In(base.Location())
	}
	return times
}
