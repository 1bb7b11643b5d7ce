package store

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"medcal/internal/calendar"
	"medcal/internal/model"
)

func seoul(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("Asia/Seoul")
	require.NoError(t, err)
	return loc
}

func TestSample_TodayHasMorningAndEveningDose(t *testing.T) {
	loc := seoul(t)
	ref := time.Date(2025, time.January, 15, 13, 45, 0, 0, loc)
	s := Sample(ref, loc)
	cal := calendar.New(loc, time.Sunday)

	got := cal.EventsOn(s, ref)

	require.Len(t, got, 2)
	require.Equal(t, time.Date(2025, time.January, 15, 8, 0, 0, 0, loc), got[0].ScheduledDate)
	require.Equal(t, time.Date(2025, time.January, 15, 20, 0, 0, 0, loc), got[1].ScheduledDate)
}

func TestSample_InsertionOrderAndRecurrence(t *testing.T) {
	loc := seoul(t)
	ref := time.Date(2025, time.January, 30, 0, 0, 0, 0, loc)

	events := Sample(ref, loc).All()

	// Eight single seeds plus a three-day course.
	require.Len(t, events, 11)
	require.Equal(t, "메트포르민", events[0].Name)
	require.Equal(t, "암로디핀", events[2].Name)
	require.Equal(t, time.Date(2025, time.January, 29, 7, 30, 0, 0, loc), events[2].ScheduledDate)

	course := events[4:7]
	for i, e := range course {
		require.Equal(t, "아목시실린", e.Name)
		// Crosses the month boundary: Feb 1, 2, 3.
		require.Equal(t, time.Date(2025, time.February, 1+i, 8, 0, 0, 0, loc), e.ScheduledDate)
		require.True(t, e.HasNotes())
	}

	require.Equal(t, "오메가3", events[7].Name)
	require.Nil(t, events[7].Notes)
}

func TestSample_UniqueIDs(t *testing.T) {
	loc := seoul(t)
	events := Sample(time.Date(2025, time.March, 1, 0, 0, 0, 0, loc), loc).All()

	seen := map[uuid.UUID]bool{}
	for _, e := range events {
		require.NotEqual(t, uuid.Nil, e.ID)
		require.False(t, seen[e.ID])
		seen[e.ID] = true
	}
}

func TestSample_QueriesSortWithinDay(t *testing.T) {
	loc := seoul(t)
	ref := time.Date(2025, time.January, 15, 0, 0, 0, 0, loc)
	cal := calendar.New(loc, time.Sunday)

	// Day +3: amoxicillin 08:00 is listed before omega-3 07:00.
	got := cal.EventsOn(Sample(ref, loc), ref.AddDate(0, 0, 3))

	require.Len(t, got, 2)
	require.Equal(t, "오메가3", got[0].Name)
	require.Equal(t, "아목시실린", got[1].Name)
}

func TestExpand_BadRRuleFallsBackToSingleDose(t *testing.T) {
	loc := seoul(t)
	seeds := []Seed{{Name: "x", Dosage: "1", Hour: 9, RRule: "FREQ=NEVER"}}

	events := Expand(seeds, time.Date(2025, time.May, 5, 0, 0, 0, 0, loc), loc)

	require.Len(t, events, 1)
	require.Equal(t, time.Date(2025, time.May, 5, 9, 0, 0, 0, loc), events[0].ScheduledDate)
}

func TestExpand_UnboundedRRuleIsCapped(t *testing.T) {
	loc := seoul(t)
	seeds := []Seed{{Name: "daily", Dosage: "1", Hour: 9, RRule: "FREQ=DAILY"}}

	events := Expand(seeds, time.Date(2025, time.May, 5, 0, 0, 0, 0, loc), loc)

	require.NotEmpty(t, events)
	require.LessOrEqual(t, len(events), maxRecurrenceDays+1)
}

func TestStore_AllReturnsCopy(t *testing.T) {
	s := New([]model.MedicationEvent{
		model.NewMedicationEvent("a", "1", time.Unix(0, 0), nil),
		model.NewMedicationEvent("b", "1", time.Unix(10, 0), nil),
	})

	all := s.All()
	all[0].Name = "mutated"

	require.Equal(t, "a", s.All()[0].Name)
	require.Equal(t, 2, s.Len())
}

func TestStore_NilIsEmpty(t *testing.T) {
	var s *Store

	require.Empty(t, s.All())
	require.Zero(t, s.Len())
}
