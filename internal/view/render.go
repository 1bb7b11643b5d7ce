package view

import (
	"time"

	"medcal/internal/calendar"
)

const (
	monthLayout = "2006-01"
	dateLayout  = time.DateOnly
)

// View is the framework-neutral description of one frame of the screen.
type View struct {
	Title         string     `json:"title"`
	Locale        string     `json:"locale"`
	Month         string     `json:"month"`
	MonthLabel    string     `json:"month_label"`
	WeekdayLabels [7]string  `json:"weekday_labels"`
	Cells         []CellView `json:"cells"`
	Day           DayView    `json:"day"`
}

// CellView is one grid square. Padding cells only set Padding.
type CellView struct {
	Day        int    `json:"day"`
	Date       string `json:"date,omitempty"`
	Padding    bool   `json:"padding"`
	Today      bool   `json:"today"`
	Selected   bool   `json:"selected"`
	HasEvents  bool   `json:"has_events"`
	EventCount int    `json:"event_count"`
	Label      string `json:"label"`
}

// DayView is the dose list of the selected day.
type DayView struct {
	Date         string           `json:"date"`
	Label        string           `json:"label"`
	Summary      string           `json:"summary,omitempty"`
	Empty        bool             `json:"empty"`
	EmptyMessage string           `json:"empty_message,omitempty"`
	Medications  []MedicationView `json:"medications"`
}

type MedicationView struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Dosage      string    `json:"dosage"`
	Time        string    `json:"time"`
	Notes       *string   `json:"notes,omitempty"`
	ScheduledAt time.Time `json:"scheduled_at"`
}

// Renderer binds the calendar, the event source and the locale used by Render.
type Renderer struct {
	Calendar calendar.Calendar
	Events   calendar.EventSource
	Locale   Locale
}

// Render describes state s as seen at instant now (now only drives the
// "today" marker).
func (r Renderer) Render(s State, now time.Time) View {
	cal := r.Calendar
	month := cal.StartOfMonth(s.CurrentMonth)

	v := View{
		Title:      r.Locale.Title,
		Locale:     r.Locale.ID,
		Month:      month.Format(monthLayout),
		MonthLabel: r.Locale.monthLabel(month),
	}
	for i, wd := range cal.Weekdays() {
		v.WeekdayLabels[i] = r.Locale.shortWeekdays[wd]
	}

	grid := cal.BuildMonthGrid(month)
	v.Cells = make([]CellView, 0, len(grid))
	for _, cell := range grid {
		if cell.IsPadding() {
			v.Cells = append(v.Cells, CellView{Padding: true})
			continue
		}
		date := *cell.Date
		cv := CellView{
			Day:        cell.Day,
			Date:       date.Format(dateLayout),
			Today:      cal.SameDay(date, now),
			Selected:   cal.SameDay(date, s.SelectedDate),
			EventCount: cal.CountOn(r.Events, date),
		}
		cv.HasEvents = cv.EventCount > 0
		cv.Label = r.Locale.cellLabel(cv.Day, cv.Today, cv.EventCount, cv.Selected)
		v.Cells = append(v.Cells, cv)
	}

	v.Day = r.renderDay(s.SelectedDate)
	return v
}

func (r Renderer) renderDay(selected time.Time) DayView {
	local := selected.In(r.Calendar.Loc())
	events := r.Calendar.EventsOn(r.Events, local)

	dv := DayView{
		Date:        local.Format(dateLayout),
		Label:       r.Locale.dateLabel(local),
		Medications: make([]MedicationView, 0, len(events)),
	}
	if len(events) == 0 {
		dv.Empty = true
		dv.EmptyMessage = r.Locale.emptyMessage
		return dv
	}

	dv.Summary = r.Locale.summary(len(events))
	for _, e := range events {
		at := e.ScheduledDate.In(r.Calendar.Loc())
		dv.Medications = append(dv.Medications, MedicationView{
			ID:          e.ID.String(),
			Name:        e.Name,
			Dosage:      e.Dosage,
			Time:        r.Locale.timeLabel(at),
			Notes:       e.Notes,
			ScheduledAt: at,
		})
	}
	return dv
}

// ParseMonth parses "YYYY-MM" in the calendar's zone.
func ParseMonth(cal calendar.Calendar, s string) (time.Time, error) {
	return time.ParseInLocation(monthLayout, s, cal.Loc())
}

// ParseDate parses "YYYY-MM-DD" in the calendar's zone.
func ParseDate(cal calendar.Calendar, s string) (time.Time, error) {
	return time.ParseInLocation(dateLayout, s, cal.Loc())
}
