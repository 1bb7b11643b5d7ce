package view

import (
	"fmt"
	"strings"
	"time"
)

// Locale carries the display strings of the calendar screen.
type Locale struct {
	ID    string
	Title string

	shortWeekdays [7]string // Sunday first
	monthLabel    func(t time.Time) string
	dateLabel     func(t time.Time) string
	timeLabel     func(t time.Time) string
	summary       func(n int) string
	cellLabel     func(day int, today bool, count int, selected bool) string
	emptyMessage  string
}

const (
	LocaleKorean  = "ko_KR"
	LocaleEnglish = "en_US"
)

var korean = Locale{
	ID:            LocaleKorean,
	Title:         "복약 알리미",
	shortWeekdays: [7]string{"일", "월", "화", "수", "목", "금", "토"},
	monthLabel: func(t time.Time) string {
		return fmt.Sprintf("%d월 %d", int(t.Month()), t.Year())
	},
	dateLabel: func(t time.Time) string {
		return fmt.Sprintf("%d. %d. %d.", t.Year(), int(t.Month()), t.Day())
	},
	timeLabel: func(t time.Time) string {
		h := t.Hour()
		ampm := "오전"
		if h >= 12 {
			ampm = "오후"
		}
		return fmt.Sprintf("%s %d:%02d", ampm, hour12(h), t.Minute())
	},
	summary: func(n int) string {
		return fmt.Sprintf("총 %d회 복약", n)
	},
	cellLabel: func(day int, today bool, count int, selected bool) string {
		parts := []string{fmt.Sprintf("%d일", day)}
		if today {
			parts = append(parts, "오늘")
		}
		if count > 0 {
			parts = append(parts, fmt.Sprintf("복약 %d회", count))
		}
		if selected {
			parts = append(parts, "선택됨")
		}
		return strings.Join(parts, ", ")
	},
	emptyMessage: "예정된 복약이 없습니다.",
}

var english = Locale{
	ID:            LocaleEnglish,
	Title:         "Medication Reminder",
	shortWeekdays: [7]string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"},
	monthLabel: func(t time.Time) string {
		return t.Format("January 2006")
	},
	dateLabel: func(t time.Time) string {
		return t.Format("Jan 2, 2006")
	},
	timeLabel: func(t time.Time) string {
		return t.Format("3:04 PM")
	},
	summary: func(n int) string {
		if n == 1 {
			return "1 dose total"
		}
		return fmt.Sprintf("%d doses total", n)
	},
	cellLabel: func(day int, today bool, count int, selected bool) string {
		parts := []string{fmt.Sprintf("%d", day)}
		if today {
			parts = append(parts, "today")
		}
		switch {
		case count == 1:
			parts = append(parts, "1 dose")
		case count > 1:
			parts = append(parts, fmt.Sprintf("%d doses", count))
		}
		if selected {
			parts = append(parts, "selected")
		}
		return strings.Join(parts, ", ")
	},
	emptyMessage: "No medications scheduled.",
}

// LookupLocale returns the locale for id, falling back to Korean.
func LookupLocale(id string) Locale {
	switch strings.ReplaceAll(strings.TrimSpace(id), "-", "_") {
	case LocaleEnglish, "en":
		return english
	default:
		return korean
	}
}

func hour12(h int) int {
	h %= 12
	if h == 0 {
		return 12
	}
	return h
}
