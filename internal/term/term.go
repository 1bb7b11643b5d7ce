// Package term prints a rendered calendar view to a terminal.
package term

import (
	"fmt"
	"io"
	"strconv"

	"github.com/gookit/color"
	"github.com/olekukonko/tablewriter"

	"medcal/internal/calendar"
	"medcal/internal/view"
)

// Print writes the month grid followed by the selected day's doses.
//
// Cell marks: "*" has doses, "[n]" selected, today is highlighted.
func Print(w io.Writer, v view.View) error {
	if _, err := fmt.Fprintf(w, "%s  %s\n\n", color.Bold.Render(v.Title), v.MonthLabel); err != nil {
		return err
	}

	grid := tablewriter.NewWriter(w)
	grid.SetHeader(v.WeekdayLabels[:])
	grid.SetAutoFormatHeaders(false)
	grid.SetAlignment(tablewriter.ALIGN_RIGHT)
	grid.SetHeaderAlignment(tablewriter.ALIGN_RIGHT)
	grid.SetBorder(false)
	grid.SetCenterSeparator("")
	grid.SetColumnSeparator("")
	grid.SetRowSeparator("")
	grid.SetHeaderLine(false)
	grid.SetTablePadding(" ")

	for _, row := range rows(v.Cells) {
		grid.Append(row)
	}
	grid.Render()

	if _, err := fmt.Fprintf(w, "\n%s", v.Day.Label); err != nil {
		return err
	}
	if v.Day.Empty {
		_, err := fmt.Fprintf(w, "\n%s\n", v.Day.EmptyMessage)
		return err
	}
	if _, err := fmt.Fprintf(w, "  %s\n", v.Day.Summary); err != nil {
		return err
	}

	list := tablewriter.NewWriter(w)
	list.SetAutoWrapText(false)
	list.SetBorder(false)
	list.SetCenterSeparator("")
	list.SetColumnSeparator("")
	list.SetRowSeparator("")
	list.SetAlignment(tablewriter.ALIGN_LEFT)
	list.SetTablePadding("  ")
	list.SetNoWhiteSpace(true)
	for _, m := range v.Day.Medications {
		notes := ""
		if m.Notes != nil {
			notes = *m.Notes
		}
		list.Append([]string{color.Cyan.Render(m.Time), m.Name, m.Dosage, notes})
	}
	list.Render()
	return nil
}

func rows(cells []view.CellView) [][]string {
	out := make([][]string, 0, (len(cells)+calendar.Columns-1)/calendar.Columns)
	row := make([]string, 0, calendar.Columns)
	for _, c := range cells {
		row = append(row, cellText(c))
		if len(row) == calendar.Columns {
			out = append(out, row)
			row = make([]string, 0, calendar.Columns)
		}
	}
	if len(row) > 0 {
		// tablewriter needs full rows; blank the tail.
		for len(row) < calendar.Columns {
			row = append(row, "")
		}
		out = append(out, row)
	}
	return out
}

func cellText(c view.CellView) string {
	if c.Padding {
		return ""
	}
	s := strconv.Itoa(c.Day)
	if c.HasEvents {
		s += "*"
	}
	if c.Selected {
		s = "[" + s + "]"
	}
	if c.Today {
		s = color.Blue.Render(s)
	}
	return s
}
