package calendar

import (
	"time"

	"medcal/internal/model"
)

// Columns is the fixed width of a month grid.
const Columns = 7

// BuildMonthGrid lays out month (only year and month are used) as a flat,
// row-major sequence for a 7-column grid: LeadingOffset padding cells
// followed by one cell per day. The last row is not padded.
func (c Calendar) BuildMonthGrid(month time.Time) []model.GridCell {
	start := c.StartOfMonth(month)
	first, last := c.DayRange(start)
	offset := c.LeadingOffset(start)

	cells := make([]model.GridCell, 0, offset+last-first+1)
	for range offset {
		cells = append(cells, model.GridCell{})
	}
	for day := first; day <= last; day++ {
		date := time.Date(start.Year(), start.Month(), day, 0, 0, 0, 0, start.Location())
		if date.Month() != start.Month() {
			// Fallback range overshot the month.
			break
		}
		cells = append(cells, model.GridCell{Day: day, Date: &date})
	}
	return cells
}

// Rows splits a grid into rows of Columns cells. The last row may be short.
func Rows(cells []model.GridCell) [][]model.GridCell {
	rows := make([][]model.GridCell, 0, (len(cells)+Columns-1)/Columns)
	for i := 0; i < len(cells); i += Columns {
		end := min(i+Columns, len(cells))
		rows = append(rows, cells[i:end])
	}
	return rows
}
