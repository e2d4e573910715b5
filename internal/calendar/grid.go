// Package calendar derives the month view of the booking calendar: a fixed
// 6x7 grid of day cells and the appointments that fall on each.
package calendar

import "time"

const (
	Rows      = 6
	Cols      = 7
	GridCells = Rows * Cols

	DateLayout = "2006-01-02"
)

// DayCell is one grid position. Date is midnight in the reference location.
type DayCell struct {
	Date         time.Time
	CurrentMonth bool
}

func (c DayCell) Key() string { return c.Date.Format(DateLayout) }

func (c DayCell) Day() int { return c.Date.Day() }

// MonthGrid lays out the month containing ref: trailing days of the previous
// month up to the first weekday (Sunday first), every day of the month, then
// leading days of the next month until the grid holds exactly 42 cells.
func MonthGrid(ref time.Time) []DayCell {
	year, month, _ := ref.Date()
	loc := ref.Location()

	first := time.Date(year, month, 1, 0, 0, 0, 0, loc)
	firstDay := int(first.Weekday())
	days := daysIn(year, month, loc)

	cells := make([]DayCell, 0, GridCells)

	prevLast := first.AddDate(0, 0, -1)
	py, pm, pd := prevLast.Date()
	for d := pd - firstDay + 1; d <= pd; d++ {
		cells = append(cells, DayCell{Date: time.Date(py, pm, d, 0, 0, 0, 0, loc)})
	}

	for d := 1; d <= days; d++ {
		cells = append(cells, DayCell{Date: time.Date(year, month, d, 0, 0, 0, 0, loc), CurrentMonth: true})
	}

	next := first.AddDate(0, 1, 0)
	ny, nm, _ := next.Date()
	for d := 1; len(cells) < GridCells; d++ {
		cells = append(cells, DayCell{Date: time.Date(ny, nm, d, 0, 0, 0, 0, loc)})
	}
	return cells
}

// MonthRange returns the first and last day of ref's month.
func MonthRange(ref time.Time) (time.Time, time.Time) {
	year, month, _ := ref.Date()
	loc := ref.Location()
	first := time.Date(year, month, 1, 0, 0, 0, 0, loc)
	return first, time.Date(year, month, daysIn(year, month, loc), 0, 0, 0, 0, loc)
}

// MonthStart normalizes t to midnight on the first of its month.
func MonthStart(t time.Time) time.Time {
	first, _ := MonthRange(t)
	return first
}

func daysIn(year int, month time.Month, loc *time.Location) int {
	// day 0 of the next month is the last day of this one
	return time.Date(year, month+1, 0, 0, 0, 0, 0, loc).Day()
}

// IsToday compares the cell's calendar date with now. Callers pass the
// current wall clock on every render.
func IsToday(c DayCell, now time.Time) bool {
	now = now.In(c.Date.Location())
	y1, m1, d1 := c.Date.Date()
	y2, m2, d2 := now.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}
