package calendar

import (
	"sort"
	"time"

	"industry-console/internal/model"
)

// PreviewLimit is how many appointments a grid cell shows before "+N more".
const PreviewLimit = 3

var dateLayouts = []string{
	DateLayout,
	time.RFC3339,
	time.RFC3339Nano,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
}

// DateKey normalizes a stored appointment date to "YYYY-MM-DD". Timestamps
// keep the calendar date they were written with; no zone conversion is done.
// Unparseable input yields "".
func DateKey(s string) string {
	if len(s) >= len(DateLayout) {
		if _, err := time.Parse(DateLayout, s[:len(DateLayout)]); err == nil {
			return s[:len(DateLayout)]
		}
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format(DateLayout)
		}
	}
	return ""
}

// Bucket groups appts by the grid cell whose date equals the appointment
// date exactly. Appointments not on any cell are dropped. Each day is
// ordered by start time.
func Bucket(grid []DayCell, appts []model.Appointment) map[string][]model.Appointment {
	onGrid := make(map[string]bool, len(grid))
	for _, c := range grid {
		onGrid[c.Key()] = true
	}

	out := make(map[string][]model.Appointment)
	for _, a := range appts {
		k := DateKey(a.AppointmentDate)
		if k == "" || !onGrid[k] {
			continue
		}
		out[k] = append(out[k], a)
	}
	for _, day := range out {
		sort.SliceStable(day, func(i, j int) bool { return day[i].StartTime < day[j].StartTime })
	}
	return out
}

// Preview caps a day's list for display in a cell. more is the number of
// appointments hidden behind the "+N more" marker.
func Preview(appts []model.Appointment, limit int) (shown []model.Appointment, more int) {
	if limit < 0 {
		limit = 0
	}
	if len(appts) <= limit {
		return appts, 0
	}
	return appts[:limit], len(appts) - limit
}
