package monthgrid

import "time"

const (
	// DaysPerWeek is the number of cells in a grid row.
	DaysPerWeek = 7
	// MaxWeeks is the number of rows generated before trimming.
	MaxWeeks = 6
	// MinWeeks is the number of rows always kept after trimming.
	MinWeeks = 5

	gridCells = DaysPerWeek * MaxWeeks
	isoLayout = "2006-01-02"
)

// BuildMonthGrid lays out the month (year, monthIndex) as Sunday-first weeks.
//
// The grid starts on the Sunday on or before the 1st and covers 42 days.
// Trailing weeks made only of days from the next month are dropped, but the
// grid never shrinks below MinWeeks. eventsByDay is keyed by ISO date; days
// without an entry get an empty, non-nil event list.
func BuildMonthGrid(year, monthIndex int, eventsByDay map[string][]DisplayEvent) []Week {
	first := NewMonthRef(year, monthIndex).FirstDay()
	offset := int(first.Weekday())

	weeks := make([]Week, MaxWeeks)
	for i := 0; i < gridCells; i++ {
		day := time.Date(first.Year(), first.Month(), 1-offset+i, 0, 0, 0, 0, time.UTC)
		iso := ISODate(day)

		events := eventsByDay[iso]
		if events == nil {
			events = []DisplayEvent{}
		}

		weeks[i/DaysPerWeek][i%DaysPerWeek] = DayCell{
			ISO:            iso,
			DayNumber:      day.Day(),
			IsCurrentMonth: day.Year() == first.Year() && day.Month() == first.Month(),
			Events:         events,
		}
	}

	for len(weeks) > MinWeeks && !weeks[len(weeks)-1].HasCurrentMonth() {
		weeks = weeks[:len(weeks)-1]
	}
	return weeks
}

// ISODate formats the calendar date of t (in t's location) as YYYY-MM-DD.
func ISODate(t time.Time) string {
	return t.Format(isoLayout)
}
