package utils

import (
	"regexp"
	"strconv"
	"time"
)

// WeekWindow is a Monday-to-Monday UTC range. End is exclusive, so the
// inclusive Sunday boundary is End minus one day.
type WeekWindow struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

func (w WeekWindow) Contains(t time.Time) bool {
	return !t.Before(w.Start) && t.Before(w.End)
}

// Label renders the window's ISO week label, e.g. "2025-W36".
func (w WeekWindow) Label() string {
	year, week := w.Start.ISOWeek()
	return strconv.Itoa(year) + "-W" + strconv.Itoa(week)
}

var weekLabelRe = regexp.MustCompile(`^(\d{4})-W(\d{1,2})$`)

// ResolveWeek turns an ISO week label ("2025-W36") or an explicit start date
// into a concrete week window. An explicit start wins over the label and is
// normalized to UTC midnight of that calendar day.
func ResolveWeek(weekLabel string, explicitStart *time.Time) (WeekWindow, error) {
	if explicitStart != nil {
		start := time.Date(explicitStart.Year(), explicitStart.Month(), explicitStart.Day(), 0, 0, 0, 0, time.UTC)
		return WeekWindow{Start: start, End: start.AddDate(0, 0, 7)}, nil
	}

	m := weekLabelRe.FindStringSubmatch(weekLabel)
	if m == nil {
		return WeekWindow{}, ErrorInvalidWeekFormat
	}
	year, err := strconv.Atoi(m[1])
	if err != nil {
		return WeekWindow{}, ErrorInvalidWeekFormat
	}
	week, err := strconv.Atoi(m[2])
	if err != nil || week < 1 || week > 53 {
		return WeekWindow{}, ErrorInvalidWeekFormat
	}

	// ISO 8601: week 1 is the week containing the year's first Thursday,
	// which always contains January 4th.
	jan4 := time.Date(year, time.January, 4, 0, 0, 0, 0, time.UTC)
	week1Monday := jan4.AddDate(0, 0, -DayIndex(jan4))
	start := week1Monday.AddDate(0, 0, (week-1)*7)

	// Reject week 53 in 52-week years.
	if isoYear, isoWeek := start.ISOWeek(); isoYear != year || isoWeek != week {
		return WeekWindow{}, ErrorInvalidWeekFormat
	}

	return WeekWindow{Start: start, End: start.AddDate(0, 0, 7)}, nil
}

// ParseWeekQuery resolves the week/start pair coming off a request.
// Exactly the current ISO week is used when both are empty.
func ParseWeekQuery(weekLabel string, startDate string) (WeekWindow, error) {
	if startDate != "" {
		parsed, err := time.Parse("2006-01-02", startDate)
		if err != nil {
			return WeekWindow{}, ErrorInvalidWeekFormat
		}
		return ResolveWeek("", &parsed)
	}
	if weekLabel == "" {
		now := time.Now().UTC()
		monday := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC).AddDate(0, 0, -DayIndex(now))
		return ResolveWeek("", &monday)
	}
	return ResolveWeek(weekLabel, nil)
}

// DayIndex maps a date to its ISO weekday index, Monday=0 .. Sunday=6.
func DayIndex(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}

// PaidDayIndex maps a date to the Monday..Saturday bucket index used by the
// weekly summary. Sunday returns -1: it is not a paid day in this domain and
// is surfaced separately rather than bucketed.
func PaidDayIndex(t time.Time) int {
	idx := DayIndex(t)
	if idx > 5 {
		return -1
	}
	return idx
}

// MyDate formats a time as a bare calendar date.
func MyDate(t time.Time) string {
	return t.Format("2006-01-02")
}
