package model

import "time"

// Event is one scheduled occurrence parsed from a quarter file.
type Event struct {
	// ID is derived from title, raw start date and Sequence. It is stable
	// within one load of a file, not across edits of that file.
	ID string

	Title string

	// StartDate / EndDate are civil dates (midnight UTC). EndDate is never
	// before StartDate.
	StartDate time.Time
	EndDate   time.Time

	// Free-text clock strings, not validated.
	StartTime string
	EndTime   string

	Games []string
	Tags  []string

	Summary string

	// Nil means absent or unparsable, which is not the same as zero.
	NumberOfChats *int
	Revenue       *float64

	// Sequence is the row's position in its source file.
	Sequence int
}

// HasTag reports exact membership of tag in e.Tags.
func (e Event) HasTag(tag string) bool {
	for _, t := range e.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// Range is an inclusive window of civil dates.
type Range struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether day falls within [Start, End].
func (r Range) Contains(day time.Time) bool {
	d := Day(day)
	return !d.Before(r.Start) && !d.After(r.End)
}

// Len returns the number of days in the window.
func (r Range) Len() int {
	if r.End.Before(r.Start) {
		return 0
	}
	return int(r.End.Sub(r.Start).Hours()/24) + 1
}

// Day strips the time of day, returning midnight UTC of t's calendar date
// in t's own location.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Date builds a civil date.
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// AddDays moves a civil date by n days.
func AddDays(t time.Time, n int) time.Time {
	return Day(t).AddDate(0, 0, n)
}

// AddMonthsClamped moves t by n calendar months, keeping the day of month
// but clamping it to the target month's length: Mar 31 + 1 month is
// Apr 30, never May 1.
func AddMonthsClamped(t time.Time, n int) time.Time {
	t = Day(t)
	first := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, n, 0)
	last := DaysIn(first.Year(), first.Month())
	day := t.Day()
	if day > last {
		day = last
	}
	return time.Date(first.Year(), first.Month(), day, 0, 0, 0, 0, time.UTC)
}

// DaysIn returns the number of days in the given month.
func DaysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// StartOfWeek returns the weekStart day on or before t.
func StartOfWeek(t time.Time, weekStart time.Weekday) time.Time {
	t = Day(t)
	diff := (int(t.Weekday()) - int(weekStart) + 7) % 7
	return t.AddDate(0, 0, -diff)
}

// ClampMin returns min when t precedes it.
func ClampMin(t, min time.Time) time.Time {
	if t.Before(min) {
		return min
	}
	return t
}
