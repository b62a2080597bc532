package quarter

import (
	"time"

	"github.com/teambition/rrule-go"

	"eventcal/internal/model"
)

const (
	monthGridDays = 42
	weekDays      = 7
)

// MonthWindow is the six-row grid shown for anchor's month: 42 days
// starting on the weekStart day on or before the 1st.
func MonthWindow(anchor time.Time, weekStart time.Weekday) model.Range {
	first := model.Date(anchor.Year(), anchor.Month(), 1)
	start := model.StartOfWeek(first, weekStart)
	return model.Range{Start: start, End: model.AddDays(start, monthGridDays-1)}
}

// WeekWindow is the seven days starting on the weekStart day on or before
// anchor.
func WeekWindow(anchor time.Time, weekStart time.Weekday) model.Range {
	start := model.StartOfWeek(anchor, weekStart)
	return model.Range{Start: start, End: model.AddDays(start, weekDays-1)}
}

// SearchWindow covers everything searchable: minDate through Dec 31 of the
// year after today.
func SearchWindow(minDate, today time.Time) model.Range {
	return model.Range{
		Start: model.Day(minDate),
		End:   model.Date(today.Year()+1, time.December, 31),
	}
}

// Keys returns the quarters covering r.
func Keys(r model.Range) []Key {
	return KeysInRange(r.Start, r.End)
}

// Days enumerates every civil date in r, in order.
func Days(r model.Range) []time.Time {
	if r.End.Before(r.Start) {
		return nil
	}
	rule, err := rrule.NewRRule(rrule.ROption{
		Freq:    rrule.DAILY,
		Dtstart: r.Start,
		Until:   r.End,
	})
	if err != nil {
		days := make([]time.Time, 0, r.Len())
		for d := r.Start; !d.After(r.End); d = model.AddDays(d, 1) {
			days = append(days, d)
		}
		return days
	}
	return rule.All()
}
