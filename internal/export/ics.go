// Package export writes events out as an iCalendar feed so that a
// snapshot's events can be imported into other calendar clients.
package export

import (
	"fmt"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"

	"eventcal/internal/model"
)

const ProductID = "-//eventcal//quarterly events//EN"

// ICS serializes events as all-day VEVENTs. DTEND is exclusive, so an
// event ending on the 3rd gets DTEND on the 4th.
func ICS(events []model.Event, name string, stamp time.Time) string {
	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId(ProductID)
	if name != "" {
		cal.SetXWRCalName(name)
	}

	for _, e := range events {
		ve := cal.AddEvent(uid(e))
		ve.SetDtStampTime(stamp.UTC())
		ve.SetAllDayStartAt(e.StartDate)
		ve.SetAllDayEndAt(model.AddDays(e.EndDate, 1))
		ve.SetSummary(e.Title)
		if d := description(e); d != "" {
			ve.SetDescription(d)
		}
		for _, c := range categories(e) {
			ve.AddCategory(c)
		}
	}
	return cal.Serialize()
}

func uid(e model.Event) string {
	return strings.ReplaceAll(e.ID, " ", "_") + "@eventcal"
}

func description(e model.Event) string {
	var lines []string
	if e.Summary != "" {
		lines = append(lines, e.Summary)
	}
	switch {
	case e.StartTime != "" && e.EndTime != "":
		lines = append(lines, fmt.Sprintf("Time: %s - %s", e.StartTime, e.EndTime))
	case e.StartTime != "":
		lines = append(lines, "Time: "+e.StartTime)
	}
	if e.NumberOfChats != nil {
		lines = append(lines, fmt.Sprintf("Chats: %d", *e.NumberOfChats))
	}
	if e.Revenue != nil {
		lines = append(lines, fmt.Sprintf("Revenue: %.2f", *e.Revenue))
	}
	return strings.Join(lines, "\n")
}

// categories merges games and tags without duplicates.
func categories(e model.Event) []string {
	seen := make(map[string]bool)
	var out []string
	for _, c := range append(append([]string{}, e.Games...), e.Tags...) {
		c = strings.TrimSpace(c)
		if c == "" || seen[c] {
			continue
		}
		seen[c] = true
		out = append(out, c)
	}
	return out
}
