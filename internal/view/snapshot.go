package view

import (
	"time"

	"eventcal/internal/model"
	"eventcal/internal/quarter"
	"eventcal/internal/search"
)

// DayCell is one day of the visible grid.
type DayCell struct {
	Date time.Time
	// InPeriod is false for the leading/trailing days of a month grid that
	// belong to the neighbouring months.
	InPeriod bool
	Today    bool
	Events   []model.Event
	// Hidden counts the events cut by the per-day cap.
	Hidden int
}

// Snapshot is the render contract: everything a front-end needs to draw the
// current state, and nothing it would have to compute itself.
type Snapshot struct {
	Session   string
	Mode      Mode
	Searching bool
	Label     string
	Window    model.Range
	Query     string
	Tag       string

	// Days is empty while searching.
	Days []DayCell

	Popup         *model.Event
	PopupAnchored bool

	// Tags available for the tag filter, from the whole working set.
	Tags []string

	// Results holds the current search page; zero outside search mode.
	Results search.Page

	// Changed carries the regions the last command touched.
	Changed Effect
}

// Build renders state s over the working set events.
func Build(cfg Config, s State, events []model.Event) Snapshot {
	snap := Snapshot{
		Mode:      s.Mode,
		Searching: s.Searching,
		Label:     s.Label(cfg),
		Window:    s.Window(cfg),
		Query:     s.Query,
		Tag:       s.Tag,
		Tags:      search.Tags(events),
	}

	if id := s.PopupID(); id != "" {
		for i := range events {
			if events[i].ID == id {
				e := events[i]
				snap.Popup = &e
				snap.PopupAnchored = s.Anchored == id
				break
			}
		}
	}

	if s.Searching {
		snap.Results = search.Paginate(s.Results, s.Page, cfg.PageSize)
		return snap
	}

	visible := search.Filter(events, s.Query, s.Tag)
	limit := 0
	if s.Mode == ModeMonth {
		limit = cfg.MonthDayCap
	}
	today := cfg.Today()
	for _, d := range quarter.Days(snap.Window) {
		cell := DayCell{
			Date:     d,
			InPeriod: s.Mode == ModeWeek || d.Month() == s.Anchor.Month(),
			Today:    d.Equal(today),
		}
		cell.Events, cell.Hidden = search.Cap(search.ForDay(visible, d), limit)
		snap.Days = append(snap.Days, cell)
	}
	return snap
}

// Results rebuilds the sorted search list for s over events.
func Results(s State, events []model.Event) []model.Event {
	return search.SortForSearch(search.Filter(events, s.Query, s.Tag))
}
