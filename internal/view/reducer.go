package view

import (
	"strings"
	"time"

	"eventcal/internal/config"
	"eventcal/internal/model"
	"eventcal/internal/search"
)

// Effect describes the follow-up work a command requires.
type Effect struct {
	// Load: the visible window changed; resolve and await its quarters,
	// then refresh the working set.
	Load bool
	// Recompute: the search result list must be rebuilt from the working
	// set (and the page clamped).
	Recompute bool

	// Regions to re-render.
	Grid    bool
	Popup   bool
	Results bool
}

// Empty reports whether nothing needs to happen.
func (e Effect) Empty() bool {
	return e == Effect{}
}

func (e Effect) merge(o Effect) Effect {
	return Effect{
		Load:      e.Load || o.Load,
		Recompute: e.Recompute || o.Recompute,
		Grid:      e.Grid || o.Grid,
		Popup:     e.Popup || o.Popup,
		Results:   e.Results || o.Results,
	}
}

// Apply is the state machine. It is pure: it never performs I/O and input
// that fails validation returns s unchanged with an empty Effect.
func Apply(cfg Config, s State, cmd Command) (State, Effect) {
	switch c := cmd.(type) {
	case Navigate:
		return navigate(cfg, s, c.Delta)

	case SetMode:
		mode, ok := ParseMode(string(c.Mode))
		if !ok || (mode == s.Mode && !s.Searching) {
			return s, Effect{}
		}
		s = s.clearPopup()
		s.Mode = mode
		if s.Searching {
			// Remembered for ExitSearch; the search window is unchanged.
			return s, Effect{Popup: true}
		}
		return s, Effect{Load: true, Grid: true, Popup: true}

	case SetDate:
		day, err := time.Parse(config.DateLayout, strings.TrimSpace(c.Value))
		if err != nil {
			return s, Effect{}
		}
		return jump(cfg, s, day)

	case Today:
		return jump(cfg, s, cfg.Today())

	case SetQuery:
		if c.Text == s.Query {
			return s, Effect{}
		}
		s.Query = c.Text
		return refilter(s)

	case SetTag:
		if c.Tag == s.Tag {
			return s, Effect{}
		}
		s.Tag = c.Tag
		return refilter(s)

	case SubmitSearch:
		s = s.clearPopup()
		s.Searching = true
		s.Query = c.Query
		s.Results = nil
		s.Page = 1
		return s, Effect{Load: true, Recompute: true, Grid: true, Popup: true, Results: true}

	case ExitSearch:
		if !s.Searching {
			return s, Effect{}
		}
		s = s.clearPopup()
		s.Searching = false
		s.Results = nil
		s.Page = 1
		return s, Effect{Load: true, Grid: true, Popup: true, Results: true}

	case GoToPage:
		return goToPage(cfg, s, c.Page)

	case NextPage:
		return goToPage(cfg, s, s.Page+1)

	case PrevPage:
		return goToPage(cfg, s, s.Page-1)

	case SelectEvent:
		if c.ID == "" {
			return s, Effect{}
		}
		if s.Anchored == c.ID {
			s.Anchored = ""
		} else {
			s.Anchored = c.ID
		}
		return s, Effect{Popup: true}

	case HoverEvent:
		if c.ID == "" || c.ID == s.Hovered {
			return s, Effect{}
		}
		s.Hovered = c.ID
		return s, Effect{Popup: s.Anchored == ""}

	case LeaveEvent:
		if s.Hovered == "" {
			return s, Effect{}
		}
		s.Hovered = ""
		return s, Effect{Popup: s.Anchored == ""}

	case ClickOutside:
		if s.Anchored == "" && s.Hovered == "" {
			return s, Effect{}
		}
		return s.clearPopup(), Effect{Popup: true}
	}

	return s, Effect{}
}

func navigate(cfg Config, s State, delta int) (State, Effect) {
	if s.Searching || delta == 0 {
		return s, Effect{}
	}

	var next time.Time
	if s.Mode == ModeWeek {
		next = model.AddDays(s.Anchor, 7*delta)
	} else {
		next = model.AddMonthsClamped(s.Anchor, delta)
	}
	next = model.ClampMin(next, cfg.MinDate)
	if next.Equal(s.Anchor) {
		return s, Effect{}
	}

	s = s.clearPopup()
	s.Anchor = next
	return s, Effect{Load: true, Grid: true, Popup: true}
}

func jump(cfg Config, s State, day time.Time) (State, Effect) {
	day = model.ClampMin(model.Day(day), cfg.MinDate)
	s = s.clearPopup()
	s.Anchor = day
	if s.Searching {
		return s, Effect{Popup: true}
	}
	return s, Effect{Load: true, Grid: true, Popup: true}
}

func refilter(s State) (State, Effect) {
	s = s.clearPopup()
	if s.Searching {
		return s, Effect{Recompute: true, Popup: true, Results: true}
	}
	return s, Effect{Grid: true, Popup: true}
}

func goToPage(cfg Config, s State, page int) (State, Effect) {
	if !s.Searching {
		return s, Effect{}
	}
	page = search.ClampPage(page, search.TotalPages(len(s.Results), cfg.PageSize))
	if page == s.Page {
		return s, Effect{}
	}
	s.Page = page
	return s, Effect{Results: true}
}
