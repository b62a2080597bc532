package view

import (
	"strings"
	"time"

	"eventcal/internal/config"
	"eventcal/internal/model"
	"eventcal/internal/quarter"
)

// Config is the part of the application config the state machine needs.
type Config struct {
	MinDate     time.Time
	WeekStart   time.Weekday
	PageSize    int
	MonthDayCap int

	// Now reports the current instant; "today" is its civil date.
	Now func() time.Time
}

// NewConfig derives the view configuration from the application config.
func NewConfig(c *config.Config) Config {
	loc := c.Location()
	return Config{
		MinDate:     c.MinDateValue(),
		WeekStart:   c.WeekStartDay(),
		PageSize:    c.PageSize,
		MonthDayCap: c.MonthDayCap,
		Now:         func() time.Time { return time.Now().In(loc) },
	}
}

// Today returns the current civil date, never before MinDate.
func (c Config) Today() time.Time {
	now := time.Now
	if c.Now != nil {
		now = c.Now
	}
	return model.ClampMin(model.Day(now()), c.MinDate)
}

// State is everything that survives between commands. Derived views are
// rebuilt from it on every snapshot and never stored here.
type State struct {
	Anchor time.Time

	// Mode is the browsing layout. It is kept while searching so that
	// leaving search restores it.
	Mode      Mode
	Searching bool

	Query string
	Tag   string

	// Anchored is the id of the pinned popup event; Hovered the id under
	// the pointer. Either may be empty.
	Anchored string
	Hovered  string

	// Results is the realized, sorted search result list; Page is 1-based.
	Results []model.Event
	Page    int
}

// NewState starts in month mode on today.
func NewState(cfg Config) State {
	return State{
		Anchor: cfg.Today(),
		Mode:   ModeMonth,
		Page:   1,
	}
}

// Window is the date range the state currently shows.
func (s State) Window(cfg Config) model.Range {
	switch {
	case s.Searching:
		return quarter.SearchWindow(cfg.MinDate, cfg.Today())
	case s.Mode == ModeWeek:
		return quarter.WeekWindow(s.Anchor, cfg.WeekStart)
	default:
		return quarter.MonthWindow(s.Anchor, cfg.WeekStart)
	}
}

// PopupID is the event whose detail is shown: the pinned one wins over the
// hovered one.
func (s State) PopupID() string {
	if s.Anchored != "" {
		return s.Anchored
	}
	return s.Hovered
}

// Label is the period title: "January 2024", "Jan 7 - Jan 13" or
// `Search: "query"`.
func (s State) Label(cfg Config) string {
	if s.Searching {
		return `Search: "` + strings.TrimSpace(s.Query) + `"`
	}
	if s.Mode == ModeWeek {
		w := s.Window(cfg)
		return w.Start.Format("Jan 2") + " - " + w.End.Format("Jan 2")
	}
	return s.Anchor.Format("January 2006")
}

func (s State) clearPopup() State {
	s.Anchored = ""
	s.Hovered = ""
	return s
}
