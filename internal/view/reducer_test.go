package view

import (
	"testing"
	"time"

	"eventcal/internal/model"
)

func testConfig() Config {
	return Config{
		MinDate:     model.Date(2021, time.January, 1),
		WeekStart:   time.Sunday,
		PageSize:    10,
		MonthDayCap: 3,
		Now:         func() time.Time { return time.Date(2024, time.June, 15, 13, 45, 0, 0, time.UTC) },
	}
}

func at(year int, month time.Month, day int) State {
	return State{Anchor: model.Date(year, month, day), Mode: ModeMonth, Page: 1}
}

func TestNavigateMonthClampsDay(t *testing.T) {
	cfg := testConfig()
	tests := []struct {
		name  string
		from  time.Time
		delta int
		want  time.Time
	}{
		{"31st into 30-day month", model.Date(2024, time.March, 31), 1, model.Date(2024, time.April, 30)},
		{"31st into leap february", model.Date(2024, time.January, 31), 1, model.Date(2024, time.February, 29)},
		{"31st into plain february", model.Date(2023, time.January, 31), 1, model.Date(2023, time.February, 28)},
		{"backwards", model.Date(2024, time.March, 31), -1, model.Date(2024, time.February, 29)},
		{"across year", model.Date(2024, time.December, 15), 1, model.Date(2025, time.January, 15)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := State{Anchor: tt.from, Mode: ModeMonth, Page: 1}
			got, eff := Apply(cfg, s, Navigate{Delta: tt.delta})
			if !got.Anchor.Equal(tt.want) {
				t.Errorf("anchor = %s, want %s", got.Anchor.Format("2006-01-02"), tt.want.Format("2006-01-02"))
			}
			if !eff.Load || !eff.Grid {
				t.Errorf("navigation must load and redraw, got %+v", eff)
			}
		})
	}
}

func TestNavigateWeekAndMinDate(t *testing.T) {
	cfg := testConfig()

	s := at(2024, time.January, 10)
	s.Mode = ModeWeek
	got, _ := Apply(cfg, s, Navigate{Delta: -1})
	if !got.Anchor.Equal(model.Date(2024, time.January, 3)) {
		t.Errorf("week back = %s", got.Anchor.Format("2006-01-02"))
	}

	got, _ = Apply(cfg, at(2021, time.January, 20), Navigate{Delta: -1})
	if !got.Anchor.Equal(cfg.MinDate) {
		t.Errorf("should clamp to min date, got %s", got.Anchor.Format("2006-01-02"))
	}

	s = State{Anchor: cfg.MinDate, Mode: ModeMonth, Page: 1}
	if _, eff := Apply(cfg, s, Navigate{Delta: -1}); !eff.Empty() {
		t.Errorf("navigating below the minimum should be a no-op, got %+v", eff)
	}
}

func TestNavigateIgnoredWhileSearching(t *testing.T) {
	s := at(2024, time.May, 5)
	s.Searching = true
	got, eff := Apply(testConfig(), s, Navigate{Delta: 1})
	if !eff.Empty() || !got.Anchor.Equal(s.Anchor) {
		t.Errorf("got %s, %+v", got.Anchor.Format("2006-01-02"), eff)
	}
}

func TestSetModeClearsPopup(t *testing.T) {
	s := at(2024, time.May, 5)
	s.Anchored = "x"
	s.Hovered = "y"

	got, eff := Apply(testConfig(), s, SetMode{Mode: ModeWeek})
	if got.Mode != ModeWeek || got.Anchored != "" || got.Hovered != "" {
		t.Errorf("got %+v", got)
	}
	if !eff.Load {
		t.Error("mode switch changes the window and must load")
	}

	if _, eff := Apply(testConfig(), got, SetMode{Mode: ModeWeek}); !eff.Empty() {
		t.Errorf("same mode should be a no-op, got %+v", eff)
	}
	if _, eff := Apply(testConfig(), got, SetMode{Mode: "year"}); !eff.Empty() {
		t.Errorf("unknown mode should be ignored, got %+v", eff)
	}
}

func TestSetDate(t *testing.T) {
	cfg := testConfig()
	s := at(2024, time.May, 5)

	got, eff := Apply(cfg, s, SetDate{Value: "2023-11-02"})
	if !got.Anchor.Equal(model.Date(2023, time.November, 2)) || !eff.Load {
		t.Errorf("got %s %+v", got.Anchor.Format("2006-01-02"), eff)
	}

	for _, bad := range []string{"", "2023-13-01", "02/11/2023", "soon"} {
		got, eff := Apply(cfg, s, SetDate{Value: bad})
		if !eff.Empty() || !got.Anchor.Equal(s.Anchor) {
			t.Errorf("SetDate(%q) should be ignored", bad)
		}
	}

	got, _ = Apply(cfg, s, SetDate{Value: "1999-01-01"})
	if !got.Anchor.Equal(cfg.MinDate) {
		t.Errorf("early date should clamp, got %s", got.Anchor.Format("2006-01-02"))
	}
}

func TestToday(t *testing.T) {
	got, _ := Apply(testConfig(), at(2022, time.February, 1), Today{})
	if !got.Anchor.Equal(model.Date(2024, time.June, 15)) {
		t.Errorf("today = %s", got.Anchor.Format("2006-01-02"))
	}
}

func TestQueryAndTag(t *testing.T) {
	cfg := testConfig()
	s := at(2024, time.May, 5)
	s.Anchored = "x"

	got, eff := Apply(cfg, s, SetQuery{Text: "cup"})
	if got.Query != "cup" || got.Anchored != "" {
		t.Errorf("got %+v", got)
	}
	if eff.Load || eff.Recompute || !eff.Grid {
		t.Errorf("browsing query should only redraw, got %+v", eff)
	}

	got.Searching = true
	got, eff = Apply(cfg, got, SetTag{Tag: "live"})
	if got.Tag != "live" || !eff.Recompute || !eff.Results || eff.Grid {
		t.Errorf("searching tag change should recompute results, got %+v %+v", got, eff)
	}
}

func TestSearchEnterAndExit(t *testing.T) {
	cfg := testConfig()
	s := at(2024, time.May, 5)
	s.Mode = ModeWeek
	s.Anchored = "x"

	got, eff := Apply(cfg, s, SubmitSearch{Query: "final"})
	if !got.Searching || got.Query != "final" || got.Page != 1 || got.Anchored != "" {
		t.Errorf("got %+v", got)
	}
	if !eff.Load || !eff.Recompute {
		t.Errorf("search must load its window and compute results, got %+v", eff)
	}
	w := got.Window(cfg)
	if !w.Start.Equal(cfg.MinDate) || !w.End.Equal(model.Date(2025, time.December, 31)) {
		t.Errorf("search window = %v", w)
	}

	got, eff = Apply(cfg, got, ExitSearch{})
	if got.Searching || got.Mode != ModeWeek || got.Results != nil {
		t.Errorf("exit should restore week browsing, got %+v", got)
	}
	if !eff.Load || !eff.Grid {
		t.Errorf("exit must reload the browsing window, got %+v", eff)
	}

	if _, eff := Apply(cfg, got, ExitSearch{}); !eff.Empty() {
		t.Error("exit outside search should be ignored")
	}
}

func TestPagingClamps(t *testing.T) {
	cfg := testConfig()
	s := at(2024, time.May, 5)
	s.Searching = true
	s.Results = make([]model.Event, 25)

	got, _ := Apply(cfg, s, GoToPage{Page: 99})
	if got.Page != 3 {
		t.Errorf("page = %d, want 3", got.Page)
	}
	if _, eff := Apply(cfg, got, NextPage{}); !eff.Empty() {
		t.Error("next on last page should be ignored")
	}
	got, _ = Apply(cfg, got, PrevPage{})
	if got.Page != 2 {
		t.Errorf("page = %d, want 2", got.Page)
	}
	got, _ = Apply(cfg, got, GoToPage{Page: -5})
	if got.Page != 1 {
		t.Errorf("page = %d, want 1", got.Page)
	}

	s.Searching = false
	if _, eff := Apply(cfg, s, NextPage{}); !eff.Empty() {
		t.Error("paging outside search should be ignored")
	}
}

func TestPopupToggleHoverAndOutsideClick(t *testing.T) {
	cfg := testConfig()
	s := at(2024, time.May, 5)

	s, _ = Apply(cfg, s, SelectEvent{ID: "a"})
	if s.Anchored != "a" || s.PopupID() != "a" {
		t.Fatalf("select should anchor, got %+v", s)
	}

	s, eff := Apply(cfg, s, HoverEvent{ID: "b"})
	if s.PopupID() != "a" || eff.Popup {
		t.Errorf("hover must not replace an anchored popup, got %q %+v", s.PopupID(), eff)
	}
	s, _ = Apply(cfg, s, LeaveEvent{})
	if s.PopupID() != "a" {
		t.Error("leaving must keep the anchored popup")
	}

	s, _ = Apply(cfg, s, SelectEvent{ID: "a"})
	if s.Anchored != "" {
		t.Error("selecting the anchored event again should un-anchor it")
	}

	s, _ = Apply(cfg, s, SelectEvent{ID: "c"})
	s, _ = Apply(cfg, s, ClickOutside{})
	if s.Anchored != "" || s.Hovered != "" {
		t.Errorf("outside click should clear the popup, got %+v", s)
	}
	if _, eff := Apply(cfg, s, ClickOutside{}); !eff.Empty() {
		t.Error("outside click with nothing open should do nothing")
	}
}

func TestLabel(t *testing.T) {
	cfg := testConfig()
	s := at(2024, time.January, 10)
	if got := s.Label(cfg); got != "January 2024" {
		t.Errorf("month label = %q", got)
	}
	s.Mode = ModeWeek
	if got := s.Label(cfg); got != "Jan 7 - Jan 13" {
		t.Errorf("week label = %q", got)
	}
	s.Searching = true
	s.Query = "cup "
	if got := s.Label(cfg); got != `Search: "cup"` {
		t.Errorf("search label = %q", got)
	}
}
