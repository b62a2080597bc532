package search

import (
	"reflect"
	"testing"
	"time"

	"eventcal/internal/model"
)

func ev(title string, start, end time.Time, seq int, tags ...string) model.Event {
	return model.Event{
		ID:        title,
		Title:     title,
		StartDate: start,
		EndDate:   end,
		Games:     []string{"Unknown"},
		Tags:      tags,
		Sequence:  seq,
	}
}

func titles(events []model.Event) []string {
	out := make([]string, 0, len(events))
	for _, e := range events {
		out = append(out, e.Title)
	}
	return out
}

var (
	jan1 = model.Date(2024, time.January, 1)
	jan2 = model.Date(2024, time.January, 2)
	jan3 = model.Date(2024, time.January, 3)
)

func TestMatches(t *testing.T) {
	e := model.Event{
		Title:   "Spring Finals",
		Games:   []string{"Chess", "Go"},
		Tags:    []string{"esports", "live"},
		Summary: "Best of five",
	}
	tests := []struct {
		query string
		want  bool
	}{
		{"", true},
		{"   ", true},
		{"spring", true},
		{"CHESS", true},
		{"chess, go", true},
		{"esports", true},
		{"of FIVE", true},
		{"poker", false},
	}
	for _, tt := range tests {
		if got := Matches(e, tt.query); got != tt.want {
			t.Errorf("Matches(%q) = %v, want %v", tt.query, got, tt.want)
		}
	}
}

func TestFilterEmptyQueryKeepsOrder(t *testing.T) {
	events := []model.Event{ev("b", jan2, jan2, 1), ev("a", jan1, jan1, 0), ev("c", jan3, jan3, 2)}
	got := Filter(events, "", "")
	if !reflect.DeepEqual(got, events) {
		t.Errorf("Filter with empty query changed events: %v", titles(got))
	}
}

func TestFilterTagIsExactAndAnded(t *testing.T) {
	events := []model.Event{
		ev("Alpha cup", jan1, jan1, 0, "live"),
		ev("Alpha show", jan1, jan1, 1, "lively"),
		ev("Beta cup", jan1, jan1, 2, "live"),
	}
	if got := titles(Filter(events, "alpha", "live")); !reflect.DeepEqual(got, []string{"Alpha cup"}) {
		t.Errorf("got %v", got)
	}
	if got := titles(Filter(events, "", "live")); !reflect.DeepEqual(got, []string{"Alpha cup", "Beta cup"}) {
		t.Errorf("got %v", got)
	}
}

func TestOnDayIsInclusiveRange(t *testing.T) {
	e := ev("span", jan1, jan3, 0)
	for _, d := range []time.Time{jan1, jan2, jan3} {
		if !OnDay(e, d) {
			t.Errorf("expected %s inside", d.Format("2006-01-02"))
		}
	}
	if OnDay(e, model.Date(2024, time.January, 4)) || OnDay(e, model.Date(2023, time.December, 31)) {
		t.Error("days outside the range matched")
	}
}

func TestForDayOrdersBySequence(t *testing.T) {
	events := []model.Event{
		ev("late", jan2, jan2, 5),
		ev("span", jan1, jan3, 2),
		ev("early", jan2, jan2, 0),
		ev("other", jan3, jan3, 1),
	}
	if got := titles(ForDay(events, jan2)); !reflect.DeepEqual(got, []string{"early", "span", "late"}) {
		t.Errorf("got %v", got)
	}
}

func TestCap(t *testing.T) {
	events := []model.Event{ev("a", jan1, jan1, 0), ev("b", jan1, jan1, 1), ev("c", jan1, jan1, 2), ev("d", jan1, jan1, 3), ev("e", jan1, jan1, 4)}
	tests := []struct {
		limit      int
		wantLen    int
		wantHidden int
	}{
		{3, 3, 2},
		{5, 5, 0},
		{10, 5, 0},
		{0, 5, 0},
	}
	for _, tt := range tests {
		visible, hidden := Cap(events, tt.limit)
		if len(visible) != tt.wantLen || hidden != tt.wantHidden {
			t.Errorf("Cap(%d) = %d visible, %d hidden", tt.limit, len(visible), hidden)
		}
	}
}

func TestSortForSearch(t *testing.T) {
	events := []model.Event{
		ev("old", jan1, jan1, 0),
		ev("new-2", jan3, jan3, 2),
		ev("mid", jan2, jan2, 1),
		ev("new-1", jan3, jan3, 1),
	}
	got := titles(SortForSearch(events))
	want := []string{"new-1", "new-2", "mid", "old"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
	if events[0].Title != "old" {
		t.Error("input slice was reordered")
	}
}

func TestPaginateConcatenationReproducesResults(t *testing.T) {
	for _, n := range []int{0, 1, 9, 10, 11, 25, 30} {
		results := make([]model.Event, n)
		for i := range results {
			results[i] = ev("e", jan1, jan1, i)
		}
		first := Paginate(results, 1, 10)
		wantPages := (n + 9) / 10
		if wantPages == 0 {
			wantPages = 1
		}
		if first.TotalPages != wantPages {
			t.Errorf("n=%d: pages = %d, want %d", n, first.TotalPages, wantPages)
		}

		var all []model.Event
		for p := 1; p <= first.TotalPages; p++ {
			all = append(all, Paginate(results, p, 10).Items...)
		}
		if len(all) != n {
			t.Fatalf("n=%d: concatenated %d items", n, len(all))
		}
		for i := range all {
			if all[i].Sequence != i {
				t.Fatalf("n=%d: item %d has sequence %d", n, i, all[i].Sequence)
			}
		}
	}
}

func TestPaginateClampsPage(t *testing.T) {
	results := make([]model.Event, 25)
	if p := Paginate(results, 9, 10); p.Number != 3 || len(p.Items) != 5 {
		t.Errorf("high page: %d/%d items", p.Number, len(p.Items))
	}
	if p := Paginate(results, -2, 10); p.Number != 1 || len(p.Items) != 10 {
		t.Errorf("low page: %d/%d items", p.Number, len(p.Items))
	}
	if p := Paginate(nil, 4, 10); p.Number != 1 || p.TotalPages != 1 || len(p.Items) != 0 {
		t.Errorf("empty: %+v", p)
	}
}

func TestTags(t *testing.T) {
	events := []model.Event{ev("a", jan1, jan1, 0, "live", "cup"), ev("b", jan1, jan1, 1, "cup")}
	if got := Tags(events); !reflect.DeepEqual(got, []string{"cup", "live"}) {
		t.Errorf("got %v", got)
	}
}

func TestOverlapping(t *testing.T) {
	d := func(m time.Month, day int) time.Time { return model.Date(2024, m, day) }
	events := []model.Event{
		ev("before", d(time.January, 1), d(time.January, 31), 0),
		ev("spans in", d(time.January, 30), d(time.February, 2), 1),
		ev("inside", d(time.February, 10), d(time.February, 10), 2),
		ev("spans out", d(time.February, 28), d(time.March, 5), 3),
		ev("after", d(time.March, 1), d(time.March, 1), 4),
	}
	r := model.Range{Start: d(time.February, 1), End: d(time.February, 29)}

	got := titles(Overlapping(events, r))
	want := []string{"spans in", "inside", "spans out"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Overlapping = %v, want %v", got, want)
	}
}
