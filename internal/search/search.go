// Package search filters, orders and pages the loaded event set. Every
// function here is pure and leaves its input slice untouched.
package search

import (
	"sort"
	"strings"
	"time"

	"eventcal/internal/model"
)

// Matches reports whether query occurs, case-insensitively, in the title,
// games, tags or summary of e. A blank query matches everything.
func Matches(e model.Event, query string) bool {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return true
	}
	fields := [...]string{
		e.Title,
		strings.Join(e.Games, ", "),
		strings.Join(e.Tags, ", "),
		e.Summary,
	}
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), q) {
			return true
		}
	}
	return false
}

// Filter keeps events matching query and, when tag is non-empty, carrying
// exactly that tag. Order is preserved.
func Filter(events []model.Event, query, tag string) []model.Event {
	out := make([]model.Event, 0, len(events))
	for _, e := range events {
		if tag != "" && !e.HasTag(tag) {
			continue
		}
		if !Matches(e, query) {
			continue
		}
		out = append(out, e)
	}
	return out
}

// OnDay reports whether day falls within [e.StartDate, e.EndDate].
func OnDay(e model.Event, day time.Time) bool {
	return model.Range{Start: e.StartDate, End: e.EndDate}.Contains(day)
}

// Overlapping keeps the events whose date span intersects r, in order.
func Overlapping(events []model.Event, r model.Range) []model.Event {
	var out []model.Event
	for _, e := range events {
		if !e.StartDate.After(r.End) && !e.EndDate.Before(r.Start) {
			out = append(out, e)
		}
	}
	return out
}

// ForDay returns the events on day ordered by Sequence.
func ForDay(events []model.Event, day time.Time) []model.Event {
	var out []model.Event
	for _, e := range events {
		if OnDay(e, day) {
			out = append(out, e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Sequence < out[j].Sequence
	})
	return out
}

// Cap returns at most limit events and how many were left out. A limit
// <= 0 disables the cap.
func Cap(events []model.Event, limit int) (visible []model.Event, hidden int) {
	if limit <= 0 || len(events) <= limit {
		return events, 0
	}
	return events[:limit], len(events) - limit
}

// SortForSearch returns a copy ordered newest first, Sequence breaking ties.
func SortForSearch(events []model.Event) []model.Event {
	out := append([]model.Event(nil), events...)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if !a.StartDate.Equal(b.StartDate) {
			return a.StartDate.After(b.StartDate)
		}
		return a.Sequence < b.Sequence
	})
	return out
}

// Page is one slice of a paginated result set.
type Page struct {
	Items      []model.Event
	Number     int
	TotalPages int
	Total      int
}

// TotalPages is ceil(n/size), never less than 1.
func TotalPages(n, size int) int {
	if size <= 0 || n <= 0 {
		return 1
	}
	return (n + size - 1) / size
}

// ClampPage pins page into [1, totalPages].
func ClampPage(page, totalPages int) int {
	if page < 1 {
		return 1
	}
	if page > totalPages {
		return totalPages
	}
	return page
}

// Paginate returns the requested page of results, clamping the page number.
// A size <= 0 puts everything on one page.
func Paginate(results []model.Event, page, size int) Page {
	total := len(results)
	pages := TotalPages(total, size)
	page = ClampPage(page, pages)

	if size <= 0 {
		return Page{Items: results, Number: 1, TotalPages: 1, Total: total}
	}
	from := (page - 1) * size
	to := from + size
	if to > total {
		to = total
	}
	if from > total {
		from = total
	}
	return Page{Items: results[from:to], Number: page, TotalPages: pages, Total: total}
}

// Tags lists the distinct tags present in events, sorted.
func Tags(events []model.Event) []string {
	seen := make(map[string]struct{})
	for _, e := range events {
		for _, t := range e.Tags {
			seen[t] = struct{}{}
		}
	}
	out := make([]string, 0, len(seen))
	for t := range seen {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}
