// Package metrics builds the chats/revenue series shown by the chart
// view for a user-chosen date range.
package metrics

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"eventcal/internal/config"
	"eventcal/internal/model"
	"eventcal/internal/quarter"
)

// ErrInvalidRange is returned when a range cannot be used: an unparsable
// bound or a start after its end.
var ErrInvalidRange = errors.New("invalid date range")

// Loader is satisfied by *quarter.Store.
type Loader interface {
	Load(ctx context.Context, keys []quarter.Key)
	Events() []model.Event
}

// Point is one event on the chart.
type Point struct {
	Date    time.Time
	Title   string
	Chats   *int
	Revenue *float64
}

// Series is the chart data for [From, To].
type Series struct {
	From, To time.Time
	Points   []Point

	TotalChats   int
	TotalRevenue float64

	// MaxChats and MaxRevenue scale the chart axes and are never below 1.
	MaxChats   int
	MaxRevenue float64
}

// Empty reports whether the range holds no events.
func (s Series) Empty() bool { return len(s.Points) == 0 }

// DefaultRange is six months back from today (not before minDate) through
// today.
func DefaultRange(today, minDate time.Time) model.Range {
	today = model.Day(today)
	from := model.ClampMin(model.AddMonthsClamped(today, -6), model.Day(minDate))
	return model.Range{Start: from, End: today}
}

// ParseRange reads two YYYY-MM-DD bounds.
func ParseRange(from, to string) (model.Range, error) {
	start, err := time.Parse(config.DateLayout, strings.TrimSpace(from))
	if err != nil {
		return model.Range{}, fmt.Errorf("%w: start %q", ErrInvalidRange, from)
	}
	end, err := time.Parse(config.DateLayout, strings.TrimSpace(to))
	if err != nil {
		return model.Range{}, fmt.Errorf("%w: end %q", ErrInvalidRange, to)
	}
	if start.After(end) {
		return model.Range{}, fmt.Errorf("%w: %s is after %s", ErrInvalidRange, from, to)
	}
	return model.Range{Start: start, End: end}, nil
}

// Compute loads the quarters covering r and returns the events starting
// inside it, ordered by start date. Missing metrics are left out of the
// totals rather than counted as zero.
func Compute(ctx context.Context, loader Loader, r model.Range) (Series, error) {
	r = model.Range{Start: model.Day(r.Start), End: model.Day(r.End)}
	if r.Start.After(r.End) {
		return Series{}, ErrInvalidRange
	}
	if err := ctx.Err(); err != nil {
		return Series{}, err
	}

	loader.Load(ctx, quarter.Keys(r))

	var events []model.Event
	for _, e := range loader.Events() {
		if r.Contains(e.StartDate) {
			events = append(events, e)
		}
	}
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].StartDate.Before(events[j].StartDate)
	})

	s := Series{From: r.Start, To: r.End, MaxChats: 1, MaxRevenue: 1}
	for _, e := range events {
		s.Points = append(s.Points, Point{Date: e.StartDate, Title: e.Title, Chats: e.NumberOfChats, Revenue: e.Revenue})
		if e.NumberOfChats != nil {
			s.TotalChats += *e.NumberOfChats
			s.MaxChats = max(s.MaxChats, *e.NumberOfChats)
		}
		if e.Revenue != nil {
			s.TotalRevenue += *e.Revenue
			s.MaxRevenue = max(s.MaxRevenue, *e.Revenue)
		}
	}
	return s, ctx.Err()
}
