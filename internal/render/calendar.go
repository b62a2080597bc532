package render

import (
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"eventcal/internal/model"
	"eventcal/internal/view"
)

// Month draws the six-row grid. Days outside the month are dimmed with
// parentheses, today carries a '*'.
func (r *Renderer) Month(snap view.Snapshot) string {
	t := newTable(snap.Label)

	header := table.Row{}
	for i := 0; i < 7 && i < len(snap.Days); i++ {
		header = append(header, snap.Days[i].Date.Format("Mon"))
	}
	t.AppendHeader(header)

	configs := make([]table.ColumnConfig, 0, 7)
	for i := 1; i <= 7; i++ {
		configs = append(configs, table.ColumnConfig{Number: i, WidthMax: titleWidth + 2})
	}
	t.SetColumnConfigs(configs)

	for start := 0; start < len(snap.Days); start += 7 {
		end := min(start+7, len(snap.Days))
		row := table.Row{}
		for _, cell := range snap.Days[start:end] {
			row = append(row, r.cell(cell))
		}
		t.AppendRow(row)
		if end < len(snap.Days) {
			t.AppendSeparator()
		}
	}
	return t.Render() + "\n"
}

func (r *Renderer) cell(c view.DayCell) string {
	day := fmt.Sprintf("%d", c.Date.Day())
	if !c.InPeriod {
		day = "(" + day + ")"
	}
	if c.Today {
		day += "*"
	}
	lines := []string{day}
	for _, e := range c.Events {
		lines = append(lines, "- "+text.Snip(r.Clean(e.Title), titleWidth, "~"))
	}
	if c.Hidden > 0 {
		lines = append(lines, fmt.Sprintf("+%d more", c.Hidden))
	}
	return strings.Join(lines, "\n")
}

// Week lists every event of the seven days, uncapped.
func (r *Renderer) Week(snap view.Snapshot) string {
	t := newTable(snap.Label)
	t.AppendHeader(table.Row{"Day", "Event", "Time", "Game", "ID"})

	for _, c := range snap.Days {
		day := c.Date.Format("Mon Jan 2")
		if c.Today {
			day += " *"
		}
		if len(c.Events) == 0 {
			t.AppendRow(table.Row{day, "-", "", "", ""})
			continue
		}
		for i, e := range c.Events {
			label := ""
			if i == 0 {
				label = day
			}
			t.AppendRow(table.Row{label, r.Clean(e.Title), timeRange(e), r.Clean(strings.Join(e.Games, ", ")), e.ID})
		}
	}
	return t.Render() + "\n"
}

// Search draws the current result page.
func (r *Renderer) Search(snap view.Snapshot) string {
	t := newTable(snap.Label)
	t.AppendHeader(table.Row{"Date", "Event", "Game", "Tags", "ID"})

	page := snap.Results
	if len(page.Items) == 0 {
		t.AppendRow(table.Row{"-", "No matching events.", "", "", ""})
	}
	for _, e := range page.Items {
		t.AppendRow(table.Row{
			dateSpan(e),
			r.Clean(e.Title),
			r.Clean(strings.Join(e.Games, ", ")),
			r.Clean(strings.Join(e.Tags, ", ")),
			e.ID,
		})
	}
	t.AppendFooter(table.Row{fmt.Sprintf("Page %d of %d", page.Number, page.TotalPages), fmt.Sprintf("%d results", page.Total), "", "", ""})
	return t.Render() + "\n"
}

func dateSpan(e model.Event) string {
	start := e.StartDate.Format("2006-01-02")
	if e.EndDate.Equal(e.StartDate) {
		return start
	}
	return start + " .. " + e.EndDate.Format("2006-01-02")
}

func timeRange(e model.Event) string {
	switch {
	case e.StartTime != "" && e.EndTime != "":
		return e.StartTime + "-" + e.EndTime
	default:
		return e.StartTime
	}
}
