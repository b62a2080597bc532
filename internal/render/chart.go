package render

import (
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"eventcal/internal/metrics"
)

const barWidth = 20

// Chart draws the series as a table with proportional bars for chats and
// revenue. Missing values show as "-" and get no bar.
func (r *Renderer) Chart(s metrics.Series) string {
	t := newTable(fmt.Sprintf("Chats and revenue, %s to %s", s.From.Format("2006-01-02"), s.To.Format("2006-01-02")))
	t.AppendHeader(table.Row{"Date", "Event", "Chats", "", "Revenue", ""})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 3, Align: text.AlignRight},
		{Number: 5, Align: text.AlignRight},
	})

	if s.Empty() {
		t.AppendRow(table.Row{"-", "No data in selected date range.", "", "", "", ""})
	}
	for _, p := range s.Points {
		chats, chatsBar := "-", ""
		if p.Chats != nil {
			chats = r.printer.Sprint(*p.Chats)
			chatsBar = bar(float64(*p.Chats), float64(s.MaxChats))
		}
		revenue, revenueBar := "-", ""
		if p.Revenue != nil {
			revenue = r.Currency(*p.Revenue)
			revenueBar = bar(*p.Revenue, s.MaxRevenue)
		}
		t.AppendRow(table.Row{
			p.Date.Format("2006-01-02"),
			text.Snip(r.Clean(p.Title), 30, "~"),
			chats, chatsBar,
			revenue, revenueBar,
		})
	}
	t.AppendFooter(table.Row{"Total", fmt.Sprintf("%d events", len(s.Points)), r.printer.Sprint(s.TotalChats), "", r.Currency(s.TotalRevenue), ""})
	return t.Render() + "\n"
}

func bar(v, peak float64) string {
	if peak <= 0 || v <= 0 {
		return ""
	}
	n := int(v / peak * barWidth)
	if n == 0 {
		n = 1
	}
	return strings.Repeat("#", min(n, barWidth))
}
