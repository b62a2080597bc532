// Package render turns view snapshots and metric series into terminal
// text. It draws what it is given and makes no decisions of its own.
package render

import (
	"fmt"
	"html"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"eventcal/internal/model"
	"eventcal/internal/view"
)

const titleWidth = 22

// Renderer holds the formatting state shared by all views.
type Renderer struct {
	printer *message.Printer
	policy  *bluemonday.Policy
}

// New builds a renderer for lang. The zero tag means American English.
func New(lang language.Tag) *Renderer {
	if lang == language.Und {
		lang = language.AmericanEnglish
	}
	return &Renderer{
		printer: message.NewPrinter(lang),
		policy:  bluemonday.StrictPolicy(),
	}
}

// Currency formats an amount in US dollars, e.g. "$1,234.50".
func (r *Renderer) Currency(v float64) string {
	s := r.printer.Sprint(currency.Symbol(currency.USD.Amount(v)))
	return strings.Replace(s, " ", "", 1)
}

// Clean strips any markup from CSV free text before it reaches the
// terminal.
func (r *Renderer) Clean(s string) string {
	return strings.TrimSpace(html.UnescapeString(r.policy.Sanitize(s)))
}

// Snapshot draws whichever view the snapshot describes, followed by the
// popup when one is open.
func (r *Renderer) Snapshot(snap view.Snapshot) string {
	var b strings.Builder
	switch {
	case snap.Searching:
		b.WriteString(r.Search(snap))
	case snap.Mode == view.ModeWeek:
		b.WriteString(r.Week(snap))
	default:
		b.WriteString(r.Month(snap))
	}
	if snap.Popup != nil {
		b.WriteString("\n")
		b.WriteString(r.Popup(*snap.Popup, snap.PopupAnchored))
	}
	return b.String()
}

// Popup is the event detail block.
func (r *Renderer) Popup(e model.Event, anchored bool) string {
	var b strings.Builder
	title := r.Clean(e.Title)
	if anchored {
		title += " [pinned]"
	}
	fmt.Fprintln(&b, title)
	fmt.Fprintf(&b, "Game:    %s\n", r.Clean(strings.Join(e.Games, ", ")))
	fmt.Fprintf(&b, "Date:    %s to %s\n", e.StartDate.Format("2006-01-02"), e.EndDate.Format("2006-01-02"))
	fmt.Fprintf(&b, "Time:    %s to %s\n", orDash(e.StartTime), orDash(e.EndTime))
	if len(e.Tags) > 0 {
		fmt.Fprintf(&b, "Tags:    %s\n", r.Clean(strings.Join(e.Tags, ", ")))
	}
	chats := "-"
	if e.NumberOfChats != nil {
		chats = r.printer.Sprint(*e.NumberOfChats)
	}
	fmt.Fprintf(&b, "Chats:   %s\n", chats)
	revenue := "-"
	if e.Revenue != nil {
		revenue = r.Currency(*e.Revenue)
	}
	fmt.Fprintf(&b, "Revenue: %s\n", revenue)
	fmt.Fprintf(&b, "Summary: %s\n", orDash(r.Clean(e.Summary)))
	return b.String()
}

// newTable returns a light-style table with an upper-case header and a
// footer left as written.
func newTable(title string) table.Writer {
	style := table.StyleLight
	style.Format.Footer = text.FormatDefault
	t := table.NewWriter()
	t.SetStyle(style)
	t.SetTitle("%s", title)
	return t
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}
