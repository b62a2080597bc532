package feed

import (
	"encoding/csv"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"eventcal/internal/model"
)

const (
	DefaultTitle    = "Untitled Event"
	DefaultGame     = "Unknown"
	defaultIDPrefix = "event"
)

// ParseOptions controls schema-version differences between quarter files.
type ParseOptions struct {
	// ListSeparator splits list columns (game, tags). Defaults to ",".
	ListSeparator string
}

// dateLayouts are tried in order for start_date / end_date.
var dateLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"01/02/2006",
	"Jan 2, 2006",
	"January 2, 2006",
	"2 Jan 2006",
}

// Parse turns the text of one quarter file into events.
//
//   - A leading BOM is ignored and lines may end in LF or CR-LF.
//   - Blank lines are skipped and do not count as rows.
//   - A row whose start_date does not parse is dropped; its position still
//     counts, so later rows keep their Sequence.
//   - Every other field degrades to a default instead of dropping the row.
func Parse(text string, opts ParseOptions) []model.Event {
	if opts.ListSeparator == "" {
		opts.ListSeparator = ","
	}

	text = strings.TrimPrefix(text, "\ufeff")
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	lines := nonEmptyLines(text)
	if len(lines) == 0 {
		return nil
	}

	header := splitLine(lines[0])
	index := make(map[string]int, len(header))
	for i, h := range header {
		name := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		if _, dup := index[name]; !dup {
			index[name] = i
		}
	}

	events := make([]model.Event, 0, len(lines)-1)
	for seq, line := range lines[1:] {
		r := row{values: splitLine(line), index: index}
		ev, ok := parseRow(r, seq, opts)
		if !ok {
			continue
		}
		events = append(events, ev)
	}
	return events
}

type row struct {
	values []string
	index  map[string]int
}

// get returns the trimmed value of the first present column among names.
func (r row) get(names ...string) string {
	for _, n := range names {
		i, ok := r.index[n]
		if !ok {
			continue
		}
		if i < len(r.values) {
			return strings.TrimSpace(r.values[i])
		}
		return ""
	}
	return ""
}

func parseRow(r row, seq int, opts ParseOptions) (model.Event, bool) {
	rawStart := r.get("start_date")
	start, ok := parseDate(rawStart)
	if !ok {
		return model.Event{}, false
	}

	end, ok := parseDate(r.get("end_date"))
	if !ok || end.Before(start) {
		end = start
	}

	title := r.get("title")
	idPrefix := title
	if idPrefix == "" {
		idPrefix = defaultIDPrefix
	}
	if title == "" {
		title = DefaultTitle
	}

	games := splitList(r.get("game", "games"), opts.ListSeparator)
	if len(games) == 0 {
		games = []string{DefaultGame}
	}

	return model.Event{
		ID:            idPrefix + "-" + rawStart + "-" + strconv.Itoa(seq),
		Title:         title,
		StartDate:     start,
		EndDate:       end,
		StartTime:     r.get("start_time"),
		EndTime:       r.get("end_time"),
		Games:         games,
		Tags:          splitList(r.get("tags"), opts.ListSeparator),
		Summary:       r.get("summary"),
		NumberOfChats: parseCount(r.get("number_of_chats")),
		Revenue:       parseAmount(r.get("revenue")),
		Sequence:      seq,
	}, true
}

func nonEmptyLines(text string) []string {
	raw := strings.Split(text, "\n")
	out := make([]string, 0, len(raw))
	for _, l := range raw {
		l = strings.TrimSuffix(l, "\r")
		if strings.TrimSpace(l) == "" {
			continue
		}
		out = append(out, l)
	}
	return out
}

// splitLine splits one CSV line, honouring double-quote quoting and ""
// escapes. A malformed line still yields whatever fields could be read.
func splitLine(line string) []string {
	cr := csv.NewReader(strings.NewReader(line))
	cr.LazyQuotes = true
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	fields, err := cr.Read()
	if err != nil && err != io.EOF && fields == nil {
		return strings.Split(line, ",")
	}
	return fields
}

func parseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return model.Day(t), true
		}
	}
	return time.Time{}, false
}

func splitList(s, sep string) []string {
	if s == "" {
		return []string{}
	}
	parts := strings.Split(s, sep)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		out = append(out, p)
	}
	return out
}

func parseAmount(s string) *float64 {
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

func parseCount(s string) *int {
	v := parseAmount(s)
	if v == nil || *v != math.Trunc(*v) || math.Abs(*v) > math.MaxInt32 {
		return nil
	}
	n := int(*v)
	return &n
}
