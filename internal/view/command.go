package view

import "strings"

// Mode is the browsing layout of the calendar.
type Mode string

const (
	ModeMonth Mode = "month"
	ModeWeek  Mode = "week"
)

// ParseMode accepts "month" or "week" in any case.
func ParseMode(s string) (Mode, bool) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case ModeMonth:
		return ModeMonth, true
	case ModeWeek:
		return ModeWeek, true
	}
	return "", false
}

// Command is one user action. Front-ends translate their input events into
// commands and hand them to Controller.Dispatch.
type Command interface {
	name() string
}

// Navigate moves the anchor by Delta periods (months or weeks).
type Navigate struct{ Delta int }

// SetMode switches between month and week layout.
type SetMode struct{ Mode Mode }

// SetDate jumps to a date typed as YYYY-MM-DD.
type SetDate struct{ Value string }

// Today jumps to the current date.
type Today struct{}

// SetQuery changes the live text filter.
type SetQuery struct{ Text string }

// SetTag changes the tag filter; "" clears it.
type SetTag struct{ Tag string }

// SubmitSearch enters search mode with Query.
type SubmitSearch struct{ Query string }

type ExitSearch struct{}

type GoToPage struct{ Page int }

type NextPage struct{}

type PrevPage struct{}

// SelectEvent pins (or unpins) the detail popup of an event.
type SelectEvent struct{ ID string }

type HoverEvent struct{ ID string }

type LeaveEvent struct{}

// ClickOutside is a click that hit neither an event nor the popup.
type ClickOutside struct{}

func (Navigate) name() string     { return "navigate" }
func (SetMode) name() string      { return "set_mode" }
func (SetDate) name() string      { return "set_date" }
func (Today) name() string        { return "today" }
func (SetQuery) name() string     { return "set_query" }
func (SetTag) name() string       { return "set_tag" }
func (SubmitSearch) name() string { return "submit_search" }
func (ExitSearch) name() string   { return "exit_search" }
func (GoToPage) name() string     { return "go_to_page" }
func (NextPage) name() string     { return "next_page" }
func (PrevPage) name() string     { return "prev_page" }
func (SelectEvent) name() string  { return "select_event" }
func (HoverEvent) name() string   { return "hover_event" }
func (LeaveEvent) name() string   { return "leave_event" }
func (ClickOutside) name() string { return "click_outside" }
