package tui

import (
	"eventcal/internal/view"
)

// prompt is the line editor currently open at the bottom of the screen.
type prompt int

const (
	promptNone prompt = iota
	promptSearch
	promptFilter
	promptDate
)

// action is what one key press in browse mode asks for. At most one of
// cmd, open and quit is meaningful; cursor is always the new cursor.
type action struct {
	cmd    view.Command
	open   prompt
	cursor int
	quit   bool
}

// browseKey maps a key outside any prompt. cursor indexes eventIDs(snap).
func browseKey(key string, snap view.Snapshot, cursor int) action {
	ids := eventIDs(snap)
	a := action{cursor: clampCursor(cursor, len(ids))}

	switch key {
	case "q", "ctrl+c":
		a.quit = true
	case "left", "h":
		a.cmd, a.cursor = view.Navigate{Delta: -1}, 0
	case "right", "l":
		a.cmd, a.cursor = view.Navigate{Delta: 1}, 0
	case "m":
		a.cmd = view.SetMode{Mode: view.ModeMonth}
	case "w":
		a.cmd = view.SetMode{Mode: view.ModeWeek}
	case "t":
		a.cmd, a.cursor = view.Today{}, 0
	case "g":
		a.open = promptDate
	case "/":
		a.open = promptSearch
	case "f":
		a.open = promptFilter
	case "#":
		a.cmd = view.SetTag{Tag: nextTag(snap.Tags, snap.Tag)}
	case "n", "pgdown":
		a.cmd, a.cursor = view.NextPage{}, 0
	case "p", "pgup":
		a.cmd, a.cursor = view.PrevPage{}, 0
	case "tab", "down", "j":
		if len(ids) > 0 {
			a.cursor = (a.cursor + 1) % len(ids)
			a.cmd = view.HoverEvent{ID: ids[a.cursor]}
		}
	case "shift+tab", "up", "k":
		if len(ids) > 0 {
			a.cursor = (a.cursor - 1 + len(ids)) % len(ids)
			a.cmd = view.HoverEvent{ID: ids[a.cursor]}
		}
	case "enter", " ":
		if len(ids) > 0 {
			a.cmd = view.SelectEvent{ID: ids[a.cursor]}
		}
	case "esc":
		switch {
		case snap.PopupAnchored:
			a.cmd = view.ClickOutside{}
		case snap.Popup != nil:
			a.cmd = view.LeaveEvent{}
		case snap.Searching:
			a.cmd, a.cursor = view.ExitSearch{}, 0
		}
	}
	return a
}

// submitPrompt turns the text of a closed prompt into a command. The live
// filter has already been applied keystroke by keystroke.
func submitPrompt(p prompt, value string) view.Command {
	switch p {
	case promptSearch:
		return view.SubmitSearch{Query: value}
	case promptDate:
		return view.SetDate{Value: value}
	}
	return nil
}

// eventIDs lists the events a cursor can visit, in screen order. Multi-day
// events appear once.
func eventIDs(snap view.Snapshot) []string {
	if snap.Searching {
		ids := make([]string, 0, len(snap.Results.Items))
		for _, e := range snap.Results.Items {
			ids = append(ids, e.ID)
		}
		return ids
	}
	seen := make(map[string]bool)
	var ids []string
	for _, c := range snap.Days {
		for _, e := range c.Events {
			if seen[e.ID] {
				continue
			}
			seen[e.ID] = true
			ids = append(ids, e.ID)
		}
	}
	return ids
}

// nextTag cycles through tags and back to no tag.
func nextTag(tags []string, current string) string {
	if len(tags) == 0 {
		return ""
	}
	if current == "" {
		return tags[0]
	}
	for i, t := range tags {
		if t == current {
			if i+1 < len(tags) {
				return tags[i+1]
			}
			return ""
		}
	}
	return ""
}

func clampCursor(c, n int) int {
	if n == 0 || c < 0 {
		return 0
	}
	if c >= n {
		return n - 1
	}
	return c
}
