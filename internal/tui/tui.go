// Package tui is the interactive terminal front-end. It turns key presses
// into view commands and draws the snapshots the controller hands back.
package tui

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	appLog "eventcal/internal/log"
	"eventcal/internal/render"
	"eventcal/internal/view"
)

var (
	appStyle    = lipgloss.NewStyle().Margin(0, 1)
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	errStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	cursorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	inputStyle  = lipgloss.NewStyle().Border(lipgloss.NormalBorder(), true).Padding(0, 1)
)

const helpText = "←/→ move · m/w layout · t today · g date · / search · f filter · # tag · tab next · enter pin · esc close · n/p page · q quit"

// snapshotMsg carries the result of one Dispatch back into Update.
type snapshotMsg struct {
	seq  int
	snap view.Snapshot
	err  error
}

// pending is one queued controller call; a nil cmd means Init.
type pending struct {
	seq int
	cmd view.Command
}

// commandQueue applies controller calls in the order Update issued them.
// bubbletea runs each tea.Cmd on its own goroutine, so whichever Cmd runs
// first drains everything queued so far and the rest find nothing to do.
type commandQueue struct {
	mu    sync.Mutex // guards items
	items []pending
	run   sync.Mutex // held while draining
}

func (q *commandQueue) push(p pending) {
	q.mu.Lock()
	q.items = append(q.items, p)
	q.mu.Unlock()
}

func (q *commandQueue) take() []pending {
	q.mu.Lock()
	defer q.mu.Unlock()
	items := q.items
	q.items = nil
	return items
}

type Model struct {
	ctx      context.Context
	ctrl     *view.Controller
	renderer *render.Renderer
	queue    *commandQueue

	snap   view.Snapshot
	seq    int
	shown  int
	cursor int
	prompt prompt
	input  textinput.Model
	err    error
}

func New(ctx context.Context, ctrl *view.Controller, renderer *render.Renderer) *Model {
	ti := textinput.New()
	ti.CharLimit = 128
	ti.Width = 40
	return &Model{
		ctx:      ctx,
		ctrl:     ctrl,
		renderer: renderer,
		queue:    &commandQueue{},
		input:    ti,
	}
}

// Run starts the program in the alternate screen and blocks until the user
// quits or ctx ends. Callers should point the application log away from
// the terminal first.
func Run(ctx context.Context, ctrl *view.Controller, renderer *render.Renderer) error {
	p := tea.NewProgram(New(ctx, ctrl, renderer), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}

func (m *Model) Init() tea.Cmd {
	return m.enqueue(nil)
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case snapshotMsg:
		// Replies can overtake each other; only the newest is drawn.
		if msg.seq < m.shown {
			return m, nil
		}
		m.shown = msg.seq
		m.snap = msg.snap
		m.err = msg.err
		m.cursor = clampCursor(m.cursor, len(eventIDs(m.snap)))
		return m, nil
	case tea.KeyMsg:
		if m.prompt != promptNone {
			return m.updatePrompt(msg)
		}
		return m.updateBrowse(msg)
	}
	return m, nil
}

func (m *Model) updateBrowse(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	a := browseKey(msg.String(), m.snap, m.cursor)
	m.cursor = a.cursor
	if a.quit {
		appLog.Debug("tui quit", "session", m.snap.Session)
		return m, tea.Quit
	}
	if a.open != promptNone {
		m.prompt = a.open
		m.input.Reset()
		m.input.Prompt = promptLabel(a.open)
		if a.open == promptFilter {
			m.input.SetValue(m.snap.Query)
		}
		return m, m.input.Focus()
	}
	if a.cmd == nil {
		return m, nil
	}
	return m, m.dispatch(a.cmd)
}

func (m *Model) updatePrompt(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		p, value := m.prompt, m.input.Value()
		m.closePrompt()
		if cmd := submitPrompt(p, value); cmd != nil {
			m.cursor = 0
			return m, m.dispatch(cmd)
		}
		return m, nil
	case "esc", "ctrl+c":
		m.closePrompt()
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if m.prompt == promptFilter {
		return m, tea.Batch(cmd, m.dispatch(view.SetQuery{Text: m.input.Value()}))
	}
	return m, cmd
}

func (m *Model) closePrompt() {
	m.prompt = promptNone
	m.input.Blur()
}

func (m *Model) dispatch(cmd view.Command) tea.Cmd {
	return m.enqueue(cmd)
}

// enqueue records cmd in issue order and returns a tea.Cmd that applies
// every call queued so far. Only the last reply of a drain is sent back.
func (m *Model) enqueue(cmd view.Command) tea.Cmd {
	m.seq++
	m.queue.push(pending{seq: m.seq, cmd: cmd})
	return m.drain
}

func (m *Model) drain() tea.Msg {
	m.queue.run.Lock()
	defer m.queue.run.Unlock()

	items := m.queue.take()
	if len(items) == 0 {
		return nil
	}
	var msg snapshotMsg
	for _, p := range items {
		var snap view.Snapshot
		var err error
		if p.cmd == nil {
			snap, err = m.ctrl.Init(m.ctx)
		} else {
			snap, err = m.ctrl.Dispatch(m.ctx, p.cmd)
		}
		msg = snapshotMsg{seq: p.seq, snap: snap, err: err}
		if err != nil {
			appLog.Debug("tui dispatch failed", "seq", p.seq, "error", err.Error())
		}
	}
	return msg
}

func (m *Model) View() string {
	var b strings.Builder

	header := titleStyle.Render("eventcal")
	var facets []string
	if m.snap.Searching {
		facets = append(facets, "search")
	} else {
		facets = append(facets, string(m.snap.Mode))
	}
	if m.snap.Query != "" && !m.snap.Searching {
		facets = append(facets, fmt.Sprintf("filter %q", m.snap.Query))
	}
	if m.snap.Tag != "" {
		facets = append(facets, "tag "+m.snap.Tag)
	}
	b.WriteString(header + " " + statusStyle.Render(strings.Join(facets, " · ")) + "\n\n")

	b.WriteString(m.renderer.Snapshot(m.snap))

	if ids := eventIDs(m.snap); len(ids) > 0 {
		b.WriteString(cursorStyle.Render(fmt.Sprintf("> %d/%d %s", m.cursor+1, len(ids), ids[m.cursor])) + "\n")
	}
	if m.prompt != promptNone {
		b.WriteString(inputStyle.Render(m.input.View()) + "\n")
	}
	if m.err != nil {
		b.WriteString(errStyle.Render(m.err.Error()) + "\n")
	}
	b.WriteString(statusStyle.Render(helpText))
	return appStyle.Render(b.String())
}

func promptLabel(p prompt) string {
	switch p {
	case promptSearch:
		return "search: "
	case promptFilter:
		return "filter: "
	case promptDate:
		return "date (YYYY-MM-DD): "
	}
	return "> "
}
