package view

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	appLog "eventcal/internal/log"
	"eventcal/internal/model"
	"eventcal/internal/quarter"
	"eventcal/internal/search"
)

// Loader is the slice of quarter.Store the controller depends on.
type Loader interface {
	Load(ctx context.Context, keys []quarter.Key)
	Events() []model.Event
}

// Controller owns one session's state and working set. Commands are
// serialized: each Dispatch sees the state left by the previous one.
type Controller struct {
	cfg     Config
	store   Loader
	session string

	mu     sync.Mutex
	state  State
	events []model.Event
}

func NewController(cfg Config, store Loader) *Controller {
	return &Controller{
		cfg:     cfg,
		store:   store,
		session: uuid.NewString(),
		state:   NewState(cfg),
	}
}

// Session identifies this controller in logs.
func (c *Controller) Session() string { return c.session }

// Config returns the view configuration in use.
func (c *Controller) Config() Config { return c.cfg }

// State returns a copy of the current state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Init loads the initial window and returns the first snapshot.
func (c *Controller) Init(ctx context.Context) (Snapshot, error) {
	return c.Open(ctx)
}

// Open applies cmds to the initial state, then loads the window they
// leave behind and returns the first snapshot. Loads are held back until
// a paging command needs the result list or every command is applied, so
// windows passed through on the way are never fetched.
func (c *Controller) Open(ctx context.Context, cmds ...Command) (Snapshot, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	pending := Effect{Load: true, Grid: true}
	changed := pending
	for _, cmd := range cmds {
		if cmd == nil {
			continue
		}
		if pagesResults(cmd) && !pending.Empty() {
			if err := c.run(ctx, pending); err != nil {
				return c.snapshot(changed), err
			}
			pending = Effect{}
		}
		next, eff := Apply(c.cfg, c.state, cmd)
		c.state = next
		pending = pending.merge(eff)
		changed = changed.merge(eff)
	}

	appLog.Debug("session opened",
		"session", c.session,
		"commands", len(cmds),
		"anchor", c.state.Anchor.Format("2006-01-02"),
		"mode", c.state.Mode,
		"searching", c.state.Searching,
	)
	err := c.run(ctx, pending)
	return c.snapshot(changed), err
}

// pagesResults reports whether cmd is clamped against the loaded result
// list.
func pagesResults(cmd Command) bool {
	switch cmd.(type) {
	case GoToPage, NextPage, PrevPage:
		return true
	}
	return false
}

// Dispatch applies cmd, performs the loads it requires and returns the
// resulting snapshot. Missing or failed quarters never produce an error;
// only a cancelled ctx does, in which case the state has still advanced
// and the snapshot reflects whatever was already loaded.
func (c *Controller) Dispatch(ctx context.Context, cmd Command) (Snapshot, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if cmd == nil {
		return c.snapshot(Effect{}), nil
	}
	next, eff := Apply(c.cfg, c.state, cmd)
	c.state = next
	if eff.Empty() {
		appLog.Debug("command without effect", "session", c.session, "command", cmd.name())
		return c.snapshot(eff), nil
	}

	appLog.Debug("command applied",
		"session", c.session,
		"command", cmd.name(),
		"anchor", c.state.Anchor.Format("2006-01-02"),
		"mode", c.state.Mode,
		"searching", c.state.Searching,
	)

	err := c.run(ctx, eff)
	return c.snapshot(eff), err
}

// Snapshot renders the current state without applying anything.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshot(Effect{})
}

// Prefetch warms the quarters of the periods either side of the current
// one. It does not touch the state and may run alongside Dispatch.
func (c *Controller) Prefetch(ctx context.Context) error {
	s := c.State()
	if s.Searching {
		return nil
	}

	var windows []model.Range
	for _, delta := range []int{-1, 0, 1} {
		shifted := s
		if s.Mode == ModeWeek {
			shifted.Anchor = model.AddDays(s.Anchor, 7*delta)
		} else {
			shifted.Anchor = model.AddMonthsClamped(s.Anchor, delta)
		}
		windows = append(windows, shifted.Window(c.cfg))
	}

	var keys []quarter.Key
	for _, w := range windows {
		keys = append(keys, quarter.Keys(w)...)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	started := time.Now()
	c.store.Load(ctx, keys)
	appLog.Debug("prefetch done", "session", c.session, "quarters", len(keys), "took_ms", time.Since(started).Milliseconds())
	return ctx.Err()
}

// run performs the I/O side of an effect. Caller holds c.mu.
func (c *Controller) run(ctx context.Context, eff Effect) error {
	var err error
	if eff.Load {
		if err = ctx.Err(); err != nil {
			return err
		}
		window := c.state.Window(c.cfg)
		c.store.Load(ctx, quarter.Keys(window))
		c.events = c.store.Events()
		err = ctx.Err()
	}
	if eff.Recompute || (eff.Load && c.state.Searching) {
		c.state.Results = Results(c.state, c.events)
		c.state.Page = search.ClampPage(c.state.Page, search.TotalPages(len(c.state.Results), c.cfg.PageSize))
	}
	return err
}

func (c *Controller) snapshot(eff Effect) Snapshot {
	snap := Build(c.cfg, c.state, c.events)
	snap.Session = c.session
	snap.Changed = eff
	return snap
}
