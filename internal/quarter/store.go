package quarter

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"eventcal/internal/feed"
	appLog "eventcal/internal/log"
	"eventcal/internal/model"
)

// Store maps quarter keys to their parsed events. A key is fetched at most
// once per Store; whatever it resolves to (events, nothing, or a failure
// absorbed as nothing) stays cached for the Store's lifetime. A fetch cut
// short by the caller's own context is not a resolution and is not cached.
type Store struct {
	source feed.Source
	opts   feed.ParseOptions

	mu     sync.RWMutex
	cache  map[Key][]model.Event
	flight singleflight.Group

	// fetches counts calls made to source, for diagnostics.
	fetches int
}

func NewStore(source feed.Source, opts feed.ParseOptions) *Store {
	return &Store{
		source: source,
		opts:   opts,
		cache:  make(map[Key][]model.Event),
	}
}

// errAbandoned marks a flight whose caller's context ended mid-fetch.
var errAbandoned = errors.New("quarter fetch abandoned")

// Get returns the events of one quarter, loading it on first use.
// Concurrent callers for the same uncached key share a single fetch.
// A caller that joined a flight abandoned by someone else's context
// fetches again under its own.
func (s *Store) Get(ctx context.Context, key Key) []model.Event {
	for {
		if events, ok := s.lookup(key); ok {
			return events
		}

		v, err, _ := s.flight.Do(string(key), func() (any, error) {
			// Another flight may have finished between lookup and Do.
			if events, ok := s.lookup(key); ok {
				return events, nil
			}
			events, ok := s.fetch(ctx, key)
			if !ok {
				return []model.Event{}, errAbandoned
			}
			s.mu.Lock()
			s.cache[key] = events
			s.mu.Unlock()
			return events, nil
		})
		if errors.Is(err, errAbandoned) && ctx.Err() == nil {
			continue
		}
		return v.([]model.Event)
	}
}

// Load resolves every key in parallel and returns once all have settled.
func (s *Store) Load(ctx context.Context, keys []Key) {
	seen := make(map[Key]struct{}, len(keys))
	g, gctx := errgroup.WithContext(ctx)
	for _, k := range keys {
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		if s.Cached(k) {
			continue
		}
		g.Go(func() error {
			s.Get(gctx, k)
			return nil
		})
	}
	_ = g.Wait()
}

// Events flattens every cached quarter into one slice, in key order.
func (s *Store) Events() []model.Event {
	keys := s.Keys()

	s.mu.RLock()
	defer s.mu.RUnlock()
	var n int
	for _, k := range keys {
		n += len(s.cache[k])
	}
	out := make([]model.Event, 0, n)
	for _, k := range keys {
		out = append(out, s.cache[k]...)
	}
	return out
}

// Cached reports whether key has been resolved.
func (s *Store) Cached(key Key) bool {
	_, ok := s.lookup(key)
	return ok
}

// Keys lists resolved quarters in chronological order.
func (s *Store) Keys() []Key {
	s.mu.RLock()
	keys := make([]Key, 0, len(s.cache))
	for k := range s.cache {
		keys = append(keys, k)
	}
	s.mu.RUnlock()

	sort.Slice(keys, func(i, j int) bool {
		return keys[i].FirstDay().Before(keys[j].FirstDay())
	})
	return keys
}

// Fetches returns how many times the source has been asked for a file.
func (s *Store) Fetches() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.fetches
}

func (s *Store) lookup(key Key) ([]model.Event, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	events, ok := s.cache[key]
	return events, ok
}

// fetch never fails: not-found and errors both become an empty list.
// ok is false when ctx ended during the fetch; that result must not be
// cached.
func (s *Store) fetch(ctx context.Context, key Key) (events []model.Event, ok bool) {
	s.mu.Lock()
	s.fetches++
	s.mu.Unlock()

	started := time.Now()
	body, err := s.source.Fetch(ctx, string(key))
	switch {
	case errors.Is(err, feed.ErrNotFound):
		appLog.Debug("quarter not found", "quarter", key)
		return []model.Event{}, true
	case err != nil && ctx.Err() != nil:
		appLog.Debug("quarter load abandoned", "quarter", key, "error", err.Error())
		return []model.Event{}, false
	case err != nil:
		appLog.Warn("quarter load failed; caching as empty", "quarter", key, "error", err.Error())
		return []model.Event{}, true
	}

	events = feed.Parse(string(body), s.opts)
	if events == nil {
		events = []model.Event{}
	}
	appLog.Debug("quarter loaded",
		"quarter", key,
		"events", len(events),
		"bytes", len(body),
		"took_ms", time.Since(started).Milliseconds(),
	)
	return events, true
}
