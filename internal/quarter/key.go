package quarter

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/teambition/rrule-go"

	"eventcal/internal/model"
)

// Key identifies one calendar quarter, e.g. "2024-Q1".
type Key string

// KeyFor returns the quarter containing t.
func KeyFor(t time.Time) Key {
	q := (int(t.Month())-1)/3 + 1
	return Key(fmt.Sprintf("%d-Q%d", t.Year(), q))
}

// ParseKey validates a "<year>-Q<1..4>" string.
func ParseKey(s string) (Key, error) {
	y, n, err := split(strings.TrimSpace(s))
	if err != nil {
		return "", err
	}
	return Key(fmt.Sprintf("%d-Q%d", y, n)), nil
}

func split(s string) (year, n int, err error) {
	ys, qs, ok := strings.Cut(s, "-Q")
	if !ok {
		return 0, 0, fmt.Errorf("quarter key %q: missing -Q", s)
	}
	year, err = strconv.Atoi(ys)
	if err != nil || year <= 0 {
		return 0, 0, fmt.Errorf("quarter key %q: bad year", s)
	}
	n, err = strconv.Atoi(qs)
	if err != nil || n < 1 || n > 4 {
		return 0, 0, fmt.Errorf("quarter key %q: bad quarter", s)
	}
	return year, n, nil
}

// FirstDay returns the first civil date of the quarter, or the zero time
// for a malformed key.
func (k Key) FirstDay() time.Time {
	y, n, err := split(string(k))
	if err != nil {
		return time.Time{}
	}
	return model.Date(y, time.Month((n-1)*3+1), 1)
}

func (k Key) String() string { return string(k) }

// KeysInRange returns the ordered, de-duplicated quarter keys whose months
// intersect [start, end]. A cursor steps by calendar month from start's
// month through end's month, so a window crossing a quarter boundary
// mid-month still picks up both quarters. start after end yields nothing.
func KeysInRange(start, end time.Time) []Key {
	start, end = model.Day(start), model.Day(end)
	if start.After(end) {
		return nil
	}

	first := model.Date(start.Year(), start.Month(), 1)
	last := model.Date(end.Year(), end.Month(), 1)

	r, err := rrule.NewRRule(rrule.ROption{
		Freq:    rrule.MONTHLY,
		Dtstart: first,
		Until:   last,
	})
	if err != nil {
		return monthlyKeys(first, last)
	}

	var keys []Key
	for _, month := range r.All() {
		k := KeyFor(month)
		if len(keys) == 0 || keys[len(keys)-1] != k {
			keys = append(keys, k)
		}
	}
	return keys
}

// monthlyKeys is the plain month loop behind KeysInRange, used only if the
// recurrence rule cannot be built.
func monthlyKeys(first, last time.Time) []Key {
	var keys []Key
	for m := first; !m.After(last); m = m.AddDate(0, 1, 0) {
		k := KeyFor(m)
		if len(keys) == 0 || keys[len(keys)-1] != k {
			keys = append(keys, k)
		}
	}
	return keys
}
