package listing

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// WindowKind selects how a TimeWindow bounds a timestamp
type WindowKind int

// Window kinds
const (
	WindowAll WindowKind = iota
	WindowToday
	WindowPastDays
)

// TimeWindow restricts results to records whose designated timestamp is recent
type TimeWindow struct {
	Kind WindowKind
	Days int // Only used by WindowPastDays
}

// maxSpanDays is the longest PastDays window a time.Duration can hold.
// Longer windows reach back past any representable timestamp.
const maxSpanDays = int(math.MaxInt64 / int64(24*time.Hour))

// AllTime is the unbounded window
var AllTime = TimeWindow{Kind: WindowAll}

// Today matches timestamps on the same calendar day as now, in now's location
func Today() TimeWindow {
	return TimeWindow{Kind: WindowToday}
}

// PastDays matches timestamps within the rolling n*24h before now
func PastDays(n int) TimeWindow {
	return TimeWindow{Kind: WindowPastDays, Days: n}
}

// Bounded reports whether the window excludes anything
func (w TimeWindow) Bounded() bool {
	return w.Kind != WindowAll
}

// Contains reports whether t falls inside the window relative to now.
// A zero t is outside every bounded window.
func (w TimeWindow) Contains(t, now time.Time) bool {
	switch w.Kind {
	case WindowAll:
		return true
	case WindowToday:
		if t.IsZero() {
			return false
		}
		ty, tm, td := t.In(now.Location()).Date()
		ny, nm, nd := now.Date()
		return ty == ny && tm == nm && td == nd
	case WindowPastDays:
		if t.IsZero() || t.After(now) {
			return false
		}
		if w.Days > maxSpanDays {
			return true
		}
		return !t.Before(now.Add(-time.Duration(w.Days) * 24 * time.Hour))
	default:
		return false
	}
}

func (w TimeWindow) validate() error {
	switch w.Kind {
	case WindowAll, WindowToday:
		return nil
	case WindowPastDays:
		if w.Days <= 0 {
			return invalidQuery("time window needs a positive day count, got %d", w.Days)
		}
		return nil
	default:
		return invalidQuery("unknown time window kind %d", w.Kind)
	}
}

func (w TimeWindow) String() string {
	switch w.Kind {
	case WindowAll:
		return "all"
	case WindowToday:
		return "today"
	case WindowPastDays:
		return fmt.Sprintf("%dd", w.Days)
	default:
		return "unknown"
	}
}

// ParseWindow reads all, today, week (7 days), month (30 days) or Nd
func ParseWindow(name string) (TimeWindow, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	switch name {
	case "", "all":
		return AllTime, nil
	case "today":
		return Today(), nil
	case "week":
		return PastDays(7), nil
	case "month":
		return PastDays(30), nil
	}

	if days, ok := strings.CutSuffix(name, "d"); ok {
		n, err := strconv.Atoi(days)
		if err == nil && n > 0 {
			return PastDays(n), nil
		}
	}
	return TimeWindow{}, invalidQuery("unknown time window %q", name)
}
