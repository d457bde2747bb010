package fear

import (
	"math"
	"sort"

	"fear-maze/internal/engine/ecs"
)

// maxMouseDelta drops pointer warps and window re-centering jumps
const maxMouseDelta = 100

// Tracker turns per-tick input into window samples and detects freezes
type Tracker struct {
	window  *Window
	minIdle float64

	held          map[string]bool
	inactive      bool
	inactiveSince float64
}

// NewTracker records into w. Freezes shorter than minIdle seconds are ignored.
func NewTracker(w *Window, minIdle float64) *Tracker {
	return &Tracker{
		window:  w,
		minIdle: minIdle,
		held:    make(map[string]bool),
	}
}

// Window returns the window the tracker writes to
func (t *Tracker) Window() *Window {
	return t.window
}

// Observe records one tick of input at simulated time now. held lists the
// keys down this tick; only keys that were up on the previous tick count as
// presses, so the panic metric sees presses rather than held ticks. look holds
// the pointer deltas received this tick.
func (t *Tracker) Observe(now float64, held []string, look []ecs.Vector2, scream bool) {
	active := len(held) > 0 || scream

	for _, d := range look {
		if d.X == 0 && d.Y == 0 {
			continue
		}
		active = true
		if math.Abs(d.X) < maxMouseDelta && math.Abs(d.Y) < maxMouseDelta {
			t.window.AddMouse(MouseSample{Time: now, DX: d.X, DY: d.Y})
		}
	}

	next := make(map[string]bool, len(held))
	pressed := make([]string, 0, len(held))
	for _, k := range held {
		if next[k] {
			continue
		}
		next[k] = true
		if !t.held[k] {
			pressed = append(pressed, k)
		}
	}
	sort.Strings(pressed)
	for _, k := range pressed {
		t.window.AddKey(KeySample{Time: now, Key: k})
	}
	t.held = next

	if scream {
		t.window.AddScream(now)
	}

	switch {
	case active && t.inactive:
		if period := now - t.inactiveSince; period > t.minIdle {
			t.window.AddIdle(period)
		}
		t.inactive = false
	case !active && !t.inactive:
		t.inactive = true
		t.inactiveSince = now
	}
}

// IdleFor returns how long the player has been inactive as of now
func (t *Tracker) IdleFor(now float64) float64 {
	if !t.inactive {
		return 0
	}
	return now - t.inactiveSince
}
