package fear

import "math"

// MouseSample is one pointer movement
type MouseSample struct {
	Time   float64
	DX, DY float64
}

// Magnitude returns the length of the movement
func (s MouseSample) Magnitude() float64 {
	return math.Hypot(s.DX, s.DY)
}

// KeySample is one key press
type KeySample struct {
	Time float64
	Key  string
}

// ring is a fixed-capacity buffer that overwrites its oldest entry
type ring[T any] struct {
	buf  []T
	next int
	size int
}

func newRing[T any](capacity int) *ring[T] {
	if capacity < 1 {
		capacity = 1
	}
	return &ring[T]{buf: make([]T, capacity)}
}

func (r *ring[T]) push(v T) {
	r.buf[r.next] = v
	r.next = (r.next + 1) % len(r.buf)
	if r.size < len(r.buf) {
		r.size++
	}
}

// items returns the contents oldest first
func (r *ring[T]) items() []T {
	out := make([]T, 0, r.size)
	start := (r.next - r.size + len(r.buf)) % len(r.buf)
	for i := 0; i < r.size; i++ {
		out = append(out, r.buf[(start+i)%len(r.buf)])
	}
	return out
}

// Window is the recent behavior history of the player
type Window struct {
	mouse   *ring[MouseSample]
	keys    *ring[KeySample]
	idle    *ring[float64]
	screams *ring[float64]
}

const eventCapacity = 50

// NewWindow creates a window holding capacity mouse and key samples
func NewWindow(capacity int) *Window {
	return &Window{
		mouse:   newRing[MouseSample](capacity),
		keys:    newRing[KeySample](capacity),
		idle:    newRing[float64](eventCapacity),
		screams: newRing[float64](eventCapacity),
	}
}

func (w *Window) AddMouse(s MouseSample)   { w.mouse.push(s) }
func (w *Window) AddKey(s KeySample)       { w.keys.push(s) }
func (w *Window) AddIdle(duration float64) { w.idle.push(duration) }
func (w *Window) AddScream(at float64)     { w.screams.push(at) }

func (w *Window) MouseSamples() []MouseSample { return w.mouse.items() }
func (w *Window) KeySamples() []KeySample     { return w.keys.items() }
func (w *Window) IdlePeriods() []float64      { return w.idle.items() }
func (w *Window) Screams() []float64          { return w.screams.items() }
