// Package fear measures how the player behaves and turns those measurements
// into fear amplifiers that scale monsters, darkness, sound and scares.
package fear

import (
	"math"
)

// Kind names a single fear amplifier
type Kind int

const (
	Monsters Kind = iota
	Darkness
	JumpScares
	Sounds
	Atmosphere
	Paranoia
	TightSpaces
	kindCount
)

var kindNames = [kindCount]string{
	"monsters", "darkness", "jump_scares", "sounds", "atmosphere", "paranoia", "tight_spaces",
}

func (k Kind) String() string {
	if k < 0 || k >= kindCount {
		return "unknown"
	}
	return kindNames[k]
}

// Kinds lists every amplifier in declaration order
func Kinds() []Kind {
	out := make([]Kind, kindCount)
	for i := range out {
		out[i] = Kind(i)
	}
	return out
}

// Bounds is the allowed range of one amplifier
type Bounds struct {
	Min, Max float64
}

// DefaultBounds caps every amplifier at the largest value its rule can produce
var DefaultBounds = [kindCount]Bounds{
	Monsters:    {1, 2.5},
	Darkness:    {1, 2.8},
	JumpScares:  {1, 2.5},
	Sounds:      {1, 3},
	Atmosphere:  {1, 3},
	Paranoia:    {1, 2.5},
	TightSpaces: {1, 3},
}

// Amplifiers holds the current fear coefficients. 1.0 is neutral.
type Amplifiers struct {
	Monsters    float64
	Darkness    float64
	JumpScares  float64
	Sounds      float64
	Atmosphere  float64
	Paranoia    float64
	TightSpaces float64
}

// Neutral returns amplifiers with every coefficient at 1.0
func Neutral() Amplifiers {
	return Amplifiers{1, 1, 1, 1, 1, 1, 1}
}

// Get returns the value of one amplifier
func (a Amplifiers) Get(k Kind) float64 {
	if p := a.ptr(k); p != nil {
		return *p
	}
	return 0
}

// Set assigns one amplifier
func (a *Amplifiers) Set(k Kind, v float64) {
	if p := a.ptr(k); p != nil {
		*p = v
	}
}

func (a *Amplifiers) ptr(k Kind) *float64 {
	switch k {
	case Monsters:
		return &a.Monsters
	case Darkness:
		return &a.Darkness
	case JumpScares:
		return &a.JumpScares
	case Sounds:
		return &a.Sounds
	case Atmosphere:
		return &a.Atmosphere
	case Paranoia:
		return &a.Paranoia
	case TightSpaces:
		return &a.TightSpaces
	}
	return nil
}

// Clamp forces every amplifier into its bounds
func (a Amplifiers) Clamp(bounds [kindCount]Bounds) Amplifiers {
	for _, k := range Kinds() {
		b := bounds[k]
		a.Set(k, math.Max(b.Min, math.Min(b.Max, a.Get(k))))
	}
	return a
}

// FearDarkness is the extra ambient darkness caused by the darkness amplifier
func (a Amplifiers) FearDarkness() float64 {
	return (a.Darkness - 1) * 0.3
}

// ParanoiaEffect is the strength of hallucination glitches, 0 to 0.7
func (a Amplifiers) ParanoiaEffect() float64 {
	return math.Max(0, math.Min(0.7, (a.Paranoia-1)*0.35))
}

// Mean returns the average coefficient, used as an overall fear level
func (a Amplifiers) Mean() float64 {
	sum := 0.0
	for _, k := range Kinds() {
		sum += a.Get(k)
	}
	return sum / float64(kindCount)
}

// Metrics are the behavior measurements derived from a window, each in [0, 1]
type Metrics struct {
	Tremor     float64 // jittery small mouse movements
	Panic      float64 // bursts of key presses
	Inactivity float64 // long freezes
	Aggression float64 // screaming
}

// Thresholds above which a metric drives its amplifiers
const (
	tremorThreshold     = 0.3
	panicThreshold      = 0.4
	inactivityThreshold = 0.5
	aggressionThreshold = 0.6
	stressThreshold     = 70.0
)

// Measure computes behavior metrics from the samples in w as of now
func Measure(w *Window, now float64) Metrics {
	var m Metrics

	// Tremor: needs enough samples, only counts slow movements
	if mouse := w.MouseSamples(); len(mouse) >= 10 {
		mags := make([]float64, 0, len(mouse)-1)
		for _, s := range mouse[1:] {
			mags = append(mags, s.Magnitude())
		}
		mean, std := meanStd(mags)
		if mean < 2.0 {
			m.Tremor = math.Min(1, std*3)
		}
	}

	// Panic: many presses in the last three seconds
	if keys := w.KeySamples(); len(keys) >= 20 {
		recent := 0
		for _, k := range keys {
			if now-k.Time < 3 {
				recent++
			}
		}
		if recent > 15 {
			m.Panic = math.Min(1, float64(recent)/30)
		}
	}

	// Inactivity: average of the last five freezes, or the latest one alone
	if idle := w.IdlePeriods(); len(idle) >= 5 {
		mean, _ := meanStd(idle[len(idle)-5:])
		m.Inactivity = math.Min(1, mean/5)
	} else if len(idle) > 0 {
		m.Inactivity = math.Min(1, idle[len(idle)-1]/5)
	}

	m.Aggression = math.Min(1, float64(len(w.Screams()))/10)
	return m
}

func meanStd(xs []float64) (float64, float64) {
	if len(xs) == 0 {
		return 0, 0
	}
	sum := 0.0
	for _, x := range xs {
		sum += x
	}
	mean := sum / float64(len(xs))
	variance := 0.0
	for _, x := range xs {
		variance += (x - mean) * (x - mean)
	}
	return mean, math.Sqrt(variance / float64(len(xs)))
}
