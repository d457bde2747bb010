package fear

import (
	"math"
)

// AnalyzerConfig tunes the analyzer
type AnalyzerConfig struct {
	Interval    float64 // minimum simulated seconds between analyses
	Smoothing   float64 // weight of a new target, 1 replaces the old value
	Decay       float64 // pull toward neutral for amplifiers without a target
	LogCapacity int
}

// Adaptation is one entry of the adaptation log
type Adaptation struct {
	Time       float64
	Metrics    Metrics
	Stress     float64
	Amplifiers Amplifiers
}

// Analyzer recomputes fear amplifiers from the behavior window at a bounded
// cadence and smooths them between recomputations.
type Analyzer struct {
	cfg    AnalyzerConfig
	bounds [kindCount]Bounds

	current  Amplifiers
	last     float64
	analyzed bool
	log      []Adaptation
}

// NewAnalyzer starts from initial, clamped to DefaultBounds
func NewAnalyzer(cfg AnalyzerConfig, initial Amplifiers) *Analyzer {
	if cfg.Smoothing <= 0 || cfg.Smoothing > 1 {
		cfg.Smoothing = 1
	}
	if cfg.Decay < 0 || cfg.Decay > 1 {
		cfg.Decay = 0
	}
	if cfg.LogCapacity <= 0 {
		cfg.LogCapacity = 64
	}
	return &Analyzer{
		cfg:     cfg,
		bounds:  DefaultBounds,
		current: initial.Clamp(DefaultBounds),
	}
}

// Current returns the amplifiers from the latest analysis
func (a *Analyzer) Current() Amplifiers {
	return a.current
}

// Log returns the adaptation log, oldest first
func (a *Analyzer) Log() []Adaptation {
	out := make([]Adaptation, len(a.log))
	copy(out, a.log)
	return out
}

// Analyze recomputes the amplifiers if at least one interval has passed since
// the previous analysis. Inside the interval it returns the current values and
// false. The first call always analyzes.
func (a *Analyzer) Analyze(w *Window, stress, now float64) (Amplifiers, bool) {
	if a.analyzed && now-a.last < a.cfg.Interval {
		return a.current, false
	}
	a.analyzed = true
	a.last = now

	m := Measure(w, now)
	targets := targetsFor(m, stress)

	next := a.current
	for _, k := range Kinds() {
		v := next.Get(k)
		if target, ok := targets[k]; ok {
			v += (target - v) * a.cfg.Smoothing
		} else {
			v += (1 - v) * a.cfg.Decay
		}
		next.Set(k, v)
	}
	a.current = next.Clamp(a.bounds)

	a.log = append(a.log, Adaptation{Time: now, Metrics: m, Stress: stress, Amplifiers: a.current})
	if len(a.log) > a.cfg.LogCapacity {
		a.log = a.log[len(a.log)-a.cfg.LogCapacity:]
	}
	return a.current, true
}

// targetsFor maps metrics above their thresholds to amplifier targets
func targetsFor(m Metrics, stress float64) map[Kind]float64 {
	targets := make(map[Kind]float64)
	raise := func(k Kind, v float64) {
		if cur, ok := targets[k]; !ok || v > cur {
			targets[k] = v
		}
	}

	if m.Tremor > tremorThreshold {
		raise(Sounds, math.Min(3, 1+m.Tremor*2))
		raise(JumpScares, math.Min(2.5, 1+m.Tremor*1.5))
	}
	if m.Panic > panicThreshold {
		raise(Monsters, math.Min(2.5, 1+m.Panic*1.5))
	}
	if m.Inactivity > inactivityThreshold {
		raise(Darkness, math.Min(2.8, 1+m.Inactivity*1.8))
	}
	if m.Aggression > aggressionThreshold {
		raise(Atmosphere, math.Min(2.2, 1+m.Aggression))
		raise(Paranoia, math.Min(2.5, 1+m.Aggression*1.5))
	}
	if stress > stressThreshold {
		raise(Atmosphere, math.Min(3, 1+(stress-stressThreshold)/30))
	}
	return targets
}
