package fear

import (
	"math"
	"math/rand/v2"
)

// ScareKind identifies a scare template
type ScareKind string

const (
	ScareWhisper        ScareKind = "whisper"
	ScareSuddenSound    ScareKind = "sudden_sound"
	ScareLightFlicker   ScareKind = "light_flicker"
	ScareQuake          ScareKind = "quake"
	ScareParanoiaGlitch ScareKind = "paranoia_glitch"
)

// Scare is a triggered scare event
type Scare struct {
	Kind      ScareKind
	Intensity float64 // 0-1
	Duration  float64 // seconds
	Time      float64 // simulated time it fired
}

// Situation is what the director knows about the player this tick
type Situation struct {
	Now        float64
	Light      float64
	Sanity     float64
	Stress     float64
	DarkTime   float64 // seconds spent without usable light
	Amplifiers Amplifiers
}

// scareTemplate describes when and how often a scare may fire
type scareTemplate struct {
	kind      ScareKind
	rate      func(Situation) float64 // expected firings per second
	ready     func(Situation) bool
	intensity func(Situation) float64
	cooldown  float64
	duration  float64
}

// TensionLevelName maps tension level to a name
var TensionLevelName = map[int]string{
	0: "Calm",
	1: "Uneasy",
	2: "Tense",
	3: "Frightening",
	4: "Terrifying",
}

// Director schedules ambient scares. Rates are per simulated second so the
// outcome does not depend on the tick rate, and every roll uses the level RNG.
type Director struct {
	rng       *rand.Rand
	templates []scareTemplate
	cooldowns map[ScareKind]float64 // time a kind becomes available again

	tensionCurve      float64
	tensionChangeRate float64

	// Callbacks
	OnScareTriggered func(Scare)
}

// NewDirector creates a director with the default scare templates
func NewDirector(rng *rand.Rand) *Director {
	return &Director{
		rng:               rng,
		templates:         defaultTemplates(),
		cooldowns:         make(map[ScareKind]float64),
		tensionCurve:      0.1,
		tensionChangeRate: 0.05,
	}
}

func defaultTemplates() []scareTemplate {
	always := func(Situation) bool { return true }
	return []scareTemplate{
		{
			kind:      ScareWhisper,
			rate:      func(s Situation) float64 { return 0.6 },
			ready:     func(s Situation) bool { return s.DarkTime > 10 },
			intensity: func(s Situation) float64 { return 0.3 * s.Amplifiers.Sounds },
			cooldown:  4,
			duration:  2,
		},
		{
			kind:      ScareSuddenSound,
			rate:      func(s Situation) float64 { return 0.3 },
			ready:     func(s Situation) bool { return s.Light < 0.3 || s.Sanity < 50 },
			intensity: func(s Situation) float64 { return 0.3 * s.Amplifiers.Sounds },
			cooldown:  6,
			duration:  0.5,
		},
		{
			kind:      ScareLightFlicker,
			rate:      func(s Situation) float64 { return 0.03 * s.Amplifiers.Darkness },
			ready:     always,
			intensity: func(s Situation) float64 { return 0.3 + s.Amplifiers.FearDarkness() },
			cooldown:  10,
			duration:  1.5,
		},
		{
			kind:      ScareQuake,
			rate:      func(s Situation) float64 { return 0.015 * s.Amplifiers.Atmosphere },
			ready:     always,
			intensity: func(s Situation) float64 { return 0.2 * s.Amplifiers.Atmosphere },
			cooldown:  20,
			duration:  2,
		},
		{
			kind:      ScareParanoiaGlitch,
			rate:      func(s Situation) float64 { return s.Amplifiers.ParanoiaEffect() * 0.5 },
			ready:     func(s Situation) bool { return s.Amplifiers.ParanoiaEffect() > 0 },
			intensity: func(s Situation) float64 { return s.Amplifiers.ParanoiaEffect() },
			cooldown:  3,
			duration:  0.5,
		},
	}
}

// Update advances tension and rolls new scares. Each fired scare goes to
// OnScareTriggered; all of them are also returned.
func (d *Director) Update(deltaTime float64, s Situation) []Scare {
	d.updateTension(deltaTime, s)

	var fired []Scare
	for _, tpl := range d.templates {
		if s.Now < d.cooldowns[tpl.kind] || !tpl.ready(s) {
			continue
		}
		rate := tpl.rate(s) * (0.5 + d.tensionCurve)
		if rate <= 0 {
			continue
		}
		// Poisson arrival within the tick
		if d.rng.Float64() >= 1-math.Exp(-rate*deltaTime) {
			continue
		}
		scare := Scare{
			Kind:      tpl.kind,
			Intensity: math.Max(0, math.Min(1, tpl.intensity(s))),
			Duration:  tpl.duration,
			Time:      s.Now,
		}
		d.triggerScare(scare, tpl.cooldown)
		fired = append(fired, scare)
	}
	return fired
}

// GetTensionValue returns the tension curve value (0-1)
func (d *Director) GetTensionValue() float64 {
	return d.tensionCurve
}

// GetTensionLevel returns the discretized tension level (0-4)
func (d *Director) GetTensionLevel() int {
	return int(d.tensionCurve * 4)
}

// GetTensionName returns the name of the current tension level
func (d *Director) GetTensionName() string {
	return TensionLevelName[d.GetTensionLevel()]
}

// updateTension moves the tension curve toward a target derived from stress
// and the amplifiers
func (d *Director) updateTension(deltaTime float64, s Situation) {
	target := (s.Amplifiers.Mean()-1)/2 + s.Stress/200
	target = math.Max(0, math.Min(1, target))

	step := d.tensionChangeRate * deltaTime
	if d.tensionCurve < target {
		d.tensionCurve = math.Min(target, d.tensionCurve+step)
	} else if d.tensionCurve > target {
		d.tensionCurve = math.Max(target, d.tensionCurve-step)
	}
}

func (d *Director) triggerScare(scare Scare, cooldown float64) {
	d.cooldowns[scare.Kind] = scare.Time + cooldown

	// A scare spikes tension; the curve relaxes back afterwards
	d.tensionCurve = math.Min(1, d.tensionCurve+scare.Intensity*0.3)

	if d.OnScareTriggered != nil {
		d.OnScareTriggered(scare)
	}
}
