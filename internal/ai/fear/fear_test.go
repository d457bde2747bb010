package fear

import (
	"math"
	"math/rand/v2"
	"testing"

	"fear-maze/internal/engine/ecs"
)

func defaultAnalyzer() *Analyzer {
	return NewAnalyzer(AnalyzerConfig{Interval: 5, Smoothing: 0.6, Decay: 0.1, LogCapacity: 8}, Neutral())
}

func TestRingEvictsOldest(t *testing.T) {
	w := NewWindow(100)
	for i := 0; i < 250; i++ {
		w.AddKey(KeySample{Time: float64(i), Key: "w"})
	}
	keys := w.KeySamples()
	if len(keys) != 100 {
		t.Fatalf("len = %d, want 100", len(keys))
	}
	if keys[0].Time != 150 || keys[99].Time != 249 {
		t.Fatalf("window holds %v..%v, want 150..249", keys[0].Time, keys[99].Time)
	}
}

func TestTrackerRecordsPressEdges(t *testing.T) {
	w := NewWindow(100)
	tr := NewTracker(w, 1)
	tr.Observe(0, []string{"w"}, nil, false)
	tr.Observe(0.1, []string{"w"}, nil, false)
	tr.Observe(0.2, []string{"w", "a"}, nil, false)
	tr.Observe(0.3, nil, nil, false)
	tr.Observe(0.4, []string{"w"}, nil, false)

	keys := w.KeySamples()
	want := []string{"w", "a", "w"}
	if len(keys) != len(want) {
		t.Fatalf("recorded %v, want %v", keys, want)
	}
	for i := range want {
		if keys[i].Key != want[i] {
			t.Fatalf("recorded %v, want %v", keys, want)
		}
	}
}

func TestTrackerIdlePeriods(t *testing.T) {
	w := NewWindow(100)
	tr := NewTracker(w, 1)
	tr.Observe(0, []string{"w"}, nil, false)
	tr.Observe(1, nil, nil, false)
	if got := tr.IdleFor(3); got != 2 {
		t.Errorf("IdleFor = %v, want 2", got)
	}
	tr.Observe(4, nil, []ecs.Vector2{{X: 1, Y: 0}}, false)
	// Short freeze is ignored
	tr.Observe(4.5, nil, nil, false)
	tr.Observe(5, []string{"s"}, nil, false)

	idle := w.IdlePeriods()
	if len(idle) != 1 || idle[0] != 3 {
		t.Fatalf("idle periods = %v, want [3]", idle)
	}
}

func TestTrackerDropsMouseWarps(t *testing.T) {
	w := NewWindow(100)
	tr := NewTracker(w, 1)
	tr.Observe(0, nil, []ecs.Vector2{{X: 150, Y: 0}, {X: 3, Y: 4}, {}}, true)
	mouse := w.MouseSamples()
	if len(mouse) != 1 || mouse[0].Magnitude() != 5 {
		t.Fatalf("mouse samples = %v", mouse)
	}
	if len(w.Screams()) != 1 {
		t.Fatal("scream not recorded")
	}
}

func TestMeasure(t *testing.T) {
	t.Run("too few samples", func(t *testing.T) {
		w := NewWindow(100)
		for i := 0; i < 9; i++ {
			w.AddMouse(MouseSample{DX: float64(i % 2)})
		}
		if m := Measure(w, 10); m.Tremor != 0 {
			t.Errorf("tremor = %v with 9 samples", m.Tremor)
		}
	})
	t.Run("fast movement is not tremor", func(t *testing.T) {
		w := NewWindow(100)
		for i := 0; i < 50; i++ {
			w.AddMouse(MouseSample{DX: 20 + float64(i%2)*10})
		}
		if m := Measure(w, 10); m.Tremor != 0 {
			t.Errorf("tremor = %v for fast movement", m.Tremor)
		}
	})
	t.Run("panic burst", func(t *testing.T) {
		w := NewWindow(100)
		for i := 0; i < 24; i++ {
			w.AddKey(KeySample{Time: 10 + float64(i)*0.1, Key: "w"})
		}
		m := Measure(w, 12.5)
		if m.Panic != 24.0/30 {
			t.Errorf("panic = %v, want 0.8", m.Panic)
		}
	})
	t.Run("inactivity uses last five", func(t *testing.T) {
		w := NewWindow(100)
		for _, d := range []float64{100, 5, 5, 5, 5, 5} {
			w.AddIdle(d)
		}
		if m := Measure(w, 0); m.Inactivity != 1 {
			t.Errorf("inactivity = %v, want 1", m.Inactivity)
		}
	})
	t.Run("inactivity with fewer than five uses the latest", func(t *testing.T) {
		tests := []struct {
			idle []float64
			want float64
		}{
			{[]float64{2}, 0.4},
			{[]float64{1, 1, 5}, 1},
			{[]float64{10, 10, 10, 1}, 0.2},
		}
		for _, tt := range tests {
			w := NewWindow(100)
			for _, d := range tt.idle {
				w.AddIdle(d)
			}
			if m := Measure(w, 0); math.Abs(m.Inactivity-tt.want) > 1e-9 {
				t.Errorf("idle %v: inactivity = %v, want %v", tt.idle, m.Inactivity, tt.want)
			}
		}
	})
	t.Run("aggression", func(t *testing.T) {
		w := NewWindow(100)
		for i := 0; i < 7; i++ {
			w.AddScream(float64(i))
		}
		if m := Measure(w, 0); math.Abs(m.Aggression-0.7) > 1e-9 {
			t.Errorf("aggression = %v, want 0.7", m.Aggression)
		}
	})
}

// Scenario D: jittery near-zero mouse movement raises sounds and jump scares.
func TestAnalyzeTremorRaisesSoundsAndJumpScares(t *testing.T) {
	w := NewWindow(100)
	for i := 0; i < 100; i++ {
		mag := 0.0
		if i%2 == 1 {
			mag = 1.2
		}
		w.AddMouse(MouseSample{Time: float64(i) * 0.01, DX: mag})
	}
	a := defaultAnalyzer()
	amps, updated := a.Analyze(w, 30, 1)
	if !updated {
		t.Fatal("first analysis was skipped")
	}
	if amps.Sounds <= 1 {
		t.Errorf("sounds = %v, want > 1", amps.Sounds)
	}
	if amps.JumpScares <= 1 {
		t.Errorf("jump scares = %v, want > 1", amps.JumpScares)
	}
	if amps.Monsters != 1 {
		t.Errorf("monsters = %v, want untouched 1", amps.Monsters)
	}
}

func TestAnalyzeIsRateLimited(t *testing.T) {
	w := NewWindow(100)
	a := defaultAnalyzer()
	if _, ok := a.Analyze(w, 90, 0); !ok {
		t.Fatal("first call should analyze")
	}
	first := a.Current()
	for _, now := range []float64{1, 2.5, 4.99} {
		amps, ok := a.Analyze(w, 90, now)
		if ok || amps != first {
			t.Fatalf("analysis at %v inside the interval changed amplifiers", now)
		}
	}
	if _, ok := a.Analyze(w, 90, 5); !ok {
		t.Fatal("call after the interval should analyze")
	}
	if len(a.Log()) != 2 {
		t.Fatalf("log has %d entries, want 2", len(a.Log()))
	}
}

func TestAmplifiersStayInBoundsUnderMaximalTelemetry(t *testing.T) {
	w := NewWindow(100)
	tr := NewTracker(w, 0)
	a := NewAnalyzer(AnalyzerConfig{Interval: 5, Smoothing: 1, LogCapacity: 4}, Amplifiers{5, 5, 5, 5, 5, 5, 5})
	if a.Current() != a.Current().Clamp(DefaultBounds) {
		t.Fatal("initial amplifiers not clamped")
	}

	now := 0.0
	for tick := 0; tick < 3000; tick++ {
		now += 1.0 / 60
		keys := []string{"w", "a", "s", "d"}[:tick%5]
		look := []ecs.Vector2{{X: float64(tick%3) * 0.9, Y: 0}}
		tr.Observe(now, keys, look, tick%20 == 0)
		if tick%300 == 0 {
			w.AddIdle(50)
		}
		amps, _ := a.Analyze(w, 100, now)
		for _, k := range Kinds() {
			b := DefaultBounds[k]
			if v := amps.Get(k); v < b.Min || v > b.Max {
				t.Fatalf("tick %d: %v = %v outside [%v, %v]", tick, k, v, b.Min, b.Max)
			}
		}
	}
	if len(a.Log()) != 4 {
		t.Errorf("log capacity not enforced: %d", len(a.Log()))
	}
}

func TestAmplifiersDecayWithoutStimulus(t *testing.T) {
	a := NewAnalyzer(AnalyzerConfig{Interval: 5, Smoothing: 1, Decay: 0.5}, Amplifiers{2, 1, 1, 1, 1, 1, 1})
	amps, _ := a.Analyze(NewWindow(100), 0, 0)
	if amps.Monsters != 1.5 {
		t.Fatalf("monsters = %v, want 1.5 after one decay step", amps.Monsters)
	}
}

func TestDerivedValues(t *testing.T) {
	a := Neutral()
	if a.FearDarkness() != 0 || a.ParanoiaEffect() != 0 {
		t.Fatal("neutral amplifiers should have no derived effect")
	}
	a.Darkness = 2
	a.Paranoia = 3
	if math.Abs(a.FearDarkness()-0.3) > 1e-9 {
		t.Errorf("fear darkness = %v", a.FearDarkness())
	}
	if a.ParanoiaEffect() != 0.7 {
		t.Errorf("paranoia effect = %v, want capped 0.7", a.ParanoiaEffect())
	}
}

func TestDirectorDeterministic(t *testing.T) {
	run := func() []Scare {
		d := NewDirector(rand.New(rand.NewPCG(7, 7)))
		var all []Scare
		s := Situation{Light: 0.2, Sanity: 40, Stress: 80, DarkTime: 20, Amplifiers: Amplifiers{2, 2.5, 2, 3, 3, 2.5, 1}}
		for i := 0; i < 6000; i++ {
			s.Now = float64(i) / 60
			all = append(all, d.Update(1.0/60, s)...)
		}
		return all
	}
	a, b := run(), run()
	if len(a) == 0 {
		t.Fatal("no scares fired in 100 seconds of darkness")
	}
	if len(a) != len(b) {
		t.Fatalf("runs differ: %d vs %d scares", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("scare %d differs: %+v vs %+v", i, a[i], b[i])
		}
	}
}

func TestDirectorRespectsReadinessAndCooldown(t *testing.T) {
	d := NewDirector(rand.New(rand.NewPCG(1, 1)))
	s := Situation{Light: 1, Sanity: 100, Amplifiers: Neutral()}
	var last = map[ScareKind]float64{}
	for i := 0; i < 60*120; i++ {
		s.Now = float64(i) / 60
		for _, sc := range d.Update(1.0/60, s) {
			switch sc.Kind {
			case ScareWhisper, ScareSuddenSound, ScareParanoiaGlitch:
				t.Fatalf("%s fired while its precondition is false", sc.Kind)
			}
			if prev, ok := last[sc.Kind]; ok && sc.Time-prev < 10-1e-6 && sc.Kind == ScareLightFlicker {
				t.Fatalf("flicker fired again after %v seconds", sc.Time-prev)
			}
			last[sc.Kind] = sc.Time
		}
	}
}

func TestDirectorCallbackAndTensionName(t *testing.T) {
	d := NewDirector(rand.New(rand.NewPCG(3, 3)))
	if d.GetTensionName() != "Calm" {
		t.Fatalf("initial tension = %q, want Calm", d.GetTensionName())
	}

	var got []Scare
	d.OnScareTriggered = func(sc Scare) { got = append(got, sc) }
	s := Situation{Light: 0.1, Sanity: 20, Stress: 100, DarkTime: 30, Amplifiers: Amplifiers{2.5, 2.8, 2.5, 3, 3, 2.5, 3}}
	fired := 0
	for i := 0; i < 60*60; i++ {
		s.Now = float64(i) / 60
		fired += len(d.Update(1.0/60, s))
	}
	if fired == 0 || len(got) != fired {
		t.Fatalf("callback saw %d scares, Update returned %d", len(got), fired)
	}
	if d.GetTensionLevel() != 4 || d.GetTensionName() != "Terrifying" {
		t.Errorf("tension %v named %q after a minute at full fear", d.GetTensionValue(), d.GetTensionName())
	}
}
