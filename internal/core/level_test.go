package core

import (
	"testing"

	"fear-maze/internal/ai/fear"
	"fear-maze/internal/config"
	"fear-maze/internal/engine/ecs"
	"fear-maze/internal/events"
)

func newTestLevel(t *testing.T, lc *Context, mutate func(*config.Config)) *Level {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Level.Width = 15
	cfg.Level.Height = 15
	cfg.Level.Seed = 42
	cfg.Level.Keys = 2
	cfg.Level.Monsters = 0
	if mutate != nil {
		mutate(cfg)
	}
	l, err := NewLevel(cfg, lc)
	if err != nil {
		t.Fatalf("NewLevel: %v", err)
	}
	return l
}

func collectAll(l *Level) {
	for _, e := range l.entities.GetEntitiesWithTag(ecs.TagObjective) {
		if o, ok := ecs.Get[*ecs.ObjectiveComponent](e, ecs.ObjectiveComponentID); ok {
			o.Collect()
		}
	}
}

func TestNewLevelRejectsInvalidConfig(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Level.Keys = -1
	if _, err := NewLevel(cfg, nil); err == nil {
		t.Fatal("expected error for negative key count")
	}
	if _, err := NewLevel(nil, nil); err == nil {
		t.Fatal("expected error for nil config")
	}
}

func TestNewLevelPopulates(t *testing.T) {
	l := newTestLevel(t, nil, func(c *config.Config) { c.Level.Monsters = 2 })
	s := l.Snapshot()

	if s.Outcome != events.Running {
		t.Fatalf("outcome = %v, want running", s.Outcome)
	}
	if s.KeysRequired != 2 {
		t.Errorf("keys required = %d, want 2", s.KeysRequired)
	}
	if len(s.Objectives) != 3 {
		t.Errorf("objectives = %d, want 2 keys and an exit", len(s.Objectives))
	}
	if n := len(s.Monsters); n == 0 || n > 2 {
		t.Errorf("monsters = %d, want 1 or 2", n)
	}
	start := l.Grid().Start()
	if got := s.Player.Position; got.X != float64(start.X)+0.5 || got.Y != float64(start.Y)+0.5 {
		t.Errorf("player at %+v, want center of %+v", got, start)
	}
	if l.Seed() != 42 {
		t.Errorf("seed = %d", l.Seed())
	}
}

func TestZeroSeedPicksOne(t *testing.T) {
	l := newTestLevel(t, nil, func(c *config.Config) { c.Level.Seed = 0 })
	if l.Seed() == 0 {
		t.Fatal("zero seed was not replaced")
	}
}

func TestTerminalPrecedence(t *testing.T) {
	tests := []struct {
		name  string
		setup func(l *Level)
		want  events.Outcome
	}{
		{"quit wins over everything", func(l *Level) {
			l.Quit()
			collectAll(l)
			l.player.Vitals().Health = 0
		}, events.DefeatQuit},
		{"victory wins over damage", func(l *Level) {
			collectAll(l)
			l.player.Vitals().Health = 0
		}, events.Victory},
		{"damage wins over madness", func(l *Level) {
			l.player.Vitals().Health = 0
			l.player.Vitals().Sanity = 0
		}, events.DefeatDamage},
		{"madness", func(l *Level) {
			// above 50 stress sanity does not regenerate
			l.player.Vitals().Stress = 80
			l.player.Vitals().Sanity = 0
		}, events.DefeatMadness},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := newTestLevel(t, nil, nil)
			tt.setup(l)
			s := l.Step(0.016, Intent{})
			if s.Outcome != tt.want {
				t.Fatalf("outcome = %v, want %v", s.Outcome, tt.want)
			}
		})
	}
}

func TestTimeout(t *testing.T) {
	l := newTestLevel(t, nil, func(c *config.Config) { c.Level.TimeBudget = 1 })
	if s := l.Step(0.5, Intent{}); s.Outcome != events.Running {
		t.Fatalf("outcome after 0.5s = %v", s.Outcome)
	}
	if s := l.Step(0.5, Intent{}); s.Outcome != events.DefeatTimeout {
		t.Fatalf("outcome after 1s = %v, want timeout", s.Outcome)
	}
}

func TestIntentQuit(t *testing.T) {
	l := newTestLevel(t, nil, nil)
	if s := l.Step(0.016, Intent{Quit: true}); s.Outcome != events.DefeatQuit {
		t.Fatalf("outcome = %v, want quit", s.Outcome)
	}
}

func TestOutcomeIsAbsorbingAndRaisedOnce(t *testing.T) {
	lc := NewContext()
	l := newTestLevel(t, lc, nil)

	finished := 0
	var summary events.Summary
	l.Subscribe(func(e events.Event) {
		if e.Kind == events.LevelFinished {
			finished++
			summary = e.Summary
		}
	})

	l.Quit()
	first := l.Step(0.1, Intent{})
	for i := 0; i < 5; i++ {
		s := l.Step(0.1, Intent{Forward: true})
		if s.Time != first.Time || s.Player.Position != first.Player.Position {
			t.Fatalf("state changed after terminal outcome: %+v", s)
		}
	}

	if finished != 1 {
		t.Fatalf("LevelFinished raised %d times, want 1", finished)
	}
	if summary.Outcome != events.DefeatQuit || summary.LevelID != l.ID() {
		t.Errorf("summary = %+v", summary)
	}
	if lc.Levels() != 1 {
		t.Errorf("context recorded %d levels, want 1", lc.Levels())
	}
}

func TestMonstersStopAtLevelEnd(t *testing.T) {
	l := newTestLevel(t, nil, func(c *config.Config) { c.Level.Monsters = 2 })
	l.Quit()
	s := l.Step(0.1, Intent{})
	for _, m := range s.Monsters {
		if m.Active {
			t.Fatalf("monster %s still active", m.ID)
		}
	}
}

func TestDarknessStages(t *testing.T) {
	l := newTestLevel(t, nil, nil)

	s := l.Step(0.1, Intent{ToggleLight: true})
	if s.Player.FlashlightOn {
		t.Fatal("flashlight should be off after toggle")
	}
	for i := 0; i < 60; i++ {
		s = l.Step(0.1, Intent{})
	}
	if s.Stage != StageDark {
		t.Errorf("stage after ~6s dark = %v, want dark", s.Stage)
	}
	if s.Darkness < 1.5 {
		t.Errorf("darkness factor = %v, want >= 1.5 with the light off", s.Darkness)
	}

	// Back in the light darkness time drains twice as fast
	l.Step(0.1, Intent{ToggleLight: true})
	for i := 0; i < 40; i++ {
		s = l.Step(0.1, Intent{})
	}
	if s.Stage != StageLit {
		t.Errorf("stage after recovery = %v, want lit", s.Stage)
	}
}

func TestStageFor(t *testing.T) {
	tests := []struct {
		dark float64
		want DarknessStage
	}{
		{0, StageLit},
		{0.1, StageDim},
		{5, StageDim},
		{5.1, StageDark},
		{10, StageDark},
		{10.1, StagePitch},
	}
	for _, tt := range tests {
		if got := stageFor(tt.dark); got != tt.want {
			t.Errorf("stageFor(%v) = %v, want %v", tt.dark, got, tt.want)
		}
	}
}

func TestStressRecoversTowardBaseline(t *testing.T) {
	l := newTestLevel(t, nil, nil)
	l.player.Vitals().Stress = 40
	for i := 0; i < 100; i++ {
		l.Step(0.1, Intent{})
	}
	if got := l.player.Vitals().Stress; got < l.cfg.Player.StressBaseline || got > 40 {
		t.Fatalf("stress = %v, want between baseline and 40", got)
	}
}

func TestMapToggleCooldown(t *testing.T) {
	l := newTestLevel(t, nil, nil)
	steps := []struct {
		toggle bool
		want   bool
	}{
		{true, true},
		{true, true}, // inside the cooldown
		{false, true},
		{false, true},
		{true, false},
		{false, false},
	}
	for i, st := range steps {
		s := l.Step(0.1, Intent{ToggleMap: st.toggle})
		if s.ShowMap != st.want {
			t.Fatalf("step %d: ShowMap = %v, want %v", i, s.ShowMap, st.want)
		}
	}
}

func TestSnapshotReportsTensionAndIdle(t *testing.T) {
	l := newTestLevel(t, nil, nil)
	s := l.Snapshot()
	if s.TensionName != "Calm" {
		t.Errorf("initial tension = %q, want Calm", s.TensionName)
	}

	for i := 0; i < 10; i++ {
		s = l.Step(0.1, Intent{ToggleMap: i == 3})
	}
	if s.Idle < 0.8 {
		t.Errorf("idle = %v after a second without input", s.Idle)
	}
	if s = l.Step(0.1, Intent{Forward: true}); s.Idle != 0 {
		t.Errorf("idle = %v after moving", s.Idle)
	}
}

func TestDeterministicForSeed(t *testing.T) {
	script := func(i int) Intent {
		return Intent{
			Forward:     i%3 != 0,
			TurnRight:   i%50 < 10,
			StrafeLeft:  i%70 < 5,
			ToggleLight: i == 120 || i == 260,
			Scream:      i == 200,
			Look:        []ecs.Vector2{{X: float64(i%7) - 3, Y: 0}},
		}
	}
	run := func() []Snapshot {
		l := newTestLevel(t, nil, func(c *config.Config) { c.Level.Monsters = 3 })
		var out []Snapshot
		for i := 0; i < 400; i++ {
			s := l.Step(1.0/60, script(i))
			s.LevelID = ""
			for j := range s.Monsters {
				s.Monsters[j].ID = ""
			}
			out = append(out, s)
		}
		return out
	}

	a, b := run(), run()
	for i := range a {
		if a[i].Player != b[i].Player || a[i].Amplifiers != b[i].Amplifiers ||
			a[i].Tension != b[i].Tension || a[i].Outcome != b[i].Outcome {
			t.Fatalf("tick %d diverged:\n%+v\n%+v", i, a[i], b[i])
		}
		for j := range a[i].Monsters {
			if a[i].Monsters[j] != b[i].Monsters[j] {
				t.Fatalf("tick %d monster %d diverged", i, j)
			}
		}
	}
}

func TestContextCarriesAmplifiers(t *testing.T) {
	lc := NewContext()
	lc.Profile.Amplifiers = fear.Amplifiers{
		Monsters: 1.4, Darkness: 1.2, JumpScares: 1, Sounds: 1.1,
		Atmosphere: 1, Paranoia: 1, TightSpaces: 1,
	}
	l := newTestLevel(t, lc, nil)
	if got := l.Amplifiers(); got != lc.Profile.Amplifiers {
		t.Fatalf("initial amplifiers = %+v, want carried %+v", got, lc.Profile.Amplifiers)
	}

	l.Quit()
	l.Step(0.1, Intent{})
	if lc.Profile.Amplifiers != l.Amplifiers() {
		t.Errorf("context did not take the final amplifiers")
	}
	if len(lc.History) != 1 || lc.History[0].Outcome != events.DefeatQuit {
		t.Errorf("history = %+v", lc.History)
	}
}

func TestInitialAmplifiersFromCalibration(t *testing.T) {
	tests := []struct {
		reaction float64
		want     float64
	}{
		{0, 1},
		{0.8, 1},
		{0.4, 1},
		{0.25, 1.5},
		{0.1, 1.5},
	}
	for _, tt := range tests {
		lc := &Context{Profile: Profile{ReactionTime: tt.reaction}}
		if got := lc.InitialAmplifiers().Monsters; got != tt.want {
			t.Errorf("reaction %v: monsters = %v, want %v", tt.reaction, got, tt.want)
		}
	}
	var nilCtx *Context
	if nilCtx.InitialAmplifiers() != fear.Neutral() {
		t.Error("nil context should start neutral")
	}
}
