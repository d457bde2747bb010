package stage

import (
	"errors"
	"strings"
	"testing"

	"fear-maze/internal/config"
	"fear-maze/internal/core"
	"fear-maze/internal/events"
)

type scripted struct {
	name        string
	finishAfter int // updates before finishing; 0 finishes on enter
	result      Result
	enterErr    error

	updates int
	exited  bool
	finish  Finish
}

func (s *scripted) Name() string { return s.name }

func (s *scripted) Enter(finish Finish) error {
	s.finish = finish
	if s.enterErr != nil {
		return s.enterErr
	}
	if s.finishAfter == 0 {
		finish(s.result)
	}
	return nil
}

func (s *scripted) Update(float64) error {
	s.updates++
	if s.updates == s.finishAfter {
		s.finish(s.result)
		// a second call is ignored
		s.finish(Result{Quit: true})
	}
	return nil
}

func (s *scripted) Exit() { s.exited = true }

func TestOrchestratorTransitions(t *testing.T) {
	a := &scripted{name: "a", finishAfter: 2, result: Result{Outcome: events.Victory}}
	b := &scripted{name: "b", finishAfter: 0}
	c := &scripted{name: "c", finishAfter: 1}

	order := map[string]Stage{"a": b, "b": c}
	next := func(finished Stage, r Result) Stage {
		if s, ok := order[finished.Name()]; ok {
			return s
		}
		return nil
	}

	o, err := NewOrchestrator(a, next)
	if err != nil {
		t.Fatal(err)
	}
	if err := o.Update(0.1); err != nil || o.Current() != a {
		t.Fatalf("after one update current = %v, err = %v", o.Current(), err)
	}
	// a finishes, b finishes while entering, c becomes current
	if err := o.Update(0.1); err != nil || o.Current() != c {
		t.Fatalf("current = %v, err = %v, want c", o.Current(), err)
	}
	if !a.exited || !b.exited || c.exited {
		t.Errorf("exited a=%v b=%v c=%v", a.exited, b.exited, c.exited)
	}
	if b.updates != 0 {
		t.Errorf("b was updated %d times after finishing on enter", b.updates)
	}

	if err := o.Update(0.1); err != nil {
		t.Fatal(err)
	}
	if !o.Done() || o.Current() != nil {
		t.Fatal("session should be over")
	}

	results := o.Results()
	if len(results) != 3 {
		t.Fatalf("results = %+v", results)
	}
	if results[0].Stage != "a" || results[0].Outcome != events.Victory || results[0].Quit {
		t.Errorf("first result = %+v", results[0])
	}
	if err := o.Update(0.1); err != nil {
		t.Errorf("update after done: %v", err)
	}
}

func TestOrchestratorErrors(t *testing.T) {
	if _, err := NewOrchestrator(nil, nil); !errors.Is(err, ErrNoStage) {
		t.Errorf("err = %v, want ErrNoStage", err)
	}
	boom := errors.New("boom")
	if _, err := NewOrchestrator(&scripted{name: "x", enterErr: boom}, nil); !errors.Is(err, boom) {
		t.Errorf("err = %v, want wrapped boom", err)
	}
}

func TestCalibration(t *testing.T) {
	c := NewCalibration(3)
	var got []Result
	if err := c.Enter(func(r Result) { got = append(got, r) }); err != nil {
		t.Fatal(err)
	}

	for i := 0; i < 3; i++ {
		c.Press()
		_ = c.Update(0.25)
		c.Release()
		_ = c.Update(0.1)
	}
	if n, of := c.Progress(); n != 3 || of != 3 {
		t.Fatalf("progress = %d/%d", n, of)
	}
	if len(got) != 0 {
		t.Fatal("finished before lingering")
	}
	_ = c.Update(0.5)
	if len(got) == 0 {
		t.Fatal("calibration did not finish")
	}
	if rt := got[0].ReactionTime; rt < 0.249 || rt > 0.251 {
		t.Errorf("reaction time = %v, want 0.25", rt)
	}
	if c.Pattern() != "fast" {
		t.Errorf("pattern = %q, want fast", c.Pattern())
	}
	if NewCalibration(0).Pattern() != "normal" {
		t.Error("pattern without presses should be normal")
	}
}

func TestResultsLines(t *testing.T) {
	won := events.Summary{Outcome: events.Victory, KeysFound: 3, KeysRequired: 3, Elapsed: 100, Sanity: 80, Stress: 40}
	lost := events.Summary{Outcome: events.DefeatDamage, KeysFound: 1, KeysRequired: 3, Elapsed: 61.4}
	r := NewResults(won, []events.Summary{lost, won})

	text := strings.Join(r.Lines(), "\n")
	for _, want := range []string{"You escaped the maze", "Grade: SS", "Time: 1m40s", "Score: 1,920", "Best of 2 levels: 1,920", "your 2nd level"} {
		if !strings.Contains(text, want) {
			t.Errorf("results text missing %q:\n%s", want, text)
		}
	}
	best, ok := r.Best()
	if !ok || best != won {
		t.Errorf("Best = %+v, %v", best, ok)
	}
}

func testConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.Level.Width = 11
	cfg.Level.Height = 11
	cfg.Level.Keys = 1
	cfg.Level.Monsters = 0
	cfg.Level.Seed = 9
	return cfg
}

func TestFlow(t *testing.T) {
	quit := false
	var started []*core.Level
	f := &Flow{
		Config:  testConfig(),
		Context: core.NewContext(),
		Input:   func() core.Intent { return core.Intent{Quit: quit} },
		OnStart: func(l *core.Level) { started = append(started, l) },
	}

	o, err := NewOrchestrator(f.First(true), f.Next)
	if err != nil {
		t.Fatal(err)
	}
	cal := o.Current().(*Calibration)
	cal.Skip()
	if err := o.Update(0.016); err != nil {
		t.Fatal(err)
	}
	play, ok := o.Current().(*Play)
	if !ok || len(started) != 1 {
		t.Fatalf("current = %T, started = %d", o.Current(), len(started))
	}

	quit = true
	if err := o.Update(0.016); err != nil {
		t.Fatal(err)
	}
	res, ok := o.Current().(*Results)
	if !ok {
		t.Fatalf("current = %T, want results", o.Current())
	}
	if res.Summary.Outcome != events.DefeatQuit || res.Summary.LevelID != play.Level().ID() {
		t.Errorf("summary = %+v", res.Summary)
	}
	if best, ok := res.Best(); !ok || best.LevelID != res.Summary.LevelID {
		t.Errorf("best = %+v", best)
	}

	quit = false
	res.Continue()
	if err := o.Update(0.016); err != nil {
		t.Fatal(err)
	}
	if _, ok := o.Current().(*Play); !ok || len(started) != 2 {
		t.Fatalf("current = %T, started = %d", o.Current(), len(started))
	}
	if started[0].Seed() == started[1].Seed() {
		t.Error("consecutive levels share a seed")
	}

	o.Current().(*Play).Quit()
	_ = o.Update(0.016)
	o.Current().(*Results).Quit()
	_ = o.Update(0.016)
	if !o.Done() {
		t.Fatal("session should end after quitting from results")
	}
}
