package stage

import (
	"fear-maze/internal/config"
	"fear-maze/internal/core"
)

// Input supplies the intent for the next tick
type Input func() core.Intent

// Play runs one maze level until it reaches a terminal outcome
type Play struct {
	cfg     *config.Config
	lc      *core.Context
	input   Input
	onStart func(*core.Level)

	level  *core.Level
	last   core.Snapshot
	finish Finish
}

// NewPlay creates a level stage. onStart, when set, sees the level before its
// first tick so listeners can subscribe to its bus.
func NewPlay(cfg *config.Config, lc *core.Context, input Input, onStart func(*core.Level)) *Play {
	return &Play{cfg: cfg, lc: lc, input: input, onStart: onStart}
}

func (p *Play) Name() string { return "level" }

// Enter generates the level. A fixed seed is offset by the number of levels
// already played so consecutive levels differ.
func (p *Play) Enter(finish Finish) error {
	p.finish = finish

	cfg := *p.cfg
	if cfg.Level.Seed != 0 {
		cfg.Level.Seed += int64(p.lc.Levels())
	}
	level, err := core.NewLevel(&cfg, p.lc)
	if err != nil {
		return err
	}
	p.level = level
	if p.onStart != nil {
		p.onStart(level)
	}
	p.last = level.Snapshot()
	return nil
}

func (p *Play) Update(deltaTime float64) error {
	var in core.Intent
	if p.input != nil {
		in = p.input()
	}
	p.last = p.level.Step(deltaTime, in)
	if p.last.Outcome.Terminal() {
		s := p.level.Summary()
		p.finish(Result{Outcome: s.Outcome, Summary: s})
	}
	return nil
}

// Quit ends the level with DefeatQuit on the next tick
func (p *Play) Quit() {
	if p.level != nil {
		p.level.Quit()
	}
}

// Level returns the running level
func (p *Play) Level() *core.Level { return p.level }

// Snapshot returns the state after the latest tick
func (p *Play) Snapshot() core.Snapshot { return p.last }
