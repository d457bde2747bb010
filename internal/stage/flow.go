package stage

import (
	"fear-maze/internal/config"
	"fear-maze/internal/core"
)

// Flow is the standard session: calibration, then levels alternating with
// results until the player quits from a results screen.
type Flow struct {
	Config  *config.Config
	Context *core.Context
	Input   Input
	OnStart func(*core.Level)
}

// First returns the opening stage. Without calibration the session starts
// with a level.
func (f *Flow) First(calibrate bool) Stage {
	if calibrate {
		return NewCalibration(10)
	}
	return f.play()
}

// Next implements the Next policy
func (f *Flow) Next(finished Stage, r Result) Stage {
	if r.Quit {
		return nil
	}
	switch finished.(type) {
	case *Calibration:
		f.Context.Profile.ReactionTime = r.ReactionTime
		return f.play()
	case *Play:
		return NewResults(r.Summary, f.Context.History)
	case *Results:
		return f.play()
	}
	return nil
}

func (f *Flow) play() *Play {
	return NewPlay(f.Config, f.Context, f.Input, f.OnStart)
}
