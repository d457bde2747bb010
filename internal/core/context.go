package core

import (
	"math"

	"fear-maze/internal/ai/fear"
	"fear-maze/internal/events"
)

// Profile is what is known about the player before a level starts
type Profile struct {
	// ReactionTime is the mean reaction time in seconds measured by a
	// calibration stage. Zero means no calibration was run.
	ReactionTime float64

	// Amplifiers carried over from the previous level. The zero value means
	// none were carried.
	Amplifiers fear.Amplifiers
}

// Context carries state from one level to the next. It is passed to
// NewLevel explicitly and updated when a level finishes.
type Context struct {
	Profile Profile
	History []events.Summary
}

// NewContext creates an empty context
func NewContext() *Context {
	return &Context{}
}

// InitialAmplifiers returns the amplifiers a new level starts from. Carried
// amplifiers win; otherwise a fast calibrated reaction time starts monsters
// slightly stronger.
func (c *Context) InitialAmplifiers() fear.Amplifiers {
	if c == nil {
		return fear.Neutral()
	}
	if c.Profile.Amplifiers != (fear.Amplifiers{}) {
		return c.Profile.Amplifiers.Clamp(fear.DefaultBounds)
	}
	amps := fear.Neutral()
	if rt := c.Profile.ReactionTime; rt > 0 {
		amps.Monsters = math.Max(1, math.Min(1.5, 0.4/rt))
	}
	return amps
}

// record stores the result of a finished level
func (c *Context) record(s events.Summary, amps fear.Amplifiers) {
	if c == nil {
		return
	}
	c.History = append(c.History, s)
	c.Profile.Amplifiers = amps
}

// Levels returns how many levels have been finished with this context
func (c *Context) Levels() int {
	if c == nil {
		return 0
	}
	return len(c.History)
}
