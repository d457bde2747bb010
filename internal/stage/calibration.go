package stage

import "time"

// Calibration measures how long the player holds a button over a series of
// presses. The mean hold time seeds the first level's amplifiers.
type Calibration struct {
	required int
	linger   float64

	now       float64
	pressedAt float64
	pressed   bool
	holds     []float64
	doneAt    float64
	complete  bool
	finish    Finish
}

// NewCalibration creates a calibration that needs required presses
func NewCalibration(required int) *Calibration {
	if required <= 0 {
		required = 10
	}
	return &Calibration{required: required, linger: 0.5}
}

func (c *Calibration) Name() string { return "calibration" }

func (c *Calibration) Enter(finish Finish) error {
	c.finish = finish
	return nil
}

// Press starts a hold. The screen shows white while pressed.
func (c *Calibration) Press() {
	if c.complete || c.pressed {
		return
	}
	c.pressed = true
	c.pressedAt = c.now
}

// Release ends a hold and counts it
func (c *Calibration) Release() {
	if c.complete || !c.pressed {
		return
	}
	c.pressed = false
	c.holds = append(c.holds, c.now-c.pressedAt)
	if len(c.holds) >= c.required {
		c.complete = true
		c.doneAt = c.now
	}
}

// Skip finishes without a measurement
func (c *Calibration) Skip() {
	c.finish(Result{})
}

// Pressed reports whether the button is held
func (c *Calibration) Pressed() bool { return c.pressed }

// Progress returns counted and required presses
func (c *Calibration) Progress() (int, int) { return len(c.holds), c.required }

// ReactionTime returns the mean hold time so far
func (c *Calibration) ReactionTime() float64 {
	if len(c.holds) == 0 {
		return 0
	}
	sum := 0.0
	for _, h := range c.holds {
		sum += h
	}
	return sum / float64(len(c.holds))
}

// Pattern classifies the mean hold time
func (c *Calibration) Pattern() string {
	if len(c.holds) == 0 {
		return "normal"
	}
	switch rt := c.ReactionTime(); {
	case rt < 0.1:
		return "instant"
	case rt < 0.3:
		return "fast"
	case rt < 0.8:
		return "medium"
	}
	return "slow"
}

// MeanHold is ReactionTime as a duration, for display
func (c *Calibration) MeanHold() time.Duration {
	return time.Duration(c.ReactionTime() * float64(time.Second))
}

func (c *Calibration) Update(deltaTime float64) error {
	c.now += deltaTime
	if c.complete && c.now-c.doneAt >= c.linger {
		c.finish(Result{ReactionTime: c.ReactionTime()})
	}
	return nil
}
