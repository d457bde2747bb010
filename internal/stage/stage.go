// Package stage sequences the screens of a session: calibration, levels and
// results. A stage never picks its successor. It reports a Result through the
// Finish function it was entered with and the Orchestrator asks its Next
// policy what comes after.
package stage

import (
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"fear-maze/internal/events"
	"fear-maze/internal/logger"
)

// Result is what a finished stage reports
type Result struct {
	Stage        string
	Outcome      events.Outcome
	Summary      events.Summary
	ReactionTime float64 // seconds, set by calibration
	Quit         bool    // the player asked to leave the session
}

// Finish ends the stage it was handed to. Only the first call counts.
type Finish func(Result)

// Stage is one screen of the session
type Stage interface {
	Name() string
	Enter(finish Finish) error
	Update(deltaTime float64) error
}

// Exiter is implemented by stages that release resources when left
type Exiter interface {
	Exit()
}

// Next picks the stage that follows a finished one. Returning nil ends the
// session.
type Next func(finished Stage, r Result) Stage

// ErrNoStage is returned when the orchestrator is built without a first stage
var ErrNoStage = errors.New("no first stage")

// Orchestrator owns the current stage and performs transitions between ticks
type Orchestrator struct {
	current Stage
	next    Next
	pending *Result
	done    bool
	results []Result
}

// NewOrchestrator enters first
func NewOrchestrator(first Stage, next Next) (*Orchestrator, error) {
	if first == nil {
		return nil, ErrNoStage
	}
	o := &Orchestrator{next: next}
	if err := o.enter(first); err != nil {
		return nil, err
	}
	return o, nil
}

// Current returns the active stage, nil once the session is over
func (o *Orchestrator) Current() Stage {
	return o.current
}

// Done reports whether the session has ended
func (o *Orchestrator) Done() bool {
	return o.done
}

// Results returns the results of every finished stage, oldest first
func (o *Orchestrator) Results() []Result {
	return append([]Result(nil), o.results...)
}

// Update advances the current stage and switches stages when it finished
func (o *Orchestrator) Update(deltaTime float64) error {
	if err := o.advance(); err != nil || o.done {
		return err
	}
	if err := o.current.Update(deltaTime); err != nil {
		return fmt.Errorf("stage %s: %w", o.current.Name(), err)
	}
	return o.advance()
}

func (o *Orchestrator) enter(s Stage) error {
	o.current = s
	if err := s.Enter(o.finisher(s)); err != nil {
		return fmt.Errorf("enter stage %s: %w", s.Name(), err)
	}
	logger.Log.WithField("stage", s.Name()).Debug("stage entered")
	return nil
}

func (o *Orchestrator) finisher(s Stage) Finish {
	return func(r Result) {
		if o.current != s || o.pending != nil {
			return
		}
		r.Stage = s.Name()
		o.pending = &r
	}
}

// advance handles pending results. A stage may finish while being entered,
// so this loops until the current stage is running.
func (o *Orchestrator) advance() error {
	for o.pending != nil && !o.done {
		r := *o.pending
		o.pending = nil
		o.results = append(o.results, r)

		finished := o.current
		if ex, ok := finished.(Exiter); ok {
			ex.Exit()
		}

		following := o.next(finished, r)
		logger.Log.WithFields(logrus.Fields{
			"from":    finished.Name(),
			"outcome": r.Outcome,
			"quit":    r.Quit,
		}).Info("stage finished")

		if following == nil {
			o.current = nil
			o.done = true
			return nil
		}
		if err := o.enter(following); err != nil {
			return err
		}
	}
	return nil
}
