package persistence

import (
	"github.com/sirupsen/logrus"

	"fear-maze/internal/ai/fear"
	"fear-maze/internal/events"
	"fear-maze/internal/logger"
)

// Recorder archives a level when it raises LevelFinished. Store failures are
// logged and never reach the game.
type Recorder struct {
	db    *DB
	saved []string
}

// NewRecorder returns a recorder writing to db. A nil db records nothing.
func NewRecorder(db *DB) *Recorder {
	return &Recorder{db: db}
}

// Attach subscribes to bus. adaptations is read when the level finishes.
func (r *Recorder) Attach(bus *events.Bus, adaptations func() []fear.Adaptation) {
	bus.SubscribeKind(events.LevelFinished, func(e events.Event) {
		var log []fear.Adaptation
		if adaptations != nil {
			log = adaptations()
		}
		r.record(e.Summary, log)
	})
}

func (r *Recorder) record(s events.Summary, log []fear.Adaptation) {
	if r.db == nil {
		return
	}
	id, err := r.db.SaveRun(s, log)
	if err != nil {
		logger.Log.WithError(err).WithField("level", s.LevelID).Warn("run not archived")
		return
	}
	r.saved = append(r.saved, id)
	logger.Log.WithFields(logrus.Fields{
		"run":         id,
		"level":       s.LevelID,
		"outcome":     s.Outcome,
		"adaptations": len(log),
	}).Info("run archived")
}

// Saved returns the ids archived so far.
func (r *Recorder) Saved() []string {
	return r.saved
}
