package stage

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"

	"fear-maze/internal/events"
)

// Results shows how a level ended and waits for the player to continue or
// leave.
type Results struct {
	Summary events.Summary
	History []events.Summary

	finish Finish
}

// NewResults creates a results stage for s. history holds every finished
// level including s.
func NewResults(s events.Summary, history []events.Summary) *Results {
	return &Results{Summary: s, History: append([]events.Summary(nil), history...)}
}

func (r *Results) Name() string { return "results" }

func (r *Results) Enter(finish Finish) error {
	r.finish = finish
	return nil
}

func (r *Results) Update(float64) error { return nil }

// Continue starts the next level
func (r *Results) Continue() {
	r.finish(Result{Outcome: r.Summary.Outcome, Summary: r.Summary})
}

// Quit ends the session
func (r *Results) Quit() {
	r.finish(Result{Outcome: r.Summary.Outcome, Summary: r.Summary, Quit: true})
}

// Best returns the highest scoring level so far
func (r *Results) Best() (events.Summary, bool) {
	var best events.Summary
	found := false
	for _, s := range r.History {
		if !found || s.Score() > best.Score() {
			best, found = s, true
		}
	}
	return best, found
}

var outcomeTitles = map[events.Outcome]string{
	events.Victory:       "You escaped the maze",
	events.DefeatDamage:  "The monsters got you",
	events.DefeatMadness: "Your mind gave out",
	events.DefeatTimeout: "Time ran out",
	events.DefeatQuit:    "You gave up",
}

// Lines renders the results screen text
func (r *Results) Lines() []string {
	s := r.Summary
	grade, comment := s.Grade()
	elapsed := time.Duration(s.Elapsed * float64(time.Second)).Round(time.Second)

	lines := []string{
		outcomeTitles[s.Outcome],
		"",
		fmt.Sprintf("Grade: %s", grade),
		comment,
		"",
		fmt.Sprintf("Time: %s", elapsed),
		fmt.Sprintf("Keys: %d/%d", s.KeysFound, s.KeysRequired),
		fmt.Sprintf("Stress: %.0f%%", s.Stress),
		fmt.Sprintf("Sanity: %.0f%%", s.Sanity),
		fmt.Sprintf("Jump scares: %d", s.JumpScares),
		fmt.Sprintf("Score: %s", humanize.Comma(int64(s.Score()))),
	}
	if best, ok := r.Best(); ok && len(r.History) > 1 {
		lines = append(lines, fmt.Sprintf("Best of %d levels: %s", len(r.History), humanize.Comma(int64(best.Score()))))
	}
	if n := len(r.History); n > 0 {
		lines = append(lines, fmt.Sprintf("That was your %s level", humanize.Ordinal(n)))
	}
	return append(lines, "", "Enter: next level    Esc: quit")
}
