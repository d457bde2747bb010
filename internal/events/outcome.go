package events

import (
	"fmt"
	"math"
)

// Outcome is the state of a level. Every value other than Running is
// terminal and absorbing.
type Outcome int

const (
	Running Outcome = iota
	Victory
	DefeatDamage
	DefeatMadness
	DefeatTimeout
	DefeatQuit
)

var outcomeNames = map[Outcome]string{
	Running:       "running",
	Victory:       "victory",
	DefeatDamage:  "defeat_damage",
	DefeatMadness: "defeat_madness",
	DefeatTimeout: "defeat_timeout",
	DefeatQuit:    "defeat_quit",
}

func (o Outcome) String() string {
	if name, ok := outcomeNames[o]; ok {
		return name
	}
	return fmt.Sprintf("outcome(%d)", int(o))
}

// Terminal reports whether the level has ended
func (o Outcome) Terminal() bool {
	return o != Running
}

// ParseOutcome is the inverse of Outcome.String
func ParseOutcome(s string) (Outcome, error) {
	for o, name := range outcomeNames {
		if name == s {
			return o, nil
		}
	}
	return Running, fmt.Errorf("unknown outcome %q", s)
}

// Summary describes how a level ended
type Summary struct {
	LevelID      string
	Seed         int64
	Outcome      Outcome
	Elapsed      float64 // seconds
	KeysFound    int
	KeysRequired int
	Health       float64
	Sanity       float64
	Stress       float64
	JumpScares   int
}

// Survived reports whether the player won
func (s Summary) Survived() bool {
	return s.Outcome == Victory
}

// Score rates a run. Victory is worth the most; faster and calmer runs score
// higher.
func (s Summary) Score() int {
	score := float64(s.KeysFound) * 100
	if s.Outcome == Victory {
		score += 1000 + math.Max(0, 600-s.Elapsed)
	}
	score += s.Sanity*2 - s.Stress
	return int(math.Max(0, math.Round(score)))
}

var grades = []struct {
	min     int
	grade   string
	comment string
}{
	{1900, "SS", "Flawless. The maze has nothing left to teach you."},
	{1700, "S", "Excellent. You kept your fear under control."},
	{1500, "A", "Good. You handled the trial."},
	{1300, "B", "Not bad. You survived the maze."},
	{1100, "C", "You got lucky on the way out."},
}

// Grade rates the score with a letter and a one-line comment
func (s Summary) Grade() (string, string) {
	score := s.Score()
	for _, g := range grades {
		if score >= g.min {
			return g.grade, g.comment
		}
	}
	if s.Outcome == Victory {
		return "D", "Barely made it. Keep practicing."
	}
	return "D", "The maze won this time."
}
