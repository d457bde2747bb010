package core

import (
	"fear-maze/internal/ai/fear"
	"fear-maze/internal/engine/ecs"
	"fear-maze/internal/events"
)

// DarknessStage grades how long the player has been without usable light
type DarknessStage int

const (
	StageLit DarknessStage = iota
	StageDim
	StageDark
	StagePitch
)

func (s DarknessStage) String() string {
	switch s {
	case StageDim:
		return "dim"
	case StageDark:
		return "dark"
	case StagePitch:
		return "pitch"
	}
	return "lit"
}

func stageFor(darkTime float64) DarknessStage {
	switch {
	case darkTime <= 0:
		return StageLit
	case darkTime <= 5:
		return StageDim
	case darkTime <= 10:
		return StageDark
	}
	return StagePitch
}

// Effects are screen-level timers owned by the simulation. Presentation
// decides how to draw them.
type Effects struct {
	Shake      float64
	Flash      float64
	Distortion float64
}

func (e *Effects) decay(deltaTime float64) {
	e.Shake = max(0, e.Shake-deltaTime)
	e.Flash = max(0, e.Flash-deltaTime*2)
	e.Distortion = max(0, e.Distortion-deltaTime)
}

// PlayerState is the player part of a snapshot
type PlayerState struct {
	Position     ecs.Vector2
	Angle        float64
	Health       float64
	Sanity       float64
	Stress       float64
	JumpScares   int
	FlashlightOn bool
	Battery      float64
	BatteryMax   float64
	Light        float64
}

// MonsterState is one monster in a snapshot
type MonsterState struct {
	ID       ecs.EntityID
	Position ecs.Vector2
	State    ecs.AIState
	Active   bool
}

// ObjectiveState is one objective in a snapshot
type ObjectiveState struct {
	Kind      ecs.ObjectiveKind
	Position  ecs.Vector2
	Collected bool
}

// Snapshot is a copy of the level state at the end of a tick. It shares no
// memory with the simulation.
type Snapshot struct {
	LevelID string
	Tick    int
	Time    float64
	Outcome events.Outcome

	Player     PlayerState
	Monsters   []MonsterState
	Objectives []ObjectiveState

	KeysFound    int
	KeysRequired int
	ExitFound    bool

	Amplifiers  fear.Amplifiers
	Effects     Effects
	Darkness    float64 // projection darkness factor
	Stage       DarknessStage
	Tension     float64
	TensionName string
	Idle        float64 // seconds since the last input
	ShowMap     bool
	TimeLeft    float64
}
