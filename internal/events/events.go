// Package events carries simulation output to presentation collaborators
// (audio, renderers, the run archive). The simulation never waits on a
// listener and works the same with none attached.
package events

import (
	"fear-maze/internal/ai/fear"
	"fear-maze/internal/engine/ecs"
)

// Kind identifies an output event
type Kind string

const (
	MonsterAttack      Kind = "monster_attack"
	ObjectiveCollected Kind = "objective_collected"
	FlashlightChanged  Kind = "flashlight_changed"
	AmplifiersUpdated  Kind = "amplifiers_updated"
	ScareTriggered     Kind = "scare_triggered"
	LevelFinished      Kind = "level_finished"
)

// Event is a single output event. Only the fields relevant to Kind are set.
type Event struct {
	Kind Kind
	Time float64 // simulated seconds since level start

	Position  ecs.Vector2
	Intensity float64
	EntityID  ecs.EntityID

	Objective ecs.ObjectiveKind

	FlashlightOn bool
	Battery      float64

	Amplifiers fear.Amplifiers

	Scare fear.Scare

	Outcome Outcome
	Summary Summary
}

// Listener receives events synchronously during the tick that raised them
type Listener func(Event)

// Bus fans events out to listeners in subscription order
type Bus struct {
	listeners []Listener
	byKind    map[Kind][]Listener
}

// NewBus creates an empty bus
func NewBus() *Bus {
	return &Bus{byKind: make(map[Kind][]Listener)}
}

// Subscribe registers a listener for every event
func (b *Bus) Subscribe(l Listener) {
	b.listeners = append(b.listeners, l)
}

// SubscribeKind registers a listener for one kind of event
func (b *Bus) SubscribeKind(kind Kind, l Listener) {
	b.byKind[kind] = append(b.byKind[kind], l)
}

// Publish delivers e to the listeners
func (b *Bus) Publish(e Event) {
	if b == nil {
		return
	}
	for _, l := range b.listeners {
		l(e)
	}
	for _, l := range b.byKind[e.Kind] {
		l(e)
	}
}
