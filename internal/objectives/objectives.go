// Package objectives places the keys and the exit of a level and detects
// when the player picks them up.
package objectives

import (
	"math/rand/v2"

	"fear-maze/internal/engine"
	"fear-maze/internal/engine/ecs"
	"fear-maze/internal/events"
	"fear-maze/internal/logger"
	"fear-maze/internal/world"
	"fear-maze/internal/world/maze"

	"github.com/sirupsen/logrus"
)

// Placement is where the objectives of a level go
type Placement struct {
	Keys     []maze.Point
	Exit     maze.Point
	Required int // keys needed to win
}

// Place samples up to keys key cells, without replacement, from passages
// farther than minDistance from the start. The exit cell is never a key.
// When too few cells qualify, fewer keys are placed and Required drops to
// match.
func Place(rng *rand.Rand, grid *maze.Grid, keys int, minDistance float64) Placement {
	var candidates []maze.Point
	for _, p := range grid.Passages() {
		if grid.IsExit(p) || p == grid.Start() {
			continue
		}
		if maze.Distance(p, grid.Start()) > minDistance {
			candidates = append(candidates, p)
		}
	}

	n := min(max(keys, 0), len(candidates))
	// Partial Fisher-Yates: the first n entries become the sample
	for i := 0; i < n; i++ {
		j := i + rng.IntN(len(candidates)-i)
		candidates[i], candidates[j] = candidates[j], candidates[i]
	}
	if n < keys {
		logger.Log.WithFields(logrus.Fields{
			"requested": keys,
			"placed":    n,
		}).Warn("not enough passages for keys")
	}

	return Placement{
		Keys:     append([]maze.Point(nil), candidates[:n]...),
		Exit:     grid.Exit(),
		Required: n,
	}
}

// Spawn creates the objective entities for a placement
func Spawn(w *ecs.World, p Placement) []*ecs.Entity {
	out := make([]*ecs.Entity, 0, len(p.Keys)+1)
	add := func(kind ecs.ObjectiveKind, cell maze.Point) {
		e := ecs.NewEntity()
		e.AddComponent(ecs.NewObjectiveComponent(kind, world.CellCenter(cell)))
		e.AddTag(ecs.TagObjective)
		w.AddEntity(e)
		out = append(out, e)
	}
	for _, k := range p.Keys {
		add(ecs.ObjectiveKey, k)
	}
	add(ecs.ObjectiveExit, p.Exit)
	return out
}

// Progress summarizes objective state
type Progress struct {
	KeysFound int
	KeysTotal int
	ExitFound bool
}

// Complete reports whether every key and the exit have been collected
func (p Progress) Complete(required int) bool {
	return p.ExitFound && p.KeysFound >= required
}

// Measure counts collected objectives in w
func Measure(w *ecs.World) Progress {
	var pr Progress
	for _, e := range w.GetEntitiesWithTag(ecs.TagObjective) {
		o, ok := ecs.Get[*ecs.ObjectiveComponent](e, ecs.ObjectiveComponentID)
		if !ok {
			continue
		}
		switch o.Kind {
		case ecs.ObjectiveKey:
			pr.KeysTotal++
			if o.Collected {
				pr.KeysFound++
			}
		case ecs.ObjectiveExit:
			pr.ExitFound = pr.ExitFound || o.Collected
		}
	}
	return pr
}

// PickupSystem collects objectives the player comes close to
type PickupSystem struct {
	ctx        *engine.Context
	radius     float64
	keyStress  float64
	exitStress float64
}

// NewPickupSystem creates a pickup system with the given radius and the
// stress added by each kind of pickup
func NewPickupSystem(ctx *engine.Context, radius, keyStress, exitStress float64) *PickupSystem {
	return &PickupSystem{ctx: ctx, radius: radius, keyStress: keyStress, exitStress: exitStress}
}

func (s *PickupSystem) RequiredComponents() []ecs.ComponentID {
	return []ecs.ComponentID{ecs.ObjectiveComponentID}
}

func (s *PickupSystem) Update(deltaTime float64) {
	_, player, vitals, ok := s.ctx.Player()
	if !ok {
		return
	}
	for _, e := range s.ctx.World.GetEntitiesWithTag(ecs.TagObjective) {
		o, ok := ecs.Get[*ecs.ObjectiveComponent](e, ecs.ObjectiveComponentID)
		if !ok || o.Collected {
			continue
		}
		if player.Position.Distance(o.Position) > s.radius {
			continue
		}
		if !o.Collect() {
			continue
		}

		switch o.Kind {
		case ecs.ObjectiveKey:
			vitals.AdjustStress(s.keyStress)
		case ecs.ObjectiveExit:
			vitals.AdjustStress(s.exitStress)
		}
		logger.Log.WithFields(logrus.Fields{
			"kind": o.Kind,
			"time": s.ctx.Clock.Now,
		}).Info("objective collected")

		s.ctx.Publish(events.Event{
			Kind:      events.ObjectiveCollected,
			Position:  o.Position,
			Objective: o.Kind,
			EntityID:  e.ID,
		})
	}
}
