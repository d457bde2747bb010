// Package world answers spatial questions about a level: occupancy at
// continuous coordinates, line of sight and collision-resolved movement.
package world

import (
	"math"
	"math/rand/v2"

	"fear-maze/internal/engine/ecs"
	"fear-maze/internal/world/maze"
)

// World wraps a generated grid with continuous-space queries.
type World struct {
	grid *maze.Grid
}

// New creates a query layer over grid.
func New(grid *maze.Grid) *World {
	return &World{grid: grid}
}

// Grid returns the underlying maze.
func (w *World) Grid() *maze.Grid {
	return w.grid
}

// Cell returns the grid cell containing (x, y).
func Cell(x, y float64) maze.Point {
	return maze.Point{X: int(math.Floor(x)), Y: int(math.Floor(y))}
}

// CellCenter returns the center of p as a vector.
func CellCenter(p maze.Point) ecs.Vector2 {
	x, y := p.Center()
	return ecs.NewVector2(x, y)
}

// IsBlocked reports whether (x, y) is inside a wall. Anything outside the
// grid is a wall.
func (w *World) IsBlocked(x, y float64) bool {
	c := Cell(x, y)
	return w.grid.IsWall(c.X, c.Y)
}

// Collides reports whether a body of the given radius centered on pos
// overlaps a wall. Radius 0 degenerates to a point test.
func (w *World) Collides(pos ecs.Vector2, radius float64) bool {
	if radius <= 0 {
		return w.IsBlocked(pos.X, pos.Y)
	}
	return w.IsBlocked(pos.X-radius, pos.Y-radius) ||
		w.IsBlocked(pos.X+radius, pos.Y-radius) ||
		w.IsBlocked(pos.X-radius, pos.Y+radius) ||
		w.IsBlocked(pos.X+radius, pos.Y+radius)
}

// Slide moves pos by delta one axis at a time, dropping the component that
// would end inside a wall.
func (w *World) Slide(pos, delta ecs.Vector2, radius float64) ecs.Vector2 {
	next := pos
	if delta.X != 0 {
		if try := ecs.NewVector2(next.X+delta.X, next.Y); !w.Collides(try, radius) {
			next = try
		}
	}
	if delta.Y != 0 {
		if try := ecs.NewVector2(next.X, next.Y+delta.Y); !w.Collides(try, radius) {
			next = try
		}
	}
	return next
}

// LineOfSight samples the segment from a toward b at the given number of
// evenly spaced points and fails on the first one inside a wall.
func (w *World) LineOfSight(a, b ecs.Vector2, samples int) bool {
	if samples < 1 {
		samples = 1
	}
	d := b.Sub(a)
	for i := 0; i < samples; i++ {
		t := float64(i) / float64(samples)
		if w.IsBlocked(a.X+d.X*t, a.Y+d.Y*t) {
			return false
		}
	}
	return true
}

// RandomReachable picks a passage point within radius of anchor that is
// in line of sight from from. It gives up after attempts tries.
func (w *World) RandomReachable(rng *rand.Rand, from, anchor ecs.Vector2, radius float64, samples, attempts int) (ecs.Vector2, bool) {
	for i := 0; i < attempts; i++ {
		angle := rng.Float64() * 2 * math.Pi
		dist := rng.Float64() * radius
		c := Cell(anchor.X+math.Cos(angle)*dist, anchor.Y+math.Sin(angle)*dist)
		if w.grid.IsWall(c.X, c.Y) {
			continue
		}
		p := CellCenter(c)
		if w.LineOfSight(from, p, samples) {
			return p, true
		}
	}
	return from, false
}
