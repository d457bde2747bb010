// Package minimap lays out the top-down map overlay from a level grid and a
// snapshot. Hosts scale the result to pixels or characters.
package minimap

import (
	"math"

	"fear-maze/internal/core"
	"fear-maze/internal/engine/ecs"
	"fear-maze/internal/world/maze"
)

// Overlay geometry in pixels
const (
	maxSize   = 350
	sizeRatio = 0.8
	margin    = 20
)

// Kind of a map marker
type Kind uint8

const (
	Player Kind = iota
	Key
	Exit
	Monster
)

// Marker is a point of interest in grid coordinates
type Marker struct {
	Kind Kind
	X, Y float64
}

// Map is a top-down view of one level. Markers are in draw order, the player
// last.
type Map struct {
	Width, Height int
	Walls         []bool // row major
	Markers       []Marker
	Heading       float64
}

// Wall reports whether cell (x, y) is a wall
func (m Map) Wall(x, y int) bool {
	return m.Walls[y*m.Width+x]
}

// Build copies the grid and places markers for uncollected objectives,
// active monsters and the player.
func Build(grid *maze.Grid, snap core.Snapshot) Map {
	w, h := grid.Width(), grid.Height()
	m := Map{
		Width:   w,
		Height:  h,
		Walls:   make([]bool, w*h),
		Heading: snap.Player.Angle,
	}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			m.Walls[y*w+x] = grid.IsWall(x, y)
		}
	}

	for _, o := range snap.Objectives {
		if o.Collected {
			continue
		}
		kind := Key
		if o.Kind == ecs.ObjectiveExit {
			kind = Exit
		}
		m.Markers = append(m.Markers, Marker{Kind: kind, X: o.Position.X, Y: o.Position.Y})
	}
	for _, mon := range snap.Monsters {
		if mon.Active {
			m.Markers = append(m.Markers, Marker{Kind: Monster, X: mon.Position.X, Y: mon.Position.Y})
		}
	}
	p := snap.Player.Position
	m.Markers = append(m.Markers, Marker{Kind: Player, X: p.X, Y: p.Y})
	return m
}

// Blink reports whether a blinking marker is shown at simulated time t
func Blink(t float64) bool {
	return int(math.Floor(t*2))%2 == 0
}

// Placement is where a map lands on screen, in pixels
type Placement struct {
	Left, Top float64
	Size      float64 // side of the square area
	Cell      float64 // side of one grid cell
}

// Fit places a w x h cell map in the top-right corner of a screen
func Fit(screenW, screenH, w, h int) Placement {
	size := math.Min(maxSize, math.Floor(sizeRatio*float64(min(screenW, screenH))))
	cell := math.Max(1, math.Floor(size/float64(max(w, h, 1))))
	return Placement{
		Left: float64(screenW) - margin - size,
		Top:  margin,
		Size: size,
		Cell: cell,
	}
}
