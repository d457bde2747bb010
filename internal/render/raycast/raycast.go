// Package raycast turns an occupancy grid into a first-person column view by
// marching rays in fixed steps.
package raycast

import (
	"image/color"
	"math"
)

// Occupancy is the only thing the marcher needs from a level.
type Occupancy interface {
	IsBlocked(x, y float64) bool
}

// HitKind classifies how a ray entered its wall cell.
type HitKind uint8

const (
	HitFront HitKind = iota
	HitSide
	HitCorner
)

func (k HitKind) String() string {
	switch k {
	case HitSide:
		return "side"
	case HitCorner:
		return "corner"
	}
	return "front"
}

// Hit is the result of one ray.
type Hit struct {
	Distance float64
	Kind     HitKind
	Angle    float64
	Far      bool // the ray ran out of range without hitting a wall
}

// Marcher casts rays with a fixed step up to a maximum distance.
type Marcher struct {
	Step        float64
	MaxDistance float64
}

// NewMarcher returns a marcher with the given step and range.
func NewMarcher(step, maxDistance float64) *Marcher {
	return &Marcher{Step: step, MaxDistance: maxDistance}
}

// CastRay marches a single ray from (ox, oy) along angle.
func (m *Marcher) CastRay(grid Occupancy, ox, oy, angle float64) Hit {
	dx, dy := math.Cos(angle), math.Sin(angle)
	lastX, lastY := int(math.Floor(ox)), int(math.Floor(oy))

	for depth := m.Step; depth < m.MaxDistance; depth += m.Step {
		x, y := ox+dx*depth, oy+dy*depth
		if !grid.IsBlocked(x, y) {
			lastX, lastY = int(math.Floor(x)), int(math.Floor(y))
			continue
		}
		gx, gy := int(math.Floor(x)), int(math.Floor(y))
		kind := HitFront
		switch {
		case gx != lastX && gy != lastY:
			kind = HitCorner
		case gx != lastX:
			kind = HitSide
		}
		return Hit{Distance: depth, Kind: kind, Angle: angle}
	}
	return Hit{Distance: m.MaxDistance, Kind: HitFront, Angle: angle, Far: true}
}

// Cast spreads columns rays evenly across fov centered on heading.
func (m *Marcher) Cast(grid Occupancy, ox, oy, heading, fov float64, columns int) []Hit {
	if columns <= 0 {
		return nil
	}
	hits := make([]Hit, columns)
	start := heading - fov/2
	delta := fov / float64(columns)
	for i := range hits {
		hits[i] = m.CastRay(grid, ox, oy, start+float64(i)*delta)
	}
	return hits
}

// Column is one projected screen slice.
type Column struct {
	X, Width    float64
	Top, Bottom float64
	Wall        color.RGBA
	Floor       color.RGBA
	Ceiling     color.RGBA
}

var (
	frontColor   = color.RGBA{80, 70, 60, 255}
	sideColor    = color.RGBA{70, 60, 50, 255}
	floorColor   = color.RGBA{40, 30, 20, 255}
	ceilingColor = color.RGBA{20, 15, 30, 255}
)

// Viewport is the area the columns are projected into.
type Viewport struct {
	Width, Height float64
	HeightCap     float64
}

// Project converts hits to screen columns. The raw march distance is used for
// the wall height, so straight walls bow at the edges of the view.
func Project(hits []Hit, vp Viewport, darkness float64) []Column {
	if len(hits) == 0 {
		return nil
	}
	if darkness <= 0 {
		darkness = 1
	}
	width := vp.Width / float64(len(hits))
	cols := make([]Column, len(hits))
	for i, h := range hits {
		scaled := math.Max(h.Distance*darkness, 0.1)
		wallH := vp.Height / scaled
		if vp.HeightCap > 0 {
			wallH = math.Min(vp.HeightCap, wallH)
		}
		darken := math.Min(1, 8/scaled)

		base := frontColor
		if h.Kind == HitSide {
			base = sideColor
		}
		top := (vp.Height - wallH) / 2
		cols[i] = Column{
			X:       float64(i) * width,
			Width:   width,
			Top:     top,
			Bottom:  top + wallH,
			Wall:    shade(base, darken),
			Floor:   shade(floorColor, darken*0.6),
			Ceiling: shade(ceilingColor, darken*0.5),
		}
	}
	return cols
}

func shade(c color.RGBA, f float64) color.RGBA {
	f = math.Max(0, math.Min(1, f))
	return color.RGBA{
		R: uint8(float64(c.R) * f),
		G: uint8(float64(c.G) * f),
		B: uint8(float64(c.B) * f),
		A: c.A,
	}
}
