package raycast

import (
	"image/color"
	"math"
	"slices"
)

// Billboard is an object drawn as a flat rectangle facing the viewer.
type Billboard struct {
	X, Y  float64
	Size  float64 // fraction of a wall's height
	Color color.RGBA
}

// Sprite is a billboard placed on screen.
type Sprite struct {
	X, Y, W, H float64
	Distance   float64
	Color      color.RGBA
}

// ProjectSprites places billboards in the view described by hits. Billboards
// behind the wall of their column or outside the field of view are dropped.
// The result is ordered far to near.
func ProjectSprites(bs []Billboard, ox, oy, heading, fov float64, hits []Hit, vp Viewport, darkness float64) []Sprite {
	if len(hits) == 0 || fov <= 0 {
		return nil
	}
	if darkness <= 0 {
		darkness = 1
	}

	var out []Sprite
	for _, b := range bs {
		dx, dy := b.X-ox, b.Y-oy
		dist := math.Hypot(dx, dy)
		if dist < 0.2 {
			continue
		}
		rel := normalize(math.Atan2(dy, dx) - heading)
		if math.Abs(rel) > fov/2 {
			continue
		}

		frac := (rel + fov/2) / fov
		col := min(int(frac*float64(len(hits))), len(hits)-1)
		if !hits[col].Far && hits[col].Distance < dist {
			continue
		}

		scaled := math.Max(dist*darkness, 0.1)
		wallH := vp.Height / scaled
		if vp.HeightCap > 0 {
			wallH = math.Min(vp.HeightCap, wallH)
		}
		h := wallH * b.Size
		bottom := (vp.Height + wallH) / 2
		out = append(out, Sprite{
			X:        frac*vp.Width - h/2,
			Y:        bottom - h,
			W:        h,
			H:        h,
			Distance: dist,
			Color:    shade(b.Color, math.Min(1, 8/scaled)),
		})
	}

	slices.SortFunc(out, func(a, b Sprite) int {
		switch {
		case a.Distance > b.Distance:
			return -1
		case a.Distance < b.Distance:
			return 1
		}
		return 0
	})
	return out
}

// normalize wraps an angle into [-pi, pi]
func normalize(a float64) float64 {
	a = math.Mod(a+math.Pi, 2*math.Pi)
	if a < 0 {
		a += 2 * math.Pi
	}
	return a - math.Pi
}
