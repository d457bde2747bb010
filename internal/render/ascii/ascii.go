// Package ascii rasterizes projected columns and sprites into a character
// grid for terminal hosts.
package ascii

import (
	"image/color"
	"math"

	"fear-maze/internal/render/minimap"
	"fear-maze/internal/render/raycast"
)

// Cell is one character on screen.
type Cell struct {
	Rune  rune
	Color color.RGBA
}

// wall glyphs from near to far
var wallGlyphs = []rune{'█', '▓', '▒', '░'}

// Frame is a width x height character buffer, row major.
type Frame struct {
	Width, Height int
	Cells         []Cell
}

// NewFrame allocates a blank frame.
func NewFrame(width, height int) *Frame {
	return &Frame{Width: width, Height: height, Cells: make([]Cell, width*height)}
}

// At returns the cell at (x, y).
func (f *Frame) At(x, y int) Cell {
	return f.Cells[y*f.Width+x]
}

func (f *Frame) set(x, y int, c Cell) {
	if x < 0 || y < 0 || x >= f.Width || y >= f.Height {
		return
	}
	f.Cells[y*f.Width+x] = c
}

// Draw fills the frame from one column per character. hits and cols must
// have the same length as the frame width.
func (f *Frame) Draw(hits []raycast.Hit, cols []raycast.Column, sprites []raycast.Sprite, sprite func(raycast.Sprite) rune) {
	for x := 0; x < f.Width && x < len(cols); x++ {
		c := cols[x]
		glyph := wallGlyph(hits[x].Distance)
		for y := 0; y < f.Height; y++ {
			fy := float64(y) + 0.5
			switch {
			case fy < c.Top:
				f.set(x, y, Cell{Rune: ' ', Color: c.Ceiling})
			case fy < c.Bottom:
				if hits[x].Far {
					f.set(x, y, Cell{Rune: ' ', Color: c.Wall})
					continue
				}
				f.set(x, y, Cell{Rune: glyph, Color: c.Wall})
			default:
				f.set(x, y, Cell{Rune: floorGlyph(fy, float64(f.Height)), Color: c.Floor})
			}
		}
	}

	for _, s := range sprites {
		r := sprite(s)
		x0, x1 := int(math.Floor(s.X)), int(math.Ceil(s.X+s.W))
		y0, y1 := int(math.Floor(s.Y)), int(math.Ceil(s.Y+s.H))
		for y := y0; y < y1; y++ {
			for x := x0; x < x1; x++ {
				f.set(x, y, Cell{Rune: r, Color: s.Color})
			}
		}
	}
}

// Text writes s starting at (x, y), clipped to the frame.
func (f *Frame) Text(x, y int, s string, c color.RGBA) {
	for _, r := range s {
		f.set(x, y, Cell{Rune: r, Color: c})
		x++
	}
}

var (
	mapWall  = color.RGBA{R: 80, G: 80, B: 80, A: 255}
	mapFloor = color.RGBA{R: 40, G: 40, B: 50, A: 255}
)

var markerCells = map[minimap.Kind]Cell{
	minimap.Player:  {Rune: '@', Color: color.RGBA{G: 255, A: 255}},
	minimap.Key:     {Rune: 'k', Color: color.RGBA{R: 255, G: 215, A: 255}},
	minimap.Exit:    {Rune: 'X', Color: color.RGBA{R: 255, G: 50, B: 50, A: 255}},
	minimap.Monster: {Rune: 'M', Color: color.RGBA{R: 200, G: 50, B: 50, A: 255}},
}

// Map draws m one character per cell with its top-left corner at (x0, y0).
// The exit marker is skipped when blink is false.
func (f *Frame) Map(m minimap.Map, x0, y0 int, blink bool) {
	for y := 0; y < m.Height; y++ {
		for x := 0; x < m.Width; x++ {
			c := Cell{Rune: '·', Color: mapFloor}
			if m.Wall(x, y) {
				c = Cell{Rune: '#', Color: mapWall}
			}
			f.set(x0+x, y0+y, c)
		}
	}
	for _, mk := range m.Markers {
		if mk.Kind == minimap.Exit && !blink {
			continue
		}
		f.set(x0+int(math.Floor(mk.X)), y0+int(math.Floor(mk.Y)), markerCells[mk.Kind])
	}
}

func wallGlyph(distance float64) rune {
	i := int(distance / 3)
	if i >= len(wallGlyphs) {
		i = len(wallGlyphs) - 1
	}
	return wallGlyphs[max(i, 0)]
}

// floorGlyph thins the floor toward the horizon
func floorGlyph(y, height float64) rune {
	if y > height*0.8 {
		return '.'
	}
	return ' '
}
