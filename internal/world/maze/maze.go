// Package maze holds the static occupancy grid of a level and the generator
// that builds it.
package maze

import (
	"fmt"
	"math"
	"strings"
)

// Cell is the occupancy kind of a grid cell.
type Cell uint8

const (
	Wall Cell = iota
	Passage
)

// Point addresses a grid cell.
type Point struct {
	X, Y int
}

// Center returns the continuous coordinates of the cell center.
func (p Point) Center() (float64, float64) {
	return float64(p.X) + 0.5, float64(p.Y) + 0.5
}

// Grid is an immutable rectangular maze. Border cells are walls, the passages
// form a single 4-connected component and exactly one passage is the exit.
type Grid struct {
	width, height int
	cells         []Cell
	start, exit   Point
}

var dirs4 = [4]Point{{0, -1}, {1, 0}, {0, 1}, {-1, 0}}

// Width of the grid in cells.
func (g *Grid) Width() int { return g.width }

// Height of the grid in cells.
func (g *Grid) Height() int { return g.height }

// Start is the spawn cell of the player.
func (g *Grid) Start() Point { return g.start }

// Exit is the exit cell.
func (g *Grid) Exit() Point { return g.exit }

// IsExit reports whether p is the exit cell.
func (g *Grid) IsExit(p Point) bool { return p == g.exit }

// InBounds reports whether (x, y) lies inside the grid.
func (g *Grid) InBounds(x, y int) bool {
	return x >= 0 && y >= 0 && x < g.width && y < g.height
}

// At returns the cell kind at (x, y). Out-of-bounds cells are walls.
func (g *Grid) At(x, y int) Cell {
	if !g.InBounds(x, y) {
		return Wall
	}
	return g.cells[y*g.width+x]
}

// IsWall reports whether the cell at (x, y) blocks movement and sight.
func (g *Grid) IsWall(x, y int) bool {
	return g.At(x, y) == Wall
}

// Passages lists every passage cell in row-major order.
func (g *Grid) Passages() []Point {
	var out []Point
	for y := 0; y < g.height; y++ {
		for x := 0; x < g.width; x++ {
			if g.cells[y*g.width+x] == Passage {
				out = append(out, Point{x, y})
			}
		}
	}
	return out
}

// WallNeighbors counts the walls among the four cardinal neighbors of p.
func (g *Grid) WallNeighbors(p Point) int {
	n := 0
	for _, d := range dirs4 {
		if g.IsWall(p.X+d.X, p.Y+d.Y) {
			n++
		}
	}
	return n
}

// DeadEnds lists passages enclosed by at least three walls, row-major.
func (g *Grid) DeadEnds() []Point {
	var out []Point
	for _, p := range g.Passages() {
		if g.WallNeighbors(p) >= 3 {
			out = append(out, p)
		}
	}
	return out
}

// Components counts the 4-connected components formed by passages.
func (g *Grid) Components() int {
	_, n := label(g.width, g.height, g.cells)
	return n
}

// Distance is the Euclidean distance between two cell centers.
func Distance(a, b Point) float64 {
	return math.Hypot(float64(a.X-b.X), float64(a.Y-b.Y))
}

// String renders the grid with '#' for walls, '.' for passages, 'S' and 'E'
// for the start and exit cells.
func (g *Grid) String() string {
	var b strings.Builder
	for y := 0; y < g.height; y++ {
		for x := 0; x < g.width; x++ {
			p := Point{x, y}
			switch {
			case p == g.start:
				b.WriteByte('S')
			case p == g.exit:
				b.WriteByte('E')
			case g.IsWall(x, y):
				b.WriteByte('#')
			default:
				b.WriteByte('.')
			}
		}
		b.WriteByte('\n')
	}
	return b.String()
}

// Parse builds a grid from rows of '#' (wall) and any other byte (passage).
// 'S' and 'E' mark the start and exit; when absent the start is the first
// passage and the exit the passage farthest from it. Used by tools and tests
// that need a hand-drawn layout.
func Parse(rows []string) (*Grid, error) {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil, fmt.Errorf("empty layout")
	}
	g := &Grid{width: len(rows[0]), height: len(rows)}
	g.cells = make([]Cell, g.width*g.height)
	hasStart, hasExit := false, false
	for y, row := range rows {
		if len(row) != g.width {
			return nil, fmt.Errorf("row %d has width %d, want %d", y, len(row), g.width)
		}
		for x := 0; x < len(row); x++ {
			if row[x] == '#' {
				continue
			}
			g.cells[y*g.width+x] = Passage
			switch row[x] {
			case 'S':
				g.start, hasStart = Point{x, y}, true
			case 'E':
				g.exit, hasExit = Point{x, y}, true
			}
		}
	}
	passages := g.Passages()
	if len(passages) == 0 {
		return nil, fmt.Errorf("layout has no passages")
	}
	if !hasStart {
		g.start = passages[0]
	}
	if !hasExit {
		g.exit = farthestFrom(g.start, passages)
	}
	return g, nil
}

func farthestFrom(from Point, passages []Point) Point {
	best, bestDist := from, -1.0
	for _, p := range passages {
		if d := Distance(from, p); d > bestDist {
			best, bestDist = p, d
		}
	}
	return best
}

// label assigns a component index to every passage (walls get -1) in
// row-major discovery order and returns the number of components.
func label(w, h int, cells []Cell) ([]int, int) {
	ids := make([]int, len(cells))
	for i := range ids {
		ids[i] = -1
	}
	n := 0
	queue := make([]int, 0, len(cells))
	for i, c := range cells {
		if c != Passage || ids[i] >= 0 {
			continue
		}
		ids[i] = n
		queue = append(queue[:0], i)
		for len(queue) > 0 {
			cur := queue[0]
			queue = queue[1:]
			cx, cy := cur%w, cur/w
			for _, d := range dirs4 {
				nx, ny := cx+d.X, cy+d.Y
				if nx < 0 || ny < 0 || nx >= w || ny >= h {
					continue
				}
				j := ny*w + nx
				if cells[j] == Passage && ids[j] < 0 {
					ids[j] = n
					queue = append(queue, j)
				}
			}
		}
		n++
	}
	return ids, n
}
