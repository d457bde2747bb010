package maze

import (
	"math/rand/v2"
)

// Config controls maze generation.
type Config struct {
	Width, Height int
	Seed          int64

	// ChamberRadius carves an open square around the grid center. 0 disables it.
	ChamberRadius int

	// LoopChance is the probability of opening a wall cell that already touches
	// two passages, producing cycles.
	LoopChance float64

	// DeadEndThinning is the fraction of dead ends that get an extra opening.
	DeadEndThinning float64
}

const minSize = 5

type generator struct {
	w, h  int
	cells []Cell
	rng   *rand.Rand
}

// Generate builds a maze. It always succeeds: sizes below 5 are raised to 5
// and the same Config always yields the same grid.
func Generate(cfg Config) *Grid {
	w, h := max(cfg.Width, minSize), max(cfg.Height, minSize)
	gen := &generator{
		w:     w,
		h:     h,
		cells: make([]Cell, w*h),
		rng:   rand.New(rand.NewPCG(uint64(cfg.Seed), 0x9e3779b97f4a7c15)),
	}

	gen.backtrack(Point{1, 1})
	if cfg.ChamberRadius > 0 {
		gen.chamber(cfg.ChamberRadius)
	}
	gen.repair()
	gen.injectLoops(cfg.LoopChance)
	if cfg.DeadEndThinning > 0 {
		gen.thinDeadEnds(cfg.DeadEndThinning)
	}

	g := &Grid{width: w, height: h, cells: gen.cells}
	g.start = gen.pickStart()
	g.exit = farthestFrom(g.start, g.Passages())
	return g
}

func (gen *generator) interior(x, y int) bool {
	return x > 0 && y > 0 && x < gen.w-1 && y < gen.h-1
}

func (gen *generator) at(x, y int) Cell {
	if x < 0 || y < 0 || x >= gen.w || y >= gen.h {
		return Wall
	}
	return gen.cells[y*gen.w+x]
}

func (gen *generator) open(x, y int) {
	if gen.interior(x, y) {
		gen.cells[y*gen.w+x] = Passage
	}
}

// sealed reports whether (x, y) and all of its neighbors are still walls.
func (gen *generator) sealed(x, y int) bool {
	if gen.at(x, y) != Wall {
		return false
	}
	for _, d := range dirs4 {
		if gen.at(x+d.X, y+d.Y) != Wall {
			return false
		}
	}
	return true
}

// backtrack carves a spanning tree with a randomized depth-first walk that
// jumps two cells at a time and opens the wall in between.
func (gen *generator) backtrack(start Point) {
	gen.open(start.X, start.Y)
	stack := []Point{start}
	candidates := make([]Point, 0, 4)

	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		candidates = candidates[:0]
		for _, d := range dirs4 {
			nx, ny := cur.X+2*d.X, cur.Y+2*d.Y
			if gen.interior(nx, ny) && gen.sealed(nx, ny) {
				candidates = append(candidates, d)
			}
		}
		if len(candidates) == 0 {
			stack = stack[:len(stack)-1]
			continue
		}
		d := candidates[gen.rng.IntN(len(candidates))]
		gen.open(cur.X+d.X, cur.Y+d.Y)
		next := Point{cur.X + 2*d.X, cur.Y + 2*d.Y}
		gen.open(next.X, next.Y)
		stack = append(stack, next)
	}
}

func (gen *generator) chamber(radius int) {
	cx, cy := gen.w/2, gen.h/2
	for y := cy - radius; y <= cy+radius; y++ {
		for x := cx - radius; x <= cx+radius; x++ {
			gen.open(x, y)
		}
	}
}

// repair joins every passage component to the one containing the first
// passage by carving a randomized Manhattan path toward the nearest reached
// cell.
func (gen *generator) repair() {
	for {
		ids, n := label(gen.w, gen.h, gen.cells)
		if n <= 1 {
			return
		}

		from := -1
		for i, id := range ids {
			if id > 0 {
				from = i
				break
			}
		}
		fx, fy := from%gen.w, from/gen.w

		to, best := -1, 0
		for i, id := range ids {
			if id != 0 {
				continue
			}
			d := abs(i%gen.w-fx) + abs(i/gen.w-fy)
			if to < 0 || d < best {
				to, best = i, d
			}
		}
		gen.carvePath(Point{fx, fy}, Point{to % gen.w, to / gen.w})
	}
}

func (gen *generator) carvePath(from, to Point) {
	x, y := from.X, from.Y
	for x != to.X || y != to.Y {
		moveX := x != to.X && (y == to.Y || gen.rng.IntN(2) == 0)
		if moveX {
			x += sign(to.X - x)
		} else {
			y += sign(to.Y - y)
		}
		gen.open(x, y)
	}
}

func (gen *generator) passageNeighbors(x, y int) int {
	n := 0
	for _, d := range dirs4 {
		if gen.at(x+d.X, y+d.Y) == Passage {
			n++
		}
	}
	return n
}

func (gen *generator) injectLoops(chance float64) {
	if chance <= 0 {
		return
	}
	attempts := gen.w * gen.h / 20
	for i := 0; i < attempts; i++ {
		x := 1 + gen.rng.IntN(gen.w-2)
		y := 1 + gen.rng.IntN(gen.h-2)
		if gen.at(x, y) != Wall || gen.passageNeighbors(x, y) < 2 {
			continue
		}
		if gen.rng.Float64() < chance {
			gen.open(x, y)
		}
	}
}

func (gen *generator) thinDeadEnds(fraction float64) {
	var ends []Point
	for y := 1; y < gen.h-1; y++ {
		for x := 1; x < gen.w-1; x++ {
			if gen.at(x, y) == Passage && gen.passageNeighbors(x, y) <= 1 {
				ends = append(ends, Point{x, y})
			}
		}
	}

	walls := make([]Point, 0, 4)
	for _, p := range ends {
		if gen.rng.Float64() >= fraction {
			continue
		}
		walls = walls[:0]
		for _, d := range dirs4 {
			nx, ny := p.X+d.X, p.Y+d.Y
			if gen.interior(nx, ny) && gen.at(nx, ny) == Wall {
				walls = append(walls, Point{nx, ny})
			}
		}
		if len(walls) == 0 {
			continue
		}
		c := walls[gen.rng.IntN(len(walls))]
		gen.open(c.X, c.Y)
	}
}

// pickStart returns the passage with the most passages in its 5x5
// neighborhood, first in row-major order on ties.
func (gen *generator) pickStart() Point {
	best, bestOpen := Point{1, 1}, -1
	for y := 1; y < gen.h-1; y++ {
		for x := 1; x < gen.w-1; x++ {
			if gen.at(x, y) != Passage {
				continue
			}
			open := 0
			for dy := -2; dy <= 2; dy++ {
				for dx := -2; dx <= 2; dx++ {
					if gen.at(x+dx, y+dy) == Passage {
						open++
					}
				}
			}
			if open > bestOpen {
				best, bestOpen = Point{x, y}, open
			}
		}
	}
	return best
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func sign(v int) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}
