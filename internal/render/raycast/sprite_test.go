package raycast

import (
	"math"
	"testing"
)

func TestProjectSprites(t *testing.T) {
	open := room(t,
		"#######",
		"#.....#",
		"#.....#",
		"#.....#",
		"#######",
	)
	walled := room(t,
		"#######",
		"#..#..#",
		"#..#..#",
		"#######",
	)
	m := NewMarcher(0.05, 25)
	vp := Viewport{Width: 300, Height: 600, HeightCap: 600}
	fov := math.Pi / 3

	tests := []struct {
		name      string
		grid      Occupancy
		ox, oy    float64
		heading   float64
		billboard Billboard
		visible   bool
	}{
		{"ahead", open, 1.5, 2.5, 0, Billboard{X: 4.5, Y: 2.5, Size: 0.5}, true},
		{"behind", open, 1.5, 2.5, math.Pi, Billboard{X: 4.5, Y: 2.5, Size: 0.5}, false},
		{"behind a wall", walled, 1.5, 1.5, 0, Billboard{X: 5.5, Y: 1.5, Size: 0.5}, false},
		{"on top of the viewer", open, 1.5, 2.5, 0, Billboard{X: 1.55, Y: 2.5, Size: 0.5}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hits := m.Cast(tt.grid, tt.ox, tt.oy, tt.heading, fov, 60)
			got := ProjectSprites([]Billboard{tt.billboard}, tt.ox, tt.oy, tt.heading, fov, hits, vp, 1)
			if (len(got) == 1) != tt.visible {
				t.Fatalf("sprites = %+v, visible want %v", got, tt.visible)
			}
		})
	}
}

func TestProjectSpritesGeometry(t *testing.T) {
	w := room(t,
		"#######",
		"#.....#",
		"#.....#",
		"#.....#",
		"#######",
	)
	m := NewMarcher(0.05, 25)
	vp := Viewport{Width: 300, Height: 600, HeightCap: 600}
	fov := math.Pi / 3
	hits := m.Cast(w, 1.5, 2.5, 0, fov, 60)

	got := ProjectSprites([]Billboard{
		{X: 3.5, Y: 2.5, Size: 0.5},
		{X: 5.5, Y: 2.5, Size: 0.5},
	}, 1.5, 2.5, 0, fov, hits, vp, 1)
	if len(got) != 2 {
		t.Fatalf("sprites = %d, want 2", len(got))
	}
	if got[0].Distance <= got[1].Distance {
		t.Error("sprites must be ordered far to near")
	}

	near := got[1]
	if math.Abs(near.X+near.W/2-150) > 1e-9 {
		t.Errorf("sprite center = %v, want 150", near.X+near.W/2)
	}
	// wall height at distance 2 is 300, half of it for the sprite
	if near.H != 150 || near.Y+near.H != 450 {
		t.Errorf("sprite rect = %+v", near)
	}
}
