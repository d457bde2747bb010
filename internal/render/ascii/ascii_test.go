package ascii

import (
	"image/color"
	"testing"

	"fear-maze/internal/render/minimap"
	"fear-maze/internal/render/raycast"
)

func TestWallGlyph(t *testing.T) {
	tests := []struct {
		distance float64
		want     rune
	}{
		{0.5, '█'},
		{4, '▓'},
		{7, '▒'},
		{30, '░'},
	}
	for _, tt := range tests {
		if got := wallGlyph(tt.distance); got != tt.want {
			t.Errorf("wallGlyph(%v) = %q, want %q", tt.distance, got, tt.want)
		}
	}
}

func TestDrawColumns(t *testing.T) {
	hits := []raycast.Hit{{Distance: 1}, {Distance: 20, Far: true}}
	vp := raycast.Viewport{Width: 2, Height: 10}
	cols := raycast.Project(hits, vp, 1)

	f := NewFrame(2, 10)
	f.Draw(hits, cols, nil, nil)

	// distance 1 fills the whole column with the nearest glyph
	for y := 0; y < 10; y++ {
		if f.At(0, y).Rune != '█' {
			t.Fatalf("row %d = %q", y, f.At(0, y).Rune)
		}
	}
	// a ray that hit nothing leaves no wall glyph
	for y := 0; y < 10; y++ {
		if r := f.At(1, y).Rune; r != ' ' && r != '.' {
			t.Errorf("far column row %d = %q", y, r)
		}
	}
}

func TestDrawSpritesAndText(t *testing.T) {
	f := NewFrame(10, 5)
	red := color.RGBA{R: 200, A: 255}
	sprites := []raycast.Sprite{{X: 2, Y: 1, W: 2, H: 2, Color: red}}
	f.Draw(nil, nil, sprites, func(raycast.Sprite) rune { return 'M' })

	if c := f.At(3, 2); c.Rune != 'M' || c.Color != red {
		t.Errorf("sprite cell = %+v", c)
	}
	if f.At(4, 2).Rune == 'M' {
		t.Error("sprite drawn past its width")
	}

	f.Text(8, 0, "HUD", red)
	if f.At(8, 0).Rune != 'H' || f.At(9, 0).Rune != 'U' {
		t.Error("text not written")
	}
}

func TestDrawMap(t *testing.T) {
	m := minimap.Map{
		Width:  3,
		Height: 3,
		Walls:  []bool{true, true, true, true, false, false, true, true, true},
		Markers: []minimap.Marker{
			{Kind: minimap.Exit, X: 2.5, Y: 1.5},
			{Kind: minimap.Player, X: 1.4, Y: 1.6},
		},
	}
	tests := []struct {
		name  string
		blink bool
		exit  rune
	}{
		{"exit shown", true, 'X'},
		{"exit hidden", false, '·'},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := NewFrame(6, 4)
			f.Map(m, 2, 1, tt.blink)
			if f.At(2, 1).Rune != '#' {
				t.Errorf("corner = %q, want wall", f.At(2, 1).Rune)
			}
			if f.At(3, 2).Rune != '@' {
				t.Errorf("player cell = %q", f.At(3, 2).Rune)
			}
			if f.At(4, 2).Rune != tt.exit {
				t.Errorf("exit cell = %q, want %q", f.At(4, 2).Rune, tt.exit)
			}
			if f.At(0, 0).Rune != 0 {
				t.Error("map drawn outside its corner")
			}
		})
	}
}
