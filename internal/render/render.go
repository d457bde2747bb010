package render

import (
	"fmt"
	"image/color"
	"math"
	"math/rand/v2"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"fear-maze/internal/config"
	"fear-maze/internal/core"
	"fear-maze/internal/engine/ecs"
	"fear-maze/internal/render/minimap"
	"fear-maze/internal/render/raycast"
	"fear-maze/internal/world"
)

// idleWarning - после стольких секунд неподвижности метрика бездействия
// достигает максимума
const idleWarning = 5

// Цвета объектов на экране
var (
	keyColor     = color.RGBA{R: 230, G: 200, B: 60, A: 255}
	exitColor    = color.RGBA{R: 60, G: 200, B: 90, A: 255}
	monsterColor = color.RGBA{R: 170, G: 20, B: 20, A: 255}
	flashColor   = color.RGBA{R: 200, G: 0, B: 0, A: 255}
	hudColor     = color.RGBA{R: 0, G: 0, B: 0, A: 140}

	mapBackground = color.RGBA{A: 230}
	mapFrame      = color.RGBA{R: 180, G: 180, B: 180, A: 255}
	mapWall       = color.RGBA{R: 80, G: 80, B: 80, A: 255}
	mapFloor      = color.RGBA{R: 40, G: 40, B: 50, A: 255}
	mapPlayer     = color.RGBA{G: 255, A: 255}
	mapExit       = color.RGBA{R: 255, G: 50, B: 50, A: 255}
	mapMonster    = color.RGBA{R: 200, G: 50, B: 50, A: 255}
)

// Renderer отвечает за отрисовку уровня от первого лица
type Renderer struct {
	cfg     config.RenderConfig
	width   int
	height  int
	marcher *raycast.Marcher
	canvas  *ebiten.Image
	rng     *rand.Rand
}

// NewRenderer создает новый рендерер
func NewRenderer(cfg *config.Config) *Renderer {
	return &Renderer{
		cfg:     cfg.Render,
		width:   cfg.Window.Width,
		height:  cfg.Window.Height,
		marcher: raycast.NewMarcher(cfg.Render.StepSize, cfg.Render.MaxDistance),
		rng:     rand.New(rand.NewPCG(7, 11)),
	}
}

// Render основной метод отрисовки уровня
func (r *Renderer) Render(screen *ebiten.Image, level *world.World, snap core.Snapshot) {
	if r.canvas == nil {
		r.canvas = ebiten.NewImage(r.width, r.height)
	}
	r.canvas.Clear()

	vp := raycast.Viewport{
		Width:     float64(r.width),
		Height:    float64(r.height),
		HeightCap: r.cfg.HeightCap,
	}
	p := snap.Player
	hits := r.marcher.Cast(level, p.Position.X, p.Position.Y, p.Angle, r.cfg.FOV, r.cfg.Columns)

	r.renderColumns(raycast.Project(hits, vp, snap.Darkness), snap.Effects.Distortion)

	sprites := raycast.ProjectSprites(billboards(snap), p.Position.X, p.Position.Y, p.Angle, r.cfg.FOV, hits, vp, snap.Darkness)
	for _, s := range sprites {
		vector.DrawFilledRect(r.canvas, float32(s.X), float32(s.Y), float32(s.W), float32(s.H), s.Color, false)
	}

	r.renderLight(p.Light)

	// Тряска экрана - сдвиг всего кадра
	screen.Fill(color.Black)
	op := &ebiten.DrawImageOptions{}
	if snap.Effects.Shake > 0 {
		amp := 12 * math.Min(1, snap.Effects.Shake)
		op.GeoM.Translate((r.rng.Float64()*2-1)*amp, (r.rng.Float64()*2-1)*amp)
	}
	screen.DrawImage(r.canvas, op)

	if snap.Effects.Flash > 0 {
		c := flashColor
		c.A = uint8(160 * math.Min(1, snap.Effects.Flash))
		vector.DrawFilledRect(screen, 0, 0, float32(r.width), float32(r.height), c, false)
	}

	r.renderHUD(screen, snap)
	if snap.ShowMap {
		r.renderMinimap(screen, level, snap)
	}
}

// renderColumns рисует потолок, стену и пол каждого столбца
func (r *Renderer) renderColumns(cols []raycast.Column, distortion float64) {
	h := float32(r.height)
	for _, c := range cols {
		x, w := float32(c.X), float32(c.Width)+1
		var jitter float32
		if distortion > 0 {
			jitter = float32((r.rng.Float64()*2 - 1) * 20 * math.Min(1, distortion))
		}
		top, bottom := float32(c.Top)+jitter, float32(c.Bottom)+jitter
		vector.DrawFilledRect(r.canvas, x, 0, w, top, c.Ceiling, false)
		vector.DrawFilledRect(r.canvas, x, top, w, bottom-top, c.Wall, false)
		vector.DrawFilledRect(r.canvas, x, bottom, w, h-bottom, c.Floor, false)
	}
}

// renderLight затемняет кадр, когда фонарик слабеет или выключен
func (r *Renderer) renderLight(light float64) {
	alpha := 0.75 * (1 - math.Max(0, math.Min(1, light)))
	if alpha <= 0 {
		return
	}
	c := color.RGBA{A: uint8(255 * alpha)}
	vector.DrawFilledRect(r.canvas, 0, 0, float32(r.width), float32(r.height), c, false)
}

// renderHUD выводит показатели игрока
func (r *Renderer) renderHUD(screen *ebiten.Image, snap core.Snapshot) {
	p := snap.Player
	battery := 0.0
	if p.BatteryMax > 0 {
		battery = 100 * p.Battery / p.BatteryMax
	}
	light := onOff(p.FlashlightOn)

	vector.DrawFilledRect(screen, 0, 0, 230, 146, hudColor, false)
	lines := []string{
		fmt.Sprintf("Health  %3.0f", p.Health),
		fmt.Sprintf("Sanity  %3.0f", p.Sanity),
		fmt.Sprintf("Stress  %3.0f", p.Stress),
		fmt.Sprintf("Light   %s %3.0f%%", light, battery),
		fmt.Sprintf("Keys    %d/%d", snap.KeysFound, snap.KeysRequired),
		fmt.Sprintf("Time    %3.0fs  %s", snap.TimeLeft, snap.Stage),
		fmt.Sprintf("Tension %s", snap.TensionName),
		"Map     " + onOff(snap.ShowMap),
	}
	for i, line := range lines {
		ebitenutil.DebugPrintAt(screen, line, 8, 6+i*17)
	}
	switch {
	case snap.KeysFound >= snap.KeysRequired && !snap.ExitFound:
		ebitenutil.DebugPrintAt(screen, "Find the exit", r.width/2-40, 8)
	case snap.Idle >= idleWarning:
		ebitenutil.DebugPrintAt(screen, "Don't stand still", r.width/2-51, 8)
	}
}

func onOff(v bool) string {
	if v {
		return "on"
	}
	return "off"
}

// renderMinimap рисует карту уровня в правом верхнем углу
func (r *Renderer) renderMinimap(screen *ebiten.Image, level *world.World, snap core.Snapshot) {
	m := minimap.Build(level.Grid(), snap)
	pl := minimap.Fit(r.width, r.height, m.Width, m.Height)
	left, top := float32(pl.Left), float32(pl.Top)
	size, cell := float32(pl.Size), float32(pl.Cell)

	vector.DrawFilledRect(screen, left-10, top-10, size+20, size+20, mapBackground, false)
	vector.StrokeRect(screen, left, top, size, size, 3, mapFrame, false)

	for y := 0; y < m.Height; y++ {
		for x := 0; x < m.Width; x++ {
			c := mapFloor
			if m.Wall(x, y) {
				c = mapWall
			}
			vector.DrawFilledRect(screen, left+float32(x)*cell+1, top+float32(y)*cell+1, max(cell-2, 1), max(cell-2, 1), c, false)
		}
	}

	for _, mk := range m.Markers {
		cx, cy := left+float32(mk.X)*cell, top+float32(mk.Y)*cell
		switch mk.Kind {
		case minimap.Player:
			vector.DrawFilledCircle(screen, cx, cy, max(cell/1.2, 8), mapPlayer, true)
			arrow := cell * 1.8
			hx, hy := float32(math.Cos(m.Heading))*arrow, float32(math.Sin(m.Heading))*arrow
			vector.StrokeLine(screen, cx, cy, cx+hx, cy+hy, 3, mapPlayer, true)
		case minimap.Key:
			vector.DrawFilledCircle(screen, cx, cy, max(cell/1.5, 5), keyColor, true)
		case minimap.Exit:
			// Выход мигает
			if minimap.Blink(snap.Time) {
				vector.DrawFilledCircle(screen, cx, cy, max(cell/1.5, 5), mapExit, true)
			}
		case minimap.Monster:
			vector.DrawFilledCircle(screen, cx, cy, max(cell/1.3, 5), mapMonster, true)
		}
	}
}

// RenderText выводит экран из нескольких строк по центру
func (r *Renderer) RenderText(screen *ebiten.Image, lines []string) {
	screen.Fill(color.Black)
	y := r.height/2 - len(lines)*10
	for _, line := range lines {
		ebitenutil.DebugPrintAt(screen, line, r.width/2-3*len(line), y)
		y += 20
	}
}

// billboards собирает видимые объекты снимка
func billboards(snap core.Snapshot) []raycast.Billboard {
	var bs []raycast.Billboard
	for _, o := range snap.Objectives {
		if o.Collected && o.Kind == ecs.ObjectiveKey {
			continue
		}
		b := raycast.Billboard{X: o.Position.X, Y: o.Position.Y, Size: 0.3, Color: keyColor}
		if o.Kind == ecs.ObjectiveExit {
			b.Size, b.Color = 0.8, exitColor
		}
		bs = append(bs, b)
	}
	for _, m := range snap.Monsters {
		if !m.Active {
			continue
		}
		bs = append(bs, raycast.Billboard{X: m.Position.X, Y: m.Position.Y, Size: 0.9, Color: monsterColor})
	}
	return bs
}
