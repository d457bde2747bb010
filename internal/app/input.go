package app

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"fear-maze/internal/core"
	"fear-maze/internal/engine/ecs"
)

// Input переводит клавиатуру и мышь в намерение игрока
type Input struct {
	lastX, lastY int
	primed       bool
}

// Poll читает устройства за текущий тик
func (in *Input) Poll() core.Intent {
	pressed := func(keys ...ebiten.Key) bool {
		for _, k := range keys {
			if ebiten.IsKeyPressed(k) {
				return true
			}
		}
		return false
	}

	intent := core.Intent{
		Forward:     pressed(ebiten.KeyW, ebiten.KeyArrowUp),
		Back:        pressed(ebiten.KeyS, ebiten.KeyArrowDown),
		StrafeLeft:  pressed(ebiten.KeyA),
		StrafeRight: pressed(ebiten.KeyD),
		TurnLeft:    pressed(ebiten.KeyArrowLeft, ebiten.KeyQ),
		TurnRight:   pressed(ebiten.KeyArrowRight, ebiten.KeyE),
		// Переключение и крик срабатывают только на фронте нажатия
		ToggleLight: inpututil.IsKeyJustPressed(ebiten.KeyF),
		ToggleMap:   inpututil.IsKeyJustPressed(ebiten.KeyM),
		Scream:      inpututil.IsKeyJustPressed(ebiten.KeySpace),
		Quit:        inpututil.IsKeyJustPressed(ebiten.KeyEscape),
	}

	x, y := ebiten.CursorPosition()
	if in.primed && (x != in.lastX || y != in.lastY) {
		intent.Look = []ecs.Vector2{{X: float64(x - in.lastX), Y: float64(y - in.lastY)}}
	}
	in.lastX, in.lastY, in.primed = x, y, true

	return intent
}

// Reset забывает позицию курсора, чтобы первый сдвиг нового уровня не
// развернул камеру
func (in *Input) Reset() {
	in.primed = false
}
