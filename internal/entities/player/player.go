package player

import (
	"math"

	"fear-maze/internal/config"
	"fear-maze/internal/engine"
	"fear-maze/internal/engine/ecs"
	"fear-maze/internal/events"
)

// Intent - ввод игрока за один тик. Ядро не читает устройства само:
// хост заполняет Intent из клавиатуры и мыши.
type Intent struct {
	Forward, Back           bool
	StrafeLeft, StrafeRight bool
	TurnLeft, TurnRight     bool
	Look                    []ecs.Vector2 // смещения мыши за тик
	ToggleLight             bool
	ToggleMap               bool // не попадает в метрики поведения
	Scream                  bool
	Quit                    bool
}

// HeldKeys возвращает логические клавиши, зажатые в этом тике
func (i Intent) HeldKeys() []string {
	var keys []string
	add := func(held bool, name string) {
		if held {
			keys = append(keys, name)
		}
	}
	add(i.Forward, "forward")
	add(i.Back, "back")
	add(i.StrafeLeft, "strafe_left")
	add(i.StrafeRight, "strafe_right")
	add(i.TurnLeft, "turn_left")
	add(i.TurnRight, "turn_right")
	add(i.ToggleLight, "flashlight")
	return keys
}

// Player представляет игрока в игре
type Player struct {
	entity     *ecs.Entity
	transform  *ecs.TransformComponent
	vitals     *ecs.VitalsComponent
	flashlight *ecs.FlashlightComponent
	control    *ecs.PlayerControlComponent
}

// CreatePlayerEntity создает сущность игрока в мире
func CreatePlayerEntity(world *ecs.World, position ecs.Vector2, angle float64, cfg config.PlayerConfig) *Player {
	entity := ecs.NewEntity()

	p := &Player{
		entity:     entity,
		transform:  ecs.NewTransformComponent(position, angle, cfg.Radius),
		vitals:     ecs.NewVitalsComponent(cfg.StartHealth, cfg.StartSanity, cfg.StartStress),
		flashlight: ecs.NewFlashlightComponent(cfg.BatteryMax),
		control:    ecs.NewPlayerControlComponent(cfg.MoveSpeed, cfg.TurnSpeed, cfg.MouseSensitivity),
	}
	entity.AddComponent(p.transform)
	entity.AddComponent(p.vitals)
	entity.AddComponent(p.flashlight)
	entity.AddComponent(p.control)
	entity.AddTag(ecs.TagPlayer)

	world.AddEntity(entity)
	return p
}

func (p *Player) Entity() *ecs.Entity                  { return p.entity }
func (p *Player) Transform() *ecs.TransformComponent   { return p.transform }
func (p *Player) Vitals() *ecs.VitalsComponent         { return p.vitals }
func (p *Player) Flashlight() *ecs.FlashlightComponent { return p.flashlight }
func (p *Player) Control() *ecs.PlayerControlComponent { return p.control }

// InputSystem применяет Intent: поворот, движение со скольжением вдоль стен,
// фонарик и крик
type InputSystem struct {
	ctx    *engine.Context
	player *Player
	ai     *engine.AISystem
	cfg    config.PlayerConfig
	intent Intent
}

// NewInputSystem создает систему ввода игрока
func NewInputSystem(ctx *engine.Context, p *Player, ai *engine.AISystem, cfg config.PlayerConfig) *InputSystem {
	return &InputSystem{ctx: ctx, player: p, ai: ai, cfg: cfg}
}

// SetIntent задает ввод для следующего обновления
func (s *InputSystem) SetIntent(i Intent) {
	s.intent = i
}

// RequiredComponents возвращает компоненты, необходимые для работы системы
func (s *InputSystem) RequiredComponents() []ecs.ComponentID {
	return []ecs.ComponentID{
		ecs.TransformComponentID,
		ecs.PlayerControlComponentID,
		ecs.VitalsComponentID,
		ecs.FlashlightComponentID,
	}
}

// Update обрабатывает ввод текущего тика
func (s *InputSystem) Update(deltaTime float64) {
	in := s.intent
	s.intent = Intent{}

	t, c, v, fl := s.player.transform, s.player.control, s.player.vitals, s.player.flashlight

	// Поворот
	if in.TurnLeft {
		t.Angle -= c.TurnSpeed * deltaTime
	}
	if in.TurnRight {
		t.Angle += c.TurnSpeed * deltaTime
	}
	for _, d := range in.Look {
		if math.Abs(d.X) < 100 && math.Abs(d.Y) < 100 {
			t.Angle += d.X * c.Sensitivity
		}
	}
	t.Angle = math.Mod(t.Angle, 2*math.Pi)

	// Движение
	dir := ecs.Vector2{}
	if in.Forward {
		dir = dir.Add(t.Forward())
	}
	if in.Back {
		dir = dir.Sub(t.Forward())
	}
	if in.StrafeRight {
		dir = dir.Add(t.Right())
	}
	if in.StrafeLeft {
		dir = dir.Sub(t.Right())
	}
	c.Moving = dir.Magnitude() > 1e-9
	if c.Moving {
		step := dir.Normalize().Multiply(c.MoveSpeed * deltaTime)
		t.Position = s.ctx.Level.Slide(t.Position, step, t.Radius)

		// Движение в темноте пугает
		if !fl.On || fl.Battery < s.cfg.FlickerThreshold {
			v.AdjustStress(s.cfg.DarkMoveStress * deltaTime)
			v.AdjustSanity(-s.cfg.DarkMoveSanity * deltaTime)
		}
	}

	if in.ToggleLight {
		s.toggleFlashlight()
	}

	if in.Scream {
		v.AdjustStress(s.cfg.ScreamStress)
		if s.ai != nil {
			s.ai.Scream(t.Position, s.cfg.ScreamRadius)
		}
	}
}

func (s *InputSystem) toggleFlashlight() {
	fl := s.player.flashlight
	switch {
	case fl.On:
		fl.On = false
	case fl.Battery > 0:
		fl.On = true
	default:
		return
	}
	s.ctx.Publish(events.Event{
		Kind:         events.FlashlightChanged,
		FlashlightOn: fl.On,
		Battery:      fl.Battery,
	})
}
