package player

import (
	"math"

	opensimplex "github.com/ojrac/opensimplex-go"

	"fear-maze/internal/config"
	"fear-maze/internal/engine"
	"fear-maze/internal/engine/ecs"
	"fear-maze/internal/events"
)

// FlashlightSystem разряжает и заряжает батарею фонарика и считает мерцание
type FlashlightSystem struct {
	ctx    *engine.Context
	player *Player
	cfg    config.PlayerConfig
	noise  opensimplex.Noise
}

// NewFlashlightSystem создает систему фонарика. seed задает рисунок мерцания.
func NewFlashlightSystem(ctx *engine.Context, p *Player, cfg config.PlayerConfig, seed int64) *FlashlightSystem {
	return &FlashlightSystem{
		ctx:    ctx,
		player: p,
		cfg:    cfg,
		noise:  opensimplex.NewNormalized(seed),
	}
}

// RequiredComponents возвращает компоненты, необходимые для работы системы
func (s *FlashlightSystem) RequiredComponents() []ecs.ComponentID {
	return []ecs.ComponentID{ecs.FlashlightComponentID, ecs.VitalsComponentID}
}

// StartFlicker запускает событие мерцания на duration секунд
func (s *FlashlightSystem) StartFlicker(duration float64) {
	fl := s.player.flashlight
	fl.FlickerFor = math.Max(fl.FlickerFor, duration)
}

// Update обновляет заряд батареи
func (s *FlashlightSystem) Update(deltaTime float64) {
	fl := s.player.flashlight
	now := s.ctx.Clock.Now

	if fl.FlickerFor > 0 {
		fl.FlickerFor = math.Max(0, fl.FlickerFor-deltaTime)
	}

	if !fl.On {
		fl.Battery = math.Min(fl.MaxBattery, fl.Battery+s.cfg.BatteryRecharge*deltaTime)
		fl.Flicker = 1
		return
	}

	drain := s.cfg.BatteryDrain * (1 + s.ctx.Amplifiers.Darkness*0.3) * deltaTime
	if fl.FlickerFor > 0 {
		drain *= 1.5
	}
	fl.Battery = math.Max(0, fl.Battery-drain)

	flicker := 1.0
	if fl.Battery < s.cfg.FlickerThreshold {
		flicker = math.Sin(now*15)*0.3 + 0.7
	}
	if fl.FlickerFor > 0 {
		// Во время события яркость следует шуму
		n := s.noise.Eval2(now*8, 0)
		flicker = math.Min(flicker, 0.2+0.8*n)
	}
	fl.Flicker = flicker

	if fl.Battery <= 0 {
		fl.On = false
		s.player.vitals.AdjustStress(s.cfg.EmptyStress)
		s.ctx.Publish(events.Event{
			Kind:         events.FlashlightChanged,
			FlashlightOn: false,
			Battery:      0,
		})
	}
}
