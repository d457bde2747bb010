package player

import (
	"math"
	"math/rand/v2"
	"testing"

	"fear-maze/internal/ai/fear"
	"fear-maze/internal/config"
	"fear-maze/internal/engine"
	"fear-maze/internal/engine/ecs"
	"fear-maze/internal/events"
	"fear-maze/internal/world"
	"fear-maze/internal/world/maze"
)

type rig struct {
	ctx        *engine.Context
	player     *Player
	input      *InputSystem
	flashlight *FlashlightSystem
	cfg        config.PlayerConfig
	amps       fear.Amplifiers
	changes    []events.Event
}

func newRig(t *testing.T, rows ...string) *rig {
	t.Helper()
	g, err := maze.Parse(rows)
	if err != nil {
		t.Fatal(err)
	}
	r := &rig{cfg: config.DefaultConfig().Player, amps: fear.Neutral()}
	r.ctx = &engine.Context{
		World:      ecs.NewWorld(),
		Level:      world.New(g),
		Bus:        events.NewBus(),
		RNG:        rand.New(rand.NewPCG(3, 3)),
		Clock:      &engine.Clock{},
		Amplifiers: &r.amps,
	}
	r.ctx.Bus.SubscribeKind(events.FlashlightChanged, func(e events.Event) {
		r.changes = append(r.changes, e)
	})
	r.player = CreatePlayerEntity(r.ctx.World, ecs.NewVector2(1.5, 1.5), 0, r.cfg)
	r.input = NewInputSystem(r.ctx, r.player, nil, r.cfg)
	r.flashlight = NewFlashlightSystem(r.ctx, r.player, r.cfg, 1)
	return r
}

func (r *rig) move(dt float64, in Intent) {
	r.ctx.Clock.Advance(dt)
	r.input.SetIntent(in)
	r.input.Update(dt)
}

var room = []string{
	"#######",
	"#.....#",
	"#.....#",
	"#######",
}

func TestMoveForward(t *testing.T) {
	r := newRig(t, room...)
	r.move(0.1, Intent{Forward: true})

	want := 1.5 + r.cfg.MoveSpeed*0.1
	if got := r.player.Transform().Position.X; math.Abs(got-want) > 1e-9 {
		t.Fatalf("x = %v, want %v", got, want)
	}
	if !r.player.Control().Moving {
		t.Error("Moving not set")
	}
}

func TestDiagonalIntoWallSlides(t *testing.T) {
	r := newRig(t, room...)
	// Facing +x, strafing left pushes toward the top wall
	for i := 0; i < 30; i++ {
		r.move(1.0/30, Intent{Forward: true, StrafeLeft: true})
	}
	pos := r.player.Transform().Position
	if pos.X <= 2 {
		t.Errorf("x = %v, want progress along the wall", pos.X)
	}
	if pos.Y-r.player.Transform().Radius < 1 {
		t.Errorf("y = %v, player entered the wall", pos.Y)
	}
}

func TestMovingInDarknessHurts(t *testing.T) {
	tests := []struct {
		name  string
		on    bool
		worse bool
	}{
		{"lit", true, false},
		{"dark", false, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newRig(t, room...)
			r.player.Flashlight().On = tt.on
			v := r.player.Vitals()
			stress, sanity := v.Stress, v.Sanity

			r.move(1, Intent{Forward: true})

			if got := v.Stress > stress && v.Sanity < sanity; got != tt.worse {
				t.Errorf("stress %v->%v sanity %v->%v", stress, v.Stress, sanity, v.Sanity)
			}
		})
	}
}

func TestToggleFlashlight(t *testing.T) {
	r := newRig(t, room...)
	fl := r.player.Flashlight()

	r.move(0.01, Intent{ToggleLight: true})
	if fl.On {
		t.Fatal("flashlight still on")
	}
	r.move(0.01, Intent{ToggleLight: true})
	if !fl.On {
		t.Fatal("flashlight did not turn back on")
	}

	fl.On = false
	fl.Battery = 0
	r.move(0.01, Intent{ToggleLight: true})
	if fl.On {
		t.Fatal("empty flashlight turned on")
	}
	if len(r.changes) != 2 {
		t.Errorf("FlashlightChanged events = %d, want 2", len(r.changes))
	}
}

func TestScreamRaisesStress(t *testing.T) {
	r := newRig(t, room...)
	before := r.player.Vitals().Stress
	r.move(0.01, Intent{Scream: true})
	if got := r.player.Vitals().Stress; got != before+r.cfg.ScreamStress {
		t.Errorf("stress = %v, want %v", got, before+r.cfg.ScreamStress)
	}
}

func TestBatteryDrainAndRecharge(t *testing.T) {
	r := newRig(t, room...)
	fl := r.player.Flashlight()

	for i := 0; i < 60; i++ {
		r.ctx.Clock.Advance(1.0 / 60)
		r.flashlight.Update(1.0 / 60)
	}
	want := r.cfg.BatteryMax - r.cfg.BatteryDrain*1.3
	if math.Abs(fl.Battery-want) > 1e-6 {
		t.Fatalf("battery = %v, want %v", fl.Battery, want)
	}

	fl.On = false
	r.flashlight.Update(1)
	if math.Abs(fl.Battery-(want+r.cfg.BatteryRecharge)) > 1e-6 {
		t.Errorf("battery after recharge = %v", fl.Battery)
	}
}

func TestEmptyBatterySwitchesOff(t *testing.T) {
	r := newRig(t, room...)
	fl := r.player.Flashlight()
	fl.Battery = 0.01
	stress := r.player.Vitals().Stress

	r.flashlight.Update(1)

	if fl.On {
		t.Fatal("flashlight still on at zero battery")
	}
	if got := r.player.Vitals().Stress; got != stress+r.cfg.EmptyStress {
		t.Errorf("stress = %v, want %v", got, stress+r.cfg.EmptyStress)
	}
	if len(r.changes) != 1 || r.changes[0].FlashlightOn {
		t.Errorf("events = %+v", r.changes)
	}
}

func TestFlickerStaysInRange(t *testing.T) {
	r := newRig(t, room...)
	fl := r.player.Flashlight()
	fl.Battery = 20
	r.flashlight.StartFlicker(1.5)

	for i := 0; i < 100; i++ {
		r.ctx.Clock.Advance(1.0 / 60)
		r.flashlight.Update(1.0 / 60)
		if fl.Flicker < 0.2-1e-9 || fl.Flicker > 1 {
			t.Fatalf("tick %d: flicker = %v", i, fl.Flicker)
		}
	}
	if fl.FlickerFor != 0 {
		t.Errorf("flicker event still running: %v", fl.FlickerFor)
	}
}

func TestHeldKeys(t *testing.T) {
	got := Intent{Forward: true, TurnLeft: true, Scream: true}.HeldKeys()
	if len(got) != 2 || got[0] != "forward" || got[1] != "turn_left" {
		t.Fatalf("HeldKeys = %v", got)
	}
}
