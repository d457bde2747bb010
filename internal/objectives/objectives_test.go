package objectives

import (
	"math/rand/v2"
	"testing"

	"fear-maze/internal/ai/fear"
	"fear-maze/internal/engine"
	"fear-maze/internal/engine/ecs"
	"fear-maze/internal/events"
	"fear-maze/internal/world"
	"fear-maze/internal/world/maze"
)

func TestPlaceSamplesWithoutReplacement(t *testing.T) {
	grid := maze.Generate(maze.Config{Width: 21, Height: 21, Seed: 7, ChamberRadius: 2, LoopChance: 0.5})
	rng := rand.New(rand.NewPCG(7, 7))

	p := Place(rng, grid, 5, 3)
	if len(p.Keys) != 5 || p.Required != 5 {
		t.Fatalf("placed %d keys, required %d", len(p.Keys), p.Required)
	}
	seen := map[maze.Point]bool{}
	for _, k := range p.Keys {
		if seen[k] {
			t.Errorf("key cell %v used twice", k)
		}
		seen[k] = true
		if grid.IsWall(k.X, k.Y) {
			t.Errorf("key %v is in a wall", k)
		}
		if k == grid.Exit() || k == grid.Start() {
			t.Errorf("key %v on start or exit", k)
		}
		if maze.Distance(k, grid.Start()) <= 3 {
			t.Errorf("key %v too close to start", k)
		}
	}
	if p.Exit != grid.Exit() {
		t.Errorf("exit = %v, want %v", p.Exit, grid.Exit())
	}
}

func TestPlaceDegradesWhenShortOfCells(t *testing.T) {
	grid, err := maze.Parse([]string{
		"#######",
		"#S...E#",
		"#######",
	})
	if err != nil {
		t.Fatal(err)
	}
	p := Place(rand.New(rand.NewPCG(1, 1)), grid, 10, 1)
	// (3,1) and (4,1) qualify: farther than 1 from start and not the exit
	if len(p.Keys) != 2 || p.Required != 2 {
		t.Fatalf("keys = %v, required = %d, want 2", p.Keys, p.Required)
	}
}

func TestProgressComplete(t *testing.T) {
	tests := []struct {
		name     string
		progress Progress
		required int
		want     bool
	}{
		{"nothing", Progress{KeysTotal: 2}, 2, false},
		{"keys only", Progress{KeysFound: 2, KeysTotal: 2}, 2, false},
		{"exit only", Progress{KeysTotal: 2, ExitFound: true}, 2, false},
		{"all", Progress{KeysFound: 2, KeysTotal: 2, ExitFound: true}, 2, true},
		{"no keys required", Progress{ExitFound: true}, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.progress.Complete(tt.required); got != tt.want {
				t.Errorf("Complete = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPickupCollectsOnce(t *testing.T) {
	grid, err := maze.Parse([]string{
		"#########",
		"#S.....E#",
		"#########",
	})
	if err != nil {
		t.Fatal(err)
	}
	amps := fear.Neutral()
	ctx := &engine.Context{
		World:      ecs.NewWorld(),
		Level:      world.New(grid),
		Bus:        events.NewBus(),
		RNG:        rand.New(rand.NewPCG(1, 1)),
		Clock:      &engine.Clock{},
		Amplifiers: &amps,
	}

	player := ecs.NewEntity()
	tr := ecs.NewTransformComponent(ecs.NewVector2(1.5, 1.5), 0, 0.2)
	vitals := ecs.NewVitalsComponent(100, 100, 30)
	player.AddComponent(tr)
	player.AddComponent(vitals)
	player.AddTag(ecs.TagPlayer)
	ctx.World.AddEntity(player)

	Spawn(ctx.World, Placement{Keys: []maze.Point{{X: 3, Y: 1}}, Exit: grid.Exit(), Required: 1})

	var collected []events.Event
	ctx.Bus.SubscribeKind(events.ObjectiveCollected, func(e events.Event) {
		collected = append(collected, e)
	})

	sys := NewPickupSystem(ctx, 1.0, 10, 20)
	ctx.World.AddSystem(sys)

	// Within 0.5 of the key for two ticks
	tr.Position = ecs.NewVector2(3.1, 1.5)
	ctx.World.Update(0.016)
	ctx.World.Update(0.016)

	pr := Measure(ctx.World)
	if pr.KeysFound != 1 || pr.KeysTotal != 1 {
		t.Fatalf("progress = %+v, want exactly one key", pr)
	}
	if len(collected) != 1 || collected[0].Objective != ecs.ObjectiveKey {
		t.Fatalf("events = %+v, want one key pickup", collected)
	}
	if vitals.Stress != 40 {
		t.Errorf("stress = %v, want 40", vitals.Stress)
	}
	if pr.Complete(1) {
		t.Error("complete before reaching the exit")
	}

	tr.Position = ecs.NewVector2(7.5, 1.5)
	ctx.World.Update(0.016)
	if pr := Measure(ctx.World); !pr.Complete(1) {
		t.Errorf("progress = %+v, want complete", pr)
	}
}
