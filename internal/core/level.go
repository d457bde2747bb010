// Package core runs one level of the maze: it owns the grid, the entities and
// the fear model, and advances them in a fixed order once per tick.
package core

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"fear-maze/internal/ai/fear"
	"fear-maze/internal/config"
	"fear-maze/internal/engine"
	"fear-maze/internal/engine/ecs"
	"fear-maze/internal/entities/monster"
	"fear-maze/internal/entities/player"
	"fear-maze/internal/events"
	"fear-maze/internal/logger"
	"fear-maze/internal/objectives"
	"fear-maze/internal/world"
	"fear-maze/internal/world/maze"
)

// Intent is the player input for one tick
type Intent = player.Intent

// minimapCooldown debounces map toggles from auto-repeating keys
const minimapCooldown = 0.3

// Level is a running maze level. It is not safe for concurrent use; the host
// calls Step from a single loop and reads the returned snapshots.
type Level struct {
	id   string
	seed int64
	cfg  *config.Config
	lc   *Context
	log  *logrus.Entry

	grid     *maze.Grid
	level    *world.World
	entities *ecs.World
	bus      *events.Bus
	clock    engine.Clock
	rng      *rand.Rand
	amps     fear.Amplifiers
	ctx      *engine.Context

	engine     *engine.Engine
	player     *player.Player
	input      *player.InputSystem
	flashlight *player.FlashlightSystem
	pickups    *objectives.PickupSystem

	tracker  *fear.Tracker
	analyzer *fear.Analyzer
	director *fear.Director

	required int
	tick     int
	darkTime float64
	effects  Effects
	showMap  bool
	mapReady float64 // earliest time the map may toggle again

	quit    bool
	outcome events.Outcome
	summary events.Summary
}

// NewLevel generates a level from cfg. A zero seed picks one from the clock;
// the seed used is reported by Seed and in the summary.
func NewLevel(cfg *config.Config, lc *Context) (*Level, error) {
	if cfg == nil {
		return nil, errors.New("nil config")
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid level config: %w", err)
	}

	seed := cfg.Level.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	l := &Level{
		id:       uuid.NewString(),
		seed:     seed,
		cfg:      cfg,
		lc:       lc,
		entities: ecs.NewWorld(),
		bus:      events.NewBus(),
		rng:      rand.New(rand.NewPCG(uint64(seed), 0x2545f4914f6cdd1d)),
		amps:     lc.InitialAmplifiers(),
	}
	l.log = logger.Log.WithFields(logrus.Fields{"level": l.id, "seed": seed})

	l.grid = maze.Generate(maze.Config{
		Width:           cfg.Level.Width,
		Height:          cfg.Level.Height,
		Seed:            seed,
		ChamberRadius:   cfg.Level.ChamberRadius,
		LoopChance:      cfg.Level.LoopChance,
		DeadEndThinning: cfg.Level.DeadEndThinning,
	})
	l.level = world.New(l.grid)
	l.ctx = &engine.Context{
		World:      l.entities,
		Level:      l.level,
		Bus:        l.bus,
		RNG:        l.rng,
		Clock:      &l.clock,
		Amplifiers: &l.amps,
	}

	l.populate()
	l.wire()
	l.engine.ApplyAmplifiers(l.amps)

	l.log.WithFields(logrus.Fields{
		"width":    l.grid.Width(),
		"height":   l.grid.Height(),
		"keys":     l.required,
		"monsters": len(l.entities.GetEntitiesWithTag(ecs.TagMonster)),
	}).Info("level generated")
	return l, nil
}

// populate creates the player, the objectives and the monsters
func (l *Level) populate() {
	start := world.CellCenter(l.grid.Start())
	l.player = player.CreatePlayerEntity(l.entities, start, openHeading(l.level, start), l.cfg.Player)

	placement := objectives.Place(l.rng, l.grid, l.cfg.Level.Keys, l.cfg.Level.MinKeyDistance)
	objectives.Spawn(l.entities, placement)
	l.required = placement.Required

	monster.Spawn(l.entities, l.grid, l.cfg.Level.Monsters, l.cfg.Monster)
}

// wire builds the systems in tick order and the fear model
func (l *Level) wire() {
	l.engine = engine.NewEngine(l.ctx, l.cfg.Monster)
	l.input = player.NewInputSystem(l.ctx, l.player, l.engine.AISystem(), l.cfg.Player)
	l.flashlight = player.NewFlashlightSystem(l.ctx, l.player, l.cfg.Player, l.seed)
	l.pickups = objectives.NewPickupSystem(l.ctx, l.cfg.Level.PickupRadius, l.cfg.Player.KeyStress, l.cfg.Player.ExitStress)

	l.entities.AddSystem(l.input)
	l.entities.AddSystem(l.flashlight)
	l.entities.AddSystem(l.engine.AISystem())
	l.entities.AddSystem(l.pickups)

	l.tracker = fear.NewTracker(fear.NewWindow(l.cfg.Fear.WindowCapacity), l.cfg.Fear.InactivityMin)
	l.analyzer = fear.NewAnalyzer(fear.AnalyzerConfig{
		Interval:    l.cfg.Fear.AnalysisInterval,
		Smoothing:   l.cfg.Fear.Smoothing,
		Decay:       l.cfg.Fear.Decay,
		LogCapacity: l.cfg.Fear.LogCapacity,
	}, l.amps)
	l.director = fear.NewDirector(l.rng)
	l.director.OnScareTriggered = l.applyScare

	l.bus.SubscribeKind(events.MonsterAttack, func(e events.Event) {
		l.effects.Flash = 1
		l.effects.Shake = math.Max(l.effects.Shake, 0.3+0.5*e.Intensity)
	})
}

// openHeading faces the player down the longest free axis from pos
func openHeading(w *world.World, pos ecs.Vector2) float64 {
	best, bestLen := 0.0, -1.0
	for i := 0; i < 4; i++ {
		angle := float64(i) * math.Pi / 2
		dir := ecs.NewVector2(math.Cos(angle), math.Sin(angle))
		n := 0.0
		for n < 32 && !w.IsBlocked(pos.X+dir.X*(n+1), pos.Y+dir.Y*(n+1)) {
			n++
		}
		if n > bestLen {
			best, bestLen = angle, n
		}
	}
	return best
}

func (l *Level) ID() string                  { return l.id }
func (l *Level) Seed() int64                 { return l.seed }
func (l *Level) Grid() *maze.Grid            { return l.grid }
func (l *Level) World() *world.World         { return l.level }
func (l *Level) Bus() *events.Bus            { return l.bus }
func (l *Level) Outcome() events.Outcome     { return l.outcome }
func (l *Level) Amplifiers() fear.Amplifiers { return l.amps }

// Subscribe registers a listener for every event the level raises
func (l *Level) Subscribe(fn events.Listener) {
	l.bus.Subscribe(fn)
}

// AdaptationLog returns the analyzer log, oldest first
func (l *Level) AdaptationLog() []fear.Adaptation {
	return l.analyzer.Log()
}

// Summary returns the final summary. It is the zero value while running.
func (l *Level) Summary() events.Summary {
	return l.summary
}

// Quit requests DefeatQuit. It takes effect on the next Step.
func (l *Level) Quit() {
	l.quit = true
}

// Step advances the level by deltaTime seconds. Once the level has ended it
// only returns the final snapshot.
func (l *Level) Step(deltaTime float64, in Intent) Snapshot {
	if l.outcome.Terminal() {
		return l.Snapshot()
	}
	deltaTime = math.Max(0, deltaTime)
	if in.Quit {
		l.quit = true
	}

	// 1. clock
	l.clock.Advance(deltaTime)
	l.tick++
	now := l.clock.Now

	if in.ToggleMap && now >= l.mapReady {
		l.showMap = !l.showMap
		l.mapReady = now + minimapCooldown
	}

	// 2. behavior tracking
	l.tracker.Observe(now, in.HeldKeys(), in.Look, in.Scream)

	// 3. adaptation
	if amps, ok := l.analyzer.Analyze(l.tracker.Window(), l.player.Vitals().Stress, now); ok {
		l.amps = amps
		l.engine.ApplyAmplifiers(amps)
		l.ctx.Publish(events.Event{Kind: events.AmplifiersUpdated, Amplifiers: amps})
		l.log.WithFields(logrus.Fields{"tick": l.tick, "mean": amps.Mean()}).Debug("amplifiers updated")
	}

	// 4-7. input, flashlight, monsters, pickups
	l.input.SetIntent(in)
	l.entities.Update(deltaTime)

	// 8. timers
	l.advanceTimers(deltaTime)

	// 9. terminal conditions
	l.checkTerminal()

	return l.Snapshot()
}

func (l *Level) advanceTimers(deltaTime float64) {
	v := l.player.Vitals()
	fl := l.player.Flashlight()
	pc := l.cfg.Player

	if v.Stress > pc.StressBaseline {
		rate := pc.StressRecovery
		if fl.On && fl.Battery > 50 {
			rate = pc.StressRecoveryLit
		}
		v.Stress = math.Max(pc.StressBaseline, v.Stress-rate*deltaTime)
	}
	if v.Stress < 50 {
		v.AdjustSanity(pc.SanityRegen * deltaTime)
	}

	if !fl.On || fl.Battery < 10 {
		l.darkTime += deltaTime
	} else {
		l.darkTime = math.Max(0, l.darkTime-2*deltaTime)
	}

	l.director.Update(deltaTime, fear.Situation{
		Now:        l.clock.Now,
		Light:      fl.LightLevel(),
		Sanity:     v.Sanity,
		Stress:     v.Stress,
		DarkTime:   l.darkTime,
		Amplifiers: l.amps,
	})

	l.effects.decay(deltaTime)
}

func (l *Level) applyScare(sc fear.Scare) {
	v := l.player.Vitals()
	switch sc.Kind {
	case fear.ScareWhisper:
		v.AdjustSanity(-5)
	case fear.ScareSuddenSound:
		v.AdjustStress(10)
		l.effects.Shake = math.Max(l.effects.Shake, 0.3)
	case fear.ScareLightFlicker:
		l.flashlight.StartFlicker(sc.Duration)
	case fear.ScareQuake:
		v.AdjustStress(5 * sc.Intensity)
		l.effects.Shake = math.Max(l.effects.Shake, sc.Intensity)
	case fear.ScareParanoiaGlitch:
		l.effects.Distortion = math.Max(l.effects.Distortion, sc.Intensity)
	}
	l.log.WithFields(logrus.Fields{
		"tick":      l.tick,
		"scare":     sc.Kind,
		"intensity": sc.Intensity,
	}).Debug("scare triggered")
	l.ctx.Publish(events.Event{
		Kind:      events.ScareTriggered,
		Scare:     sc,
		Intensity: sc.Intensity,
		Position:  l.player.Transform().Position,
	})
}

func (l *Level) checkTerminal() {
	v := l.player.Vitals()
	progress := objectives.Measure(l.entities)

	var outcome events.Outcome
	switch {
	case l.quit:
		outcome = events.DefeatQuit
	case progress.Complete(l.required):
		outcome = events.Victory
	case v.Health <= 0:
		outcome = events.DefeatDamage
	case v.Sanity <= 0:
		outcome = events.DefeatMadness
	case l.clock.Now >= l.cfg.Level.TimeBudget:
		outcome = events.DefeatTimeout
	default:
		return
	}
	l.finish(outcome, progress)
}

func (l *Level) finish(outcome events.Outcome, progress objectives.Progress) {
	l.outcome = outcome
	l.engine.Deactivate()

	v := l.player.Vitals()
	l.summary = events.Summary{
		LevelID:      l.id,
		Seed:         l.seed,
		Outcome:      outcome,
		Elapsed:      l.clock.Now,
		KeysFound:    progress.KeysFound,
		KeysRequired: l.required,
		Health:       v.Health,
		Sanity:       v.Sanity,
		Stress:       v.Stress,
		JumpScares:   v.JumpScares,
	}
	l.lc.record(l.summary, l.amps)

	l.log.WithFields(logrus.Fields{
		"outcome": outcome,
		"elapsed": l.clock.Now,
		"keys":    progress.KeysFound,
	}).Info("level finished")
	l.ctx.Publish(events.Event{
		Kind:     events.LevelFinished,
		Outcome:  outcome,
		Summary:  l.summary,
		Position: l.player.Transform().Position,
	})
}

// Snapshot copies the current state
func (l *Level) Snapshot() Snapshot {
	t := l.player.Transform()
	v := l.player.Vitals()
	fl := l.player.Flashlight()
	progress := objectives.Measure(l.entities)

	s := Snapshot{
		LevelID: l.id,
		Tick:    l.tick,
		Time:    l.clock.Now,
		Outcome: l.outcome,
		Player: PlayerState{
			Position:     t.Position,
			Angle:        t.Angle,
			Health:       v.Health,
			Sanity:       v.Sanity,
			Stress:       v.Stress,
			JumpScares:   v.JumpScares,
			FlashlightOn: fl.On,
			Battery:      fl.Battery,
			BatteryMax:   fl.MaxBattery,
			Light:        fl.LightLevel(),
		},
		KeysFound:    progress.KeysFound,
		KeysRequired: l.required,
		ExitFound:    progress.ExitFound,
		Amplifiers:   l.amps,
		Effects:      l.effects,
		Darkness:     l.darknessFactor(),
		Stage:        stageFor(l.darkTime),
		Tension:      l.director.GetTensionValue(),
		TensionName:  l.director.GetTensionName(),
		Idle:         l.tracker.IdleFor(l.clock.Now),
		ShowMap:      l.showMap,
		TimeLeft:     math.Max(0, l.cfg.Level.TimeBudget-l.clock.Now),
	}

	for _, e := range l.entities.GetEntitiesWithTag(ecs.TagMonster) {
		mt, okT := ecs.Get[*ecs.TransformComponent](e, ecs.TransformComponentID)
		ai, okA := ecs.Get[*ecs.AIComponent](e, ecs.AIComponentID)
		if !okT || !okA {
			continue
		}
		s.Monsters = append(s.Monsters, MonsterState{ID: e.ID, Position: mt.Position, State: ai.State, Active: ai.Active})
	}
	for _, e := range l.entities.GetEntitiesWithTag(ecs.TagObjective) {
		if o, ok := ecs.Get[*ecs.ObjectiveComponent](e, ecs.ObjectiveComponentID); ok {
			s.Objectives = append(s.Objectives, ObjectiveState{Kind: o.Kind, Position: o.Position, Collected: o.Collected})
		}
	}
	return s
}

// darknessFactor scales ray distances for shading
func (l *Level) darknessFactor() float64 {
	fl := l.player.Flashlight()
	d := 1 + l.amps.FearDarkness()
	if !fl.On || fl.Battery < 20 {
		d *= 1.5
	}
	return d
}
