package engine

import (
	"math/rand/v2"

	"fear-maze/internal/ai/fear"
	"fear-maze/internal/config"
	"fear-maze/internal/engine/ecs"
	"fear-maze/internal/events"
	"fear-maze/internal/world"
)

// Clock - симулированное время уровня
type Clock struct {
	Now float64
}

// Advance сдвигает часы на один тик
func (c *Clock) Advance(deltaTime float64) {
	c.Now += deltaTime
}

// Context - общее состояние уровня, которое видят все системы.
// Все поля меняются только внутри тика симуляции.
type Context struct {
	World      *ecs.World
	Level      *world.World
	Bus        *events.Bus
	RNG        *rand.Rand
	Clock      *Clock
	Amplifiers *fear.Amplifiers
}

// Publish отправляет событие с текущим временем уровня
func (c *Context) Publish(e events.Event) {
	e.Time = c.Clock.Now
	c.Bus.Publish(e)
}

// Player возвращает сущность игрока и ее основные компоненты
func (c *Context) Player() (*ecs.Entity, *ecs.TransformComponent, *ecs.VitalsComponent, bool) {
	player, ok := c.World.FirstWithTag(ecs.TagPlayer)
	if !ok {
		return nil, nil, nil, false
	}
	transform, okT := ecs.Get[*ecs.TransformComponent](player, ecs.TransformComponentID)
	vitals, okV := ecs.Get[*ecs.VitalsComponent](player, ecs.VitalsComponentID)
	if !okT || !okV {
		return nil, nil, nil, false
	}
	return player, transform, vitals, true
}

// Engine владеет системами монстров
type Engine struct {
	ctx      *Context
	aiSystem *AISystem
}

// NewEngine создает движок. Систему ИИ в мир добавляет вызывающий,
// чтобы порядок систем в тике задавался в одном месте.
func NewEngine(ctx *Context, cfg config.MonsterConfig) *Engine {
	e := &Engine{
		ctx:      ctx,
		aiSystem: NewAISystem(ctx, cfg),
	}
	return e
}

// AISystem возвращает систему поведения монстров
func (e *Engine) AISystem() *AISystem {
	return e.aiSystem
}

// ApplyAmplifiers пересчитывает скорость и дальность обнаружения монстров
func (e *Engine) ApplyAmplifiers(amps fear.Amplifiers) {
	for _, entity := range e.ctx.World.GetEntitiesWithTag(ecs.TagMonster) {
		ai, ok := ecs.Get[*ecs.AIComponent](entity, ecs.AIComponentID)
		if !ok {
			continue
		}
		ai.Speed = ai.BaseSpeed * amps.Monsters
		ai.DetectionRange = ai.BaseDetection * amps.Atmosphere
	}
}

// Deactivate останавливает всех монстров, когда уровень закончен
func (e *Engine) Deactivate() {
	for _, entity := range e.ctx.World.GetEntitiesWithTag(ecs.TagMonster) {
		if ai, ok := ecs.Get[*ecs.AIComponent](entity, ecs.AIComponentID); ok {
			ai.Active = false
		}
	}
}
