package engine

import (
	"math"

	"fear-maze/internal/config"
	"fear-maze/internal/engine/ecs"
	"fear-maze/internal/events"
	"fear-maze/internal/logger"

	"github.com/sirupsen/logrus"
)

// reachAttempts - сколько раз искать точку для блуждания или прыжка
const reachAttempts = 8

// AISystem отвечает за поведение монстров
type AISystem struct {
	ctx *Context
	cfg config.MonsterConfig
}

// NewAISystem создает систему поведения монстров
func NewAISystem(ctx *Context, cfg config.MonsterConfig) *AISystem {
	return &AISystem{ctx: ctx, cfg: cfg}
}

// RequiredComponents возвращает компоненты, необходимые для работы системы ИИ
func (as *AISystem) RequiredComponents() []ecs.ComponentID {
	return []ecs.ComponentID{
		ecs.TransformComponentID,
		ecs.AIComponentID,
	}
}

// Update обновляет всех активных монстров в порядке их появления
func (as *AISystem) Update(deltaTime float64) {
	_, player, vitals, ok := as.ctx.Player()
	if !ok {
		return
	}

	for _, entity := range as.ctx.World.GetEntitiesWithTag(ecs.TagMonster) {
		ai, okAI := ecs.Get[*ecs.AIComponent](entity, ecs.AIComponentID)
		transform, okT := ecs.Get[*ecs.TransformComponent](entity, ecs.TransformComponentID)
		if !okAI || !okT || !ai.Active {
			continue
		}
		as.updateMonster(entity, ai, transform, player, vitals, deltaTime)
	}
}

func (as *AISystem) updateMonster(entity *ecs.Entity, ai *ecs.AIComponent, transform *ecs.TransformComponent,
	player *ecs.TransformComponent, vitals *ecs.VitalsComponent, deltaTime float64) {

	ai.AttackCooldown = math.Max(0, ai.AttackCooldown-deltaTime)
	ai.LastSeen += deltaTime

	// Обнаружение: игрок в радиусе и между нами нет стен
	if as.Sees(ai, transform.Position, player.Position) {
		if ai.State != ecs.AIStateHunting {
			logger.Log.WithFields(logrus.Fields{
				"monster": entity.ID,
				"from":    ai.State,
				"time":    as.ctx.Clock.Now,
			}).Debug("monster started hunting")
		}
		ai.SetState(ecs.AIStateHunting)
		ai.LastSeen = 0
	} else if ai.State == ecs.AIStateHunting && ai.LastSeen > as.cfg.LostSightAfter {
		ai.SetState(ecs.AIStateWander)
	}

	switch ai.State {
	case ecs.AIStateHunting:
		as.handleHuntingState(entity, ai, transform, player, vitals, deltaTime)
	case ecs.AIStateWander:
		as.handleWanderState(ai, transform, deltaTime)
	case ecs.AIStateIdle:
		as.handleIdleState(ai, transform, deltaTime)
	}
}

// Sees проверяет, замечает ли монстр игрока в этом тике
func (as *AISystem) Sees(ai *ecs.AIComponent, from, to ecs.Vector2) bool {
	if from.Distance(to) > ai.DetectionRange {
		return false
	}
	return as.ctx.Level.LineOfSight(from, to, as.cfg.SightSamples)
}

// handleHuntingState - погоня и атака
func (as *AISystem) handleHuntingState(entity *ecs.Entity, ai *ecs.AIComponent, transform *ecs.TransformComponent,
	player *ecs.TransformComponent, vitals *ecs.VitalsComponent, deltaTime float64) {

	toPlayer := player.Position.Sub(transform.Position)
	distance := toPlayer.Magnitude()

	if distance > ai.AttackRange {
		step := toPlayer.Normalize().Multiply(ai.Speed * deltaTime)
		transform.Position = as.ctx.Level.Slide(transform.Position, step, transform.Radius)
		transform.Angle = math.Atan2(toPlayer.Y, toPlayer.X)
		return
	}

	if ai.CanAttack() {
		as.attack(entity, ai, transform, vitals)
	}
}

// attack наносит урон и вызывает скример
func (as *AISystem) attack(entity *ecs.Entity, ai *ecs.AIComponent, transform *ecs.TransformComponent, vitals *ecs.VitalsComponent) {
	amps := *as.ctx.Amplifiers

	damage := as.cfg.AttackDamage * amps.Monsters
	vitals.AdjustHealth(-damage)
	vitals.AdjustStress(as.cfg.AttackStress * amps.JumpScares)
	vitals.AdjustSanity(-as.cfg.AttackSanity)

	vitals.AdjustStress(as.cfg.JumpScareStress)
	vitals.AdjustSanity(-as.cfg.JumpScareSanity)
	vitals.JumpScares++

	ai.AttackCooldown = as.cfg.AttackCooldown / math.Max(amps.Monsters, 0.1)

	logger.Log.WithFields(logrus.Fields{
		"monster": entity.ID,
		"damage":  damage,
		"health":  vitals.Health,
	}).Debug("monster attack")

	as.ctx.Publish(events.Event{
		Kind:      events.MonsterAttack,
		Position:  transform.Position,
		Intensity: math.Min(1, amps.JumpScares/2.5),
		EntityID:  entity.ID,
	})
}

// handleWanderState - медленное блуждание вокруг точки появления
func (as *AISystem) handleWanderState(ai *ecs.AIComponent, transform *ecs.TransformComponent, deltaTime float64) {
	if !ai.HasTarget {
		target, ok := as.ctx.Level.RandomReachable(as.ctx.RNG, transform.Position, ai.Anchor,
			as.cfg.WanderRadius, as.cfg.SightSamples, reachAttempts)
		if !ok {
			target = ai.Anchor
		}
		ai.Target = target
		ai.HasTarget = true
		ai.WanderTime = 0
	}
	ai.WanderTime += deltaTime

	toTarget := ai.Target.Sub(transform.Position)
	distance := toTarget.Magnitude()
	if distance < 0.1 || ai.WanderTime > as.cfg.WanderTimeout {
		as.startIdle(ai)
		return
	}

	step := math.Min(distance, ai.Speed*0.5*deltaTime)
	transform.Position = as.ctx.Level.Slide(transform.Position, toTarget.Normalize().Multiply(step), transform.Radius)
	transform.Angle = math.Atan2(toTarget.Y, toTarget.X)

	as.maybeJump(ai, transform, deltaTime)
}

// handleIdleState - пауза между блужданиями
func (as *AISystem) handleIdleState(ai *ecs.AIComponent, transform *ecs.TransformComponent, deltaTime float64) {
	ai.IdleTimer -= deltaTime
	if ai.IdleTimer <= 0 {
		ai.SetState(ecs.AIStateWander)
		return
	}
	as.maybeJump(ai, transform, deltaTime)
}

func (as *AISystem) startIdle(ai *ecs.AIComponent) {
	ai.SetState(ecs.AIStateIdle)
	ai.IdleTimer = as.cfg.IdleMin + as.ctx.RNG.Float64()*math.Max(0, as.cfg.IdleMax-as.cfg.IdleMin)
}

// maybeJump раз в интервал с небольшой вероятностью переносит монстра рядом
func (as *AISystem) maybeJump(ai *ecs.AIComponent, transform *ecs.TransformComponent, deltaTime float64) {
	if as.cfg.JumpInterval <= 0 {
		return
	}
	ai.JumpTimer += deltaTime
	if ai.JumpTimer < as.cfg.JumpInterval {
		return
	}
	ai.JumpTimer -= as.cfg.JumpInterval

	if as.ctx.RNG.Float64() >= as.cfg.JumpChance {
		return
	}
	target, ok := as.ctx.Level.RandomReachable(as.ctx.RNG, transform.Position, transform.Position,
		as.cfg.JumpRadius, as.cfg.SightSamples, reachAttempts)
	if !ok {
		return
	}
	transform.Position = target
	as.startIdle(ai)
}

// Scream реагирует на крик игрока: близкие монстры либо отступают,
// либо приходят в ярость и начинают охоту
func (as *AISystem) Scream(origin ecs.Vector2, radius float64) (repelled, enraged int) {
	for _, entity := range as.ctx.World.GetEntitiesWithTag(ecs.TagMonster) {
		ai, okAI := ecs.Get[*ecs.AIComponent](entity, ecs.AIComponentID)
		transform, okT := ecs.Get[*ecs.TransformComponent](entity, ecs.TransformComponentID)
		if !okAI || !okT || !ai.Active {
			continue
		}
		if transform.Position.Distance(origin) >= radius {
			continue
		}

		if as.ctx.RNG.Float64() < as.cfg.RepelChance {
			pushed := transform.Position.Add(transform.Position.Sub(origin).Multiply(0.4))
			if !as.ctx.Level.Collides(pushed, transform.Radius) {
				transform.Position = pushed
			}
			ai.AttackCooldown = as.cfg.RepelCooldown
			ai.SetState(ecs.AIStateWander)
			repelled++
		} else {
			ai.DetectionRange *= as.cfg.EnrageFactor
			ai.SetState(ecs.AIStateHunting)
			ai.LastSeen = 0
			enraged++
		}
	}
	return repelled, enraged
}
