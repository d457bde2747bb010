package monster

import (
	"fear-maze/internal/config"
	"fear-maze/internal/engine/ecs"
	"fear-maze/internal/world"
	"fear-maze/internal/world/maze"
)

// Radius - радиус столкновений монстра
const Radius = 0.2

// SpawnPoints выбирает до count тупиков для монстров. Тупики просматриваются
// построчно; сначала берутся те, что дальше minDistance от старта игрока.
func SpawnPoints(grid *maze.Grid, count int, minDistance float64) []maze.Point {
	if count <= 0 {
		return nil
	}
	var far, near []maze.Point
	for _, p := range grid.DeadEnds() {
		if p == grid.Start() {
			continue
		}
		if maze.Distance(p, grid.Start()) >= minDistance {
			far = append(far, p)
		} else {
			near = append(near, p)
		}
	}
	points := append(far, near...)
	if len(points) > count {
		points = points[:count]
	}
	return points
}

// CreateMonsterEntity создает монстра в центре клетки
func CreateMonsterEntity(w *ecs.World, cell maze.Point, cfg config.MonsterConfig) *ecs.Entity {
	pos := world.CellCenter(cell)

	entity := ecs.NewEntity()
	entity.AddComponent(ecs.NewTransformComponent(pos, 0, Radius))
	entity.AddComponent(ecs.NewAIComponent(pos, cfg.BaseSpeed, cfg.DetectionRange, cfg.AttackRange))
	entity.AddTag(ecs.TagMonster)
	w.AddEntity(entity)
	return entity
}

// Spawn создает монстров на уровне
func Spawn(w *ecs.World, grid *maze.Grid, count int, cfg config.MonsterConfig) []*ecs.Entity {
	var out []*ecs.Entity
	for _, p := range SpawnPoints(grid, count, cfg.MinStartDistance) {
		out = append(out, CreateMonsterEntity(w, p, cfg))
	}
	return out
}
