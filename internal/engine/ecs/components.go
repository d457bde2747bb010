package ecs

import (
	"math"
)

// Предопределенные типы компонентов
var (
	TransformComponentID     = RegisterComponentType("transform")
	VitalsComponentID        = RegisterComponentType("vitals")
	FlashlightComponentID    = RegisterComponentType("flashlight")
	PlayerControlComponentID = RegisterComponentType("player_control")
	AIComponentID            = RegisterComponentType("ai")
	ObjectiveComponentID     = RegisterComponentType("objective")
)

// Теги сущностей
const (
	TagPlayer    = "player"
	TagMonster   = "monster"
	TagObjective = "objective"
)

// Vector2 представляет точку или направление на плоскости лабиринта
type Vector2 struct {
	X, Y float64
}

// NewVector2 создает новый вектор
func NewVector2(x, y float64) Vector2 {
	return Vector2{X: x, Y: y}
}

// Add складывает два вектора
func (v Vector2) Add(other Vector2) Vector2 {
	return Vector2{X: v.X + other.X, Y: v.Y + other.Y}
}

// Sub вычитает вектор из другого вектора
func (v Vector2) Sub(other Vector2) Vector2 {
	return Vector2{X: v.X - other.X, Y: v.Y - other.Y}
}

// Multiply умножает вектор на скаляр
func (v Vector2) Multiply(scalar float64) Vector2 {
	return Vector2{X: v.X * scalar, Y: v.Y * scalar}
}

// Magnitude возвращает длину вектора
func (v Vector2) Magnitude() float64 {
	return math.Hypot(v.X, v.Y)
}

// Normalize возвращает нормализованный вектор
func (v Vector2) Normalize() Vector2 {
	mag := v.Magnitude()
	if mag == 0 {
		return v
	}
	return Vector2{X: v.X / mag, Y: v.Y / mag}
}

// Distance возвращает расстояние между двумя точками
func (v Vector2) Distance(other Vector2) float64 {
	return v.Sub(other).Magnitude()
}

// Dot возвращает скалярное произведение
func (v Vector2) Dot(other Vector2) float64 {
	return v.X*other.X + v.Y*other.Y
}

// TransformComponent - положение, направление взгляда и радиус столкновений
type TransformComponent struct {
	BaseComponent
	Position Vector2
	Angle    float64 // радианы, 0 смотрит вдоль +X
	Radius   float64
}

// NewTransformComponent создает новый компонент трансформации
func NewTransformComponent(position Vector2, angle, radius float64) *TransformComponent {
	return &TransformComponent{
		BaseComponent: NewBaseComponent(TransformComponentID),
		Position:      position,
		Angle:         angle,
		Radius:        radius,
	}
}

// Forward возвращает единичный вектор направления взгляда
func (t *TransformComponent) Forward() Vector2 {
	return Vector2{X: math.Cos(t.Angle), Y: math.Sin(t.Angle)}
}

// Right возвращает единичный вектор вправо от направления взгляда
func (t *TransformComponent) Right() Vector2 {
	return Vector2{X: math.Cos(t.Angle + math.Pi/2), Y: math.Sin(t.Angle + math.Pi/2)}
}

// VitalsComponent - здоровье, рассудок и стресс игрока, каждый в [0, 100]
type VitalsComponent struct {
	BaseComponent
	Health     float64
	Sanity     float64
	Stress     float64
	JumpScares int
}

// NewVitalsComponent создает компонент жизненных показателей
func NewVitalsComponent(health, sanity, stress float64) *VitalsComponent {
	v := &VitalsComponent{
		BaseComponent: NewBaseComponent(VitalsComponentID),
		Health:        health,
		Sanity:        sanity,
		Stress:        stress,
	}
	v.clamp()
	return v
}

// AdjustHealth изменяет здоровье
func (v *VitalsComponent) AdjustHealth(delta float64) {
	v.Health += delta
	v.clamp()
}

// AdjustSanity изменяет рассудок
func (v *VitalsComponent) AdjustSanity(delta float64) {
	v.Sanity += delta
	v.clamp()
}

// AdjustStress изменяет стресс
func (v *VitalsComponent) AdjustStress(delta float64) {
	v.Stress += delta
	v.clamp()
}

func (v *VitalsComponent) clamp() {
	v.Health = clamp(v.Health, 0, 100)
	v.Sanity = clamp(v.Sanity, 0, 100)
	v.Stress = clamp(v.Stress, 0, 100)
}

// FlashlightComponent - фонарик игрока
type FlashlightComponent struct {
	BaseComponent
	On         bool
	Battery    float64
	MaxBattery float64
	Flicker    float64 // множитель яркости в текущем тике, 1 - ровный свет
	FlickerFor float64 // остаток события мерцания, секунды
}

// NewFlashlightComponent создает включенный фонарик с полным зарядом
func NewFlashlightComponent(maxBattery float64) *FlashlightComponent {
	return &FlashlightComponent{
		BaseComponent: NewBaseComponent(FlashlightComponentID),
		On:            true,
		Battery:       maxBattery,
		MaxBattery:    maxBattery,
		Flicker:       1,
	}
}

// LightLevel возвращает уровень освещенности вокруг игрока
func (f *FlashlightComponent) LightLevel() float64 {
	if f.On && f.Battery > 20 {
		return f.Flicker
	}
	return 0.3
}

// PlayerControlComponent - параметры управления игроком
type PlayerControlComponent struct {
	BaseComponent
	MoveSpeed   float64
	TurnSpeed   float64
	Sensitivity float64
	Moving      bool // игрок двигался в последнем тике
}

// NewPlayerControlComponent создает компонент управления
func NewPlayerControlComponent(moveSpeed, turnSpeed, sensitivity float64) *PlayerControlComponent {
	return &PlayerControlComponent{
		BaseComponent: NewBaseComponent(PlayerControlComponentID),
		MoveSpeed:     moveSpeed,
		TurnSpeed:     turnSpeed,
		Sensitivity:   sensitivity,
	}
}

// AIState - состояние автомата поведения монстра
type AIState string

const (
	AIStateWander  AIState = "wander"
	AIStateIdle    AIState = "idle"
	AIStateHunting AIState = "hunting"
)

// AIComponent - состояние и параметры монстра
type AIComponent struct {
	BaseComponent
	State AIState

	BaseSpeed      float64
	Speed          float64
	BaseDetection  float64
	DetectionRange float64
	AttackRange    float64

	AttackCooldown float64 // оставшееся время до следующей атаки
	LastSeen       float64 // время с последнего обнаружения игрока

	Anchor     Vector2 // точка появления, центр блуждания
	Target     Vector2
	HasTarget  bool
	WanderTime float64
	IdleTimer  float64
	JumpTimer  float64

	Active bool
}

// NewAIComponent создает монстра в состоянии блуждания
func NewAIComponent(anchor Vector2, baseSpeed, detection, attackRange float64) *AIComponent {
	return &AIComponent{
		BaseComponent:  NewBaseComponent(AIComponentID),
		State:          AIStateWander,
		BaseSpeed:      baseSpeed,
		Speed:          baseSpeed,
		BaseDetection:  detection,
		DetectionRange: detection,
		AttackRange:    attackRange,
		Anchor:         anchor,
		Active:         true,
	}
}

// CanAttack проверяет, закончилась ли перезарядка атаки
func (ai *AIComponent) CanAttack() bool {
	return ai.AttackCooldown <= 0
}

// SetState переключает состояние и сбрасывает таймеры блуждания
func (ai *AIComponent) SetState(state AIState) {
	if ai.State == state {
		return
	}
	ai.State = state
	ai.HasTarget = false
	ai.WanderTime = 0
	if state == AIStateHunting {
		ai.LastSeen = 0
	}
}

// ObjectiveKind - тип цели уровня
type ObjectiveKind string

const (
	ObjectiveKey  ObjectiveKind = "key"
	ObjectiveExit ObjectiveKind = "exit"
)

// ObjectiveComponent - ключ или выход
type ObjectiveComponent struct {
	BaseComponent
	Kind      ObjectiveKind
	Position  Vector2 // центр клетки
	Collected bool
}

// NewObjectiveComponent создает несобранную цель
func NewObjectiveComponent(kind ObjectiveKind, position Vector2) *ObjectiveComponent {
	return &ObjectiveComponent{
		BaseComponent: NewBaseComponent(ObjectiveComponentID),
		Kind:          kind,
		Position:      position,
	}
}

// Collect отмечает цель собранной. Возвращает true только при первом сборе.
func (o *ObjectiveComponent) Collect() bool {
	if o.Collected {
		return false
	}
	o.Collected = true
	return true
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
