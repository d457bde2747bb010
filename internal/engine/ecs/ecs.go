package ecs

import (
	"reflect"

	"github.com/google/uuid"
)

// ComponentID уникально идентифицирует тип компонента
type ComponentID string

// EntityID уникально идентифицирует сущность
type EntityID string

// Component представляет базовый интерфейс для всех компонентов
type Component interface {
	// Type возвращает уникальный ID типа компонента
	Type() ComponentID
}

// Entity представляет игровую сущность
type Entity struct {
	ID         EntityID
	components map[ComponentID]Component
	tags       map[string]bool
	world      *World
}

// NewEntity создает новую сущность
func NewEntity() *Entity {
	return &Entity{
		ID:         EntityID(uuid.New().String()),
		components: make(map[ComponentID]Component),
		tags:       make(map[string]bool),
	}
}

// AddComponent добавляет компонент к сущности
func (e *Entity) AddComponent(c Component) {
	e.components[c.Type()] = c
	if e.world != nil {
		e.world.indexEntityComponent(e, c.Type(), true)
	}
}

// RemoveComponent удаляет компонент из сущности
func (e *Entity) RemoveComponent(id ComponentID) {
	if _, exists := e.components[id]; exists {
		delete(e.components, id)
		if e.world != nil {
			e.world.indexEntityComponent(e, id, false)
		}
	}
}

// GetComponent возвращает компонент указанного типа
func (e *Entity) GetComponent(id ComponentID) (Component, bool) {
	comp, exists := e.components[id]
	return comp, exists
}

// HasComponent проверяет, есть ли у сущности компонент указанного типа
func (e *Entity) HasComponent(id ComponentID) bool {
	_, exists := e.components[id]
	return exists
}

// HasAllComponents проверяет, есть ли у сущности все указанные компоненты
func (e *Entity) HasAllComponents(ids ...ComponentID) bool {
	for _, id := range ids {
		if !e.HasComponent(id) {
			return false
		}
	}
	return true
}

// AddTag добавляет тег к сущности
func (e *Entity) AddTag(tag string) {
	e.tags[tag] = true
	if e.world != nil {
		e.world.indexEntityTag(e, tag, true)
	}
}

// HasTag проверяет, есть ли у сущности указанный тег
func (e *Entity) HasTag(tag string) bool {
	return e.tags[tag]
}

// Get возвращает компонент сущности, приведенный к конкретному типу
func Get[T Component](e *Entity, id ComponentID) (T, bool) {
	var zero T
	if e == nil {
		return zero, false
	}
	comp, ok := e.components[id]
	if !ok {
		return zero, false
	}
	typed, ok := comp.(T)
	return typed, ok
}

// System представляет систему, которая обрабатывает сущности с определенными компонентами
type System interface {
	// Update обновляет состояние системы и связанных сущностей
	Update(deltaTime float64)

	// RequiredComponents возвращает список компонентов, необходимых для работы системы
	RequiredComponents() []ComponentID
}

// World содержит сущности и системы уровня.
// Мир принадлежит одному тику симуляции и не защищен блокировками.
// Сущности перебираются в порядке добавления, поэтому при одном сиде
// результат обновления воспроизводим.
type World struct {
	entities map[EntityID]*Entity
	order    []*Entity
	systems  []System

	// Индексы для быстрого доступа
	entitiesByComponent map[ComponentID]map[EntityID]bool
	entitiesByTag       map[string]map[EntityID]bool
}

// NewWorld создает новый игровой мир
func NewWorld() *World {
	return &World{
		entities:            make(map[EntityID]*Entity),
		entitiesByComponent: make(map[ComponentID]map[EntityID]bool),
		entitiesByTag:       make(map[string]map[EntityID]bool),
	}
}

// AddEntity добавляет сущность в мир
func (w *World) AddEntity(e *Entity) {
	if _, exists := w.entities[e.ID]; exists {
		return
	}
	w.entities[e.ID] = e
	w.order = append(w.order, e)
	e.world = w

	for id := range e.components {
		w.indexEntityComponent(e, id, true)
	}
	for tag := range e.tags {
		w.indexEntityTag(e, tag, true)
	}
}

// RemoveEntity удаляет сущность из мира
func (w *World) RemoveEntity(id EntityID) {
	e, exists := w.entities[id]
	if !exists {
		return
	}
	for compID := range e.components {
		w.indexEntityComponent(e, compID, false)
	}
	for tag := range e.tags {
		w.indexEntityTag(e, tag, false)
	}
	delete(w.entities, id)
	for i, o := range w.order {
		if o == e {
			w.order = append(w.order[:i], w.order[i+1:]...)
			break
		}
	}
	e.world = nil
}

// GetEntity возвращает сущность по ID
func (w *World) GetEntity(id EntityID) (*Entity, bool) {
	e, exists := w.entities[id]
	return e, exists
}

// GetEntities возвращает все сущности в мире
func (w *World) GetEntities() []*Entity {
	entities := make([]*Entity, len(w.order))
	copy(entities, w.order)
	return entities
}

// GetEntitiesWithAllComponents возвращает все сущности со всеми указанными компонентами
func (w *World) GetEntitiesWithAllComponents(compIDs ...ComponentID) []*Entity {
	if len(compIDs) == 0 {
		return nil
	}
	for _, compID := range compIDs {
		if len(w.entitiesByComponent[compID]) == 0 {
			return nil
		}
	}

	var entities []*Entity
	for _, e := range w.order {
		if e.HasAllComponents(compIDs...) {
			entities = append(entities, e)
		}
	}
	return entities
}

// GetEntitiesWithTag возвращает все сущности с указанным тегом
func (w *World) GetEntitiesWithTag(tag string) []*Entity {
	tagged := w.entitiesByTag[tag]
	if len(tagged) == 0 {
		return nil
	}
	entities := make([]*Entity, 0, len(tagged))
	for _, e := range w.order {
		if tagged[e.ID] {
			entities = append(entities, e)
		}
	}
	return entities
}

// FirstWithTag возвращает первую добавленную сущность с тегом
func (w *World) FirstWithTag(tag string) (*Entity, bool) {
	for _, e := range w.order {
		if w.entitiesByTag[tag][e.ID] {
			return e, true
		}
	}
	return nil, false
}

// AddSystem добавляет систему в мир. Системы обновляются в порядке добавления.
func (w *World) AddSystem(s System) {
	w.systems = append(w.systems, s)
}

// RemoveSystem удаляет систему из мира
func (w *World) RemoveSystem(system System) {
	systemType := reflect.TypeOf(system)
	for i, s := range w.systems {
		if reflect.TypeOf(s) == systemType {
			w.systems = append(w.systems[:i], w.systems[i+1:]...)
			return
		}
	}
}

// Update обновляет все системы в мире
func (w *World) Update(deltaTime float64) {
	for _, system := range w.systems {
		system.Update(deltaTime)
	}
}

// indexEntityComponent индексирует сущность по компоненту
func (w *World) indexEntityComponent(e *Entity, compID ComponentID, add bool) {
	if add {
		if _, exists := w.entitiesByComponent[compID]; !exists {
			w.entitiesByComponent[compID] = make(map[EntityID]bool)
		}
		w.entitiesByComponent[compID][e.ID] = true
	} else {
		delete(w.entitiesByComponent[compID], e.ID)
	}
}

// indexEntityTag индексирует сущность по тегу
func (w *World) indexEntityTag(e *Entity, tag string, add bool) {
	if add {
		if _, exists := w.entitiesByTag[tag]; !exists {
			w.entitiesByTag[tag] = make(map[EntityID]bool)
		}
		w.entitiesByTag[tag][e.ID] = true
	} else {
		delete(w.entitiesByTag[tag], e.ID)
	}
}

// RegisterComponentType регистрирует новый тип компонента и возвращает его ID
func RegisterComponentType(name string) ComponentID {
	return ComponentID(name)
}

// BaseComponent предоставляет базовую реализацию интерфейса Component
type BaseComponent struct {
	TypeID ComponentID
}

// Type возвращает ID типа компонента
func (bc *BaseComponent) Type() ComponentID {
	return bc.TypeID
}

// NewBaseComponent создает новый базовый компонент с указанным ID типа
func NewBaseComponent(typeID ComponentID) BaseComponent {
	return BaseComponent{TypeID: typeID}
}
