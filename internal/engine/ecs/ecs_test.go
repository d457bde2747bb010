package ecs

import "testing"

func TestWorldKeepsInsertionOrder(t *testing.T) {
	w := NewWorld()
	var ids []EntityID
	for i := 0; i < 20; i++ {
		e := NewEntity()
		e.AddComponent(NewTransformComponent(NewVector2(float64(i), 0), 0, 0.2))
		if i%2 == 0 {
			e.AddTag(TagMonster)
		}
		w.AddEntity(e)
		ids = append(ids, e.ID)
	}

	all := w.GetEntitiesWithAllComponents(TransformComponentID)
	if len(all) != 20 {
		t.Fatalf("got %d entities, want 20", len(all))
	}
	for i, e := range all {
		if e.ID != ids[i] {
			t.Fatalf("entity %d out of order", i)
		}
	}

	monsters := w.GetEntitiesWithTag(TagMonster)
	if len(monsters) != 10 {
		t.Fatalf("got %d monsters, want 10", len(monsters))
	}
	for i, e := range monsters {
		if e.ID != ids[i*2] {
			t.Fatalf("monster %d out of order", i)
		}
	}
}

func TestComponentIndexFollowsEntity(t *testing.T) {
	w := NewWorld()
	e := NewEntity()
	w.AddEntity(e)

	if got := w.GetEntitiesWithAllComponents(AIComponentID); len(got) != 0 {
		t.Fatalf("unexpected entities before component added: %d", len(got))
	}
	e.AddComponent(NewAIComponent(Vector2{}, 1, 2.5, 1.5))
	e.AddTag(TagMonster)
	if got := w.GetEntitiesWithAllComponents(AIComponentID); len(got) != 1 {
		t.Fatalf("component index not updated")
	}
	if first, ok := w.FirstWithTag(TagMonster); !ok || first != e {
		t.Fatalf("FirstWithTag did not find entity")
	}

	e.RemoveComponent(AIComponentID)
	if got := w.GetEntitiesWithAllComponents(AIComponentID); len(got) != 0 {
		t.Fatalf("component index not cleared")
	}

	w.RemoveEntity(e.ID)
	if _, ok := w.GetEntity(e.ID); ok {
		t.Fatal("entity still present after removal")
	}
	if got := w.GetEntitiesWithTag(TagMonster); len(got) != 0 {
		t.Fatal("tag index not cleared")
	}
}

func TestGetTyped(t *testing.T) {
	e := NewEntity()
	e.AddComponent(NewVitalsComponent(100, 100, 30))

	v, ok := Get[*VitalsComponent](e, VitalsComponentID)
	if !ok || v.Stress != 30 {
		t.Fatalf("Get vitals = %v, %v", v, ok)
	}
	if _, ok := Get[*AIComponent](e, AIComponentID); ok {
		t.Fatal("Get returned missing component")
	}
	if _, ok := Get[*AIComponent](e, VitalsComponentID); ok {
		t.Fatal("Get ignored type mismatch")
	}
}

type countingSystem struct {
	log  *[]string
	name string
}

func (s countingSystem) Update(float64)                   { *s.log = append(*s.log, s.name) }
func (s countingSystem) RequiredComponents() []ComponentID { return nil }

func TestSystemsRunInOrder(t *testing.T) {
	w := NewWorld()
	var log []string
	w.AddSystem(countingSystem{&log, "a"})
	w.AddSystem(&countingSystem{&log, "b"})
	w.Update(0.016)
	if len(log) != 2 || log[0] != "a" || log[1] != "b" {
		t.Fatalf("systems ran as %v", log)
	}
}

func TestVitalsClamp(t *testing.T) {
	v := NewVitalsComponent(100, 100, 30)
	v.AdjustHealth(-150)
	v.AdjustStress(200)
	v.AdjustSanity(5)
	if v.Health != 0 || v.Stress != 100 || v.Sanity != 100 {
		t.Fatalf("vitals not clamped: %+v", v)
	}
}

func TestObjectiveCollectOnce(t *testing.T) {
	o := NewObjectiveComponent(ObjectiveKey, NewVector2(2.5, 2.5))
	if !o.Collect() {
		t.Fatal("first collect returned false")
	}
	if o.Collect() {
		t.Fatal("second collect returned true")
	}
}
