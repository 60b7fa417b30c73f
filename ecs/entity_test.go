package ecs

import "testing"

func TestCreateDestroyCreateBumpsGeneration(t *testing.T) {
	var c EntityContainer
	e1 := c.Create()
	c.Remove(e1)
	e2 := c.Create()

	if e2.Index != e1.Index {
		t.Fatalf("expected index reuse, got %d then %d", e1.Index, e2.Index)
	}
	if e2.Generation != e1.Generation+1 {
		t.Fatalf("Generation = %d, want %d", e2.Generation, e1.Generation+1)
	}
	if c.Exists(e1) {
		t.Error("stale id e1 reports as existing after reuse")
	}
	if !c.Exists(e2) {
		t.Error("e2 does not exist right after Create")
	}
}

func TestRemoveWithoutReuseIsStale(t *testing.T) {
	var c EntityContainer
	e1 := c.Create()
	c.Remove(e1)
	if c.Exists(e1) {
		t.Error("removed entity still reports as existing")
	}
}

func TestCreateWithIDRestoresExactIdentity(t *testing.T) {
	var c EntityContainer
	e1 := c.Create()
	c.Remove(e1)

	c.CreateWithID(e1)
	if !c.Exists(e1) {
		t.Fatal("CreateWithID did not resurrect the original id")
	}

	// the free list must no longer offer e1's index to a fresh Create.
	e2 := c.Create()
	if e2.Index == e1.Index {
		t.Error("CreateWithID left its index on the free list")
	}
}

func TestEachVisitsLiveEntitiesInAscendingIndexOrder(t *testing.T) {
	var c EntityContainer
	a := c.Create()
	b := c.Create()
	d := c.Create()
	c.Remove(b)

	var got []EntityId
	c.Each(func(id EntityId) bool {
		got = append(got, id)
		return true
	})

	if len(got) != 2 || got[0] != a || got[1] != d {
		t.Fatalf("Each visited %v, want [%v %v]", got, a, d)
	}
}
