package ecs

import "github.com/gan74/yave/internal/bitvec"

// EntityId is a generational identifier: (index, generation). Only
// generation >= 1 is valid; generation 0 denotes "null" (§3).
type EntityId struct {
	Index      uint32
	Generation uint32
}

// IsNull reports whether id is the null identity.
func (id EntityId) IsNull() bool { return id.Generation == 0 }

// componentEntry is one element of an Entity's sorted component list.
type componentEntry struct {
	typ ComponentType
	ref untypedComponentRef
}

// entitySlot is one element of EntityContainer.dense.
type entitySlot struct {
	generation uint32
	components []componentEntry // sorted by typ.Index()
}

// EntityContainer is a dense array of entity slots indexed by
// EntityId.Index, plus a free list of reclaimable indices (§3).
// Aliveness is tracked independently of generation via alive, a bit
// vector: generation only advances when a slot is reused, so that
// e1 := Create(); Remove(e1); e2 := Create() yields
// e1.Generation+1 == e2.Generation (§8, scenario 1), while Remove
// alone (without reuse) must already make the old id stale.
type EntityContainer struct {
	dense []entitySlot
	alive bitvec.V[uint64]
	free  []uint32
}

// Create reuses a free index if any, else extends the dense array,
// and increments that slot's generation (§4.1).
func (c *EntityContainer) Create() EntityId {
	var idx uint32
	if n := len(c.free); n > 0 {
		idx = c.free[n-1]
		c.free = c.free[:n-1]
		c.dense[idx].generation++
	} else {
		idx = uint32(len(c.dense))
		c.dense = append(c.dense, entitySlot{generation: 1})
		if c.alive.Len() <= int(idx) {
			c.alive.Grow(1)
		}
	}
	c.alive.Set(int(idx))
	return EntityId{Index: idx, Generation: c.dense[idx].generation}
}

// CreateWithID brings id back to life at its exact index and
// generation, for the undo system's entity-removal reversal: the
// recreated entity must compare equal to the one that was destroyed,
// not merely be a fresh id at the same index (§4.2).
func (c *EntityContainer) CreateWithID(id EntityId) {
	idx := int(id.Index)
	for len(c.dense) <= idx {
		c.free = append(c.free, uint32(len(c.dense)))
		c.dense = append(c.dense, entitySlot{})
	}
	for i, f := range c.free {
		if f == id.Index {
			c.free = append(c.free[:i], c.free[i+1:]...)
			break
		}
	}
	c.dense[idx].generation = id.Generation
	c.dense[idx].components = nil
	if c.alive.Len() <= idx {
		c.alive.Grow((idx-c.alive.Len())/64 + 1)
	}
	c.alive.Set(idx)
}

// Exists reports whether id refers to a live entity (§4.1).
func (c *EntityContainer) Exists(id EntityId) bool {
	if id.IsNull() || int(id.Index) >= len(c.dense) {
		return false
	}
	return c.alive.IsSet(int(id.Index)) && c.dense[id.Index].generation == id.Generation
}

// Remove clears the slot's liveness, pushes its index onto the free
// list and returns the component entries that were attached to it.
// The components are still live at that point: the caller (World)
// releases each one through its owning pool afterwards, in list order.
func (c *EntityContainer) Remove(id EntityId) []componentEntry {
	if !c.Exists(id) {
		return nil
	}
	slot := &c.dense[id.Index]
	entries := slot.components
	slot.components = nil
	c.alive.Unset(int(id.Index))
	c.free = append(c.free, id.Index)
	return entries
}

// components returns the live entity's component list, or nil.
func (c *EntityContainer) components(id EntityId) []componentEntry {
	if !c.Exists(id) {
		return nil
	}
	return c.dense[id.Index].components
}

// addEntry inserts (typ, ref) into id's sorted component list.
// Returns ErrDuplicateComponent if typ is already present.
func (c *EntityContainer) addEntry(id EntityId, typ ComponentType, ref untypedComponentRef) error {
	slot := &c.dense[id.Index]
	i := 0
	for ; i < len(slot.components); i++ {
		if slot.components[i].typ.Index() == typ.Index() {
			return ErrDuplicateComponent
		}
		if slot.components[i].typ.Index() > typ.Index() {
			break
		}
	}
	slot.components = append(slot.components, componentEntry{})
	copy(slot.components[i+1:], slot.components[i:])
	slot.components[i] = componentEntry{typ: typ, ref: ref}
	return nil
}

// removeEntry removes the entry for typ from id's component list, if
// present. It reports whether an entry was removed.
func (c *EntityContainer) removeEntry(id EntityId, typ ComponentType) (untypedComponentRef, bool) {
	slot := &c.dense[id.Index]
	for i := range slot.components {
		if slot.components[i].typ.Index() == typ.Index() {
			ref := slot.components[i].ref
			slot.components = append(slot.components[:i], slot.components[i+1:]...)
			return ref, true
		}
	}
	return untypedComponentRef{}, false
}

// entryFor returns the untyped ref for typ on id, if present.
func (c *EntityContainer) entryFor(id EntityId, typ ComponentType) (untypedComponentRef, bool) {
	for _, e := range c.components(id) {
		if e.typ.Index() == typ.Index() {
			return e.ref, true
		}
	}
	return untypedComponentRef{}, false
}

// Len returns the number of index slots ever allocated, live or not.
// It bounds valid EntityId.Index values.
func (c *EntityContainer) Len() int { return len(c.dense) }

// Each iterates every live entity id in ascending index order.
func (c *EntityContainer) Each(yield func(EntityId) bool) {
	for i := range c.dense {
		if !c.alive.IsSet(i) {
			continue
		}
		if !yield(EntityId{Index: uint32(i), Generation: c.dense[i].generation}) {
			return
		}
	}
}
