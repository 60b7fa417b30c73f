package ecs

import (
	"iter"

	"github.com/gan74/yave/internal/bitm"
	"github.com/gan74/yave/internal/bitvec"
)

// ComponentPool owns every page for component type T, a free list of
// empty slots, and the reverse mapping from slot to owning entity
// needed by MutatedIDs and by query's smallest-container scan (§3).
type ComponentPool[T any] struct {
	typ    ComponentType
	pages  []*page[T]
	free   bitm.Bitm[uint32]
	owners []EntityId // indexed by global slot (page*pageCapacity+slot); zero value is the null id
	gen    uint64      // bumped on every Add/Remove, drives Group invalidation

	// membership is a bit vector indexed by EntityId.Index, one bit
	// per live entity owning a T, maintained incrementally by Add and
	// removeSlot so Group's containment test is O(1) rather than a
	// scan of every slot (§4.2).
	membership bitvec.V[uint64]
}

// StructGen implements untypedPool's generation accessor: it changes
// whenever a component of this type is added or removed, which is
// what invalidates any Group requiring this type (§4.2).
func (p *ComponentPool[T]) StructGen() uint64 { return p.gen }

// newComponentPool creates an empty pool for T.
func newComponentPool[T any]() *ComponentPool[T] {
	return &ComponentPool[T]{typ: typeOf[T]()}
}

// Type returns the ComponentType this pool stores.
func (p *ComponentPool[T]) Type() ComponentType { return p.typ }

// Len returns the number of live components in the pool, used by
// query.go to pick the smallest container to drive iteration (§4.1).
func (p *ComponentPool[T]) Len() int { return p.free.Len() - p.free.Rem() }

// grow appends one more page and registers its free slots.
func (p *ComponentPool[T]) grow() {
	pg := &page[T]{pageHeader: pageHeader{typ: p.typ, owner: p}}
	p.pages = append(p.pages, pg)
	p.free.Grow(pageCapacity / 32)
	base := len(p.owners)
	p.owners = append(p.owners, make([]EntityId, pageCapacity)...)
	_ = base
}

// alloc reserves and returns the next empty slot's global index.
func (p *ComponentPool[T]) alloc() int {
	idx, ok := p.free.Search()
	if !ok {
		p.grow()
		idx, ok = p.free.Search()
		if !ok {
			fatal(nil, "component pool for %s exhausted unexpectedly", p.typ)
		}
	}
	p.free.Set(idx)
	return idx
}

func (p *ComponentPool[T]) pageAndSlot(globalIdx int) (*page[T], uint16) {
	pg := p.pages[globalIdx/pageCapacity]
	return pg, uint16(globalIdx % pageCapacity)
}

// poolGeneration is incremented process-wide every time a slot is
// (re)constructed, so that generations do not repeat across pages or
// pools until the counter wraps. It wraps back to 1 before reaching
// mutatedBit, so every value fits componentMeta's 31-bit generation.
var poolGeneration uint32 = 1

func nextGeneration() uint32 {
	poolGeneration++
	if poolGeneration >= uint32(mutatedBit) {
		poolGeneration = 1
	}
	return poolGeneration
}

// Add constructs a new T in the pool and returns a ComponentRef to it
// (§4.1's add_component, minus entity bookkeeping which World performs).
func (p *ComponentPool[T]) Add(owner EntityId, value T) ComponentRef[T] {
	idx := p.alloc()
	pg, slot := p.pageAndSlot(idx)
	gen := nextGeneration()
	pg.meta[slot] = newMeta(gen)
	pg.data[slot] = value
	p.owners[idx] = owner
	p.markMember(owner.Index)
	p.gen++
	return ComponentRef[T]{untypedComponentRef{page: pg.header(), slot: slot, gen: gen}}
}

// markMember sets owner's membership bit, growing the vector first if
// index falls past its current extent (mirrors EntityContainer's own
// alive-vector growth in entity.go).
func (p *ComponentPool[T]) markMember(index uint32) {
	i := int(index)
	if p.membership.Len() <= i {
		p.membership.Grow((i-p.membership.Len())/64 + 1)
	}
	p.membership.Set(i)
}

// unmarkMember clears index's membership bit, if it was ever grown to
// cover it.
func (p *ComponentPool[T]) unmarkMember(index uint32) {
	if int(index) < p.membership.Len() {
		p.membership.Unset(int(index))
	}
}

// removeUntyped implements untypedPool for type-erased removal from
// an Entity's component list walk (§4.1).
func (p *ComponentPool[T]) removeUntyped(h *pageHeader, slot uint16) {
	pg := pageFromHeader[T](h)
	p.removeSlot(pg, slot)
}

// Remove releases the component referred to by ref. It is a no-op if
// ref is already null or stale (§4.1: "Removing from an empty slot is
// a no-op").
func (p *ComponentPool[T]) Remove(ref ComponentRef[T]) {
	if ref.isStale() {
		return
	}
	pg := pageFromHeader[T](ref.page)
	p.removeSlot(pg, ref.slot)
}

func (p *ComponentPool[T]) removeSlot(pg *page[T], slot uint16) {
	if pg.meta[slot].empty() {
		return
	}
	var zero T
	pg.data[slot] = zero
	pg.meta[slot] = 0
	globalIdx := p.globalIndex(pg, slot)
	p.unmarkMember(p.owners[globalIdx].Index)
	p.owners[globalIdx] = EntityId{}
	p.free.Unset(globalIdx)
	p.gen++
}

func (p *ComponentPool[T]) globalIndex(pg *page[T], slot uint16) int {
	for i, cand := range p.pages {
		if cand == pg {
			return i*pageCapacity + int(slot)
		}
	}
	fatal(nil, "page not owned by this pool")
	return -1
}

// Get returns the live T for ref, or (zero, false) if ref is null or
// stale (§4.1).
func (p *ComponentPool[T]) Get(ref ComponentRef[T]) (*T, bool) {
	if ref.isStale() {
		return nil, false
	}
	pg := pageFromHeader[T](ref.page)
	return &pg.data[ref.slot], true
}

// GetMut is like Get but marks the slot mutated, enabling change
// detection for the undo system (§4.1).
func (p *ComponentPool[T]) GetMut(ref ComponentRef[T]) (*T, bool) {
	if ref.isStale() {
		return nil, false
	}
	pg := pageFromHeader[T](ref.page)
	pg.meta[ref.slot] = pg.meta[ref.slot].withMutated()
	return &pg.data[ref.slot], true
}

// clearMutated clears the mutated bit on every slot; World's
// mutatedComponents calls it right after collecting the pool's
// mutated ids for the undo system (§4.2).
func (p *ComponentPool[T]) clearMutated() {
	for _, pg := range p.pages {
		for i := range pg.meta {
			if !pg.meta[i].empty() {
				pg.meta[i] &^= mutatedBit
			}
		}
	}
}

// MutatedIDs enumerates the entities whose T was written through
// GetMut since the last clearMutated (§4.2).
func (p *ComponentPool[T]) MutatedIDs() iter.Seq[EntityId] {
	return func(yield func(EntityId) bool) {
		for pi, pg := range p.pages {
			for i := range pg.meta {
				if pg.meta[i].empty() || !pg.meta[i].mutated() {
					continue
				}
				id := p.owners[pi*pageCapacity+i]
				if !yield(id) {
					return
				}
			}
		}
	}
}

// Entities enumerates every live (EntityId, *T) pair in the pool, in
// ascending slot order. query.go further filters and reorders by
// EntityId.Index where required (§4.1).
func (p *ComponentPool[T]) Entities() iter.Seq2[EntityId, *T] {
	return func(yield func(EntityId, *T) bool) {
		for pi, pg := range p.pages {
			for i := range pg.meta {
				if pg.meta[i].empty() {
					continue
				}
				id := p.owners[pi*pageCapacity+i]
				if !yield(id, &pg.data[i]) {
					return
				}
			}
		}
	}
}

// HasEntity reports whether id owns a live component of this type, as
// an O(1) test against the membership bit vector. It implements the
// untypedPool lookup Group.rebuild uses to intersect required
// component types (§3, §4.2).
func (p *ComponentPool[T]) HasEntity(id EntityId) bool {
	idx := int(id.Index)
	if idx >= p.membership.Len() {
		return false
	}
	return p.membership.IsSet(idx)
}

// mutatedEntityIDs implements untypedPool's type-erased form of
// MutatedIDs, used by the undo system to enumerate dirty entities
// across every registered component type without itself being
// generic.
func (p *ComponentPool[T]) mutatedEntityIDs() []EntityId {
	var ids []EntityId
	for id := range p.MutatedIDs() {
		ids = append(ids, id)
	}
	return ids
}

// clearMutatedUntyped implements untypedPool's type-erased form of
// clearMutated.
func (p *ComponentPool[T]) clearMutatedUntyped() { p.clearMutated() }

// Lookup returns the *T for a live entity id, if it owns one (used by
// the query path once an id has matched every required type).
func (p *ComponentPool[T]) Lookup(id EntityId, untyped untypedComponentRef) (*T, bool) {
	if untyped.isNull() {
		return nil, false
	}
	return p.Get(ComponentRef[T]{untyped})
}
