package ecs

import (
	"iter"
	"sort"
)

// queryFilter holds the optional tag constraints a query may apply on
// top of its required component types (§4.1: "filters by a bitmask of
// required types and, optionally, by tag membership").
type queryFilter struct {
	withTags    []string
	withoutTags []string
}

// QueryOption configures a query's tag filter.
type QueryOption func(*queryFilter)

// WithTags requires every named tag to be present on a matching
// entity.
func WithTags(tags ...string) QueryOption {
	return func(f *queryFilter) { f.withTags = append(f.withTags, tags...) }
}

// WithoutTags excludes entities carrying any of the named tags.
func WithoutTags(tags ...string) QueryOption {
	return func(f *queryFilter) { f.withoutTags = append(f.withoutTags, tags...) }
}

func (f *queryFilter) accepts(w *World, id EntityId) bool {
	for _, name := range f.withTags {
		if !w.Tag(name).Has(id) {
			return false
		}
	}
	for _, name := range f.withoutTags {
		if w.Tag(name).Has(id) {
			return false
		}
	}
	return true
}

func buildFilter(opts []QueryOption) queryFilter {
	var f queryFilter
	for _, opt := range opts {
		opt(&f)
	}
	return f
}

// Query1 enumerates every entity owning a T, in ascending EntityId
// index order, applying the given tag filters (§4.1).
func Query1[T any](w *World, opts ...QueryOption) iter.Seq2[EntityId, *T] {
	f := buildFilter(opts)
	pool := poolFor[T](w)
	return func(yield func(EntityId, *T) bool) {
		for id, v := range orderedEntities(pool) {
			if !f.accepts(w, id) {
				continue
			}
			if !yield(id, v) {
				return
			}
		}
	}
}

// pair2 is the per-entity result of Query2.
type pair2[A, B any] struct {
	ID EntityId
	A  *A
	B  *B
}

// Query2 enumerates every entity owning both an A and a B, driving
// iteration from whichever pool is smaller (§4.1: "enumerates the
// smallest container among T1…Tn").
func Query2[A, B any](w *World, opts ...QueryOption) iter.Seq[pair2[A, B]] {
	f := buildFilter(opts)
	pa := poolFor[A](w)
	pb := poolFor[B](w)
	return func(yield func(pair2[A, B]) bool) {
		if pa.Len() <= pb.Len() {
			for id, a := range orderedEntities(pa) {
				b, ok := GetComponent[B](w, id)
				if !ok || !f.accepts(w, id) {
					continue
				}
				if !yield(pair2[A, B]{ID: id, A: a, B: b}) {
					return
				}
			}
			return
		}
		for id, b := range orderedEntities(pb) {
			a, ok := GetComponent[A](w, id)
			if !ok || !f.accepts(w, id) {
				continue
			}
			if !yield(pair2[A, B]{ID: id, A: a, B: b}) {
				return
			}
		}
	}
}

// pair3 is the per-entity result of Query3.
type pair3[A, B, C any] struct {
	ID EntityId
	A  *A
	B  *B
	C  *C
}

// Query3 enumerates every entity owning an A, a B and a C, driving
// iteration from the smallest of the three pools (§4.1).
func Query3[A, B, C any](w *World, opts ...QueryOption) iter.Seq[pair3[A, B, C]] {
	f := buildFilter(opts)
	pa := poolFor[A](w)
	pb := poolFor[B](w)
	pc := poolFor[C](w)

	type driver int
	const (
		driveA driver = iota
		driveB
		driveC
	)
	d := driveA
	n := pa.Len()
	if pb.Len() < n {
		d, n = driveB, pb.Len()
	}
	if pc.Len() < n {
		d = driveC
	}

	return func(yield func(pair3[A, B, C]) bool) {
		emit := func(id EntityId) bool {
			a, ok := GetComponent[A](w, id)
			if !ok {
				return true
			}
			b, ok := GetComponent[B](w, id)
			if !ok {
				return true
			}
			c, ok := GetComponent[C](w, id)
			if !ok {
				return true
			}
			if !f.accepts(w, id) {
				return true
			}
			return yield(pair3[A, B, C]{ID: id, A: a, B: b, C: c})
		}
		switch d {
		case driveA:
			for id := range orderedIDs(pa) {
				if !emit(id) {
					return
				}
			}
		case driveB:
			for id := range orderedIDs(pb) {
				if !emit(id) {
					return
				}
			}
		default:
			for id := range orderedIDs(pc) {
				if !emit(id) {
					return
				}
			}
		}
	}
}

// orderedEntities yields a pool's (EntityId, *T) pairs in ascending
// EntityId.Index order. Pools store slots in allocation order, not
// index order, so results are collected and sorted once per call
// (§4.1's ordering guarantee applies to the externally observed
// sequence, not the pool's internal layout).
func orderedEntities[T any](p *ComponentPool[T]) iter.Seq2[EntityId, *T] {
	type entry struct {
		id EntityId
		v  *T
	}
	var entries []entry
	for id, v := range p.Entities() {
		entries = append(entries, entry{id, v})
	}
	sortByIndex(entries, func(e entry) uint32 { return e.id.Index })
	return func(yield func(EntityId, *T) bool) {
		for _, e := range entries {
			if !yield(e.id, e.v) {
				return
			}
		}
	}
}

func orderedIDs[T any](p *ComponentPool[T]) iter.Seq[EntityId] {
	var ids []EntityId
	for id := range p.Entities() {
		ids = append(ids, id)
	}
	sortByIndex(ids, func(id EntityId) uint32 { return id.Index })
	return func(yield func(EntityId) bool) {
		for _, id := range ids {
			if !yield(id) {
				return
			}
		}
	}
}

func sortByIndex[T any](s []T, key func(T) uint32) {
	sort.Slice(s, func(i, j int) bool { return key(s[i]) < key(s[j]) })
}
