package ecs

import (
	"sort"
	"strconv"
)

// Group is a cached view of the entity IDs that have all of a given
// set of component types and, optionally, a set of tags (§3). It
// rebuilds lazily whenever a contributing container or tag set has
// changed structurally since the last rebuild (§4.2).
type Group struct {
	types []ComponentType
	tags  []string

	ids []EntityId

	// watermark of (pool, generation) and (tag, generation) pairs
	// observed at the last rebuild, used to detect invalidation.
	poolGen map[int]uint64
	tagGen  map[string]uint64

	built bool
}

// Group returns a cached view over entities owning every type in
// types and, if tags is non-empty, carrying every named tag. The
// returned Group is rebuilt (if necessary) on every call to Entities.
func (w *World) Group(types []ComponentType, tags ...string) *Group {
	key := groupKey(types, tags)
	if g, ok := w.groups[key]; ok {
		return g
	}
	g := &Group{
		types:   append([]ComponentType(nil), types...),
		tags:    append([]string(nil), tags...),
		poolGen: map[int]uint64{},
		tagGen:  map[string]uint64{},
	}
	w.groups[key] = g
	return g
}

func groupKey(types []ComponentType, tags []string) string {
	idx := make([]int, len(types))
	for i, t := range types {
		idx[i] = t.Index()
	}
	sort.Ints(idx)
	sortedTags := append([]string(nil), tags...)
	sort.Strings(sortedTags)
	key := ""
	for _, i := range idx {
		key += "#" + strconv.Itoa(i)
	}
	for _, t := range sortedTags {
		key += "@" + t
	}
	return key
}

// stale reports whether the group must be rebuilt: either it has
// never been built, or any contributing pool or tag set has advanced
// its generation counter since the last rebuild.
func (g *Group) stale(w *World) bool {
	if !g.built {
		return true
	}
	for _, t := range g.types {
		pool, ok := w.untypedPools[t.Index()]
		if !ok || g.poolGen[t.Index()] != pool.StructGen() {
			return true
		}
	}
	for _, name := range g.tags {
		if g.tagGen[name] != w.Tag(name).generation {
			return true
		}
	}
	return false
}

// rebuild recomputes g.ids from scratch by testing every live entity,
// in ascending index order, against each required pool and tag set.
func (g *Group) rebuild(w *World) {
	g.ids = g.ids[:0]
	if len(g.types) == 0 {
		g.built = true
		return
	}
	for _, t := range g.types {
		if _, ok := w.untypedPools[t.Index()]; !ok {
			g.built = true
			return
		}
	}
	w.entities.Each(func(id EntityId) bool {
		if g.matches(w, id) {
			g.ids = append(g.ids, id)
		}
		return true
	})
	for _, t := range g.types {
		if p, ok := w.untypedPools[t.Index()]; ok {
			g.poolGen[t.Index()] = p.StructGen()
		}
	}
	for _, name := range g.tags {
		g.tagGen[name] = w.Tag(name).generation
	}
	g.built = true
}

func (g *Group) matches(w *World, id EntityId) bool {
	for _, t := range g.types {
		p, ok := w.untypedPools[t.Index()]
		if !ok || !p.HasEntity(id) {
			return false
		}
	}
	for _, name := range g.tags {
		if !w.Tag(name).Has(id) {
			return false
		}
	}
	return true
}

// Entities returns the group's entity IDs in ascending index order,
// rebuilding first if any contributing container changed (§3, §4.2).
func (g *Group) Entities(w *World) []EntityId {
	if g.stale(w) {
		g.rebuild(w)
	}
	return g.ids
}
