package ecs

import "github.com/gan74/yave/internal/bitvec"

// TagSet is a named membership set of entities, independent of
// component storage (§3). An entity may carry any number of tags.
//
// Membership is keyed by the full EntityId, generation included: once
// an index is recycled, the new entity at that index starts with no
// tags of its own, even if the destroyed entity that used to live
// there carried some (§8, generational identity). mask mirrors
// members as a bit vector over EntityId.Index, giving Has an O(1)
// pre-filter the same way a ComponentPool's membership mask does
// (§4.2); members itself is still consulted to confirm the generation
// matches, since the mask alone cannot distinguish generations.
type TagSet struct {
	name       string
	members    map[EntityId]struct{}
	mask       bitvec.V[uint64]
	generation uint64 // bumped on every structural change, for Group invalidation
}

func newTagSet(name string) *TagSet {
	return &TagSet{name: name, members: map[EntityId]struct{}{}}
}

// Name returns the tag's name.
func (t *TagSet) Name() string { return t.name }

// Add marks id as carrying the tag. Adding a tag twice leaves a
// single membership (§8: tag idempotence).
func (t *TagSet) Add(id EntityId) {
	if _, ok := t.members[id]; ok {
		return
	}
	t.members[id] = struct{}{}
	t.setMask(id.Index)
	t.generation++
}

// Remove clears id's membership, if any. Removing after one or two
// adds both result in non-membership (§8).
func (t *TagSet) Remove(id EntityId) {
	if _, ok := t.members[id]; !ok {
		return
	}
	delete(t.members, id)
	t.unsetMask(id.Index)
	t.generation++
}

// Has reports whether id carries the tag.
func (t *TagSet) Has(id EntityId) bool {
	idx := int(id.Index)
	if idx >= t.mask.Len() || !t.mask.IsSet(idx) {
		return false
	}
	_, ok := t.members[id]
	return ok
}

func (t *TagSet) setMask(index uint32) {
	i := int(index)
	if t.mask.Len() <= i {
		t.mask.Grow((i-t.mask.Len())/64 + 1)
	}
	t.mask.Set(i)
}

func (t *TagSet) unsetMask(index uint32) {
	if int(index) < t.mask.Len() {
		t.mask.Unset(int(index))
	}
}

// Tag returns the named TagSet, creating it on first use.
func (w *World) Tag(name string) *TagSet {
	if t, ok := w.tags[name]; ok {
		return t
	}
	t := newTagSet(name)
	w.tags[name] = t
	return t
}

// Tags returns the name of every tag created on w so far, in no
// particular order, for serialization (§6).
func (w *World) Tags() []string {
	names := make([]string, 0, len(w.tags))
	for name := range w.tags {
		names = append(names, name)
	}
	return names
}

// Members returns the live entities currently carrying the tag.
func (t *TagSet) Members(w *World) []EntityId {
	ids := make([]EntityId, 0, len(t.members))
	for id := range t.members {
		if w.EntityExists(id) {
			ids = append(ids, id)
		}
	}
	return ids
}
