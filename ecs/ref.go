package ecs

// ComponentRef is a typed, generation-checked handle to a component
// slot (§3). Dereferencing a ComponentRef can never return a dangling
// object: Get/GetMut on a stale or null ref simply report false.
type ComponentRef[T any] struct {
	untypedComponentRef
}

// IsNull reports whether r was never assigned a component (the zero
// value of ComponentRef[T]).
func (r ComponentRef[T]) IsNull() bool { return r.isNull() }

// isStale reports whether the slot r refers to has been reused since
// r was issued, or whether r is null. A stale ref reads as null (§3).
func (r ComponentRef[T]) isStale() bool {
	if r.page == nil {
		return true
	}
	if r.page.typ.Index() != typeOf[T]().Index() {
		fatal(nil, "component ref type mismatch: page holds %s, ref declares %s", r.page.typ, typeOf[T]())
	}
	pg := pageFromHeader[T](r.page)
	return pg.meta[r.slot].generation() != r.gen
}
