package ecs

import "unsafe"

// pageCapacity is the number of component slots per page. Pages are
// fixed-capacity (§3: "a fixed-capacity array of ComponentStorage<T>")
// rather than individually page-size-aligned blocks: instead of
// recovering the header by masking a raw pointer (spec §9 allows
// either encoding), pageHeader is embedded at offset 0 of every page,
// so a header pointer IS the page's address and can be reinterpreted
// back to *page[T] once the caller has checked the header's type.
// That reinterpretation is the one unsafe operation in this package;
// everything else works through the typed ComponentRef API.
const pageCapacity = 256

// pageHeader is the type-erased, common prefix of every page[T]. It
// carries the component's type and a back-reference to the owning
// pool, satisfying the §3 invariant that "the header's type must
// equal the ref's declared type".
type pageHeader struct {
	typ   ComponentType
	owner untypedPool
}

// untypedPool is the type-erased vtable a pageHeader uses to remove
// a component without the page needing to know T (§9: "the few
// virtual calls... are expressed as a two-function vtable per type").
type untypedPool interface {
	removeUntyped(page *pageHeader, slot uint16)
	StructGen() uint64
	HasEntity(id EntityId) bool
	Len() int
	mutatedEntityIDs() []EntityId
	clearMutatedUntyped()
}

// page is a contiguous block holding a header plus pageCapacity
// component slots and their metadata words (§3).
type page[T any] struct {
	pageHeader
	meta [pageCapacity]componentMeta
	data [pageCapacity]T
}

// header returns a pointer usable as the type-erased page identity.
func (p *page[T]) header() *pageHeader { return &p.pageHeader }

// pageFromHeader recovers a *page[T] from a pageHeader pointer,
// provided the caller has already verified h.typ == typeOf[T]().
// This is valid because pageHeader is embedded at offset 0 of page[T].
func pageFromHeader[T any](h *pageHeader) *page[T] {
	return (*page[T])(unsafe.Pointer(h))
}

// untypedComponentRef is the type-erased form of ComponentRef[T],
// stored in an Entity's sorted component list (§3).
type untypedComponentRef struct {
	page *pageHeader
	slot uint16
	gen  uint32
}

func (r untypedComponentRef) isNull() bool { return r.page == nil }
