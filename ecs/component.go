package ecs

import (
	"reflect"
	"sync"
	"sync/atomic"
)

// ComponentType is a process-wide unique token assigned to a distinct
// component type the first time it is used (§3). Two ComponentTypes
// are equal iff their indices match; the index also keys World's
// type-erased pool and component-ops maps.
type ComponentType struct {
	index int
	name  string
}

// Index returns the monotone index assigned to this type.
func (t ComponentType) Index() int { return t.index }

// String returns the human-readable type name.
func (t ComponentType) String() string { return t.name }

var (
	typeRegistryMu sync.Mutex
	typeRegistry   = map[reflect.Type]ComponentType{}
	typeByIndex    []reflect.Type
	typeCounter    atomic.Int64
)

// typeOf returns the ComponentType for T, assigning one on first use.
func typeOf[T any]() ComponentType {
	rt := reflect.TypeFor[T]()
	typeRegistryMu.Lock()
	defer typeRegistryMu.Unlock()
	if ct, ok := typeRegistry[rt]; ok {
		return ct
	}
	ct := ComponentType{index: int(typeCounter.Add(1)) - 1, name: rt.String()}
	typeRegistry[rt] = ct
	typeByIndex = append(typeByIndex, rt)
	return ct
}

// componentTypeByIndex reconstructs the ComponentType token for a
// previously assigned index, used by the undo system when it only has
// the type-erased index on hand.
func componentTypeByIndex(index int) ComponentType {
	typeRegistryMu.Lock()
	defer typeRegistryMu.Unlock()
	rt := typeByIndex[index]
	return typeRegistry[rt]
}

// componentMeta is the 32-bit metadata word of a ComponentStorage<T>
// slot (§3): bits [0:31) hold the generation (0 means empty), bit 31
// is the mutated flag.
type componentMeta uint32

const mutatedBit componentMeta = 1 << 31

func (m componentMeta) generation() uint32 { return uint32(m &^ mutatedBit) }
func (m componentMeta) empty() bool        { return m.generation() == 0 }
func (m componentMeta) mutated() bool      { return m&mutatedBit != 0 }

func newMeta(generation uint32) componentMeta {
	return componentMeta(generation) &^ mutatedBit
}

func (m componentMeta) withMutated() componentMeta { return m | mutatedBit }
