package ecs

import (
	"sort"
	"time"
)

// mergeTimeThreshold is the window within which two consecutive edits
// touching the same set of (entity, type, property) keys are
// coalesced into a single undo entry (§4.2).
const mergeTimeThreshold = 500 * time.Millisecond

// componentKey identifies one component slot the way the undo system
// tracks it: by owning entity and component type, not by ref (refs go
// stale the moment the component is removed).
type componentKey struct {
	id  EntityId
	typ ComponentType
}

// propertyDelta is the before/after value set for one mutated
// component, resolved once the entity's current (redo) values and the
// snapshot's prior (undo) values are both known.
type propertyDelta struct {
	key  componentKey
	redo []Property
	undo []Property
}

// UndoState is one entry on the undo stack: a tick's worth of
// reversible property edits plus entity/component structural deltas
// (§4.2).
type UndoState struct {
	properties        []propertyDelta
	addedEntities     []EntityId
	removedEntities   []EntityId
	addedComponents   []removedComponent
	removedComponents []removedComponent
	created           time.Time
}

func (s *UndoState) hasEntityChanges() bool {
	return len(s.addedEntities) > 0 || len(s.removedEntities) > 0 ||
		len(s.addedComponents) > 0 || len(s.removedComponents) > 0
}

func (s *UndoState) propertyKeys() []componentKey {
	keys := make([]componentKey, len(s.properties))
	for i, p := range s.properties {
		keys[i] = p.key
	}
	return keys
}

func sameKeys(a, b []componentKey) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// undo reverses the state's effects against w: property writes go
// back to their pre-edit values, removed entities/components are
// restored, and added ones are taken back out.
func (s *UndoState) undo(w *World) {
	for _, d := range s.properties {
		if ops, ok := w.componentOps[d.key.typ.Index()]; ok {
			ops.apply(w, d.key.id, d.undo)
		}
	}
	for _, id := range s.removedEntities {
		w.recreateEntity(id)
	}
	for _, id := range s.addedEntities {
		w.RemoveEntity(id)
	}
	for _, c := range s.removedComponents {
		if ops, ok := w.componentOps[c.typ.Index()]; ok {
			ops.restore(w, c.id, c.value)
		}
	}
	for _, c := range s.addedComponents {
		if ops, ok := w.componentOps[c.typ.Index()]; ok {
			ops.remove(w, c.id)
		}
	}
}

// redo reapplies the state's effects against w.
func (s *UndoState) redo(w *World) {
	for _, d := range s.properties {
		if ops, ok := w.componentOps[d.key.typ.Index()]; ok {
			ops.apply(w, d.key.id, d.redo)
		}
	}
	for _, id := range s.removedEntities {
		w.RemoveEntity(id)
	}
	for _, id := range s.addedEntities {
		w.recreateEntity(id)
	}
	for _, c := range s.removedComponents {
		if ops, ok := w.componentOps[c.typ.Index()]; ok {
			ops.remove(w, c.id)
		}
	}
	for _, c := range s.addedComponents {
		if ops, ok := w.componentOps[c.typ.Index()]; ok {
			ops.restore(w, c.id, c.value)
		}
	}
}

// UndoRedoSystem diffs each tick's mutations against a parallel
// snapshot World and maintains a coalesced undo stack (§4.2). It runs
// in TickSequential, after every other system of that stage has
// recorded its changes and before the tick's deferred changes commit.
type UndoRedoSystem struct {
	states   []UndoState
	top      int
	snapshot *World
	doUndo   bool
	doRedo   bool
}

// NewUndoRedoSystem creates an UndoRedoSystem with a fresh, empty
// snapshot world.
func NewUndoRedoSystem() *UndoRedoSystem {
	s := &UndoRedoSystem{}
	s.Reset()
	return s
}

func (s *UndoRedoSystem) Name() string           { return "UndoRedoSystem" }
func (s *UndoRedoSystem) Stage() Stage            { return TickSequential }
func (s *UndoRedoSystem) Reads() []ComponentType  { return nil }
func (s *UndoRedoSystem) Writes() []ComponentType { return nil }

// Reset clears the undo stack and starts a fresh, empty snapshot. The
// snapshot is populated incrementally as states are pushed, so Reset
// is only valid to call before any entity this system should track
// has been created.
func (s *UndoRedoSystem) Reset() {
	if s.snapshot != nil {
		s.snapshot.Close()
	}
	s.states = nil
	s.top = 0
	s.doUndo = false
	s.doRedo = false
	s.snapshot = NewWorld()
}

// Undo requests that the previous state be reversed on the next Run.
func (s *UndoRedoSystem) Undo() { s.doUndo = true }

// Redo requests that the next un-done state be reapplied on the next
// Run.
func (s *UndoRedoSystem) Redo() { s.doRedo = true }

// StackTop returns the current position in the undo stack: the number
// of states that have been applied and not yet undone.
func (s *UndoRedoSystem) StackTop() int { return s.top }

// Run implements System. It is never called while doUndo/doRedo build
// a new state from live mutations: those two actions are mutually
// exclusive with recording a fresh edit in the same tick.
func (s *UndoRedoSystem) Run(w *World) {
	if !s.doUndo && !s.doRedo {
		s.pushState(w, s.buildState(w))
	}
	if s.doUndo {
		s.doUndo = false
		if s.top > 0 {
			s.top--
			s.states[s.top].undo(w)
			s.states[s.top].undo(s.snapshot)
		} else {
			w.log.Warn("undo: nothing to undo")
		}
	}
	if s.doRedo {
		s.doRedo = false
		if s.top != len(s.states) {
			s.states[s.top].redo(w)
			s.states[s.top].redo(s.snapshot)
			s.top++
		} else {
			w.log.Warn("undo: nothing to redo")
		}
	}
}

// buildState captures the current tick's mutations (§4.2, steps 1-4).
func (s *UndoRedoSystem) buildState(w *World) UndoState {
	state := UndoState{created: time.Now()}

	for idx, ids := range w.mutatedComponents() {
		typ := componentTypeByIndex(idx)
		ops := w.componentOps[idx]
		for _, id := range ids {
			if _, existedInSnapshot := ops.properties(s.snapshot, id); existedInSnapshot {
				redo, ok := ops.properties(w, id)
				if !ok {
					continue
				}
				state.properties = append(state.properties, propertyDelta{
					key:  componentKey{id: id, typ: typ},
					redo: redo,
				})
			} else if v, ok := ops.box(w, id); ok {
				state.addedComponents = append(state.addedComponents, removedComponent{id: id, typ: typ, value: v})
			}
		}
	}

	state.removedComponents = append(state.removedComponents, w.drainRemovedComponents()...)
	state.addedEntities = append(state.addedEntities, w.drainCreatedEntities()...)
	for _, re := range w.drainRemovedEntities() {
		state.removedEntities = append(state.removedEntities, re.id)
	}

	filled := state.properties[:0]
	for _, d := range state.properties {
		ops := w.componentOps[d.key.typ.Index()]
		undo, ok := ops.properties(s.snapshot, d.key.id)
		if !ok {
			continue
		}
		d.undo = undo
		if propertiesEqual(d.undo, d.redo) {
			continue
		}
		filled = append(filled, d)
	}
	state.properties = filled
	sort.Slice(state.properties, func(i, j int) bool {
		a, b := state.properties[i].key, state.properties[j].key
		if a.typ.Index() != b.typ.Index() {
			return a.typ.Index() < b.typ.Index()
		}
		if a.id.Index != b.id.Index {
			return a.id.Index < b.id.Index
		}
		return a.id.Generation < b.id.Generation
	})

	return state
}

// pushState applies the commit policy: drop empty states, coalesce
// same-shaped property-only edits within mergeTimeThreshold, else
// truncate any redone history and push (§4.2).
func (s *UndoRedoSystem) pushState(w *World, state UndoState) {
	if !state.hasEntityChanges() && len(state.properties) == 0 {
		return
	}

	state.redo(s.snapshot)

	if s.top != len(s.states) {
		s.states = s.states[:s.top]
	} else if !state.hasEntityChanges() && len(s.states) > 0 {
		last := &s.states[len(s.states)-1]
		if time.Since(last.created) < mergeTimeThreshold && sameKeys(last.propertyKeys(), state.propertyKeys()) {
			// only the redo side advances: last.properties[i].undo must
			// stay pinned to the value from before the first edit in this
			// merge window, or undoing the coalesced entry would only
			// revert the most recent sub-edit.
			for i := range last.properties {
				last.properties[i].redo = state.properties[i].redo
			}
			last.created = time.Now()
			return
		}
	}

	s.top++
	s.states = append(s.states, state)
}
