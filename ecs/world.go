package ecs

import (
	"reflect"
	"sync"

	"github.com/sirupsen/logrus"
)

// deferredOp is one structural mutation enqueued while a stage is
// running, applied by commit once PostUpdate has finished (§4.2).
type deferredOp func(w *World)

// World owns every entity, component pool, tag set, cached Group and
// registered System (§3). Structural mutations requested while a
// stage is running are deferred and committed after PostUpdate.
type World struct {
	entities EntityContainer

	pools        map[reflect.Type]any
	untypedPools map[int]untypedPool

	tags   map[string]*TagSet
	groups map[string]*Group

	componentOps map[int]componentOps

	systems   []registeredSystem
	scheduler *workerPool

	log *logrus.Entry

	mu        sync.Mutex
	deferring bool
	deferred  []deferredOp

	createdLog          []EntityId
	removedEntityLog    []removedEntity
	removedComponentLog []removedComponent
}

// removedComponent records a component's boxed value at the moment it
// was removed, so undo can restore it (§4.2).
type removedComponent struct {
	id    EntityId
	typ   ComponentType
	value any
}

// removedEntity records an entity's id at the moment it was
// destroyed (§4.2).
type removedEntity struct {
	id EntityId
}

// NewWorld creates an empty World with its own worker pool.
func NewWorld() *World {
	return &World{
		pools:        map[reflect.Type]any{},
		untypedPools: map[int]untypedPool{},
		tags:         map[string]*TagSet{},
		groups:       map[string]*Group{},
		componentOps: map[int]componentOps{},
		scheduler:    newWorkerPool(),
		log:          logrus.NewEntry(logrus.StandardLogger()),
	}
}

// Close releases the World's worker goroutines. It must be called at
// most once, when the World is no longer in use.
func (w *World) Close() { w.scheduler.stop() }

// poolFor returns (creating if necessary) the typed pool for T,
// registering it under both the typed and type-erased maps.
func poolFor[T any](w *World) *ComponentPool[T] {
	rt := reflect.TypeFor[T]()
	w.mu.Lock()
	defer w.mu.Unlock()
	if p, ok := w.pools[rt]; ok {
		return p.(*ComponentPool[T])
	}
	p := newComponentPool[T]()
	w.pools[rt] = p
	w.untypedPools[p.Type().Index()] = p
	registerOps[T](w, p.Type())
	return p
}

func (w *World) enqueueDeferred(op deferredOp) {
	w.mu.Lock()
	w.deferred = append(w.deferred, op)
	w.mu.Unlock()
}

// CreateEntity allocates a new, live EntityId (§4.1). Entity creation
// is never deferred: it does not touch any component container.
func (w *World) CreateEntity() EntityId {
	id := w.entities.Create()
	w.mu.Lock()
	w.createdLog = append(w.createdLog, id)
	w.mu.Unlock()
	return id
}

// EntityExists reports whether id refers to a currently live entity.
func (w *World) EntityExists(id EntityId) bool {
	return w.entities.Exists(id)
}

// RemoveEntity destroys id and every component it owns (§4.1). If
// called while a stage is running, the removal is deferred until the
// tick's commit after PostUpdate.
func (w *World) RemoveEntity(id EntityId) {
	if w.deferring {
		w.enqueueDeferred(func(w *World) { w.removeEntityNow(id) })
		return
	}
	w.removeEntityNow(id)
}

// recreateEntity brings back a previously destroyed entity at its
// exact id, for undo's entity-removal reversal.
func (w *World) recreateEntity(id EntityId) {
	w.entities.CreateWithID(id)
}

// CreateEntityAt brings an entity back to life at an exact
// (index, generation) identity read from a saved scene (§6): ids
// recorded on disk must be reproduced exactly, not merely reassigned
// fresh indices, or saved tag/component ownership would no longer
// line up on load.
func (w *World) CreateEntityAt(id EntityId) {
	w.entities.CreateWithID(id)
}

// Each iterates every live entity in ascending index order, for
// enumeration by external tooling such as sceneio (§6).
func (w *World) Each(yield func(EntityId) bool) {
	w.entities.Each(yield)
}

func (w *World) removeEntityNow(id EntityId) {
	entries := w.entities.components(id)
	boxed := make([]removedComponent, 0, len(entries))
	for _, e := range entries {
		if ops, ok := w.componentOps[e.typ.Index()]; ok {
			if v, ok := ops.box(w, id); ok {
				boxed = append(boxed, removedComponent{id: id, typ: e.typ, value: v})
			}
		}
	}
	for _, e := range w.entities.Remove(id) {
		if pool, ok := w.untypedPools[e.typ.Index()]; ok {
			pool.removeUntyped(e.ref.page, e.ref.slot)
		}
	}
	for _, t := range w.tags {
		t.Remove(id)
	}
	w.mu.Lock()
	w.removedEntityLog = append(w.removedEntityLog, removedEntity{id: id})
	w.removedComponentLog = append(w.removedComponentLog, boxed...)
	w.mu.Unlock()
}

// AddComponent attaches a T to id, failing if id does not exist or
// already owns one (§4.1). While a stage is running, the attach is
// deferred and a null ref is returned immediately; the caller should
// not rely on the returned ref's validity in that case.
func AddComponent[T any](w *World, id EntityId, value T) (ComponentRef[T], error) {
	if !w.entities.Exists(id) {
		return ComponentRef[T]{}, ErrEntityNotFound
	}
	pool := poolFor[T](w)
	typ := pool.Type()
	if _, ok := w.entities.entryFor(id, typ); ok {
		return ComponentRef[T]{}, ErrDuplicateComponent
	}
	if w.deferring {
		w.enqueueDeferred(func(w *World) { AddComponent(w, id, value) })
		return ComponentRef[T]{}, nil
	}
	ref := pool.Add(id, value)
	if err := w.entities.addEntry(id, typ, ref.untypedComponentRef); err != nil {
		pool.Remove(ref)
		return ComponentRef[T]{}, err
	}
	return ref, nil
}

// RemoveComponent detaches id's T, if any. It is a no-op otherwise
// (§4.1). Deferred the same way as RemoveEntity when a stage is
// running.
func RemoveComponent[T any](w *World, id EntityId) {
	if w.deferring {
		w.enqueueDeferred(func(w *World) { RemoveComponent[T](w, id) })
		return
	}
	pool := poolFor[T](w)
	typ := pool.Type()
	if ops, ok := w.componentOps[typ.Index()]; ok {
		if v, ok := ops.box(w, id); ok {
			w.mu.Lock()
			w.removedComponentLog = append(w.removedComponentLog, removedComponent{id: id, typ: typ, value: v})
			w.mu.Unlock()
		}
	}
	ref, ok := w.entities.removeEntry(id, typ)
	if !ok {
		return
	}
	pool.Remove(ComponentRef[T]{ref})
}

// GetComponent returns id's T for read access, or (nil, false) if it
// has none (§4.1).
func GetComponent[T any](w *World, id EntityId) (*T, bool) {
	pool := poolFor[T](w)
	ref, ok := w.entities.entryFor(id, pool.Type())
	if !ok {
		return nil, false
	}
	return pool.Get(ComponentRef[T]{ref})
}

// GetMutComponent is like GetComponent but marks the slot mutated,
// feeding the undo system's change detection (§4.2).
func GetMutComponent[T any](w *World, id EntityId) (*T, bool) {
	pool := poolFor[T](w)
	ref, ok := w.entities.entryFor(id, pool.Type())
	if !ok {
		return nil, false
	}
	return pool.GetMut(ComponentRef[T]{ref})
}

// HasComponent reports whether id owns a T, without fetching it.
func HasComponent[T any](w *World, id EntityId) bool {
	pool := poolFor[T](w)
	_, ok := w.entities.entryFor(id, pool.Type())
	return ok
}

// ComponentTypeOf returns the ComponentType assigned to T, creating
// its pool if this is the first time T has been named.
func ComponentTypeOf[T any](w *World) ComponentType {
	return poolFor[T](w).Type()
}

// AddSystem registers sys to run during its declared stage, in
// registration order relative to other systems of the same stage
// (§4.2). Systems must be added before the first Tick.
func (w *World) AddSystem(sys System) {
	w.systems = append(w.systems, registeredSystem{sys: sys, reads: sys.Reads(), writes: sys.Writes()})
}

// Tick runs the four fixed stages in order — Tick, Update,
// TickSequential, PostUpdate — then commits every deferred structural
// change (§4.2). Within Tick/Update/PostUpdate, systems that do not
// conflict on component reads/writes run concurrently; TickSequential
// always runs single-threaded in registration order.
func (w *World) Tick() {
	w.runParallelStage(Tick)
	w.runParallelStage(Update)
	w.runSequentialStage()
	w.runParallelStage(PostUpdate)
	w.commit()
}

func (w *World) systemsIn(stage Stage) []registeredSystem {
	var out []registeredSystem
	for _, s := range w.systems {
		if s.sys.Stage() == stage {
			out = append(out, s)
		}
	}
	return out
}

func (w *World) runParallelStage(stage Stage) {
	systems := w.systemsIn(stage)
	if len(systems) == 0 {
		return
	}
	w.deferring = true
	for _, batch := range batchByConflict(systems) {
		batch := batch
		w.scheduler.runParallel(len(batch), func(i int) {
			batch[i].sys.Run(w)
		})
	}
	w.deferring = false
}

func (w *World) runSequentialStage() {
	systems := w.systemsIn(TickSequential)
	if len(systems) == 0 {
		return
	}
	w.deferring = true
	for _, s := range systems {
		s.sys.Run(w)
	}
	w.deferring = false
}

func (w *World) commit() {
	ops := w.deferred
	w.deferred = nil
	for _, op := range ops {
		op(w)
	}
}

// drainCreatedEntities returns and clears the entities created since
// the last drain, for the undo system's "recently_added" bookkeeping.
func (w *World) drainCreatedEntities() []EntityId {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := w.createdLog
	w.createdLog = nil
	return out
}

func (w *World) drainRemovedEntities() []removedEntity {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := w.removedEntityLog
	w.removedEntityLog = nil
	return out
}

func (w *World) drainRemovedComponents() []removedComponent {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := w.removedComponentLog
	w.removedComponentLog = nil
	return out
}

// mutatedComponents returns, for every registered component type, the
// entities whose value was written via GetMutComponent since the last
// call, then clears those types' mutated bits.
func (w *World) mutatedComponents() map[int][]EntityId {
	out := map[int][]EntityId{}
	for idx, pool := range w.untypedPools {
		ids := pool.mutatedEntityIDs()
		if len(ids) == 0 {
			continue
		}
		out[idx] = ids
		pool.clearMutatedUntyped()
	}
	return out
}
