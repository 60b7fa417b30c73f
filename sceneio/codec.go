package sceneio

import "github.com/gan74/yave/ecs"

// typeCodec is the per-component-type capability record a Codec keeps
// under its on-disk type name: box/restore/enumerate, expressed as a
// small vtable rather than a generic interface so Codec itself can
// stay non-generic while each entry closes over the concrete T it was
// registered with (§9: "explicit capability record... kept behind a
// small interface").
type typeCodec struct {
	properties func(w *ecs.World, id ecs.EntityId) ([]ecs.Property, bool)
	apply      func(w *ecs.World, id ecs.EntityId, props []ecs.Property)
	entities   func(w *ecs.World) []ecs.EntityId
	add        func(w *ecs.World, id ecs.EntityId) error
}

// Codec names the component types a scene file may contain. The host
// registers one entry per Go component type before calling SaveWorld
// or LoadWorld; a container tag the codec was never told about is
// skipped on load rather than rejected (§6: unknown data is forward-
// compatible, not an error).
type Codec struct {
	byName map[string]*typeCodec
}

// NewCodec creates an empty Codec.
func NewCodec() *Codec {
	return &Codec{byName: map[string]*typeCodec{}}
}

// RegisterComponent makes T readable and writable under name, which
// becomes the on-disk container tag (§6: "container := type_name_len
// type_name components") and must stay stable across versions of the
// host program independently of Go's own reflect.Type name.
func RegisterComponent[T any](c *Codec, name string) {
	c.byName[name] = &typeCodec{
		properties: func(w *ecs.World, id ecs.EntityId) ([]ecs.Property, bool) {
			return ecs.Properties[T](w, id)
		},
		apply: func(w *ecs.World, id ecs.EntityId, props []ecs.Property) {
			ecs.ApplyProperties[T](w, id, props)
		},
		entities: func(w *ecs.World) []ecs.EntityId {
			var ids []ecs.EntityId
			for id := range ecs.Query1[T](w) {
				ids = append(ids, id)
			}
			return ids
		},
		add: func(w *ecs.World, id ecs.EntityId) error {
			var zero T
			_, err := ecs.AddComponent(w, id, zero)
			return err
		},
	}
}
