package ecs

import "reflect"

// Property is a named snapshot of one exported field of a component,
// used by the undo system in place of per-type generated
// serialization code (§9: "the field list per component is a plain
// table of (name, offset, type_tag) records; reflection is data, not
// code generation").
type Property struct {
	Name  string
	Value any
}

// inspectProperties copies every exported field of v (a struct) into
// a Property list, mirroring GetterInspector's traversal.
func inspectProperties(v reflect.Value) []Property {
	t := v.Type()
	props := make([]Property, 0, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		props = append(props, Property{Name: f.Name, Value: v.Field(i).Interface()})
	}
	return props
}

// applyProperties writes each named property back into v's matching
// field. A property whose name no longer exists, or whose stored type
// no longer matches the field (schema drift), is logged and skipped
// rather than aborting the whole set (§4.2: SetterInspector failure
// policy).
func applyProperties(w *World, v reflect.Value, props []Property) {
	for _, p := range props {
		f := v.FieldByName(p.Name)
		if !f.IsValid() || !f.CanSet() {
			w.log.Warnf("undo: property %q no longer exists on component", p.Name)
			continue
		}
		pv := reflect.ValueOf(p.Value)
		if !pv.IsValid() || !pv.Type().AssignableTo(f.Type()) {
			w.log.Warnf("undo: property %q has an incompatible type", p.Name)
			continue
		}
		f.Set(pv)
	}
}

// propertiesEqual reports whether two same-shaped Property lists hold
// equal values, comparing positionally the way push_state drops
// before/after pairs that did not actually change.
func propertiesEqual(a, b []Property) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].Name != b[i].Name {
			return false
		}
		if !reflect.DeepEqual(a[i].Value, b[i].Value) {
			return false
		}
	}
	return true
}

// Properties returns T's exported fields as a Property list, for
// formats that store components as self-describing name/value pairs
// instead of generated per-type code (§6, §9).
func Properties[T any](w *World, id EntityId) ([]Property, bool) {
	v, ok := GetComponent[T](w, id)
	if !ok {
		return nil, false
	}
	return inspectProperties(reflect.ValueOf(v).Elem()), true
}

// ApplyProperties writes props into id's T by field name, the same
// way the undo system replays a pushed state (§4.2).
func ApplyProperties[T any](w *World, id EntityId, props []Property) {
	v, ok := GetMutComponent[T](w, id)
	if !ok {
		return
	}
	applyProperties(w, reflect.ValueOf(v).Elem(), props)
}

// componentOps is the type-erased vtable over AddComponent[T] /
// RemoveComponent[T] / GetComponent[T] built the first time a
// component type is named, so the undo system (and anything else
// working purely in terms of ComponentType) can add, remove, box and
// inspect components without itself being generic.
type componentOps struct {
	typ        ComponentType
	properties func(w *World, id EntityId) ([]Property, bool)
	apply      func(w *World, id EntityId, props []Property)
	box        func(w *World, id EntityId) (any, bool)
	restore    func(w *World, id EntityId, value any)
	remove     func(w *World, id EntityId)
}

func registerOps[T any](w *World, typ ComponentType) {
	w.componentOps[typ.Index()] = componentOps{
		typ: typ,
		properties: func(w *World, id EntityId) ([]Property, bool) {
			v, ok := GetComponent[T](w, id)
			if !ok {
				return nil, false
			}
			return inspectProperties(reflect.ValueOf(v).Elem()), true
		},
		apply: func(w *World, id EntityId, props []Property) {
			v, ok := GetMutComponent[T](w, id)
			if !ok {
				return
			}
			applyProperties(w, reflect.ValueOf(v).Elem(), props)
		},
		box: func(w *World, id EntityId) (any, bool) {
			v, ok := GetComponent[T](w, id)
			if !ok {
				return nil, false
			}
			return *v, true
		},
		restore: func(w *World, id EntityId, value any) {
			t, ok := value.(T)
			if !ok {
				return
			}
			if HasComponent[T](w, id) {
				RemoveComponent[T](w, id)
			}
			AddComponent(w, id, t)
		},
		remove: func(w *World, id EntityId) {
			RemoveComponent[T](w, id)
		},
	}
}
