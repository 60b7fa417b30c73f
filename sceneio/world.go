package sceneio

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"sort"

	"github.com/gan74/yave/ecs"
)

// entityKey packs an EntityId into the single u64 the wire format
// uses for entity and tag-member references: index in the high
// 32 bits, generation in the low 32, so a decoded id round-trips
// exactly including its generation (stale ids must stay stale).
func entityKey(id ecs.EntityId) uint64 {
	return uint64(id.Index)<<32 | uint64(id.Generation)
}

func entityFromKey(k uint64) ecs.EntityId {
	return ecs.EntityId{Index: uint32(k >> 32), Generation: uint32(k)}
}

// SaveWorld writes every live entity, every component known to c, and
// every tag, to out (§6). Container and tag order is sorted by name
// so two saves of the same world produce byte-identical output.
//
// Entity hierarchy (the parent_id field the wire format reserves) is
// not modeled by ecs.World itself; parent_id is always written as 0.
// A host that needs a scene graph layers it on top via its own
// component, registered with c like any other.
func SaveWorld(w *ecs.World, c *Codec, out io.Writer) error {
	if err := writeHeader(out, typeWorld, versionWorld); err != nil {
		return err
	}

	var ids []ecs.EntityId
	w.Each(func(id ecs.EntityId) bool {
		ids = append(ids, id)
		return true
	})
	if err := binary.Write(out, binary.LittleEndian, uint64(len(ids))); err != nil {
		return err
	}
	for _, id := range ids {
		if err := binary.Write(out, binary.LittleEndian, entityKey(id)); err != nil {
			return err
		}
		if err := binary.Write(out, binary.LittleEndian, uint64(0)); err != nil { // parent_id
			return err
		}
	}

	names := make([]string, 0, len(c.byName))
	for name := range c.byName {
		names = append(names, name)
	}
	sort.Strings(names)

	if err := binary.Write(out, binary.LittleEndian, uint64(len(names))); err != nil {
		return err
	}
	for _, name := range names {
		tc := c.byName[name]
		owners := tc.entities(w)
		sort.Slice(owners, func(i, j int) bool { return owners[i].Index < owners[j].Index })

		if err := writeString(out, name); err != nil {
			return err
		}
		if err := binary.Write(out, binary.LittleEndian, uint64(len(owners))); err != nil {
			return err
		}
		for _, id := range owners {
			props, ok := tc.properties(w, id)
			if !ok {
				continue
			}
			var payload bytes.Buffer
			if err := binary.Write(&payload, binary.LittleEndian, uint32(len(props))); err != nil {
				return err
			}
			for _, p := range props {
				if err := writeProperty(&payload, p); err != nil {
					return err
				}
			}
			if err := binary.Write(out, binary.LittleEndian, entityKey(id)); err != nil {
				return err
			}
			if err := binary.Write(out, binary.LittleEndian, uint32(payload.Len())); err != nil {
				return err
			}
			if _, err := out.Write(payload.Bytes()); err != nil {
				return err
			}
		}
	}

	tagNames := w.Tags()
	sort.Strings(tagNames)
	if err := binary.Write(out, binary.LittleEndian, uint64(len(tagNames))); err != nil {
		return err
	}
	for _, name := range tagNames {
		members := w.Tag(name).Members(w)
		sort.Slice(members, func(i, j int) bool { return members[i].Index < members[j].Index })

		if err := writeString(out, name); err != nil {
			return err
		}
		if err := binary.Write(out, binary.LittleEndian, uint64(len(members))); err != nil {
			return err
		}
		for _, id := range members {
			if err := binary.Write(out, binary.LittleEndian, entityKey(id)); err != nil {
				return err
			}
		}
	}

	return nil
}

// LoadWorld populates w from a stream written by SaveWorld. Entities
// are recreated at their exact saved identity. A component container
// whose type name is not registered in c is skipped wholesale: this
// is the forward-compatibility path of §6, not an error.
func LoadWorld(w *ecs.World, c *Codec, in io.Reader) error {
	if _, err := readHeader(in, typeWorld); err != nil {
		return err
	}

	var entityCount uint64
	if err := binary.Read(in, binary.LittleEndian, &entityCount); err != nil {
		return fmt.Errorf("%w: %v", ErrTruncated, err)
	}
	for i := uint64(0); i < entityCount; i++ {
		var key, parent uint64
		if err := binary.Read(in, binary.LittleEndian, &key); err != nil {
			return fmt.Errorf("%w: %v", ErrTruncated, err)
		}
		if err := binary.Read(in, binary.LittleEndian, &parent); err != nil {
			return fmt.Errorf("%w: %v", ErrTruncated, err)
		}
		w.CreateEntityAt(entityFromKey(key))
	}

	var containerCount uint64
	if err := binary.Read(in, binary.LittleEndian, &containerCount); err != nil {
		return fmt.Errorf("%w: %v", ErrTruncated, err)
	}
	for i := uint64(0); i < containerCount; i++ {
		name, err := readString(in)
		if err != nil {
			return err
		}
		var compCount uint64
		if err := binary.Read(in, binary.LittleEndian, &compCount); err != nil {
			return fmt.Errorf("%w: %v", ErrTruncated, err)
		}
		tc, known := c.byName[name]
		for j := uint64(0); j < compCount; j++ {
			var ownerKey uint64
			if err := binary.Read(in, binary.LittleEndian, &ownerKey); err != nil {
				return fmt.Errorf("%w: %v", ErrTruncated, err)
			}
			var payloadLen uint32
			if err := binary.Read(in, binary.LittleEndian, &payloadLen); err != nil {
				return fmt.Errorf("%w: %v", ErrTruncated, err)
			}
			payload := make([]byte, payloadLen)
			if _, err := io.ReadFull(in, payload); err != nil {
				return fmt.Errorf("%w: %v", ErrTruncated, err)
			}
			if !known {
				continue
			}
			id := entityFromKey(ownerKey)
			if !w.EntityExists(id) {
				continue
			}
			props, err := decodeProperties(payload)
			if err != nil {
				return err
			}
			if err := tc.add(w, id); err != nil && err != ecs.ErrDuplicateComponent {
				return err
			}
			tc.apply(w, id, props)
		}
	}

	var tagCount uint64
	if err := binary.Read(in, binary.LittleEndian, &tagCount); err != nil {
		return fmt.Errorf("%w: %v", ErrTruncated, err)
	}
	for i := uint64(0); i < tagCount; i++ {
		name, err := readString(in)
		if err != nil {
			return err
		}
		var memberCount uint64
		if err := binary.Read(in, binary.LittleEndian, &memberCount); err != nil {
			return fmt.Errorf("%w: %v", ErrTruncated, err)
		}
		tagSet := w.Tag(name)
		for j := uint64(0); j < memberCount; j++ {
			var key uint64
			if err := binary.Read(in, binary.LittleEndian, &key); err != nil {
				return fmt.Errorf("%w: %v", ErrTruncated, err)
			}
			id := entityFromKey(key)
			if w.EntityExists(id) {
				tagSet.Add(id)
			}
		}
	}

	return nil
}
