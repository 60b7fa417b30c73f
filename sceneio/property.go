package sceneio

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/gan74/yave/ecs"
	"github.com/gan74/yave/linear"
)

// propTag identifies the on-disk shape of one property value. A
// reader that does not recognize a tag still knows the byte length of
// the value that follows (every property is length-prefixed) and can
// skip it, which is how a component's payload stays forward-
// compatible with fields a future version adds (§6).
type propTag uint8

const (
	tagBool propTag = iota + 1
	tagInt32
	tagInt64
	tagUint32
	tagUint64
	tagFloat32
	tagFloat64
	tagString
	tagVec3
	tagQuat
)

func writeProperty(w io.Writer, p ecs.Property) error {
	if err := writeString(w, p.Name); err != nil {
		return err
	}

	var tag propTag
	var buf bytes.Buffer
	switch v := p.Value.(type) {
	case bool:
		tag = tagBool
		b := byte(0)
		if v {
			b = 1
		}
		buf.WriteByte(b)
	case int32:
		tag = tagInt32
		binary.Write(&buf, binary.LittleEndian, v)
	case int64:
		tag = tagInt64
		binary.Write(&buf, binary.LittleEndian, v)
	case uint32:
		tag = tagUint32
		binary.Write(&buf, binary.LittleEndian, v)
	case uint64:
		tag = tagUint64
		binary.Write(&buf, binary.LittleEndian, v)
	case float32:
		tag = tagFloat32
		binary.Write(&buf, binary.LittleEndian, v)
	case float64:
		tag = tagFloat64
		binary.Write(&buf, binary.LittleEndian, v)
	case string:
		tag = tagString
		buf.WriteString(v)
	case linear.V3:
		tag = tagVec3
		binary.Write(&buf, binary.LittleEndian, v)
	case linear.Q:
		tag = tagQuat
		binary.Write(&buf, binary.LittleEndian, v.V)
		binary.Write(&buf, binary.LittleEndian, v.R)
	default:
		return fmt.Errorf("%w: %T", ErrUnknownPropertyTag, p.Value)
	}

	if _, err := w.Write([]byte{byte(tag)}); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, uint32(buf.Len())); err != nil {
		return err
	}
	_, err := w.Write(buf.Bytes())
	return err
}

// readProperty decodes one property. ok is false, with a nil error,
// when the tag byte is not one this reader recognizes: the value has
// already been consumed via its length prefix, so the stream stays
// aligned and the caller simply omits the property.
func readProperty(r io.Reader) (p ecs.Property, ok bool, err error) {
	name, err := readString(r)
	if err != nil {
		return ecs.Property{}, false, err
	}
	var tagByte [1]byte
	if _, err := io.ReadFull(r, tagByte[:]); err != nil {
		return ecs.Property{}, false, fmt.Errorf("%w: %v", ErrTruncated, err)
	}
	var n uint32
	if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
		return ecs.Property{}, false, fmt.Errorf("%w: %v", ErrTruncated, err)
	}
	value := make([]byte, n)
	if _, err := io.ReadFull(r, value); err != nil {
		return ecs.Property{}, false, fmt.Errorf("%w: %v", ErrTruncated, err)
	}
	br := bytes.NewReader(value)

	switch propTag(tagByte[0]) {
	case tagBool:
		b, _ := br.ReadByte()
		return ecs.Property{Name: name, Value: b != 0}, true, nil
	case tagInt32:
		var v int32
		binary.Read(br, binary.LittleEndian, &v)
		return ecs.Property{Name: name, Value: v}, true, nil
	case tagInt64:
		var v int64
		binary.Read(br, binary.LittleEndian, &v)
		return ecs.Property{Name: name, Value: v}, true, nil
	case tagUint32:
		var v uint32
		binary.Read(br, binary.LittleEndian, &v)
		return ecs.Property{Name: name, Value: v}, true, nil
	case tagUint64:
		var v uint64
		binary.Read(br, binary.LittleEndian, &v)
		return ecs.Property{Name: name, Value: v}, true, nil
	case tagFloat32:
		var v float32
		binary.Read(br, binary.LittleEndian, &v)
		return ecs.Property{Name: name, Value: v}, true, nil
	case tagFloat64:
		var v float64
		binary.Read(br, binary.LittleEndian, &v)
		return ecs.Property{Name: name, Value: v}, true, nil
	case tagString:
		return ecs.Property{Name: name, Value: string(value)}, true, nil
	case tagVec3:
		var v linear.V3
		binary.Read(br, binary.LittleEndian, &v)
		return ecs.Property{Name: name, Value: v}, true, nil
	case tagQuat:
		var v linear.Q
		binary.Read(br, binary.LittleEndian, &v.V)
		binary.Read(br, binary.LittleEndian, &v.R)
		return ecs.Property{Name: name, Value: v}, true, nil
	default:
		return ecs.Property{}, false, nil
	}
}

func decodeProperties(payload []byte) ([]ecs.Property, error) {
	r := bytes.NewReader(payload)
	var count uint32
	if err := binary.Read(r, binary.LittleEndian, &count); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTruncated, err)
	}
	props := make([]ecs.Property, 0, count)
	for i := uint32(0); i < count; i++ {
		p, ok, err := readProperty(r)
		if err != nil {
			return nil, err
		}
		if ok {
			props = append(props, p)
		}
	}
	return props, nil
}
