package sceneio

import (
	"encoding/binary"
	"fmt"
	"io"
	"sort"

	"github.com/gan74/yave/linear"
)

// Key is one sample of an animation channel (§6).
type Key struct {
	Time     float32
	Position linear.V3
	Scale    linear.V3
	Rotation linear.Q
}

// Channel is a named sequence of keys, strictly ascending by time.
type Channel struct {
	Name string
	Keys []Key
}

// Animation is the decoded contents of an animation file (§6).
type Animation struct {
	Duration float32
	Channels []Channel
}

// SaveAnimation writes a to out. Channels are written in ascending
// name order regardless of a's order, matching the invariant
// LoadAnimation enforces on the way back in.
func SaveAnimation(a *Animation, out io.Writer) error {
	if err := writeHeader(out, typeAnimation, versionAnim); err != nil {
		return err
	}

	sorted := append([]Channel(nil), a.Channels...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Name < sorted[j].Name })

	if err := binary.Write(out, binary.LittleEndian, uint32(len(sorted))); err != nil {
		return err
	}
	if err := binary.Write(out, binary.LittleEndian, a.Duration); err != nil {
		return err
	}

	for _, ch := range sorted {
		if err := writeString(out, ch.Name); err != nil {
			return err
		}
		if err := binary.Write(out, binary.LittleEndian, uint32(len(ch.Keys))); err != nil {
			return err
		}
		for i, k := range ch.Keys {
			if i > 0 && !(k.Time > ch.Keys[i-1].Time) {
				return fmt.Errorf("%w: channel %q", ErrKeysNotAscending, ch.Name)
			}
			if err := writeKey(out, k); err != nil {
				return err
			}
		}
	}
	return nil
}

// LoadAnimation reads an Animation from in, rejecting a file whose
// channels are not sorted by name or whose keys are not strictly
// ascending by time (§6).
func LoadAnimation(in io.Reader) (*Animation, error) {
	if _, err := readHeader(in, typeAnimation); err != nil {
		return nil, err
	}

	var channelCount uint32
	if err := binary.Read(in, binary.LittleEndian, &channelCount); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTruncated, err)
	}
	var duration float32
	if err := binary.Read(in, binary.LittleEndian, &duration); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTruncated, err)
	}

	anim := &Animation{Duration: duration}
	prevName := ""
	for i := uint32(0); i < channelCount; i++ {
		name, err := readString(in)
		if err != nil {
			return nil, err
		}
		if i > 0 && name <= prevName {
			return nil, ErrChannelsNotSorted
		}
		prevName = name

		var keyCount uint32
		if err := binary.Read(in, binary.LittleEndian, &keyCount); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrTruncated, err)
		}
		ch := Channel{Name: name, Keys: make([]Key, keyCount)}
		for k := uint32(0); k < keyCount; k++ {
			key, err := readKey(in)
			if err != nil {
				return nil, err
			}
			if k > 0 && !(key.Time > ch.Keys[k-1].Time) {
				return nil, fmt.Errorf("%w: channel %q", ErrKeysNotAscending, name)
			}
			ch.Keys[k] = key
		}
		anim.Channels = append(anim.Channels, ch)
	}
	return anim, nil
}

func writeKey(w io.Writer, k Key) error {
	for _, v := range []any{k.Time, k.Position, k.Scale, k.Rotation.V, k.Rotation.R} {
		if err := binary.Write(w, binary.LittleEndian, v); err != nil {
			return err
		}
	}
	return nil
}

func readKey(r io.Reader) (Key, error) {
	var k Key
	fields := []any{&k.Time, &k.Position, &k.Scale, &k.Rotation.V, &k.Rotation.R}
	for _, f := range fields {
		if err := binary.Read(r, binary.LittleEndian, f); err != nil {
			return Key{}, fmt.Errorf("%w: %v", ErrTruncated, err)
		}
	}
	return k, nil
}
