// Package sceneio reads and writes the framed binary encoding used to
// persist a World's entities, components and tags, and the channel
// animation format that drives them.
package sceneio

import "errors"

const errPrefix = "sceneio: "

func newErr(reason string) error { return errors.New(errPrefix + reason) }

// ErrBadMagic is returned when a stream's header does not start with
// the yave file magic.
var ErrBadMagic = newErr("bad magic")

// ErrBadType is returned when a stream's header type field does not
// match the format the reader was asked for.
var ErrBadType = newErr("unexpected file type")

// ErrTruncated wraps an underlying read error that happened mid-record,
// distinguishing "ran out of bytes" from a well-formed empty stream.
var ErrTruncated = newErr("truncated stream")

// ErrUnknownPropertyTag is returned when a component payload names a
// type tag the reader does not recognize.
var ErrUnknownPropertyTag = newErr("unknown property type tag")

// ErrChannelsNotSorted is returned when an animation file's channels
// are not in ascending name order.
var ErrChannelsNotSorted = newErr("channels not sorted by name")

// ErrKeysNotAscending is returned when a channel's keys are not
// strictly ascending by time.
var ErrKeysNotAscending = newErr("keys not strictly ascending by time")
