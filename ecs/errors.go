package ecs

import (
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/gan74/yave/internal/debugflag"
)

const errPrefix = "ecs: "

func newErr(reason string) error { return errors.New(errPrefix + reason) }

// ErrDuplicateComponent is returned by AddComponent when the entity
// already owns a component of the requested type.
var ErrDuplicateComponent = newErr("entity already has a component of this type")

// ErrEntityNotFound is returned by operations that require an
// existing, live EntityId.
var ErrEntityNotFound = newErr("entity does not exist")

// fatal reports a logic/programmer error (§7): duplicate component,
// pool/container mismatch, and similar conditions that indicate a bug
// in the caller rather than recoverable state. In a debug build it
// panics so tests can recover and assert on it; in a release build it
// logs at Fatal level, which terminates the process.
func fatal(log *logrus.Entry, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	if debugflag.Debug {
		panic(errPrefix + msg)
	}
	entry := log
	if entry == nil {
		entry = logrus.NewEntry(logrus.StandardLogger())
	}
	entry.Fatal(errPrefix + msg)
}
