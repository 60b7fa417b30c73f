// Package debugflag exposes the debug/release build switch used to
// decide whether a logic error panics (debug) or aborts the process
// (release), per the fatal-error policy of the packages that import it.
package debugflag

// Debug reports whether the binary was built with the debug tag.
// The generic build (see build_release.go) treats logic errors as
// fatal; the debug build (see build_debug.go) panics instead, so
// that tests can recover and assert on the failure.
var Debug = debug
