// Package framegraph builds a DAG of render/compute/transfer/external
// passes over virtual resource handles, linearizes it, and synthesizes
// the barriers needed to record a single command stream per frame.
package framegraph

import "errors"

// ErrUninitializedRead is returned by compile when a pass reads a
// handle that was never written (§4.4).
var ErrUninitializedRead = errors.New("framegraph: uninitialized read")

// ErrCyclicGraph is returned by compile when the pass dependency graph
// contains a cycle.
var ErrCyclicGraph = errors.New("framegraph: cyclic graph")

// ErrTypeMismatch is returned when a handle is read back as a type
// other than the one it was created with.
var ErrTypeMismatch = errors.New("framegraph: resource type mismatch")

// ErrMismatchedAttachmentSize is returned when a graphics pass's
// attachments do not share a common width/height.
var ErrMismatchedAttachmentSize = errors.New("framegraph: mismatched attachment size")
