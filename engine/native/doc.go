// Package native links the engine's C library through cgo and registers it
// as the "native" backend.
//
// The backend is compiled only with cgo enabled and the swisseph build tag:
//
//	CGO_CFLAGS=-I/path/to/swisseph CGO_LDFLAGS=-L/path/to/swisseph \
//	    go build -tags swisseph ./...
//
// Without the tag the package is empty, so importing it for its side effect
// is always safe.
//
// # Threading
//
// The C library keeps its configuration in process globals and is not thread
// safe. Only one handle may be live per process; engine.Context serializes
// every call made through it.
package native

// BackendName is the registry name of the cgo backend.
const BackendName = "native"
