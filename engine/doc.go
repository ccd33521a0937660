// Package engine owns the native ephemeris engine.
//
// The engine keeps process-global state (data path, observer location,
// sidereal mode, open file handles) and is not reentrant. This package turns
// it into something a concurrent program can share safely.
//
// # Architecture
//
//	Context  - exactly-once initialization, guarded calls, idempotent teardown
//	Guard    - the single critical section around every native entry
//	Loader   - native setup for one backend; returns a Handle
//	Handle   - a live engine; Invoke runs one prepared Call
//
// # Backends
//
// Backends register a Factory under a name and are built with NewLoader:
//
//	wasm    - a WebAssembly build of the engine hosted in wazero (default)
//	native  - the C library through cgo (build tags: cgo swisseph)
//
// The wasm backend mounts the data directory read-only at /ephe inside the
// guest and calls swe_set_ephe_path("/ephe") once after instantiation. Each
// call is laid out in one scratch allocation obtained from the guest's
// malloc; inputs are written, the entry point is called and outputs are read
// back before the allocation is freed.
//
// # Lifecycle
//
//	idle --Initialize/Ensure ok--> ready --Teardown--> closed
//	  \--setup fails--> failed --Initialize--> ready
//
// Lazy initialization (Ensure) never retries a failed setup and never revives
// a torn-down context. Initialize does both.
//
// # Thread Safety
//
// Context is safe for concurrent use. Handle implementations are not; the
// Context serializes every Handle method through its Guard.
package engine
