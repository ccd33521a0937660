// Package ephemeris exposes a non-reentrant native ephemeris engine to Go
// callers through asynchronous request/response calls.
//
// The engine is a black box: it accepts typed numeric and string arguments,
// fills fixed-layout output buffers and returns a signed status code plus an
// optional error text. This module owns everything around it: sharing one
// engine handle across many goroutines, serializing access to the engine's
// global configuration, decoding positional buffers into named records and
// turning sentinel status codes into typed errors.
//
// # Architecture Overview
//
// The library is organized into several packages with distinct responsibilities:
//
//	ephemeris/           Root package: Op, Value, Request and Result records
//	├── bridge/          High-level facade: provisioning, lifecycle, typed calls
//	├── dispatch/        Validates requests, runs guarded calls, completes Tasks
//	├── engine/          Engine Context, Concurrency Guard, wazero backend
//	│   └── native/      cgo backend (build tag swisseph)
//	├── schema/          Static per-operation signatures and buffer layouts
//	├── marshal/         Pure decoding of output buffers into Result records
//	├── provision/       Materializes bundled data files into writable storage
//	├── errors/          Structured error taxonomy
//	├── config/          YAML configuration
//	├── metrics/         Prometheus collectors
//	├── logging/         zap construction and context loggers
//	├── enginetest/      Deterministic fake engine for tests
//	├── transport/       HTTP host adapter
//	└── cmd/ephem/       CLI: ops, call, serve, repl
//
// # Quick Start
//
//	b, err := bridge.New(ctx, bridge.Options{
//	    Assets: provision.NewDir(os.DirFS("ephe"), dataDir),
//	    Loader: engine.NewWazeroLoader(wasmBytes, engine.WazeroConfig{}),
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer b.Close(ctx)
//
//	jd, err := b.Julday(ctx, 2023, 1, 1, 12.0, ephemeris.GregorianCalendar)
//	fmt.Println(jd) // 2459946
//
// Every call is asynchronous underneath; the typed methods wait on the Task
// returned by Submit. Use Submit directly to fan out many requests.
//
// # Thread Safety
//
// Bridge, Dispatcher and Context are safe for concurrent use. Exactly one
// native call runs at a time; configuration calls (set_topo, set_sid_mode)
// are either fully visible to a later call or not at all. The engine's global
// configuration is shared: concurrent callers that need different observer
// locations or sidereal modes must coordinate among themselves.
package ephemeris
