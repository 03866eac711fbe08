// Package modsandbox provides the WebAssembly mod sandbox for the Blockpeak
// voxel client.
//
// Third-party mods are independently compiled WASM modules that extend the
// client's simulation and UI behavior. They never touch host memory: every
// value crossing the trust boundary is plain data, copied in and out of the
// guest's linear memory through a fixed, versioned contract.
//
// # Architecture Overview
//
// The library is organized into several packages with distinct
// responsibilities:
//
//	modsandbox/     Root package with core Memory and Allocator interfaces
//	├── api/        The versioned boundary contract: records, layouts, signatures
//	├── engine/     Low-level wazero integration: one isolated runtime per mod
//	├── bridge/     Host function implementations and record marshaling
//	├── gateway/    Read-only, bounds-checked world/block/model accessors
//	├── sandbox/    Instance lifecycle, per-tick scheduling, fault containment
//	├── feed/       Server-data channel delivering per-mod payloads
//	└── errors/     Structured error types for diagnostics
//
// # Quick Start
//
// Load a mod and drive it:
//
//	sb, err := sandbox.New(ctx, &sandbox.Config{Gateway: gw})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer sb.Close(ctx)
//
//	if _, err := sb.Load(ctx, manifest, wasmBytes); err != nil {
//	    log.Fatal(err)
//	}
//
//	for range ticker.C {
//	    sb.Tick(ctx, dt)
//	}
//
// # Isolation Model
//
// Each loaded mod gets its own wazero runtime: a fresh linear memory and a
// fresh table of host function bindings. Instances loaded from the same
// module bytes are fully independent. A trap or budget violation in one
// instance disables that instance only; the host process and every other
// instance continue unaffected.
//
// # Scheduling Model
//
// Single-threaded and cooperative. Guest code runs only synchronously inside
// a host-initiated call, and the host drives all instances in load order once
// per tick. There is no guest-visible concurrency and no mid-call
// cancellation; a call completes, traps, or exceeds its time budget and is
// treated as a trap.
package modsandbox
