// Package engine provides the low-level WebAssembly substrate of the mod
// sandbox.
//
// This package wraps wazero to give every mod its own isolated execution
// environment while keeping module compilation shared and cheap.
//
// # Architecture
//
// The engine package provides two main types:
//
//	Engine        - Shared compilation cache and per-call resource budgets
//	GuestInstance - One isolated, loaded instance of a mod module
//
// # Instantiation Flow
//
//  1. Engine.Load() creates a fresh wazero runtime for the instance
//  2. The module is compiled (cache-backed) and validated against the
//     contract's required exports and flat signatures
//  3. The caller's HostBinder instantiates the host import module into the
//     instance's runtime, so import bindings are scoped to this instance only
//  4. The guest module is instantiated; its start function is NOT run (the
//     contract's init-plugin is the only initialization entry point)
//
// # Isolation
//
// One wazero runtime per instance means one linear memory, one function
// table, and one set of host bindings per instance. Two instances loaded
// from the same bytes share nothing but the immutable compilation cache.
//
// # Fault Conversion
//
// Every guest call runs under a deadline. The runtime is configured with
// WithCloseOnContextDone, so a guest that loops forever is torn down when
// the budget expires. Call errors come back as structured errors: budget
// violations as KindBudget, everything else abnormal as KindTrap. After
// either, the instance is dead and must be unloaded.
package engine
