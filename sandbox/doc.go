// Package sandbox loads, schedules, and contains mod instances.
//
// A Sandbox owns the engine and the gateway, keeps one Instance per
// loaded mod, and drives them from the host's tick loop. All guest
// execution happens inside Tick and Load; the package assumes a single
// ticking goroutine, while delivery entry points (server data, keyboard
// events) may be called from others.
//
// # Lifecycle
//
// Load validates the mod's manifest against the host contract version,
// instantiates the module, calls init-plugin, and asks once for the
// update frequency. A mod declaring no frequency updates every tick; a
// mod declaring f updates at most f times per second through a time
// accumulator, at most once per tick, with backlog dropped rather than
// queued.
//
// # Containment
//
// A trap or budget violation in any guest call disables that one
// instance and releases its runtime; every other instance and the host
// are unaffected. Faults are logged and reported through the optional
// fault handler.
package sandbox
