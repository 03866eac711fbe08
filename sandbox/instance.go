package sandbox

import (
	"github.com/google/uuid"

	"github.com/blockpeak/mod-sandbox/bridge"
	"github.com/blockpeak/mod-sandbox/engine"
)

// State is an instance's lifecycle state.
type State int

const (
	// StateUninitialized covers the window between instantiation and a
	// successful init-plugin call.
	StateUninitialized State = iota

	// StateReady instances are scheduled every tick.
	StateReady

	// StateDisabled instances are skipped. Operator-disabled instances
	// can be re-enabled; faulted ones cannot.
	StateDisabled
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateReady:
		return "ready"
	case StateDisabled:
		return "disabled"
	default:
		return "unknown"
	}
}

// Instance is one loaded mod. All fields are guarded by the owning
// Sandbox's lock.
type Instance struct {
	id       uuid.UUID
	manifest Manifest
	guest    *engine.GuestInstance
	env      *bridge.Env

	state   State
	faulted bool

	// Update scheduling. A mod declaring a frequency runs through the
	// accumulator; the rest run every tick.
	hasFreq     bool
	period      float32
	accumulator float32
}

// ID identifies this incarnation of the mod. Reloading produces a new ID.
func (i *Instance) ID() uuid.UUID {
	return i.id
}

// Name returns the mod's manifest name.
func (i *Instance) Name() string {
	return i.manifest.Name
}

// Manifest returns the mod's metadata.
func (i *Instance) Manifest() Manifest {
	return i.manifest
}

// State returns the instance's lifecycle state at the last tick
// boundary.
func (i *Instance) State() State {
	return i.state
}

// Faulted reports whether the instance was disabled by a trap or budget
// violation.
func (i *Instance) Faulted() bool {
	return i.faulted
}

// schedule decides whether the instance updates this tick, given the
// host delta in seconds, and returns the delta the guest observes.
//
// The accumulator fires at most once per tick; anything accumulated
// beyond one period is dropped so a slow tick cannot queue a burst of
// catch-up updates.
func (i *Instance) schedule(delta float32) (run bool, observed float32) {
	if !i.hasFreq {
		return true, delta
	}

	i.accumulator += delta
	if i.accumulator < i.period {
		return false, 0
	}
	i.accumulator -= i.period
	if i.accumulator >= i.period {
		i.accumulator = 0
	}

	observed = i.period
	if delta < observed {
		observed = delta
	}
	return true, observed
}
