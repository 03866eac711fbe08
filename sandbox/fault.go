package sandbox

import (
	"time"

	"github.com/google/uuid"

	"github.com/blockpeak/mod-sandbox/errors"
)

// Fault describes one contained guest failure. The instance named by Mod
// has already been disabled when the handler runs.
type Fault struct {
	// Mod is the faulting instance's name.
	Mod string

	// InstanceID identifies which incarnation of the mod faulted.
	InstanceID uuid.UUID

	// Call is the guest export that was executing.
	Call string

	// Kind is the failure category, typically trap or budget_exceeded.
	Kind errors.Kind

	// Err is the underlying structured error.
	Err error

	// Time is when the fault was recorded.
	Time time.Time
}

// FaultHandler receives contained faults. It runs on the ticking
// goroutine; handlers must not call back into the Sandbox.
type FaultHandler func(Fault)
