package engine

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"github.com/tetratelabs/wazero/sys"

	modsandbox "github.com/blockpeak/mod-sandbox"
	apipkg "github.com/blockpeak/mod-sandbox/api"
	"github.com/blockpeak/mod-sandbox/errors"
)

// GuestInstance is one isolated, loaded copy of a mod module. It is NOT
// thread-safe: the sandbox's single-threaded cooperative schedule is the
// only caller.
type GuestInstance struct {
	name        string
	runtime     wazero.Runtime
	module      api.Module
	memory      *guestMemory
	initFn      api.Function
	freqFn      api.Function
	updateFn    api.Function
	serverFn    api.Function
	allocFn     api.Function
	stack       []uint64
	callTimeout time.Duration
	dead        bool
}

// Name returns the mod name the instance was loaded under.
func (g *GuestInstance) Name() string {
	return g.name
}

// Memory exposes the instance's linear memory for copy-in/copy-out access.
func (g *GuestInstance) Memory() modsandbox.Memory {
	return g.memory
}

// CallInitPlugin invokes the guest's init-plugin export.
func (g *GuestInstance) CallInitPlugin(ctx context.Context) error {
	return g.callVoid(ctx, apipkg.FuncInitPlugin, g.initFn)
}

// CallUpdate invokes the guest's update export.
func (g *GuestInstance) CallUpdate(ctx context.Context) error {
	return g.callVoid(ctx, apipkg.FuncUpdate, g.updateFn)
}

// CallSetUpdateFrequency invokes set-update-frequency. The bool reports
// whether the guest declared a custom frequency; false means "run every
// tick".
func (g *GuestInstance) CallSetUpdateFrequency(ctx context.Context) (float32, bool, error) {
	if g.dead {
		return 0, false, errors.Disabled(g.name)
	}

	ctx, cancel := context.WithTimeout(ctx, g.callTimeout)
	defer cancel()

	g.stack[0] = 0
	g.stack[1] = 0
	if err := g.freqFn.CallWithStack(ctx, g.stack[:2]); err != nil {
		return 0, false, g.fault(apipkg.FuncSetUpdateFrequency, err)
	}

	if uint32(g.stack[0]) == 0 {
		return 0, false, nil
	}
	return api.DecodeF32(g.stack[1]), true, nil
}

// CallHandleServerData copies data into guest memory via mod-alloc and
// invokes handle-server-data.
func (g *GuestInstance) CallHandleServerData(ctx context.Context, data []byte) error {
	if g.dead {
		return errors.Disabled(g.name)
	}

	ctx, cancel := context.WithTimeout(ctx, g.callTimeout)
	defer cancel()

	var ptr uint32
	if len(data) > 0 {
		var err error
		ptr, err = g.alloc(ctx, uint32(len(data)), 1)
		if err != nil {
			return err
		}
		if err := g.memory.Write(ptr, data); err != nil {
			return errors.Wrap(errors.PhaseMarshal, errors.KindOutOfBounds, err, "write server data")
		}
	}

	g.stack[0] = uint64(ptr)
	g.stack[1] = uint64(uint32(len(data)))
	if err := g.serverFn.CallWithStack(ctx, g.stack[:2]); err != nil {
		return g.fault(apipkg.FuncHandleServerData, err)
	}
	return nil
}

// Alloc reserves size bytes in the guest's linear memory through the
// contract's mod-alloc export, implementing modsandbox.Allocator.
func (g *GuestInstance) Alloc(size, align uint32) (uint32, error) {
	ctx, cancel := context.WithTimeout(context.Background(), g.callTimeout)
	defer cancel()
	return g.alloc(ctx, size, align)
}

func (g *GuestInstance) alloc(ctx context.Context, size, align uint32) (uint32, error) {
	g.stack[0] = uint64(size)
	g.stack[1] = uint64(align)
	if err := g.allocFn.CallWithStack(ctx, g.stack[:2]); err != nil {
		return 0, g.fault(apipkg.FuncModAlloc, err)
	}
	ptr := uint32(g.stack[0])
	if ptr == 0 {
		return 0, errors.AllocationFailed(size, align, nil)
	}
	return ptr, nil
}

// Close releases the instance's runtime and everything in it. Safe to call
// at any time, including after a fault, and idempotent.
func (g *GuestInstance) Close(ctx context.Context) error {
	if g.runtime == nil {
		return nil
	}
	rt := g.runtime
	g.runtime = nil
	g.module = nil
	g.dead = true
	return rt.Close(ctx)
}

func (g *GuestInstance) callVoid(ctx context.Context, name string, fn api.Function) error {
	if g.dead {
		return errors.Disabled(g.name)
	}

	ctx, cancel := context.WithTimeout(ctx, g.callTimeout)
	defer cancel()

	if err := fn.CallWithStack(ctx, nil); err != nil {
		return g.fault(name, err)
	}
	return nil
}

// fault converts a wazero call error into a structured fault and marks the
// instance dead: after a trap or budget kill the runtime state is
// unrecoverable.
func (g *GuestInstance) fault(call string, err error) *errors.Error {
	g.dead = true

	var exitErr *sys.ExitError
	if stderrors.As(err, &exitErr) {
		switch exitErr.ExitCode() {
		case sys.ExitCodeDeadlineExceeded:
			return errors.Budget(call, err)
		case sys.ExitCodeContextCanceled:
			return errors.Budget(call, err)
		}
	}
	if stderrors.Is(err, context.DeadlineExceeded) {
		return errors.Budget(call, err)
	}
	return errors.Trap(call, err)
}
