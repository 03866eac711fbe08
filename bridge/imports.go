package bridge

import (
	"context"

	"github.com/tetratelabs/wazero"
	wazeroapi "github.com/tetratelabs/wazero/api"
	"go.uber.org/zap"

	modsandbox "github.com/blockpeak/mod-sandbox"
	"github.com/blockpeak/mod-sandbox/api"
	"github.com/blockpeak/mod-sandbox/engine"
	"github.com/blockpeak/mod-sandbox/errors"
)

// HostModule binds the contract's host imports for one guest instance.
// It implements engine.HostBinder; every import is a closure over the
// instance's Env.
type HostModule struct {
	env *Env
}

// NewHostModule builds the host module for env's instance.
func NewHostModule(env *Env) *HostModule {
	return &HostModule{env: env}
}

// BindHost registers every contract import on rt under the contract
// namespace. The signatures come from the contract table, so a table
// entry without an implementation here fails binding instead of leaving
// a dangling import.
func (h *HostModule) BindHost(ctx context.Context, rt wazero.Runtime) error {
	impls := map[string]wazeroapi.GoModuleFunction{
		api.FuncLog:                wazeroapi.GoModuleFunc(h.log),
		api.FuncDeltaTime:          wazeroapi.GoModuleFunc(h.deltaTime),
		api.FuncGetPlayerTransform: h.getTransform((*Env).playerTransform),
		api.FuncSetPlayerTransform: h.setTransform("player", (*Env).setPlayerTransform),
		api.FuncGetCameraTransform: h.getTransform((*Env).cameraTransform),
		api.FuncSetCameraTransform: h.setTransform("camera", (*Env).setCameraTransform),
		api.FuncKeyboardInput:      wazeroapi.GoModuleFunc(h.keyboardInput),
		api.FuncGetBlock:           wazeroapi.GoModuleFunc(h.getBlock),
		api.FuncGetBlockFriction:   wazeroapi.GoModuleFunc(h.getBlockFriction),
		api.FuncGetBlockName:       wazeroapi.GoModuleFunc(h.getBlockName),
		api.FuncGetBlockAABB:       wazeroapi.GoModuleFunc(h.getBlockAABB),
		api.FuncGetModels:          wazeroapi.GoModuleFunc(h.getModels),
		api.FuncGetModelAABB:       wazeroapi.GoModuleFunc(h.getModelAABB),
	}

	builder := rt.NewHostModuleBuilder(api.HostNamespace)
	for _, sig := range api.HostImports {
		impl, ok := impls[sig.Name]
		if !ok {
			return errors.Registration(sig.Name, nil)
		}
		builder = builder.NewFunctionBuilder().
			WithGoModuleFunction(impl, toValueTypes(sig.Params), toValueTypes(sig.Results)).
			Export(sig.Name)
	}

	if _, err := builder.Instantiate(ctx); err != nil {
		return errors.Registration(api.HostNamespace, err)
	}
	return nil
}

func toValueTypes(types []api.CoreValType) []wazeroapi.ValueType {
	if len(types) == 0 {
		return nil
	}
	out := make([]wazeroapi.ValueType, len(types))
	for i, t := range types {
		switch t {
		case api.CoreI32:
			out[i] = wazeroapi.ValueTypeI32
		case api.CoreI64:
			out[i] = wazeroapi.ValueTypeI64
		case api.CoreF32:
			out[i] = wazeroapi.ValueTypeF32
		case api.CoreF64:
			out[i] = wazeroapi.ValueTypeF64
		}
	}
	return out
}

// must aborts the guest call. An import can only fail on an out-of-bounds
// guest pointer or a failing guest allocator, both of which are guest
// memory corruption; the panic surfaces as a trap on that instance.
func must(err error) {
	if err != nil {
		panic(err)
	}
}

// guestAllocator calls back into the caller's mod-alloc export.
type guestAllocator struct {
	ctx context.Context
	m   wazeroapi.Module
}

func (a guestAllocator) Alloc(size, align uint32) (uint32, error) {
	fn := a.m.ExportedFunction(api.FuncModAlloc)
	if fn == nil {
		return 0, errors.MissingExport(api.FuncModAlloc)
	}
	results, err := fn.Call(a.ctx, uint64(size), uint64(align))
	if err != nil {
		return 0, errors.AllocationFailed(size, align, err)
	}
	ptr := uint32(results[0])
	if ptr == 0 {
		return 0, errors.AllocationFailed(size, align, nil)
	}
	return ptr, nil
}

var _ modsandbox.Allocator = guestAllocator{}

func (h *HostModule) log(ctx context.Context, m wazeroapi.Module, stack []uint64) {
	mem := engine.WrapMemory(m.Memory())
	msg, err := ReadString(mem, uint32(stack[0]), uint32(stack[1]))
	if err != nil {
		Logger().Warn("dropping unreadable mod log message",
			zap.String("mod", h.env.Mod()),
			zap.Error(err))
		return
	}
	Logger().Info(msg, zap.String("mod", h.env.Mod()))
}

func (h *HostModule) deltaTime(ctx context.Context, m wazeroapi.Module, stack []uint64) {
	stack[0] = wazeroapi.EncodeF32(h.env.Delta())
}

func (h *HostModule) getTransform(read func(*Env) api.Transform) wazeroapi.GoModuleFunction {
	return wazeroapi.GoModuleFunc(func(ctx context.Context, m wazeroapi.Module, stack []uint64) {
		mem := engine.WrapMemory(m.Memory())
		must(WriteTransform(mem, uint32(stack[0]), read(h.env)))
	})
}

func (h *HostModule) setTransform(target string, apply func(*Env, api.Transform)) wazeroapi.GoModuleFunction {
	return wazeroapi.GoModuleFunc(func(ctx context.Context, m wazeroapi.Module, stack []uint64) {
		mem := engine.WrapMemory(m.Memory())
		t, err := ReadTransform(mem, uint32(stack[0]))
		must(err)

		t, err = SanitizeTransform(t)
		if err != nil {
			// Malformed records never take down the call; the host
			// keeps its previous state.
			Logger().Warn("rejecting malformed transform",
				zap.String("mod", h.env.Mod()),
				zap.String("target", target),
				zap.Error(err))
			return
		}
		apply(h.env, t)
	})
}

func (e *Env) playerTransform() api.Transform     { return e.gw.PlayerTransform() }
func (e *Env) setPlayerTransform(t api.Transform) { e.gw.SetPlayerTransform(t) }
func (e *Env) cameraTransform() api.Transform     { return e.gw.CameraTransform() }
func (e *Env) setCameraTransform(t api.Transform) { e.gw.SetCameraTransform(t) }

func (h *HostModule) keyboardInput(ctx context.Context, m wazeroapi.Module, stack []uint64) {
	mem := engine.WrapMemory(m.Memory())
	events := h.env.DrainKeyboard()
	data := EncodeKeyboardEvents(events)
	alloc := guestAllocator{ctx: ctx, m: m}
	must(WriteList(mem, alloc, uint32(stack[0]), data, uint32(len(events)), 1))
}

func (h *HostModule) getBlock(ctx context.Context, m wazeroapi.Module, stack []uint64) {
	pos := api.IVec3{X: int32(stack[0]), Y: int32(stack[1]), Z: int32(stack[2])}
	id, ok := h.env.gw.Block(pos)
	if ok {
		stack[0] = 1
		stack[1] = uint64(id)
	} else {
		stack[0] = 0
		stack[1] = 0
	}
}

func (h *HostModule) getBlockFriction(ctx context.Context, m wazeroapi.Module, stack []uint64) {
	mem := engine.WrapMemory(m.Memory())
	friction := h.env.gw.BlockFriction(api.BlockID(stack[0]))
	must(WriteFriction(mem, uint32(stack[1]), friction))
}

func (h *HostModule) getBlockName(ctx context.Context, m wazeroapi.Module, stack []uint64) {
	mem := engine.WrapMemory(m.Memory())
	name := h.env.gw.BlockName(api.BlockID(stack[0]))
	alloc := guestAllocator{ctx: ctx, m: m}
	must(WriteList(mem, alloc, uint32(stack[1]), []byte(name), uint32(len(name)), 1))
}

func (h *HostModule) getBlockAABB(ctx context.Context, m wazeroapi.Module, stack []uint64) {
	mem := engine.WrapMemory(m.Memory())
	box, ok := h.env.gw.BlockAABB(api.BlockID(stack[0]))
	must(WriteOptionAABB(mem, uint32(stack[1]), box, ok))
}

func (h *HostModule) getModels(ctx context.Context, m wazeroapi.Module, stack []uint64) {
	mem := engine.WrapMemory(m.Memory())
	min := api.Vec3{
		X: wazeroapi.DecodeF32(stack[0]),
		Y: wazeroapi.DecodeF32(stack[1]),
		Z: wazeroapi.DecodeF32(stack[2]),
	}
	max := api.Vec3{
		X: wazeroapi.DecodeF32(stack[3]),
		Y: wazeroapi.DecodeF32(stack[4]),
		Z: wazeroapi.DecodeF32(stack[5]),
	}
	ids := h.env.gw.ModelsIn(min, max)
	alloc := guestAllocator{ctx: ctx, m: m}
	must(WriteList(mem, alloc, uint32(stack[6]), EncodeModelIDs(ids), uint32(len(ids)), 4))
}

func (h *HostModule) getModelAABB(ctx context.Context, m wazeroapi.Module, stack []uint64) {
	mem := engine.WrapMemory(m.Memory())
	id := uint32(stack[0])
	box, ok := h.env.gw.ModelAABB(id)
	if !ok {
		Logger().Warn("query for unknown model",
			zap.String("mod", h.env.Mod()),
			zap.Uint32("model_id", id))
	}
	must(WriteAABB(mem, uint32(stack[1]), box))
}

var _ engine.HostBinder = (*HostModule)(nil)
