package engine

import (
	"context"
	"time"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"go.uber.org/zap"

	apipkg "github.com/blockpeak/mod-sandbox/api"
	"github.com/blockpeak/mod-sandbox/errors"
)

// Config holds configuration for engine creation
type Config struct {
	// MemoryLimitPages sets the maximum linear memory per instance in
	// pages (64KB each). 0 means the default of 256 pages (16MB).
	// 256 = 16MB, 1024 = 64MB, 4096 = 256MB
	MemoryLimitPages uint32

	// CallTimeout is the time budget for a single guest call. A call that
	// exceeds it is torn down and reported as a budget fault. 0 means the
	// default of 100ms.
	CallTimeout time.Duration
}

const (
	defaultMemoryLimitPages = 256
	defaultCallTimeout      = 100 * time.Millisecond
)

// Engine creates isolated guest instances. It owns the shared compilation
// cache; per-instance state lives entirely in GuestInstance.
type Engine struct {
	cache       wazero.CompilationCache
	memoryPages uint32
	callTimeout time.Duration
}

// HostBinder instantiates host import modules into an instance's runtime.
// It is called once per Load, so bindings are scoped to that instance only.
type HostBinder interface {
	BindHost(ctx context.Context, rt wazero.Runtime) error
}

// New creates an engine. It cross-checks the contract's WIT text against the
// flat signature tables and fails fast on any drift.
func New(ctx context.Context, cfg *Config) (*Engine, error) {
	if err := verifyContract(); err != nil {
		return nil, err
	}

	e := &Engine{
		cache:       wazero.NewCompilationCache(),
		memoryPages: defaultMemoryLimitPages,
		callTimeout: defaultCallTimeout,
	}
	if cfg != nil {
		if cfg.MemoryLimitPages > 0 {
			e.memoryPages = cfg.MemoryLimitPages
		}
		if cfg.CallTimeout > 0 {
			e.callTimeout = cfg.CallTimeout
		}
	}
	return e, nil
}

// Close releases the compilation cache. All instances must be closed first.
func (e *Engine) Close(ctx context.Context) error {
	return e.cache.Close(ctx)
}

// CallTimeout returns the per-call time budget instances run under.
func (e *Engine) CallTimeout() time.Duration {
	return e.callTimeout
}

// Load validates and instantiates a guest module, producing one isolated
// instance with its own runtime, linear memory, and host bindings.
func (e *Engine) Load(ctx context.Context, name string, wasm []byte, binder HostBinder) (*GuestInstance, error) {
	rtCfg := wazero.NewRuntimeConfig().
		WithCompilationCache(e.cache).
		WithMemoryLimitPages(e.memoryPages).
		WithCloseOnContextDone(true)

	rt := wazero.NewRuntimeWithConfig(ctx, rtCfg)

	compiled, err := rt.CompileModule(ctx, wasm)
	if err != nil {
		rt.Close(ctx)
		return nil, errors.Load("compile module", err)
	}

	if err := validateContract(compiled); err != nil {
		rt.Close(ctx)
		return nil, err
	}

	if binder != nil {
		if err := binder.BindHost(ctx, rt); err != nil {
			rt.Close(ctx)
			return nil, errors.Load("bind host imports", err)
		}
	}

	// The guest's start function is not run: init-plugin is the contract's
	// only initialization entry point.
	mod, err := rt.InstantiateModule(ctx, compiled, wazero.NewModuleConfig().
		WithName(name).
		WithStartFunctions())
	if err != nil {
		rt.Close(ctx)
		return nil, errors.Instantiation(err)
	}

	inst := &GuestInstance{
		name:        name,
		runtime:     rt,
		module:      mod,
		memory:      &guestMemory{mem: mod.Memory()},
		callTimeout: e.callTimeout,
		stack:       make([]uint64, 8),
		initFn:      mod.ExportedFunction(apipkg.FuncInitPlugin),
		freqFn:      mod.ExportedFunction(apipkg.FuncSetUpdateFrequency),
		updateFn:    mod.ExportedFunction(apipkg.FuncUpdate),
		serverFn:    mod.ExportedFunction(apipkg.FuncHandleServerData),
		allocFn:     mod.ExportedFunction(apipkg.FuncModAlloc),
	}

	Logger().Debug("guest instance loaded",
		zap.String("mod", name),
		zap.Int("wasm_bytes", len(wasm)))

	return inst, nil
}

// validateContract checks the compiled module against every required guest
// export and its flat core signature, and rejects modules linked against a
// different host namespace.
func validateContract(compiled wazero.CompiledModule) error {
	if _, ok := compiled.ExportedMemories()[apipkg.MemoryExport]; !ok {
		return errors.MissingExport(apipkg.MemoryExport)
	}

	defs := compiled.ExportedFunctions()

	var missing []string
	for _, sig := range apipkg.GuestExports {
		def, ok := defs[sig.Name]
		if !ok {
			missing = append(missing, sig.Name)
			continue
		}
		if !sameSignature(def, sig) {
			return errors.SignatureMismatch(sig.Name, sigString(sig), defString(def))
		}
	}
	switch len(missing) {
	case 0:
	case 1:
		return errors.MissingExport(missing[0])
	default:
		return &errors.MissingExportsError{Exports: missing}
	}

	for _, imp := range compiled.ImportedFunctions() {
		module, _, _ := imp.Import()
		if module == apipkg.HostNamespace {
			continue
		}
		if base, ver, ok := splitNamespaceVersion(module); ok && base == hostNamespaceBase() {
			return errors.IncompatibleVersion("", ver, apipkg.ContractVersion)
		}
		return errors.Load("unknown import namespace "+module, nil)
	}

	return nil
}

func sameSignature(def api.FunctionDefinition, sig apipkg.FuncSig) bool {
	return sameTypes(def.ParamTypes(), sig.Params) && sameTypes(def.ResultTypes(), sig.Results)
}

func sameTypes(got []api.ValueType, want []apipkg.CoreValType) bool {
	if len(got) != len(want) {
		return false
	}
	for i, w := range want {
		if got[i] != coreToWazero(w) {
			return false
		}
	}
	return true
}

func coreToWazero(t apipkg.CoreValType) api.ValueType {
	switch t {
	case apipkg.CoreI32:
		return api.ValueTypeI32
	case apipkg.CoreI64:
		return api.ValueTypeI64
	case apipkg.CoreF32:
		return api.ValueTypeF32
	default:
		return api.ValueTypeF64
	}
}

func sigString(sig apipkg.FuncSig) string {
	return coreTypesString(sig.Params) + " -> " + coreTypesString(sig.Results)
}

func coreTypesString(types []apipkg.CoreValType) string {
	s := "("
	for i, t := range types {
		if i > 0 {
			s += ", "
		}
		s += t.String()
	}
	return s + ")"
}

func defString(def api.FunctionDefinition) string {
	return valueTypesString(def.ParamTypes()) + " -> " + valueTypesString(def.ResultTypes())
}

func valueTypesString(types []api.ValueType) string {
	s := "("
	for i, t := range types {
		if i > 0 {
			s += ", "
		}
		s += api.ValueTypeName(t)
	}
	return s + ")"
}

func hostNamespaceBase() string {
	base, _, _ := splitNamespaceVersion(apipkg.HostNamespace)
	return base
}

// splitNamespaceVersion splits "blockpeak:client/host@0.1.0" into base path
// and version.
func splitNamespaceVersion(namespace string) (base, version string, ok bool) {
	for i := len(namespace) - 1; i >= 0; i-- {
		if namespace[i] == '@' {
			return namespace[:i], namespace[i+1:], true
		}
	}
	return namespace, "", false
}
