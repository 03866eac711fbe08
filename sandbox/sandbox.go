package sandbox

import (
	"context"
	stderrors "errors"
	"math"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/blockpeak/mod-sandbox/api"
	"github.com/blockpeak/mod-sandbox/bridge"
	"github.com/blockpeak/mod-sandbox/engine"
	"github.com/blockpeak/mod-sandbox/errors"
	"github.com/blockpeak/mod-sandbox/gateway"
)

// Config controls sandbox construction.
type Config struct {
	// Engine configures the underlying module engine. Nil uses engine
	// defaults.
	Engine *engine.Config

	// Gateway is the host state guests query. Nil gives guests a
	// gateway that answers everything with safe defaults.
	Gateway *gateway.Gateway

	// OnFault, when set, receives every contained guest fault.
	OnFault FaultHandler
}

type serverPayload struct {
	mod  string
	data []byte
}

// Sandbox owns the engine and every loaded mod instance.
type Sandbox struct {
	eng     *engine.Engine
	gw      *gateway.Gateway
	onFault FaultHandler

	mu           sync.Mutex
	instances    map[string]*Instance
	order        []string
	serverData   []serverPayload
	captureInput bool
}

// New builds a sandbox.
func New(ctx context.Context, cfg *Config) (*Sandbox, error) {
	if cfg == nil {
		cfg = &Config{}
	}

	eng, err := engine.New(ctx, cfg.Engine)
	if err != nil {
		return nil, err
	}

	gw := cfg.Gateway
	if gw == nil {
		gw = &gateway.Gateway{}
	}

	return &Sandbox{
		eng:          eng,
		gw:           gw,
		onFault:      cfg.OnFault,
		instances:    make(map[string]*Instance),
		captureInput: true,
	}, nil
}

// Close unloads every instance and releases the engine.
func (s *Sandbox) Close(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var firstErr error
	for _, name := range s.order {
		if err := s.instances[name].guest.Close(ctx); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	s.instances = make(map[string]*Instance)
	s.order = nil

	if err := s.eng.Close(ctx); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}

// Load instantiates a mod, runs its initialization sequence, and
// registers it at the end of the tick order. A failure anywhere leaves
// the sandbox exactly as it was; already loaded mods are unaffected.
func (s *Sandbox) Load(ctx context.Context, manifest Manifest, wasm []byte) (*Instance, error) {
	if err := manifest.CheckContract(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.instances[manifest.Name]; exists {
		return nil, errors.InvalidInput(errors.PhaseLoad, "mod "+manifest.Name+" is already loaded")
	}

	env := bridge.NewEnv(manifest.Name, s.gw)
	guest, err := s.eng.Load(ctx, manifest.Name, wasm, bridge.NewHostModule(env))
	if err != nil {
		return nil, err
	}

	inst := &Instance{
		id:       uuid.New(),
		manifest: manifest,
		guest:    guest,
		env:      env,
		state:    StateUninitialized,
	}

	if err := guest.CallInitPlugin(ctx); err != nil {
		guest.Close(ctx)
		return nil, err
	}

	freq, declared, err := guest.CallSetUpdateFrequency(ctx)
	if err != nil {
		guest.Close(ctx)
		return nil, err
	}
	if declared {
		if float64(freq) <= 0 || math.IsNaN(float64(freq)) || math.IsInf(float64(freq), 0) {
			Logger().Warn("ignoring invalid update frequency",
				zap.String("mod", manifest.Name),
				zap.Float32("frequency", freq))
		} else {
			inst.hasFreq = true
			inst.period = 1 / freq
		}
	}

	inst.state = StateReady
	s.instances[manifest.Name] = inst
	s.order = append(s.order, manifest.Name)

	Logger().Info("mod loaded",
		zap.String("mod", manifest.Name),
		zap.String("version", manifest.Version),
		zap.String("instance_id", inst.id.String()),
		zap.Bool("custom_frequency", inst.hasFreq))

	return inst, nil
}

// Unload removes a mod and releases its runtime.
func (s *Sandbox) Unload(ctx context.Context, mod string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	inst, ok := s.instances[mod]
	if !ok {
		return errors.NotFound(errors.PhaseSchedule, "mod", mod)
	}

	delete(s.instances, mod)
	s.order = slices.DeleteFunc(s.order, func(name string) bool { return name == mod })

	Logger().Info("mod unloaded", zap.String("mod", mod))
	return inst.guest.Close(ctx)
}

// Instance looks up a loaded mod by name.
func (s *Sandbox) Instance(mod string) (*Instance, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	inst, ok := s.instances[mod]
	return inst, ok
}

// Instances returns every loaded instance in tick order.
func (s *Sandbox) Instances() []*Instance {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*Instance, 0, len(s.order))
	for _, name := range s.order {
		out = append(out, s.instances[name])
	}
	return out
}

// Enable returns a disabled mod to the tick order. Faulted instances
// cannot come back; their runtime state is gone.
func (s *Sandbox) Enable(mod string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	inst, ok := s.instances[mod]
	if !ok {
		return errors.NotFound(errors.PhaseSchedule, "mod", mod)
	}
	if inst.faulted {
		return errors.Disabled(mod)
	}
	if inst.state == StateDisabled {
		inst.state = StateReady
		Logger().Info("mod enabled", zap.String("mod", mod))
	}
	return nil
}

// Disable removes a mod from the tick order without unloading it.
func (s *Sandbox) Disable(mod string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	inst, ok := s.instances[mod]
	if !ok {
		return errors.NotFound(errors.PhaseSchedule, "mod", mod)
	}
	if inst.state == StateReady {
		inst.state = StateDisabled
		Logger().Info("mod disabled", zap.String("mod", mod))
	}
	return nil
}

// DeliverServerData queues a server payload for mod. It is delivered at
// the start of the next tick, before any update runs.
func (s *Sandbox) DeliverServerData(mod string, data []byte) error {
	if len(data) > api.MaxServerDataLen {
		return errors.InvalidInput(errors.PhaseChannel, "server payload exceeds size limit")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.serverData = append(s.serverData, serverPayload{mod: mod, data: data})
	return nil
}

// SetCaptureInput routes keyboard events to mods when on. While off,
// events pushed to the sandbox are discarded, so guests see an empty
// queue. Capture starts on.
func (s *Sandbox) SetCaptureInput(on bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.captureInput = on
}

// PushKeyboard fans a keyboard event out to every ready instance's
// private queue.
func (s *Sandbox) PushKeyboard(ev api.KeyboardEvent) {
	if !ev.Key.Valid() {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.captureInput {
		return
	}
	for _, name := range s.order {
		if inst := s.instances[name]; inst.state == StateReady {
			inst.env.PushKeyboard(ev)
		}
	}
}

// Tick runs one scheduling round: queued server data first, then updates
// for every ready instance, in load order.
func (s *Sandbox) Tick(ctx context.Context, delta time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	pending := s.serverData
	s.serverData = nil
	for _, payload := range pending {
		inst, ok := s.instances[payload.mod]
		if !ok || inst.state != StateReady {
			err := errors.UnknownChannel(payload.mod)
			Logger().Warn("dropping server data",
				zap.String("mod", payload.mod),
				zap.Int("bytes", len(payload.data)),
				zap.Error(err))
			continue
		}
		if err := inst.guest.CallHandleServerData(ctx, payload.data); err != nil {
			s.containFault(ctx, inst, api.FuncHandleServerData, err)
		}
	}

	deltaSec := float32(delta.Seconds())
	for _, name := range s.order {
		inst := s.instances[name]
		if inst.state != StateReady {
			continue
		}
		run, observed := inst.schedule(deltaSec)
		if !run {
			continue
		}
		inst.env.SetDelta(observed)
		if err := inst.guest.CallUpdate(ctx); err != nil {
			s.containFault(ctx, inst, api.FuncUpdate, err)
		}
	}
}

// containFault disables the offending instance, releases its runtime,
// and reports the fault. The host and every other instance keep running.
func (s *Sandbox) containFault(ctx context.Context, inst *Instance, call string, err error) {
	inst.state = StateDisabled
	inst.faulted = true
	inst.guest.Close(ctx)

	kind := errors.KindTrap
	var structured *errors.Error
	if stderrors.As(err, &structured) {
		kind = structured.Kind
	}

	Logger().Error("mod fault contained",
		zap.String("mod", inst.manifest.Name),
		zap.String("call", call),
		zap.String("kind", string(kind)),
		zap.Error(err))

	if s.onFault != nil {
		s.onFault(Fault{
			Mod:        inst.manifest.Name,
			InstanceID: inst.id,
			Call:       call,
			Kind:       kind,
			Err:        err,
			Time:       time.Now(),
		})
	}
}
