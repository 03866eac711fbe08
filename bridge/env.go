package bridge

import (
	"sync"

	"go.uber.org/zap"

	"github.com/blockpeak/mod-sandbox/api"
	"github.com/blockpeak/mod-sandbox/gateway"
)

// Env is the per-instance host state the import closures capture. One Env
// belongs to exactly one guest instance; the keyboard queue and delta time
// are private to it, the gateway is shared host state.
type Env struct {
	mod string
	gw  *gateway.Gateway

	mu       sync.Mutex
	delta    float32
	keyboard []api.KeyboardEvent
	dropped  int
}

// NewEnv builds the host environment for one instance.
func NewEnv(mod string, gw *gateway.Gateway) *Env {
	return &Env{mod: mod, gw: gw}
}

// Mod returns the owning instance's name.
func (e *Env) Mod() string {
	return e.mod
}

// SetDelta records the delta time the instance observes for its next
// update call.
func (e *Env) SetDelta(delta float32) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.delta = delta
}

// Delta returns the instance's current delta time.
func (e *Env) Delta() float32 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.delta
}

// PushKeyboard appends an event to the instance's queue. When the queue
// is full the oldest event is dropped so a stalled instance cannot grow
// host memory without bound.
func (e *Env) PushKeyboard(ev api.KeyboardEvent) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(e.keyboard) >= api.MaxKeyboardEvents {
		e.keyboard = e.keyboard[1:]
		e.dropped++
		if e.dropped == 1 || e.dropped%100 == 0 {
			Logger().Warn("keyboard queue overflow, dropping oldest",
				zap.String("mod", e.mod),
				zap.Int("dropped_total", e.dropped))
		}
	}
	e.keyboard = append(e.keyboard, ev)
}

// DrainKeyboard returns the pending events in arrival order and clears
// the queue.
func (e *Env) DrainKeyboard() []api.KeyboardEvent {
	e.mu.Lock()
	defer e.mu.Unlock()
	events := e.keyboard
	e.keyboard = nil
	return events
}

// PendingKeyboard returns the number of queued events.
func (e *Env) PendingKeyboard() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.keyboard)
}
