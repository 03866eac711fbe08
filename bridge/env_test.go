package bridge

import (
	"testing"

	"github.com/blockpeak/mod-sandbox/api"
)

func TestEnvKeyboardQueue(t *testing.T) {
	env := NewEnv("test", nil)

	env.PushKeyboard(api.KeyboardEvent{Key: api.KeyW})
	env.PushKeyboard(api.KeyboardEvent{Key: api.KeyA, Released: true})
	if env.PendingKeyboard() != 2 {
		t.Fatalf("pending = %d, want 2", env.PendingKeyboard())
	}

	events := env.DrainKeyboard()
	if len(events) != 2 || events[0].Key != api.KeyW || events[1].Key != api.KeyA {
		t.Errorf("drained = %+v", events)
	}
	if env.PendingKeyboard() != 0 {
		t.Error("drain did not clear the queue")
	}
	if events := env.DrainKeyboard(); len(events) != 0 {
		t.Errorf("second drain = %+v, want empty", events)
	}
}

func TestEnvKeyboardQueueOverflow(t *testing.T) {
	env := NewEnv("test", nil)

	for i := 0; i < api.MaxKeyboardEvents+10; i++ {
		env.PushKeyboard(api.KeyboardEvent{Key: api.Key(i % 7)})
	}
	if env.PendingKeyboard() != api.MaxKeyboardEvents {
		t.Fatalf("pending = %d, want %d", env.PendingKeyboard(), api.MaxKeyboardEvents)
	}

	// The oldest events went first: the head is event number 10.
	events := env.DrainKeyboard()
	if events[0].Key != api.Key(10%7) {
		t.Errorf("head key = %v, want %v", events[0].Key, api.Key(10%7))
	}
}

func TestEnvDelta(t *testing.T) {
	env := NewEnv("test", nil)
	if env.Delta() != 0 {
		t.Errorf("initial delta = %v", env.Delta())
	}
	env.SetDelta(0.016)
	if env.Delta() != 0.016 {
		t.Errorf("delta = %v, want 0.016", env.Delta())
	}
}
