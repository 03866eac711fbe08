package errors

import (
	"errors"
	"strings"
	"testing"
)

func TestError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *Error
		contains []string
	}{
		{
			name: "full error",
			err: &Error{
				Phase:  PhaseMarshal,
				Kind:   KindNonFinite,
				Mod:    "physics-mod",
				Call:   "set-player-transform",
				Path:   []string{"transform", "translation", "x"},
				Detail: "NaN rejected",
			},
			contains: []string{"[marshal]", "non_finite", "physics-mod", "set-player-transform", "transform.translation.x", "NaN rejected"},
		},
		{
			name: "minimal error",
			err: &Error{
				Phase: PhaseLoad,
				Kind:  KindOutOfBounds,
			},
			contains: []string{"[load]", "out_of_bounds"},
		},
		{
			name: "error with cause",
			err: &Error{
				Phase:  PhaseRuntime,
				Kind:   KindTrap,
				Detail: "unreachable executed",
				Cause:  errors.New("wasm error"),
			},
			contains: []string{"[runtime]", "trap", "unreachable executed", "caused by", "wasm error"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := tt.err.Error()
			for _, s := range tt.contains {
				if !strings.Contains(msg, s) {
					t.Errorf("error message %q does not contain %q", msg, s)
				}
			}
		})
	}
}

func TestError_Unwrap(t *testing.T) {
	cause := errors.New("root cause")
	err := Trap("update", cause)

	if !errors.Is(err, cause) {
		t.Error("errors.Is did not match wrapped cause")
	}
	if errors.Unwrap(err) != cause {
		t.Error("Unwrap did not return cause")
	}
}

func TestError_Is(t *testing.T) {
	a := &Error{Phase: PhaseLoad, Kind: KindMissingExport}
	b := MissingExport("update")
	c := &Error{Phase: PhaseLoad, Kind: KindVersion}

	if !errors.Is(b, a) {
		t.Error("same phase and kind should match")
	}
	if errors.Is(c, a) {
		t.Error("different kind should not match")
	}
}

func TestIsFault(t *testing.T) {
	if !IsFault(Trap("update", nil)) {
		t.Error("trap should be a fault")
	}
	if !IsFault(Budget("update", nil)) {
		t.Error("budget violation should be a fault")
	}
	if IsFault(MissingExport("update")) {
		t.Error("load error should not be a fault")
	}
	if IsFault(errors.New("plain")) {
		t.Error("plain error should not be a fault")
	}
}

func TestBuilder(t *testing.T) {
	err := New(PhaseMarshal, KindNonFinite).
		Mod("m").
		Call("set-camera-transform").
		Path("rotation", "w").
		Value(1.5).
		Detail("value %v out of range", 1.5).
		Build()

	if err.Phase != PhaseMarshal || err.Kind != KindNonFinite {
		t.Errorf("unexpected phase/kind: %s/%s", err.Phase, err.Kind)
	}
	if err.Mod != "m" || err.Call != "set-camera-transform" {
		t.Errorf("unexpected mod/call: %s/%s", err.Mod, err.Call)
	}
	if len(err.Path) != 2 || err.Path[1] != "w" {
		t.Errorf("unexpected path: %v", err.Path)
	}
	if err.Detail != "value 1.5 out of range" {
		t.Errorf("unexpected detail: %q", err.Detail)
	}
}

func TestMissingExportsError(t *testing.T) {
	err := &MissingExportsError{Exports: []string{"update", "mod-alloc"}}
	msg := err.Error()
	for _, s := range []string{"2 required export(s)", "update", "mod-alloc"} {
		if !strings.Contains(msg, s) {
			t.Errorf("message %q does not contain %q", msg, s)
		}
	}

	if !errors.Is(err, &MissingExportsError{}) {
		t.Error("Is should match by type")
	}
}

func TestConvenienceConstructors(t *testing.T) {
	tests := []struct {
		err  *Error
		kind Kind
	}{
		{Load("read file", nil), KindInvalidData},
		{SignatureMismatch("update", "() -> ()", "(i32) -> ()"), KindSignature},
		{IncompatibleVersion("m", "2.0.0", "0.1.0"), KindVersion},
		{UnknownChannel("ghost-mod"), KindUnknownChannel},
		{NonFinite([]string{"x"}, 1.0), KindNonFinite},
		{AllocationFailed(16, 4, nil), KindAllocation},
		{Disabled("m"), KindDisabled},
	}
	for _, tt := range tests {
		if tt.err.Kind != tt.kind {
			t.Errorf("got kind %s, want %s", tt.err.Kind, tt.kind)
		}
		if tt.err.Error() == "" {
			t.Error("empty error message")
		}
	}
}
