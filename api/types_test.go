package api

import (
	"math"
	"testing"
)

func TestDQuat_Normalized(t *testing.T) {
	q := DQuat{X: 0, Y: 2, Z: 0, W: 0}
	n, ok := q.Normalized()
	if !ok {
		t.Fatal("non-zero quaternion should normalize")
	}
	if n.Y != 1 || n.X != 0 || n.Z != 0 || n.W != 0 {
		t.Errorf("unexpected normalization: %+v", n)
	}

	if got := n.Norm(); math.Abs(got-1) > 1e-12 {
		t.Errorf("norm after normalization = %v, want 1", got)
	}
}

func TestDQuat_NormalizedZero(t *testing.T) {
	n, ok := DQuat{}.Normalized()
	if ok {
		t.Fatal("zero quaternion has no orientation")
	}
	if n != IdentityQuat() {
		t.Errorf("zero quaternion should fall back to identity, got %+v", n)
	}
}

func TestFinite(t *testing.T) {
	if !(Vec3{1, 2, 3}).Finite() {
		t.Error("finite vector reported non-finite")
	}
	if (Vec3{float32(math.NaN()), 0, 0}).Finite() {
		t.Error("NaN component reported finite")
	}
	if (Vec3{0, float32(math.Inf(1)), 0}).Finite() {
		t.Error("Inf component reported finite")
	}
	if (DQuat{X: math.NaN(), W: 1}).Finite() {
		t.Error("NaN quaternion reported finite")
	}
}

func TestKey_Valid(t *testing.T) {
	for k := KeyW; k < keyCount; k++ {
		if !k.Valid() {
			t.Errorf("key %s should be valid", k)
		}
		if k.String() == "unknown" {
			t.Errorf("key %d has no name", k)
		}
	}
	if Key(200).Valid() {
		t.Error("out-of-range key reported valid")
	}
}

func TestContractTables(t *testing.T) {
	names := make(map[string]bool)
	for _, sig := range GuestExports {
		if sig.Name == "" {
			t.Fatal("export with empty name")
		}
		if names[sig.Name] {
			t.Fatalf("duplicate export %q", sig.Name)
		}
		names[sig.Name] = true
	}
	for _, want := range []string{FuncInitPlugin, FuncSetUpdateFrequency, FuncUpdate, FuncHandleServerData, FuncModAlloc} {
		if !names[want] {
			t.Errorf("required export %q missing from GuestExports", want)
		}
	}

	imports := make(map[string]bool)
	for _, sig := range HostImports {
		if imports[sig.Name] {
			t.Fatalf("duplicate import %q", sig.Name)
		}
		imports[sig.Name] = true
	}
	if len(imports) != 13 {
		t.Errorf("contract defines %d imports, want 13", len(imports))
	}
}
