package engine

import (
	"testing"

	apipkg "github.com/blockpeak/mod-sandbox/api"
)

func TestVerifyContract(t *testing.T) {
	if err := verifyContract(); err != nil {
		t.Fatalf("contract WIT disagrees with signature tables: %v", err)
	}
}

func TestParseContractFuncs(t *testing.T) {
	funcs, err := parseContractFuncs(apipkg.ContractWIT)
	if err != nil {
		t.Fatalf("parse contract: %v", err)
	}

	// Every table entry except the ABI-support allocator comes from WIT.
	want := len(apipkg.HostImports) + len(apipkg.GuestExports) - 1
	if len(funcs) != want {
		t.Errorf("parsed %d functions, want %d", len(funcs), want)
	}

	tests := []struct {
		name    string
		export  bool
		params  []apipkg.CoreValType
		results []apipkg.CoreValType
	}{
		{"log", false, []apipkg.CoreValType{apipkg.CoreI32, apipkg.CoreI32}, nil},
		{"delta-time", false, nil, []apipkg.CoreValType{apipkg.CoreF32}},
		{"get-player-transform", false, []apipkg.CoreValType{apipkg.CoreI32}, nil},
		{"set-player-transform", false, []apipkg.CoreValType{apipkg.CoreI32}, nil},
		{"get-block", false,
			[]apipkg.CoreValType{apipkg.CoreI32, apipkg.CoreI32, apipkg.CoreI32},
			[]apipkg.CoreValType{apipkg.CoreI32, apipkg.CoreI32}},
		{"get-models", false,
			[]apipkg.CoreValType{apipkg.CoreF32, apipkg.CoreF32, apipkg.CoreF32, apipkg.CoreF32, apipkg.CoreF32, apipkg.CoreF32, apipkg.CoreI32},
			nil},
		{"set-update-frequency", true, nil, []apipkg.CoreValType{apipkg.CoreI32, apipkg.CoreF32}},
		{"handle-server-data", true, []apipkg.CoreValType{apipkg.CoreI32, apipkg.CoreI32}, nil},
	}

	for _, tc := range tests {
		sig, ok := funcs[tc.name]
		if !ok {
			t.Errorf("%s: not parsed", tc.name)
			continue
		}
		if sig.export != tc.export {
			t.Errorf("%s: export = %v, want %v", tc.name, sig.export, tc.export)
		}
		if !equalCore(sig.params, tc.params) {
			t.Errorf("%s: params = %v, want %v", tc.name, sig.params, tc.params)
		}
		if !equalCore(sig.results, tc.results) {
			t.Errorf("%s: results = %v, want %v", tc.name, sig.results, tc.results)
		}
	}
}

func TestParseContractFuncsRejectsEmpty(t *testing.T) {
	if _, err := parseContractFuncs("package nothing:here@1.0.0;"); err == nil {
		t.Fatal("expected parse of empty contract to fail")
	}
}

func TestSplitTopLevel(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"a: u32", []string{"a: u32"}},
		{"a: u32, b: f32", []string{"a: u32", "b: f32"}},
		{"data: list<u8>", []string{"data: list<u8>"}},
		{"a: tuple<u32, f32>, b: s32", []string{"a: tuple<u32, f32>", "b: s32"}},
	}
	for _, tc := range tests {
		got := splitTopLevel(tc.in)
		if len(got) != len(tc.want) {
			t.Errorf("splitTopLevel(%q) = %v, want %v", tc.in, got, tc.want)
			continue
		}
		for i := range got {
			if got[i] != tc.want[i] {
				t.Errorf("splitTopLevel(%q)[%d] = %q, want %q", tc.in, i, got[i], tc.want[i])
			}
		}
	}
}
