package sandbox

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/blockpeak/mod-sandbox/api"
)

func TestParseManifest(t *testing.T) {
	m, err := ParseManifest([]byte("name: physics\nversion: 1.2.3\ncontract: " + api.ContractVersion + "\n"))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if m.Name != "physics" || m.Version != "1.2.3" {
		t.Errorf("manifest = %+v", m)
	}

	bad := []string{
		"",
		"name: x\n",
		"contract: 0.1.0\n",
		"name: x\ncontract: not-semver\n",
		"name: x\nversion: ??\ncontract: 0.1.0\n",
		"{{",
	}
	for i, data := range bad {
		if _, err := ParseManifest([]byte(data)); err == nil {
			t.Errorf("case %d: malformed manifest accepted", i)
		}
	}
}

func TestLoadManifest(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mod.yaml")
	if err := os.WriteFile(path, []byte("name: physics\ncontract: "+api.ContractVersion+"\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := LoadManifest(path); err != nil {
		t.Errorf("load: %v", err)
	}
	if _, err := LoadManifest(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected missing manifest to fail")
	}
}

func TestCheckContract(t *testing.T) {
	// Host contract is 0.1.0.
	tests := []struct {
		required string
		ok       bool
	}{
		{"0.1.0", true},
		{"0.1.1", false}, // mod needs a newer patch than the host has
		{"0.0.9", false},
		{"0.2.0", false},
		{"1.1.0", false},
	}
	for _, tc := range tests {
		err := Manifest{Name: "m", Contract: tc.required}.CheckContract()
		if (err == nil) != tc.ok {
			t.Errorf("CheckContract(%s) err = %v, want ok=%v", tc.required, err, tc.ok)
		}
	}
}
