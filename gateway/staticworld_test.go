package gateway

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/blockpeak/mod-sandbox/api"
)

func testWorld(t *testing.T) *StaticWorld {
	t.Helper()
	w, err := NewStaticWorld(WorldConfig{
		Blocks: []BlockConfig{
			{Name: "air", Drag: [3]float32{1, 1, 1}},
			{
				Name:    "stone",
				Surface: &SurfaceConfig{Front: 0.6, Back: 0.6, Right: 0.6, Left: 0.6, Top: 0.6, Bottom: 0.6},
				AABB:    &AABBConfig{Min: [3]float32{0, 0, 0}, Max: [3]float32{1, 1, 1}},
			},
			{Name: "water", Drag: [3]float32{0.4, 0.6, 0.4}},
		},
		GroundLevel: 0,
		GroundBlock: "stone",
	})
	if err != nil {
		t.Fatalf("build world: %v", err)
	}
	return w
}

func TestStaticWorldFlatGround(t *testing.T) {
	w := testWorld(t)
	stone, _ := w.BlockID("stone")
	air, _ := w.BlockID("air")

	if id, _ := w.BlockAt(api.IVec3{X: 10, Y: 0, Z: -4}); id != stone {
		t.Errorf("ground block = %d, want %d", id, stone)
	}
	if id, _ := w.BlockAt(api.IVec3{X: 10, Y: 1, Z: -4}); id != air {
		t.Errorf("above ground = %d, want %d", id, air)
	}

	water, _ := w.BlockID("water")
	w.SetBlock(api.IVec3{X: 0, Y: 5, Z: 0}, water)
	if id, _ := w.BlockAt(api.IVec3{X: 0, Y: 5, Z: 0}); id != water {
		t.Errorf("override = %d, want %d", id, water)
	}
}

func TestStaticWorldBlockMetadata(t *testing.T) {
	w := testWorld(t)
	stone, _ := w.BlockID("stone")
	water, _ := w.BlockID("water")

	name, ok := w.BlockName(stone)
	if !ok || name != "stone" {
		t.Errorf("BlockName(stone) = (%q, %v)", name, ok)
	}
	if _, ok := w.BlockName(999); ok {
		t.Error("expected unknown id to miss")
	}

	friction, ok := w.BlockFriction(stone)
	if !ok || friction.Surface == nil || friction.Surface.Top != 0.6 {
		t.Errorf("BlockFriction(stone) = (%+v, %v)", friction, ok)
	}
	friction, ok = w.BlockFriction(water)
	if !ok || friction.Surface != nil || friction.Drag.Y != 0.6 {
		t.Errorf("BlockFriction(water) = (%+v, %v)", friction, ok)
	}

	if _, ok := w.BlockAABB(stone); !ok {
		t.Error("expected stone to have a collision box")
	}
	if _, ok := w.BlockAABB(water); ok {
		t.Error("expected water to have no collision box")
	}
}

func TestStaticWorldRejectsBadConfig(t *testing.T) {
	cases := []struct {
		name string
		cfg  WorldConfig
	}{
		{"empty palette", WorldConfig{GroundBlock: "stone"}},
		{"unnamed entry", WorldConfig{Blocks: []BlockConfig{{}}, GroundBlock: "x"}},
		{"duplicate entry", WorldConfig{
			Blocks:      []BlockConfig{{Name: "a"}, {Name: "a"}},
			GroundBlock: "a",
		}},
		{"missing ground block", WorldConfig{
			Blocks:      []BlockConfig{{Name: "air"}},
			GroundBlock: "stone",
		}},
	}
	for _, tc := range cases {
		if _, err := NewStaticWorld(tc.cfg); err == nil {
			t.Errorf("%s: expected error", tc.name)
		}
	}
}

func TestLoadStaticWorldYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "world.yaml")
	data := `
blocks:
  - name: air
    drag: [1, 1, 1]
  - name: dirt
    surface: {front: 0.5, back: 0.5, right: 0.5, left: 0.5, top: 0.5, bottom: 0.5}
    aabb: {min: [0, 0, 0], max: [1, 1, 1]}
ground_level: -1
ground_block: dirt
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	w, err := LoadStaticWorld(path)
	if err != nil {
		t.Fatalf("load world: %v", err)
	}
	dirt, ok := w.BlockID("dirt")
	if !ok {
		t.Fatal("dirt not in palette")
	}
	if id, _ := w.BlockAt(api.IVec3{Y: -1}); id != dirt {
		t.Errorf("ground = %d, want %d", id, dirt)
	}
	if id, _ := w.BlockAt(api.IVec3{Y: 0}); id != 0 {
		t.Errorf("surface = %d, want air", id)
	}

	if _, err := LoadStaticWorld(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected missing file to fail")
	}
}

func TestStaticWorldTransforms(t *testing.T) {
	w := testWorld(t)

	set := api.IdentityTransform()
	set.Translation = api.Vec3{X: 1, Y: 2, Z: 3}
	w.SetPlayerTransform(set)
	if got := w.PlayerTransform(); got != set {
		t.Errorf("player = %+v, want %+v", got, set)
	}
	// Camera is independent state.
	if got := w.CameraTransform(); got != api.IdentityTransform() {
		t.Errorf("camera moved with player: %+v", got)
	}
}

func TestStaticWorldModels(t *testing.T) {
	w := testWorld(t)

	at := func(x float32) api.Transform {
		tf := api.IdentityTransform()
		tf.Translation = api.Vec3{X: x}
		return tf
	}
	// Insert out of order to check result ordering.
	w.PlaceModel(7, at(0), unitBox())
	w.PlaceModel(3, at(2), unitBox())
	w.PlaceModel(5, at(50), unitBox())

	got := w.ModelsIn(api.Vec3{X: -1, Y: -1, Z: -1}, api.Vec3{X: 3, Y: 1, Z: 1})
	if len(got) != 2 || got[0] != 3 || got[1] != 7 {
		t.Errorf("ModelsIn = %v, want [3 7]", got)
	}

	box, ok := w.ModelAABB(3)
	if !ok {
		t.Fatal("model 3 missing")
	}
	vec3Near(t, "model min", box.Min, api.Vec3{X: 1.5, Y: -0.5, Z: -0.5})

	if _, ok := w.ModelAABB(99); ok {
		t.Error("expected unknown model to miss")
	}

	w.RemoveModel(3)
	if got := w.ModelsIn(api.Vec3{X: -100, Y: -100, Z: -100}, api.Vec3{X: 100, Y: 100, Z: 100}); len(got) != 2 {
		t.Errorf("after remove = %v, want two models", got)
	}
}

func TestGatewayFallbacks(t *testing.T) {
	w := testWorld(t)
	gw := w.Gateway()

	if name := gw.BlockName(999); name != "unknown" {
		t.Errorf("unknown id name = %q", name)
	}
	if friction := gw.BlockFriction(999); friction != DefaultFriction {
		t.Errorf("unknown id friction = %+v", friction)
	}

	// A gateway with no collaborators answers with safe defaults.
	empty := &Gateway{}
	if _, ok := empty.Block(api.IVec3{}); ok {
		t.Error("empty gateway resolved a block")
	}
	if got := empty.PlayerTransform(); got != api.IdentityTransform() {
		t.Errorf("empty gateway player = %+v", got)
	}
	if got := empty.ModelsIn(api.Vec3{}, api.Vec3{}); got != nil {
		t.Errorf("empty gateway models = %v", got)
	}
}
