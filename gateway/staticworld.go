package gateway

import (
	"os"
	"slices"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/blockpeak/mod-sandbox/api"
	"github.com/blockpeak/mod-sandbox/errors"
)

// WorldConfig describes a StaticWorld in YAML.
type WorldConfig struct {
	// Blocks is the palette. Position in the list is the block id, so
	// entry 0 should be the empty block.
	Blocks []BlockConfig `yaml:"blocks"`

	// GroundLevel is the y coordinate of the highest solid layer.
	GroundLevel int32 `yaml:"ground_level"`

	// GroundBlock names the palette entry filling everything at and
	// below GroundLevel.
	GroundBlock string `yaml:"ground_block"`
}

// BlockConfig is one palette entry.
type BlockConfig struct {
	Name    string         `yaml:"name"`
	Surface *SurfaceConfig `yaml:"surface,omitempty"`
	Drag    [3]float32     `yaml:"drag,omitempty"`
	AABB    *AABBConfig    `yaml:"aabb,omitempty"`
}

type SurfaceConfig struct {
	Front  float32 `yaml:"front"`
	Back   float32 `yaml:"back"`
	Right  float32 `yaml:"right"`
	Left   float32 `yaml:"left"`
	Top    float32 `yaml:"top"`
	Bottom float32 `yaml:"bottom"`
}

type AABBConfig struct {
	Min [3]float32 `yaml:"min"`
	Max [3]float32 `yaml:"max"`
}

type paletteEntry struct {
	name     string
	friction api.Friction
	aabb     *api.AABB
}

type placedModel struct {
	transform api.Transform
	aabb      api.AABB
}

// StaticWorld is an in-memory world: a YAML-defined block palette over an
// infinite flat ground, with mutable transforms and placed models. It
// implements BlockRegistry, WorldMap, TransformStore, and ModelIndex.
type StaticWorld struct {
	mu          sync.RWMutex
	palette     []paletteEntry
	names       map[string]api.BlockID
	groundLevel int32
	groundBlock api.BlockID
	overrides   map[api.IVec3]api.BlockID
	player      api.Transform
	camera      api.Transform
	models      map[uint32]placedModel
}

// NewStaticWorld builds a world from cfg. The palette must not be empty,
// and GroundBlock must name a palette entry.
func NewStaticWorld(cfg WorldConfig) (*StaticWorld, error) {
	if len(cfg.Blocks) == 0 {
		return nil, errors.InvalidInput(errors.PhaseParse, "world palette is empty")
	}

	w := &StaticWorld{
		names:       make(map[string]api.BlockID, len(cfg.Blocks)),
		groundLevel: cfg.GroundLevel,
		overrides:   make(map[api.IVec3]api.BlockID),
		player:      api.IdentityTransform(),
		camera:      api.IdentityTransform(),
		models:      make(map[uint32]placedModel),
	}

	for i, block := range cfg.Blocks {
		if block.Name == "" {
			return nil, errors.InvalidInput(errors.PhaseParse, "palette entry without a name")
		}
		if _, dup := w.names[block.Name]; dup {
			return nil, errors.InvalidInput(errors.PhaseParse, "duplicate palette entry "+block.Name)
		}

		entry := paletteEntry{
			name: block.Name,
			friction: api.Friction{
				Drag: api.Vec3{X: block.Drag[0], Y: block.Drag[1], Z: block.Drag[2]},
			},
		}
		if block.Surface != nil {
			entry.friction.Surface = &api.SurfaceFriction{
				Front:  block.Surface.Front,
				Back:   block.Surface.Back,
				Right:  block.Surface.Right,
				Left:   block.Surface.Left,
				Top:    block.Surface.Top,
				Bottom: block.Surface.Bottom,
			}
		}
		if block.AABB != nil {
			entry.aabb = &api.AABB{
				Min: api.Vec3{X: block.AABB.Min[0], Y: block.AABB.Min[1], Z: block.AABB.Min[2]},
				Max: api.Vec3{X: block.AABB.Max[0], Y: block.AABB.Max[1], Z: block.AABB.Max[2]},
			}
		}

		w.palette = append(w.palette, entry)
		w.names[block.Name] = api.BlockID(i)
	}

	ground, ok := w.names[cfg.GroundBlock]
	if !ok {
		return nil, errors.NotFound(errors.PhaseParse, "ground block", cfg.GroundBlock)
	}
	w.groundBlock = ground

	return w, nil
}

// LoadStaticWorld reads a WorldConfig YAML file and builds the world.
func LoadStaticWorld(path string) (*StaticWorld, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.ParseFailed("world file "+path, err)
	}
	var cfg WorldConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, errors.ParseFailed("world file "+path, err)
	}
	return NewStaticWorld(cfg)
}

// Gateway returns a Gateway backed entirely by this world.
func (w *StaticWorld) Gateway() *Gateway {
	return &Gateway{Blocks: w, World: w, Transforms: w, Models: w}
}

// BlockID resolves a palette name.
func (w *StaticWorld) BlockID(name string) (api.BlockID, bool) {
	id, ok := w.names[name]
	return id, ok
}

func (w *StaticWorld) BlockName(id api.BlockID) (string, bool) {
	if int(id) >= len(w.palette) {
		return "", false
	}
	return w.palette[id].name, true
}

func (w *StaticWorld) BlockFriction(id api.BlockID) (api.Friction, bool) {
	if int(id) >= len(w.palette) {
		return api.Friction{}, false
	}
	return w.palette[id].friction, true
}

func (w *StaticWorld) BlockAABB(id api.BlockID) (api.AABB, bool) {
	if int(id) >= len(w.palette) || w.palette[id].aabb == nil {
		return api.AABB{}, false
	}
	return *w.palette[id].aabb, true
}

func (w *StaticWorld) BlockAt(pos api.IVec3) (api.BlockID, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if id, ok := w.overrides[pos]; ok {
		return id, true
	}
	if pos.Y <= w.groundLevel {
		return w.groundBlock, true
	}
	return 0, true
}

// SetBlock places a block, overriding the flat ground.
func (w *StaticWorld) SetBlock(pos api.IVec3, id api.BlockID) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.overrides[pos] = id
}

func (w *StaticWorld) PlayerTransform() api.Transform {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.player
}

func (w *StaticWorld) SetPlayerTransform(t api.Transform) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.player = t
}

func (w *StaticWorld) CameraTransform() api.Transform {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.camera
}

func (w *StaticWorld) SetCameraTransform(t api.Transform) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.camera = t
}

// PlaceModel registers a model with a local-space box and a world
// transform.
func (w *StaticWorld) PlaceModel(id uint32, transform api.Transform, aabb api.AABB) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.models[id] = placedModel{transform: transform, aabb: aabb}
}

// RemoveModel drops a placed model.
func (w *StaticWorld) RemoveModel(id uint32) {
	w.mu.Lock()
	defer w.mu.Unlock()
	delete(w.models, id)
}

func (w *StaticWorld) ModelsIn(min, max api.Vec3) []uint32 {
	w.mu.RLock()
	defer w.mu.RUnlock()

	var ids []uint32
	for id, model := range w.models {
		box := TransformAABB(model.transform, model.aabb)
		if boxesOverlap(box.Min, box.Max, min, max) {
			ids = append(ids, id)
		}
	}
	slices.Sort(ids)
	return ids
}

func (w *StaticWorld) ModelAABB(id uint32) (api.AABB, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	model, ok := w.models[id]
	if !ok {
		return api.AABB{}, false
	}
	return TransformAABB(model.transform, model.aabb), true
}

func boxesOverlap(minA, maxA, minB, maxB api.Vec3) bool {
	return minA.X <= maxB.X && maxA.X >= minB.X &&
		minA.Y <= maxB.Y && maxA.Y >= minB.Y &&
		minA.Z <= maxB.Z && maxA.Z >= minB.Z
}

var (
	_ BlockRegistry  = (*StaticWorld)(nil)
	_ WorldMap       = (*StaticWorld)(nil)
	_ TransformStore = (*StaticWorld)(nil)
	_ ModelIndex     = (*StaticWorld)(nil)
)
