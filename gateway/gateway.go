package gateway

import (
	"github.com/blockpeak/mod-sandbox/api"
)

// BlockRegistry resolves block ids to static block metadata.
type BlockRegistry interface {
	// BlockName returns the block's unique name. ok is false for ids
	// outside the registry.
	BlockName(id api.BlockID) (name string, ok bool)

	// BlockFriction returns the block's surface friction or drag.
	BlockFriction(id api.BlockID) (api.Friction, bool)

	// BlockAABB returns the block's collision box in local space. ok is
	// false for unknown ids and for blocks without a collision box.
	BlockAABB(id api.BlockID) (api.AABB, bool)
}

// WorldMap resolves world positions to block ids.
type WorldMap interface {
	// BlockAt returns the block at the given position. ok is false for
	// positions in unloaded or out-of-range space.
	BlockAt(pos api.IVec3) (api.BlockID, bool)
}

// TransformStore holds the live player and camera transforms. Reads
// observe the most recent write, including writes made earlier in the
// same tick.
type TransformStore interface {
	PlayerTransform() api.Transform
	SetPlayerTransform(api.Transform)
	CameraTransform() api.Transform
	SetCameraTransform(api.Transform)
}

// ModelIndex answers spatial queries over placed models.
type ModelIndex interface {
	// ModelsIn returns the ids of models whose world-space boxes
	// intersect the query box, in ascending id order.
	ModelsIn(min, max api.Vec3) []uint32

	// ModelAABB returns a model's world-space box.
	ModelAABB(id uint32) (api.AABB, bool)
}

// DefaultFriction is returned for block ids the registry does not know.
// Unit drag leaves movement unmodified.
var DefaultFriction = api.Friction{Drag: api.Vec3{X: 1, Y: 1, Z: 1}}

// Gateway bundles the collaborator contracts into the single handle the
// bridge queries on behalf of a guest.
type Gateway struct {
	Blocks     BlockRegistry
	World      WorldMap
	Transforms TransformStore
	Models     ModelIndex
}

// Block looks up the block at pos.
func (g *Gateway) Block(pos api.IVec3) (api.BlockID, bool) {
	if g.World == nil {
		return 0, false
	}
	return g.World.BlockAt(pos)
}

// BlockName resolves id to its name, or "unknown" for ids outside the
// registry.
func (g *Gateway) BlockName(id api.BlockID) string {
	if g.Blocks == nil {
		return "unknown"
	}
	name, ok := g.Blocks.BlockName(id)
	if !ok {
		return "unknown"
	}
	return name
}

// BlockFriction resolves id to its friction, falling back to
// DefaultFriction for unknown ids.
func (g *Gateway) BlockFriction(id api.BlockID) api.Friction {
	if g.Blocks == nil {
		return DefaultFriction
	}
	friction, ok := g.Blocks.BlockFriction(id)
	if !ok {
		return DefaultFriction
	}
	return friction
}

// BlockAABB resolves id to its collision box.
func (g *Gateway) BlockAABB(id api.BlockID) (api.AABB, bool) {
	if g.Blocks == nil {
		return api.AABB{}, false
	}
	return g.Blocks.BlockAABB(id)
}

// PlayerTransform returns the live player transform.
func (g *Gateway) PlayerTransform() api.Transform {
	if g.Transforms == nil {
		return api.IdentityTransform()
	}
	return g.Transforms.PlayerTransform()
}

// SetPlayerTransform overwrites the player transform.
func (g *Gateway) SetPlayerTransform(t api.Transform) {
	if g.Transforms != nil {
		g.Transforms.SetPlayerTransform(t)
	}
}

// CameraTransform returns the live camera transform.
func (g *Gateway) CameraTransform() api.Transform {
	if g.Transforms == nil {
		return api.IdentityTransform()
	}
	return g.Transforms.CameraTransform()
}

// SetCameraTransform overwrites the camera transform.
func (g *Gateway) SetCameraTransform(t api.Transform) {
	if g.Transforms != nil {
		g.Transforms.SetCameraTransform(t)
	}
}

// ModelsIn returns the ids of models intersecting the query box in
// ascending id order.
func (g *Gateway) ModelsIn(min, max api.Vec3) []uint32 {
	if g.Models == nil {
		return nil
	}
	return g.Models.ModelsIn(min, max)
}

// ModelAABB returns a model's world-space box.
func (g *Gateway) ModelAABB(id uint32) (api.AABB, bool) {
	if g.Models == nil {
		return api.AABB{}, false
	}
	return g.Models.ModelAABB(id)
}
