package api

import "math"

// Vec3 is a three-component single-precision vector. Positions, scales, and
// AABB corners cross the boundary as Vec3.
type Vec3 struct {
	X float32
	Y float32
	Z float32
}

// Finite reports whether every component is a finite number.
func (v Vec3) Finite() bool {
	return finite32(v.X) && finite32(v.Y) && finite32(v.Z)
}

// IVec3 is a three-component integer vector, used for block positions.
type IVec3 struct {
	X int32
	Y int32
	Z int32
}

// DQuat is a rotation quaternion at double precision. The boundary carries
// rotations as f64 so the contract never depends on the field layout of the
// host's SIMD-optimized single-precision rotation type.
type DQuat struct {
	X float64
	Y float64
	Z float64
	W float64
}

// Finite reports whether every component is a finite number.
func (q DQuat) Finite() bool {
	return finite64(q.X) && finite64(q.Y) && finite64(q.Z) && finite64(q.W)
}

// Norm returns the quaternion's euclidean length.
func (q DQuat) Norm() float64 {
	return math.Sqrt(q.X*q.X + q.Y*q.Y + q.Z*q.Z + q.W*q.W)
}

// Normalized returns the unit quaternion with q's orientation. The second
// return is false for a zero (or near-zero) quaternion, which has no
// orientation.
func (q DQuat) Normalized() (DQuat, bool) {
	n := q.Norm()
	if n < 1e-9 {
		return DQuat{W: 1}, false
	}
	return DQuat{X: q.X / n, Y: q.Y / n, Z: q.Z / n, W: q.W / n}, true
}

// IdentityQuat returns the identity rotation.
func IdentityQuat() DQuat {
	return DQuat{W: 1}
}

// Transform is a rigid/scaled placement of the player, the camera, or a
// model.
type Transform struct {
	Translation Vec3
	Rotation    DQuat
	Scale       Vec3
}

// IdentityTransform returns a transform with no translation, no rotation,
// and unit scale.
func IdentityTransform() Transform {
	return Transform{
		Rotation: IdentityQuat(),
		Scale:    Vec3{X: 1, Y: 1, Z: 1},
	}
}

// AABB is an axis-aligned bounding box given by its two corners.
type AABB struct {
	Min Vec3
	Max Vec3
}

// BlockID identifies a block type within the currently loaded world's block
// palette. It is stable for the lifetime of that palette and opaque to
// guests.
type BlockID uint16

// EntityID uniquely refers to a live world entity for the lifetime of that
// entity. Opaque to guests; it never crosses the boundary as an address.
type EntityID uint64

// SurfaceFriction carries independent friction coefficients for each face of
// a block.
type SurfaceFriction struct {
	Front  float32
	Back   float32
	Right  float32
	Left   float32
	Top    float32
	Bottom float32
}

// Friction describes how a block resists movement. Surface is nil for blocks
// that have no solid surfaces (e.g. fluids), in which case only Drag applies.
type Friction struct {
	Surface *SurfaceFriction
	Drag    Vec3
}

func finite32(f float32) bool {
	return !math.IsNaN(float64(f)) && !math.IsInf(float64(f), 0)
}

func finite64(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
