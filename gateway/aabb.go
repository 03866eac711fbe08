package gateway

import (
	"math"

	"github.com/blockpeak/mod-sandbox/api"
)

type vec3d struct{ x, y, z float64 }

func (v vec3d) add(o vec3d) vec3d { return vec3d{v.x + o.x, v.y + o.y, v.z + o.z} }

func (v vec3d) mul(o vec3d) vec3d { return vec3d{v.x * o.x, v.y * o.y, v.z * o.z} }

func (v vec3d) scale(s float64) vec3d { return vec3d{v.x * s, v.y * s, v.z * s} }

func (v vec3d) abs() vec3d { return vec3d{math.Abs(v.x), math.Abs(v.y), math.Abs(v.z)} }

func (v vec3d) sum() float64 { return v.x + v.y + v.z }

// mat3d is column major: multiplying a vector combines the columns.
type mat3d struct{ x, y, z vec3d }

func (m mat3d) mulVec(v vec3d) vec3d {
	return m.x.scale(v.x).add(m.y.scale(v.y)).add(m.z.scale(v.z))
}

func rotationMatrix(q api.DQuat) mat3d {
	x, y, z, w := q.X, q.Y, q.Z, q.W
	return mat3d{
		x: vec3d{1 - 2*(y*y+z*z), 2 * (x*y + z*w), 2 * (x*z - y*w)},
		y: vec3d{2 * (x*y - z*w), 1 - 2*(x*x+z*z), 2 * (y*z + x*w)},
		z: vec3d{2 * (x*z + y*w), 2 * (y*z - x*w), 1 - 2*(x*x+y*y)},
	}
}

// TransformAABB applies a transform to a local-space box and returns the
// world-space box. A rotated box normally inflates its axis-aligned bounds
// (a square at 45 degrees projects sqrt(2)/2 of each extent onto each
// axis); here the absolute rotation columns are normalized to sum 1 so
// the result keeps constant volume, which keeps physics queries stable
// under rotation.
func TransformAABB(t api.Transform, box api.AABB) api.AABB {
	q, _ := t.Rotation.Normalized()
	rot := rotationMatrix(q)
	absRot := mat3d{
		x: rot.x.abs().scale(1 / rot.x.abs().sum()),
		y: rot.y.abs().scale(1 / rot.y.abs().sum()),
		z: rot.z.abs().scale(1 / rot.z.abs().sum()),
	}

	min := vec3From(box.Min)
	max := vec3From(box.Max)
	center := min.add(max).scale(0.5)
	half := max.add(min.scale(-1)).scale(0.5)

	scale := vec3From(t.Scale)
	center = rot.mulVec(center).mul(scale).add(vec3From(t.Translation))
	half = absRot.mulVec(half).mul(scale).abs()

	return api.AABB{
		Min: vec3To(center.add(half.scale(-1))),
		Max: vec3To(center.add(half)),
	}
}

func vec3From(v api.Vec3) vec3d {
	return vec3d{float64(v.X), float64(v.Y), float64(v.Z)}
}

func vec3To(v vec3d) api.Vec3 {
	return api.Vec3{X: float32(v.x), Y: float32(v.y), Z: float32(v.z)}
}
