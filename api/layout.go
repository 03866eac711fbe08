package api

// Byte layouts of boundary records in guest linear memory. All encodings are
// little-endian; offsets follow natural alignment, so records containing f64
// fields are 8-aligned.
//
// These constants are part of the contract: changing any of them is a
// breaking change.
const (
	// Vec3: x @0, y @4, z @8.
	Vec3Size = 12

	// IVec3: x @0, y @4, z @8.
	IVec3Size = 12

	// DQuat: x @0, y @8, z @16, w @24.
	DQuatSize = 32

	// Transform: translation @0, rotation @16 (8-aligned), scale @48,
	// tail padding to a multiple of 8.
	TransformSize           = 64
	TransformTranslationOff = 0
	TransformRotationOff    = 16
	TransformScaleOff       = 48

	// KeyboardEvent: key @0 (u8), released @1 (u8 bool), repeat @2
	// (u8 bool), one byte padding. Lists of events use this stride.
	KeyboardEventStride = 4

	// SurfaceFriction: front, back, right, left, top, bottom, each f32.
	SurfaceFrictionSize = 24

	// Friction: has-surface @0 (u32 discriminant), surface payload @4
	// (zeroed when absent), drag @28.
	FrictionSize       = 40
	FrictionSurfaceOff = 4
	FrictionDragOff    = 28

	// AABB: min @0, max @12.
	AABBSize   = 24
	AABBMaxOff = 12

	// option<aabb> return area: discriminant @0 (u32), min @4, max @16.
	OptionAABBSize   = 28
	OptionAABBMinOff = 4
	OptionAABBMaxOff = 16

	// Return area for host-allocated lists and strings: ptr @0 (u32),
	// len @4 (u32, in elements for lists and bytes for strings).
	ListReturnSize = 8

	// MaxServerDataLen caps one server payload delivered to a guest.
	MaxServerDataLen = 1 << 20

	// MaxKeyboardEvents caps an instance's pending keyboard queue. Older
	// events are dropped first when the cap is exceeded.
	MaxKeyboardEvents = 256
)
