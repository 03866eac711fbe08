package bridge

import (
	"encoding/binary"
	"math"
	"unicode/utf8"

	modsandbox "github.com/blockpeak/mod-sandbox"
	"github.com/blockpeak/mod-sandbox/api"
	"github.com/blockpeak/mod-sandbox/errors"
)

// Boundary records are encoded little-endian at the fixed offsets in
// api's layout constants. Records are read and written as whole buffers
// so each crossing costs one memory access.

func putVec3(buf []byte, v api.Vec3) {
	binary.LittleEndian.PutUint32(buf[0:], math.Float32bits(v.X))
	binary.LittleEndian.PutUint32(buf[4:], math.Float32bits(v.Y))
	binary.LittleEndian.PutUint32(buf[8:], math.Float32bits(v.Z))
}

func getVec3(buf []byte) api.Vec3 {
	return api.Vec3{
		X: math.Float32frombits(binary.LittleEndian.Uint32(buf[0:])),
		Y: math.Float32frombits(binary.LittleEndian.Uint32(buf[4:])),
		Z: math.Float32frombits(binary.LittleEndian.Uint32(buf[8:])),
	}
}

func putDQuat(buf []byte, q api.DQuat) {
	binary.LittleEndian.PutUint64(buf[0:], math.Float64bits(q.X))
	binary.LittleEndian.PutUint64(buf[8:], math.Float64bits(q.Y))
	binary.LittleEndian.PutUint64(buf[16:], math.Float64bits(q.Z))
	binary.LittleEndian.PutUint64(buf[24:], math.Float64bits(q.W))
}

func getDQuat(buf []byte) api.DQuat {
	return api.DQuat{
		X: math.Float64frombits(binary.LittleEndian.Uint64(buf[0:])),
		Y: math.Float64frombits(binary.LittleEndian.Uint64(buf[8:])),
		Z: math.Float64frombits(binary.LittleEndian.Uint64(buf[16:])),
		W: math.Float64frombits(binary.LittleEndian.Uint64(buf[24:])),
	}
}

// EncodeTransform renders t at the contract layout.
func EncodeTransform(t api.Transform) []byte {
	buf := make([]byte, api.TransformSize)
	putVec3(buf[api.TransformTranslationOff:], t.Translation)
	putDQuat(buf[api.TransformRotationOff:], t.Rotation)
	putVec3(buf[api.TransformScaleOff:], t.Scale)
	return buf
}

// DecodeTransform parses a transform from its contract layout.
func DecodeTransform(buf []byte) (api.Transform, error) {
	if len(buf) < api.TransformSize {
		return api.Transform{}, errors.OutOfBounds(errors.PhaseMarshal, "short transform buffer")
	}
	return api.Transform{
		Translation: getVec3(buf[api.TransformTranslationOff:]),
		Rotation:    getDQuat(buf[api.TransformRotationOff:]),
		Scale:       getVec3(buf[api.TransformScaleOff:]),
	}, nil
}

// WriteTransform writes t into guest memory at ptr.
func WriteTransform(mem modsandbox.Memory, ptr uint32, t api.Transform) error {
	return mem.Write(ptr, EncodeTransform(t))
}

// ReadTransform reads a transform from guest memory at ptr.
func ReadTransform(mem modsandbox.Memory, ptr uint32) (api.Transform, error) {
	buf, err := mem.Read(ptr, api.TransformSize)
	if err != nil {
		return api.Transform{}, err
	}
	return DecodeTransform(buf)
}

// SanitizeTransform validates a guest-supplied transform. Non-finite
// fields reject the whole record; the rotation is replaced by its
// normalized form, with a zero-length rotation rejected.
func SanitizeTransform(t api.Transform) (api.Transform, error) {
	if !t.Translation.Finite() {
		return api.Transform{}, errors.NonFinite([]string{"transform", "translation"}, t.Translation)
	}
	if !t.Scale.Finite() {
		return api.Transform{}, errors.NonFinite([]string{"transform", "scale"}, t.Scale)
	}
	if !t.Rotation.Finite() {
		return api.Transform{}, errors.NonFinite([]string{"transform", "rotation"}, t.Rotation)
	}
	rotation, ok := t.Rotation.Normalized()
	if !ok {
		return api.Transform{}, errors.NonFinite([]string{"transform", "rotation"}, t.Rotation)
	}
	t.Rotation = rotation
	return t, nil
}

// EncodeFriction renders f at the contract layout.
func EncodeFriction(f api.Friction) []byte {
	buf := make([]byte, api.FrictionSize)
	if f.Surface != nil {
		binary.LittleEndian.PutUint32(buf[0:], 1)
		s := f.Surface
		for i, v := range []float32{s.Front, s.Back, s.Right, s.Left, s.Top, s.Bottom} {
			binary.LittleEndian.PutUint32(buf[api.FrictionSurfaceOff+4*i:], math.Float32bits(v))
		}
	}
	putVec3(buf[api.FrictionDragOff:], f.Drag)
	return buf
}

// WriteFriction writes f into guest memory at ptr.
func WriteFriction(mem modsandbox.Memory, ptr uint32, f api.Friction) error {
	return mem.Write(ptr, EncodeFriction(f))
}

// EncodeAABB renders box at the contract layout.
func EncodeAABB(box api.AABB) []byte {
	buf := make([]byte, api.AABBSize)
	putVec3(buf, box.Min)
	putVec3(buf[api.AABBMaxOff:], box.Max)
	return buf
}

// WriteAABB writes box into guest memory at ptr.
func WriteAABB(mem modsandbox.Memory, ptr uint32, box api.AABB) error {
	return mem.Write(ptr, EncodeAABB(box))
}

// WriteOptionAABB writes an optional box into guest memory at ptr. The
// payload is zeroed when absent.
func WriteOptionAABB(mem modsandbox.Memory, ptr uint32, box api.AABB, present bool) error {
	buf := make([]byte, api.OptionAABBSize)
	if present {
		binary.LittleEndian.PutUint32(buf[0:], 1)
		putVec3(buf[api.OptionAABBMinOff:], box.Min)
		putVec3(buf[api.OptionAABBMaxOff:], box.Max)
	}
	return mem.Write(ptr, buf)
}

// EncodeKeyboardEvents renders events as a packed list at the contract
// stride.
func EncodeKeyboardEvents(events []api.KeyboardEvent) []byte {
	buf := make([]byte, len(events)*api.KeyboardEventStride)
	for i, ev := range events {
		off := i * api.KeyboardEventStride
		buf[off] = byte(ev.Key)
		if ev.Released {
			buf[off+1] = 1
		}
		if ev.Repeat {
			buf[off+2] = 1
		}
	}
	return buf
}

// EncodeModelIDs renders ids as a packed u32 list.
func EncodeModelIDs(ids []uint32) []byte {
	buf := make([]byte, len(ids)*4)
	for i, id := range ids {
		binary.LittleEndian.PutUint32(buf[4*i:], id)
	}
	return buf
}

// ReadString reads a guest string and validates it is UTF-8.
func ReadString(mem modsandbox.Memory, ptr, length uint32) (string, error) {
	if length == 0 {
		return "", nil
	}
	buf, err := mem.Read(ptr, length)
	if err != nil {
		return "", err
	}
	if !utf8.Valid(buf) {
		return "", errors.InvalidUTF8("string", buf)
	}
	return string(buf), nil
}

// WriteList allocates guest memory for data via alloc, copies data in,
// and writes {ptr, count} to the return area at retPtr. Zero-length
// lists write a null pointer.
func WriteList(mem modsandbox.Memory, alloc modsandbox.Allocator, retPtr uint32, data []byte, count uint32, align uint32) error {
	var dataPtr uint32
	if len(data) > 0 {
		ptr, err := alloc.Alloc(uint32(len(data)), align)
		if err != nil {
			return err
		}
		if err := mem.Write(ptr, data); err != nil {
			return err
		}
		dataPtr = ptr
	}

	ret := make([]byte, api.ListReturnSize)
	binary.LittleEndian.PutUint32(ret[0:], dataPtr)
	binary.LittleEndian.PutUint32(ret[4:], count)
	return mem.Write(retPtr, ret)
}
