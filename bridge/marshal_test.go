package bridge

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/blockpeak/mod-sandbox/api"
	"github.com/blockpeak/mod-sandbox/errors"
)

// fakeMemory is a flat in-process linear memory.
type fakeMemory struct {
	buf []byte
}

func newFakeMemory(size uint32) *fakeMemory {
	return &fakeMemory{buf: make([]byte, size)}
}

func (m *fakeMemory) check(offset, length uint32) error {
	if uint64(offset)+uint64(length) > uint64(len(m.buf)) {
		return errors.OutOfBounds(errors.PhaseMarshal, "fake memory access")
	}
	return nil
}

func (m *fakeMemory) Read(offset, length uint32) ([]byte, error) {
	if err := m.check(offset, length); err != nil {
		return nil, err
	}
	out := make([]byte, length)
	copy(out, m.buf[offset:])
	return out, nil
}

func (m *fakeMemory) Write(offset uint32, data []byte) error {
	if err := m.check(offset, uint32(len(data))); err != nil {
		return err
	}
	copy(m.buf[offset:], data)
	return nil
}

func (m *fakeMemory) ReadU8(offset uint32) (uint8, error) {
	if err := m.check(offset, 1); err != nil {
		return 0, err
	}
	return m.buf[offset], nil
}

func (m *fakeMemory) ReadU16(offset uint32) (uint16, error) {
	if err := m.check(offset, 2); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(m.buf[offset:]), nil
}

func (m *fakeMemory) ReadU32(offset uint32) (uint32, error) {
	if err := m.check(offset, 4); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(m.buf[offset:]), nil
}

func (m *fakeMemory) ReadU64(offset uint32) (uint64, error) {
	if err := m.check(offset, 8); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(m.buf[offset:]), nil
}

func (m *fakeMemory) WriteU8(offset uint32, v uint8) error {
	if err := m.check(offset, 1); err != nil {
		return err
	}
	m.buf[offset] = v
	return nil
}

func (m *fakeMemory) WriteU16(offset uint32, v uint16) error {
	if err := m.check(offset, 2); err != nil {
		return err
	}
	binary.LittleEndian.PutUint16(m.buf[offset:], v)
	return nil
}

func (m *fakeMemory) WriteU32(offset uint32, v uint32) error {
	if err := m.check(offset, 4); err != nil {
		return err
	}
	binary.LittleEndian.PutUint32(m.buf[offset:], v)
	return nil
}

func (m *fakeMemory) WriteU64(offset uint32, v uint64) error {
	if err := m.check(offset, 8); err != nil {
		return err
	}
	binary.LittleEndian.PutUint64(m.buf[offset:], v)
	return nil
}

// bumpAllocator hands out sequential regions.
type bumpAllocator struct {
	next uint32
}

func (a *bumpAllocator) Alloc(size, align uint32) (uint32, error) {
	if align > 1 {
		a.next = (a.next + align - 1) &^ (align - 1)
	}
	ptr := a.next
	a.next += size
	return ptr, nil
}

func sampleTransform() api.Transform {
	return api.Transform{
		Translation: api.Vec3{X: 1.5, Y: -2, Z: 64},
		Rotation:    api.DQuat{X: 0.5, Y: 0.5, Z: 0.5, W: 0.5},
		Scale:       api.Vec3{X: 1, Y: 2, Z: 3},
	}
}

func TestTransformRoundTrip(t *testing.T) {
	mem := newFakeMemory(256)
	want := sampleTransform()

	if err := WriteTransform(mem, 16, want); err != nil {
		t.Fatalf("write: %v", err)
	}
	got, err := ReadTransform(mem, 16)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if got != want {
		t.Errorf("round trip = %+v, want %+v", got, want)
	}

	if _, err := ReadTransform(mem, 250); err == nil {
		t.Error("expected out of bounds read to fail")
	}
}

func TestTransformLayout(t *testing.T) {
	buf := EncodeTransform(sampleTransform())
	if len(buf) != api.TransformSize {
		t.Fatalf("size = %d, want %d", len(buf), api.TransformSize)
	}

	x := math.Float32frombits(binary.LittleEndian.Uint32(buf[api.TransformTranslationOff:]))
	if x != 1.5 {
		t.Errorf("translation.x = %v, want 1.5", x)
	}
	rw := math.Float64frombits(binary.LittleEndian.Uint64(buf[api.TransformRotationOff+24:]))
	if rw != 0.5 {
		t.Errorf("rotation.w = %v, want 0.5", rw)
	}
	sz := math.Float32frombits(binary.LittleEndian.Uint32(buf[api.TransformScaleOff+8:]))
	if sz != 3 {
		t.Errorf("scale.z = %v, want 3", sz)
	}
}

func TestSanitizeTransform(t *testing.T) {
	valid := sampleTransform()
	got, err := SanitizeTransform(valid)
	if err != nil {
		t.Fatalf("valid transform rejected: %v", err)
	}
	if got != valid {
		t.Errorf("already normalized transform changed: %+v", got)
	}

	// An unnormalized rotation comes back unit length.
	scaled := valid
	scaled.Rotation = api.DQuat{X: 1, Y: 1, Z: 1, W: 1}
	got, err = SanitizeTransform(scaled)
	if err != nil {
		t.Fatalf("scaled rotation rejected: %v", err)
	}
	if norm := got.Rotation.Norm(); math.Abs(norm-1) > 1e-12 {
		t.Errorf("rotation norm = %v, want 1", norm)
	}

	bad := []api.Transform{
		{Translation: api.Vec3{X: float32(math.NaN())}, Rotation: api.IdentityQuat(), Scale: api.Vec3{X: 1, Y: 1, Z: 1}},
		{Translation: api.Vec3{}, Rotation: api.IdentityQuat(), Scale: api.Vec3{X: float32(math.Inf(1)), Y: 1, Z: 1}},
		{Translation: api.Vec3{}, Rotation: api.DQuat{X: math.NaN()}, Scale: api.Vec3{X: 1, Y: 1, Z: 1}},
		{Translation: api.Vec3{}, Rotation: api.DQuat{}, Scale: api.Vec3{X: 1, Y: 1, Z: 1}},
	}
	for i, tf := range bad {
		if _, err := SanitizeTransform(tf); err == nil {
			t.Errorf("case %d: malformed transform accepted", i)
		}
	}
}

func TestEncodeFriction(t *testing.T) {
	withSurface := api.Friction{
		Surface: &api.SurfaceFriction{Front: 1, Back: 2, Right: 3, Left: 4, Top: 5, Bottom: 6},
		Drag:    api.Vec3{X: 7, Y: 8, Z: 9},
	}
	buf := EncodeFriction(withSurface)
	if len(buf) != api.FrictionSize {
		t.Fatalf("size = %d, want %d", len(buf), api.FrictionSize)
	}
	if binary.LittleEndian.Uint32(buf) != 1 {
		t.Error("surface discriminant not set")
	}
	bottom := math.Float32frombits(binary.LittleEndian.Uint32(buf[api.FrictionSurfaceOff+20:]))
	if bottom != 6 {
		t.Errorf("surface.bottom = %v, want 6", bottom)
	}
	dragX := math.Float32frombits(binary.LittleEndian.Uint32(buf[api.FrictionDragOff:]))
	if dragX != 7 {
		t.Errorf("drag.x = %v, want 7", dragX)
	}

	buf = EncodeFriction(api.Friction{Drag: api.Vec3{X: 1, Y: 1, Z: 1}})
	if binary.LittleEndian.Uint32(buf) != 0 {
		t.Error("absent surface discriminant set")
	}
	for off := api.FrictionSurfaceOff; off < api.FrictionDragOff; off += 4 {
		if binary.LittleEndian.Uint32(buf[off:]) != 0 {
			t.Errorf("absent surface payload not zeroed at %d", off)
		}
	}
}

func TestWriteOptionAABB(t *testing.T) {
	mem := newFakeMemory(128)
	box := api.AABB{Min: api.Vec3{X: -1, Y: -2, Z: -3}, Max: api.Vec3{X: 1, Y: 2, Z: 3}}

	if err := WriteOptionAABB(mem, 0, box, true); err != nil {
		t.Fatalf("write present: %v", err)
	}
	if got, _ := mem.ReadU32(0); got != 1 {
		t.Error("present discriminant not set")
	}
	maxZ, _ := mem.ReadU32(api.OptionAABBMaxOff + 8)
	if math.Float32frombits(maxZ) != 3 {
		t.Errorf("max.z = %v, want 3", math.Float32frombits(maxZ))
	}

	if err := WriteOptionAABB(mem, 0, box, false); err != nil {
		t.Fatalf("write absent: %v", err)
	}
	for off := uint32(0); off < api.OptionAABBSize; off += 4 {
		if got, _ := mem.ReadU32(off); got != 0 {
			t.Errorf("absent option not zeroed at %d", off)
		}
	}
}

func TestEncodeKeyboardEvents(t *testing.T) {
	events := []api.KeyboardEvent{
		{Key: api.KeyW},
		{Key: api.KeySpace, Released: true},
		{Key: api.KeyShift, Repeat: true},
	}
	buf := EncodeKeyboardEvents(events)
	if len(buf) != 3*api.KeyboardEventStride {
		t.Fatalf("size = %d, want %d", len(buf), 3*api.KeyboardEventStride)
	}
	second := buf[api.KeyboardEventStride : 2*api.KeyboardEventStride]
	if second[0] != byte(api.KeySpace) || second[1] != 1 || second[2] != 0 {
		t.Errorf("second event = %v", second)
	}
}

func TestReadString(t *testing.T) {
	mem := newFakeMemory(64)
	msg := "block näme"
	if err := mem.Write(8, []byte(msg)); err != nil {
		t.Fatalf("write: %v", err)
	}

	got, err := ReadString(mem, 8, uint32(len(msg)))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if got != msg {
		t.Errorf("got %q, want %q", got, msg)
	}

	if got, err := ReadString(mem, 0, 0); err != nil || got != "" {
		t.Errorf("empty string = (%q, %v)", got, err)
	}

	if err := mem.Write(32, []byte{0xFF, 0xFE}); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := ReadString(mem, 32, 2); err == nil {
		t.Error("expected invalid UTF-8 to be rejected")
	}
}

func TestWriteList(t *testing.T) {
	mem := newFakeMemory(256)
	alloc := &bumpAllocator{next: 64}

	data := EncodeModelIDs([]uint32{10, 20, 30})
	if err := WriteList(mem, alloc, 8, data, 3, 4); err != nil {
		t.Fatalf("write list: %v", err)
	}
	ptr, _ := mem.ReadU32(8)
	count, _ := mem.ReadU32(12)
	if ptr != 64 || count != 3 {
		t.Fatalf("return area = (%d, %d), want (64, 3)", ptr, count)
	}
	if got, _ := mem.ReadU32(ptr + 4); got != 20 {
		t.Errorf("element 1 = %d, want 20", got)
	}

	// Zero-length lists write a null pointer without allocating.
	if err := WriteList(mem, alloc, 32, nil, 0, 4); err != nil {
		t.Fatalf("write empty list: %v", err)
	}
	ptr, _ = mem.ReadU32(32)
	count, _ = mem.ReadU32(36)
	if ptr != 0 || count != 0 {
		t.Errorf("empty return area = (%d, %d), want (0, 0)", ptr, count)
	}
}
