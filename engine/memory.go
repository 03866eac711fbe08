package engine

import (
	"fmt"

	"github.com/tetratelabs/wazero/api"

	modsandbox "github.com/blockpeak/mod-sandbox"
)

// guestMemory wraps wazero memory to implement modsandbox.Memory. Reads copy
// out of guest memory so the host never aliases it past the call boundary.
type guestMemory struct {
	mem api.Memory
}

func (m *guestMemory) Read(offset uint32, length uint32) ([]byte, error) {
	data, ok := m.mem.Read(offset, length)
	if !ok {
		return nil, fmt.Errorf("read out of bounds: offset=%d, length=%d", offset, length)
	}
	out := make([]byte, length)
	copy(out, data)
	return out, nil
}

func (m *guestMemory) Write(offset uint32, data []byte) error {
	ok := m.mem.Write(offset, data)
	if !ok {
		return fmt.Errorf("write out of bounds: offset=%d, length=%d", offset, len(data))
	}
	return nil
}

func (m *guestMemory) ReadU8(offset uint32) (uint8, error) {
	b, ok := m.mem.ReadByte(offset)
	if !ok {
		return 0, fmt.Errorf("read out of bounds: offset=%d", offset)
	}
	return b, nil
}

func (m *guestMemory) ReadU16(offset uint32) (uint16, error) {
	data, ok := m.mem.Read(offset, 2)
	if !ok {
		return 0, fmt.Errorf("read out of bounds: offset=%d", offset)
	}
	return uint16(data[0]) | uint16(data[1])<<8, nil
}

func (m *guestMemory) ReadU32(offset uint32) (uint32, error) {
	val, ok := m.mem.ReadUint32Le(offset)
	if !ok {
		return 0, fmt.Errorf("read out of bounds: offset=%d", offset)
	}
	return val, nil
}

func (m *guestMemory) ReadU64(offset uint32) (uint64, error) {
	val, ok := m.mem.ReadUint64Le(offset)
	if !ok {
		return 0, fmt.Errorf("read out of bounds: offset=%d", offset)
	}
	return val, nil
}

func (m *guestMemory) WriteU8(offset uint32, value uint8) error {
	return m.Write(offset, []byte{value})
}

func (m *guestMemory) WriteU16(offset uint32, value uint16) error {
	return m.Write(offset, []byte{byte(value), byte(value >> 8)})
}

func (m *guestMemory) WriteU32(offset uint32, value uint32) error {
	if ok := m.mem.WriteUint32Le(offset, value); !ok {
		return fmt.Errorf("write out of bounds: offset=%d", offset)
	}
	return nil
}

func (m *guestMemory) WriteU64(offset uint32, value uint64) error {
	if ok := m.mem.WriteUint64Le(offset, value); !ok {
		return fmt.Errorf("write out of bounds: offset=%d", offset)
	}
	return nil
}

func (m *guestMemory) Size() uint32 {
	if m.mem == nil {
		return 0
	}
	return m.mem.Size()
}

// WrapMemory adapts a wazero memory (e.g. the calling module inside a host
// function) to the copy-in/copy-out Memory interface.
func WrapMemory(mem api.Memory) modsandbox.Memory {
	return &guestMemory{mem: mem}
}

var _ modsandbox.Memory = (*guestMemory)(nil)
var _ modsandbox.MemorySizer = (*guestMemory)(nil)
var _ modsandbox.Allocator = (*GuestInstance)(nil)
