package engine

import (
	"fmt"
	"math"

	"github.com/tetratelabs/wazero/api"
)

// guestMemory wraps wazero memory with the typed accessors the ABI needs.
// All values are little-endian.
type guestMemory struct {
	mem api.Memory
}

func (m guestMemory) Read(offset, length uint32) ([]byte, error) {
	data, ok := m.mem.Read(offset, length)
	if !ok {
		return nil, fmt.Errorf("read out of bounds: offset=%d, length=%d", offset, length)
	}
	return data, nil
}

func (m guestMemory) Write(offset uint32, data []byte) error {
	if !m.mem.Write(offset, data) {
		return fmt.Errorf("write out of bounds: offset=%d, length=%d", offset, len(data))
	}
	return nil
}

func (m guestMemory) ReadI32(offset uint32) (int32, error) {
	val, ok := m.mem.ReadUint32Le(offset)
	if !ok {
		return 0, fmt.Errorf("read i32 out of bounds: offset=%d", offset)
	}
	return int32(val), nil
}

func (m guestMemory) ReadF64(offset uint32) (float64, error) {
	val, ok := m.mem.ReadFloat64Le(offset)
	if !ok {
		return 0, fmt.Errorf("read f64 out of bounds: offset=%d", offset)
	}
	return val, nil
}

func (m guestMemory) WriteF64s(offset uint32, xs []float64) error {
	for n, x := range xs {
		if !m.mem.WriteUint64Le(offset+uint32(n)*8, math.Float64bits(x)) {
			return fmt.Errorf("write f64 out of bounds: offset=%d", offset+uint32(n)*8)
		}
	}
	return nil
}

func (m guestMemory) ReadF64s(offset uint32, dst []float64) error {
	for n := range dst {
		x, err := m.ReadF64(offset + uint32(n)*8)
		if err != nil {
			return err
		}
		dst[n] = x
	}
	return nil
}

// WriteCString writes s plus a NUL terminator into a buffer of capacity
// bytes, truncating s if needed. The rest of the buffer is zeroed.
func (m guestMemory) WriteCString(offset uint32, s string, capacity uint32) error {
	if capacity == 0 {
		return nil
	}
	buf := make([]byte, capacity)
	copy(buf[:capacity-1], s)
	return m.Write(offset, buf)
}

// ReadCString reads up to capacity bytes and cuts at the first NUL.
func (m guestMemory) ReadCString(offset, capacity uint32) (string, error) {
	data, err := m.Read(offset, capacity)
	if err != nil {
		return "", err
	}
	for n, b := range data {
		if b == 0 {
			return string(data[:n]), nil
		}
	}
	return string(data), nil
}
