package mmio

import "encoding/binary"

// Region is a block of plain little-endian registers without side effects.
// Reads return what was last written.
type Region struct {
	mem []byte
}

func NewRegion(size uintptr) *Region {
	return &Region{mem: make([]byte, size)}
}

// Bytes returns the region's backing memory.
func (r *Region) Bytes() []byte { return r.mem }

func (r *Region) Load(off uintptr, size int) uint64 {
	p := r.mem[off : off+uintptr(size)]
	switch size {
	case 1:
		return uint64(p[0])
	case 2:
		return uint64(binary.LittleEndian.Uint16(p))
	case 4:
		return uint64(binary.LittleEndian.Uint32(p))
	default:
		return binary.LittleEndian.Uint64(p)
	}
}

func (r *Region) Store(off uintptr, size int, v uint64) {
	p := r.mem[off : off+uintptr(size)]
	switch size {
	case 1:
		p[0] = byte(v)
	case 2:
		binary.LittleEndian.PutUint16(p, uint16(v))
	case 4:
		binary.LittleEndian.PutUint32(p, uint32(v))
	default:
		binary.LittleEndian.PutUint64(p, v)
	}
}
