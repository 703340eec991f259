package mmio

import (
	"fmt"
	"slices"
	"sync"

	"github.com/clktmr/cheshire/debug"
	"github.com/clktmr/cheshire/soc"
)

type window struct {
	base, size uintptr
	dev        Device
}

// Map decodes physical addresses onto devices. It implements Bus and is the
// backbone of the simulator. Accesses are serialized like on a single
// interconnect, so devices see one access at a time.
type Map struct {
	mu      sync.Mutex
	windows []window // sorted by base
	stores  int
}

// Mount places dev at [base, base+size).
func (m *Map) Mount(base, size uintptr, dev Device) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if size == 0 || base+size < base {
		return fmt.Errorf("%w: 0x%x+0x%x", soc.ErrInvalidAddress, base, size)
	}
	i, _ := slices.BinarySearchFunc(m.windows, base, func(w window, a uintptr) int {
		switch {
		case w.base < a:
			return -1
		case w.base > a:
			return 1
		}
		return 0
	})
	if i > 0 && m.windows[i-1].base+m.windows[i-1].size > base {
		return fmt.Errorf("%w: 0x%x overlaps 0x%x", soc.ErrInvalidAddress, base, m.windows[i-1].base)
	}
	if i < len(m.windows) && base+size > m.windows[i].base {
		return fmt.Errorf("%w: 0x%x overlaps 0x%x", soc.ErrInvalidAddress, base, m.windows[i].base)
	}
	m.windows = slices.Insert(m.windows, i, window{base, size, dev})
	return nil
}

// Stores returns the number of stores performed on the map so far.
func (m *Map) Stores() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stores
}

func (m *Map) decode(addr uintptr, size int) (Device, uintptr) {
	debug.Assert(addr%uintptr(size) == 0, "mmio: unaligned %d byte access at %#x", size, addr)
	i, found := slices.BinarySearchFunc(m.windows, addr, func(w window, a uintptr) int {
		switch {
		case w.base+w.size <= a:
			return -1
		case w.base > a:
			return 1
		}
		return 0
	})
	if !found || addr+uintptr(size) > m.windows[i].base+m.windows[i].size {
		panic(&BusError{addr, size})
	}
	w := m.windows[i]
	return w.dev, addr - w.base
}

func (m *Map) load(addr uintptr, size int) uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	dev, off := m.decode(addr, size)
	return dev.Load(off, size)
}

func (m *Map) store(addr uintptr, size int, v uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	dev, off := m.decode(addr, size)
	m.stores++
	dev.Store(off, size, v)
}

func (m *Map) Load8(addr uintptr) uint8       { return uint8(m.load(addr, 1)) }
func (m *Map) Store8(addr uintptr, v uint8)   { m.store(addr, 1, uint64(v)) }
func (m *Map) Load16(addr uintptr) uint16     { return uint16(m.load(addr, 2)) }
func (m *Map) Store16(addr uintptr, v uint16) { m.store(addr, 2, uint64(v)) }
func (m *Map) Load32(addr uintptr) uint32     { return uint32(m.load(addr, 4)) }
func (m *Map) Store32(addr uintptr, v uint32) { m.store(addr, 4, uint64(v)) }
func (m *Map) Load64(addr uintptr) uint64     { return m.load(addr, 8) }
func (m *Map) Store64(addr uintptr, v uint64) { m.store(addr, 8, v) }
