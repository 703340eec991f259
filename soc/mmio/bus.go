// Package mmio provides access to memory mapped registers.
//
// Drivers never dereference register addresses themselves, they go through a
// Bus. On the bare-metal target the Bus is Direct, which accesses physical
// addresses. On a Linux host a Window maps the registers from /dev/mem, and
// the simulator decodes addresses onto device models with a Map.
package mmio

import "fmt"

// Bus performs sized, naturally aligned register accesses at physical
// addresses. Accesses are never merged, split or reordered by a Bus.
type Bus interface {
	Load8(addr uintptr) uint8
	Store8(addr uintptr, v uint8)
	Load16(addr uintptr) uint16
	Store16(addr uintptr, v uint16)
	Load32(addr uintptr) uint32
	Store32(addr uintptr, v uint32)
	Load64(addr uintptr) uint64
	Store64(addr uintptr, v uint64)
}

// Device is a register block decoded by a Map. Offsets are relative to the
// block's base address, size is 1, 2, 4 or 8 bytes.
type Device interface {
	Load(off uintptr, size int) uint64
	Store(off uintptr, size int, v uint64)
}

// BusError is the panic value for an access no device responds to. On real
// hardware this is an access fault.
type BusError struct {
	Addr uintptr
	Size int
}

func (e *BusError) Error() string {
	return fmt.Sprintf("mmio: bus error on %d byte access at 0x%x", e.Size, e.Addr)
}
