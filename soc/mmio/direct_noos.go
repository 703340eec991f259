//go:build noos

package mmio

import (
	"embedded/mmio"
	"unsafe"
)

// Direct accesses physical addresses. Only usable on the bare-metal target
// where the firmware runs with translation off.
type Direct struct{}

func (Direct) Load8(addr uintptr) uint8 { return (*mmio.U8)(unsafe.Pointer(addr)).Load() }
func (Direct) Store8(addr uintptr, v uint8) {
	(*mmio.U8)(unsafe.Pointer(addr)).Store(v)
}
func (Direct) Load16(addr uintptr) uint16 { return (*mmio.U16)(unsafe.Pointer(addr)).Load() }
func (Direct) Store16(addr uintptr, v uint16) {
	(*mmio.U16)(unsafe.Pointer(addr)).Store(v)
}
func (Direct) Load32(addr uintptr) uint32 { return (*mmio.U32)(unsafe.Pointer(addr)).Load() }
func (Direct) Store32(addr uintptr, v uint32) {
	(*mmio.U32)(unsafe.Pointer(addr)).Store(v)
}
func (Direct) Load64(addr uintptr) uint64 { return (*mmio.U64)(unsafe.Pointer(addr)).Load() }
func (Direct) Store64(addr uintptr, v uint64) {
	(*mmio.U64)(unsafe.Pointer(addr)).Store(v)
}
