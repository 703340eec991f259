//go:build linux

package mmio

import (
	"fmt"
	"os"
	"sync/atomic"
	"unsafe"

	"golang.org/x/sys/unix"

	"github.com/clktmr/cheshire/soc"
)

const devMem = "/dev/mem"

// Window is a range of physical addresses mapped into the process from
// /dev/mem. It allows bringing up a board from a Linux host that shares the
// bus, e.g. a management core next to the FPGA.
type Window struct {
	f    *os.File
	base uintptr
	mem  []byte // mapping, starts page aligned at base-pad
	pad  uintptr
}

// OpenDevMem maps [base, base+size) uncached.
func OpenDevMem(base, size uintptr) (*Window, error) {
	if size == 0 {
		return nil, fmt.Errorf("%w: empty window at 0x%x", soc.ErrInvalidAddress, base)
	}
	f, err := os.OpenFile(devMem, os.O_RDWR|os.O_SYNC, 0)
	if err != nil {
		return nil, err
	}
	pad := base & uintptr(os.Getpagesize()-1)
	mem, err := unix.Mmap(int(f.Fd()), int64(base-pad), int(size+pad), unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("%s: %v", devMem, err)
	}
	return &Window{f: f, base: base, mem: mem, pad: pad}, nil
}

func (w *Window) Close() error {
	err := unix.Munmap(w.mem)
	if cerr := w.f.Close(); err == nil {
		err = cerr
	}
	return err
}

func (w *Window) ptr(addr uintptr, size int) unsafe.Pointer {
	off := addr - w.base + w.pad
	if addr < w.base || off+uintptr(size) > uintptr(len(w.mem)) || addr%uintptr(size) != 0 {
		panic(&BusError{addr, size})
	}
	return unsafe.Pointer(&w.mem[off])
}

func (w *Window) Load8(addr uintptr) uint8       { return *(*uint8)(w.ptr(addr, 1)) }
func (w *Window) Store8(addr uintptr, v uint8)   { *(*uint8)(w.ptr(addr, 1)) = v }
func (w *Window) Load16(addr uintptr) uint16     { return *(*uint16)(w.ptr(addr, 2)) }
func (w *Window) Store16(addr uintptr, v uint16) { *(*uint16)(w.ptr(addr, 2)) = v }

func (w *Window) Load32(addr uintptr) uint32 {
	return atomic.LoadUint32((*uint32)(w.ptr(addr, 4)))
}

func (w *Window) Store32(addr uintptr, v uint32) {
	atomic.StoreUint32((*uint32)(w.ptr(addr, 4)), v)
}

func (w *Window) Load64(addr uintptr) uint64 {
	return atomic.LoadUint64((*uint64)(w.ptr(addr, 8)))
}

func (w *Window) Store64(addr uintptr, v uint64) {
	atomic.StoreUint64((*uint64)(w.ptr(addr, 8)), v)
}

// Load implements Device, so windows can be mounted on a Map.
func (w *Window) Load(off uintptr, size int) uint64 {
	addr := w.base + off
	switch size {
	case 1:
		return uint64(w.Load8(addr))
	case 2:
		return uint64(w.Load16(addr))
	case 4:
		return uint64(w.Load32(addr))
	}
	return w.Load64(addr)
}

func (w *Window) Store(off uintptr, size int, v uint64) {
	addr := w.base + off
	switch size {
	case 1:
		w.Store8(addr, uint8(v))
	case 2:
		w.Store16(addr, uint16(v))
	case 4:
		w.Store32(addr, uint32(v))
	default:
		w.Store64(addr, v)
	}
}
