package aclint

import (
	"fmt"

	"github.com/clktmr/cheshire/soc"
	"github.com/clktmr/cheshire/soc/mmio"
	"github.com/clktmr/cheshire/soc/riscv"
)

const (
	MTimerMaxHarts = 4095

	mtimeSize = 8
	cmpStride = 8
)

// MTimerConfig describes the shared mtime counter running at Freq Hz and the
// mtimecmp registers of HartCount harts starting at FirstHart. Without
// Has64BitMMIO the 64-bit registers are accessed as two 32-bit halves.
type MTimerConfig struct {
	Freq         uint64       `yaml:"freq"`
	MtimeAddr    uintptr      `yaml:"mtimeAddr"`
	MtimeSize    uintptr      `yaml:"mtimeSize"`
	MtimecmpAddr uintptr      `yaml:"mtimecmpAddr"`
	MtimecmpSize uintptr      `yaml:"mtimecmpSize"`
	FirstHart    riscv.HartID `yaml:"firstHart"`
	HartCount    int          `yaml:"hartCount"`
	Has64BitMMIO bool         `yaml:"has64BitMMIO"`
}

func (c MTimerConfig) Validate() error {
	switch {
	case c.Freq == 0:
		return fmt.Errorf("mtimer: %w: zero frequency", soc.ErrGeometry)
	case c.MtimeAddr == 0 || c.MtimeAddr&0x7 != 0:
		return fmt.Errorf("mtimer: %w: mtime at 0x%x", soc.ErrInvalidAddress, c.MtimeAddr)
	case c.MtimecmpAddr == 0 || c.MtimecmpAddr&0x7 != 0:
		return fmt.Errorf("mtimer: %w: mtimecmp at 0x%x", soc.ErrInvalidAddress, c.MtimecmpAddr)
	case c.MtimeSize != mtimeSize:
		return fmt.Errorf("mtimer: %w: mtime size %d", soc.ErrGeometry, c.MtimeSize)
	case c.HartCount <= 0 || c.HartCount > MTimerMaxHarts:
		return fmt.Errorf("mtimer: %w: %d harts", soc.ErrGeometry, c.HartCount)
	case c.MtimecmpSize < cmpStride*uintptr(c.HartCount):
		return fmt.Errorf("mtimer: %w: mtimecmp size %d too small for %d harts", soc.ErrGeometry, c.MtimecmpSize, c.HartCount)
	case c.MtimeAddr+mtimeSize > c.MtimecmpAddr && c.MtimecmpAddr+c.MtimecmpSize > c.MtimeAddr:
		return fmt.Errorf("mtimer: %w: mtime overlaps mtimecmp", soc.ErrInvalidAddress)
	}
	return nil
}

func (c MTimerConfig) Covers(h riscv.HartID) bool {
	return h >= c.FirstHart && int(h-c.FirstHart) < c.HartCount
}

type MTimer struct {
	bus mmio.Bus
	cfg MTimerConfig
}

func NewMTimer(bus mmio.Bus, cfg MTimerConfig) *MTimer {
	return &MTimer{bus: bus, cfg: cfg}
}

func (t *MTimer) Config() MTimerConfig { return t.cfg }

// Freq returns the counter frequency in Hz.
func (t *MTimer) Freq() uint64 { return t.cfg.Freq }

// ColdInit checks the counter and compare register layout. The counter is
// free running from reset and is never written.
func (t *MTimer) ColdInit() error {
	return t.cfg.Validate()
}

// WarmInit disarms hart h's compare register, so no timer interrupt is
// pending until the hart programs one with Start.
func (t *MTimer) WarmInit(h riscv.HartID) error {
	return t.Stop(h)
}

// Value reads the shared counter.
func (t *MTimer) Value() uint64 {
	if t.cfg.Has64BitMMIO {
		return t.bus.Load64(t.cfg.MtimeAddr)
	}
	for {
		hi := t.bus.Load32(t.cfg.MtimeAddr + 4)
		lo := t.bus.Load32(t.cfg.MtimeAddr)
		if t.bus.Load32(t.cfg.MtimeAddr+4) == hi {
			return uint64(hi)<<32 | uint64(lo)
		}
	}
}

func (t *MTimer) mtimecmp(h riscv.HartID) (uintptr, error) {
	if !t.cfg.Covers(h) {
		return 0, fmt.Errorf("mtimer: %w: %v", soc.ErrNoDevice, h)
	}
	return t.cfg.MtimecmpAddr + cmpStride*uintptr(h-t.cfg.FirstHart), nil
}

// Start arms hart h's timer to fire when the counter reaches next.
func (t *MTimer) Start(h riscv.HartID, next uint64) error {
	reg, err := t.mtimecmp(h)
	if err != nil {
		return err
	}
	if t.cfg.Has64BitMMIO {
		t.bus.Store64(reg, next)
		return nil
	}
	// Never let the compare value drop below the target while the halves
	// are inconsistent.
	t.bus.Store32(reg, ^uint32(0))
	t.bus.Store32(reg+4, uint32(next>>32))
	t.bus.Store32(reg, uint32(next))
	return nil
}

// Stop disarms hart h's timer.
func (t *MTimer) Stop(h riscv.HartID) error {
	return t.Start(h, ^uint64(0))
}

// Compare reads back hart h's compare register.
func (t *MTimer) Compare(h riscv.HartID) (uint64, error) {
	reg, err := t.mtimecmp(h)
	if err != nil {
		return 0, err
	}
	if t.cfg.Has64BitMMIO {
		return t.bus.Load64(reg), nil
	}
	return uint64(t.bus.Load32(reg+4))<<32 | uint64(t.bus.Load32(reg)), nil
}
