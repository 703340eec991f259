// Package aclint drives the ACLINT devices: the machine-level software
// interrupt device (MSWI) generating inter-processor interrupts and the
// machine-level timer (MTIMER).
package aclint

import (
	"fmt"

	"github.com/clktmr/cheshire/soc"
	"github.com/clktmr/cheshire/soc/mmio"
	"github.com/clktmr/cheshire/soc/riscv"
)

const (
	MSWISize     = 0x4000
	MSWIMaxHarts = 4095
)

// MSWIConfig describes a software interrupt device covering HartCount harts
// starting at FirstHart.
type MSWIConfig struct {
	Addr      uintptr      `yaml:"addr"`
	Size      uintptr      `yaml:"size"`
	FirstHart riscv.HartID `yaml:"firstHart"`
	HartCount int          `yaml:"hartCount"`
}

func (c MSWIConfig) Validate() error {
	switch {
	case c.Addr == 0 || c.Addr&0x3 != 0:
		return fmt.Errorf("mswi: %w: base 0x%x", soc.ErrInvalidAddress, c.Addr)
	case c.HartCount <= 0 || c.HartCount > MSWIMaxHarts:
		return fmt.Errorf("mswi: %w: %d harts", soc.ErrGeometry, c.HartCount)
	case c.Size < 4*uintptr(c.HartCount):
		return fmt.Errorf("mswi: %w: size 0x%x too small for %d harts", soc.ErrGeometry, c.Size, c.HartCount)
	}
	return nil
}

// Covers reports whether hart h has a msip register in this device.
func (c MSWIConfig) Covers(h riscv.HartID) bool {
	return h >= c.FirstHart && int(h-c.FirstHart) < c.HartCount
}

type MSWI struct {
	bus mmio.Bus
	cfg MSWIConfig
}

func NewMSWI(bus mmio.Bus, cfg MSWIConfig) *MSWI {
	return &MSWI{bus: bus, cfg: cfg}
}

func (m *MSWI) Config() MSWIConfig { return m.cfg }

// ColdInit checks the device covers a valid address range. The msip
// registers themselves are owned by the harts and set up by WarmInit.
func (m *MSWI) ColdInit() error {
	return m.cfg.Validate()
}

// WarmInit makes hart h a sender and receiver of software interrupts by
// clearing any stale request for it.
func (m *MSWI) WarmInit(h riscv.HartID) error {
	return m.Clear(h)
}

func (m *MSWI) msip(h riscv.HartID) (uintptr, error) {
	if !m.cfg.Covers(h) {
		return 0, fmt.Errorf("mswi: %w: %v", soc.ErrNoDevice, h)
	}
	return m.cfg.Addr + 4*uintptr(h-m.cfg.FirstHart), nil
}

// Send raises a software interrupt on hart h.
func (m *MSWI) Send(h riscv.HartID) error {
	reg, err := m.msip(h)
	if err != nil {
		return err
	}
	m.bus.Store32(reg, 1)
	return nil
}

// Clear withdraws the software interrupt request of hart h.
func (m *MSWI) Clear(h riscv.HartID) error {
	reg, err := m.msip(h)
	if err != nil {
		return err
	}
	m.bus.Store32(reg, 0)
	return nil
}

func (m *MSWI) Pending(h riscv.HartID) (bool, error) {
	reg, err := m.msip(h)
	if err != nil {
		return false, err
	}
	return m.bus.Load32(reg)&1 != 0, nil
}
