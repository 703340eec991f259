// Package board holds the static description of a board: its hart topology
// and the descriptors of all controllers the bring-up touches. Descriptors are
// never mutated at runtime.
package board

import (
	"errors"
	"fmt"

	"github.com/clktmr/cheshire/platform"
	"github.com/clktmr/cheshire/soc"
	"github.com/clktmr/cheshire/soc/aclint"
	"github.com/clktmr/cheshire/soc/clic"
	"github.com/clktmr/cheshire/soc/plic"
	"github.com/clktmr/cheshire/soc/riscv"
	"github.com/clktmr/cheshire/soc/uart8250"
)

// Topology describes the harts of a board. Hart identifiers are dense in
// [0, HartCount).
type Topology struct {
	HartCount int          `yaml:"hartCount"`
	BootHart  riscv.HartID `yaml:"bootHart"`
}

func (t Topology) Contains(h riscv.HartID) bool { return int(h) < t.HartCount }

// Harts returns all hart identifiers in ascending order.
func (t Topology) Harts() []riscv.HartID {
	harts := make([]riscv.HartID, t.HartCount)
	for i := range harts {
		harts[i] = riscv.HartID(i)
	}
	return harts
}

type Board struct {
	Name          string           `yaml:"name"`
	Version       platform.Version `yaml:"version"`
	Features      platform.Feature `yaml:"features"`
	HartStackSize int              `yaml:"hartStackSize"`
	Topology      Topology         `yaml:"topology"`

	UART   uart8250.Config     `yaml:"uart"`
	CLIC   clic.Config         `yaml:"clic"`
	PLIC   plic.Config         `yaml:"plic"`
	MSWI   aclint.MSWIConfig   `yaml:"mswi"`
	MTimer aclint.MTimerConfig `yaml:"mtimer"`
}

// Descriptor returns the capability record handed to the runtime.
func (b *Board) Descriptor() platform.Descriptor {
	return platform.Descriptor{
		Name:            b.Name,
		FirmwareVersion: platform.FirmwareVersion,
		Version:         b.Version,
		Features:        b.Features,
		HartCount:       b.Topology.HartCount,
		HartStackSize:   b.HartStackSize,
	}
}

// Validate checks the board as a whole: every descriptor on its own and the
// descriptors against the topology. The bring-up reports the same faults per
// controller, Validate allows rejecting a board file up front.
func (b *Board) Validate() error {
	t := b.Topology
	if t.HartCount <= 0 {
		return fmt.Errorf("board: %w: %d harts", soc.ErrGeometry, t.HartCount)
	}
	if !t.Contains(t.BootHart) {
		return fmt.Errorf("board: %w: boot %v outside topology", soc.ErrNoDevice, t.BootHart)
	}
	if b.HartStackSize <= 0 || b.HartStackSize%16 != 0 {
		return fmt.Errorf("board: %w: hart stack size %d", soc.ErrGeometry, b.HartStackSize)
	}
	err := errors.Join(
		b.UART.Validate(),
		b.CLIC.Validate(t.HartCount),
		b.PLIC.Validate(),
		b.MSWI.Validate(),
		b.MTimer.Validate(),
	)
	if err != nil {
		return err
	}
	if b.PLIC.NumContexts < 2*t.HartCount {
		return fmt.Errorf("board: %w: %d plic contexts for %d harts", soc.ErrGeometry, b.PLIC.NumContexts, t.HartCount)
	}
	last := riscv.HartID(t.HartCount - 1)
	if !b.MSWI.Covers(0) || !b.MSWI.Covers(last) {
		return fmt.Errorf("board: %w: mswi does not cover all harts", soc.ErrNoDevice)
	}
	if !b.MTimer.Covers(0) || !b.MTimer.Covers(last) {
		return fmt.Errorf("board: %w: mtimer does not cover all harts", soc.ErrNoDevice)
	}
	return nil
}

type region struct{ base, size uintptr }

// regions returns the register ranges of the board's controllers.
func (b *Board) regions() []region {
	return []region{
		{b.UART.Addr, uintptr(b.UART.RegOffset) + 8<<b.UART.RegShift},
		{b.CLIC.Addr, b.CLIC.Size + uintptr(b.Topology.HartCount-1)*b.CLIC.HartStride},
		{b.PLIC.Addr, b.PLIC.Size},
		{b.MSWI.Addr, b.MSWI.Size},
		{b.MTimer.MtimeAddr, b.MTimer.MtimeSize},
		{b.MTimer.MtimecmpAddr, b.MTimer.MtimecmpSize},
	}
}

const (
	cheshireCLINT = 0x0204_0000
)

// Cheshire is the Cheshire SoC as synthesized for FPGA.
var Cheshire = Board{
	Name:          "CHESHIRE RISC-V",
	Version:       platform.Version{Major: 0, Minor: 1},
	Features:      platform.FeatureMFaultsDelegation | platform.FeatureCLIC,
	HartStackSize: platform.DefaultHartStackSize,
	Topology:      Topology{HartCount: 1, BootHart: 0},

	UART: uart8250.Config{
		Addr:     0x0300_2000,
		Freq:     50_000_000,
		Baud:     115200,
		RegShift: 2,
		RegWidth: 4,
	},
	CLIC: clic.Config{
		Addr:       0x0800_0000,
		Size:       0x1_0000,
		HartStride: 0x1_0000,
		NumSources: 64,
	},
	PLIC: plic.Config{
		Addr:        0x0c00_0000,
		Size:        0x0400_0000,
		NumSources:  20,
		NumContexts: 2,
	},
	MSWI: aclint.MSWIConfig{
		Addr:      cheshireCLINT,
		Size:      aclint.MSWISize,
		FirstHart: 0,
		HartCount: 1,
	},
	MTimer: aclint.MTimerConfig{
		Freq:         1_000_000,
		MtimeAddr:    cheshireCLINT + 0xbff8,
		MtimeSize:    8,
		MtimecmpAddr: cheshireCLINT + 0x4000,
		MtimecmpSize: 16,
		FirstHart:    0,
		HartCount:    1,
	},
}
