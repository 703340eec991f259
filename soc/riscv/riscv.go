// Package riscv defines the identifiers shared by all drivers: harts,
// interrupt lines and privilege modes.
package riscv

import "strconv"

// HartID identifies an execution unit. Identifiers are dense and zero based.
type HartID uint32

func (h HartID) String() string { return "hart" + strconv.FormatUint(uint64(h), 10) }

// IRQ is a local interrupt line number as found in mcause/mip.
type IRQ uint32

// Standard local interrupt lines
const (
	IRQSSoft  IRQ = 1
	IRQMSoft  IRQ = 3
	IRQSTimer IRQ = 5
	IRQMTimer IRQ = 7
	IRQSExt   IRQ = 9
	IRQMExt   IRQ = 11
)

// Mode is a privilege mode encoding as used in mstatus.MPP and the CLIC
// attribute register.
type Mode uint8

const (
	ModeUser       Mode = 0
	ModeSupervisor Mode = 1
	ModeMachine    Mode = 3
)
