package platform

import (
	"errors"

	"github.com/clktmr/cheshire/soc"
)

// Subsystem identifies the part of the bring-up that failed.
type Subsystem uint8

const (
	SubsystemEarly Subsystem = iota
	SubsystemFinal
	SubsystemConsole
	SubsystemIrqchip
	SubsystemIPI
	SubsystemTimer
	SubsystemDelegation
)

var subsystemNames = [...]string{
	SubsystemEarly:      "early",
	SubsystemFinal:      "final",
	SubsystemConsole:    "console",
	SubsystemIrqchip:    "irqchip",
	SubsystemIPI:        "ipi",
	SubsystemTimer:      "timer",
	SubsystemDelegation: "delegation",
}

func (s Subsystem) String() string {
	if int(s) < len(subsystemNames) {
		return subsystemNames[s]
	}
	return "unknown"
}

// Error is a failed bring-up step. The subsystem is left in whatever state
// the failing step produced.
type Error struct {
	Subsystem Subsystem
	Err       error
}

func (e *Error) Error() string { return e.Subsystem.String() + ": " + e.Err.Error() }

func (e *Error) Unwrap() error { return e.Err }

// SBI return codes
const (
	CodeSuccess        = 0
	CodeFailed         = -1
	CodeNotSupported   = -2
	CodeInvalidParam   = -3
	CodeInvalidAddress = -5
	CodeNoDevice       = -1000
)

// Code maps err to the return code of the runtime's C calling convention.
func Code(err error) int {
	switch {
	case err == nil:
		return CodeSuccess
	case errors.Is(err, soc.ErrIRQRange):
		return CodeInvalidParam
	case errors.Is(err, soc.ErrInvalidAddress):
		return CodeInvalidAddress
	case errors.Is(err, soc.ErrGeometry):
		return CodeNotSupported
	case errors.Is(err, soc.ErrNoDevice):
		return CodeNoDevice
	}
	return CodeFailed
}
