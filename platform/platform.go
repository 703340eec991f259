// Package platform defines the contract between the SBI runtime and the
// bring-up code of a board: the boot phases, the set of platform operations
// the runtime invokes, the capability descriptor handed to the runtime and
// the classification of bring-up failures.
package platform

import "github.com/clktmr/cheshire/soc/riscv"

// Phase is the boot phase an operation is invoked in.
type Phase uint8

const (
	// Cold is the one-time platform initialization, performed by exactly
	// one hart the first time the platform powers on.
	Cold Phase = iota
	// Warm is the per-hart initialization, performed by every hart each
	// time it enters the supervisor.
	Warm
)

// PhaseOf converts the runtime's cold boot flag.
func PhaseOf(cold bool) Phase {
	if cold {
		return Cold
	}
	return Warm
}

func (p Phase) String() string {
	if p == Cold {
		return "cold"
	}
	return "warm"
}

// Operations is the fixed operation set a board implements for the runtime.
//
// The runtime calls IrqchipInit before IPIInit and TimerInit on each hart.
// This order is not checked, violating it leaves the local interrupt
// controller in an undefined state. Cold phase work must be requested by
// exactly one hart, once; implementations do no locking of their own.
type Operations interface {
	// EarlyInit runs before any other operation on a hart.
	EarlyInit(h riscv.HartID, phase Phase) error
	// FinalInit runs after all other operations on a hart.
	FinalInit(h riscv.HartID, phase Phase) error
	// ConsoleInit sets up the boot console, once.
	ConsoleInit() error
	IrqchipInit(h riscv.HartID, phase Phase) error
	IPIInit(h riscv.HartID, phase Phase) error
	TimerInit(h riscv.HartID, phase Phase) error
	// IrqctlDelegate routes a local interrupt line through the external
	// interrupt distributor. It may be called at any time after the cold
	// IrqchipInit, from any hart.
	IrqctlDelegate(irq riscv.IRQ) error
}
