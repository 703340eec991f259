package bringup

import (
	"github.com/clktmr/cheshire/platform"
	"github.com/clktmr/cheshire/soc/clic"
	"github.com/clktmr/cheshire/soc/plic"
	"github.com/clktmr/cheshire/soc/riscv"
)

// Contexts returns the distributor contexts receiving hart h's external
// interrupts in machine and supervisor mode.
func Contexts(h riscv.HartID) (m, s int) {
	return 2 * int(h), 2*int(h) + 1
}

// Irqchip brings up the two-level interrupt hierarchy: the hart's local CLIC
// and its binding to the shared PLIC.
type Irqchip struct {
	plic *plic.PLIC
	clic *clic.Controller
}

func NewIrqchip(p *plic.PLIC, c *clic.Controller) *Irqchip {
	return &Irqchip{plic: p, clic: c}
}

// Init initializes the PLIC's sources in the cold phase, then hart h's CLIC
// instance and PLIC contexts. Repeating Init for a hart rewrites identical
// register values.
func (ic *Irqchip) Init(h riscv.HartID, phase platform.Phase) error {
	if phase == platform.Cold {
		if err := ic.plic.ColdInit(); err != nil {
			return err
		}
	}
	if err := ic.clic.Init(h); err != nil {
		return err
	}
	return ic.plic.WarmInit(Contexts(h))
}

// Local returns the local interrupt controller of all harts.
func (ic *Irqchip) Local() *clic.Controller { return ic.clic }

// Distributor returns the global interrupt distributor.
func (ic *Irqchip) Distributor() *plic.PLIC { return ic.plic }
