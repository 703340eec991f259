package bringup

import (
	"github.com/clktmr/cheshire/platform"
	"github.com/clktmr/cheshire/soc/aclint"
	"github.com/clktmr/cheshire/soc/clic"
	"github.com/clktmr/cheshire/soc/riscv"
)

// SoftPriority is the CLIC level of the machine software interrupt.
const SoftPriority = 255

// IPI brings up inter-processor interrupts through the MSWI.
type IPI struct {
	mswi *aclint.MSWI
	clic *clic.Controller
}

func NewIPI(m *aclint.MSWI, c *clic.Controller) *IPI {
	return &IPI{mswi: m, clic: c}
}

// Init checks the MSWI and, once per platform in the cold phase, unmasks the
// machine software interrupt at the highest level on every hart's CLIC.
// Each hart then becomes a sender and receiver.
func (ipi *IPI) Init(h riscv.HartID, phase platform.Phase) error {
	if phase == platform.Cold {
		if err := ipi.mswi.ColdInit(); err != nil {
			return err
		}
		if err := ipi.clic.SetEnable(riscv.IRQMSoft, true); err != nil {
			return err
		}
		if err := ipi.clic.SetPriority(riscv.IRQMSoft, SoftPriority); err != nil {
			return err
		}
	}
	return ipi.mswi.WarmInit(h)
}

// Send raises a software interrupt on hart to.
func (ipi *IPI) Send(to riscv.HartID) error { return ipi.mswi.Send(to) }

// Clear withdraws hart h's software interrupt.
func (ipi *IPI) Clear(h riscv.HartID) error { return ipi.mswi.Clear(h) }
