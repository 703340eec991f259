package bringup

import (
	"github.com/clktmr/cheshire/soc/clic"
	"github.com/clktmr/cheshire/soc/riscv"
)

// Router moves local interrupt lines between the CLIC, where they terminate
// in machine mode, and the distributor path serviced by the supervisor.
type Router struct {
	clic *clic.Controller
}

func NewRouter(c *clic.Controller) *Router { return &Router{clic: c} }

// Delegate routes irq through the distributor on all harts. Out of range
// lines are rejected without touching any register.
func (r *Router) Delegate(irq riscv.IRQ) error { return r.clic.Delegate(irq) }

// Reclaim terminates irq at the CLIC again.
func (r *Router) Reclaim(irq riscv.IRQ) error { return r.clic.Reclaim(irq) }

// Layer reports where irq terminates on hart h.
func (r *Router) Layer(h riscv.HartID, irq riscv.IRQ) (clic.Layer, error) {
	return r.clic.Layer(h, irq)
}
