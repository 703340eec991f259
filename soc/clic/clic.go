// Package clic drives the core-local interrupt controller, the compact
// per-hart controller terminating the local lines (software, timer, external
// and platform lines) of one hart.
//
// Line configuration that must be identical on all harts (enable, level and
// the privilege mode a line is delegated to) is held in one table per
// Controller, shared by all harts. Changes are written through to every hart's
// instance and replayed by Init, so a hart coming up late observes the same
// configuration as the others.
//
// A Controller does no locking. Concurrent changes to the same line must be
// serialized by the caller.
package clic

import (
	"fmt"

	"github.com/clktmr/cheshire/soc"
	"github.com/clktmr/cheshire/soc/mmio"
	"github.com/clktmr/cheshire/soc/riscv"
)

// MaxSources is the architectural limit of lines per instance.
const MaxSources = 4096

const (
	cfgOffset = 0x0000 // cliccfg
	intOffset = 0x1000 // clicint[0]
	intStride = 4
)

// Byte offsets within clicint[i]
const (
	regIP   = 0
	regIE   = 1
	regAttr = 2
	regCtl  = 3
)

const (
	cfgNlbits = 8 << 1 // all ctl bits encode the level
	cfgNmbits = 1 << 5 // one mode bit, lines can target M or S mode

	attrModeShift = 6
)

// Config describes the CLIC instances of a board. The instance of hart h is
// mapped at Addr + h*HartStride, each instance spans Size bytes.
type Config struct {
	Addr       uintptr `yaml:"addr"`
	Size       uintptr `yaml:"size"`
	HartStride uintptr `yaml:"hartStride"`
	NumSources int     `yaml:"numSources"`
}

// Validate checks the geometry for a topology of harts harts.
func (c Config) Validate(harts int) error {
	switch {
	case c.Addr == 0:
		return fmt.Errorf("clic: %w: base 0x0", soc.ErrInvalidAddress)
	case c.NumSources <= 0 || c.NumSources > MaxSources:
		return fmt.Errorf("clic: %w: %d sources", soc.ErrGeometry, c.NumSources)
	case c.Size < intOffset+intStride*uintptr(c.NumSources):
		return fmt.Errorf("clic: %w: size 0x%x too small for %d sources", soc.ErrGeometry, c.Size, c.NumSources)
	case harts > 1 && c.HartStride < c.Size:
		return fmt.Errorf("clic: %w: hart stride 0x%x below instance size 0x%x", soc.ErrGeometry, c.HartStride, c.Size)
	}
	return nil
}

// Layer is where an interrupt line terminates.
type Layer uint8

const (
	LayerLocal  Layer = iota // taken in machine mode at the hart's CLIC
	LayerRouted              // delegated, serviced by the supervisor through the distributor
)

func (l Layer) String() string {
	if l == LayerRouted {
		return "routed"
	}
	return "local"
}

type line struct {
	enabled bool
	level   uint8
	mode    riscv.Mode
}

type Controller struct {
	bus   mmio.Bus
	cfg   Config
	harts int
	lines []line
}

// New returns a Controller for the CLIC instances of harts harts. All lines
// start disabled, at level 0 and local.
func New(bus mmio.Bus, cfg Config, harts int) *Controller {
	lines := make([]line, max(0, min(cfg.NumSources, MaxSources)))
	for i := range lines {
		lines[i].mode = riscv.ModeMachine
	}
	return &Controller{bus: bus, cfg: cfg, harts: harts, lines: lines}
}

func (c *Controller) Config() Config { return c.cfg }

func (c *Controller) reg(h riscv.HartID, irq riscv.IRQ, r uintptr) uintptr {
	return c.cfg.Addr + uintptr(h)*c.cfg.HartStride + intOffset + intStride*uintptr(irq) + r
}

func (c *Controller) checkHart(h riscv.HartID) error {
	if int(h) >= c.harts {
		return fmt.Errorf("clic: %w: %v of %d", soc.ErrNoDevice, h, c.harts)
	}
	return nil
}

func (c *Controller) checkIRQ(irq riscv.IRQ) error {
	if int(irq) >= len(c.lines) {
		return fmt.Errorf("clic: %w: %d not in [0, %d)", soc.ErrIRQRange, irq, len(c.lines))
	}
	return nil
}

// Init brings hart h's instance into a defined state: no line pending and
// every line configured from the shared table. Calling it again rewrites the
// same values.
func (c *Controller) Init(h riscv.HartID) error {
	if err := c.cfg.Validate(c.harts); err != nil {
		return err
	}
	if err := c.checkHart(h); err != nil {
		return err
	}
	c.bus.Store8(c.cfg.Addr+uintptr(h)*c.cfg.HartStride+cfgOffset, cfgNmbits|cfgNlbits)
	for i, l := range c.lines {
		irq := riscv.IRQ(i)
		c.bus.Store8(c.reg(h, irq, regIP), 0)
		c.bus.Store8(c.reg(h, irq, regIE), b2u8(l.enabled))
		c.bus.Store8(c.reg(h, irq, regAttr), uint8(l.mode)<<attrModeShift)
		c.bus.Store8(c.reg(h, irq, regCtl), l.level)
	}
	return nil
}

// SetEnable unmasks or masks irq on all harts.
func (c *Controller) SetEnable(irq riscv.IRQ, enable bool) error {
	if err := c.checkIRQ(irq); err != nil {
		return err
	}
	c.lines[irq].enabled = enable
	c.broadcast(irq, regIE, b2u8(enable))
	return nil
}

// SetPriority sets the level of irq on all harts. 255 is the highest.
func (c *Controller) SetPriority(irq riscv.IRQ, level uint8) error {
	if err := c.checkIRQ(irq); err != nil {
		return err
	}
	c.lines[irq].level = level
	c.broadcast(irq, regCtl, level)
	return nil
}

// Delegate routes irq to supervisor mode on all harts, where it is serviced
// through the distributor instead of terminating locally. The write takes
// effect immediately. Delegating an already routed line is a no-op rewrite.
func (c *Controller) Delegate(irq riscv.IRQ) error {
	return c.setMode(irq, riscv.ModeSupervisor)
}

// Reclaim returns irq to machine mode, terminating it at the CLIC again.
func (c *Controller) Reclaim(irq riscv.IRQ) error {
	return c.setMode(irq, riscv.ModeMachine)
}

func (c *Controller) setMode(irq riscv.IRQ, mode riscv.Mode) error {
	if err := c.checkIRQ(irq); err != nil {
		return err
	}
	c.lines[irq].mode = mode
	c.broadcast(irq, regAttr, uint8(mode)<<attrModeShift)
	return nil
}

func (c *Controller) broadcast(irq riscv.IRQ, r uintptr, v uint8) {
	for h := range c.harts {
		c.bus.Store8(c.reg(riscv.HartID(h), irq, r), v)
	}
}

// Layer reads back where irq terminates on hart h.
func (c *Controller) Layer(h riscv.HartID, irq riscv.IRQ) (Layer, error) {
	if err := c.checkHart(h); err != nil {
		return 0, err
	}
	if err := c.checkIRQ(irq); err != nil {
		return 0, err
	}
	mode := riscv.Mode(c.bus.Load8(c.reg(h, irq, regAttr)) >> attrModeShift)
	if mode == riscv.ModeMachine {
		return LayerLocal, nil
	}
	return LayerRouted, nil
}

// Pending reports whether irq is pending on hart h.
func (c *Controller) Pending(h riscv.HartID, irq riscv.IRQ) (bool, error) {
	if err := c.checkHart(h); err != nil {
		return false, err
	}
	if err := c.checkIRQ(irq); err != nil {
		return false, err
	}
	return c.bus.Load8(c.reg(h, irq, regIP))&1 != 0, nil
}

// ClearPending acknowledges an edge triggered irq on hart h.
func (c *Controller) ClearPending(h riscv.HartID, irq riscv.IRQ) error {
	if err := c.checkHart(h); err != nil {
		return err
	}
	if err := c.checkIRQ(irq); err != nil {
		return err
	}
	c.bus.Store8(c.reg(h, irq, regIP), 0)
	return nil
}

// Enabled reports whether irq is unmasked on hart h.
func (c *Controller) Enabled(h riscv.HartID, irq riscv.IRQ) (bool, error) {
	if err := c.checkHart(h); err != nil {
		return false, err
	}
	if err := c.checkIRQ(irq); err != nil {
		return false, err
	}
	return c.bus.Load8(c.reg(h, irq, regIE))&1 != 0, nil
}

// Level reads back the level of irq on hart h.
func (c *Controller) Level(h riscv.HartID, irq riscv.IRQ) (uint8, error) {
	if err := c.checkHart(h); err != nil {
		return 0, err
	}
	if err := c.checkIRQ(irq); err != nil {
		return 0, err
	}
	return c.bus.Load8(c.reg(h, irq, regCtl)), nil
}

// PendingOffset is the offset of irq's pending byte within an instance.
// Device models use it to raise lines.
func PendingOffset(irq riscv.IRQ) uintptr {
	return intOffset + intStride*uintptr(irq) + regIP
}

func b2u8(b bool) uint8 {
	if b {
		return 1
	}
	return 0
}
