// Package plic drives the platform-level interrupt controller, the global
// distributor routing external device interrupts into per-hart contexts.
package plic

import (
	"fmt"

	"github.com/clktmr/cheshire/soc"
	"github.com/clktmr/cheshire/soc/mmio"
)

const (
	MaxSources  = 1023
	MaxContexts = 15872
)

const (
	priorityBase  = 0x000000
	enableBase    = 0x002000
	enableStride  = 0x80
	contextBase   = 0x200000
	contextStride = 0x1000

	regThreshold = 0x0
	regClaim     = 0x4
)

// Thresholds written by WarmInit: machine mode takes no external interrupts
// from the PLIC, supervisor mode takes everything the supervisor enables.
const (
	ThresholdMachine    = 0x7
	ThresholdSupervisor = 0x0
)

// Config describes the distributor of a board.
type Config struct {
	Addr        uintptr `yaml:"addr"`
	Size        uintptr `yaml:"size"`
	NumSources  int     `yaml:"numSources"`
	NumContexts int     `yaml:"numContexts"`
}

func (c Config) Validate() error {
	switch {
	case c.Addr == 0:
		return fmt.Errorf("plic: %w: base 0x0", soc.ErrInvalidAddress)
	case c.NumSources <= 0 || c.NumSources > MaxSources:
		return fmt.Errorf("plic: %w: %d sources", soc.ErrGeometry, c.NumSources)
	case c.NumContexts <= 0 || c.NumContexts > MaxContexts:
		return fmt.Errorf("plic: %w: %d contexts", soc.ErrGeometry, c.NumContexts)
	case c.Size < contextBase+contextStride*uintptr(c.NumContexts):
		return fmt.Errorf("plic: %w: size 0x%x too small for %d contexts", soc.ErrGeometry, c.Size, c.NumContexts)
	}
	return nil
}

type PLIC struct {
	bus mmio.Bus
	cfg Config
}

func New(bus mmio.Bus, cfg Config) *PLIC {
	return &PLIC{bus: bus, cfg: cfg}
}

func (p *PLIC) Config() Config { return p.cfg }

func (p *PLIC) words() int { return (p.cfg.NumSources + 1 + 31) / 32 }

func (p *PLIC) checkContext(ctx int) error {
	if ctx >= p.cfg.NumContexts {
		return fmt.Errorf("plic: %w: context %d of %d", soc.ErrGeometry, ctx, p.cfg.NumContexts)
	}
	return nil
}

// ColdInit sets the default priority of every source and completes any
// interrupt left claimed on any context. Sources start at priority 0, which
// never interrupts, until the supervisor configures them.
func (p *PLIC) ColdInit() error {
	if err := p.cfg.Validate(); err != nil {
		return err
	}
	for src := 1; src <= p.cfg.NumSources; src++ {
		p.bus.Store32(p.cfg.Addr+priorityBase+4*uintptr(src), 0)
	}
	for ctx := range p.cfg.NumContexts {
		claim := p.cfg.Addr + contextBase + contextStride*uintptr(ctx) + regClaim
		for range p.cfg.NumSources {
			id := p.bus.Load32(claim)
			if id == 0 {
				break
			}
			p.bus.Store32(claim, id)
		}
	}
	return nil
}

// WarmInit binds a hart to its machine and supervisor contexts: all sources
// are disabled on both and the thresholds are set to their defaults. A
// negative context is skipped.
func (p *PLIC) WarmInit(mctx, sctx int) error {
	if err := p.cfg.Validate(); err != nil {
		return err
	}
	if err := p.checkContext(mctx); err != nil {
		return err
	}
	if err := p.checkContext(sctx); err != nil {
		return err
	}
	if mctx >= 0 {
		p.disableAll(mctx)
		p.SetThreshold(mctx, ThresholdMachine)
	}
	if sctx >= 0 {
		p.disableAll(sctx)
		p.SetThreshold(sctx, ThresholdSupervisor)
	}
	return nil
}

func (p *PLIC) disableAll(ctx int) {
	for i := range p.words() {
		p.bus.Store32(p.enableReg(ctx, 32*i), 0)
	}
}

func (p *PLIC) enableReg(ctx, src int) uintptr {
	return p.cfg.Addr + enableBase + enableStride*uintptr(ctx) + 4*uintptr(src/32)
}

func (p *PLIC) thresholdReg(ctx int) uintptr {
	return p.cfg.Addr + contextBase + contextStride*uintptr(ctx) + regThreshold
}

func (p *PLIC) SetThreshold(ctx int, v uint32) {
	p.bus.Store32(p.thresholdReg(ctx), v)
}

func (p *PLIC) Threshold(ctx int) uint32 {
	return p.bus.Load32(p.thresholdReg(ctx))
}

func (p *PLIC) SetPriority(src int, prio uint32) {
	p.bus.Store32(p.cfg.Addr+priorityBase+4*uintptr(src), prio)
}

func (p *PLIC) Priority(src int) uint32 {
	return p.bus.Load32(p.cfg.Addr + priorityBase + 4*uintptr(src))
}

// SetEnable enables or disables src for context ctx.
func (p *PLIC) SetEnable(ctx, src int, enable bool) {
	reg := p.enableReg(ctx, src)
	v := p.bus.Load32(reg)
	if enable {
		v |= 1 << (src % 32)
	} else {
		v &^= 1 << (src % 32)
	}
	p.bus.Store32(reg, v)
}

func (p *PLIC) Enabled(ctx, src int) bool {
	return p.bus.Load32(p.enableReg(ctx, src))&(1<<(src%32)) != 0
}
