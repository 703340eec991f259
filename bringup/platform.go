package bringup

import (
	"github.com/sirupsen/logrus"

	"github.com/clktmr/cheshire/board"
	"github.com/clktmr/cheshire/platform"
	"github.com/clktmr/cheshire/soc/aclint"
	"github.com/clktmr/cheshire/soc/clic"
	"github.com/clktmr/cheshire/soc/mmio"
	"github.com/clktmr/cheshire/soc/plic"
	"github.com/clktmr/cheshire/soc/riscv"
)

// Platform implements the runtime's operations for a board.
type Platform struct {
	board *board.Board
	log   logrus.FieldLogger

	console *Console
	irqchip *Irqchip
	router  *Router
	ipi     *IPI
	timer   *Timer
}

var _ platform.Operations = (*Platform)(nil)

type Option func(*Platform)

// WithLogger sets the logger bring-up steps are reported to. Defaults to
// logrus' standard logger.
func WithLogger(log logrus.FieldLogger) Option {
	return func(p *Platform) { p.log = log }
}

// New wires the drivers for board b on bus. Nothing is written to the
// hardware before the runtime invokes the operations. b must not be modified
// afterwards.
func New(bus mmio.Bus, b *board.Board, opts ...Option) *Platform {
	local := clic.New(bus, b.CLIC, b.Topology.HartCount)
	p := &Platform{
		board:   b,
		log:     logrus.StandardLogger(),
		console: NewConsole(bus, b.UART),
		irqchip: NewIrqchip(plic.New(bus, b.PLIC), local),
		router:  NewRouter(local),
		ipi:     NewIPI(aclint.NewMSWI(bus, b.MSWI), local),
		timer:   NewTimer(aclint.NewMTimer(bus, b.MTimer)),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Platform) Board() *board.Board { return p.board }

// Descriptor returns the capability record handed to the runtime.
func (p *Platform) Descriptor() platform.Descriptor { return p.board.Descriptor() }

func (p *Platform) Console() *Console { return p.console }
func (p *Platform) Irqchip() *Irqchip { return p.irqchip }
func (p *Platform) Router() *Router   { return p.router }
func (p *Platform) IPI() *IPI         { return p.ipi }
func (p *Platform) Timer() *Timer     { return p.timer }

func (p *Platform) step(sub platform.Subsystem, log logrus.FieldLogger, fn func() error) error {
	log = log.WithField("subsystem", sub)
	if err := fn(); err != nil {
		err = &platform.Error{Subsystem: sub, Err: err}
		log.WithError(err).Error("bring-up failed")
		return err
	}
	log.Debug("bring-up done")
	return nil
}

func (p *Platform) hartStep(sub platform.Subsystem, h riscv.HartID, phase platform.Phase, fn func() error) error {
	return p.step(sub, p.log.WithFields(logrus.Fields{"hart": h, "phase": phase}), fn)
}

// EarlyInit has nothing to do on this platform.
func (p *Platform) EarlyInit(h riscv.HartID, phase platform.Phase) error {
	return p.hartStep(platform.SubsystemEarly, h, phase, func() error { return nil })
}

// FinalInit has nothing to do on this platform.
func (p *Platform) FinalInit(h riscv.HartID, phase platform.Phase) error {
	return p.hartStep(platform.SubsystemFinal, h, phase, func() error { return nil })
}

func (p *Platform) ConsoleInit() error {
	return p.step(platform.SubsystemConsole, p.log, p.console.Init)
}

func (p *Platform) IrqchipInit(h riscv.HartID, phase platform.Phase) error {
	return p.hartStep(platform.SubsystemIrqchip, h, phase, func() error {
		return p.irqchip.Init(h, phase)
	})
}

func (p *Platform) IPIInit(h riscv.HartID, phase platform.Phase) error {
	return p.hartStep(platform.SubsystemIPI, h, phase, func() error {
		return p.ipi.Init(h, phase)
	})
}

func (p *Platform) TimerInit(h riscv.HartID, phase platform.Phase) error {
	return p.hartStep(platform.SubsystemTimer, h, phase, func() error {
		return p.timer.Init(h, phase)
	})
}

func (p *Platform) IrqctlDelegate(irq riscv.IRQ) error {
	return p.step(platform.SubsystemDelegation, p.log.WithField("irq", irq), func() error {
		return p.router.Delegate(irq)
	})
}
