// Package machine stands in for the firmware runtime. It calls the platform
// operations of each hart in the order the runtime does and reports failures
// on the console once there is one.
package machine

import (
	"context"
	"fmt"
	"io"
	"sync/atomic"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/clktmr/cheshire/board"
	"github.com/clktmr/cheshire/platform"
	"github.com/clktmr/cheshire/soc/riscv"
)

type describer interface {
	Descriptor() platform.Descriptor
}

type Machine struct {
	ops     platform.Operations
	console io.Writer
	log     logrus.FieldLogger

	consoleUp atomic.Bool
}

// New returns a Machine running ops. Failures are written to console after
// ConsoleInit succeeded. console may be nil.
func New(ops platform.Operations, console io.Writer, log logrus.FieldLogger) *Machine {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Machine{ops: ops, console: console, log: log}
}

// Boot brings up hart h. The console is only initialized in the cold phase.
// The first failing step ends the boot of h.
func (m *Machine) Boot(h riscv.HartID, phase platform.Phase) (err error) {
	defer func() {
		if err != nil && m.consoleUp.Load() {
			fmt.Fprintf(m.console, "%v: boot failed: %v\n", h, err)
		}
	}()
	if err := m.ops.EarlyInit(h, phase); err != nil {
		return err
	}
	if phase == platform.Cold {
		if err := m.ops.ConsoleInit(); err != nil {
			return err
		}
		m.consoleUp.Store(m.console != nil)
		if d, ok := m.ops.(describer); ok && m.consoleUp.Load() {
			Banner(m.console, d.Descriptor())
		}
	}
	steps := []func(riscv.HartID, platform.Phase) error{
		m.ops.IrqchipInit,
		m.ops.IPIInit,
		m.ops.TimerInit,
		m.ops.FinalInit,
	}
	for _, step := range steps {
		if err := step(h, phase); err != nil {
			return err
		}
	}
	m.log.WithFields(logrus.Fields{"hart": h, "phase": phase}).Info("hart up")
	return nil
}

// BootAll cold boots t's boot hart, then warm boots all other harts
// concurrently. Harts not started when ctx is cancelled or another hart
// failed are skipped.
func (m *Machine) BootAll(ctx context.Context, t board.Topology) error {
	if err := m.Boot(t.BootHart, platform.Cold); err != nil {
		return err
	}
	g, ctx := errgroup.WithContext(ctx)
	for _, h := range t.Harts() {
		if h == t.BootHart {
			continue
		}
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			return m.Boot(h, platform.Warm)
		})
	}
	return g.Wait()
}

// Banner prints the platform summary the runtime shows after console init.
func Banner(w io.Writer, d platform.Descriptor) {
	fmt.Fprintf(w, "Platform Name             : %s\n", d.Name)
	fmt.Fprintf(w, "Platform Features         : %v\n", d.Features)
	fmt.Fprintf(w, "Platform HART Count       : %d\n", d.HartCount)
	fmt.Fprintf(w, "Platform HART Stack Size  : %d\n", d.HartStackSize)
	fmt.Fprintf(w, "Platform Version          : %v\n", d.Version)
	fmt.Fprintf(w, "Firmware Version          : %v\n", d.FirmwareVersion)
}
