//go:build noos

// Cheshire-fw brings up the boot hart of the Cheshire SoC and hands the
// console to the Go runtime.
package main

import (
	"os"

	"github.com/sirupsen/logrus"

	"github.com/clktmr/cheshire/board"
	"github.com/clktmr/cheshire/bringup"
	"github.com/clktmr/cheshire/machine"
	"github.com/clktmr/cheshire/platform"
	"github.com/clktmr/cheshire/soc/mmio"
)

func main() {
	b := board.Cheshire
	p := bringup.New(mmio.Direct{}, &b)
	m := machine.New(p, p.Console(), nil)
	if err := m.Boot(b.Topology.BootHart, platform.Cold); err != nil {
		os.Exit(-platform.Code(err))
	}
	if err := machine.MountConsole(p.Console()); err != nil {
		panic(err)
	}
	logrus.SetOutput(os.Stderr)
	logrus.WithField("hart", b.Topology.BootHart).Info("ready")
	select {}
}
