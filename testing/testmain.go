// Package testing provides utilities for writing tests against the simulated
// SoC.
package testing

import (
	"flag"
	"io"
	"os"
	"testing"

	"github.com/sirupsen/logrus"

	"github.com/clktmr/cheshire/board"
	"github.com/clktmr/cheshire/bringup"
	"github.com/clktmr/cheshire/sim"
)

// TestMain should be used as TestMain for tests that boot the simulator. It
// silences the bring-up log unless the tests run verbose.
func TestMain(m *testing.M) {
	flag.Parse()
	if testing.Verbose() {
		logrus.SetLevel(logrus.DebugLevel)
	} else {
		logrus.SetOutput(io.Discard)
	}
	os.Exit(m.Run())
}

// Board returns Cheshire scaled to harts harts. Each hart gets its own CLIC
// instance, PLIC context pair, msip and mtimecmp register.
func Board(harts int) *board.Board {
	b := board.Cheshire
	b.Topology.HartCount = harts
	b.PLIC.NumContexts = 2 * harts
	b.MSWI.HartCount = harts
	b.MTimer.HartCount = harts
	b.MTimer.MtimecmpSize = max(b.MTimer.MtimecmpSize, 8*uintptr(harts))
	return &b
}

// NewPlatform returns a simulated SoC for b and the bring-up wired to it.
func NewPlatform(t testing.TB, b *board.Board) (*sim.SoC, *bringup.Platform) {
	t.Helper()
	soc, err := sim.New(b)
	if err != nil {
		t.Fatal(err)
	}
	return soc, bringup.New(soc.Bus(), b)
}
