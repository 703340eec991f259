package clic_test

import (
	"bytes"
	"errors"
	"testing"

	"github.com/clktmr/cheshire/soc"
	"github.com/clktmr/cheshire/soc/clic"
	"github.com/clktmr/cheshire/soc/mmio"
	"github.com/clktmr/cheshire/soc/riscv"
)

const harts = 2

var testConfig = clic.Config{
	Addr:       0x0800_0000,
	Size:       0x2000,
	HartStride: 0x2000,
	NumSources: 64,
}

func newController(t *testing.T) (*clic.Controller, *mmio.Map, *mmio.Region) {
	t.Helper()
	var bus mmio.Map
	mem := mmio.NewRegion(testConfig.HartStride * harts)
	if err := bus.Mount(testConfig.Addr, testConfig.HartStride*harts, mem); err != nil {
		t.Fatal(err)
	}
	return clic.New(&bus, testConfig, harts), &bus, mem
}

func TestValidate(t *testing.T) {
	tests := map[string]struct {
		modify func(*clic.Config)
		err    error
	}{
		"valid":       {func(c *clic.Config) {}, nil},
		"noBase":      {func(c *clic.Config) { c.Addr = 0 }, soc.ErrInvalidAddress},
		"noSources":   {func(c *clic.Config) { c.NumSources = 0 }, soc.ErrGeometry},
		"tooMany":     {func(c *clic.Config) { c.NumSources = clic.MaxSources + 1 }, soc.ErrGeometry},
		"tooSmall":    {func(c *clic.Config) { c.Size = 0x1000 }, soc.ErrGeometry},
		"smallStride": {func(c *clic.Config) { c.HartStride = 0x1000 }, soc.ErrGeometry},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			cfg := testConfig
			tc.modify(&cfg)
			if err := cfg.Validate(harts); !errors.Is(err, tc.err) {
				t.Fatalf("expected %v, got %v", tc.err, err)
			}
		})
	}
}

func TestInit(t *testing.T) {
	c, _, mem := newController(t)
	mem.Bytes()[clic.PendingOffset(riscv.IRQMSoft)] = 1 // stale pending line

	if err := c.Init(0); err != nil {
		t.Fatal(err)
	}
	for irq := riscv.IRQ(0); irq < 64; irq++ {
		pending, _ := c.Pending(0, irq)
		enabled, _ := c.Enabled(0, irq)
		layer, _ := c.Layer(0, irq)
		if pending || enabled || layer != clic.LayerLocal {
			t.Fatalf("irq %d: expected idle local line, got pending=%v enabled=%v layer=%v", irq, pending, enabled, layer)
		}
	}

	once := bytes.Clone(mem.Bytes())
	if err := c.Init(0); err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(once, mem.Bytes()) {
		t.Fatal("second init changed register state")
	}

	if err := c.Init(harts); !errors.Is(err, soc.ErrNoDevice) {
		t.Fatalf("expected %v, got %v", soc.ErrNoDevice, err)
	}
}

func TestDelegate(t *testing.T) {
	c, bus, _ := newController(t)
	c.Init(0)

	if err := c.Delegate(5); err != nil {
		t.Fatal(err)
	}
	for h := riscv.HartID(0); h < harts; h++ {
		if layer, _ := c.Layer(h, 5); layer != clic.LayerRouted {
			t.Errorf("%v: expected %v, got %v", h, clic.LayerRouted, layer)
		}
	}

	// A hart initialized after the delegation observes it.
	c.Init(1)
	if layer, _ := c.Layer(1, 5); layer != clic.LayerRouted {
		t.Errorf("late hart: expected %v, got %v", clic.LayerRouted, layer)
	}
	if layer, _ := c.Layer(1, 6); layer != clic.LayerLocal {
		t.Errorf("neighbour line: expected %v, got %v", clic.LayerLocal, layer)
	}

	c.Delegate(5)
	if layer, _ := c.Layer(0, 5); layer != clic.LayerRouted {
		t.Errorf("re-delegated: expected %v, got %v", clic.LayerRouted, layer)
	}

	c.Reclaim(5)
	if layer, _ := c.Layer(0, 5); layer != clic.LayerLocal {
		t.Errorf("reclaimed: expected %v, got %v", clic.LayerLocal, layer)
	}

	stores := bus.Stores()
	for _, irq := range []riscv.IRQ{64, 1 << 20} {
		if err := c.Delegate(irq); !errors.Is(err, soc.ErrIRQRange) {
			t.Errorf("irq %d: expected %v, got %v", irq, soc.ErrIRQRange, err)
		}
	}
	if bus.Stores() != stores {
		t.Error("out of range delegation wrote registers")
	}
}

func TestEnablePriority(t *testing.T) {
	c, _, _ := newController(t)
	c.Init(0)
	c.Init(1)

	c.SetEnable(riscv.IRQMSoft, true)
	c.SetPriority(riscv.IRQMSoft, 255)

	for h := riscv.HartID(0); h < harts; h++ {
		enabled, _ := c.Enabled(h, riscv.IRQMSoft)
		level, _ := c.Level(h, riscv.IRQMSoft)
		if !enabled || level != 255 {
			t.Errorf("%v: expected enabled at level 255, got %v at %d", h, enabled, level)
		}
	}

	// Re-initializing keeps the platform wide line configuration.
	c.Init(1)
	if enabled, _ := c.Enabled(1, riscv.IRQMSoft); !enabled {
		t.Error("init dropped enabled line")
	}
}
