package uart8250_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/clktmr/cheshire/soc"
	"github.com/clktmr/cheshire/soc/mmio"
	"github.com/clktmr/cheshire/soc/uart8250"
)

var testConfig = uart8250.Config{
	Addr:     0x0300_2000,
	Freq:     50_000_000,
	Baud:     115200,
	RegShift: 2,
	RegWidth: 4,
}

// device records register writes and always reports an empty transmitter.
type device struct {
	capture bool
	writes  []string
	tx      []byte
}

func (d *device) Load(off uintptr, size int) uint64 {
	if off == 5<<2 {
		return 0x60
	}
	return 0
}

func (d *device) Store(off uintptr, size int, v uint64) {
	r := off >> 2
	if size != 4 || off&3 != 0 {
		panic("unexpected access width")
	}
	if r == 0 && d.capture {
		d.tx = append(d.tx, byte(v))
		return
	}
	d.writes = append(d.writes, fmt.Sprintf("%d=%#x", r, v))
}

func TestInit(t *testing.T) {
	var bus mmio.Map
	dev := &device{}
	bus.Mount(testConfig.Addr, 0x100, dev)

	u, err := uart8250.Init(&bus, testConfig)
	if err != nil {
		t.Fatal(err)
	}
	expected := []string{"1=0x0", "3=0x80", "0=0x1b", "1=0x0", "3=0x3", "2=0x1", "4=0x0", "7=0x0"}
	if fmt.Sprint(dev.writes) != fmt.Sprint(expected) {
		t.Fatalf("expected init sequence %v, got %v", expected, dev.writes)
	}

	dev.capture = true
	fmt.Fprint(u, "OpenSBI")
	if string(dev.tx) != "OpenSBI" {
		t.Fatalf("expected %q, got %q", "OpenSBI", dev.tx)
	}
}

func TestValidate(t *testing.T) {
	tests := map[string]struct {
		modify func(*uart8250.Config)
		err    error
	}{
		"valid":     {func(c *uart8250.Config) {}, nil},
		"noBase":    {func(c *uart8250.Config) { c.Addr = 0 }, soc.ErrInvalidAddress},
		"width3":    {func(c *uart8250.Config) { c.RegWidth = 3 }, soc.ErrGeometry},
		"noBaud":    {func(c *uart8250.Config) { c.Baud = 0 }, soc.ErrGeometry},
		"slowClock": {func(c *uart8250.Config) { c.Freq = 16*c.Baud - 1 }, soc.ErrGeometry},
		"bigShift":  {func(c *uart8250.Config) { c.RegShift = 5 }, soc.ErrGeometry},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			cfg := testConfig
			tc.modify(&cfg)
			if err := cfg.Validate(); !errors.Is(err, tc.err) {
				t.Fatalf("expected %v, got %v", tc.err, err)
			}
		})
	}
}

func TestDivisor(t *testing.T) {
	tests := map[string]struct {
		freq, baud uint32
		div        uint16
	}{
		"cheshire": {50_000_000, 115200, 27},
		"qemu":     {3_686_400, 115200, 2},
		"exact":    {1_843_200, 9600, 12},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			cfg := uart8250.Config{Freq: tc.freq, Baud: tc.baud}
			if div := cfg.Divisor(); div != tc.div {
				t.Fatalf("expected %d, got %d", tc.div, div)
			}
		})
	}
}
