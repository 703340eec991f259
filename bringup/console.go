package bringup

import (
	"errors"

	"github.com/clktmr/cheshire/soc/mmio"
	"github.com/clktmr/cheshire/soc/uart8250"
)

var ErrNoConsole = errors.New("console not initialized")

// Console is the boot console on the board's UART.
type Console struct {
	bus  mmio.Bus
	cfg  uart8250.Config
	uart *uart8250.UART
}

func NewConsole(bus mmio.Bus, cfg uart8250.Config) *Console {
	return &Console{bus: bus, cfg: cfg}
}

func (c *Console) Init() error {
	u, err := uart8250.Init(c.bus, c.cfg)
	if err != nil {
		return err
	}
	c.uart = u
	return nil
}

// Ready reports whether Init succeeded.
func (c *Console) Ready() bool { return c.uart != nil }

func (c *Console) Write(p []byte) (int, error) {
	if c.uart == nil {
		return 0, ErrNoConsole
	}
	return c.uart.Write(p)
}
