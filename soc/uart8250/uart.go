// Package uart8250 drives a 16550 compatible UART as a polled console.
package uart8250

import (
	"fmt"

	"github.com/clktmr/cheshire/soc"
	"github.com/clktmr/cheshire/soc/mmio"
)

// Register indices, scaled by the register shift.
const (
	regRBR = 0 // receive buffer, read
	regTHR = 0 // transmit holding, write
	regIER = 1
	regFCR = 2 // fifo control, write
	regLCR = 3
	regMCR = 4
	regLSR = 5
	regSCR = 7
	regDLL = 0 // with LCR.DLAB
	regDLM = 1 // with LCR.DLAB
)

const (
	lcrDLAB = 0x80
	lcr8N1  = 0x03
	fcrFIFO = 0x01
	lsrTHRE = 0x20
)

// Config describes a UART and its line settings. Register r is accessed with
// RegWidth bytes at Addr + RegOffset + r<<RegShift.
type Config struct {
	Addr      uintptr `yaml:"addr"`
	Freq      uint32  `yaml:"freq"`
	Baud      uint32  `yaml:"baud"`
	RegShift  uint32  `yaml:"regShift"`
	RegWidth  uint32  `yaml:"regWidth"`
	RegOffset uint32  `yaml:"regOffset"`
}

func (c Config) Validate() error {
	switch {
	case c.Addr == 0:
		return fmt.Errorf("uart8250: %w: base 0x0", soc.ErrInvalidAddress)
	case c.RegWidth != 1 && c.RegWidth != 2 && c.RegWidth != 4:
		return fmt.Errorf("uart8250: %w: register width %d", soc.ErrGeometry, c.RegWidth)
	case c.RegShift > 4:
		return fmt.Errorf("uart8250: %w: register shift %d", soc.ErrGeometry, c.RegShift)
	case c.Baud == 0 || c.Freq < 16*c.Baud:
		return fmt.Errorf("uart8250: %w: %d baud from %d Hz", soc.ErrGeometry, c.Baud, c.Freq)
	}
	return nil
}

// Divisor returns the baud rate divisor, rounded to nearest.
func (c Config) Divisor() uint16 {
	return uint16((uint64(c.Freq) + 8*uint64(c.Baud)) / (16 * uint64(c.Baud)))
}

type UART struct {
	bus mmio.Bus
	cfg Config
}

// Init programs the line settings and returns the console. Interrupts stay
// disabled, the console is polled.
func Init(bus mmio.Bus, cfg Config) (*UART, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	u := &UART{bus: bus, cfg: cfg}
	div := cfg.Divisor()

	u.out(regIER, 0)
	u.out(regLCR, lcrDLAB)
	u.out(regDLL, uint32(div&0xff))
	u.out(regDLM, uint32(div>>8))
	u.out(regLCR, lcr8N1)
	u.out(regFCR, fcrFIFO)
	u.out(regMCR, 0)
	u.in(regLSR)
	u.in(regRBR)
	u.out(regSCR, 0)
	return u, nil
}

func (u *UART) Config() Config { return u.cfg }

func (u *UART) addr(r int) uintptr {
	return u.cfg.Addr + uintptr(u.cfg.RegOffset) + uintptr(r)<<u.cfg.RegShift
}

func (u *UART) in(r int) uint32 {
	switch u.cfg.RegWidth {
	case 1:
		return uint32(u.bus.Load8(u.addr(r)))
	case 2:
		return uint32(u.bus.Load16(u.addr(r)))
	}
	return u.bus.Load32(u.addr(r))
}

func (u *UART) out(r int, v uint32) {
	switch u.cfg.RegWidth {
	case 1:
		u.bus.Store8(u.addr(r), uint8(v))
	case 2:
		u.bus.Store16(u.addr(r), uint16(v))
	default:
		u.bus.Store32(u.addr(r), v)
	}
}

// WriteByte blocks until the transmitter accepts c.
func (u *UART) WriteByte(c byte) error {
	for u.in(regLSR)&lsrTHRE == 0 {
		// wait
	}
	u.out(regTHR, uint32(c))
	return nil
}

func (u *UART) Write(p []byte) (int, error) {
	for _, c := range p {
		u.WriteByte(c)
	}
	return len(p), nil
}
