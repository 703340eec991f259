package sim

import (
	"github.com/clktmr/cheshire/soc/mmio"
	"github.com/clktmr/cheshire/soc/uart8250"
)

const (
	uartTHR  = 0
	uartLCR  = 3
	uartLSR  = 5
	lcrDLAB  = 0x80
	lsrEmpty = 0x60 // THRE | TEMT
)

// uart is an 8250 whose transmitter is always idle.
type uart struct {
	soc  *SoC
	cfg  uart8250.Config
	regs *mmio.Region
	tx   []byte
}

func newUART(s *SoC) *uart {
	u := &uart{soc: s, cfg: s.board.UART}
	u.regs = mmio.NewRegion(u.span())
	return u
}

func (u *uart) span() uintptr {
	return uintptr(u.cfg.RegOffset) + 8<<u.cfg.RegShift
}

func (u *uart) reg(off uintptr) int {
	return int((off - uintptr(u.cfg.RegOffset)) >> u.cfg.RegShift)
}

func (u *uart) Load(off uintptr, size int) uint64 {
	u.soc.mu.Lock()
	defer u.soc.mu.Unlock()
	if u.reg(off) == uartLSR {
		return lsrEmpty
	}
	return u.regs.Load(off, size)
}

func (u *uart) Store(off uintptr, size int, v uint64) {
	u.soc.mu.Lock()
	defer u.soc.mu.Unlock()
	lcr := u.regs.Load(uintptr(u.cfg.RegOffset)+uartLCR<<u.cfg.RegShift, 1)
	if u.reg(off) == uartTHR && lcr&lcrDLAB == 0 {
		u.tx = append(u.tx, byte(v))
		return
	}
	u.regs.Store(off, size, v)
}
