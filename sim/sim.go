// Package sim models a Cheshire SoC on an mmio.Map, precise enough to run the
// bring-up against it and observe the effects.
//
// The CLIC and PLIC are plain registers. No external source ever becomes
// pending, so a PLIC claim always reads 0. Writing an MSWI msip register and
// a compare match of the MTIMER set the matching pending bit in the target
// hart's CLIC instance. The MTIMER counter only moves when Advance is called.
// The UART transmits into a buffer.
package sim

import (
	"sync"

	"github.com/clktmr/cheshire/board"
	"github.com/clktmr/cheshire/soc/clic"
	"github.com/clktmr/cheshire/soc/mmio"
	"github.com/clktmr/cheshire/soc/riscv"
)

// Size of the modelled PLIC register space: priorities, pending, enables and
// one page per context.
const (
	plicContextBase   = 0x200000
	plicContextStride = 0x1000
)

type SoC struct {
	board *board.Board
	bus   mmio.Map

	// mu guards device state shared with Advance. Device hooks run with the
	// bus locked and take mu after it.
	mu     sync.Mutex
	clic   *mmio.Region
	plic   *mmio.Region
	mswi   *mswi
	mtimer *mtimer
	uart   *uart
}

// New builds the SoC described by b. b must be valid.
func New(b *board.Board) (*SoC, error) {
	if err := b.Validate(); err != nil {
		return nil, err
	}
	s := &SoC{board: b}

	clicSpan := b.CLIC.Size + uintptr(b.Topology.HartCount-1)*b.CLIC.HartStride
	s.clic = mmio.NewRegion(clicSpan)
	if err := s.bus.Mount(b.CLIC.Addr, clicSpan, s.clic); err != nil {
		return nil, err
	}

	plicSpan := min(b.PLIC.Size, plicContextBase+plicContextStride*uintptr(b.PLIC.NumContexts))
	s.plic = mmio.NewRegion(plicSpan)
	if err := s.bus.Mount(b.PLIC.Addr, plicSpan, s.plic); err != nil {
		return nil, err
	}

	s.mswi = &mswi{soc: s, regs: mmio.NewRegion(b.MSWI.Size)}
	if err := s.bus.Mount(b.MSWI.Addr, b.MSWI.Size, s.mswi); err != nil {
		return nil, err
	}

	s.mtimer = newMTimer(s)
	if err := s.bus.Mount(b.MTimer.MtimeAddr, b.MTimer.MtimeSize, (*mtime)(s.mtimer)); err != nil {
		return nil, err
	}
	if err := s.bus.Mount(b.MTimer.MtimecmpAddr, b.MTimer.MtimecmpSize, s.mtimer); err != nil {
		return nil, err
	}

	s.uart = newUART(s)
	if err := s.bus.Mount(b.UART.Addr, s.uart.span(), s.uart); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *SoC) Board() *board.Board { return s.board }

// Bus returns the SoC's interconnect.
func (s *SoC) Bus() *mmio.Map { return &s.bus }

// Stores returns the number of register writes issued on the bus so far.
func (s *SoC) Stores() int { return s.bus.Stores() }

// setPending sets or clears line irq in hart h's CLIC instance. Must be
// called with s.mu held.
func (s *SoC) setPending(h riscv.HartID, irq riscv.IRQ, pending bool) {
	if int(h) >= s.board.Topology.HartCount {
		return
	}
	off := uintptr(h)*s.board.CLIC.HartStride + clic.PendingOffset(irq)
	var v uint64
	if pending {
		v = 1
	}
	s.clic.Store(off, 1, v)
}

// Snapshot returns a copy of the interrupt controllers' registers.
func (s *SoC) Snapshot() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := make([]byte, 0, len(s.clic.Bytes())+len(s.plic.Bytes()))
	snap = append(snap, s.clic.Bytes()...)
	return append(snap, s.plic.Bytes()...)
}

// Advance moves the timer counter forward by ticks and raises the timer
// interrupt of every hart whose compare value was reached.
func (s *SoC) Advance(ticks uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mtimer.now += ticks
	s.mtimer.check()
}

// Now returns the timer counter.
func (s *SoC) Now() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mtimer.now
}

// TimerFires returns how often hart h's timer interrupt was raised.
func (s *SoC) TimerFires(h riscv.HartID) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i, ok := s.mtimer.index(h); ok {
		return s.mtimer.fires[i]
	}
	return 0
}

// Console returns everything transmitted by the UART.
func (s *SoC) Console() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return string(s.uart.tx)
}
