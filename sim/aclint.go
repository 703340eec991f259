package sim

import (
	"math"

	"github.com/clktmr/cheshire/soc/mmio"
	"github.com/clktmr/cheshire/soc/riscv"
)

// mswi raises the machine software interrupt of a hart while its msip bit is
// set.
type mswi struct {
	soc  *SoC
	regs *mmio.Region
}

func (m *mswi) Load(off uintptr, size int) uint64 {
	m.soc.mu.Lock()
	defer m.soc.mu.Unlock()
	return m.regs.Load(off, size)
}

func (m *mswi) Store(off uintptr, size int, v uint64) {
	m.soc.mu.Lock()
	defer m.soc.mu.Unlock()
	v &= 1 // msip has a single writable bit
	m.regs.Store(off, size, v)
	h := m.soc.board.MSWI.FirstHart + riscv.HartID(off/4)
	m.soc.setPending(h, riscv.IRQMSoft, v != 0)
}

// mtimer models the compare registers. A hart's timer interrupt fires once
// when the counter reaches its compare value. Writing a compare value above
// the counter withdraws the interrupt and rearms it.
type mtimer struct {
	soc   *SoC
	now   uint64
	cmp   *mmio.Region
	armed []bool
	fires []int
}

func newMTimer(s *SoC) *mtimer {
	n := s.board.MTimer.HartCount
	t := &mtimer{
		soc:   s,
		cmp:   mmio.NewRegion(s.board.MTimer.MtimecmpSize),
		armed: make([]bool, n),
		fires: make([]int, n),
	}
	// Compare registers come out of reset disarmed.
	for i := range t.cmp.Bytes() {
		t.cmp.Bytes()[i] = 0xff
	}
	return t
}

func (t *mtimer) index(h riscv.HartID) (int, bool) {
	first := t.soc.board.MTimer.FirstHart
	if h < first || int(h-first) >= len(t.fires) {
		return 0, false
	}
	return int(h - first), true
}

func (t *mtimer) compare(i int) uint64 {
	return t.cmp.Load(uintptr(8*i), 8)
}

func (t *mtimer) hart(i int) riscv.HartID {
	return t.soc.board.MTimer.FirstHart + riscv.HartID(i)
}

func (t *mtimer) check() {
	for i, armed := range t.armed {
		if armed && t.compare(i) <= t.now {
			t.armed[i] = false
			t.fires[i]++
			t.soc.setPending(t.hart(i), riscv.IRQMTimer, true)
		}
	}
}

func (t *mtimer) Load(off uintptr, size int) uint64 {
	t.soc.mu.Lock()
	defer t.soc.mu.Unlock()
	return t.cmp.Load(off, size)
}

func (t *mtimer) Store(off uintptr, size int, v uint64) {
	t.soc.mu.Lock()
	defer t.soc.mu.Unlock()
	t.cmp.Store(off, size, v)
	i := int(off / 8)
	if i >= len(t.armed) {
		return
	}
	if cmp := t.compare(i); cmp == math.MaxUint64 {
		t.armed[i] = false
	} else {
		t.armed[i] = true
	}
	t.soc.setPending(t.hart(i), riscv.IRQMTimer, false)
	t.check()
}

// mtime is the shared counter.
type mtime mtimer

func (t *mtime) Load(off uintptr, size int) uint64 {
	t.soc.mu.Lock()
	defer t.soc.mu.Unlock()
	return t.now >> (8 * off) & (1<<(8*size) - 1)
}

func (t *mtime) Store(off uintptr, size int, v uint64) {
	t.soc.mu.Lock()
	defer t.soc.mu.Unlock()
	mask := uint64(1<<(8*size)-1) << (8 * off)
	t.now = t.now&^mask | v<<(8*off)&mask
	(*mtimer)(t).check()
}
