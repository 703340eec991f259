package bringup

import (
	"github.com/clktmr/cheshire/platform"
	"github.com/clktmr/cheshire/soc/aclint"
	"github.com/clktmr/cheshire/soc/riscv"
)

// Timer brings up the shared counter and the harts' compare registers.
type Timer struct {
	mtimer *aclint.MTimer
}

func NewTimer(t *aclint.MTimer) *Timer { return &Timer{mtimer: t} }

func (t *Timer) Init(h riscv.HartID, phase platform.Phase) error {
	if phase == platform.Cold {
		if err := t.mtimer.ColdInit(); err != nil {
			return err
		}
	}
	return t.mtimer.WarmInit(h)
}

// Value reads the platform-wide counter.
func (t *Timer) Value() uint64 { return t.mtimer.Value() }

// Freq returns the counter frequency in Hz.
func (t *Timer) Freq() uint64 { return t.mtimer.Freq() }

// Start raises hart h's timer interrupt once the counter reaches next.
func (t *Timer) Start(h riscv.HartID, next uint64) error { return t.mtimer.Start(h, next) }

func (t *Timer) Stop(h riscv.HartID) error { return t.mtimer.Stop(h) }
