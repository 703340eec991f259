package sim_test

import (
	"bytes"
	"errors"
	"testing"

	"github.com/clktmr/cheshire/soc"
	"github.com/clktmr/cheshire/soc/aclint"
	"github.com/clktmr/cheshire/soc/clic"
	"github.com/clktmr/cheshire/soc/riscv"
	"github.com/clktmr/cheshire/soc/uart8250"
	"github.com/clktmr/cheshire/sim"
	cheshiretesting "github.com/clktmr/cheshire/testing"
)

func TestMain(m *testing.M) { cheshiretesting.TestMain(m) }

func newSoC(t *testing.T, harts int) *sim.SoC {
	t.Helper()
	s, err := sim.New(cheshiretesting.Board(harts))
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func TestNew(t *testing.T) {
	b := cheshiretesting.Board(2)
	b.PLIC.NumContexts = 3
	if _, err := sim.New(b); !errors.Is(err, soc.ErrGeometry) {
		t.Fatalf("expected %v, got %v", soc.ErrGeometry, err)
	}
}

func TestSoftwareInterrupt(t *testing.T) {
	s := newSoC(t, 2)
	b := s.Board()
	local := clic.New(s.Bus(), b.CLIC, 2)
	mswi := aclint.NewMSWI(s.Bus(), b.MSWI)

	if err := mswi.Send(1); err != nil {
		t.Fatal(err)
	}
	for h, expected := range []bool{false, true} {
		pending, err := local.Pending(riscv.HartID(h), riscv.IRQMSoft)
		if err != nil {
			t.Fatal(err)
		}
		if pending != expected {
			t.Fatalf("hart%d: expected pending %v, got %v", h, expected, pending)
		}
	}
	if err := mswi.Clear(1); err != nil {
		t.Fatal(err)
	}
	if pending, _ := local.Pending(1, riscv.IRQMSoft); pending {
		t.Fatal("expected pending cleared with msip")
	}
}

func TestTimer(t *testing.T) {
	s := newSoC(t, 1)
	b := s.Board()
	local := clic.New(s.Bus(), b.CLIC, 1)
	timer := aclint.NewMTimer(s.Bus(), b.MTimer)

	s.Advance(0x1_0000_0005)
	if v := timer.Value(); v != 0x1_0000_0005 {
		t.Fatalf("expected counter 0x100000005, got %#x", v)
	}
	if err := timer.WarmInit(0); err != nil {
		t.Fatal(err)
	}
	if err := timer.Start(0, s.Now()+100); err != nil {
		t.Fatal(err)
	}

	s.Advance(99)
	if n := s.TimerFires(0); n != 0 {
		t.Fatalf("fired %d times before compare value", n)
	}
	s.Advance(1)
	s.Advance(1000)
	if n := s.TimerFires(0); n != 1 {
		t.Fatalf("expected 1 fire, got %d", n)
	}
	if pending, _ := local.Pending(0, riscv.IRQMTimer); !pending {
		t.Fatal("expected timer interrupt pending")
	}

	if err := timer.Start(0, s.Now()+1); err != nil {
		t.Fatal(err)
	}
	if pending, _ := local.Pending(0, riscv.IRQMTimer); pending {
		t.Fatal("expected rearming to withdraw the interrupt")
	}
	if err := timer.Stop(0); err != nil {
		t.Fatal(err)
	}
	s.Advance(1 << 40)
	if n := s.TimerFires(0); n != 1 {
		t.Fatalf("stopped timer fired, %d fires", n)
	}
}

func TestConsole(t *testing.T) {
	s := newSoC(t, 1)
	u, err := uart8250.Init(s.Bus(), s.Board().UART)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := u.Write([]byte("OpenSBI\n")); err != nil {
		t.Fatal(err)
	}
	if got := s.Console(); got != "OpenSBI\n" {
		t.Fatalf("expected %q, got %q", "OpenSBI\n", got)
	}
}

func TestSnapshot(t *testing.T) {
	s := newSoC(t, 2)
	before := s.Snapshot()
	local := clic.New(s.Bus(), s.Board().CLIC, 2)
	if err := local.Init(1); err != nil {
		t.Fatal(err)
	}
	if bytes.Equal(before, s.Snapshot()) {
		t.Fatal("expected init to change the registers")
	}
}
