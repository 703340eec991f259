package board_test

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/clktmr/cheshire/board"
	"github.com/clktmr/cheshire/platform"
	"github.com/clktmr/cheshire/soc"
)

func TestCheshire(t *testing.T) {
	if err := board.Cheshire.Validate(); err != nil {
		t.Fatal(err)
	}
	d := board.Cheshire.Descriptor()
	if d.Name != "CHESHIRE RISC-V" || d.HartCount != 1 || d.HartStackSize != 8192 {
		t.Fatalf("unexpected descriptor %+v", d)
	}
	if d.Features != platform.FeatureMFaultsDelegation|platform.FeatureCLIC {
		t.Fatalf("unexpected features %v", d.Features)
	}
}

func TestLoad(t *testing.T) {
	b, err := board.Load(filepath.Join("testdata", "quad.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	if b.Topology.HartCount != 4 || b.PLIC.NumContexts != 8 {
		t.Fatalf("unexpected topology %+v, plic %+v", b.Topology, b.PLIC)
	}
	if b.CLIC.Addr != 0x0800_0000 || b.MTimer.MtimeAddr != 0x0204_bff8 {
		t.Fatalf("hex addresses not decoded: clic %#x mtime %#x", b.CLIC.Addr, b.MTimer.MtimeAddr)
	}
	if b.Version != (platform.Version{Major: 0, Minor: 2}) {
		t.Fatalf("expected version 0.2, got %v", b.Version)
	}
	if b.Features&platform.FeatureHartSecondaryBoot == 0 {
		t.Fatalf("expected hart-secondary-boot, got %v", b.Features)
	}
	if harts := b.Topology.Harts(); len(harts) != 4 || harts[3] != 3 {
		t.Fatalf("unexpected harts %v", harts)
	}
}

func TestMarshal(t *testing.T) {
	data, err := board.Marshal(&board.Cheshire)
	if err != nil {
		t.Fatal(err)
	}
	b, err := board.Parse(data)
	if err != nil {
		t.Fatalf("%v\n%s", err, data)
	}
	if *b != board.Cheshire {
		t.Fatalf("expected %+v, got %+v", board.Cheshire, *b)
	}
}

func TestValidate(t *testing.T) {
	tests := map[string]struct {
		modify func(*board.Board)
		err    error
	}{
		"noHarts":      {func(b *board.Board) { b.Topology.HartCount = 0 }, soc.ErrGeometry},
		"bootHart":     {func(b *board.Board) { b.Topology.BootHart = 1 }, soc.ErrNoDevice},
		"stack":        {func(b *board.Board) { b.HartStackSize = 100 }, soc.ErrGeometry},
		"plicAddr":     {func(b *board.Board) { b.PLIC.Addr = 0 }, soc.ErrInvalidAddress},
		"plicContexts": {func(b *board.Board) { b.Topology.HartCount = 2 }, soc.ErrGeometry},
		"mswiCover": {func(b *board.Board) {
			b.Topology.HartCount = 2
			b.PLIC.NumContexts = 4
		}, soc.ErrNoDevice},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			b := board.Cheshire
			tc.modify(&b)
			if err := b.Validate(); !errors.Is(err, tc.err) {
				t.Fatalf("expected %v, got %v", tc.err, err)
			}
		})
	}
}

func TestParseStrict(t *testing.T) {
	_, err := board.Parse([]byte("name: x\nplicc:\n  addr: 1\n"))
	if err == nil || !strings.Contains(err.Error(), "plicc") {
		t.Fatalf("expected unknown field error, got %v", err)
	}
}

func TestLookup(t *testing.T) {
	b, err := board.Lookup("cheshire")
	if err != nil {
		t.Fatal(err)
	}
	b.Topology.HartCount = 8
	if board.Cheshire.Topology.HartCount != 1 {
		t.Fatal("lookup returned the built-in board itself")
	}
	b, err = board.Lookup(filepath.Join("testdata", "quad.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	if b.Name != "CHESHIRE QUAD" {
		t.Fatalf("expected CHESHIRE QUAD, got %q", b.Name)
	}
	if _, err := board.Lookup("nonexistent"); err == nil {
		t.Fatal("expected error for unknown board")
	}
}
