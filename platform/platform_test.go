package platform_test

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/clktmr/cheshire/platform"
	"github.com/clktmr/cheshire/soc"
)

var cheshire = platform.Descriptor{
	Name:            "CHESHIRE RISC-V",
	FirmwareVersion: platform.FirmwareVersion,
	Version:         platform.Version{0, 1},
	Features:        platform.FeatureMFaultsDelegation | platform.FeatureCLIC,
	HartCount:       1,
	HartStackSize:   platform.DefaultHartStackSize,
}

func TestDescriptorEncoding(t *testing.T) {
	b, err := cheshire.MarshalBinary()
	if err != nil {
		t.Fatal(err)
	}
	if len(b) != platform.DescriptorSize {
		t.Fatalf("expected %d bytes, got %d", platform.DescriptorSize, len(b))
	}
	if !strings.HasPrefix(string(b[0x08:]), "CHESHIRE RISC-V\x00") {
		t.Fatalf("name not at offset 0x08: %q", b[0x08:0x20])
	}

	var d platform.Descriptor
	if err := d.UnmarshalBinary(b); err != nil {
		t.Fatal(err)
	}
	if d != cheshire {
		t.Fatalf("expected %+v, got %+v", cheshire, d)
	}

	b[0x50] ^= 0x2
	if err := d.UnmarshalBinary(b); err != platform.ErrChecksum {
		t.Fatalf("expected %v, got %v", platform.ErrChecksum, err)
	}
	if err := d.UnmarshalBinary(b[:0x20]); !errors.Is(err, platform.ErrSize) {
		t.Fatalf("expected %v, got %v", platform.ErrSize, err)
	}
}

func TestDescriptorName(t *testing.T) {
	tests := map[string]struct {
		name string
		err  error
	}{
		"latin1":   {"Schlüssel Board", nil},
		"longest":  {strings.Repeat("x", 63), nil},
		"tooLong":  {strings.Repeat("x", 64), platform.ErrName},
		"katakana": {"ボード", platform.ErrName},
		"nul":      {"a\x00b", platform.ErrName},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			d := cheshire
			d.Name = tc.name
			b, err := d.MarshalBinary()
			if !errors.Is(err, tc.err) {
				t.Fatalf("expected %v, got %v", tc.err, err)
			}
			if err != nil {
				return
			}
			var got platform.Descriptor
			got.UnmarshalBinary(b)
			if got.Name != tc.name {
				t.Fatalf("expected %q, got %q", tc.name, got.Name)
			}
		})
	}
}

func TestFeatureText(t *testing.T) {
	var f platform.Feature
	if err := f.UnmarshalText([]byte("mfaults-delegation | clic")); err != nil {
		t.Fatal(err)
	}
	if f != cheshire.Features {
		t.Fatalf("expected %v, got %v", cheshire.Features, f)
	}
	if s := f.String(); s != "mfaults-delegation|clic" {
		t.Fatalf("expected %q, got %q", "mfaults-delegation|clic", s)
	}
	if err := f.UnmarshalText([]byte("clic|pmp")); err == nil {
		t.Fatal("unknown feature accepted")
	}
}

func TestVersionText(t *testing.T) {
	var v platform.Version
	if err := v.UnmarshalText([]byte("0.1")); err != nil || v != (platform.Version{0, 1}) {
		t.Fatalf("expected 0.1, got %v (%v)", v, err)
	}
	for _, bad := range []string{"1", "1.x", "70000.0"} {
		if err := v.UnmarshalText([]byte(bad)); err == nil {
			t.Errorf("%q: expected error", bad)
		}
	}
}

func TestCode(t *testing.T) {
	wrap := func(err error) error {
		return &platform.Error{Subsystem: platform.SubsystemIrqchip, Err: fmt.Errorf("plic: %w", err)}
	}
	tests := map[string]struct {
		err  error
		code int
	}{
		"success":   {nil, platform.CodeSuccess},
		"irqRange":  {wrap(soc.ErrIRQRange), platform.CodeInvalidParam},
		"address":   {wrap(soc.ErrInvalidAddress), platform.CodeInvalidAddress},
		"geometry":  {wrap(soc.ErrGeometry), platform.CodeNotSupported},
		"noDevice":  {wrap(soc.ErrNoDevice), platform.CodeNoDevice},
		"unclassed": {wrap(errors.New("stuck bit")), platform.CodeFailed},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			if code := platform.Code(tc.err); code != tc.code {
				t.Fatalf("expected %d, got %d", tc.code, code)
			}
		})
	}
}

func TestError(t *testing.T) {
	err := error(&platform.Error{Subsystem: platform.SubsystemTimer, Err: fmt.Errorf("mtimer: %w", soc.ErrGeometry)})
	if s := err.Error(); s != "timer: mtimer: unsupported register geometry" {
		t.Fatalf("unexpected message %q", s)
	}
	var perr *platform.Error
	if !errors.As(err, &perr) || perr.Subsystem != platform.SubsystemTimer {
		t.Fatalf("expected timer subsystem error, got %v", err)
	}
}
