package platform

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/sigurn/crc8"
	"golang.org/x/text/encoding/charmap"
)

// Version is a major.minor version number.
type Version struct {
	Major, Minor uint16
}

func (v Version) String() string { return fmt.Sprintf("%d.%d", v.Major, v.Minor) }

func (v Version) MarshalText() ([]byte, error) { return []byte(v.String()), nil }

func (v *Version) UnmarshalText(text []byte) error {
	major, minor, ok := strings.Cut(string(text), ".")
	if !ok {
		return fmt.Errorf("version %q: expected major.minor", text)
	}
	ma, err := strconv.ParseUint(major, 10, 16)
	if err != nil {
		return fmt.Errorf("version %q: %w", text, err)
	}
	mi, err := strconv.ParseUint(minor, 10, 16)
	if err != nil {
		return fmt.Errorf("version %q: %w", text, err)
	}
	*v = Version{uint16(ma), uint16(mi)}
	return nil
}

func (v Version) encode() uint32 { return uint32(v.Major)<<16 | uint32(v.Minor) }

func decodeVersion(v uint32) Version { return Version{uint16(v >> 16), uint16(v)} }

// FirmwareVersion is the version of the runtime contract implemented here.
var FirmwareVersion = Version{1, 2}

// Feature is a set of optional platform capabilities.
type Feature uint64

const (
	FeatureTimerValue Feature = 1 << iota
	FeatureHartHotplug
	FeatureMFaultsDelegation
	FeatureHartSecondaryBoot
	FeatureCLIC
)

var featureNames = []struct {
	f    Feature
	name string
}{
	{FeatureTimerValue, "timer-value"},
	{FeatureHartHotplug, "hart-hotplug"},
	{FeatureMFaultsDelegation, "mfaults-delegation"},
	{FeatureHartSecondaryBoot, "hart-secondary-boot"},
	{FeatureCLIC, "clic"},
}

func (f Feature) String() string {
	var names []string
	for _, n := range featureNames {
		if f&n.f != 0 {
			names = append(names, n.name)
		}
	}
	if rest := f &^ (FeatureCLIC<<1 - 1); rest != 0 {
		names = append(names, fmt.Sprintf("%#x", uint64(rest)))
	}
	return strings.Join(names, "|")
}

func (f Feature) MarshalText() ([]byte, error) { return []byte(f.String()), nil }

// UnmarshalText parses a '|' separated list of feature names.
func (f *Feature) UnmarshalText(text []byte) error {
	*f = 0
next:
	for _, name := range strings.Split(string(text), "|") {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		for _, n := range featureNames {
			if n.name == name {
				*f |= n.f
				continue next
			}
		}
		return fmt.Errorf("unknown feature %q", name)
	}
	return nil
}

// DefaultHartStackSize is the runtime's default per-hart stack.
const DefaultHartStackSize = 8192

// Descriptor is the read-only capability record of a platform.
type Descriptor struct {
	Name            string
	FirmwareVersion Version
	Version         Version
	Features        Feature
	HartCount       int
	HartStackSize   int
}

// Binary layout of an encoded Descriptor, little-endian:
//
//	0x00 firmware version (major<<16 | minor)
//	0x04 platform version
//	0x08 name, Latin-1, NUL padded
//	0x48 features
//	0x50 hart count
//	0x54 hart stack size
//	0x58 reserved
//	0x5f CRC-8 of bytes 0x00 to 0x5e
const (
	DescriptorSize = 0x60
	nameLen        = 0x40
)

var (
	ErrName     = errors.New("descriptor name not encodable")
	ErrChecksum = errors.New("descriptor checksum mismatch")
	ErrSize     = errors.New("descriptor size mismatch")
)

var descCRC8 = crc8.MakeTable(crc8.CRC8)

func (d *Descriptor) MarshalBinary() ([]byte, error) {
	name, err := charmap.ISO8859_1.NewEncoder().Bytes([]byte(d.Name))
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrName, d.Name, err)
	}
	if len(name) >= nameLen || bytes.IndexByte(name, 0) >= 0 {
		return nil, fmt.Errorf("%w: %q", ErrName, d.Name)
	}

	b := make([]byte, DescriptorSize)
	binary.LittleEndian.PutUint32(b[0x00:], d.FirmwareVersion.encode())
	binary.LittleEndian.PutUint32(b[0x04:], d.Version.encode())
	copy(b[0x08:0x08+nameLen], name)
	binary.LittleEndian.PutUint64(b[0x48:], uint64(d.Features))
	binary.LittleEndian.PutUint32(b[0x50:], uint32(d.HartCount))
	binary.LittleEndian.PutUint32(b[0x54:], uint32(d.HartStackSize))
	b[DescriptorSize-1] = crc8.Checksum(b[:DescriptorSize-1], descCRC8)
	return b, nil
}

func (d *Descriptor) UnmarshalBinary(b []byte) error {
	if len(b) != DescriptorSize {
		return fmt.Errorf("%w: %d bytes", ErrSize, len(b))
	}
	if crc8.Checksum(b[:DescriptorSize-1], descCRC8) != b[DescriptorSize-1] {
		return ErrChecksum
	}
	raw := b[0x08 : 0x08+nameLen]
	if i := bytes.IndexByte(raw, 0); i >= 0 {
		raw = raw[:i]
	}
	name, err := charmap.ISO8859_1.NewDecoder().Bytes(raw)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrName, err)
	}
	*d = Descriptor{
		Name:            string(name),
		FirmwareVersion: decodeVersion(binary.LittleEndian.Uint32(b[0x00:])),
		Version:         decodeVersion(binary.LittleEndian.Uint32(b[0x04:])),
		Features:        Feature(binary.LittleEndian.Uint64(b[0x48:])),
		HartCount:       int(binary.LittleEndian.Uint32(b[0x50:])),
		HartStackSize:   int(binary.LittleEndian.Uint32(b[0x54:])),
	}
	return nil
}
