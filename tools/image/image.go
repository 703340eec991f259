// Package image packs the firmware ELF into a flat boot image headed by the
// platform descriptor.
//
// Layout:
//
//	0x0000 platform descriptor
//	0x1000 loadable sections, the first byte at the ELF entry point
package image

import (
	"debug/elf"
	"errors"
	"fmt"
	"io"

	"github.com/clktmr/cheshire/platform"
)

const PayloadOffset = 0x1000

var ErrBeforeEntry = errors.New("section below entry point")

// Segment is loadable data at a physical address.
type Segment struct {
	Addr uint64
	Data []byte
}

// Segments returns the allocated PROGBITS sections of f.
func Segments(f *elf.File) ([]Segment, error) {
	var segs []Segment
	for _, s := range f.Sections {
		if s.Type != elf.SHT_PROGBITS || s.Flags&elf.SHF_ALLOC == 0 {
			continue
		}
		data, err := s.Data()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", s.Name, err)
		}
		segs = append(segs, Segment{s.Addr, data})
	}
	return segs, nil
}

// Build writes the image of segs, loaded at entry, to dst.
func Build(dst io.WriterAt, d *platform.Descriptor, entry uint64, segs []Segment) error {
	header, err := d.MarshalBinary()
	if err != nil {
		return err
	}
	if _, err := dst.WriteAt(header, 0); err != nil {
		return err
	}
	payload := io.NewOffsetWriter(dst, PayloadOffset)
	for _, s := range segs {
		if s.Addr < entry {
			return fmt.Errorf("%w: 0x%x < 0x%x", ErrBeforeEntry, s.Addr, entry)
		}
		if _, err := payload.WriteAt(s.Data, int64(s.Addr-entry)); err != nil {
			return err
		}
	}
	return nil
}

// Header decodes the descriptor of an image.
func Header(r io.ReaderAt) (*platform.Descriptor, error) {
	b := make([]byte, platform.DescriptorSize)
	if _, err := r.ReadAt(b, 0); err != nil {
		return nil, err
	}
	var d platform.Descriptor
	if err := d.UnmarshalBinary(b); err != nil {
		return nil, err
	}
	return &d, nil
}
