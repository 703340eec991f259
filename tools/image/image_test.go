package image_test

import (
	"bytes"
	"errors"
	"testing"

	"github.com/clktmr/cheshire/board"
	"github.com/clktmr/cheshire/tools/image"
)

// buffer is a growing in-memory io.WriterAt and io.ReaderAt.
type buffer struct{ b []byte }

func (w *buffer) WriteAt(p []byte, off int64) (int, error) {
	if end := int(off) + len(p); end > len(w.b) {
		w.b = append(w.b, make([]byte, end-len(w.b))...)
	}
	return copy(w.b[off:], p), nil
}

func (w *buffer) ReadAt(p []byte, off int64) (int, error) {
	return copy(p, w.b[off:]), nil
}

func TestBuild(t *testing.T) {
	const entry = 0x8000_0000
	segs := []image.Segment{
		{entry, []byte{0x6f, 0x00, 0x00, 0x00}},
		{entry + 0x100, []byte("data")},
	}
	d := board.Cheshire.Descriptor()
	var img buffer
	if err := image.Build(&img, &d, entry, segs); err != nil {
		t.Fatal(err)
	}
	if len(img.b) != image.PayloadOffset+0x104 {
		t.Fatalf("expected %d bytes, got %d", image.PayloadOffset+0x104, len(img.b))
	}
	if !bytes.Equal(img.b[image.PayloadOffset:][:4], segs[0].Data) {
		t.Fatalf("entry not at payload start: % x", img.b[image.PayloadOffset:][:4])
	}
	if got := string(img.b[image.PayloadOffset+0x100:]); got != "data" {
		t.Fatalf("expected %q, got %q", "data", got)
	}

	h, err := image.Header(&img)
	if err != nil {
		t.Fatal(err)
	}
	if *h != d {
		t.Fatalf("expected %+v, got %+v", d, *h)
	}
}

func TestBuildBeforeEntry(t *testing.T) {
	d := board.Cheshire.Descriptor()
	segs := []image.Segment{{0x7fff_fff0, []byte{0}}}
	err := image.Build(&buffer{}, &d, 0x8000_0000, segs)
	if !errors.Is(err, image.ErrBeforeEntry) {
		t.Fatalf("expected %v, got %v", image.ErrBeforeEntry, err)
	}
}
