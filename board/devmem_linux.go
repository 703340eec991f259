//go:build linux

package board

import (
	"errors"

	"github.com/clktmr/cheshire/soc/mmio"
)

// OpenDevMem maps the registers of all controllers of b from /dev/mem onto a
// bus. unmap releases the mappings.
func (b *Board) OpenDevMem() (bus *mmio.Map, unmap func() error, err error) {
	bus = new(mmio.Map)
	var windows []*mmio.Window
	unmap = func() error {
		var errs []error
		for _, w := range windows {
			errs = append(errs, w.Close())
		}
		return errors.Join(errs...)
	}
	for _, r := range b.regions() {
		w, err := mmio.OpenDevMem(r.base, r.size)
		if err != nil {
			unmap()
			return nil, nil, err
		}
		windows = append(windows, w)
		if err := bus.Mount(r.base, r.size, w); err != nil {
			unmap()
			return nil, nil, err
		}
	}
	return bus, unmap, nil
}
