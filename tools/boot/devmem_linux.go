//go:build linux

package boot

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/clktmr/cheshire/board"
	"github.com/clktmr/cheshire/bringup"
	"github.com/clktmr/cheshire/machine"
)

// UpDevMem boots the board called name on the real registers, mapped from
// /dev/mem.
func UpDevMem(ctx context.Context, name string, log *logrus.Logger) error {
	b, err := board.Lookup(name)
	if err != nil {
		return err
	}
	bus, unmap, err := b.OpenDevMem()
	if err != nil {
		return err
	}
	defer unmap()
	p := bringup.New(bus, b, bringup.WithLogger(log))
	return machine.New(p, p.Console(), log).BootAll(ctx, b.Topology)
}
