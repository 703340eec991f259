package board

import (
	"testing"

	"github.com/clktmr/cheshire/soc/mmio"
)

type nop struct{}

func (nop) Load(uintptr, int) uint64   { return 0 }
func (nop) Store(uintptr, int, uint64) {}

func TestRegions(t *testing.T) {
	b := Cheshire
	b.Topology.HartCount = 2
	var bus mmio.Map
	for _, r := range b.regions() {
		if err := bus.Mount(r.base, r.size, nop{}); err != nil {
			t.Fatalf("region 0x%x+0x%x: %v", r.base, r.size, err)
		}
	}
}
