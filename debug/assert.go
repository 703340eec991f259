//go:build debug

package debug

import "fmt"

// Enabled guards assertions whose condition is expensive to compute.
const Enabled = true

func Assert(b bool, format string, args ...any) {
	if !b {
		panic(fmt.Sprintf(format, args...))
	}
}
