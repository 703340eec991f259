//go:build !debug

// Package debug provides assertions for programming errors in register
// access. They are compiled in with the debug build tag and are no-ops
// otherwise.
package debug

const Enabled = false

// Assert panics with the formatted message if b is false.
func Assert(b bool, format string, args ...any) {}
