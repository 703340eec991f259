package soc

import "errors"

// Errors reported by the drivers' init primitives. Drivers wrap them with
// the offending value, use errors.Is to classify.
var (
	ErrInvalidAddress = errors.New("invalid address range")
	ErrGeometry       = errors.New("unsupported register geometry")
	ErrIRQRange       = errors.New("interrupt line out of range")
	ErrNoDevice       = errors.New("hart not covered by device")
)
