// The soc package provides the hardware abstraction layer for the Cheshire
// RISC-V platform and compatible boards.
//
// It implements low-level access to the interrupt controllers, the ACLINT
// and the console UART. All register layouts are directly exposed and in
// general not safe for concurrent use. The bringup package sequences these
// drivers into the platform operations.
package soc
