// Package bringup brings the harts of a board into the state the supervisor
// expects: console, local and global interrupt controllers, inter-processor
// interrupts and the timer.
//
// Platform sequences the drivers per boot phase and implements the runtime's
// platform.Operations. It holds no state between calls apart from the line
// configuration of the local interrupt controller, which is shared by all
// harts and written without locking. The runtime calling into Platform
// guarantees that cold phase work is done by exactly one hart and that
// delegation requests for the same line are serialized.
package bringup
