// Package mmio provides volatile access to memory-mapped peripheral registers.
//
// Every access goes through a Bus, and is performed exactly once, in program
// order. Client code never converts integers to pointers: a Register is only
// obtained from the Block describing the peripheral that owns it.
package mmio
