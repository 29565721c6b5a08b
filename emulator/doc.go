// Package emulator is a host model of a Cortex-M class microcontroller,
// detailed enough to run the runtime core and its firmware programs
// unmodified: a memory map of flash, SRAM, the reset and clock controller,
// the GPIO ports of a board and the system control block, with
// asynchronous exception delivery through the placed vector table.
//
// Firmware never returns, so it runs as a coroutine on its own goroutine.
// It executes only while the host is inside Step or Run, and parks between
// two instructions when its cycle budget is spent. Every bus access, Nop
// and Breakpoint is one instruction.
package emulator
