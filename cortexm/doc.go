// Package cortexm is the runtime core of a Cortex-M class microcontroller:
// the reset entry, the exception vector table, the terminal fault handler,
// and the abort strategy used in place of panic unwinding.
//
// The package only talks to hardware through the Core and Linker interfaces.
// On a TinyGo target Core is bound to the processor itself; on the host the
// emulator package provides both.
//
// Control flow is one-way. Reset runs the application's bring-up once, then
// its steady state loop forever. Any exception moves the core from Running
// to Trapped, and a Trapped core never resumes the interrupted program.
package cortexm
