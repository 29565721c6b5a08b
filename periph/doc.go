// Package periph composes register accesses into clock gating, GPIO pin mode
// configuration, and atomic pin set/reset for STM32-style peripherals.
//
// Pins are views over register state. Nothing here caches a register value.
package periph
