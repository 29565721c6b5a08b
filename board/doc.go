// Package board describes the microcontroller boards the runtime core can
// target: memory regions, the reset and clock controller, the GPIO ports
// and their register layout.
//
// Descriptions are YAML. Numeric fields are Starlark expressions over an
// ordered list of equates, so a port base may be written as
// "APB2PERIPH_BASE + 0x1000".
package board
