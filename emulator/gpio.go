// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package emulator

import (
	"github.com/ezrec/mcucore/board"
	"github.com/ezrec/mcucore/periph"
)

const (
	GPIO_SIZE = 0x400  // Size of a GPIO port register block.
	PIN_MASK  = 0xffff // Pins of a port, in ODR/IDR bit order.
	RCC_SIZE  = 0x400  // Size of the RCC register block.
	RCC_RESET = 0x14   // AHBENR reset value: SRAM and flash interface clocks.
)

// gpio models a port: mode fields, output latch, and external inputs.
// Stores are ignored while the port clock is gated off.
type gpio struct {
	port   board.Port
	layout *periph.Layout
	rcc    *regfile
	regs   *regfile
	odr    uint32
	input  uint32
}

func newGPIO(port board.Port, layout *periph.Layout, rcc *regfile) *gpio {
	reset := map[uint32]uint32{}
	if port.Reset != 0 {
		for n := range layout.ModeRegisters() {
			reset[layout.Mode+4*uint32(n)] = port.Reset
		}
	}
	return &gpio{
		port:   port,
		layout: layout,
		rcc:    rcc,
		regs:   newRegfile(GPIO_SIZE, reset),
	}
}

func (g *gpio) clocked() bool {
	return g.rcc.Load(g.port.Clock.Offset)&g.port.Clock.Mask() != 0
}

// driven is the mask of pins whose IDR bit follows the output latch.
func (g *gpio) driven() (mask uint32) {
	for pin := range uint(periph.PINS_PER_PORT) {
		offset, pos, fmask := g.layout.Field(pin)
		mode := g.layout.Decode((g.regs.Load(offset) >> pos) & fmask)
		if mode == periph.MODE_OUTPUT || mode == periph.MODE_ALTERNATE {
			mask |= 1 << pin
		}
	}
	return
}

func (g *gpio) Load(offset uint32) uint32 {
	switch offset {
	case g.layout.IDR:
		driven := g.driven()
		return (g.odr & driven) | (g.input &^ driven & PIN_MASK)
	case g.layout.ODR:
		return g.odr
	case g.layout.BSRR, g.layout.BRR:
		return 0
	}
	return g.regs.Load(offset)
}

func (g *gpio) Store(offset uint32, value uint32) bool {
	if !g.clocked() {
		return true
	}
	switch offset {
	case g.layout.IDR:
	case g.layout.ODR:
		g.odr = value & PIN_MASK
	case g.layout.BSRR:
		set := value & PIN_MASK
		reset := (value >> periph.BSRR_RESET_SHIFT) & PIN_MASK
		g.odr = (g.odr &^ reset) | set
	case g.layout.BRR:
		g.odr &^= value & PIN_MASK
	default:
		g.regs.Store(offset, value)
	}
	return true
}

func (g *gpio) Reset() {
	g.regs.Reset()
	g.odr = 0
}
