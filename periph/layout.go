// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package periph

import (
	"fmt"
)

// Mode is the direction/function of a GPIO pin.
type Mode int

const (
	MODE_INPUT     = Mode(0) // input
	MODE_OUTPUT    = Mode(1) // output
	MODE_ALTERNATE = Mode(2) // alternate
	MODE_ANALOG    = Mode(3) // analog
)

var modeNames = [...]string{"input", "output", "alternate", "analog"}

func (m Mode) String() string {
	if m < 0 || int(m) >= len(modeNames) {
		return fmt.Sprintf("Mode(%d)", int(m))
	}
	return modeNames[m]
}

// PINS_PER_PORT is the number of pins on a GPIO port.
const PINS_PER_PORT = 16

// BSRR_RESET_SHIFT is the distance from a set bit to its reset bit in BSRR.
const BSRR_RESET_SHIFT = 16

// Layout describes the register family of a GPIO port.
type Layout struct {
	Name  string // Name used in board descriptions.
	Width uint   // Width of a pin mode field, in bits.
	Mode  uint32 // Offset of the first mode register.
	IDR   uint32 // Input data register offset.
	ODR   uint32 // Output data register offset.
	BSRR  uint32 // Atomic bit set/reset register offset.
	BRR   uint32 // Bit reset register offset.

	encode [4]uint32
	decode func(field uint32) Mode
}

// LAYOUT_CR is the STM32F1 layout: 4-bit CNF:MODE fields in CRL and CRH.
var LAYOUT_CR = &Layout{
	Name:  "cr",
	Width: 4,
	Mode:  0x00,
	IDR:   0x08,
	ODR:   0x0c,
	BSRR:  0x10,
	BRR:   0x14,
	encode: [4]uint32{
		MODE_INPUT:     0b0100, // floating input
		MODE_OUTPUT:    0b0010, // push-pull, 2MHz
		MODE_ALTERNATE: 0b1010, // alternate push-pull, 2MHz
		MODE_ANALOG:    0b0000,
	},
	decode: func(field uint32) Mode {
		mode := field & 0b11
		cnf := field >> 2
		switch {
		case mode == 0 && cnf == 0:
			return MODE_ANALOG
		case mode == 0:
			return MODE_INPUT
		case cnf&0b10 != 0:
			return MODE_ALTERNATE
		default:
			return MODE_OUTPUT
		}
	},
}

// LAYOUT_MODER is the STM32F3 layout: 2-bit fields in MODER.
var LAYOUT_MODER = &Layout{
	Name:  "moder",
	Width: 2,
	Mode:  0x00,
	IDR:   0x10,
	ODR:   0x14,
	BSRR:  0x18,
	BRR:   0x28,
	encode: [4]uint32{
		MODE_INPUT:     0b00,
		MODE_OUTPUT:    0b01,
		MODE_ALTERNATE: 0b10,
		MODE_ANALOG:    0b11,
	},
	decode: func(field uint32) Mode {
		return Mode(field & 0b11)
	},
}

var layouts = map[string]*Layout{
	LAYOUT_CR.Name:    LAYOUT_CR,
	LAYOUT_MODER.Name: LAYOUT_MODER,
}

// LayoutByName finds a layout by its board description name.
func LayoutByName(name string) (layout *Layout, err error) {
	layout, ok := layouts[name]
	if !ok {
		err = fmt.Errorf("%w: %q", ErrLayoutUnknown, name)
	}
	return
}

// Field locates the mode field of pin: the register offset, the bit
// position, and the unshifted mask of the field.
func (l *Layout) Field(pin uint) (offset uint32, pos uint, mask uint32) {
	perReg := 32 / l.Width
	offset = l.Mode + 4*uint32(pin/perReg)
	pos = l.Width * (pin % perReg)
	mask = 1<<l.Width - 1
	return
}

// ModeRegisters is the number of consecutive mode registers of a port.
func (l *Layout) ModeRegisters() int {
	return int(l.Width) * PINS_PER_PORT / 32
}

// Encode returns the field value for mode.
func (l *Layout) Encode(mode Mode) (field uint32, err error) {
	if mode < 0 || int(mode) >= len(l.encode) {
		err = fmt.Errorf("%w: %v", ErrModeInvalid, mode)
		return
	}
	field = l.encode[mode]
	return
}

// Decode returns the mode of a field value.
func (l *Layout) Decode(field uint32) Mode {
	return l.decode(field)
}
