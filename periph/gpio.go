// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package periph

import (
	"fmt"

	"github.com/ezrec/mcucore/mmio"
)

// GPIO is a general purpose I/O port.
type GPIO struct {
	mmio.Block
	Layout *Layout
}

// NewGPIO returns the GPIO port at base, with the register layout given.
func NewGPIO(bus mmio.Bus, base uint32, layout *Layout) *GPIO {
	return &GPIO{
		Block:  mmio.Block{Bus: bus, Base: base},
		Layout: layout,
	}
}

func checkPin(pin uint) (err error) {
	if pin >= PINS_PER_PORT {
		err = fmt.Errorf("%w: %d", ErrPinRange, pin)
	}
	return
}

// ConfigurePinMode replaces the mode field of pin. The fields of all other
// pins are preserved.
func (g *GPIO) ConfigurePinMode(pin uint, mode Mode) (err error) {
	err = checkPin(pin)
	if err != nil {
		return
	}
	value, err := g.Layout.Encode(mode)
	if err != nil {
		return
	}

	offset, pos, mask := g.Layout.Field(pin)
	g.Register(offset).ReplaceBits(value, mask, pos)
	return
}

// PinMode returns the configured mode of pin.
func (g *GPIO) PinMode(pin uint) (mode Mode, err error) {
	err = checkPin(pin)
	if err != nil {
		return
	}

	offset, pos, mask := g.Layout.Field(pin)
	mode = g.Layout.Decode(g.Register(offset).Field(mask, pos))
	return
}

// SetPin drives pin high, with a single store to the set/reset register.
func (g *GPIO) SetPin(pin uint) (err error) {
	err = checkPin(pin)
	if err != nil {
		return
	}
	g.Register(g.Layout.BSRR).Set(1 << pin)
	return
}

// ClearPin drives pin low, with a single store to the set/reset register.
func (g *GPIO) ClearPin(pin uint) (err error) {
	err = checkPin(pin)
	if err != nil {
		return
	}
	g.Register(g.Layout.BSRR).Set(1 << (pin + BSRR_RESET_SHIFT))
	return
}

// PinLevel returns the driven output level of pin.
func (g *GPIO) PinLevel(pin uint) (high bool, err error) {
	err = checkPin(pin)
	if err != nil {
		return
	}
	high = g.Register(g.Layout.ODR).HasBits(1 << pin)
	return
}

// PinInput returns the sampled input level of pin.
func (g *GPIO) PinInput(pin uint) (high bool, err error) {
	err = checkPin(pin)
	if err != nil {
		return
	}
	high = g.Register(g.Layout.IDR).HasBits(1 << pin)
	return
}

// Pin returns a validated pin of the port.
func (g *GPIO) Pin(index uint) (pin Pin, err error) {
	err = checkPin(index)
	if err != nil {
		return
	}
	pin = Pin{Port: g, Index: index}
	return
}

// Pin is a view of one pin of a GPIO port.
type Pin struct {
	Port  *GPIO
	Index uint
}

// Configure sets the pin mode.
func (p Pin) Configure(mode Mode) error {
	return p.Port.ConfigurePinMode(p.Index, mode)
}

// High drives the pin high. An out of range pin stores nothing.
func (p Pin) High() {
	_ = p.Port.SetPin(p.Index)
}

// Low drives the pin low. An out of range pin stores nothing.
func (p Pin) Low() {
	_ = p.Port.ClearPin(p.Index)
}

// Set drives the pin to level.
func (p Pin) Set(high bool) {
	if high {
		p.High()
	} else {
		p.Low()
	}
}

// Level is the driven output level. An out of range pin is low.
func (p Pin) Level() bool {
	high, _ := p.Port.PinLevel(p.Index)
	return high
}

// Mode is the configured pin mode.
func (p Pin) Mode() Mode {
	mode, _ := p.Port.PinMode(p.Index)
	return mode
}

func (p Pin) String() string {
	return fmt.Sprintf("%#08x:%d", p.Port.Base, p.Index)
}
