// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package periph

import (
	"github.com/ezrec/mcucore/mmio"
)

// Reset and clock control register offsets.
const (
	RCC_AHBENR  = 0x14 // AHB peripheral clock enable
	RCC_APB2ENR = 0x18 // APB2 peripheral clock enable
	RCC_APB1ENR = 0x1c // APB1 peripheral clock enable
)

// ClockGate is the single enable bit of a peripheral in an RCC enable register.
type ClockGate struct {
	Offset uint32 // Enable register offset in the RCC block.
	Bit    uint   // Enable bit position.
}

// Well known clock gates.
var (
	IOPCEN = ClockGate{Offset: RCC_APB2ENR, Bit: 4} // STM32F1 GPIOC
	IOPEEN = ClockGate{Offset: RCC_AHBENR, Bit: 21} // STM32F3 GPIOE
)

// Mask of the gate bit.
func (gate ClockGate) Mask() uint32 {
	return 1 << gate.Bit
}

// RCC is the reset and clock control peripheral.
type RCC struct {
	mmio.Block
}

// NewRCC returns the RCC at base.
func NewRCC(bus mmio.Bus, base uint32) *RCC {
	return &RCC{Block: mmio.Block{Bus: bus, Base: base}}
}

// EnableClock sets the gate bit. No other enable bit changes.
func (rcc *RCC) EnableClock(gate ClockGate) {
	rcc.Register(gate.Offset).SetBits(gate.Mask())
}

// DisableClock clears the gate bit. No other enable bit changes.
func (rcc *RCC) DisableClock(gate ClockGate) {
	rcc.Register(gate.Offset).ClearBits(gate.Mask())
}

// ClockEnabled reports if the gate bit is set.
func (rcc *RCC) ClockEnabled(gate ClockGate) bool {
	return rcc.Register(gate.Offset).HasBits(gate.Mask())
}
