// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package mmio

// Register is a handle on a single 32-bit memory-mapped register.
//
// Read-modify-write helpers always do a full load, an ALU operation, and a
// full store, so bits outside the mask keep the value they had at the load.
type Register struct {
	bus  Bus
	addr uint32
}

// Address of the register.
func (reg Register) Address() uint32 {
	return reg.addr
}

// Get loads the register value.
func (reg Register) Get() uint32 {
	return reg.bus.Load32(reg.addr)
}

// Set stores value, without reading the register first.
func (reg Register) Set(value uint32) {
	reg.bus.Store32(reg.addr, value)
}

// SetBits sets the bits in mask, preserving all others.
func (reg Register) SetBits(mask uint32) {
	reg.bus.Store32(reg.addr, reg.bus.Load32(reg.addr)|mask)
}

// ClearBits clears the bits in mask, preserving all others.
func (reg Register) ClearBits(mask uint32) {
	reg.bus.Store32(reg.addr, reg.bus.Load32(reg.addr)&^mask)
}

// HasBits reports if any bit in mask is set.
func (reg Register) HasBits(mask uint32) bool {
	return reg.bus.Load32(reg.addr)&mask != 0
}

// ReplaceBits replaces the field (mask << pos) with (value & mask) << pos.
// Only the bits of the field are changed.
func (reg Register) ReplaceBits(value uint32, mask uint32, pos uint) {
	old := reg.bus.Load32(reg.addr)
	reg.bus.Store32(reg.addr, old&^(mask<<pos)|(value&mask)<<pos)
}

// Field extracts the field (mask << pos), shifted down to bit 0.
func (reg Register) Field(mask uint32, pos uint) uint32 {
	return (reg.bus.Load32(reg.addr) >> pos) & mask
}
