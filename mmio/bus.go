// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package mmio

// Bus performs word-sized volatile loads and stores on a physical address space.
//
// Implementations must neither elide, merge, nor reorder accesses. An access
// to an invalid address is a hardware fault, not a software error, so there is
// no error return.
type Bus interface {
	// Load32 reads the 32-bit word at addr.
	Load32(addr uint32) uint32
	// Store32 writes the 32-bit word at addr.
	Store32(addr uint32, value uint32)
}

// Block describes a peripheral register block: a bus and a base address.
// Register offsets within a block are fixed per hardware variant.
type Block struct {
	Bus  Bus
	Base uint32
}

// Register returns the handle for the register at offset within the block.
func (blk Block) Register(offset uint32) Register {
	return Register{bus: blk.Bus, addr: blk.Base + offset}
}
