//go:build tinygo

package mmio

import (
	"runtime/volatile"
)

// Load32 reads the word at addr.
func (d Direct) Load32(addr uint32) uint32 {
	return volatile.LoadUint32(d.word(addr))
}

// Store32 writes the word at addr.
func (d Direct) Store32(addr uint32, value uint32) {
	volatile.StoreUint32(d.word(addr), value)
}
