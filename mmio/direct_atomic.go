//go:build !tinygo

package mmio

import (
	"sync/atomic"
)

// Load32 reads the word at addr. Atomic operations are never elided or
// reordered by the gc compiler.
func (d Direct) Load32(addr uint32) uint32 {
	return atomic.LoadUint32(d.word(addr))
}

// Store32 writes the word at addr.
func (d Direct) Store32(addr uint32, value uint32) {
	atomic.StoreUint32(d.word(addr), value)
}
