package mmio

import (
	"unsafe"
)

// Direct is a Bus over real memory. Addresses are offsets from Base; on a
// bare-metal target Base is zero and addresses are physical.
type Direct struct {
	Base uintptr
}

var _ Bus = Direct{}

func (d Direct) word(addr uint32) *uint32 {
	return (*uint32)(unsafe.Pointer(d.Base + uintptr(addr)))
}
