// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package link

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"iter"
	"maps"
	"reflect"
	"runtime"
	"slices"

	"github.com/lunixbochs/struc"

	"github.com/ezrec/mcucore/cortexm"
)

const (
	HANDLER_OFFSET = 0x100                    // First handler, from the flash base.
	HANDLER_STRIDE = 0x10                     // Distance between handlers.
	THUMB          = 1                        // Thumb state bit of a code address.
	HEADER_WORDS   = 2 + cortexm.VECTOR_COUNT // Stack, reset, exceptions.
	HEADER_SIZE    = 4 * HEADER_WORDS         // Header size in bytes.
)

// RESET_SYMBOL names the reset entry.
const RESET_SYMBOL = "_reset"

// Header is the vector area at the start of flash, in address order.
type Header struct {
	Stack      uint32
	Reset      uint32
	Exceptions [cortexm.VECTOR_COUNT]uint32
}

// Vector returns the address stored for e; 0 is an empty vector.
func (hdr *Header) Vector(e cortexm.Exception) uint32 {
	if !e.Valid() {
		return 0
	}
	return hdr.Exceptions[e]
}

// Words returns the header as flash words.
func (hdr *Header) Words() (words []uint32) {
	words = make([]uint32, 0, HEADER_WORDS)
	words = append(words, hdr.Stack, hdr.Reset)
	words = append(words, hdr.Exceptions[:]...)
	return
}

// ParseHeader decodes a little endian vector area.
func ParseHeader(data []byte) (hdr Header, err error) {
	if len(data) < HEADER_SIZE {
		err = fmt.Errorf("%w: %d bytes", ErrImageFormat, len(data))
		return
	}
	err = struc.UnpackWithOrder(bytes.NewReader(data[:HEADER_SIZE]), &hdr, binary.LittleEndian)
	return
}

// Symbol is a handler placed in the image.
type Symbol struct {
	Name    string
	Addr    uint32
	Handler cortexm.Handler
}

// Image is a flash image under construction. It implements cortexm.Linker.
//
// Handlers are identified by their code address, so every closure created
// from the same function literal shares one placed address.
type Image struct {
	Header
	Base uint32 // Flash base address.

	placed  map[string]bool
	symbols map[uint32]*Symbol
	code    map[uintptr]uint32
}

var _ cortexm.Linker = (*Image)(nil)

// NewImage returns an empty image for flash at base.
func NewImage(base uint32) *Image {
	return &Image{
		Base:    base,
		placed:  map[string]bool{},
		symbols: map[uint32]*Symbol{},
		code:    map[uintptr]uint32{},
	}
}

func (img *Image) place(section string) (err error) {
	if img.placed[section] {
		err = &ErrSection{Section: section, Err: ErrPlaced}
		return
	}
	img.placed[section] = true
	return
}

// Placed reports if section has been placed.
func (img *Image) Placed(section string) bool {
	return img.placed[section]
}

func (img *Image) allocate(name string, handler cortexm.Handler, shared bool) (addr uint32) {
	pc := reflect.ValueOf(handler).Pointer()
	if shared {
		if addr, ok := img.code[pc]; ok {
			return addr
		}
	}

	addr = (img.Base + HANDLER_OFFSET + HANDLER_STRIDE*uint32(len(img.symbols))) | THUMB
	if len(name) == 0 {
		if fn := runtime.FuncForPC(pc); fn != nil {
			name = fn.Name()
		} else {
			name = fmt.Sprintf("handler_%x", addr)
		}
	}

	img.symbols[addr] = &Symbol{Name: name, Addr: addr, Handler: handler}
	if shared {
		img.code[pc] = addr
	}
	return
}

// PlaceStack sets the initial stack pointer.
func (img *Image) PlaceStack(top uint32) (err error) {
	if top&3 != 0 {
		err = &ErrSection{Section: cortexm.SECTION_STACK, Err: fmt.Errorf("%w: %#x", ErrStackAlign, top)}
		return
	}
	err = img.place(cortexm.SECTION_STACK)
	if err != nil {
		return
	}
	img.Stack = top
	return
}

// PlaceReset sets the reset entry. It is always placed at the first
// handler address.
func (img *Image) PlaceReset(entry cortexm.Handler) (err error) {
	if entry == nil {
		err = &ErrSection{Section: cortexm.SECTION_RESET, Err: ErrHandlerNil}
		return
	}
	err = img.place(cortexm.SECTION_RESET)
	if err != nil {
		return
	}
	img.Reset = img.allocate(RESET_SYMBOL, entry, false)
	return
}

// PlaceExceptions lays out vt in index order. Empty vectors are zero.
func (img *Image) PlaceExceptions(vt *cortexm.VectorTable) (err error) {
	if vt == nil {
		err = &ErrSection{Section: cortexm.SECTION_EXCEPTIONS, Err: ErrTableNil}
		return
	}
	err = img.place(cortexm.SECTION_EXCEPTIONS)
	if err != nil {
		return
	}
	for e, handler := range vt.All() {
		if handler == nil {
			continue
		}
		img.Exceptions[e] = img.allocate("", handler, true)
	}
	return
}

// Resolve returns the handler placed at addr. The Thumb bit is ignored.
func (img *Image) Resolve(addr uint32) (handler cortexm.Handler, ok bool) {
	sym, ok := img.symbols[addr|THUMB]
	if !ok {
		return
	}
	handler = sym.Handler
	return
}

// Symbol returns the name of the handler placed at addr.
func (img *Image) Symbol(addr uint32) (name string, ok bool) {
	sym, ok := img.symbols[addr|THUMB]
	if !ok {
		return
	}
	name = sym.Name
	return
}

// Symbols yields the placed handlers in address order.
func (img *Image) Symbols() iter.Seq2[uint32, string] {
	return func(yield func(uint32, string) bool) {
		for _, addr := range slices.Sorted(maps.Keys(img.symbols)) {
			if !yield(addr, img.symbols[addr].Name) {
				return
			}
		}
	}
}

// Validate checks that the sections needed to boot are placed.
func (img *Image) Validate() (err error) {
	for _, section := range []string{cortexm.SECTION_STACK, cortexm.SECTION_RESET} {
		if !img.placed[section] {
			err = &ErrSection{Section: section, Err: ErrUnplaced}
			return
		}
	}
	return
}

// MarshalBinary encodes the vector area as little endian words.
func (img *Image) MarshalBinary() (data []byte, err error) {
	var buf bytes.Buffer
	err = struc.PackWithOrder(&buf, &img.Header, binary.LittleEndian)
	if err != nil {
		return
	}
	data = buf.Bytes()
	return
}
