// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package emulator

import (
	"slices"
)

// device is a word addressed bus target.
type device interface {
	// Load reads the word at offset.
	Load(offset uint32) uint32
	// Store writes the word at offset. A rejected store is a bus error.
	Store(offset uint32, value uint32) (ok bool)
	// Reset restores the power-on state.
	Reset()
}

// region maps a device into the address space.
type region struct {
	name string
	base uint32
	size uint32
	dev  device
}

func (r *region) contains(addr uint32) bool {
	return addr >= r.base && addr-r.base < r.size
}

// memoryMap is the address space, searched in base order.
type memoryMap []region

func (mm *memoryMap) attach(name string, base, size uint32, dev device) {
	*mm = append(*mm, region{name: name, base: base, size: size, dev: dev})
	slices.SortFunc(*mm, func(a, b region) int {
		switch {
		case a.base < b.base:
			return -1
		case a.base > b.base:
			return 1
		}
		return 0
	})
}

// decode finds the region holding addr.
func (mm memoryMap) decode(addr uint32) (r *region, offset uint32, ok bool) {
	for n := range mm {
		if mm[n].contains(addr) {
			r = &mm[n]
			offset = addr - r.base
			ok = true
			return
		}
	}
	return
}

// memory is flash or SRAM.
type memory struct {
	words    []uint32
	readOnly bool
	keep     bool // Contents survive reset.
}

func newMemory(size uint32) *memory {
	return &memory{words: make([]uint32, (size+3)/4)}
}

func (mem *memory) Load(offset uint32) uint32 {
	return mem.words[offset/4]
}

func (mem *memory) Store(offset uint32, value uint32) bool {
	if mem.readOnly {
		return false
	}
	mem.words[offset/4] = value
	return true
}

// program writes past the read only protection.
func (mem *memory) program(offset uint32, words []uint32) bool {
	if int(offset/4)+len(words) > len(mem.words) {
		return false
	}
	copy(mem.words[offset/4:], words)
	return true
}

func (mem *memory) Reset() {
	if mem.keep {
		return
	}
	clear(mem.words)
}

// regfile is a block of plain read/write registers with reset values.
type regfile struct {
	words []uint32
	reset map[uint32]uint32
}

func newRegfile(size uint32, reset map[uint32]uint32) *regfile {
	rf := &regfile{
		words: make([]uint32, size/4),
		reset: reset,
	}
	rf.Reset()
	return rf
}

func (rf *regfile) Load(offset uint32) uint32 {
	return rf.words[offset/4]
}

func (rf *regfile) Store(offset uint32, value uint32) bool {
	rf.words[offset/4] = value
	return true
}

func (rf *regfile) Reset() {
	clear(rf.words)
	for offset, value := range rf.reset {
		rf.words[offset/4] = value
	}
}
