package mmio

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

type access struct {
	store bool
	addr  uint32
	value uint32
}

// logBus is a map-backed bus that records every access.
type logBus struct {
	mem map[uint32]uint32
	log []access
}

func newLogBus() *logBus {
	return &logBus{mem: map[uint32]uint32{}}
}

func (b *logBus) Load32(addr uint32) uint32 {
	value := b.mem[addr]
	b.log = append(b.log, access{addr: addr, value: value})
	return value
}

func (b *logBus) Store32(addr uint32, value uint32) {
	b.mem[addr] = value
	b.log = append(b.log, access{store: true, addr: addr, value: value})
}

func TestBlock_Register(t *testing.T) {
	assert := assert.New(t)

	bus := newLogBus()
	blk := Block{Bus: bus, Base: 0x4002_1000}

	reg := blk.Register(0x18)
	assert.Equal(uint32(0x4002_1018), reg.Address())

	reg.Set(0x1234)
	assert.Equal(uint32(0x1234), bus.mem[0x4002_1018])
	assert.Equal(uint32(0x1234), reg.Get())
}

func TestRegister_Set(t *testing.T) {
	assert := assert.New(t)

	bus := newLogBus()
	reg := Block{Bus: bus, Base: 0x100}.Register(0x10)

	reg.Set(1 << 8)
	reg.Set(1 << 24)

	// Plain stores never read, and are never merged.
	assert.Equal([]access{
		{store: true, addr: 0x110, value: 1 << 8},
		{store: true, addr: 0x110, value: 1 << 24},
	}, bus.log)
}

func TestRegister_ReadModifyWrite(t *testing.T) {
	assert := assert.New(t)

	table := [](struct {
		name   string
		prior  uint32
		op     func(reg Register)
		expect uint32
	}){
		{"set_bits", 0x8000_0001, func(reg Register) { reg.SetBits(1 << 4) }, 0x8000_0011},
		{"set_bits_already", 0x10, func(reg Register) { reg.SetBits(1 << 4) }, 0x10},
		{"clear_bits", 0xffff_ffff, func(reg Register) { reg.ClearBits(1 << 4) }, 0xffff_ffef},
		{"replace_low", 0x4444_4444, func(reg Register) { reg.ReplaceBits(0b0010, 0b1111, 0) }, 0x4444_4442},
		{"replace_mid", 0xffff_ffff, func(reg Register) { reg.ReplaceBits(0b01, 0b11, 18) }, 0xfff7_ffff},
		{"replace_truncates", 0, func(reg Register) { reg.ReplaceBits(0xff, 0b11, 2) }, 0b1100},
	}

	for _, entry := range table {
		bus := newLogBus()
		bus.mem[0x200] = entry.prior
		reg := Block{Bus: bus, Base: 0x200}.Register(0)

		entry.op(reg)

		assert.Equal(entry.expect, bus.mem[0x200], entry.name)
		// Exactly one full load, then one full store.
		assert.Equal(2, len(bus.log), entry.name)
		assert.False(bus.log[0].store, entry.name)
		assert.True(bus.log[1].store, entry.name)
	}
}

func TestRegister_Field(t *testing.T) {
	assert := assert.New(t)

	bus := newLogBus()
	reg := Block{Bus: bus}.Register(4)
	reg.Set(0x0004_0000 | 0b1010)

	assert.Equal(uint32(0b01), reg.Field(0b11, 18))
	assert.Equal(uint32(0b1010), reg.Field(0b1111, 0))
	assert.True(reg.HasBits(1 << 18))
	assert.False(reg.HasBits(1 << 19))
}

func FuzzRegister_ReplaceBits(f *testing.F) {
	f.Add(uint32(0), uint32(0b01), uint8(18), uint8(2))
	f.Add(uint32(0xffffffff), uint32(0b0010), uint8(0), uint8(4))
	f.Add(uint32(0x44444444), uint32(0b1010), uint8(28), uint8(4))

	f.Fuzz(func(t *testing.T, prior uint32, value uint32, pos uint8, width uint8) {
		assert := assert.New(t)

		width = width%8 + 1
		pos = pos % (33 - width)
		mask := uint32(1)<<width - 1
		field := mask << pos

		bus := newLogBus()
		bus.mem[0] = prior
		reg := Block{Bus: bus}.Register(0)
		reg.ReplaceBits(value, mask, uint(pos))

		after := bus.mem[0]
		msg := fmt.Sprintf("prior %#x value %#x pos %d width %d", prior, value, pos, width)
		assert.Equal(prior&^field, after&^field, msg)
		assert.Equal((value&mask)<<pos, after&field, msg)
	})
}
