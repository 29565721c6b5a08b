package link

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ezrec/mcucore/cortexm"
)

const base = 0x0800_0000

const (
	resetAddr = base + HANDLER_OFFSET | THUMB
	faultAddr = base + HANDLER_OFFSET + HANDLER_STRIDE | THUMB
)

func spin(core cortexm.Core) {
	for {
		core.Nop()
	}
}

func linked(t *testing.T) *Image {
	img := NewImage(base)
	assert.NoError(t, img.PlaceStack(0x2000_2000))
	assert.NoError(t, img.PlaceReset(spin))
	assert.NoError(t, img.PlaceExceptions(cortexm.DefaultVectorTable(cortexm.FaultHandler)))
	return img
}

func TestImage_Layout(t *testing.T) {
	assert := assert.New(t)

	img := linked(t)
	assert.NoError(img.Validate())

	data, err := img.MarshalBinary()
	assert.NoError(err)
	assert.Equal(HEADER_SIZE, len(data))

	word := func(offset int) uint32 {
		return binary.LittleEndian.Uint32(data[offset:])
	}

	assert.Equal(uint32(0x2000_2000), word(cortexm.OFFSET_STACK))
	assert.Equal(uint32(resetAddr), word(cortexm.OFFSET_RESET))

	fault := uint32(faultAddr)
	for n := range cortexm.VECTOR_COUNT {
		e := cortexm.Exception(n)
		got := word(cortexm.OFFSET_EXCEPTIONS + 4*n)
		if e.Reserved() {
			assert.Zero(got, e)
		} else {
			assert.Equal(fault, got, e)
		}
	}

	hdr, err := ParseHeader(data)
	assert.NoError(err)
	assert.Equal(img.Header, hdr)
	assert.Equal(hdr.Words(), img.Words())
	assert.Equal(fault, hdr.Vector(cortexm.BusFault))
	assert.Zero(hdr.Vector(cortexm.Exception(99)))
}

func TestImage_Symbols(t *testing.T) {
	assert := assert.New(t)

	img := linked(t)

	name, ok := img.Symbol(img.Reset)
	assert.True(ok)
	assert.Equal(RESET_SYMBOL, name)

	name, ok = img.Symbol(img.Vector(cortexm.HardFault) &^ THUMB)
	assert.True(ok)
	assert.Contains(name, "FaultHandler")

	handler, ok := img.Resolve(img.Vector(cortexm.NMI))
	assert.True(ok)
	assert.NotNil(handler)

	_, ok = img.Resolve(0)
	assert.False(ok)

	var addrs []uint32
	for addr := range img.Symbols() {
		addrs = append(addrs, addr)
	}
	assert.Equal([]uint32{resetAddr, faultAddr}, addrs)
}

func TestImage_Errors(t *testing.T) {
	assert := assert.New(t)

	img := NewImage(base)

	err := img.Validate()
	assert.ErrorIs(err, ErrUnplaced)

	assert.ErrorIs(img.PlaceStack(0x2000_2002), ErrStackAlign)
	assert.ErrorIs(img.PlaceReset(nil), ErrHandlerNil)
	assert.ErrorIs(img.PlaceExceptions(nil), ErrTableNil)

	assert.NoError(img.PlaceStack(0x2000_2000))
	err = img.PlaceStack(0x2000_1000)
	assert.ErrorIs(err, ErrPlaced)
	var section *ErrSection
	assert.ErrorAs(err, &section)
	assert.Equal(cortexm.SECTION_STACK, section.Section)
	assert.Equal(uint32(0x2000_2000), img.Stack)

	assert.ErrorIs(img.Validate(), ErrUnplaced)
	assert.NoError(img.PlaceReset(spin))
	assert.ErrorIs(img.PlaceReset(spin), ErrPlaced)
	assert.NoError(img.Validate())
	assert.False(img.Placed(cortexm.SECTION_EXCEPTIONS))

	_, err = ParseHeader(make([]byte, 12))
	assert.ErrorIs(err, ErrImageFormat)
}

func TestImage_NoExceptions(t *testing.T) {
	assert := assert.New(t)

	img := NewImage(0)
	assert.NoError(img.PlaceStack(0x2000_0a00))
	assert.NoError(img.PlaceReset(spin))
	assert.Equal(uint32(HANDLER_OFFSET|THUMB), img.Reset)

	for n := range cortexm.VECTOR_COUNT {
		assert.Zero(img.Vector(cortexm.Exception(n)))
	}
}
