package emulator

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ezrec/mcucore/board"
	"github.com/ezrec/mcucore/cortexm"
	"github.com/ezrec/mcucore/periph"
)

func TestGPIO(t *testing.T) {
	assert := assert.New(t)

	rcc := newRegfile(RCC_SIZE, nil)
	port := board.Port{
		Name:  "E",
		Base:  0x4800_1000,
		Clock: periph.IOPEEN,
	}
	layout := periph.LAYOUT_MODER
	g := newGPIO(port, layout, rcc)

	// Stores are ignored while the port clock is off.
	g.Store(layout.BSRR, 1<<9)
	assert.Zero(g.Load(layout.ODR))
	rcc.Store(periph.IOPEEN.Offset, periph.IOPEEN.Mask())

	table := [](struct {
		offset uint32
		value  uint32
		odr    uint32
	}){
		{layout.BSRR, 1 << 9, 0x0200},
		{layout.BSRR, 1 << 3, 0x0208},
		{layout.BSRR, 1<<(9+16) | 1<<9, 0x0208}, // set wins
		{layout.BSRR, 1 << (9 + 16), 0x0008},
		{layout.BRR, 1 << 3, 0x0000},
		{layout.ODR, 0x1_8001, 0x8001},
	}
	for _, entry := range table {
		assert.True(g.Store(entry.offset, entry.value))
		assert.Equal(entry.odr, g.Load(layout.ODR), "%#x <- %#x", entry.offset, entry.value)
	}

	assert.Zero(g.Load(layout.BSRR))
	assert.Zero(g.Load(layout.BRR))

	// Input pins read the external level, output pins the latch.
	g.input = 0x0003
	assert.Equal(uint32(0x0003), g.Load(layout.IDR))
	g.Store(layout.Mode, 0b01<<30) // pin 15 output
	assert.Equal(uint32(0x8003), g.Load(layout.IDR))
	g.Store(layout.Mode, 0b01<<0) // pin 0 output, pin 15 input
	assert.Equal(uint32(0x0003), g.Load(layout.IDR))
	g.Store(layout.IDR, 0xffff)
	assert.Equal(uint32(0x0003), g.Load(layout.IDR))

	// Unmodelled registers hold their value.
	g.Store(0x08, 0x1234)
	assert.Equal(uint32(0x1234), g.Load(0x08))

	g.Reset()
	assert.Zero(g.Load(layout.ODR))
	assert.Zero(g.Load(layout.Mode))
	assert.Zero(g.Load(0x08))
}

func TestGPIO_ResetValue(t *testing.T) {
	assert := assert.New(t)

	b, err := board.Lookup("stm32vldiscovery")
	assert.NoError(err)
	port, err := b.Port("C")
	assert.NoError(err)

	g := newGPIO(*port, b.Layout, newRegfile(RCC_SIZE, nil))
	assert.Equal(uint32(0x4444_4444), g.Load(0x00))
	assert.Equal(uint32(0x4444_4444), g.Load(0x04))
	assert.Zero(g.Load(0x08) & 0xffff)
}

func TestSCB(t *testing.T) {
	assert := assert.New(t)

	s := newSCB()

	_, ok := s.next()
	assert.False(ok)

	s.Store(SCB_ICSR, ICSR_PENDSVSET|ICSR_PENDSTSET)
	assert.Equal(uint32(ICSR_PENDSVSET|ICSR_PENDSTSET|ICSR_ISRPENDING), s.Load(SCB_ICSR))
	e, ok := s.next()
	assert.True(ok)
	assert.Equal(cortexm.PendSV, e)

	s.Store(SCB_ICSR, ICSR_PENDSVCLR)
	e, _ = s.next()
	assert.Equal(cortexm.SysTick, e)

	s.Store(SCB_ICSR, ICSR_NMIPENDSET|ICSR_PENDSTCLR)
	e, _ = s.next()
	assert.Equal(cortexm.NMI, e)
	assert.Equal(uint32(ICSR_NMIPENDSET|ICSR_ISRPENDING), s.Load(SCB_ICSR))

	s.fault(CFSR_UNALIGNED, 0x1234)
	assert.Equal(uint32(CFSR_UNALIGNED), s.Load(SCB_CFSR))
	assert.Zero(s.Load(SCB_BFAR))

	s.fault(CFSR_PRECISERR|CFSR_BFARVALID, 0x2000_2000)
	assert.Equal(uint32(0x2000_2000), s.Load(SCB_BFAR))
	s.Store(SCB_CFSR, CFSR_UNALIGNED)
	assert.Equal(uint32(CFSR_PRECISERR|CFSR_BFARVALID), s.Load(SCB_CFSR))

	s.Store(SCB_CPUID, 0)
	assert.Equal(uint32(CPUID_CORTEX_M3), s.Load(SCB_CPUID))

	s.Reset()
	assert.Zero(s.Load(SCB_ICSR))
	assert.Zero(s.Load(SCB_CFSR))
}

func TestMemoryMap(t *testing.T) {
	assert := assert.New(t)

	var mm memoryMap
	sram := newMemory(0x100)
	flash := newMemory(0x100)
	flash.readOnly = true
	mm.attach("sram", 0x2000_0000, 0x100, sram)
	mm.attach("flash", 0x0800_0000, 0x100, flash)

	assert.Equal("flash", mm[0].name)

	r, offset, ok := mm.decode(0x2000_00fc)
	assert.True(ok)
	assert.Equal("sram", r.name)
	assert.Equal(uint32(0xfc), offset)

	_, _, ok = mm.decode(0x2000_0100)
	assert.False(ok)

	assert.True(sram.Store(4, 7))
	assert.Equal(uint32(7), sram.Load(4))
	assert.False(flash.Store(4, 7))
	assert.True(flash.program(0xf8, []uint32{1, 2}))
	assert.False(flash.program(0xfc, []uint32{1, 2}))

	sram.Reset()
	assert.Zero(sram.Load(4))
}
