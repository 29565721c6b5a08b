package board

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ezrec/mcucore/periph"
)

func TestBuiltin(t *testing.T) {
	assert := assert.New(t)

	table := [](struct {
		name   string
		layout *periph.Layout
		stack  uint32
		led    string
		base   uint32
		gate   periph.ClockGate
	}){
		{"stm32vldiscovery", periph.LAYOUT_CR, 0x2000_2000, "C", 0x4001_1000, periph.IOPCEN},
		{"stm32f3discovery", periph.LAYOUT_MODER, 0x2000_a000, "E", 0x4800_1000, periph.IOPEEN},
	}

	for _, entry := range table {
		b, err := Lookup(entry.name)
		if !assert.NoError(err, entry.name) {
			continue
		}
		assert.Equal(entry.layout, b.Layout, entry.name)
		assert.Equal(entry.stack, b.StackTop(), entry.name)
		assert.Equal(uint32(0x0800_0000), b.Flash.Base, entry.name)
		assert.Equal(uint32(0x4002_1000), b.RCC, entry.name)
		assert.Equal(entry.led, b.LED.Port, entry.name)
		assert.Len(b.Ports, 5, entry.name)

		port, err := b.Port(entry.led)
		assert.NoError(err, entry.name)
		assert.Equal(entry.base, port.Base, entry.name)
		assert.Equal(entry.gate, port.Clock, entry.name)
	}

	b, err := Lookup("stm32vldiscovery")
	assert.NoError(err)
	assert.Equal("PC8", b.LED.String())
	port, _ := b.Port("a")
	assert.Equal(uint32(0x4444_4444), port.Reset)

	b, err = Lookup("stm32f3discovery")
	assert.NoError(err)
	port, _ = b.Port("A")
	assert.Equal(uint32(0xa800_0000), port.Reset)
	port, _ = b.Port("E")
	assert.Zero(port.Reset)

	b, err = Lookup("lm3s6965evb")
	assert.NoError(err)
	assert.Nil(b.Layout)
	assert.Zero(b.Flash.Base)
	assert.Equal(uint32(0x2001_0000), b.StackTop())
	assert.Empty(b.Ports)

	_, err = Lookup("arduino")
	assert.ErrorIs(err, ErrBoardUnknown)

	_, err = b.Port("A")
	assert.ErrorIs(err, ErrPortUnknown)
}

func TestRegion(t *testing.T) {
	assert := assert.New(t)

	r := Region{Base: 0x2000_0000, Size: 0x2000}
	assert.True(r.Contains(0x2000_0000))
	assert.True(r.Contains(0x2000_1ffc))
	assert.False(r.Contains(0x2000_2000))
	assert.False(r.Contains(0x1fff_fffc))
	assert.Equal(uint32(0x2000_2000), r.End())
}

func TestExpr(t *testing.T) {
	assert := assert.New(t)

	eq := &Equates{}
	eq.Define("PERIPH_BASE", 0x4000_0000)
	eq.Define("BIT", 21)

	table := [](struct {
		expr  Expr
		value uint32
		err   error
	}){
		{"", 0, nil},
		{"0x18", 0x18, nil},
		{"PERIPH_BASE + 0x10000", 0x4001_0000, nil},
		{"1 << BIT", 1 << 21, nil},
		{"8 * 1024", 0x2000, nil},
		{"0x100000000", 0, ErrValueRange},
		{"-1", 0, ErrValueRange},
		{"'text'", 0, ErrExpression},
		{"UNDEFINED + 1", 0, ErrExpression},
		{"1 +", 0, ErrExpression},
	}

	for _, entry := range table {
		value, err := entry.expr.Eval(eq)
		if entry.err != nil {
			assert.ErrorIs(err, entry.err, entry.expr)
			continue
		}
		assert.NoError(err, entry.expr)
		assert.Equal(entry.value, value, entry.expr)
	}
}

func TestEquates(t *testing.T) {
	assert := assert.New(t)

	eq := &Equates{}
	eq.Define("B", 2)
	eq.Define("A", 1)
	eq.Define("B", 3)

	var names []string
	var values []uint32
	for name, value := range eq.All() {
		names = append(names, name)
		values = append(values, value)
	}
	assert.Equal([]string{"B", "A"}, names)
	assert.Equal([]uint32{3, 1}, values)

	value, ok := eq.Value("A")
	assert.True(ok)
	assert.Equal(uint32(1), value)
	_, ok = eq.Value("C")
	assert.False(ok)
}

const testBoards = `
equates:
  BASE: 0x40000000
  GPIO_BASE: BASE + 0x1000
boards:
  - name: custom
    layout: moder
    flash: { base: 0x08000000, size: 0x4000 }
    sram: { base: 0x20000000, size: 0x1000 }
    rcc: BASE + 0x21000
    ports:
      - { name: a, base: GPIO_BASE, clock: { register: 0x14, bit: 17 } }
    led: { port: a, pin: 5 }
  - name: stm32vldiscovery
    layout: cr
    flash: { base: 0x08000000, size: 0x4000 }
    sram: { base: 0x20000000, size: 0x800 }
    rcc: BASE + 0x21000
`

func TestParse(t *testing.T) {
	assert := assert.New(t)

	boards, err := Parse([]byte(testBoards))
	if !assert.NoError(err) {
		return
	}
	assert.Len(boards, 2)

	b, err := Find(boards, "CUSTOM")
	assert.NoError(err)
	assert.Equal(uint32(0x2000_1000), b.StackTop())
	assert.Equal(PinRef{Port: "A", Pin: 5}, b.LED)

	gpio, err := b.NewGPIO(nil, "A")
	assert.NoError(err)
	assert.Equal(uint32(0x4000_1000), gpio.Base)
	assert.Equal(uint32(0x4002_1000), b.NewRCC(nil).Base)

	pin, gate, err := b.Pin(nil, b.LED)
	assert.NoError(err)
	assert.Equal(uint(5), pin.Index)
	assert.Equal(periph.ClockGate{Offset: 0x14, Bit: 17}, gate)

	defines := map[string]uint32{}
	var order []string
	for name, value := range b.Defines() {
		defines[name] = value
		order = append(order, name)
	}
	assert.Equal([]string{"BASE", "GPIO_BASE", "FLASH_SIZE", "SRAM_SIZE", "STACK_TOP", "GPIOA_BASE"}, order)
	assert.Equal(uint32(0x4000_1000), defines["GPIOA_BASE"])
	assert.Equal(uint32(0x2000_1000), defines["STACK_TOP"])

	// User descriptions override the built-in ones.
	all := append(Builtin()[:len(Builtin()):len(Builtin())], boards...)
	b, err = Find(all, "stm32vldiscovery")
	assert.NoError(err)
	assert.Equal(uint32(0x2000_0800), b.StackTop())
}

func TestParse_Errors(t *testing.T) {
	assert := assert.New(t)

	table := [](struct {
		name string
		yaml string
		err  error
	}){
		{"equates", "equates: [1, 2]\n", ErrEquates},
		{"equate", "equates: { A: B }\n", ErrExpression},
		{"name", "boards: [ { layout: cr } ]\n", ErrBoardName},
		{"layout", "boards: [ { name: x, layout: odd } ]\n", periph.ErrLayoutUnknown},
		{"region", "boards: [ { name: x, layout: cr, flash: { base: 0, size: 0 } } ]\n", ErrRegion},
		{"led", "boards: [ { name: x, layout: cr, flash: { size: 4 }, sram: { size: 4 }, led: { port: c, pin: 1 } } ]\n", ErrPortUnknown},
		{"pin", "boards: [ { name: x, layout: cr, flash: { size: 4 }, sram: { size: 4 }, ports: [ { name: c } ], led: { port: c, pin: 16 } } ]\n", periph.ErrPinRange},
		{"flash", "boards: [ { name: x, flash: { base: 0, size: 6 }, sram: { size: 4 } } ]\n", ErrRegion},
		{"sram", "boards: [ { name: x, flash: { size: 4 }, sram: { base: 2, size: 4 } } ]\n", ErrRegion},
		{"clock", "boards: [ { name: x, layout: cr, flash: { size: 4 }, sram: { size: 4 }, ports: [ { name: c, clock: { register: 0x18, bit: 40 } } ] } ]\n", ErrValueRange},
		{"scalar", "boards: [ { name: x, layout: cr, rcc: [1] } ]\n", ErrExpression},
	}

	for _, entry := range table {
		boards, err := Parse([]byte(entry.yaml))
		assert.ErrorIs(err, entry.err, entry.name)
		assert.Nil(boards, entry.name)
	}

	_, err := Parse([]byte("boards: [ { name: x, layout: odd } ]\n"))
	var berr *ErrBoard
	assert.ErrorAs(err, &berr)
	assert.Equal("x", berr.Name)
}
