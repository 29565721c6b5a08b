package cortexm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// halted unwinds a fakeCore out of Halt.
type halted struct{}

// fakeCore records the calls made on it.
type fakeCore struct {
	calls []string
	mem   map[uint32]uint32
}

func (c *fakeCore) Load32(addr uint32) uint32 {
	c.calls = append(c.calls, "load")
	return c.mem[addr]
}

func (c *fakeCore) Store32(addr uint32, value uint32) {
	c.calls = append(c.calls, "store")
	if c.mem == nil {
		c.mem = map[uint32]uint32{}
	}
	c.mem[addr] = value
}

func (c *fakeCore) Nop()        { c.calls = append(c.calls, "nop") }
func (c *fakeCore) Breakpoint() { c.calls = append(c.calls, "bkpt") }
func (c *fakeCore) Halt() {
	c.calls = append(c.calls, "halt")
	panic(halted{})
}

// mustHalt runs fn, and reports if it ended in Halt.
func mustHalt(fn func()) (ok bool) {
	defer func() {
		_, ok = recover().(halted)
	}()
	fn()
	return
}

func TestVectorTable_Default(t *testing.T) {
	assert := assert.New(t)

	vt := DefaultVectorTable(FaultHandler)

	for n := range VECTOR_COUNT {
		e := Exception(n)
		switch n {
		case 5, 6, 7, 8, 10, 11:
			assert.True(e.Reserved(), e)
			assert.Nil(vt.Handler(e), e)
		default:
			assert.False(e.Reserved(), e)
			assert.NotNil(vt.Handler(e), e)
		}
	}
	assert.Equal(8, vt.Bound())
}

func TestVectorTable_New(t *testing.T) {
	assert := assert.New(t)

	vt, err := NewVectorTable(
		Binding{HardFault, FaultHandler},
		Binding{SysTick, FaultHandler},
	)
	assert.NoError(err)
	assert.Equal(2, vt.Bound())
	assert.NotNil(vt.Handler(HardFault))
	assert.Nil(vt.Handler(NMI))
	assert.Nil(vt.Handler(Exception(14)))
	assert.Nil(vt.Handler(Exception(-1)))

	var order []Exception
	for e := range vt.All() {
		order = append(order, e)
	}
	assert.Equal(VECTOR_COUNT, len(order))
	assert.Equal(SysTick, order[VECTOR_COUNT-1])

	table := [](struct {
		name     string
		bindings []Binding
		err      error
	}){
		{"reserved", []Binding{{Exception(5), FaultHandler}}, ErrVectorReserved},
		{"debug", []Binding{{Exception(10), FaultHandler}}, ErrVectorReserved},
		{"range_hi", []Binding{{Exception(14), FaultHandler}}, ErrVectorRange},
		{"range_lo", []Binding{{Exception(-1), FaultHandler}}, ErrVectorRange},
		{"duplicate", []Binding{{NMI, FaultHandler}, {NMI, FaultHandler}}, ErrVectorDuplicate},
		{"nil", []Binding{{SysTick, nil}}, ErrHandlerNil},
		{"nil twice", []Binding{{NMI, nil}, {NMI, nil}}, ErrHandlerNil},
	}
	for _, entry := range table {
		vt, err := NewVectorTable(entry.bindings...)
		assert.ErrorIs(err, entry.err, entry.name)
		assert.Nil(vt, entry.name)
	}
}

func TestVectorTable_Nil(t *testing.T) {
	assert := assert.New(t)

	var vt *VectorTable
	assert.Nil(vt.Handler(NMI))
	assert.Equal(0, vt.Bound())
}

func TestException(t *testing.T) {
	assert := assert.New(t)

	assert.Equal("BusFault", BusFault.String())
	assert.Equal("Reserved", Exception(7).String())
	assert.Equal("Exception(20)", Exception(20).String())
	assert.Equal(2, NMI.Number())
	assert.Equal(15, SysTick.Number())
	assert.True(Exception(20).Reserved())

	e, err := ParseException("pendsv")
	assert.NoError(err)
	assert.Equal(PendSV, e)

	_, err = ParseException("Reserved")
	assert.ErrorIs(err, ErrExceptionUnknown)
}

func TestState_On(t *testing.T) {
	assert := assert.New(t)

	table := [](struct {
		from   State
		signal Signal
		to     State
	}){
		{STATE_RESET, SIGNAL_RESET, STATE_RUNNING},
		{STATE_RESET, SIGNAL_EXCEPTION, STATE_RESET},
		{STATE_RUNNING, SIGNAL_RESET, STATE_RUNNING},
		{STATE_RUNNING, SIGNAL_EXCEPTION, STATE_TRAPPED},
		{STATE_RUNNING, SIGNAL_LOCKUP, STATE_LOCKUP},
		{STATE_TRAPPED, SIGNAL_EXCEPTION, STATE_TRAPPED},
		{STATE_TRAPPED, SIGNAL_LOCKUP, STATE_LOCKUP},
		{STATE_TRAPPED, SIGNAL_RESET, STATE_RUNNING},
		{STATE_LOCKUP, SIGNAL_EXCEPTION, STATE_LOCKUP},
		{STATE_LOCKUP, SIGNAL_RESET, STATE_RUNNING},
	}

	for _, entry := range table {
		assert.Equal(entry.to, entry.from.On(entry.signal), "%v --%v-->", entry.from, entry.signal)
	}

	assert.True(STATE_TRAPPED.Absorbing())
	assert.True(STATE_LOCKUP.Absorbing())
	assert.False(STATE_RUNNING.Absorbing())
	assert.Equal("trapped", STATE_TRAPPED.String())
	assert.Equal("lockup", SIGNAL_LOCKUP.String())
}

func TestFaultHandler(t *testing.T) {
	assert := assert.New(t)

	core := &fakeCore{}
	assert.True(mustHalt(func() { FaultHandler(core) }))
	assert.Equal([]string{"bkpt", "halt"}, core.calls)
}

func TestHalt(t *testing.T) {
	assert := assert.New(t)

	var strategy AbortStrategy = Halt{}
	core := &fakeCore{}

	strategy.Personality()
	assert.Empty(core.calls)

	assert.True(mustHalt(func() { strategy.Fatal(core) }))
	assert.Equal([]string{"bkpt", "halt"}, core.calls)
}

// countApp halts the core after a fixed number of loops.
type countApp struct {
	setups int
	loops  int
	limit  int
}

func (app *countApp) Setup(core Core) {
	app.setups++
	core.Store32(0x4002_1018, 1<<4)
}

func (app *countApp) Loop(core Core) {
	app.loops++
	if app.loops == app.limit {
		core.Halt()
	}
	core.Nop()
}

func TestReset(t *testing.T) {
	assert := assert.New(t)

	app := &countApp{limit: 4}
	core := &fakeCore{}

	assert.True(mustHalt(func() { Reset(core, app) }))
	assert.Equal(1, app.setups)
	assert.Equal(4, app.loops)
	assert.Equal([]string{"store", "nop", "nop", "nop", "halt"}, core.calls)
}
