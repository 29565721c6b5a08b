// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package emulator

import (
	"context"
	"fmt"
	"iter"
	"log"
	"sync/atomic"

	"github.com/ezrec/mcucore/board"
	"github.com/ezrec/mcucore/cortexm"
	"github.com/ezrec/mcucore/internal"
	"github.com/ezrec/mcucore/link"
	"github.com/ezrec/mcucore/mmio"
	"github.com/ezrec/mcucore/periph"
)

const (
	FLASH_ALIAS = 0x0000_0000          // Boot alias of flash.
	STEP_CYCLES = 1 << 16              // Cycles granted per Run slice.
	PEND_DEPTH  = cortexm.VECTOR_COUNT // Exception request queue depth.
)

var _emulator_defines = map[string]uint32{
	"SCB_BASE":  SCB_BASE,
	"SCB_ICSR":  SCB_BASE + SCB_ICSR,
	"SCB_CFSR":  SCB_BASE + SCB_CFSR,
	"SCB_HFSR":  SCB_BASE + SCB_HFSR,
	"SCB_BFAR":  SCB_BASE + SCB_BFAR,
	"GPIO_SIZE": GPIO_SIZE,
	"RCC_SIZE":  RCC_SIZE,
}

var _emulator_define_order = []string{
	"SCB_BASE", "SCB_ICSR", "SCB_CFSR", "SCB_HFSR", "SCB_BFAR", "GPIO_SIZE", "RCC_SIZE",
}

// Emulator state. Core + memory map + firmware coroutine.
//
// Apart from Pend, methods must not be called concurrently with each other.
type Emulator struct {
	Verbose      bool                  // If set, enables verbose logging.
	Board        *board.Board          // Board being emulated.
	Tracer       Tracer                // If set, receives every event.
	Abort        cortexm.AbortStrategy // Receives firmware panics.
	MaxCycles    uint64                // Run limit since reset. Zero is unlimited.
	OnBreakpoint func(emu *Emulator)   // Called from the firmware goroutine.
	Panic        any                   // Last firmware panic given to Abort.

	image     *link.Image
	flash     *memory
	sram      *memory
	rcc       *regfile
	scb       *scb
	ports     map[string]*gpio
	memoryMap memoryMap

	requests  chan cortexm.Exception
	interrupt atomic.Bool

	co        *coroutine
	state     cortexm.State
	cycles    uint64
	budget    uint64
	handler   bool // Handler mode: no further exception is taken.
	halted    bool
	spinCycle uint64
	spinCount uint64
}

// NewEmulator creates a new emulator for a board.
func NewEmulator(b *board.Board) (emu *Emulator) {
	emu = &Emulator{
		Board:    b,
		Abort:    cortexm.Halt{},
		flash:    newMemory(b.Flash.Size),
		sram:     newMemory(b.SRAM.Size),
		rcc:      newRegfile(RCC_SIZE, map[uint32]uint32{periph.RCC_AHBENR: RCC_RESET}),
		scb:      newSCB(),
		ports:    map[string]*gpio{},
		requests: make(chan cortexm.Exception, PEND_DEPTH),
	}

	emu.flash.readOnly = true
	emu.flash.keep = true

	mm := &emu.memoryMap
	if b.Flash.Base != FLASH_ALIAS {
		mm.attach("boot", FLASH_ALIAS, b.Flash.Size, emu.flash)
	}
	mm.attach("flash", b.Flash.Base, b.Flash.Size, emu.flash)
	mm.attach("sram", b.SRAM.Base, b.SRAM.Size, emu.sram)
	mm.attach("rcc", b.RCC, RCC_SIZE, emu.rcc)
	for _, port := range b.Ports {
		g := newGPIO(port, b.Layout, emu.rcc)
		emu.ports[port.Name] = g
		mm.attach("gpio"+port.Name, port.Base, GPIO_SIZE, g)
	}
	mm.attach("scb", SCB_BASE, SCB_SIZE, emu.scb)

	return
}

// Defines returns an iterator over all of the defines.
func (emu *Emulator) Defines() iter.Seq2[string, uint32] {
	return internal.Concat2(
		internal.Sorted2(_emulator_defines, _emulator_define_order),
		emu.Board.Defines(),
	)
}

// Regions yields the mapped regions in address order.
func (emu *Emulator) Regions() iter.Seq2[string, board.Region] {
	return func(yield func(string, board.Region) bool) {
		for _, r := range emu.memoryMap {
			if !yield(r.name, board.Region{Base: r.base, Size: r.size}) {
				return
			}
		}
	}
}

// Close the emulator, discarding the firmware coroutine.
func (emu *Emulator) Close() (err error) {
	emu.kill()
	return
}

func (emu *Emulator) kill() {
	if emu.co == nil {
		return
	}
	emu.co.kill()
	emu.co = nil
}

// Load programs the image into flash, and holds the core in reset.
func (emu *Emulator) Load(img *link.Image) (err error) {
	err = img.Validate()
	if err != nil {
		return
	}

	emu.kill()
	if !emu.flash.program(0, img.Words()) {
		err = fmt.Errorf("%w: %v", ErrImageSize, emu.Board.Name)
		return
	}

	emu.image = img
	emu.state = cortexm.STATE_RESET
	return
}

// Image returns the loaded image.
func (emu *Emulator) Image() *link.Image {
	return emu.image
}

// Reset the core: every device returns to its power-on state, except flash,
// and discarded firmware is restarted from the reset vector on the next Step.
func (emu *Emulator) Reset() (err error) {
	if emu.image == nil {
		err = ErrNoImage
		return
	}

	emu.kill()
	emu.drain()
	for _, r := range emu.memoryMap {
		r.dev.Reset()
	}

	emu.interrupt.Store(false)
	emu.cycles = 0
	emu.budget = 0
	emu.handler = false
	emu.halted = false
	emu.spinCount = 0
	emu.Panic = nil
	emu.state = emu.state.On(cortexm.SIGNAL_RESET)

	sp := emu.flash.Load(cortexm.OFFSET_STACK)
	pc := emu.flash.Load(cortexm.OFFSET_RESET)
	emu.trace(Event{Kind: KIND_RESET, Addr: pc, Value: uint64(sp)})

	if emu.Verbose {
		log.Printf("emulator: reset sp=%#08x pc=%#08x", sp, pc)
	}

	return
}

// State returns the program control state.
func (emu *Emulator) State() cortexm.State {
	return emu.state
}

// Cycles returns the instructions executed since reset.
func (emu *Emulator) Cycles() uint64 {
	return emu.cycles
}

// Halted reports if the firmware stopped in Halt.
func (emu *Emulator) Halted() bool {
	return emu.halted
}

// Done reports if the firmware can make no further progress until reset.
func (emu *Emulator) Done() bool {
	return emu.halted || emu.state == cortexm.STATE_LOCKUP
}

// Active returns the exception whose handler is running.
func (emu *Emulator) Active() (e cortexm.Exception, ok bool) {
	if emu.scb.active == 0 {
		return
	}
	e = cortexm.Exception(emu.scb.active - 2)
	ok = true
	return
}

// Pending returns the exceptions requested but not yet taken.
func (emu *Emulator) Pending() (pending []cortexm.Exception) {
	emu.drain()
	for e := range cortexm.Exception(cortexm.VECTOR_COUNT) {
		if emu.scb.pended(e) {
			pending = append(pending, e)
		}
	}
	return
}

// Pend requests an asynchronous exception. It is safe to call from any
// goroutine. The request is taken at the next instruction boundary outside
// of a handler.
func (emu *Emulator) Pend(e cortexm.Exception) (err error) {
	if e.Reserved() {
		err = fmt.Errorf("%w: %v", ErrPendInvalid, e)
		return
	}

	select {
	case emu.requests <- e:
	default:
		err = ErrPendFull
	}
	return
}

// drain moves exception requests into the pending state.
func (emu *Emulator) drain() {
	for {
		select {
		case e := <-emu.requests:
			emu.scb.pend |= 1 << e
		default:
			return
		}
	}
}

// Step lets the firmware execute up to cycles instructions. If ctx is
// cancelled the firmware is stopped at the next instruction boundary.
func (emu *Emulator) Step(ctx context.Context, cycles uint64) (err error) {
	switch {
	case emu.image == nil:
		err = ErrNoImage
		return
	case emu.state == cortexm.STATE_RESET:
		err = ErrHeld
		return
	case emu.Done():
		return
	}

	err = ctx.Err()
	if err != nil {
		return
	}

	emu.budget = emu.cycles + cycles
	if emu.co == nil {
		emu.co = newCoroutine()
		go emu.run(emu.co)
	} else {
		emu.co.resume <- struct{}{}
	}

	select {
	case <-emu.co.yield:
	case <-ctx.Done():
		emu.interrupt.Store(true)
		<-emu.co.yield
		emu.interrupt.Store(false)
		err = ctx.Err()
	}

	return
}

// Run the firmware until it can make no further progress, MaxCycles is
// reached, or ctx is cancelled.
func (emu *Emulator) Run(ctx context.Context) (err error) {
	for !emu.Done() {
		n := uint64(STEP_CYCLES)
		if emu.MaxCycles != 0 {
			if emu.cycles >= emu.MaxCycles {
				err = &ErrRuntime{Cycle: emu.cycles, Err: ErrCycleLimit}
				return
			}
			n = min(n, emu.MaxCycles-emu.cycles)
		}

		err = emu.Step(ctx, n)
		if err != nil {
			return
		}
	}

	return
}

// run is the firmware goroutine: the reset entry, then every handler it
// unwinds into, until the core can make no more progress.
func (emu *Emulator) run(co *coroutine) {
	defer close(co.exited)

	core := &firmwareCore{emu: emu}

	fn := emu.entry()
	for fn != nil {
		r := execute(func() { fn(core) })
		if _, ok := r.(killed); ok {
			return
		}
		fn = emu.unwound(r)
	}

	emu.flushSpin()
	for co.park() {
	}
}

// entry resolves the reset vector.
func (emu *Emulator) entry() (fn cortexm.Handler) {
	addr := emu.flash.Load(cortexm.OFFSET_RESET)
	fn, ok := emu.image.Resolve(addr)
	if !ok {
		emu.lockup(fmt.Sprintf("reset vector %#08x", addr))
	}
	return
}

// unwound decides where control goes after the firmware stack unwinds.
func (emu *Emulator) unwound(r any) (fn cortexm.Handler) {
	switch v := r.(type) {
	case exception:
		if emu.handler {
			emu.lockup(fmt.Sprintf("%v in handler", v.e))
			return
		}
		fn = emu.dispatch(v.e)
	case lockup:
		emu.lockup("core")
	case returned:
		emu.lockup("no return path")
	default:
		if emu.handler {
			emu.lockup(fmt.Sprintf("panic in handler: %v", v))
			return
		}
		fn = emu.abort(v)
	}
	return
}

// dispatch takes exception e through the vector table in flash. An empty
// vector escalates to HardFault.
func (emu *Emulator) dispatch(e cortexm.Exception) (fn cortexm.Handler) {
	emu.scb.pend &^= 1 << e

	addr := emu.flash.Load(cortexm.OFFSET_EXCEPTIONS + 4*uint32(e))
	fn, ok := emu.image.Resolve(addr)
	if !ok {
		if e == cortexm.HardFault {
			emu.lockup(fmt.Sprintf("%v vector empty", e))
			return
		}
		if emu.Verbose {
			log.Printf("emulator: %v vector empty, escalating", e)
		}
		emu.scb.regs.words[SCB_HFSR/4] |= HFSR_FORCED
		return emu.dispatch(cortexm.HardFault)
	}

	emu.handler = true
	emu.scb.active = uint32(e.Number())
	emu.state = emu.state.On(cortexm.SIGNAL_EXCEPTION)
	emu.trace(Event{Cycle: emu.cycles, Kind: KIND_EXCEPTION, Addr: addr, Value: uint64(e)})

	if emu.Verbose {
		name, _ := emu.image.Symbol(addr)
		log.Printf("emulator: exception %v -> %v", e, name)
	}

	return
}

// abort routes a firmware panic to the abort strategy.
func (emu *Emulator) abort(v any) (fn cortexm.Handler) {
	emu.Panic = v
	emu.handler = true
	emu.state = emu.state.On(cortexm.SIGNAL_EXCEPTION)
	emu.trace(Event{Cycle: emu.cycles, Kind: KIND_ABORT})

	if emu.Verbose {
		log.Printf("emulator: abort: %v", v)
	}

	strategy := emu.Abort
	if strategy == nil {
		strategy = cortexm.Halt{}
	}
	strategy.Personality()

	fn = strategy.Fatal
	return
}

func (emu *Emulator) lockup(why string) {
	emu.state = emu.state.On(cortexm.SIGNAL_LOCKUP)
	emu.trace(Event{Cycle: emu.cycles, Kind: KIND_LOCKUP})

	if emu.Verbose {
		log.Printf("emulator: lockup: %v", why)
	}
}

// tick starts an instruction: parks when the budget is spent, takes a
// pending exception, and returns the cycle of the instruction.
func (emu *Emulator) tick() (cycle uint64) {
	for emu.interrupt.Load() || emu.cycles >= emu.budget {
		emu.flushSpin()
		if !emu.co.park() {
			panic(killed{})
		}
	}

	if !emu.handler {
		emu.drain()
		if e, ok := emu.scb.next(); ok {
			panic(exception{e: e})
		}
	}

	cycle = emu.cycles
	emu.cycles++
	return
}

// fault records the fault status and unwinds the firmware.
func (emu *Emulator) fault(e cortexm.Exception, cfsr uint32, addr uint32) {
	emu.scb.fault(cfsr, addr)
	if emu.Verbose {
		log.Printf("emulator: %v at %#08x", e, addr)
	}
	panic(exception{e: e, addr: addr})
}

// access decodes a firmware bus address, faulting if it is invalid.
func (emu *Emulator) access(addr uint32) (r *region, offset uint32) {
	if addr&3 != 0 {
		emu.fault(cortexm.UsageFault, CFSR_UNALIGNED, addr)
	}
	r, offset, ok := emu.memoryMap.decode(addr)
	if !ok {
		emu.fault(cortexm.BusFault, CFSR_PRECISERR|CFSR_BFARVALID, addr)
	}
	return
}

func (emu *Emulator) trace(ev Event) {
	emu.flushSpin()
	if emu.Tracer != nil {
		emu.Tracer.Trace(ev)
	}
}

// flushSpin emits the nops since the last event as one spin.
func (emu *Emulator) flushSpin() {
	if emu.spinCount == 0 {
		return
	}
	if emu.Tracer != nil {
		emu.Tracer.Trace(Event{Cycle: emu.spinCycle, Kind: KIND_SPIN, Value: emu.spinCount})
	}
	emu.spinCount = 0
}

// Peek reads a word without executing an instruction.
func (emu *Emulator) Peek(addr uint32) (value uint32, err error) {
	r, offset, ok := emu.memoryMap.decode(addr &^ 3)
	if !ok {
		err = fmt.Errorf("%w: %#08x", ErrAddress, addr)
		return
	}
	value = r.dev.Load(offset)
	return
}

// Poke writes a word without executing an instruction.
func (emu *Emulator) Poke(addr uint32, value uint32) (err error) {
	r, offset, ok := emu.memoryMap.decode(addr &^ 3)
	if !ok {
		err = fmt.Errorf("%w: %#08x", ErrAddress, addr)
		return
	}
	if !r.dev.Store(offset, value) {
		err = fmt.Errorf("%w: %#08x", ErrReadOnly, addr)
	}
	return
}

// SetInput drives the external level of an input pin.
func (emu *Emulator) SetInput(port string, pin uint, high bool) (err error) {
	p, err := emu.Board.Port(port)
	if err != nil {
		return
	}
	if pin >= periph.PINS_PER_PORT {
		err = fmt.Errorf("%w: %d", periph.ErrPinRange, pin)
		return
	}
	g := emu.ports[p.Name]
	if high {
		g.input |= 1 << pin
	} else {
		g.input &^= 1 << pin
	}
	return
}

// debugBus is the debugger view of the bus. Errors read as zero.
type debugBus struct {
	emu *Emulator
}

func (bus debugBus) Load32(addr uint32) uint32 {
	value, _ := bus.emu.Peek(addr)
	return value
}

func (bus debugBus) Store32(addr uint32, value uint32) {
	_ = bus.emu.Poke(addr, value)
}

// Debug returns a bus for inspecting the peripherals between steps.
func (emu *Emulator) Debug() mmio.Bus {
	return debugBus{emu: emu}
}

// firmwareCore is the Core seen by firmware on the emulator.
type firmwareCore struct {
	emu *Emulator
}

var _ cortexm.Core = (*firmwareCore)(nil)

func (c *firmwareCore) Load32(addr uint32) (value uint32) {
	emu := c.emu
	cycle := emu.tick()
	r, offset := emu.access(addr)
	value = r.dev.Load(offset)
	emu.trace(Event{Cycle: cycle, Kind: KIND_LOAD, Addr: addr, Value: uint64(value)})
	return
}

func (c *firmwareCore) Store32(addr uint32, value uint32) {
	emu := c.emu
	cycle := emu.tick()
	r, offset := emu.access(addr)
	if !r.dev.Store(offset, value) {
		emu.fault(cortexm.BusFault, CFSR_PRECISERR|CFSR_BFARVALID, addr)
	}
	emu.trace(Event{Cycle: cycle, Kind: KIND_STORE, Addr: addr, Value: uint64(value)})
}

func (c *firmwareCore) Nop() {
	emu := c.emu
	cycle := emu.tick()
	if emu.spinCount == 0 {
		emu.spinCycle = cycle
	}
	emu.spinCount++
}

func (c *firmwareCore) Breakpoint() {
	emu := c.emu
	cycle := emu.tick()
	emu.trace(Event{Cycle: cycle, Kind: KIND_BREAKPOINT})

	if emu.Verbose {
		log.Printf("emulator: breakpoint at cycle %d", cycle)
	}
	if emu.OnBreakpoint != nil {
		emu.OnBreakpoint(emu)
	}
}

// Halt parks the firmware for good.
func (c *firmwareCore) Halt() {
	emu := c.emu
	emu.halted = true
	emu.trace(Event{Cycle: emu.cycles, Kind: KIND_HALT})

	if emu.Verbose {
		log.Printf("emulator: halt at cycle %d", emu.cycles)
	}

	for emu.co.park() {
	}
	panic(killed{})
}
