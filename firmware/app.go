// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package firmware

import (
	"github.com/ezrec/mcucore/cortexm"
	"github.com/ezrec/mcucore/periph"
)

// LED is the user LED of a board, resolved to register addresses.
type LED struct {
	RCC    uint32
	Gate   periph.ClockGate
	Port   uint32
	Layout *periph.Layout
	Index  uint
}

// Pin is the LED pin as seen through core. An invalid pin is a fatal
// condition.
func (led *LED) Pin(core cortexm.Core) (pin periph.Pin) {
	pin, err := periph.NewGPIO(core, led.Port, led.Layout).Pin(led.Index)
	if err != nil {
		cortexm.FaultHandler(core)
	}
	return
}

// PowerOn enables the port clock and puts the pin in output mode. A
// failure is a fatal condition.
func (led *LED) PowerOn(core cortexm.Core) {
	periph.NewRCC(core, led.RCC).EnableClock(led.Gate)
	err := led.Pin(core).Configure(periph.MODE_OUTPUT)
	if err != nil {
		cortexm.FaultHandler(core)
	}
}

// BLINK_TICKS is the delay of each half period of Blink.
const BLINK_TICKS = 100_000

// Spin binds two locals, then spins forever.
type Spin struct {
	X, Y uint32
}

func (app *Spin) Setup(core cortexm.Core) {
	app.X = 42
	app.Y = app.X
}

func (app *Spin) Loop(core cortexm.Core) {
	core.Nop()
}

// Crash reads the word at address 0, the initial stack pointer, and loads
// from that address: one past the end of SRAM.
type Crash struct{}

func (Crash) Setup(core cortexm.Core) {}

func (Crash) Loop(core cortexm.Core) {
	boundary := core.Load32(0x0000_0000)
	_ = core.Load32(boundary)
}

// Light turns the LED on, then off, then spins forever.
type Light struct {
	LED *LED
}

func (app *Light) Setup(core cortexm.Core) {
	app.LED.PowerOn(core)
	pin := app.LED.Pin(core)
	pin.High()
	pin.Low()
}

func (app *Light) Loop(core cortexm.Core) {
	core.Nop()
}

// Blink toggles the LED with a busy wait of Ticks between edges.
type Blink struct {
	LED   *LED
	Ticks uint32
}

func (app *Blink) Setup(core cortexm.Core) {
	app.LED.PowerOn(core)
}

func (app *Blink) Loop(core cortexm.Core) {
	pin := app.LED.Pin(core)
	pin.High()
	periph.Delay(core, app.Ticks)
	pin.Low()
	periph.Delay(core, app.Ticks)
}
