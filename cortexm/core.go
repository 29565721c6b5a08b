// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package cortexm

import (
	"github.com/ezrec/mcucore/mmio"
)

// Core is the processor as seen by the runtime core.
type Core interface {
	mmio.Bus

	// Nop executes one instruction with no effect other than elapsed time.
	Nop()
	// Breakpoint signals an attached debugger.
	Breakpoint()
	// Halt stops the processor forever. It never returns.
	Halt()
}

// Handler is the code at a reset or exception vector.
type Handler func(core Core)

// Application is a firmware program started by Reset.
type Application interface {
	// Setup brings up the peripherals. It runs exactly once per reset.
	Setup(core Core)
	// Loop runs one period of the steady state behaviour.
	Loop(core Core)
}

// Reset is the reset entry: bring-up once, then the application loop forever.
// It never returns; there is no caller frame to return into.
func Reset(core Core, app Application) {
	app.Setup(core)
	for {
		app.Loop(core)
	}
}
