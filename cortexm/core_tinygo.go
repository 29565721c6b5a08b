//go:build tinygo && cortexm

package cortexm

import (
	"device/arm"

	"github.com/ezrec/mcucore/mmio"
)

// Target is the Core of the processor executing this program. Register
// accesses use physical addresses.
type Target struct {
	mmio.Direct
}

var _ Core = Target{}

// Nop executes a nop instruction.
func (Target) Nop() {
	arm.Asm("nop")
}

// Breakpoint executes a bkpt instruction.
func (Target) Breakpoint() {
	arm.Asm("bkpt")
}

// Halt disables interrupts and sleeps forever.
func (Target) Halt() {
	arm.DisableInterrupts()
	for {
		arm.Asm("wfi")
	}
}
