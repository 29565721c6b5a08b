// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package cortexm

// AbortStrategy replaces panic message formatting and stack unwinding.
//
// Neither hook may format, allocate, or unwind: none of those services
// exist on the target.
type AbortStrategy interface {
	// Fatal is invoked when an unrecoverable condition is reached. It must
	// end in the same terminal trap as FaultHandler.
	Fatal(core Core)
	// Personality is invoked where an unwinder would look up exception
	// handling metadata.
	Personality()
}

// Halt is the built-in strategy: trap like an exception, never unwind.
type Halt struct{}

var _ AbortStrategy = Halt{}

// Fatal traps to the debugger and halts.
func (Halt) Fatal(core Core) {
	FaultHandler(core)
}

// Personality does nothing.
func (Halt) Personality() {}
