// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package cortexm

import (
	"fmt"
)

// State is the program control state of the core.
type State int

const (
	STATE_RESET   = State(0) // reset
	STATE_RUNNING = State(1) // running
	STATE_TRAPPED = State(2) // trapped
	STATE_LOCKUP  = State(3) // lockup
)

var stateNames = [...]string{"reset", "running", "trapped", "lockup"}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return fmt.Sprintf("State(%d)", int(s))
	}
	return stateNames[s]
}

// Absorbing reports if no signal other than a reset leaves the state.
func (s State) Absorbing() bool {
	return s == STATE_TRAPPED || s == STATE_LOCKUP
}

// Signal is an event that drives the state machine.
type Signal int

const (
	SIGNAL_RESET     = Signal(0) // reset
	SIGNAL_EXCEPTION = Signal(1) // exception taken to a bound handler
	SIGNAL_LOCKUP    = Signal(2) // unrecoverable: empty vector, or fault in a handler
)

var signalNames = [...]string{"reset", "exception", "lockup"}

func (sig Signal) String() string {
	if sig < 0 || int(sig) >= len(signalNames) {
		return fmt.Sprintf("Signal(%d)", int(sig))
	}
	return signalNames[sig]
}

// On returns the state after sig.
//
//	any     --reset-->     running
//	running --exception--> trapped
//	running --lockup-->    lockup
//	trapped --lockup-->    lockup
//
// Every other pair leaves the state unchanged: a trapped core stays trapped.
func (s State) On(sig Signal) State {
	switch sig {
	case SIGNAL_RESET:
		return STATE_RUNNING
	case SIGNAL_EXCEPTION:
		if s == STATE_RUNNING {
			return STATE_TRAPPED
		}
	case SIGNAL_LOCKUP:
		if s == STATE_RUNNING || s == STATE_TRAPPED {
			return STATE_LOCKUP
		}
	}
	return s
}
