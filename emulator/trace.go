// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package emulator

import (
	"fmt"
)

// Kind is the kind of a trace event.
//
// Event fields by kind:
//   - load, store: Addr, and the Value transferred.
//   - spin: Value consecutive nops.
//   - exception: Addr of the handler, Value the table index.
//   - reset: Addr of the entry, Value the initial stack pointer.
//   - abort: a firmware panic routed to the abort strategy.
type Kind uint8

//go:generate go tool stringer -linecomment -type=Kind
const (
	KIND_LOAD       = Kind(0) // load
	KIND_STORE      = Kind(1) // store
	KIND_SPIN       = Kind(2) // spin
	KIND_BREAKPOINT = Kind(3) // breakpoint
	KIND_EXCEPTION  = Kind(4) // exception
	KIND_HALT       = Kind(5) // halt
	KIND_LOCKUP     = Kind(6) // lockup
	KIND_RESET      = Kind(7) // reset
	KIND_ABORT      = Kind(8) // abort
)

// Event is an observable action of the core.
type Event struct {
	Cycle uint64 // Cycle the event started.
	Kind  Kind
	Addr  uint32
	Value uint64
}

func (ev Event) String() string {
	switch ev.Kind {
	case KIND_LOAD, KIND_STORE:
		return fmt.Sprintf("%10d %-10v %#08x %#08x", ev.Cycle, ev.Kind, ev.Addr, ev.Value)
	case KIND_SPIN:
		return fmt.Sprintf("%10d %-10v %d", ev.Cycle, ev.Kind, ev.Value)
	case KIND_EXCEPTION, KIND_RESET:
		return fmt.Sprintf("%10d %-10v %#08x %v", ev.Cycle, ev.Kind, ev.Addr, ev.Value)
	}
	return fmt.Sprintf("%10d %v", ev.Cycle, ev.Kind)
}

// Tracer receives events from the firmware goroutine, in order.
type Tracer interface {
	Trace(ev Event)
}

// Recorder is a Tracer that keeps the most recent events.
type Recorder struct {
	Limit  int // Maximum events kept. Zero keeps all of them.
	Events []Event
}

var _ Tracer = (*Recorder)(nil)

// Trace appends ev, dropping the oldest event when full.
func (rec *Recorder) Trace(ev Event) {
	if rec.Limit > 0 && len(rec.Events) >= rec.Limit {
		rec.Events = append(rec.Events[:0], rec.Events[len(rec.Events)-rec.Limit+1:]...)
	}
	rec.Events = append(rec.Events, ev)
}

// Kinds returns the kinds of the recorded events.
func (rec *Recorder) Kinds() (kinds []Kind) {
	for _, ev := range rec.Events {
		kinds = append(kinds, ev.Kind)
	}
	return
}

// Stores returns the recorded store events.
func (rec *Recorder) Stores() (stores []Event) {
	for _, ev := range rec.Events {
		if ev.Kind == KIND_STORE {
			stores = append(stores, ev)
		}
	}
	return
}

// Reset forgets all events.
func (rec *Recorder) Reset() {
	rec.Events = nil
}
