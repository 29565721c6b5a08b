package emulator

import (
	"github.com/ezrec/mcucore/cortexm"
)

// coroutine hands control back and forth between the host and the
// firmware goroutine. Exactly one side runs at a time.
type coroutine struct {
	yield  chan struct{} // Firmware parked.
	resume chan struct{} // Firmware may run. Closed to kill it.
	exited chan struct{} // Firmware goroutine finished.
}

func newCoroutine() *coroutine {
	return &coroutine{
		yield:  make(chan struct{}),
		resume: make(chan struct{}),
		exited: make(chan struct{}),
	}
}

// park hands control to the host, and waits to run again. It returns
// false when the coroutine is killed.
func (co *coroutine) park() (ok bool) {
	co.yield <- struct{}{}
	_, ok = <-co.resume
	return
}

// kill ends a parked coroutine, and waits for its goroutine to finish.
func (co *coroutine) kill() {
	close(co.resume)
	<-co.exited
}

// Values unwinding the firmware call stack into the run loop.
type (
	// exception is a fault or an exception request taken at an
	// instruction boundary.
	exception struct {
		e    cortexm.Exception
		addr uint32
	}
	// lockup is an unrecoverable core state.
	lockup struct{}
	// killed is the coroutine being discarded by the host.
	killed struct{}
	// returned is firmware returning from a never returning entry.
	returned struct{}
)

// execute calls fn, and returns the value it unwound with.
func execute(fn func()) (r any) {
	r = returned{}
	defer func() {
		if v := recover(); v != nil {
			r = v
		}
	}()
	fn()
	return
}
