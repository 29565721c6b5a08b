package emulator

import (
	"errors"

	"github.com/ezrec/mcucore/translate"
)

var f = translate.From

var (
	ErrNoImage     = errors.New(f("no image loaded"))
	ErrImageSize   = errors.New(f("image larger than flash"))
	ErrHeld        = errors.New(f("core held in reset"))
	ErrPendFull    = errors.New(f("exception request queue full"))
	ErrPendInvalid = errors.New(f("exception cannot be requested"))
	ErrCycleLimit  = errors.New(f("cycle limit reached"))
	ErrAddress     = errors.New(f("address not mapped"))
	ErrReadOnly    = errors.New(f("address read only"))
)

// ErrRuntime indicates the cycle of a runtime error.
type ErrRuntime struct {
	Cycle uint64
	Err   error
}

func (err *ErrRuntime) Error() string {
	return f("cycle %d %v", err.Cycle, err.Err)
}

func (err *ErrRuntime) Unwrap() error {
	return err.Err
}
