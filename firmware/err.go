//go:build !tinygo

package firmware

import (
	"errors"

	"github.com/ezrec/mcucore/translate"
)

var f = translate.From

var (
	ErrProgramUnknown = errors.New(f("program unknown"))
	ErrNoLED          = errors.New(f("board has no led"))
)

// ErrProgram is an error building a program.
type ErrProgram struct {
	Name string
	Err  error
}

func (err *ErrProgram) Error() string {
	return f("program %v: %v", err.Name, err.Err)
}

func (err *ErrProgram) Unwrap() error {
	return err.Err
}
