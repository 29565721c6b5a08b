package link

import (
	"errors"

	"github.com/ezrec/mcucore/translate"
)

var f = translate.From

var (
	ErrPlaced      = errors.New(f("section already placed"))
	ErrUnplaced    = errors.New(f("section not placed"))
	ErrStackAlign  = errors.New(f("stack top not word aligned"))
	ErrHandlerNil  = errors.New(f("handler missing"))
	ErrTableNil    = errors.New(f("vector table missing"))
	ErrImageFormat = errors.New(f("image format invalid"))
)

// ErrSection reports a placement failure in a named section.
type ErrSection struct {
	Section string
	Err     error
}

func (err *ErrSection) Error() string {
	return f("%v: %v", err.Section, err.Err)
}

func (err *ErrSection) Unwrap() error {
	return err.Err
}
