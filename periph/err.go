package periph

import (
	"errors"

	"github.com/ezrec/mcucore/translate"
)

var f = translate.From

var (
	ErrPinRange      = errors.New(f("pin out of range"))
	ErrModeInvalid   = errors.New(f("pin mode invalid"))
	ErrLayoutUnknown = errors.New(f("gpio layout unknown"))
)
