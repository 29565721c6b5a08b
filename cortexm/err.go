package cortexm

import (
	"errors"

	"github.com/ezrec/mcucore/translate"
)

var f = translate.From

var (
	ErrVectorRange      = errors.New(f("vector out of range"))
	ErrVectorReserved   = errors.New(f("vector reserved"))
	ErrVectorDuplicate  = errors.New(f("vector bound twice"))
	ErrHandlerNil       = errors.New(f("handler missing"))
	ErrExceptionUnknown = errors.New(f("exception unknown"))
)
