package main

import (
	"errors"

	"github.com/ezrec/mcucore/translate"
)

var f = translate.From

var (
	ErrCommandUnknown = errors.New(f("unknown command"))
	ErrCommandUsage   = errors.New(f("usage"))
)
