package board

import (
	"errors"

	"github.com/ezrec/mcucore/translate"
)

var f = translate.From

var (
	ErrExpression   = errors.New(f("expression invalid"))
	ErrValueRange   = errors.New(f("value out of range"))
	ErrEquates      = errors.New(f("equates must be a mapping"))
	ErrBoardUnknown = errors.New(f("board unknown"))
	ErrBoardName    = errors.New(f("board name missing"))
	ErrPortUnknown  = errors.New(f("port unknown"))
	ErrRegion       = errors.New(f("memory region invalid"))
)

// ErrBoard is an error in the description of a board.
type ErrBoard struct {
	Name string
	Err  error
}

func (err *ErrBoard) Error() string {
	return f("board %v: %v", err.Name, err.Err)
}

func (err *ErrBoard) Unwrap() error {
	return err.Err
}
