// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

//go:build !tinygo

package firmware

import (
	"fmt"
	"iter"
	"strings"

	"github.com/ezrec/mcucore/board"
	"github.com/ezrec/mcucore/cortexm"
	"github.com/ezrec/mcucore/link"
)

var programs = []*Program{
	{
		Name:        "first",
		Description: "bind two locals and spin; reset vector only",
		Board:       "stm32f3discovery",
		New: func(b *board.Board) (cortexm.Application, error) {
			return &Spin{}, nil
		},
	},
	{
		Name:        "qemu",
		Description: "bind two locals and spin, on the QEMU board; reset vector only",
		Board:       "lm3s6965evb",
		New: func(b *board.Board) (cortexm.Application, error) {
			return &Spin{}, nil
		},
	},
	{
		Name:        "crash",
		Description: "load through the initial stack pointer to raise a bus fault",
		Board:       "stm32vldiscovery",
		Exceptions:  true,
		New: func(b *board.Board) (cortexm.Application, error) {
			return Crash{}, nil
		},
	},
	{
		Name:        "led",
		Description: "power the LED port, drive the LED high then low, and spin",
		Board:       "stm32vldiscovery",
		Exceptions:  true,
		New: func(b *board.Board) (app cortexm.Application, err error) {
			led, err := NewLED(b)
			if err != nil {
				return
			}
			app = &Light{LED: led}
			return
		},
	},
	{
		Name:        "blink",
		Description: "blink the LED with a busy wait delay",
		Board:       "stm32f3discovery",
		Exceptions:  true,
		New: func(b *board.Board) (app cortexm.Application, err error) {
			led, err := NewLED(b)
			if err != nil {
				return
			}
			app = &Blink{LED: led, Ticks: BLINK_TICKS}
			return
		},
	},
}

// NewLED resolves the LED of b.
func NewLED(b *board.Board) (led *LED, err error) {
	if len(b.LED.Port) == 0 {
		err = fmt.Errorf("%w: %v", ErrNoLED, b.Name)
		return
	}
	port, err := b.Port(b.LED.Port)
	if err != nil {
		return
	}
	led = &LED{
		RCC:    b.RCC,
		Gate:   port.Clock,
		Port:   port.Base,
		Layout: b.Layout,
		Index:  b.LED.Pin,
	}
	return
}

// Program is a firmware program and how it is linked.
type Program struct {
	Name        string
	Description string
	Board       string // Default board.
	Exceptions  bool   // Place the exception vector table.

	// New builds the application for a board.
	New func(b *board.Board) (cortexm.Application, error)
}

// All yields the programs by name.
func All() iter.Seq2[string, *Program] {
	return func(yield func(string, *Program) bool) {
		for _, prog := range programs {
			if !yield(prog.Name, prog) {
				return
			}
		}
	}
}

// Lookup finds a program by name.
func Lookup(name string) (prog *Program, err error) {
	for _, candidate := range programs {
		if strings.EqualFold(candidate.Name, name) {
			prog = candidate
			return
		}
	}
	err = fmt.Errorf("%w: %q", ErrProgramUnknown, name)
	return
}

// Link builds the program for b, and places it with linker: the stack at
// the top of SRAM, the reset entry, and every non-reserved exception bound
// to the fault handler when the program has an exception table.
func (prog *Program) Link(b *board.Board, linker cortexm.Linker) (err error) {
	defer func() {
		if err != nil {
			err = &ErrProgram{Name: prog.Name, Err: err}
		}
	}()

	app, err := prog.New(b)
	if err != nil {
		return
	}

	err = linker.PlaceStack(b.StackTop())
	if err != nil {
		return
	}

	err = linker.PlaceReset(func(core cortexm.Core) {
		cortexm.Reset(core, app)
	})
	if err != nil {
		return
	}

	if prog.Exceptions {
		err = linker.PlaceExceptions(cortexm.DefaultVectorTable(cortexm.FaultHandler))
	}

	return
}

// Image links the program for b into a flash image.
func (prog *Program) Image(b *board.Board) (img *link.Image, err error) {
	image := link.NewImage(b.Flash.Base)
	err = prog.Link(b, image)
	if err != nil {
		return
	}
	img = image
	return
}
