// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

//go:build !tinygo

// blinky runs the blink program on an emulated board, and logs each edge
// of the LED.
package main

import (
	"context"
	"errors"
	"flag"
	"log"

	"github.com/ezrec/mcucore/board"
	"github.com/ezrec/mcucore/emulator"
	"github.com/ezrec/mcucore/firmware"
	"github.com/ezrec/mcucore/periph"
)

// edges is a Tracer that logs the LED level when it changes.
type edges struct {
	emu   *emulator.Emulator
	led   *firmware.LED
	level bool
	count int
}

func (e *edges) Trace(ev emulator.Event) {
	if ev.Kind != emulator.KIND_STORE || ev.Addr != e.led.Port+e.led.Layout.BSRR {
		return
	}
	level, _ := periph.NewGPIO(e.emu.Debug(), e.led.Port, e.led.Layout).PinLevel(e.led.Index)
	if level == e.level {
		return
	}
	e.level = level
	e.count++
	state := "off"
	if level {
		state = "on"
	}
	log.Printf("blinky: cycle %d: LED %v", ev.Cycle, state)
}

func main() {
	var boardName string
	var cycles uint64
	var verbose bool

	flag.StringVar(&boardName, "b", "stm32f3discovery", "Board to emulate")
	flag.Uint64Var(&cycles, "c", 2_000_000, "Cycles to run")
	flag.BoolVar(&verbose, "v", false, "Verbose mode")

	flag.Parse()

	if flag.NArg() != 0 {
		log.Fatalf("blinky: Unknown arguments: %v", flag.Args())
	}

	b, err := board.Lookup(boardName)
	if err != nil {
		log.Fatal(err)
	}

	prog, err := firmware.Lookup("blink")
	if err != nil {
		log.Fatal(err)
	}

	img, err := prog.Image(b)
	if err != nil {
		log.Fatalf("%v: %v", boardName, err)
	}

	led, err := firmware.NewLED(b)
	if err != nil {
		log.Fatal(err)
	}

	emu := emulator.NewEmulator(b)
	defer emu.Close()
	emu.Verbose = verbose
	emu.MaxCycles = cycles
	tracer := &edges{emu: emu, led: led}
	emu.Tracer = tracer

	err = emu.Load(img)
	if err == nil {
		err = emu.Reset()
	}
	if err != nil {
		log.Fatal(err)
	}

	err = emu.Run(context.Background())
	if err != nil && !errors.Is(err, emulator.ErrCycleLimit) {
		log.Fatal(err)
	}

	log.Printf("blinky: %v after %d cycles, %d edges", emu.State(), emu.Cycles(), tracer.count)
}
