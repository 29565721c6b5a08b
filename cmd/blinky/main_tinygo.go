// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

//go:build tinygo && cortexm

// blinky blinks the user LED (PE9) of an STM32F3DISCOVERY board.
package main

import (
	"github.com/ezrec/mcucore/cortexm"
	"github.com/ezrec/mcucore/firmware"
	"github.com/ezrec/mcucore/periph"
)

const (
	RCC_BASE   = 0x4002_1000
	GPIOE_BASE = 0x4800_1000
	LED_PIN    = 9
)

func main() {
	app := &firmware.Blink{
		LED: &firmware.LED{
			RCC:    RCC_BASE,
			Gate:   periph.IOPEEN,
			Port:   GPIOE_BASE,
			Layout: periph.LAYOUT_MODER,
			Index:  LED_PIN,
		},
		Ticks: firmware.BLINK_TICKS,
	}
	cortexm.Reset(cortexm.Target{}, app)
}
