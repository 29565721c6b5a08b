// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package cortexm

import (
	"fmt"
	"strings"
)

// Exception is an index into the exception vector table.
type Exception int

const (
	NMI        = Exception(0)  // NMI
	HardFault  = Exception(1)  // HardFault
	MemManage  = Exception(2)  // MemManage
	BusFault   = Exception(3)  // BusFault
	UsageFault = Exception(4)  // UsageFault
	SVCall     = Exception(9)  // SVCall
	PendSV     = Exception(12) // PendSV
	SysTick    = Exception(13) // SysTick

	// VECTOR_COUNT is the number of entries in the exception vector table.
	VECTOR_COUNT = 14
)

var exceptionNames = [VECTOR_COUNT]string{
	NMI:        "NMI",
	HardFault:  "HardFault",
	MemManage:  "MemManage",
	BusFault:   "BusFault",
	UsageFault: "UsageFault",
	5:          "Reserved",
	6:          "Reserved",
	7:          "Reserved",
	8:          "Reserved",
	SVCall:     "SVCall",
	10:         "DebugMonitor",
	11:         "Reserved",
	PendSV:     "PendSV",
	SysTick:    "SysTick",
}

// Valid reports if the exception indexes the vector table.
func (e Exception) Valid() bool {
	return e >= 0 && e < VECTOR_COUNT
}

// Reserved reports if the architecture reserves the vector. Reserved
// vectors never hold a handler.
func (e Exception) Reserved() bool {
	switch e {
	case 5, 6, 7, 8, 10, 11:
		return true
	}
	return !e.Valid()
}

// Number is the architectural exception number. Reset is exception 1, so
// the table index is offset by two.
func (e Exception) Number() int {
	return int(e) + 2
}

func (e Exception) String() string {
	if !e.Valid() {
		return fmt.Sprintf("Exception(%d)", int(e))
	}
	return exceptionNames[e]
}

// ParseException finds a bindable exception by name, case insensitive.
func ParseException(name string) (e Exception, err error) {
	for n, ename := range exceptionNames {
		e = Exception(n)
		if e.Reserved() {
			continue
		}
		if strings.EqualFold(ename, name) {
			return
		}
	}
	e = -1
	err = fmt.Errorf("%w: %q", ErrExceptionUnknown, name)
	return
}
