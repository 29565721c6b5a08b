// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package emulator

import (
	"math/bits"

	"github.com/ezrec/mcucore/cortexm"
)

// System control block registers.
const (
	SCB_BASE = 0xe000_ed00 // System control block base.
	SCB_SIZE = 0x90        // System control block size.

	SCB_CPUID = 0x00 // CPU identification
	SCB_ICSR  = 0x04 // Interrupt control and state
	SCB_CFSR  = 0x28 // Configurable fault status
	SCB_HFSR  = 0x2c // HardFault status
	SCB_BFAR  = 0x38 // BusFault address

	CPUID_CORTEX_M3 = 0x411f_c231 // Cortex-M3 r1p1

	ICSR_NMIPENDSET = 1 << 31
	ICSR_PENDSVSET  = 1 << 28
	ICSR_PENDSVCLR  = 1 << 27
	ICSR_PENDSTSET  = 1 << 26
	ICSR_PENDSTCLR  = 1 << 25
	ICSR_ISRPENDING = 1 << 22
	ICSR_VECTACTIVE = 0x1ff

	CFSR_PRECISERR = 1 << 9
	CFSR_BFARVALID = 1 << 15
	CFSR_UNALIGNED = 1 << 24

	HFSR_FORCED = 1 << 30
)

// scb models pending and active exception state, and fault status.
type scb struct {
	regs   *regfile
	pend   uint32 // Pending exceptions, one bit per table index.
	active uint32 // VECTACTIVE: exception number of the active handler.
}

func newSCB() *scb {
	return &scb{
		regs: newRegfile(SCB_SIZE, map[uint32]uint32{SCB_CPUID: CPUID_CORTEX_M3}),
	}
}

func (s *scb) pended(e cortexm.Exception) bool {
	return s.pend&(1<<e) != 0
}

// next returns the pending exception with the lowest index.
func (s *scb) next() (e cortexm.Exception, ok bool) {
	if s.pend == 0 {
		return
	}
	e = cortexm.Exception(bits.TrailingZeros32(s.pend))
	ok = true
	return
}

// fault records a fault status, and the fault address when valid.
func (s *scb) fault(cfsr uint32, bfar uint32) {
	s.regs.words[SCB_CFSR/4] |= cfsr
	if cfsr&CFSR_BFARVALID != 0 {
		s.regs.words[SCB_BFAR/4] = bfar
	}
}

func (s *scb) Load(offset uint32) (value uint32) {
	switch offset {
	case SCB_ICSR:
		if s.pended(cortexm.NMI) {
			value |= ICSR_NMIPENDSET
		}
		if s.pended(cortexm.PendSV) {
			value |= ICSR_PENDSVSET
		}
		if s.pended(cortexm.SysTick) {
			value |= ICSR_PENDSTSET
		}
		if s.pend != 0 {
			value |= ICSR_ISRPENDING
		}
		value |= s.active & ICSR_VECTACTIVE
		return
	}
	return s.regs.Load(offset)
}

func (s *scb) Store(offset uint32, value uint32) bool {
	switch offset {
	case SCB_CPUID:
	case SCB_ICSR:
		if value&ICSR_NMIPENDSET != 0 {
			s.pend |= 1 << cortexm.NMI
		}
		if value&ICSR_PENDSVSET != 0 {
			s.pend |= 1 << cortexm.PendSV
		}
		if value&ICSR_PENDSVCLR != 0 {
			s.pend &^= 1 << cortexm.PendSV
		}
		if value&ICSR_PENDSTSET != 0 {
			s.pend |= 1 << cortexm.SysTick
		}
		if value&ICSR_PENDSTCLR != 0 {
			s.pend &^= 1 << cortexm.SysTick
		}
	case SCB_CFSR, SCB_HFSR:
		// Write one to clear.
		s.regs.words[offset/4] &^= value
	default:
		s.regs.Store(offset, value)
	}
	return true
}

func (s *scb) Reset() {
	s.regs.Reset()
	s.pend = 0
	s.active = 0
}
