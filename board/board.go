// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package board

import (
	_ "embed"
	"fmt"
	"iter"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ezrec/mcucore/internal"
	"github.com/ezrec/mcucore/mmio"
	"github.com/ezrec/mcucore/periph"
)

//go:embed boards.yaml
var rawBoards []byte

var builtin []*Board

// Region is a memory region.
type Region struct {
	Base uint32
	Size uint32
}

// Contains reports if addr is inside the region.
func (r Region) Contains(addr uint32) bool {
	return addr >= r.Base && addr-r.Base < r.Size
}

// End is the first address after the region.
func (r Region) End() uint32 {
	return r.Base + r.Size
}

// Port is a GPIO port of a board.
type Port struct {
	Name  string
	Base  uint32
	Clock periph.ClockGate
	Reset uint32 // Reset value of the mode registers.
}

// PinRef names a pin of a port.
type PinRef struct {
	Port string
	Pin  uint
}

func (ref PinRef) String() string {
	return fmt.Sprintf("P%v%d", ref.Port, ref.Pin)
}

// Board is a resolved board description.
type Board struct {
	Name        string
	Description string
	Chip        string
	Layout      *periph.Layout
	Flash       Region
	SRAM        Region
	RCC         uint32
	Ports       []Port
	LED         PinRef

	equates *Equates
}

type regionInfo struct {
	Base Expr `yaml:"base"`
	Size Expr `yaml:"size"`
}

type portInfo struct {
	Name  string `yaml:"name"`
	Base  Expr   `yaml:"base"`
	Clock struct {
		Register Expr `yaml:"register"`
		Bit      Expr `yaml:"bit"`
	} `yaml:"clock"`
	Reset Expr `yaml:"reset"`
}

type boardInfo struct {
	Name        string     `yaml:"name"`
	Description string     `yaml:"description"`
	Chip        string     `yaml:"chip"`
	Layout      string     `yaml:"layout"`
	Flash       regionInfo `yaml:"flash"`
	SRAM        regionInfo `yaml:"sram"`
	RCC         Expr       `yaml:"rcc"`
	Ports       []portInfo `yaml:"ports"`
	LED         struct {
		Port string `yaml:"port"`
		Pin  Expr   `yaml:"pin"`
	} `yaml:"led"`
}

type fileInfo struct {
	Equates yaml.Node   `yaml:"equates"`
	Boards  []boardInfo `yaml:"boards"`
}

// evaluator collects the first error of a series of evaluations.
type evaluator struct {
	eq  *Equates
	err error
}

func (ev *evaluator) eval(what string, x Expr) (value uint32) {
	if ev.err != nil {
		return
	}
	value, err := x.Eval(ev.eq)
	if err != nil {
		ev.err = fmt.Errorf("%v: %w", what, err)
	}
	return
}

func (ev *evaluator) region(what string, info regionInfo) (r Region) {
	r.Base = ev.eval(what+".base", info.Base)
	r.Size = ev.eval(what+".size", info.Size)
	switch {
	case ev.err != nil:
	case r.Size == 0, r.End() < r.Base:
		ev.err = fmt.Errorf("%v: %w", what, ErrRegion)
	case r.Base%4 != 0, r.Size%4 != 0:
		ev.err = fmt.Errorf("%v: %w: not word aligned", what, ErrRegion)
	}
	return
}

func (info *boardInfo) resolve(eq *Equates) (b *Board, err error) {
	if len(info.Name) == 0 {
		err = ErrBoardName
		return
	}

	// A board without GPIO ports needs no layout.
	var layout *periph.Layout
	if len(info.Layout) != 0 || len(info.Ports) != 0 {
		layout, err = periph.LayoutByName(info.Layout)
		if err != nil {
			err = &ErrBoard{Name: info.Name, Err: err}
			return
		}
	}

	ev := &evaluator{eq: eq}
	b = &Board{
		Name:        info.Name,
		Description: info.Description,
		Chip:        info.Chip,
		Layout:      layout,
		Flash:       ev.region("flash", info.Flash),
		SRAM:        ev.region("sram", info.SRAM),
		RCC:         ev.eval("rcc", info.RCC),
		equates:     eq,
	}

	for _, pi := range info.Ports {
		port := Port{
			Name: strings.ToUpper(pi.Name),
			Base: ev.eval(pi.Name+".base", pi.Base),
			Clock: periph.ClockGate{
				Offset: ev.eval(pi.Name+".clock.register", pi.Clock.Register),
				Bit:    uint(ev.eval(pi.Name+".clock.bit", pi.Clock.Bit)),
			},
			Reset: ev.eval(pi.Name+".reset", pi.Reset),
		}
		if ev.err == nil && port.Clock.Bit >= 32 {
			ev.err = fmt.Errorf("%v.clock.bit: %w: %d", pi.Name, ErrValueRange, port.Clock.Bit)
		}
		b.Ports = append(b.Ports, port)
	}

	b.LED = PinRef{
		Port: strings.ToUpper(info.LED.Port),
		Pin:  uint(ev.eval("led.pin", info.LED.Pin)),
	}

	if ev.err == nil && len(b.LED.Port) != 0 {
		_, ev.err = b.Port(b.LED.Port)
		if ev.err == nil && b.LED.Pin >= periph.PINS_PER_PORT {
			ev.err = fmt.Errorf("led: %w: %d", periph.ErrPinRange, b.LED.Pin)
		}
	}

	if ev.err != nil {
		b = nil
		err = &ErrBoard{Name: info.Name, Err: ev.err}
	}

	return
}

// Parse reads a YAML board description file.
func Parse(data []byte) (boards []*Board, err error) {
	var info fileInfo
	err = yaml.Unmarshal(data, &info)
	if err != nil {
		return
	}

	eq, err := parseEquates(&info.Equates)
	if err != nil {
		return
	}

	for n := range info.Boards {
		var b *Board
		b, err = info.Boards[n].resolve(eq)
		if err != nil {
			boards = nil
			return
		}
		boards = append(boards, b)
	}

	return
}

// Builtin returns the boards embedded in the package.
func Builtin() []*Board {
	return builtin
}

// Find returns the board called name. Later boards override earlier ones of
// the same name.
func Find(boards []*Board, name string) (b *Board, err error) {
	for _, candidate := range boards {
		if strings.EqualFold(candidate.Name, name) {
			b = candidate
		}
	}
	if b == nil {
		err = fmt.Errorf("%w: %q", ErrBoardUnknown, name)
	}
	return
}

// Lookup finds a built-in board.
func Lookup(name string) (*Board, error) {
	return Find(builtin, name)
}

// StackTop is the initial stack pointer: the end of SRAM.
func (b *Board) StackTop() uint32 {
	return b.SRAM.End()
}

// Port returns the port called name.
func (b *Board) Port(name string) (port *Port, err error) {
	for n := range b.Ports {
		if strings.EqualFold(b.Ports[n].Name, name) {
			port = &b.Ports[n]
			return
		}
	}
	err = &ErrBoard{Name: b.Name, Err: fmt.Errorf("%w: %q", ErrPortUnknown, name)}
	return
}

// NewRCC returns the reset and clock controller on bus.
func (b *Board) NewRCC(bus mmio.Bus) *periph.RCC {
	return periph.NewRCC(bus, b.RCC)
}

// NewGPIO returns the port called name on bus.
func (b *Board) NewGPIO(bus mmio.Bus, name string) (gpio *periph.GPIO, err error) {
	port, err := b.Port(name)
	if err != nil {
		return
	}
	gpio = periph.NewGPIO(bus, port.Base, b.Layout)
	return
}

// Pin returns the referenced pin on bus, and the clock gate of its port.
func (b *Board) Pin(bus mmio.Bus, ref PinRef) (pin periph.Pin, gate periph.ClockGate, err error) {
	port, err := b.Port(ref.Port)
	if err != nil {
		return
	}
	pin, err = periph.NewGPIO(bus, port.Base, b.Layout).Pin(ref.Pin)
	if err != nil {
		return
	}
	gate = port.Clock
	return
}

// Defines yields the file equates, then the values derived from the board.
func (b *Board) Defines() iter.Seq2[string, uint32] {
	derived := map[string]uint32{
		"FLASH_SIZE": b.Flash.Size,
		"SRAM_SIZE":  b.SRAM.Size,
		"STACK_TOP":  b.StackTop(),
	}
	keys := []string{"FLASH_SIZE", "SRAM_SIZE", "STACK_TOP"}
	for _, port := range b.Ports {
		key := "GPIO" + port.Name + "_BASE"
		derived[key] = port.Base
		keys = append(keys, key)
	}

	var equates iter.Seq2[string, uint32] = func(yield func(string, uint32) bool) {}
	if b.equates != nil {
		equates = b.equates.All()
	}

	return internal.Concat2(equates, internal.Sorted2(derived, keys))
}

func init() {
	var err error
	builtin, err = Parse(rawBoards)
	if err != nil {
		panic(err)
	}
}
