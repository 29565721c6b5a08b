package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"maps"
	"slices"
	"strconv"
	"strings"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"

	"github.com/ezrec/mcucore/cortexm"
	"github.com/ezrec/mcucore/emulator"
)

// DEBUG_RUN_CYCLES is the default cycle limit of the run command.
const DEBUG_RUN_CYCLES = 1_000_000

var debugCmd = &cobra.Command{
	Use:   "debug <program>",
	Short: "Debug a program interactively",
	Long:  "Run a program under an interactive debugger. Type 'help' for the commands.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		s, err := newSession(args[0])
		if err != nil {
			return
		}
		defer s.Close()

		rl, err := readline.NewEx(&readline.Config{
			InterruptPrompt: "^C",
			EOFPrompt:       "quit",
			HistoryFile:     historyPath(),
		})
		if err != nil {
			return
		}
		defer rl.Close()

		d := newDebugger(s)
		out := rl.Stderr()
		for {
			rl.SetPrompt(fmt.Sprintf("(%v %d) ", s.emu.State(), s.emu.Cycles()))
			line, rerr := rl.Readline()
			if rerr == readline.ErrInterrupt {
				continue
			}
			if rerr == io.EOF {
				return
			}
			if rerr != nil {
				err = rerr
				return
			}

			quit, xerr := d.exec(line, out)
			if xerr != nil {
				fmt.Fprintln(out, xerr)
			}
			if quit {
				return
			}
		}
	},
}

// debugger runs commands against a session.
type debugger struct {
	*session
	rec         *emulator.Recorder
	breakpoints int
	plain       bool
}

type debugCommand struct {
	usage string
	help  string
	run   func(d *debugger, args []string, out io.Writer) error
}

var debugCommands map[string]*debugCommand

func init() {
	debugCommands = map[string]*debugCommand{
		"step":   {"step [N]", "execute N instructions (1)", (*debugger).step},
		"run":    {"run [N]", "execute until the core can make no progress, or N cycles pass", (*debugger).run},
		"pend":   {"pend <exception>", "request an exception", (*debugger).pend},
		"input":  {"input <port><pin> <0|1>", "drive an external pin level", (*debugger).input},
		"pins":   {"pins", "show the output pins", (*debugger).pins},
		"regs":   {"regs", "show the system control registers", (*debugger).regs},
		"state":  {"state", "show the core state", (*debugger).state},
		"events": {"events [N]", "show the last N events (10)", (*debugger).events},
		"peek":   {"peek <addr>", "read a word", (*debugger).peek},
		"poke":   {"poke <addr> <value>", "write a word", (*debugger).poke},
		"reset":  {"reset", "reset the core", (*debugger).reset},
		"help":   {"help", "list the commands", (*debugger).help},
	}
}

func newDebugger(s *session) (d *debugger) {
	d = &debugger{
		session: s,
		rec:     &emulator.Recorder{Limit: MONITOR_EVENTS},
		plain:   plainOutput(),
	}
	s.emu.Tracer = d.rec
	s.emu.OnBreakpoint = func(emu *emulator.Emulator) {
		d.breakpoints++
	}
	return
}

// exec runs one command line.
func (d *debugger) exec(line string, out io.Writer) (quit bool, err error) {
	words := strings.Fields(line)
	if len(words) == 0 {
		return
	}
	name := strings.ToLower(words[0])
	switch name {
	case "quit", "exit", "q":
		quit = true
		return
	}

	cmd, ok := debugCommands[name]
	if !ok {
		err = fmt.Errorf("%w: %q", ErrCommandUnknown, words[0])
		return
	}
	err = cmd.run(d, words[1:], out)
	if errors.Is(err, ErrCommandUsage) {
		err = fmt.Errorf("%w: %v", ErrCommandUsage, cmd.usage)
	}
	return
}

func parseWord(arg string) (value uint32, err error) {
	v, err := strconv.ParseUint(arg, 0, 32)
	if err != nil {
		err = ErrCommandUsage
		return
	}
	value = uint32(v)
	return
}

// advance steps up to cycles instructions, in slices.
func (d *debugger) advance(cycles uint64, out io.Writer) (err error) {
	breakpoints := d.breakpoints
	for end := d.emu.Cycles() + cycles; !d.emu.Done() && d.emu.Cycles() < end; {
		before := d.emu.Cycles()
		err = d.emu.Step(context.Background(), min(emulator.STEP_CYCLES, end-before))
		if err != nil {
			return
		}
		if d.emu.Cycles() == before {
			break
		}
	}
	if d.breakpoints != breakpoints {
		fmt.Fprintln(out, color("breakpoint", "yellow+b", d.plain))
	}
	d.reportState(out, d.plain)
	return
}

func (d *debugger) step(args []string, out io.Writer) (err error) {
	cycles := uint64(1)
	switch len(args) {
	case 0:
	case 1:
		cycles, err = strconv.ParseUint(args[0], 0, 64)
		if err != nil || cycles == 0 {
			return ErrCommandUsage
		}
	default:
		return ErrCommandUsage
	}
	return d.advance(cycles, out)
}

func (d *debugger) run(args []string, out io.Writer) (err error) {
	limit := uint64(DEBUG_RUN_CYCLES)
	switch len(args) {
	case 0:
	case 1:
		limit, err = strconv.ParseUint(args[0], 0, 64)
		if err != nil || limit == 0 {
			return ErrCommandUsage
		}
	default:
		return ErrCommandUsage
	}

	return d.advance(limit, out)
}

func (d *debugger) pend(args []string, out io.Writer) (err error) {
	if len(args) != 1 {
		return ErrCommandUsage
	}
	e, err := cortexm.ParseException(args[0])
	if err != nil {
		return
	}
	return d.emu.Pend(e)
}

func (d *debugger) input(args []string, out io.Writer) (err error) {
	if len(args) != 2 || len(args[0]) < 2 {
		return ErrCommandUsage
	}
	ref := strings.ToUpper(args[0])
	if len(ref) > 2 && ref[0] == 'P' {
		ref = ref[1:]
	}
	port := ref[:1]
	pin, err := strconv.ParseUint(ref[1:], 10, 8)
	if err != nil {
		return ErrCommandUsage
	}
	var high bool
	switch args[1] {
	case "0", "low":
	case "1", "high":
		high = true
	default:
		return ErrCommandUsage
	}
	return d.emu.SetInput(port, uint(pin), high)
}

func (d *debugger) pins(args []string, out io.Writer) error {
	d.reportPins(out, d.plain)
	return nil
}

var scbRegisters = []struct {
	name   string
	offset uint32
}{
	{"CPUID", emulator.SCB_CPUID},
	{"ICSR", emulator.SCB_ICSR},
	{"CFSR", emulator.SCB_CFSR},
	{"HFSR", emulator.SCB_HFSR},
	{"BFAR", emulator.SCB_BFAR},
}

func (d *debugger) regs(args []string, out io.Writer) (err error) {
	for _, reg := range scbRegisters {
		var value uint32
		value, err = d.emu.Peek(emulator.SCB_BASE + reg.offset)
		if err != nil {
			return
		}
		fmt.Fprintf(out, "%-6v %#08x\n", reg.name, value)
	}
	return
}

func (d *debugger) state(args []string, out io.Writer) error {
	d.reportState(out, d.plain)
	d.reportFault(out)
	return nil
}

func (d *debugger) events(args []string, out io.Writer) (err error) {
	n := 10
	if len(args) == 1 {
		n, err = strconv.Atoi(args[0])
		if err != nil || n <= 0 {
			return ErrCommandUsage
		}
	} else if len(args) > 1 {
		return ErrCommandUsage
	}
	events := d.rec.Events
	if len(events) > n {
		events = events[len(events)-n:]
	}
	for _, ev := range events {
		fmt.Fprintln(out, ev)
	}
	return
}

func (d *debugger) peek(args []string, out io.Writer) (err error) {
	if len(args) != 1 {
		return ErrCommandUsage
	}
	addr, err := parseWord(args[0])
	if err != nil {
		return
	}
	value, err := d.emu.Peek(addr)
	if err != nil {
		return
	}
	fmt.Fprintf(out, "%#08x: %#08x\n", addr, value)
	return
}

func (d *debugger) poke(args []string, out io.Writer) (err error) {
	if len(args) != 2 {
		return ErrCommandUsage
	}
	addr, err := parseWord(args[0])
	if err != nil {
		return
	}
	value, err := parseWord(args[1])
	if err != nil {
		return
	}
	return d.emu.Poke(addr, value)
}

func (d *debugger) reset(args []string, out io.Writer) (err error) {
	d.rec.Reset()
	d.breakpoints = 0
	err = d.emu.Reset()
	if err != nil {
		return
	}
	d.reportState(out, d.plain)
	return
}

func (d *debugger) help(args []string, out io.Writer) error {
	for _, name := range slices.Sorted(maps.Keys(debugCommands)) {
		cmd := debugCommands[name]
		fmt.Fprintf(out, "%-26v %v\n", cmd.usage, cmd.help)
	}
	fmt.Fprintf(out, "%-26v %v\n", "quit", "leave the debugger")
	return nil
}
