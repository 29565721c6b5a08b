package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/mgutz/ansi"
	"github.com/shibukawa/configdir"

	"github.com/ezrec/mcucore/board"
	"github.com/ezrec/mcucore/cortexm"
	"github.com/ezrec/mcucore/emulator"
	"github.com/ezrec/mcucore/firmware"
	"github.com/ezrec/mcucore/link"
	"github.com/ezrec/mcucore/periph"
)

const (
	CONFIG_VENDOR = "ezrec"
	CONFIG_APP    = "mcucore"
	BOARDS_FILE   = "boards.yaml"
	HISTORY_FILE  = "history"
)

// loadBoards returns the built-in boards, followed by the boards of every
// boards.yaml in the configuration folders.
func loadBoards() (boards []*board.Board, err error) {
	boards = append(boards, board.Builtin()...)

	configDirs := configdir.New(CONFIG_VENDOR, CONFIG_APP)
	folders := configDirs.QueryFolders(configdir.All)
	// Local folders come first; load them last so they override.
	for n := len(folders) - 1; n >= 0; n-- {
		folder := folders[n]
		if !folder.Exists(BOARDS_FILE) {
			continue
		}
		var data []byte
		data, err = folder.ReadFile(BOARDS_FILE)
		if err != nil {
			return
		}
		var more []*board.Board
		more, err = board.Parse(data)
		if err != nil {
			err = fmt.Errorf("%v: %w", filepath.Join(folder.Path, BOARDS_FILE), err)
			return
		}
		boards = append(boards, more...)
	}

	return
}

// historyPath is the readline history file, or empty if the cache folder
// cannot be created.
func historyPath() string {
	cacheDir := configdir.New(CONFIG_VENDOR, CONFIG_APP).QueryCacheFolder()
	if err := cacheDir.MkdirAll(); err != nil {
		return ""
	}
	return filepath.Join(cacheDir.Path, HISTORY_FILE)
}

// session is a program linked for a board, loaded into an emulator.
type session struct {
	prog  *firmware.Program
	board *board.Board
	img   *link.Image
	emu   *emulator.Emulator
}

// newSession links the program called name, and resets an emulator with it.
func newSession(name string) (s *session, err error) {
	prog, err := firmware.Lookup(name)
	if err != nil {
		return
	}

	boards, err := loadBoards()
	if err != nil {
		return
	}

	boardName := rootOpts.board
	if len(boardName) == 0 {
		boardName = prog.Board
	}
	b, err := board.Find(boards, boardName)
	if err != nil {
		return
	}

	img, err := prog.Image(b)
	if err != nil {
		return
	}

	emu := emulator.NewEmulator(b)
	emu.Verbose = rootOpts.verbose

	err = emu.Load(img)
	if err == nil {
		err = emu.Reset()
	}
	if err != nil {
		emu.Close()
		return
	}

	s = &session{prog: prog, board: b, img: img, emu: emu}
	return
}

func (s *session) Close() error {
	return s.emu.Close()
}

var stateColor = map[cortexm.State]string{
	cortexm.STATE_RESET:   "cyan",
	cortexm.STATE_RUNNING: "green",
	cortexm.STATE_TRAPPED: "yellow+b",
	cortexm.STATE_LOCKUP:  "red+b",
}

// color wraps s in an ANSI color, unless plain is set.
func color(s string, style string, plain bool) string {
	if plain {
		return s
	}
	return ansi.Color(s, style)
}

// reportState writes the core state, and the active exception if any.
func (s *session) reportState(w io.Writer, plain bool) {
	emu := s.emu
	state := emu.State()
	fmt.Fprintf(w, "%v/%v: %v cycles=%d",
		s.prog.Name, s.board.Name, color(state.String(), stateColor[state], plain), emu.Cycles())
	if emu.Halted() {
		fmt.Fprintf(w, " %v", color("halted", "red", plain))
	}
	if active, ok := emu.Active(); ok {
		fmt.Fprintf(w, " active=%v", active)
	}
	if pending := emu.Pending(); len(pending) != 0 {
		fmt.Fprintf(w, " pending=%v", pending)
	}
	fmt.Fprintln(w)
}

// reportFault writes the fault status registers when a fault was latched.
func (s *session) reportFault(w io.Writer) {
	cfsr, _ := s.emu.Peek(emulator.SCB_BASE + emulator.SCB_CFSR)
	hfsr, _ := s.emu.Peek(emulator.SCB_BASE + emulator.SCB_HFSR)
	if cfsr == 0 && hfsr == 0 {
		return
	}
	fmt.Fprintf(w, "CFSR=%#08x HFSR=%#08x", cfsr, hfsr)
	if cfsr&emulator.CFSR_BFARVALID != 0 {
		bfar, _ := s.emu.Peek(emulator.SCB_BASE + emulator.SCB_BFAR)
		fmt.Fprintf(w, " BFAR=%#08x", bfar)
	}
	fmt.Fprintln(w)
}

// reportPins writes the output level of every pin of every clocked port.
func (s *session) reportPins(w io.Writer, plain bool) {
	if s.board.Layout == nil {
		return
	}
	bus := s.emu.Debug()
	rcc := s.board.NewRCC(bus)
	for _, port := range s.board.Ports {
		if !rcc.ClockEnabled(port.Clock) {
			continue
		}
		gpio, err := s.board.NewGPIO(bus, port.Name)
		if err != nil {
			continue
		}
		fmt.Fprintf(w, "P%v ", port.Name)
		for pin := range uint(periph.PINS_PER_PORT) {
			high, _ := gpio.PinLevel(pin)
			switch {
			case high:
				fmt.Fprint(w, color("1", "green+b", plain))
			default:
				fmt.Fprint(w, "0")
			}
		}
		if s.board.LED.Port == port.Name {
			led := board.PinRef{Port: port.Name, Pin: s.board.LED.Pin}
			high, _ := gpio.PinLevel(led.Pin)
			fmt.Fprintf(w, " LED %v=%v", led, high)
		}
		fmt.Fprintln(w)
	}
}

// plainOutput is set when stdout is not a terminal.
func plainOutput() bool {
	info, err := os.Stdout.Stat()
	if err != nil {
		return true
	}
	return info.Mode()&os.ModeCharDevice == 0
}
