package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jroimartin/gocui"
	"github.com/spf13/cobra"

	"github.com/ezrec/mcucore/emulator"
)

const (
	MONITOR_EVENTS = 256 // Events kept for the event view.
)

var (
	monitorOpts = struct {
		cycles uint64
		period time.Duration
	}{}

	monitorCmd = &cobra.Command{
		Use:   "monitor <program>",
		Short: "Watch a program run",
		Long:  "Run a program on the emulator, showing the core state, pin levels and recent events. Keys: space pause, s step, r reset, q quit.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			s, err := newSession(args[0])
			if err != nil {
				return
			}
			defer s.Close()

			g, err := gocui.NewGui(gocui.OutputNormal)
			if err != nil {
				return
			}
			defer g.Close()

			m := &monitor{session: s, rec: &emulator.Recorder{Limit: MONITOR_EVENTS}}
			s.emu.Tracer = m.rec

			g.SetManagerFunc(m.layout)
			err = m.bind(g)
			if err != nil {
				return
			}

			done := make(chan struct{})
			defer close(done)
			go m.clock(g, done)

			err = g.MainLoop()
			if errors.Is(err, gocui.ErrQuit) {
				err = nil
			}
			if err == nil {
				err = m.err
			}
			return
		},
	}
)

func init() {
	monitorCmd.Flags().Uint64VarP(&monitorOpts.cycles, "cycles", "c", emulator.STEP_CYCLES, "Cycles per frame")
	monitorCmd.Flags().DurationVarP(&monitorOpts.period, "period", "p", 100*time.Millisecond, "Frame period")
}

// monitor owns the emulator; it is only touched from the gui goroutine.
type monitor struct {
	*session
	rec    *emulator.Recorder
	paused bool
	err    error
}

// clock requests a frame every period.
func (m *monitor) clock(g *gocui.Gui, done chan struct{}) {
	ticker := time.NewTicker(monitorOpts.period)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			g.Update(func(g *gocui.Gui) error {
				if !m.paused {
					if err := m.step(monitorOpts.cycles); err != nil {
						return err
					}
				}
				return m.draw(g)
			})
		}
	}
}

func (m *monitor) step(cycles uint64) (err error) {
	if m.emu.Done() {
		return
	}
	err = m.emu.Step(context.Background(), cycles)
	if err != nil {
		m.err = err
		err = gocui.ErrQuit
	}
	return
}

func (m *monitor) bind(g *gocui.Gui) (err error) {
	bindings := []struct {
		key     any
		handler func(g *gocui.Gui, v *gocui.View) error
	}{
		{gocui.KeyCtrlC, quit},
		{'q', quit},
		{gocui.KeySpace, func(g *gocui.Gui, v *gocui.View) error {
			m.paused = !m.paused
			return m.draw(g)
		}},
		{'s', func(g *gocui.Gui, v *gocui.View) error {
			if err := m.step(1); err != nil {
				return err
			}
			return m.draw(g)
		}},
		{'r', func(g *gocui.Gui, v *gocui.View) error {
			m.rec.Reset()
			if err := m.emu.Reset(); err != nil {
				m.err = err
				return gocui.ErrQuit
			}
			return m.draw(g)
		}},
	}

	for _, binding := range bindings {
		err = g.SetKeybinding("", binding.key, gocui.ModNone, binding.handler)
		if err != nil {
			return
		}
	}
	return
}

func quit(g *gocui.Gui, v *gocui.View) error {
	return gocui.ErrQuit
}

func (m *monitor) layout(g *gocui.Gui) error {
	maxX, maxY := g.Size()
	pinRows := len(m.board.Ports) + 2

	if v, err := g.SetView("state", 0, 0, maxX-1, 3); err != nil {
		if err != gocui.ErrUnknownView {
			return err
		}
		v.Title = "Core"
	}

	if v, err := g.SetView("pins", 0, 4, maxX-1, 4+pinRows); err != nil {
		if err != gocui.ErrUnknownView {
			return err
		}
		v.Title = "Pins"
	}

	if v, err := g.SetView("events", 0, 5+pinRows, maxX-1, maxY-1); err != nil {
		if err != gocui.ErrUnknownView {
			return err
		}
		v.Title = "Events"
		v.Autoscroll = true
	}

	return nil
}

func (m *monitor) draw(g *gocui.Gui) (err error) {
	v, err := g.View("state")
	if err != nil {
		return
	}
	v.Clear()
	m.reportState(v, false)
	m.reportFault(v)
	if m.paused {
		fmt.Fprintln(v, "paused")
	}

	v, err = g.View("pins")
	if err != nil {
		return
	}
	v.Clear()
	m.reportPins(v, false)

	v, err = g.View("events")
	if err != nil {
		return
	}
	v.Clear()
	for _, ev := range m.rec.Events {
		fmt.Fprintln(v, ev)
	}
	return
}
