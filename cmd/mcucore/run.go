package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/ezrec/mcucore/emulator"
	"github.com/ezrec/mcucore/trace"
)

var (
	runOpts = struct {
		cycles uint64
		trace  string
	}{}

	runCmd = &cobra.Command{
		Use:   "run <program>",
		Short: "Run a program on the emulator",
		Long:  "Run a program until it halts, locks up, or reaches the cycle limit; then report the core and pins.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			s, err := newSession(args[0])
			if err != nil {
				return
			}
			defer s.Close()

			emu := s.emu
			emu.MaxCycles = runOpts.cycles

			if len(runOpts.trace) != 0 {
				var file *os.File
				file, err = os.Create(runOpts.trace)
				if err != nil {
					return
				}
				var w *trace.Writer
				w, err = trace.NewWriter(file, s.board.Name, s.prog.Name)
				if err != nil {
					file.Close()
					return
				}
				defer func() {
					cerr := w.Close()
					if err == nil {
						err = cerr
					}
				}()
				emu.Tracer = w
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
			defer stop()

			err = emu.Run(ctx)
			if errors.Is(err, emulator.ErrCycleLimit) || errors.Is(err, context.Canceled) {
				if rootOpts.verbose {
					fmt.Fprintln(cmd.ErrOrStderr(), err)
				}
				err = nil
			}
			if err != nil {
				return
			}

			out := cmd.OutOrStdout()
			plain := plainOutput()
			s.reportState(out, plain)
			s.reportFault(out)
			s.reportPins(out, plain)
			return
		},
	}
)

func init() {
	runCmd.Flags().Uint64VarP(&runOpts.cycles, "cycles", "c", 1_000_000, "Cycle limit. Zero is unlimited")
	runCmd.Flags().StringVarP(&runOpts.trace, "trace", "t", "", "Write the event trace to this file")
}
