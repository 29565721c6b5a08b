package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/ezrec/mcucore/trace"
)

var traceCmd = &cobra.Command{
	Use:   "trace <file>",
	Short: "Print a trace file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		file, err := os.Open(args[0])
		if err != nil {
			return
		}
		r, err := trace.NewReader(file)
		if err != nil {
			file.Close()
			return
		}
		defer r.Close()

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%v on %v\n", r.Header.Program, r.Header.Board)
		for {
			ev, rerr := r.Next()
			if rerr == io.EOF {
				break
			}
			if rerr != nil {
				err = rerr
				return
			}
			fmt.Fprintln(out, ev)
		}
		return
	},
}
