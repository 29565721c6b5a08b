package main

import (
	"encoding/hex"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ezrec/mcucore/cortexm"
)

var imageCmd = &cobra.Command{
	Use:   "image <program>",
	Short: "Show the flash image of a program",
	Long:  "Link a program for its board, then dump the vector area and the placed handlers.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		s, err := newSession(args[0])
		if err != nil {
			return
		}
		defer s.Close()

		img := s.img
		data, err := img.MarshalBinary()
		if err != nil {
			return
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%v on %v, flash at %#08x\n", s.prog.Name, s.board.Name, img.Base)
		dumper := hex.Dumper(out)
		dumper.Write(data)
		dumper.Close()

		fmt.Fprintf(out, "%-12v %#08x\n", cortexm.SECTION_STACK, img.Stack)
		fmt.Fprintf(out, "%-12v %#08x\n", cortexm.SECTION_RESET, img.Reset)
		for e := range cortexm.VECTOR_COUNT {
			exc := cortexm.Exception(e)
			if exc.Reserved() {
				continue
			}
			fmt.Fprintf(out, "%-12v %#08x\n", exc, img.Vector(exc))
		}
		for addr, name := range img.Symbols() {
			fmt.Fprintf(out, "%#08x %v\n", addr, name)
		}
		return
	},
}
