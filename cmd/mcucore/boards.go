package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ezrec/mcucore/firmware"
)

var (
	boardsOpts = struct {
		defines bool
	}{}

	boardsCmd = &cobra.Command{
		Use:   "boards",
		Short: "List the boards",
		Long:  "List the built-in boards, and the boards of boards.yaml in the configuration folders.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			boards, err := loadBoards()
			if err != nil {
				return
			}
			out := cmd.OutOrStdout()
			for _, b := range boards {
				fmt.Fprintf(out, "%-20v %-12v flash=%#08x+%#x sram=%#08x+%#x %v\n",
					b.Name, b.Chip, b.Flash.Base, b.Flash.Size, b.SRAM.Base, b.SRAM.Size, b.Description)
				if !boardsOpts.defines {
					continue
				}
				for name, value := range b.Defines() {
					fmt.Fprintf(out, "    %-20v %#08x\n", name, value)
				}
			}
			return
		},
	}

	programsCmd = &cobra.Command{
		Use:   "programs",
		Short: "List the firmware programs",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			for name, prog := range firmware.All() {
				fmt.Fprintf(out, "%-8v %-20v %v\n", name, prog.Board, prog.Description)
			}
		},
	}
)

func init() {
	boardsCmd.Flags().BoolVarP(&boardsOpts.defines, "defines", "d", false, "Show the board defines")
}
