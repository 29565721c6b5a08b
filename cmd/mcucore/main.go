// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

// mcucore builds the firmware programs into flash images, and runs them on
// the board emulator.
package main

import (
	"log"

	"github.com/spf13/cobra"
)

var (
	rootOpts = struct {
		board   string
		verbose bool
	}{}

	rootCmd = &cobra.Command{
		Use:   "mcucore",
		Short: "Cortex-M runtime core and board emulator",
		Long:  "Build firmware programs into flash images, and run them on an emulated board.",
	}
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&rootOpts.board, "board", "b", "", "Board to use. Default: the board of the program")
	rootCmd.PersistentFlags().BoolVarP(&rootOpts.verbose, "verbose", "v", false, "Verbose mode")

	rootCmd.AddCommand(boardsCmd, programsCmd, imageCmd, runCmd, traceCmd, monitorCmd, debugCmd)
}

func main() {
	log.SetFlags(0)
	if err := rootCmd.Execute(); err != nil {
		log.Fatal(err)
	}
}
