// Package main is the entry point for the vtt-api server
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "vtt-api",
	Short: "Virtual tabletop session backend",
	Long:  `vtt-api serves games, actors, combat resolution, spellcasting, and realtime updates over HTTP and websockets.`,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(serverCmd)
}
