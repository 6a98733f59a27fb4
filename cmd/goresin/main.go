package main

import (
	"fmt"
	"os"

	"github.com/philipparndt/goresin/version"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "goresin",
	Short: "A CLI tool for slicing triangle meshes into printable layers",
	Long: `goresin slices triangle meshes (STL and glTF) into stacks of 2D layer
contours for resin printing. It also provides mesh diagnostics such as
measurements and connectivity analysis.`,
	Version: version.GetFullVersion(),
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
