package main

import (
	"fmt"
	"os"

	"github.com/philipparndt/goresin/pkg/analysis"
	"github.com/spf13/cobra"
)

var islandsCmd = &cobra.Command{
	Use:   "islands [file]",
	Short: "Detect disconnected parts of a mesh",
	Long: `Partition the mesh's vertices into connected components. A mesh with
more than one component contains parts that are not physically connected,
which usually means they will detach during printing.`,
	Args: cobra.ExactArgs(1),
	Run:  runIslands,
}

func init() {
	rootCmd.AddCommand(islandsCmd)
}

func runIslands(cmd *cobra.Command, args []string) {
	filename := args[0]

	m, err := loadMesh(filename)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading model: %v\n", err)
		os.Exit(1)
	}

	islands := analysis.Islands(m)

	fmt.Println("Connectivity Analysis")
	fmt.Println("=====================")
	fmt.Printf("File: %s\n\n", filename)

	fmt.Printf("Vertices: %d\n", m.VertexCount())
	fmt.Printf("Triangles: %d\n", m.TriangleCount())
	fmt.Printf("Islands: %d\n", len(islands))

	if err := analysis.CheckConnected(m); err != nil {
		fmt.Printf("\nWarning: %v\n", err)
	}

	fmt.Println("\nIslands:")
	for i, island := range islands {
		fmt.Printf("  %3d: %d vertices, %d triangles\n",
			i, len(island.Vertices), len(island.Triangles))
	}
}
