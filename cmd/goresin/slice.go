package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/philipparndt/goresin/pkg/config"
	"github.com/philipparndt/goresin/pkg/slicer"
	"github.com/philipparndt/goresin/pkg/slicer/gpu"
	"github.com/spf13/cobra"
)

var (
	sliceLayerHeight float64
	sliceFirstLayer  float64
	sliceUseGPU      bool
	sliceWorkers     int
	sliceConfigFile  string
	sliceVerbose     bool
)

var sliceCmd = &cobra.Command{
	Use:   "slice [file]",
	Short: "Slice a mesh into layer contours",
	Long: `Slice a mesh into horizontal layers and report the contours found in
each layer. Layers with stitching problems are reported individually without
failing the whole pass.`,
	Args: cobra.ExactArgs(1),
	Run:  runSlice,
}

func init() {
	rootCmd.AddCommand(sliceCmd)

	sliceCmd.Flags().Float64Var(&sliceLayerHeight, "layer-height", 0, "layer height in units (overrides config)")
	sliceCmd.Flags().Float64Var(&sliceFirstLayer, "first-layer-height", 0, "first layer height in units (overrides config)")
	sliceCmd.Flags().BoolVar(&sliceUseGPU, "gpu", false, "extract segments with the compute dispatch path")
	sliceCmd.Flags().IntVar(&sliceWorkers, "workers", 0, "worker goroutines for the CPU path (0 = one per CPU)")
	sliceCmd.Flags().StringVar(&sliceConfigFile, "config", "", "settings file (TOML)")
	sliceCmd.Flags().BoolVarP(&sliceVerbose, "verbose", "v", false, "print per-layer contour details")
}

func runSlice(cmd *cobra.Command, args []string) {
	filename := args[0]

	settings := loadSettings(sliceConfigFile)
	if sliceLayerHeight > 0 {
		settings.Slicing.LayerHeight = sliceLayerHeight
	}
	if sliceFirstLayer > 0 {
		settings.Slicing.FirstLayerHeight = sliceFirstLayer
	}
	if sliceWorkers > 0 {
		settings.Slicing.Workers = sliceWorkers
	}
	if sliceUseGPU {
		settings.Slicing.UseGPU = true
	}

	m, err := loadMesh(filename)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading model: %v\n", err)
		os.Exit(1)
	}

	s := slicer.New()
	if settings.Slicing.UseGPU {
		extractor := gpu.NewDefault()
		defer extractor.Destroy()
		s.Extractor = extractor
	} else if settings.Slicing.Workers > 0 {
		s.Extractor = &slicer.CPUExtractor{Workers: settings.Slicing.Workers}
	}

	cfg := slicer.LayerConfig{
		LayerHeight:      settings.Slicing.LayerHeight,
		FirstLayerHeight: settings.Slicing.FirstLayerHeight,
	}
	planes, err := slicer.PlanesForBounds(m.Bounds(), cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error building plane set: %v\n", err)
		os.Exit(1)
	}

	result, err := s.Slice(context.Background(), m, planes)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error slicing: %v\n", err)
		os.Exit(1)
	}

	printSliceResult(filename, m.Name(), result)
}

func printSliceResult(filename, name string, result *slicer.Result) {
	fmt.Println("Slice Result")
	fmt.Println("============")
	if name != "" {
		fmt.Printf("Name: %s\n", name)
	}
	fmt.Printf("File: %s\n\n", filename)

	fmt.Printf("Layers: %d\n", len(result.Layers))
	fmt.Printf("Contours: %d\n", result.ContourCount())
	if len(result.Excluded) > 0 {
		fmt.Printf("Excluded triangles: %d\n", len(result.Excluded))
	}

	failed := result.FailedLayers()
	if len(failed) > 0 {
		fmt.Printf("Failed layers: %d\n", len(failed))
		for _, layer := range failed {
			fmt.Printf("  layer %d (z=%.4f): %v\n", layer.Index, layer.Z, layer.Err)
		}
	}

	if sliceVerbose {
		fmt.Println("\nLayers:")
		for _, layer := range result.Layers {
			if layer.Err != nil && errors.Is(layer.Err, slicer.ErrContourUnclosed) {
				fmt.Printf("  %4d z=%.4f  UNCLOSED (%v)\n", layer.Index, layer.Z, layer.Err)
				continue
			}
			holes := 0
			for _, c := range layer.Contours {
				if c.Hole {
					holes++
				}
			}
			fmt.Printf("  %4d z=%.4f  contours=%d holes=%d\n",
				layer.Index, layer.Z, len(layer.Contours), holes)
		}
	}
}

// loadSettings resolves the settings file chain for the CLI
func loadSettings(explicit string) *config.Settings {
	if explicit != "" {
		s, err := config.LoadFile(explicit)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}
		return s
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return config.Default()
	}
	return config.Load(
		home+"/.config/goresin/settings.toml",
		home+"/.config/goresin/default_settings.toml",
	)
}
