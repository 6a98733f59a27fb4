package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/philipparndt/goresin/pkg/scene"
	"github.com/philipparndt/goresin/pkg/slicer"
	"github.com/philipparndt/goresin/pkg/watcher"
	"github.com/spf13/cobra"
)

var (
	watchLayerHeight float64
	watchConfigFile  string
)

var watchCmd = &cobra.Command{
	Use:   "watch [files...]",
	Short: "Watch model files and re-slice on change",
	Long: `Watch one or more model files and run a slicing pass whenever a file
changes on disk. Results are cached per body; only changed bodies are
re-sliced.`,
	Args: cobra.MinimumNArgs(1),
	Run:  runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)

	watchCmd.Flags().Float64Var(&watchLayerHeight, "layer-height", 0, "layer height in units (overrides config)")
	watchCmd.Flags().StringVar(&watchConfigFile, "config", "", "settings file (TOML)")
}

func runWatch(cmd *cobra.Command, args []string) {
	settings := loadSettings(watchConfigFile)
	if watchLayerHeight > 0 {
		settings.Slicing.LayerHeight = watchLayerHeight
	}
	cfg := slicer.LayerConfig{
		LayerHeight:      settings.Slicing.LayerHeight,
		FirstLayerHeight: settings.Slicing.FirstLayerHeight,
	}

	store := scene.NewStore()
	s := slicer.New()

	// Bodies are named by absolute path, the same form the watcher reports
	// changes under, so reloads find them regardless of how the paths were
	// given on the command line.
	paths := make([]string, len(args))
	for i, arg := range args {
		path, err := filepath.Abs(arg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error resolving %s: %v\n", arg, err)
			os.Exit(1)
		}
		m, err := loadMesh(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading model: %v\n", err)
			os.Exit(1)
		}
		store.Add(path, m)
		paths[i] = path
	}

	mw, err := watcher.NewModelWatcher(300 * time.Millisecond)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating watcher: %v\n", err)
		os.Exit(1)
	}
	defer mw.Close()

	reload := func(path string) {
		bodies := store.InvalidateByName(path)
		if len(bodies) == 0 {
			return
		}
		m, err := loadMesh(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Reload failed for %s: %v\n", path, err)
			return
		}
		for _, body := range bodies {
			body.SetMesh(m)
		}
		fmt.Printf("Reloaded %s, re-slicing...\n", path)
		sliceAll(store, s, cfg)
	}

	for _, path := range paths {
		if err := mw.Watch(path, reload); err != nil {
			fmt.Fprintf(os.Stderr, "Error watching %s: %v\n", path, err)
			os.Exit(1)
		}
	}
	mw.Start()

	sliceAll(store, s, cfg)
	fmt.Println("Watching for changes (Ctrl+C to stop)...")

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	<-sig
}

func sliceAll(store *scene.Store, s *slicer.Slicer, cfg slicer.LayerConfig) {
	results, err := store.SliceAll(context.Background(), s, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Slicing failed: %v\n", err)
		return
	}
	for _, body := range store.Bodies() {
		result, ok := results[body.ID()]
		if !ok {
			continue
		}
		fmt.Printf("  %s: %d layers, %d contours", body.Name(), len(result.Layers), result.ContourCount())
		if failed := result.FailedLayers(); len(failed) > 0 {
			fmt.Printf(", %d failed layers", len(failed))
		}
		fmt.Println()
	}
}
