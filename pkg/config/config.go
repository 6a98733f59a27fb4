// Package config loads slicer settings from TOML files with a fallback
// chain: the user settings file, then the default settings file, then
// hardcoded defaults.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// GeneralSettings configures behavior not tied to a specific printer
type GeneralSettings struct {
	AutoReload bool `toml:"auto_reload"`
	Verbose    bool `toml:"verbose"`
}

// PrinterSettings describes the build volume in millimeters
type PrinterSettings struct {
	BedWidth  float64 `toml:"bed_width"`
	BedDepth  float64 `toml:"bed_depth"`
	BedHeight float64 `toml:"bed_height"`
}

// SlicingSettings configures the slicing pass
type SlicingSettings struct {
	LayerHeight      float64 `toml:"layer_height"`
	FirstLayerHeight float64 `toml:"first_layer_height"`
	UseGPU           bool    `toml:"use_gpu"`
	Workers          int     `toml:"workers"` // 0 means one per CPU
}

// Settings is the full configuration tree
type Settings struct {
	General GeneralSettings `toml:"general"`
	Printer PrinterSettings `toml:"printer"`
	Slicing SlicingSettings `toml:"slicing"`
}

// Default returns the hardcoded settings used when no file is available
func Default() *Settings {
	return &Settings{
		General: GeneralSettings{
			AutoReload: true,
		},
		Printer: PrinterSettings{
			BedWidth:  218.88,
			BedDepth:  122.88,
			BedHeight: 250.0,
		},
		Slicing: SlicingSettings{
			LayerHeight:      0.05,
			FirstLayerHeight: 0.05,
		},
	}
}

// LoadFile reads settings from a single TOML file
func LoadFile(path string) (*Settings, error) {
	s := Default()
	if _, err := toml.DecodeFile(path, s); err != nil {
		return nil, fmt.Errorf("config: failed to load %s: %w", path, err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Load resolves settings through the fallback chain: the user file if it
// exists and parses, otherwise the default file, otherwise hardcoded
// defaults. It never fails; a missing or broken file just falls through.
func Load(userPath, defaultPath string) *Settings {
	for _, path := range []string{userPath, defaultPath} {
		if path == "" {
			continue
		}
		if _, err := os.Stat(path); err != nil {
			continue
		}
		s, err := LoadFile(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "config: %v, falling back\n", err)
			continue
		}
		return s
	}
	return Default()
}

// Save writes the settings to a TOML file, creating parent directories as
// needed.
func (s *Settings) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("config: failed to create settings directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("config: failed to create %s: %w", path, err)
	}
	defer f.Close()
	if err := toml.NewEncoder(f).Encode(s); err != nil {
		return fmt.Errorf("config: failed to encode settings: %w", err)
	}
	return nil
}

// Validate rejects settings the slicer cannot work with
func (s *Settings) Validate() error {
	if s.Slicing.LayerHeight <= 0 {
		return fmt.Errorf("config: layer_height must be positive, got %g", s.Slicing.LayerHeight)
	}
	if s.Slicing.FirstLayerHeight < 0 {
		return fmt.Errorf("config: first_layer_height must not be negative, got %g", s.Slicing.FirstLayerHeight)
	}
	if s.Slicing.Workers < 0 {
		return fmt.Errorf("config: workers must not be negative, got %d", s.Slicing.Workers)
	}
	return nil
}
