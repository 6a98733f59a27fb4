package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefault(t *testing.T) {
	s := Default()
	if s.Slicing.LayerHeight != 0.05 {
		t.Errorf("default layer height: expected 0.05, got %v", s.Slicing.LayerHeight)
	}
	if err := s.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "settings.toml")
	content := `
[general]
verbose = true

[slicing]
layer_height = 0.1
first_layer_height = 0.2
workers = 4
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write settings: %v", err)
	}

	s, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}
	if s.Slicing.LayerHeight != 0.1 {
		t.Errorf("layer height: expected 0.1, got %v", s.Slicing.LayerHeight)
	}
	if s.Slicing.Workers != 4 {
		t.Errorf("workers: expected 4, got %d", s.Slicing.Workers)
	}
	if !s.General.Verbose {
		t.Error("verbose should be true")
	}
	// Unset fields keep their defaults.
	if s.Printer.BedHeight != 250.0 {
		t.Errorf("bed height: expected default 250.0, got %v", s.Printer.BedHeight)
	}
}

func TestLoadFileInvalid(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "settings.toml")
	if err := os.WriteFile(path, []byte("[slicing]\nlayer_height = -1.0\n"), 0o644); err != nil {
		t.Fatalf("write settings: %v", err)
	}

	if _, err := LoadFile(path); err == nil {
		t.Error("negative layer height should fail validation")
	}
}

func TestLoadFallbackChain(t *testing.T) {
	dir := t.TempDir()
	defaultPath := filepath.Join(dir, "default_settings.toml")
	if err := os.WriteFile(defaultPath, []byte("[slicing]\nlayer_height = 0.08\n"), 0o644); err != nil {
		t.Fatalf("write defaults: %v", err)
	}

	// User file missing: the default file wins.
	s := Load(filepath.Join(dir, "missing.toml"), defaultPath)
	if s.Slicing.LayerHeight != 0.08 {
		t.Errorf("expected default file value 0.08, got %v", s.Slicing.LayerHeight)
	}

	// Both missing: hardcoded defaults.
	s = Load(filepath.Join(dir, "missing.toml"), filepath.Join(dir, "also-missing.toml"))
	if s.Slicing.LayerHeight != 0.05 {
		t.Errorf("expected hardcoded default 0.05, got %v", s.Slicing.LayerHeight)
	}

	// Broken user file falls through to the default file.
	userPath := filepath.Join(dir, "user.toml")
	if err := os.WriteFile(userPath, []byte("not toml {{{"), 0o644); err != nil {
		t.Fatalf("write broken user file: %v", err)
	}
	s = Load(userPath, defaultPath)
	if s.Slicing.LayerHeight != 0.08 {
		t.Errorf("expected fallback to default file, got %v", s.Slicing.LayerHeight)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "settings.toml")

	s := Default()
	s.Slicing.LayerHeight = 0.123
	if err := s.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}
	if loaded.Slicing.LayerHeight != 0.123 {
		t.Errorf("round trip lost layer height: got %v", loaded.Slicing.LayerHeight)
	}
}

func TestValidate(t *testing.T) {
	s := Default()
	s.Slicing.Workers = -1
	if err := s.Validate(); err == nil {
		t.Error("negative workers should fail validation")
	}
}
