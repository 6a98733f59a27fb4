package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/philipparndt/goresin/pkg/gltf"
	"github.com/philipparndt/goresin/pkg/mesh"
	"github.com/philipparndt/goresin/pkg/stl"
)

// loadMesh parses a model file by extension
func loadMesh(filename string) (*mesh.Mesh, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".stl":
		return stl.Parse(filename)
	case ".gltf", ".glb":
		return gltf.Load(filename)
	default:
		return nil, fmt.Errorf("unsupported model format: %s", filename)
	}
}
