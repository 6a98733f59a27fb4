// Package stl reads STL files into the engine's mesh model.
package stl

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/philipparndt/goresin/pkg/geometry"
	"github.com/philipparndt/goresin/pkg/mesh"
)

// Parse reads an STL file and returns the welded mesh
// It automatically detects whether the file is ASCII or binary format
func Parse(filename string) (*mesh.Mesh, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	// Read first few bytes to determine format
	header := make([]byte, 6)
	n, err := file.Read(header)
	if err != nil {
		return nil, fmt.Errorf("failed to read file header: %w", err)
	}

	// Reset file pointer
	if _, err := file.Seek(0, 0); err != nil {
		return nil, fmt.Errorf("failed to reset file pointer: %w", err)
	}

	// Check if it's ASCII format (starts with "solid ")
	if n >= 5 && strings.HasPrefix(string(header[:5]), "solid") {
		return ParseASCII(file, filename)
	}

	return ParseBinary(file, filename)
}

// ParseASCII parses an ASCII STL stream
func ParseASCII(reader io.Reader, name string) (*mesh.Mesh, error) {
	scanner := bufio.NewScanner(reader)
	builder := mesh.NewBuilder(name)

	var currentNormal geometry.Vector3
	var corners []geometry.Vector3

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		fields := strings.Fields(line)

		if len(fields) == 0 {
			continue
		}

		switch fields[0] {
		case "solid":
			// keep the caller-provided name; the solid line is informational

		case "facet":
			if len(fields) >= 5 && fields[1] == "normal" {
				x, _ := strconv.ParseFloat(fields[2], 64)
				y, _ := strconv.ParseFloat(fields[3], 64)
				z, _ := strconv.ParseFloat(fields[4], 64)
				currentNormal = geometry.NewVector3(x, y, z)
			}

		case "vertex":
			if len(fields) >= 4 {
				x, _ := strconv.ParseFloat(fields[1], 64)
				y, _ := strconv.ParseFloat(fields[2], 64)
				z, _ := strconv.ParseFloat(fields[3], 64)
				corners = append(corners, geometry.NewVector3(x, y, z))
			}

		case "endfacet":
			if len(corners) == 3 {
				builder.AddFace(currentNormal, [3]geometry.Vector3{corners[0], corners[1], corners[2]})
			}
			corners = corners[:0]
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading ASCII STL: %w", err)
	}

	return builder.Build(), nil
}

// ParseBinary parses a binary STL stream
func ParseBinary(reader io.Reader, name string) (*mesh.Mesh, error) {
	// Read 80-byte header; its content is not meaningful
	header := make([]byte, 80)
	if _, err := io.ReadFull(reader, header); err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	var triangleCount uint32
	if err := binary.Read(reader, binary.LittleEndian, &triangleCount); err != nil {
		return nil, fmt.Errorf("failed to read triangle count: %w", err)
	}

	builder := mesh.NewBuilder(name)

	for i := uint32(0); i < triangleCount; i++ {
		var record struct {
			Normal   [3]float32
			Vertices [3][3]float32
			Attr     uint16
		}
		if err := binary.Read(reader, binary.LittleEndian, &record); err != nil {
			return nil, fmt.Errorf("failed to read triangle %d: %w", i, err)
		}

		normal := geometry.NewVector3(
			float64(record.Normal[0]),
			float64(record.Normal[1]),
			float64(record.Normal[2]),
		)
		var corners [3]geometry.Vector3
		for v, vert := range record.Vertices {
			corners[v] = geometry.NewVector3(float64(vert[0]), float64(vert[1]), float64(vert[2]))
		}
		builder.AddFace(normal, corners)
	}

	return builder.Build(), nil
}
