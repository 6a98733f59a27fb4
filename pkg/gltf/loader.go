// Package gltf imports glTF and GLB files into the engine's mesh model.
package gltf

import (
	"fmt"
	"math"
	"path/filepath"

	"github.com/qmuntal/gltf"

	"github.com/philipparndt/goresin/pkg/geometry"
	"github.com/philipparndt/goresin/pkg/mesh"
)

// Load reads a glTF or GLB file and returns an indexed mesh. All triangle
// primitives of all meshes are merged; node transforms are not applied, the
// geometry is taken in mesh-local coordinates.
func Load(path string) (*mesh.Mesh, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open gltf: %w", err)
	}
	return FromDocument(doc, filepath.Base(path))
}

// FromDocument converts an already-parsed glTF document into a mesh
func FromDocument(doc *gltf.Document, name string) (*mesh.Mesh, error) {
	var vertices []mesh.Vertex
	var triangles []mesh.Triangle

	for _, m := range doc.Meshes {
		for _, prim := range m.Primitives {
			if prim.Mode != gltf.PrimitiveTriangles && prim.Mode != 0 {
				continue
			}

			posIdx, ok := prim.Attributes[gltf.POSITION]
			if !ok {
				continue
			}
			positions, err := readVec3(doc, posIdx)
			if err != nil {
				return nil, fmt.Errorf("read positions: %w", err)
			}

			var normals []geometry.Vector3
			if normIdx, ok := prim.Attributes[gltf.NORMAL]; ok {
				normals, err = readVec3(doc, normIdx)
				if err != nil {
					return nil, fmt.Errorf("read normals: %w", err)
				}
			}

			base := len(vertices)
			for i, p := range positions {
				v := mesh.Vertex{Position: p}
				if i < len(normals) {
					v.Normal = normals[i]
				}
				vertices = append(vertices, v)
			}

			if prim.Indices != nil {
				indices, err := readIndices(doc, *prim.Indices)
				if err != nil {
					return nil, fmt.Errorf("read indices: %w", err)
				}
				for i := 0; i+2 < len(indices); i += 3 {
					triangles = append(triangles, mesh.Triangle{
						base + indices[i],
						base + indices[i+1],
						base + indices[i+2],
					})
				}
			} else {
				for i := 0; i+2 < len(positions); i += 3 {
					triangles = append(triangles, mesh.Triangle{base + i, base + i + 1, base + i + 2})
				}
			}
		}
	}

	return mesh.New(name, vertices, triangles), nil
}

// readVec3 reads VEC3 float data from an accessor
func readVec3(doc *gltf.Document, accessorIdx int) ([]geometry.Vector3, error) {
	accessor := doc.Accessors[accessorIdx]
	if accessor.Type != gltf.AccessorVec3 {
		return nil, fmt.Errorf("expected VEC3, got %v", accessor.Type)
	}

	data, start, stride, err := accessorBytes(doc, accessor)
	if err != nil {
		return nil, err
	}
	if stride == 0 {
		stride = 12
	}

	result := make([]geometry.Vector3, accessor.Count)
	for i := range result {
		offset := start + i*stride
		result[i] = geometry.NewVector3(
			float64(readFloat32(data[offset:])),
			float64(readFloat32(data[offset+4:])),
			float64(readFloat32(data[offset+8:])),
		)
	}
	return result, nil
}

// readIndices reads scalar index data of any supported component width
func readIndices(doc *gltf.Document, accessorIdx int) ([]int, error) {
	accessor := doc.Accessors[accessorIdx]
	if accessor.Type != gltf.AccessorScalar {
		return nil, fmt.Errorf("expected SCALAR, got %v", accessor.Type)
	}

	data, start, stride, err := accessorBytes(doc, accessor)
	if err != nil {
		return nil, err
	}

	var width int
	switch accessor.ComponentType {
	case gltf.ComponentUbyte:
		width = 1
	case gltf.ComponentUshort:
		width = 2
	case gltf.ComponentUint:
		width = 4
	default:
		return nil, fmt.Errorf("unexpected index component type: %v", accessor.ComponentType)
	}
	if stride == 0 {
		stride = width
	}

	result := make([]int, accessor.Count)
	for i := range result {
		offset := start + i*stride
		switch width {
		case 1:
			result[i] = int(data[offset])
		case 2:
			result[i] = int(uint16(data[offset]) | uint16(data[offset+1])<<8)
		case 4:
			result[i] = int(uint32(data[offset]) |
				uint32(data[offset+1])<<8 |
				uint32(data[offset+2])<<16 |
				uint32(data[offset+3])<<24)
		}
	}
	return result, nil
}

// accessorBytes resolves an accessor to its backing byte slice
func accessorBytes(doc *gltf.Document, accessor *gltf.Accessor) (data []byte, start, stride int, err error) {
	if accessor.BufferView == nil {
		return nil, 0, 0, fmt.Errorf("accessor has no buffer view")
	}
	bufferView := doc.BufferViews[*accessor.BufferView]
	buffer := doc.Buffers[bufferView.Buffer]

	if buffer.URI != "" {
		return nil, 0, 0, fmt.Errorf("external buffers not supported")
	}
	if buffer.Data == nil {
		return nil, 0, 0, fmt.Errorf("buffer has no data")
	}

	return buffer.Data, bufferView.ByteOffset + accessor.ByteOffset, bufferView.ByteStride, nil
}

// readFloat32 reads a little-endian float32 from a byte slice
func readFloat32(data []byte) float32 {
	bits := uint32(data[0]) | uint32(data[1])<<8 | uint32(data[2])<<16 | uint32(data[3])<<24
	return math.Float32frombits(bits)
}
