package geometry

import (
	"errors"
	"fmt"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
)

// ErrNoMesh is returned when a glTF document has no mesh at the requested
// index.
var ErrNoMesh = errors.New("geometry: glTF mesh not found")

// LoadGLTF reads mesh meshIndex from the glTF or GLB file at path and merges
// all of its triangle primitives into one custom Primitive.
//
// Positions are required. Missing normals default to +Y and missing texture
// coordinates to zero. Non-indexed primitives are indexed sequentially.
func LoadGLTF(path string, meshIndex int) (*Primitive, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open glTF %q: %w", path, err)
	}
	return FromGLTF(doc, meshIndex)
}

// FromGLTF converts mesh meshIndex of an already decoded document.
func FromGLTF(doc *gltf.Document, meshIndex int) (*Primitive, error) {
	if meshIndex < 0 || meshIndex >= len(doc.Meshes) {
		return nil, fmt.Errorf("%w: index %d of %d", ErrNoMesh, meshIndex, len(doc.Meshes))
	}
	gm := doc.Meshes[meshIndex]

	name := gm.Name
	if name == "" {
		name = fmt.Sprintf("gltf_mesh_%d", meshIndex)
	}

	b := NewBuilder(name)
	for pi, prim := range gm.Primitives {
		if prim.Mode != gltf.PrimitiveTriangles {
			continue
		}
		vertices, indices, err := readGLTFPrimitive(doc, prim)
		if err != nil {
			return nil, fmt.Errorf("%s primitive %d: %w", name, pi, err)
		}
		b.AddIndexed(vertices, indices)
	}
	return b.Build()
}

func readGLTFPrimitive(doc *gltf.Document, prim *gltf.Primitive) ([]Vertex, []uint32, error) {
	posIdx, ok := prim.Attributes["POSITION"]
	if !ok {
		return nil, nil, fmt.Errorf("no POSITION attribute")
	}
	positions, err := modeler.ReadPosition(doc, doc.Accessors[posIdx], nil)
	if err != nil {
		return nil, nil, fmt.Errorf("positions: %w", err)
	}

	var normals [][3]float32
	if idx, ok := prim.Attributes["NORMAL"]; ok {
		normals, err = modeler.ReadNormal(doc, doc.Accessors[idx], nil)
		if err != nil {
			return nil, nil, fmt.Errorf("normals: %w", err)
		}
	}
	var uvs [][2]float32
	if idx, ok := prim.Attributes["TEXCOORD_0"]; ok {
		uvs, err = modeler.ReadTextureCoord(doc, doc.Accessors[idx], nil)
		if err != nil {
			return nil, nil, fmt.Errorf("texcoords: %w", err)
		}
	}

	vertices := make([]Vertex, len(positions))
	for i, p := range positions {
		v := Vertex{Position: p, Normal: [3]float32{0, 1, 0}}
		if i < len(normals) {
			v.Normal = normals[i]
		}
		if i < len(uvs) {
			v.UV = uvs[i]
		}
		vertices[i] = v
	}

	var indices []uint32
	if prim.Indices != nil {
		indices, err = modeler.ReadIndices(doc, doc.Accessors[*prim.Indices], nil)
		if err != nil {
			return nil, nil, fmt.Errorf("indices: %w", err)
		}
	} else {
		indices = make([]uint32, len(positions))
		for i := range indices {
			indices[i] = uint32(i) //nolint:gosec // G115: bounded by vertex count
		}
	}
	return vertices, indices, nil
}
