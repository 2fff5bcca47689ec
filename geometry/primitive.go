// Package geometry provides the immutable screen-space shapes fed to
// rasterization: a full-screen triangle, a full-screen quad, and arbitrary
// custom meshes.
//
// A [Primitive] is CPU-side data. [Upload] turns it into a reference-counted
// [Mesh] holding the GPU vertex and index buffers, and a [Set] owns the
// shared triangle and quad meshes built once during pipeline setup.
package geometry

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	"github.com/gogpu/gputypes"
)

// Geometry errors.
var (
	// ErrEmptyMesh is returned when a builder produces no triangles.
	ErrEmptyMesh = errors.New("geometry: mesh has no triangles")

	// ErrIndexOutOfRange is returned when an index refers past the last vertex.
	ErrIndexOutOfRange = errors.New("geometry: index out of range")
)

// Shape tags the role of a primitive. The numeric value doubles as the
// default shader pass index for materials that provide one pass per shape.
type Shape int

const (
	// ShapeTriangle is a single triangle that covers the whole viewport.
	ShapeTriangle Shape = iota

	// ShapeQuad is a two-triangle quad spanning clip space.
	ShapeQuad

	// ShapeCustom is any other mesh.
	ShapeCustom
)

// String returns the string representation of Shape.
func (s Shape) String() string {
	switch s {
	case ShapeTriangle:
		return "Triangle"
	case ShapeQuad:
		return "Quad"
	case ShapeCustom:
		return "Custom"
	default:
		return fmt.Sprintf("Unknown(%d)", int(s))
	}
}

// Vertex is the vertex format shared by all primitives.
type Vertex struct {
	Position [3]float32
	Normal   [3]float32
	UV       [2]float32
}

// VertexStride is the size in bytes of one encoded Vertex.
const VertexStride = 32

// VertexLayout returns the vertex buffer layout matching Vertex:
// position at location 0, normal at 1, uv at 2.
func VertexLayout() gputypes.VertexBufferLayout {
	return gputypes.VertexBufferLayout{
		ArrayStride: VertexStride,
		StepMode:    gputypes.VertexStepModeVertex,
		Attributes: []gputypes.VertexAttribute{
			{Format: gputypes.VertexFormatFloat32x3, Offset: 0, ShaderLocation: 0},
			{Format: gputypes.VertexFormatFloat32x3, Offset: 12, ShaderLocation: 1},
			{Format: gputypes.VertexFormatFloat32x2, Offset: 24, ShaderLocation: 2},
		},
	}
}

// Primitive is an immutable vertex/index pair with a shape tag.
// Primitives are never modified after construction and may be shared.
type Primitive struct {
	name     string
	shape    Shape
	vertices []Vertex
	indices  []uint32
}

// Name returns the primitive's debug name.
func (p *Primitive) Name() string { return p.name }

// Shape returns the shape tag.
func (p *Primitive) Shape() Shape { return p.shape }

// VertexCount returns the number of vertices.
func (p *Primitive) VertexCount() int { return len(p.vertices) }

// IndexCount returns the number of indices.
func (p *Primitive) IndexCount() int { return len(p.indices) }

// Vertex returns the i'th vertex.
func (p *Primitive) Vertex(i int) Vertex { return p.vertices[i] }

// Index returns the i'th index.
func (p *Primitive) Index(i int) uint32 { return p.indices[i] }

// VertexBytes encodes the vertices in little-endian VertexStride records.
func (p *Primitive) VertexBytes() []byte {
	buf := make([]byte, 0, len(p.vertices)*VertexStride)
	for _, v := range p.vertices {
		for _, f := range v.Position {
			buf = binary.LittleEndian.AppendUint32(buf, math.Float32bits(f))
		}
		for _, f := range v.Normal {
			buf = binary.LittleEndian.AppendUint32(buf, math.Float32bits(f))
		}
		for _, f := range v.UV {
			buf = binary.LittleEndian.AppendUint32(buf, math.Float32bits(f))
		}
	}
	return buf
}

// IndexBytes encodes the indices as little-endian uint32 values.
func (p *Primitive) IndexBytes() []byte {
	buf := make([]byte, 0, len(p.indices)*4)
	for _, i := range p.indices {
		buf = binary.LittleEndian.AppendUint32(buf, i)
	}
	return buf
}

// FullscreenTriangle returns a single triangle whose interior covers clip
// space [-1,1]². It is preferred over the quad for full-screen passes since
// it avoids the diagonal seam.
func FullscreenTriangle() *Primitive {
	return &Primitive{
		name:  "BlitTriangle",
		shape: ShapeTriangle,
		vertices: []Vertex{
			{Position: [3]float32{-1, -1, 0}, UV: [2]float32{0, 1}},
			{Position: [3]float32{3, -1, 0}, UV: [2]float32{2, 1}},
			{Position: [3]float32{-1, 3, 0}, UV: [2]float32{0, -1}},
		},
		indices: []uint32{0, 1, 2},
	}
}

// FullscreenQuad returns a quad spanning clip space. The v texture
// coordinate runs top to bottom so that uv (0,0) maps to the upper-left
// texel of a sampled render target.
func FullscreenQuad() *Primitive {
	ll := Vertex{Position: [3]float32{-1, -1, 0}, UV: [2]float32{0, 1}}
	lr := Vertex{Position: [3]float32{1, -1, 0}, UV: [2]float32{1, 1}}
	ur := Vertex{Position: [3]float32{1, 1, 0}, UV: [2]float32{1, 0}}
	ul := Vertex{Position: [3]float32{-1, 1, 0}, UV: [2]float32{0, 0}}

	b := NewBuilder("BlitQuad")
	b.AddFace(ll, lr, ur, ul)
	p := b.build()
	p.shape = ShapeQuad
	return p
}

// Builder accumulates triangles for a custom Primitive.
type Builder struct {
	name     string
	vertices []Vertex
	indices  []uint32
}

// NewBuilder creates a builder for a mesh called name.
func NewBuilder(name string) *Builder {
	return &Builder{name: name}
}

// AddTriangle appends one triangle with counter-clockwise winding.
func (b *Builder) AddTriangle(v0, v1, v2 Vertex) {
	base := uint32(len(b.vertices)) //nolint:gosec // G115: vertex counts stay far below 2^32
	b.vertices = append(b.vertices, v0, v1, v2)
	b.indices = append(b.indices, base, base+1, base+2)
}

// AddFace appends a quad given its corners in counter-clockwise order
// starting at lower-left. The quad shares its four vertices between two
// triangles.
func (b *Builder) AddFace(ll, lr, ur, ul Vertex) {
	base := uint32(len(b.vertices)) //nolint:gosec // G115: vertex counts stay far below 2^32
	b.vertices = append(b.vertices, ll, lr, ur, ul)
	b.indices = append(b.indices, base, base+1, base+2, base+2, base+3, base)
}

// AddIndexed appends vertices with indices relative to the first appended
// vertex.
func (b *Builder) AddIndexed(vertices []Vertex, indices []uint32) {
	base := uint32(len(b.vertices)) //nolint:gosec // G115: vertex counts stay far below 2^32
	b.vertices = append(b.vertices, vertices...)
	for _, i := range indices {
		b.indices = append(b.indices, base+i)
	}
}

// Build returns the finished custom primitive. The builder may be reused;
// the primitive does not share memory with it.
func (b *Builder) Build() (*Primitive, error) {
	if len(b.indices) < 3 {
		return nil, fmt.Errorf("%s: %w", b.name, ErrEmptyMesh)
	}
	n := uint32(len(b.vertices)) //nolint:gosec // G115: vertex counts stay far below 2^32
	for _, i := range b.indices {
		if i >= n {
			return nil, fmt.Errorf("%s: %w: %d >= %d", b.name, ErrIndexOutOfRange, i, n)
		}
	}
	return b.build(), nil
}

func (b *Builder) build() *Primitive {
	return &Primitive{
		name:     b.name,
		shape:    ShapeCustom,
		vertices: append([]Vertex(nil), b.vertices...),
		indices:  append([]uint32(nil), b.indices...),
	}
}
