package geometry

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// ErrMeshReleased is returned when a released mesh is retained again.
var ErrMeshReleased = errors.New("geometry: mesh already released")

// Deferrer postpones destroying GPU objects until the work already
// submitted against them has completed.
type Deferrer interface {
	Defer(destroy func())
}

// Mesh is a Primitive uploaded to GPU vertex and index buffers.
//
// Mesh is reference counted: Upload returns a mesh holding one reference,
// every additional consumer calls Retain, and each consumer calls Release
// when done. The buffers are destroyed when the last reference is released.
type Mesh struct {
	device    hal.Device
	primitive *Primitive

	vertexBuf hal.Buffer
	indexBuf  hal.Buffer

	deferrer Deferrer
	refs     atomic.Int32
}

// Upload creates GPU buffers for p and writes its data through queue.
func Upload(device hal.Device, queue hal.Queue, p *Primitive) (*Mesh, error) {
	vdata := p.VertexBytes()
	idata := p.IndexBytes()

	vb, err := device.CreateBuffer(&hal.BufferDescriptor{
		Label: p.name + "_vertices",
		Size:  uint64(len(vdata)),
		Usage: gputypes.BufferUsageVertex | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("create %s vertex buffer: %w", p.name, err)
	}
	ib, err := device.CreateBuffer(&hal.BufferDescriptor{
		Label: p.name + "_indices",
		Size:  uint64(len(idata)),
		Usage: gputypes.BufferUsageIndex | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		device.DestroyBuffer(vb)
		return nil, fmt.Errorf("create %s index buffer: %w", p.name, err)
	}

	if err := queue.WriteBuffer(vb, 0, vdata); err != nil {
		device.DestroyBuffer(ib)
		device.DestroyBuffer(vb)
		return nil, fmt.Errorf("write %s vertices: %w", p.name, err)
	}
	if err := queue.WriteBuffer(ib, 0, idata); err != nil {
		device.DestroyBuffer(ib)
		device.DestroyBuffer(vb)
		return nil, fmt.Errorf("write %s indices: %w", p.name, err)
	}

	m := &Mesh{device: device, primitive: p, vertexBuf: vb, indexBuf: ib}
	m.refs.Store(1)
	return m, nil
}

// Primitive returns the CPU-side source data.
func (m *Mesh) Primitive() *Primitive { return m.primitive }

// Shape returns the primitive's shape tag.
func (m *Mesh) Shape() Shape { return m.primitive.shape }

// VertexBuffer returns the GPU vertex buffer.
func (m *Mesh) VertexBuffer() hal.Buffer { return m.vertexBuf }

// IndexBuffer returns the GPU index buffer.
func (m *Mesh) IndexBuffer() hal.Buffer { return m.indexBuf }

// IndexFormat returns the format of the index buffer.
func (m *Mesh) IndexFormat() gputypes.IndexFormat { return gputypes.IndexFormatUint32 }

// IndexCount returns the number of indices to draw.
func (m *Mesh) IndexCount() uint32 {
	return uint32(m.primitive.IndexCount()) //nolint:gosec // G115: bounded by Builder
}

// SetDeferrer routes the destruction of the buffers through d once the
// last reference is released. It must be called before the mesh is shared.
func (m *Mesh) SetDeferrer(d Deferrer) { m.deferrer = d }

// Refs returns the current reference count.
func (m *Mesh) Refs() int32 { return m.refs.Load() }

// Retain adds a reference. Retaining a mesh whose buffers were already
// destroyed is an error.
func (m *Mesh) Retain() error {
	for {
		n := m.refs.Load()
		if n <= 0 {
			return fmt.Errorf("%s: %w", m.primitive.name, ErrMeshReleased)
		}
		if m.refs.CompareAndSwap(n, n+1) {
			return nil
		}
	}
}

// Release drops a reference and destroys the buffers when none remain.
// Extra calls after the last reference are ignored.
func (m *Mesh) Release() {
	for {
		n := m.refs.Load()
		if n <= 0 {
			return
		}
		if m.refs.CompareAndSwap(n, n-1) {
			if n == 1 {
				m.destroy()
			}
			return
		}
	}
}

func (m *Mesh) destroy() {
	device, vb, ib := m.device, m.vertexBuf, m.indexBuf
	m.indexBuf = nil
	m.vertexBuf = nil
	free := func() {
		device.DestroyBuffer(ib)
		device.DestroyBuffer(vb)
	}
	if m.deferrer != nil {
		m.deferrer.Defer(free)
		return
	}
	free()
}

// Set owns the shared full-screen triangle and quad meshes.
//
// A Set is built once during pipeline setup and handed to every consumer.
// Consumers that outlive the creator call Retain and Release, and the
// meshes are destroyed when the last holder releases the set.
type Set struct {
	triangle *Mesh
	quad     *Mesh

	mu   sync.Mutex
	refs int
}

// NewSet uploads the full-screen triangle and quad.
func NewSet(device hal.Device, queue hal.Queue) (*Set, error) {
	tri, err := Upload(device, queue, FullscreenTriangle())
	if err != nil {
		return nil, err
	}
	quad, err := Upload(device, queue, FullscreenQuad())
	if err != nil {
		tri.Release()
		return nil, err
	}
	return &Set{triangle: tri, quad: quad, refs: 1}, nil
}

// Triangle returns the shared full-screen triangle.
func (s *Set) Triangle() *Mesh { return s.triangle }

// Quad returns the shared full-screen quad.
func (s *Set) Quad() *Mesh { return s.quad }

// ByShape returns the shared mesh for a built-in shape, or nil for
// ShapeCustom.
func (s *Set) ByShape(shape Shape) *Mesh {
	switch shape {
	case ShapeTriangle:
		return s.triangle
	case ShapeQuad:
		return s.quad
	default:
		return nil
	}
}

// Retain adds a holder.
func (s *Set) Retain() {
	s.mu.Lock()
	s.refs++
	s.mu.Unlock()
}

// Release drops a holder and releases the meshes when none remain.
func (s *Set) Release() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.refs <= 0 {
		return
	}
	s.refs--
	if s.refs == 0 {
		s.triangle.Release()
		s.quad.Release()
	}
}
