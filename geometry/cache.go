package geometry

import (
	"fmt"
	"sync"

	"github.com/gogpu/fog/internal/lru"
	"github.com/gogpu/wgpu/hal"
)

// DefaultMeshCacheSize is the number of uploaded glTF meshes a MeshCache
// keeps by default.
const DefaultMeshCacheSize = 8

type meshKey struct {
	path  string
	index int
}

// MeshCache loads glTF meshes once and keeps the most recently used ones
// uploaded. Each cached mesh holds one reference owned by the cache;
// meshes pushed out of the cache are released, and their buffers are
// destroyed once every caller has released its own reference.
//
// MeshCache is safe for concurrent use.
type MeshCache struct {
	device hal.Device
	queue  hal.Queue
	load   func(path string, meshIndex int) (*Primitive, error)

	mu       sync.Mutex
	deferrer Deferrer
	meshes   *lru.Cache[meshKey, *Mesh]
}

// NewMeshCache creates a cache of up to size meshes uploaded to device.
// A non-positive size uses DefaultMeshCacheSize.
func NewMeshCache(device hal.Device, queue hal.Queue, size int) *MeshCache {
	if size <= 0 {
		size = DefaultMeshCacheSize
	}
	return &MeshCache{
		device: device,
		queue:  queue,
		load:   LoadGLTF,
		meshes: lru.New[meshKey, *Mesh](size, func(_ meshKey, m *Mesh) { m.Release() }),
	}
}

// SetDeferrer sets the deferrer of meshes uploaded from now on, so that
// evicted meshes outlive the submissions drawing them.
func (c *MeshCache) SetDeferrer(d Deferrer) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.deferrer = d
}

// Load returns mesh meshIndex of the glTF file at path, loading and
// uploading it on first use. The returned mesh carries a reference for
// the caller, who must Release it.
func (c *MeshCache) Load(path string, meshIndex int) (*Mesh, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	m, err := c.meshes.GetOrCreate(meshKey{path: path, index: meshIndex}, func() (*Mesh, error) {
		p, err := c.load(path, meshIndex)
		if err != nil {
			return nil, err
		}
		mesh, err := Upload(c.device, c.queue, p)
		if err != nil {
			return nil, err
		}
		mesh.SetDeferrer(c.deferrer)
		return mesh, nil
	})
	if err != nil {
		return nil, fmt.Errorf("load mesh %d of %q: %w", meshIndex, path, err)
	}
	if err := m.Retain(); err != nil {
		return nil, err
	}
	return m, nil
}

// Len returns the number of cached meshes.
func (c *MeshCache) Len() int { return c.meshes.Len() }

// Stats returns the cache hit, miss and eviction counters.
func (c *MeshCache) Stats() lru.Stats { return c.meshes.Stats() }

// Evict drops the cache's reference to every mesh.
func (c *MeshCache) Evict() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.meshes.Clear()
}
