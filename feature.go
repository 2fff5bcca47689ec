package fog

import (
	"github.com/gogpu/fog/volume"
	"github.com/gogpu/gpucontext"
	"github.com/gogpu/wgpu/hal"
)

// Feature plugs a fog Pass into a host renderer. The host calls
// AddRenderPasses for every camera each frame; only the primary camera
// gets fog.
type Feature struct {
	pass *Pass
}

// NewFeature creates a feature on the device of provider, which must
// expose HAL handles.
func NewFeature(provider gpucontext.DeviceProvider, opts ...Option) (*Feature, error) {
	device, queue, err := halDevice(provider)
	if err != nil {
		return nil, err
	}
	return NewFeatureWithDevice(device, queue, opts...)
}

// NewFeatureWithDevice creates a feature on device and queue.
func NewFeatureWithDevice(device hal.Device, queue hal.Queue, opts ...Option) (*Feature, error) {
	pass, err := NewPass(device, queue, opts...)
	if err != nil {
		return nil, err
	}
	return &Feature{pass: pass}, nil
}

// Pass returns the feature's pass.
func (f *Feature) Pass() *Pass { return f.pass }

// Registry returns the registry the pass draws from.
func (f *Feature) Registry() *volume.Registry { return f.pass.Registry() }

// AddRenderPasses enqueues the pass for v when v is the primary camera.
// It reports whether the pass was enqueued.
func (f *Feature) AddRenderPasses(q PassQueue, v Viewport) bool {
	if !v.Primary || q == nil {
		return false
	}
	q.EnqueuePass(f.pass, v)
	return true
}

// Destroy destroys the pass.
func (f *Feature) Destroy() {
	f.pass.Destroy()
}
