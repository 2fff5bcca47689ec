package fog

import (
	"fmt"
	"sync"

	"github.com/gogpu/fog/material"
	"github.com/gogpu/fog/raster"
	"github.com/gogpu/fog/target"
	"github.com/gogpu/fog/volume"
	"github.com/gogpu/wgpu/hal"
)

// Pass accumulates the enabled volumes of a registry into a double-buffered
// offscreen image and blends it onto the primary output.
//
// Setup and Execute are called once per frame from the render goroutine.
// The registry may be mutated from any goroutine; a frame draws the
// volumes that were enabled when its Setup ran.
type Pass struct {
	settings Settings
	registry *volume.Registry

	helper    *raster.Helper
	ownHelper bool

	material    *material.Material
	ownMaterial bool

	target  *target.DoubleBuffered
	tracker raster.ResizeTracker
	props   *material.Properties

	mu        sync.Mutex
	state     State
	skipped   bool
	active    []volume.Descriptor
	frames    uint64
	destroyed bool
}

// NewPass creates a pass drawing on device and queue.
func NewPass(device hal.Device, queue hal.Queue, opts ...Option) (*Pass, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.settings.TargetName == "" {
		o.settings.TargetName = DefaultTargetName
	}

	p := &Pass{
		settings: o.settings,
		registry: o.registry,
		helper:   o.helper,
		props:    material.NewProperties(),
	}
	if p.registry == nil {
		p.registry = volume.NewRegistry()
	}

	if p.helper == nil {
		h, err := raster.NewHelper(device, queue)
		if err != nil {
			return nil, fmt.Errorf("fog: %w", err)
		}
		p.helper = h
		p.ownHelper = true
	}
	device = p.helper.Device()

	if err := p.createMaterial(device); err != nil {
		p.releaseHelper()
		return nil, err
	}

	p.target = target.NewDoubleBuffered(device, p.settings.TargetName)
	p.target.SetDeferrer(p.helper)

	Logger().Info("fog: pass created",
		"event", p.settings.Event,
		"material", p.material.Label(),
		"target", p.settings.TargetName,
	)
	return p, nil
}

func (p *Pass) createMaterial(device hal.Device) error {
	switch m := p.settings.Material; {
	case m != nil && p.settings.InstantiateMaterial:
		inst, err := m.Instantiate(m.Label() + "_instance")
		if err != nil {
			return fmt.Errorf("fog: instantiate material: %w", err)
		}
		p.material = inst
		p.ownMaterial = true
	case m != nil:
		p.material = m
	default:
		def, err := material.Lookup(volume.FogMaterial)
		if err != nil {
			return fmt.Errorf("fog: %w", err)
		}
		mat, err := material.New(device, *def)
		if err != nil {
			return fmt.Errorf("fog: create material: %w", err)
		}
		p.material = mat
		p.ownMaterial = true
	}
	return nil
}

// Setup prepares the frame for v. It takes the frame's snapshot of enabled
// volumes and reallocates the targets when the viewport size changed.
//
// A failed reallocation is not an error: the frame is skipped and the next
// frame retries.
func (p *Pass) Setup(v Viewport) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.destroyed {
		return ErrDestroyed
	}

	p.skipped = false
	p.active = p.registry.Enabled()
	if len(p.active) == 0 {
		p.state = StateIdle
		return nil
	}
	p.state = StateActive

	if p.tracker.HasResolutionChanged(v.Width, v.Height) {
		d := p.settings.descriptor(v.Width, v.Height)
		if _, err := p.target.SetDescriptor(d); err != nil {
			Logger().Warn("fog: target reallocation failed, skipping frame",
				"target", p.settings.TargetName,
				"size", d.String(),
				"err", err,
			)
			p.tracker.Reset()
			p.skipped = true
			return nil
		}
		Logger().Debug("fog: target reallocated",
			"target", p.settings.TargetName,
			"size", d.String(),
			"allocations", p.target.Allocations(),
		)
	}

	p.props.SetMatrix(volume.PropCornersMatrix, v.Camera.NearClipPlaneCornersMatrix())
	p.props.SetVector3(volume.PropCameraPosition, v.Camera.Position)
	p.props.SetFloat(volume.PropTime, v.Time)
	v.Light.Apply(p.props)
	return nil
}

// Execute records and submits the frame prepared by Setup. An idle or
// skipped frame records nothing.
func (p *Pass) Execute(v Viewport) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.destroyed {
		return ErrDestroyed
	}
	if p.state == StateIdle || p.skipped {
		return nil
	}

	p.frames++
	f, err := p.helper.BeginFrame(fmt.Sprintf("fog_frame_%d", p.frames))
	if err != nil {
		return err
	}
	defer f.Release()

	back := p.target.Back()
	if err := p.target.ClearBack(f.Encoder(), p.settings.ClearColor); err != nil {
		return err
	}

	quad := p.helper.Geometry().Quad()
	for _, vol := range p.active {
		vol.Apply(p.props)
		if err := p.helper.RasterizeIntoTarget(f, raster.Draw{
			Color:      back,
			Mesh:       quad,
			Material:   p.material,
			PassIndex:  0,
			Properties: p.props,
		}); err != nil {
			return err
		}
	}

	if err := p.helper.CompositeOntoPrimaryOutput(f, back, raster.Blend, v.Output, nil); err != nil {
		return err
	}
	if err := f.Submit(); err != nil {
		return err
	}
	p.target.Swap()

	Logger().Debug("fog: frame drawn",
		"frame", f.Label(),
		"volumes", len(p.active),
		"draws", f.Draws(),
	)
	return nil
}

// State returns the state evaluated by the last Setup.
func (p *Pass) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Skipped reports whether the last Setup degraded the frame.
func (p *Pass) Skipped() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.skipped
}

// Target returns the accumulation double buffer.
func (p *Pass) Target() *target.DoubleBuffered { return p.target }

// Registry returns the registry the pass draws from.
func (p *Pass) Registry() *volume.Registry { return p.registry }

// Event returns where the pass runs in the host frame.
func (p *Pass) Event() PassEvent { return p.settings.Event }

// Material returns the fog material.
func (p *Pass) Material() *material.Material { return p.material }

// Helper returns the raster helper.
func (p *Pass) Helper() *raster.Helper { return p.helper }

// Properties returns the shared properties written before each volume
// draw.
func (p *Pass) Properties() *material.Properties { return p.props }

// Destroy releases the targets and every resource the pass created.
// Destroy is idempotent.
func (p *Pass) Destroy() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.destroyed {
		return
	}
	p.destroyed = true
	p.active = nil

	// Frames still in flight may reference the targets.
	if p.ownHelper {
		p.helper.Destroy()
	} else if err := p.helper.Device().WaitIdle(); err != nil {
		Logger().Warn("fog: wait idle failed", "err", err)
	}
	p.target.Release()
	if p.ownMaterial {
		p.material.Destroy()
	}
	Logger().Info("fog: pass destroyed", "frames", p.frames)
}

func (p *Pass) releaseHelper() {
	if p.ownHelper {
		p.helper.Destroy()
	}
}
