// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package raster

import (
	"fmt"
	"sync"

	"github.com/gogpu/fog/geometry"
	"github.com/gogpu/fog/material"
	"github.com/gogpu/fog/target"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
	"golang.org/x/image/math/f32"
)

// identity is the default model matrix.
var identity = f32.Mat4{
	1, 0, 0, 0,
	0, 1, 0, 0,
	0, 0, 1, 0,
	0, 0, 0, 1,
}

// Option configures a Helper.
type Option func(*helperOptions)

type helperOptions struct {
	geometry *geometry.Set
	library  *material.Library
}

// WithGeometry shares an existing geometry set. The helper retains it and
// releases it on Destroy.
func WithGeometry(set *geometry.Set) Option {
	return func(o *helperOptions) { o.geometry = set }
}

// WithLibrary uses an existing utility material library. The helper does
// not destroy a library it did not create.
func WithLibrary(lib *material.Library) Option {
	return func(o *helperOptions) { o.library = lib }
}

// Draw is one mesh drawn with a material into offscreen targets.
type Draw struct {
	// Color receives the draw. It must be allocated.
	Color *target.Offscreen

	// Depth, when set, supplies the depth attachment. It must have a
	// depth view.
	Depth *target.Offscreen

	// Mesh defaults to the shared full-screen triangle.
	Mesh *geometry.Mesh

	// Material defaults to the depth-aware composite material.
	Material *material.Material

	PassIndex int

	// Properties is read when the draw is recorded.
	Properties *material.Properties
}

// attachments is the resolved set of views a draw renders into.
type attachments struct {
	label       string
	color       hal.TextureView
	colorFormat gputypes.TextureFormat
	depth       hal.TextureView
	depthFormat gputypes.TextureFormat
	width       int
	height      int
}

// Helper records material draws. It owns the shared geometry handle, the
// utility material library and the retirement queue of submitted frames.
//
// Recording is single-threaded per frame; Collect and Destroy may be
// called from any goroutine.
type Helper struct {
	device hal.Device
	queue  hal.Queue

	geometry   *geometry.Set
	library    *material.Library
	ownLibrary bool

	// pointSampler samples depth inputs, which require a non-filtering
	// sampler.
	pointSampler hal.Sampler

	mu        sync.Mutex
	inflight  []inflight
	destroyed bool
}

// NewHelper creates a helper on device and queue. Without options it
// uploads its own geometry set and builds the utility material library.
func NewHelper(device hal.Device, queue hal.Queue, opts ...Option) (*Helper, error) {
	if device == nil || queue == nil {
		return nil, ErrNilDevice
	}
	var o helperOptions
	for _, opt := range opts {
		opt(&o)
	}

	h := &Helper{device: device, queue: queue}

	if o.geometry != nil {
		o.geometry.Retain()
		h.geometry = o.geometry
	} else {
		set, err := geometry.NewSet(device, queue)
		if err != nil {
			return nil, fmt.Errorf("raster: create geometry: %w", err)
		}
		h.geometry = set
	}

	if o.library != nil {
		h.library = o.library
	} else {
		lib, err := material.NewLibrary(device)
		if err != nil {
			h.geometry.Release()
			return nil, fmt.Errorf("raster: create materials: %w", err)
		}
		h.library = lib
		h.ownLibrary = true
	}

	sampler, err := device.CreateSampler(&hal.SamplerDescriptor{
		Label:        "raster_point_sampler",
		AddressModeU: gputypes.AddressModeClampToEdge,
		AddressModeV: gputypes.AddressModeClampToEdge,
		AddressModeW: gputypes.AddressModeClampToEdge,
		MagFilter:    gputypes.FilterModeNearest,
		MinFilter:    gputypes.FilterModeNearest,
		MipmapFilter: gputypes.FilterModeNearest,
		LodMaxClamp:  32,
	})
	if err != nil {
		h.releaseShared()
		return nil, fmt.Errorf("raster: create sampler: %w", err)
	}
	h.pointSampler = sampler

	Logger().Debug("raster: helper created", "materials", material.BuiltinNames())
	return h, nil
}

// Device returns the helper's device.
func (h *Helper) Device() hal.Device { return h.device }

// Queue returns the helper's queue.
func (h *Helper) Queue() hal.Queue { return h.queue }

// Geometry returns the shared geometry set.
func (h *Helper) Geometry() *geometry.Set { return h.geometry }

// Library returns the utility material library.
func (h *Helper) Library() *material.Library { return h.library }

// PointSampler returns the nearest-filtering sampler used for depth inputs.
func (h *Helper) PointSampler() hal.Sampler { return h.pointSampler }

// RasterizeIntoTarget records d. A nil Material draws with the depth-aware
// composite material and a nil Mesh draws the full-screen triangle.
func (h *Helper) RasterizeIntoTarget(f *Frame, d Draw) error {
	if d.Color == nil || d.Color.ColorView() == nil {
		return fmt.Errorf("%w: color target not allocated", ErrInvalidDrawState)
	}
	w, ht := d.Color.Size()
	att := attachments{
		label:       d.Color.Name(),
		color:       d.Color.ColorView(),
		colorFormat: d.Color.ColorFormat(),
		width:       w,
		height:      ht,
	}
	if d.Depth != nil {
		if d.Depth.DepthView() == nil {
			return fmt.Errorf("%w: depth target %s has no depth view", ErrInvalidDrawState, d.Depth.Name())
		}
		att.depth = d.Depth.DepthView()
		att.depthFormat = d.Depth.DepthFormat()
	}

	mat := d.Material
	if mat == nil {
		mat = h.library.Get(material.DepthAwareComposite)
	}
	mesh := d.Mesh
	if mesh == nil {
		mesh = h.geometry.Triangle()
	}
	return h.record(f, att, mesh, mat, d.PassIndex, d.Properties)
}

// CompositeOntoPrimaryOutput draws src over the full primary output.
// The material is chosen by mode unless override is set.
func (h *Helper) CompositeOntoPrimaryOutput(f *Frame, src *target.Offscreen, mode BlendMode, out Output, override *material.Material) error {
	if src == nil || src.ColorView() == nil {
		return fmt.Errorf("%w: composite source not allocated", ErrInvalidDrawState)
	}
	if err := out.validateColor(); err != nil {
		return err
	}

	props := material.NewProperties()
	props.SetTexture(material.SourceTexture, src.ColorView(), src.Sampler())
	if src.DepthView() != nil {
		props.SetTexture(material.SourceDepthTexture, src.DepthView(), h.pointSampler)
	} else if mode == DepthAware && override == nil {
		return fmt.Errorf("%w: depth-aware composite of %s without depth", ErrInvalidDrawState, src.Name())
	}

	mat := override
	if mat == nil {
		mat = h.library.Get(mode.MaterialName())
	}
	att := attachments{
		label:       "primary_composite",
		color:       out.Color,
		colorFormat: out.ColorFormat,
		width:       out.Width,
		height:      out.Height,
	}
	if mode == DepthAware || override != nil {
		att.depth = out.Depth
		att.depthFormat = out.depthFormat()
	}
	return h.record(f, att, h.geometry.Triangle(), mat, 0, props)
}

// CopyDepthOntoPrimaryOutput writes the depth image of src into the
// primary output's depth attachment.
func (h *Helper) CopyDepthOntoPrimaryOutput(f *Frame, src *target.Offscreen, out Output) error {
	if src == nil || src.DepthView() == nil {
		return fmt.Errorf("%w: depth copy source has no depth view", ErrInvalidDrawState)
	}
	if err := out.validateDepth(); err != nil {
		return err
	}

	props := material.NewProperties()
	props.SetTexture(material.SourceDepthTexture, src.DepthView(), h.pointSampler)
	att := attachments{
		label:       "primary_depth_copy",
		depth:       out.Depth,
		depthFormat: out.DepthFormat,
		width:       out.Width,
		height:      out.Height,
	}
	return h.record(f, att, h.geometry.Triangle(), h.library.Get(material.DepthCopy), 0, props)
}

// RasterizeOntoPrimaryOutput blends color onto the primary output through
// mesh, testing against the depth image of depth (or of color when depth
// is nil). The pass follows the mesh shape: 0 for the triangle, 1 for the
// quad, 2 for custom meshes, which are transformed by model. A nil mesh is
// the full-screen triangle and a nil model is the identity.
func (h *Helper) RasterizeOntoPrimaryOutput(f *Frame, color, depth *target.Offscreen, mesh *geometry.Mesh, model *f32.Mat4, out Output, override *material.Material) error {
	if color == nil || color.ColorView() == nil {
		return fmt.Errorf("%w: color source not allocated", ErrInvalidDrawState)
	}
	if err := out.validateColor(); err != nil {
		return err
	}
	if depth == nil {
		depth = color
	}

	props := material.NewProperties()
	props.SetTexture(material.SourceTexture, color.ColorView(), color.Sampler())
	if depth.DepthView() != nil {
		props.SetTexture(material.SourceDepthTexture, depth.DepthView(), h.pointSampler)
	}
	m := identity
	if model != nil {
		m = *model
	}
	props.SetMatrix(material.ModelMatrix, m)

	if mesh == nil {
		mesh = h.geometry.Triangle()
	}
	mat := override
	if mat == nil {
		mat = h.library.Get(material.DepthAwareComposite)
	}
	att := attachments{
		label:       "primary_rasterize",
		color:       out.Color,
		colorFormat: out.ColorFormat,
		depth:       out.Depth,
		depthFormat: out.depthFormat(),
		width:       out.Width,
		height:      out.Height,
	}
	return h.record(f, att, mesh, mat, int(mesh.Shape()), props)
}

// record captures props into a uniform buffer and bind group owned by f
// and records one render pass drawing mesh with pass of mat.
func (h *Helper) record(f *Frame, att attachments, mesh *geometry.Mesh, mat *material.Material, pass int, props *material.Properties) error {
	if f == nil {
		return fmt.Errorf("%w: nil frame", ErrFrameClosed)
	}
	if err := f.checkOpen(); err != nil {
		return err
	}
	if mat == nil {
		return fmt.Errorf("%w: no material", ErrInvalidDrawState)
	}
	if mesh == nil || mesh.VertexBuffer() == nil {
		return fmt.Errorf("%w: mesh not uploaded", ErrInvalidDrawState)
	}

	pd, err := mat.Pass(pass)
	if err != nil {
		return err
	}
	colorFormat := att.colorFormat
	if pd.NoColor {
		colorFormat = gputypes.TextureFormatUndefined
	} else if att.color == nil {
		return fmt.Errorf("%w: %s pass %q needs a color attachment", ErrInvalidDrawState, mat.Name(), pd.Label)
	}
	if pd.NoColor && att.depth == nil {
		return fmt.Errorf("%w: %s pass %q needs a depth attachment", ErrInvalidDrawState, mat.Name(), pd.Label)
	}

	pipeline, err := mat.Pipeline(pass, colorFormat, att.depthFormat)
	if err != nil {
		return err
	}
	res, err := h.buildResources(mat, props)
	if err != nil {
		return err
	}
	f.track(res)

	desc := &hal.RenderPassDescriptor{Label: fmt.Sprintf("%s_%s_%s", att.label, mat.Label(), pd.Label)}
	if colorFormat != gputypes.TextureFormatUndefined {
		desc.ColorAttachments = []hal.RenderPassColorAttachment{{
			View:    att.color,
			LoadOp:  gputypes.LoadOpLoad,
			StoreOp: gputypes.StoreOpStore,
		}}
	}
	if att.depth != nil {
		desc.DepthStencilAttachment = &hal.RenderPassDepthStencilAttachment{
			View:         att.depth,
			DepthLoadOp:  gputypes.LoadOpLoad,
			DepthStoreOp: gputypes.StoreOpStore,
		}
		if att.depthFormat.HasStencil() {
			desc.DepthStencilAttachment.StencilLoadOp = gputypes.LoadOpLoad
			desc.DepthStencilAttachment.StencilStoreOp = gputypes.StoreOpStore
		}
	}

	rp := f.encoder.BeginRenderPass(desc)
	//nolint:gosec // G115: target sizes fit float32
	rp.SetViewport(0, 0, float32(att.width), float32(att.height), 0, 1)
	rp.SetPipeline(pipeline)
	rp.SetBindGroup(0, res.bindGroup, nil)
	rp.SetVertexBuffer(0, mesh.VertexBuffer(), 0)
	rp.SetIndexBuffer(mesh.IndexBuffer(), mesh.IndexFormat(), 0)
	rp.DrawIndexed(mesh.IndexCount(), 1, 0, 0, 0)
	rp.End()

	f.draws++
	return nil
}

// buildResources packs props for mat into a new uniform buffer and bind
// group.
func (h *Helper) buildResources(mat *material.Material, props *material.Properties) (drawResources, error) {
	layout := mat.Layout()
	var res drawResources
	var entries []gputypes.BindGroupEntry

	if size := layout.UniformSize(); size > 0 {
		data := layout.Pack(props)
		buf, err := h.device.CreateBuffer(&hal.BufferDescriptor{
			Label: mat.Label() + "_uniforms",
			Size:  size,
			Usage: gputypes.BufferUsageUniform | gputypes.BufferUsageCopyDst,
		})
		if err != nil {
			return res, fmt.Errorf("create %s uniform buffer: %w", mat.Label(), err)
		}
		if err := h.queue.WriteBuffer(buf, 0, data); err != nil {
			h.device.DestroyBuffer(buf)
			return res, fmt.Errorf("write %s uniforms: %w", mat.Label(), err)
		}
		res.uniformBuf = buf
		entries = append(entries, gputypes.BindGroupEntry{
			Binding:  0,
			Resource: gputypes.BufferBinding{Buffer: buf.NativeHandle(), Offset: 0, Size: size},
		})
	}

	for i, slot := range layout.Textures {
		var tex material.Texture
		ok := false
		if props != nil {
			tex, ok = props.Texture(slot.Name)
		}
		if !ok || tex.View == nil || tex.Sampler == nil {
			res.destroy(h.device)
			return drawResources{}, fmt.Errorf("%w: %s texture %q is not bound", ErrInvalidDrawState, mat.Name(), slot.Name)
		}
		texBinding, samplerBinding := material.TextureBinding(i)
		entries = append(entries,
			gputypes.BindGroupEntry{
				Binding:  texBinding,
				Resource: gputypes.TextureViewBinding{TextureView: tex.View.NativeHandle()},
			},
			gputypes.BindGroupEntry{
				Binding:  samplerBinding,
				Resource: gputypes.SamplerBinding{Sampler: tex.Sampler.NativeHandle()},
			},
		)
	}

	bindGroup, err := h.device.CreateBindGroup(&hal.BindGroupDescriptor{
		Label:   mat.Label() + "_bind",
		Layout:  mat.BindGroupLayout(),
		Entries: entries,
	})
	if err != nil {
		res.destroy(h.device)
		return drawResources{}, fmt.Errorf("create %s bind group: %w", mat.Label(), err)
	}
	res.bindGroup = bindGroup
	return res, nil
}

func (h *Helper) enqueue(fr inflight) {
	h.mu.Lock()
	h.inflight = append(h.inflight, fr)
	h.mu.Unlock()
}

// Collect retires submitted frames the queue reports complete.
func (h *Helper) Collect() {
	completed := h.queue.PollCompleted()

	h.mu.Lock()
	var done []inflight
	kept := h.inflight[:0]
	for _, fr := range h.inflight {
		if fr.index <= completed {
			done = append(done, fr)
		} else {
			kept = append(kept, fr)
		}
	}
	h.inflight = kept
	h.mu.Unlock()

	for _, fr := range done {
		h.retire(fr)
	}
}

var (
	_ target.Deferrer   = (*Helper)(nil)
	_ geometry.Deferrer = (*Helper)(nil)
)

// Defer runs destroy once every frame submitted so far has completed. With
// nothing in flight, or after Destroy, destroy runs immediately.
//
// Targets and meshes replaced between frames are handed to Defer, since
// the last submission may still read or write them.
func (h *Helper) Defer(destroy func()) {
	h.mu.Lock()
	if n := len(h.inflight); n > 0 && !h.destroyed {
		last := &h.inflight[n-1]
		last.deferred = append(last.deferred, destroy)
		h.mu.Unlock()
		return
	}
	h.mu.Unlock()
	destroy()
}

// InFlight returns the number of submitted frames not yet retired.
func (h *Helper) InFlight() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.inflight)
}

func (h *Helper) retire(fr inflight) {
	for i := range fr.resources {
		fr.resources[i].destroy(h.device)
	}
	if fr.cmdBuf != nil {
		h.device.FreeCommandBuffer(fr.cmdBuf)
	}
	for _, destroy := range fr.deferred {
		destroy()
	}
}

func (h *Helper) isDestroyed() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.destroyed
}

func (h *Helper) releaseShared() {
	if h.ownLibrary && h.library != nil {
		h.library.Destroy()
	}
	if h.geometry != nil {
		h.geometry.Release()
	}
}

// Destroy waits for the device to go idle, retires every in-flight frame
// and releases the helper's resources. Destroy is idempotent.
func (h *Helper) Destroy() {
	h.mu.Lock()
	if h.destroyed {
		h.mu.Unlock()
		return
	}
	h.destroyed = true
	pending := h.inflight
	h.inflight = nil
	h.mu.Unlock()

	if len(pending) > 0 {
		if err := h.device.WaitIdle(); err != nil {
			Logger().Warn("raster: wait idle failed", "err", err)
		}
	}
	for _, fr := range pending {
		h.retire(fr)
	}
	if h.pointSampler != nil {
		h.device.DestroySampler(h.pointSampler)
		h.pointSampler = nil
	}
	h.releaseShared()
	Logger().Debug("raster: helper destroyed", "retired", len(pending))
}
