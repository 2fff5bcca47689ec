// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package material

import (
	"errors"
	"fmt"
	"sync"

	"github.com/gogpu/fog/geometry"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// Material errors.
var (
	// ErrUnknownMaterial is returned when a definition name is not registered.
	ErrUnknownMaterial = errors.New("material: unknown material")

	// ErrPassIndex is returned when a pass index is outside the material's passes.
	ErrPassIndex = errors.New("material: pass index out of range")

	// ErrEmptySource is returned when a definition has no shader source.
	ErrEmptySource = errors.New("material: shader source is empty")

	// ErrDestroyed is returned when a destroyed material is used.
	ErrDestroyed = errors.New("material: destroyed")
)

// PassDesc describes one shader pass of a material. A draw selects a pass
// by index.
type PassDesc struct {
	// Label is the debug label suffix of the pipeline.
	Label string

	// VertexEntry and FragmentEntry are the WGSL entry points.
	VertexEntry   string
	FragmentEntry string

	// Blend is the color blend state. Nil replaces the destination.
	Blend *gputypes.BlendState

	// NoColor disables the color target, for passes that only write depth.
	NoColor bool

	// DepthCompare is the depth test used when a depth attachment is bound.
	// Zero means CompareFunctionAlways.
	DepthCompare gputypes.CompareFunction

	// DepthWrite enables writing depth when a depth attachment is bound.
	DepthWrite bool
}

// Definition is everything needed to build a Material on a device.
type Definition struct {
	// Name identifies the material in logs and the definition registry.
	Name string

	// Source is the WGSL program containing every pass's entry points.
	Source string

	// Layout maps Properties onto bind group 0.
	Layout Layout

	// Passes lists the shader passes in index order.
	Passes []PassDesc
}

// Option configures material creation.
type Option func(*options)

type options struct {
	spirv bool
	label string
}

// WithSPIRV compiles the WGSL source to SPIR-V with naga before handing it
// to the device, for backends that do not accept WGSL directly.
func WithSPIRV() Option {
	return func(o *options) { o.spirv = true }
}

// WithLabel overrides the GPU debug label prefix, which defaults to the
// definition name.
func WithLabel(label string) Option {
	return func(o *options) { o.label = label }
}

type pipelineKey struct {
	pass  int
	color gputypes.TextureFormat
	depth gputypes.TextureFormat
}

// Material is a shader program with a fixed bind group layout and one
// render pipeline per (pass, color format, depth format) combination.
//
// Pipelines are created lazily on first use and cached, so one material can
// draw into the accumulation target and the primary output alike.
// Material is safe for concurrent use.
type Material struct {
	device hal.Device
	def    Definition
	label  string
	opts   []Option

	mu         sync.Mutex
	shader     hal.ShaderModule
	bindLayout hal.BindGroupLayout
	pipeLayout hal.PipelineLayout
	pipelines  map[pipelineKey]hal.RenderPipeline
	destroyed  bool
}

// New creates the shader module and layouts for def on device.
func New(device hal.Device, def Definition, opts ...Option) (*Material, error) {
	o := options{label: def.Name}
	for _, opt := range opts {
		opt(&o)
	}
	if def.Source == "" {
		return nil, fmt.Errorf("%s: %w", def.Name, ErrEmptySource)
	}

	m := &Material{
		device:    device,
		def:       def,
		label:     o.label,
		opts:      opts,
		pipelines: make(map[pipelineKey]hal.RenderPipeline),
	}
	if err := m.createLayouts(o.spirv); err != nil {
		m.Destroy()
		return nil, err
	}
	return m, nil
}

func (m *Material) createLayouts(spirv bool) error {
	src := hal.ShaderSource{WGSL: m.def.Source}
	if spirv {
		code, err := CompileSPIRV(m.def.Source)
		if err != nil {
			return fmt.Errorf("%s: %w", m.label, err)
		}
		src = hal.ShaderSource{SPIRV: code}
	}
	shader, err := m.device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  m.label + "_shader",
		Source: src,
	})
	if err != nil {
		return fmt.Errorf("compile %s shader: %w", m.label, err)
	}
	m.shader = shader

	bindLayout, err := m.device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label:   m.label + "_bind_layout",
		Entries: m.def.Layout.bindGroupLayoutEntries(),
	})
	if err != nil {
		return fmt.Errorf("create %s bind group layout: %w", m.label, err)
	}
	m.bindLayout = bindLayout

	pipeLayout, err := m.device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label:            m.label + "_pipe_layout",
		BindGroupLayouts: []hal.BindGroupLayout{m.bindLayout},
	})
	if err != nil {
		return fmt.Errorf("create %s pipeline layout: %w", m.label, err)
	}
	m.pipeLayout = pipeLayout
	return nil
}

// Name returns the definition name.
func (m *Material) Name() string { return m.def.Name }

// Label returns the GPU debug label prefix.
func (m *Material) Label() string { return m.label }

// Layout returns the property layout.
func (m *Material) Layout() Layout { return m.def.Layout }

// PassCount returns the number of shader passes.
func (m *Material) PassCount() int { return len(m.def.Passes) }

// Pass returns the description of shader pass i.
func (m *Material) Pass(i int) (PassDesc, error) {
	if i < 0 || i >= len(m.def.Passes) {
		return PassDesc{}, fmt.Errorf("%s pass %d of %d: %w", m.label, i, len(m.def.Passes), ErrPassIndex)
	}
	return m.def.Passes[i], nil
}

// BindGroupLayout returns the layout of bind group 0.
func (m *Material) BindGroupLayout() hal.BindGroupLayout { return m.bindLayout }

// Pipeline returns the render pipeline for pass drawing into a color target
// of format color and an optional depth target of format depth
// (TextureFormatUndefined for none). The pipeline is created on first use.
func (m *Material) Pipeline(pass int, color, depth gputypes.TextureFormat) (hal.RenderPipeline, error) {
	if pass < 0 || pass >= len(m.def.Passes) {
		return nil, fmt.Errorf("%s pass %d of %d: %w", m.label, pass, len(m.def.Passes), ErrPassIndex)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.destroyed {
		return nil, fmt.Errorf("%s: %w", m.label, ErrDestroyed)
	}

	key := pipelineKey{pass: pass, color: color, depth: depth}
	if p, ok := m.pipelines[key]; ok {
		return p, nil
	}
	p, err := m.createPipeline(key)
	if err != nil {
		return nil, err
	}
	m.pipelines[key] = p
	return p, nil
}

// PipelineCount returns the number of cached pipelines.
func (m *Material) PipelineCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.pipelines)
}

func (m *Material) createPipeline(key pipelineKey) (hal.RenderPipeline, error) {
	pd := m.def.Passes[key.pass]
	label := fmt.Sprintf("%s_%s_pipeline", m.label, pd.Label)

	var targets []gputypes.ColorTargetState
	if !pd.NoColor && key.color != gputypes.TextureFormatUndefined {
		targets = []gputypes.ColorTargetState{{
			Format:    key.color,
			Blend:     pd.Blend,
			WriteMask: gputypes.ColorWriteMaskAll,
		}}
	}

	var depthStencil *hal.DepthStencilState
	if key.depth != gputypes.TextureFormatUndefined {
		compare := pd.DepthCompare
		if compare == gputypes.CompareFunctionUndefined {
			compare = gputypes.CompareFunctionAlways
		}
		keep := hal.StencilFaceState{
			Compare:     gputypes.CompareFunctionAlways,
			FailOp:      hal.StencilOperationKeep,
			DepthFailOp: hal.StencilOperationKeep,
			PassOp:      hal.StencilOperationKeep,
		}
		depthStencil = &hal.DepthStencilState{
			Format:            key.depth,
			DepthWriteEnabled: pd.DepthWrite,
			DepthCompare:      compare,
			StencilFront:      keep,
			StencilBack:       keep,
		}
	}

	pipeline, err := m.device.CreateRenderPipeline(&hal.RenderPipelineDescriptor{
		Label:  label,
		Layout: m.pipeLayout,
		Vertex: hal.VertexState{
			Module:     m.shader,
			EntryPoint: pd.VertexEntry,
			Buffers:    []gputypes.VertexBufferLayout{geometry.VertexLayout()},
		},
		Fragment: &hal.FragmentState{
			Module:     m.shader,
			EntryPoint: pd.FragmentEntry,
			Targets:    targets,
		},
		Primitive: gputypes.PrimitiveState{
			Topology: gputypes.PrimitiveTopologyTriangleList,
			CullMode: gputypes.CullModeNone,
		},
		DepthStencil: depthStencil,
		Multisample: gputypes.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", label, err)
	}
	return pipeline, nil
}

// Instantiate creates an independent material from the same definition with
// its own GPU objects and pipeline cache.
func (m *Material) Instantiate(label string) (*Material, error) {
	opts := append(append([]Option(nil), m.opts...), WithLabel(label))
	return New(m.device, m.def, opts...)
}

// Destroy releases all GPU objects. Destroy is idempotent.
func (m *Material) Destroy() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.destroyed {
		return
	}
	m.destroyed = true
	if m.device == nil {
		return
	}
	for k, p := range m.pipelines {
		m.device.DestroyRenderPipeline(p)
		delete(m.pipelines, k)
	}
	if m.pipeLayout != nil {
		m.device.DestroyPipelineLayout(m.pipeLayout)
		m.pipeLayout = nil
	}
	if m.bindLayout != nil {
		m.device.DestroyBindGroupLayout(m.bindLayout)
		m.bindLayout = nil
	}
	if m.shader != nil {
		m.device.DestroyShaderModule(m.shader)
		m.shader = nil
	}
}
