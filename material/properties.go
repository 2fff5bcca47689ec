// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package material

import (
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
	"golang.org/x/image/math/f32"
)

// Texture is a sampled image bound through Properties.
type Texture struct {
	View    hal.TextureView
	Sampler hal.Sampler
}

// Properties is a transient key-value container of shader inputs handed to
// a draw call. It configures one draw without mutating the shared Material.
//
// The zero value is ready to use. Properties is not safe for concurrent use.
//
// Values are copied out when a draw is recorded, so a single Properties may
// be reused and mutated between draws of the same frame.
type Properties struct {
	floats   map[string]float32
	vectors  map[string]f32.Vec4
	matrices map[string]f32.Mat4
	textures map[string]Texture
}

// NewProperties returns an empty property set.
func NewProperties() *Properties {
	return &Properties{}
}

// SetFloat sets a scalar value.
func (p *Properties) SetFloat(name string, v float32) {
	if p.floats == nil {
		p.floats = make(map[string]float32)
	}
	p.floats[name] = v
}

// SetVector sets a four-component vector.
func (p *Properties) SetVector(name string, v f32.Vec4) {
	if p.vectors == nil {
		p.vectors = make(map[string]f32.Vec4)
	}
	p.vectors[name] = v
}

// SetVector3 sets a three-component vector; w is stored as zero.
func (p *Properties) SetVector3(name string, v f32.Vec3) {
	p.SetVector(name, f32.Vec4{v[0], v[1], v[2], 0})
}

// SetColor stores c as an RGBA vector.
func (p *Properties) SetColor(name string, c gputypes.Color) {
	p.SetVector(name, f32.Vec4{float32(c.R), float32(c.G), float32(c.B), float32(c.A)})
}

// SetMatrix sets a 4x4 matrix given in row-major order.
func (p *Properties) SetMatrix(name string, m f32.Mat4) {
	if p.matrices == nil {
		p.matrices = make(map[string]f32.Mat4)
	}
	p.matrices[name] = m
}

// SetTexture binds a texture view and sampler.
func (p *Properties) SetTexture(name string, view hal.TextureView, sampler hal.Sampler) {
	if p.textures == nil {
		p.textures = make(map[string]Texture)
	}
	p.textures[name] = Texture{View: view, Sampler: sampler}
}

// Float returns a scalar value.
func (p *Properties) Float(name string) (float32, bool) {
	v, ok := p.floats[name]
	return v, ok
}

// Vector returns a vector value.
func (p *Properties) Vector(name string) (f32.Vec4, bool) {
	v, ok := p.vectors[name]
	return v, ok
}

// Matrix returns a matrix value.
func (p *Properties) Matrix(name string) (f32.Mat4, bool) {
	v, ok := p.matrices[name]
	return v, ok
}

// Texture returns a texture binding.
func (p *Properties) Texture(name string) (Texture, bool) {
	v, ok := p.textures[name]
	return v, ok
}

// Len returns the number of stored values of all kinds.
func (p *Properties) Len() int {
	return len(p.floats) + len(p.vectors) + len(p.matrices) + len(p.textures)
}

// Clear removes all values while keeping allocated storage.
func (p *Properties) Clear() {
	clear(p.floats)
	clear(p.vectors)
	clear(p.matrices)
	clear(p.textures)
}

// Merge copies every value of other into p, overwriting duplicates.
func (p *Properties) Merge(other *Properties) {
	if other == nil {
		return
	}
	for k, v := range other.floats {
		p.SetFloat(k, v)
	}
	for k, v := range other.vectors {
		p.SetVector(k, v)
	}
	for k, v := range other.matrices {
		p.SetMatrix(k, v)
	}
	for k, v := range other.textures {
		p.SetTexture(k, v.View, v.Sampler)
	}
}
