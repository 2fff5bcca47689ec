// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package material

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/gogpu/gputypes"
)

// Kind is the type of a uniform field.
type Kind int

const (
	// KindFloat is a scalar, padded to a vec4<f32> slot.
	KindFloat Kind = iota

	// KindVector is a vec4<f32>.
	KindVector

	// KindMatrix is a mat4x4<f32>, uploaded column-major.
	KindMatrix
)

// String returns the string representation of Kind.
func (k Kind) String() string {
	switch k {
	case KindFloat:
		return "Float"
	case KindVector:
		return "Vector"
	case KindMatrix:
		return "Matrix"
	default:
		return fmt.Sprintf("Unknown(%d)", int(k))
	}
}

func (k Kind) size() uint64 {
	if k == KindMatrix {
		return 64
	}
	return 16
}

// Uniform is one field of a material's uniform block.
type Uniform struct {
	Name string
	Kind Kind
}

// TextureSlot is one sampled texture input.
type TextureSlot struct {
	Name string

	// Depth marks a depth texture, bound with a depth sample type and a
	// non-filtering sampler.
	Depth bool
}

// Layout describes how Properties map onto a material's bind group 0.
//
// Binding 0 is a uniform buffer holding Uniforms in order, every field
// aligned to 16 bytes. Texture slot i uses binding 1+2i for the texture and
// 2+2i for its sampler.
type Layout struct {
	Uniforms []Uniform
	Textures []TextureSlot
}

// UniformSize returns the size in bytes of the packed uniform block, or 0
// when the layout has no uniforms.
func (l Layout) UniformSize() uint64 {
	var size uint64
	for _, u := range l.Uniforms {
		size += u.Kind.size()
	}
	return size
}

// Offset returns the byte offset of the named uniform.
func (l Layout) Offset(name string) (uint64, bool) {
	var off uint64
	for _, u := range l.Uniforms {
		if u.Name == name {
			return off, true
		}
		off += u.Kind.size()
	}
	return 0, false
}

// Pack encodes the uniform values of p in layout order. Values missing from
// p are zero.
func (l Layout) Pack(p *Properties) []byte {
	if p == nil {
		p = &Properties{}
	}
	buf := make([]byte, 0, l.UniformSize())
	putF := func(v float32) {
		buf = binary.LittleEndian.AppendUint32(buf, math.Float32bits(v))
	}
	for _, u := range l.Uniforms {
		switch u.Kind {
		case KindFloat:
			v, _ := p.Float(u.Name)
			putF(v)
			putF(0)
			putF(0)
			putF(0)
		case KindVector:
			v, _ := p.Vector(u.Name)
			for _, c := range v {
				putF(c)
			}
		case KindMatrix:
			m, _ := p.Matrix(u.Name)
			for c := 0; c < 4; c++ {
				for r := 0; r < 4; r++ {
					putF(m[4*r+c])
				}
			}
		}
	}
	return buf
}

// TextureBinding returns the texture and sampler binding numbers of slot i.
func TextureBinding(i int) (texture, sampler uint32) {
	//nolint:gosec // G115: slot counts are tiny
	return uint32(1 + 2*i), uint32(2 + 2*i)
}

func (l Layout) bindGroupLayoutEntries() []gputypes.BindGroupLayoutEntry {
	var entries []gputypes.BindGroupLayoutEntry
	if len(l.Uniforms) > 0 {
		entries = append(entries, gputypes.BindGroupLayoutEntry{
			Binding:    0,
			Visibility: gputypes.ShaderStageVertex | gputypes.ShaderStageFragment,
			Buffer: &gputypes.BufferBindingLayout{
				Type:           gputypes.BufferBindingTypeUniform,
				MinBindingSize: l.UniformSize(),
			},
		})
	}
	for i, slot := range l.Textures {
		texBinding, samplerBinding := TextureBinding(i)
		sampleType := gputypes.TextureSampleTypeFloat
		samplerType := gputypes.SamplerBindingTypeFiltering
		if slot.Depth {
			sampleType = gputypes.TextureSampleTypeDepth
			samplerType = gputypes.SamplerBindingTypeNonFiltering
		}
		entries = append(entries,
			gputypes.BindGroupLayoutEntry{
				Binding:    texBinding,
				Visibility: gputypes.ShaderStageFragment,
				Texture: &gputypes.TextureBindingLayout{
					SampleType:    sampleType,
					ViewDimension: gputypes.TextureViewDimension2D,
				},
			},
			gputypes.BindGroupLayoutEntry{
				Binding:    samplerBinding,
				Visibility: gputypes.ShaderStageFragment,
				Sampler:    &gputypes.SamplerBindingLayout{Type: samplerType},
			},
		)
	}
	return entries
}
