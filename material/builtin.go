// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package material

import (
	_ "embed"
	"fmt"
	"slices"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

//go:embed shaders/blit.wgsl
var blitShaderSource string

//go:embed shaders/blit_depth_copy.wgsl
var blitDepthCopyShaderSource string

//go:embed shaders/blit_transparency_depth_copy.wgsl
var blitDepthCompositeShaderSource string

// Names of the built-in utility materials.
const (
	// Copy replaces the target with the source image.
	Copy = "blit_copy"

	// Blend alpha-blends the source image over the target.
	Blend = "blit_blend"

	// DepthCopy writes the source depth image into the depth target.
	DepthCopy = "blit_depth_copy"

	// DepthAwareComposite blends the source color over the target and tests
	// against the source depth. It is the default when no material is given.
	DepthAwareComposite = "blit_transparency_depth_copy"
)

// Property names used by the built-in materials.
const (
	// SourceTexture is the color input of every blit material.
	SourceTexture = "source"

	// SourceDepthTexture is the depth input of the depth materials.
	SourceDepthTexture = "source_depth"

	// ModelMatrix transforms custom meshes in the depth-aware composite.
	ModelMatrix = "model"
)

// definitions resolves material definitions by name. The built-in utility
// materials are registered at init; hosts may register their own.
var definitions = gpucontext.NewRegistry[*Definition]()

func init() {
	definitions.Register(Copy, copyDefinition)
	definitions.Register(Blend, blendDefinition)
	definitions.Register(DepthCopy, depthCopyDefinition)
	definitions.Register(DepthAwareComposite, depthCompositeDefinition)
}

// Register adds or replaces a named definition factory.
func Register(name string, factory func() *Definition) {
	definitions.Register(name, factory)
}

// Lookup returns a fresh copy of the named definition.
func Lookup(name string) (*Definition, error) {
	def := definitions.Get(name)
	if def == nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownMaterial, name)
	}
	return def, nil
}

// Names returns the registered definition names in sorted order.
func Names() []string {
	names := definitions.Available()
	slices.Sort(names)
	return names
}

// BuiltinNames returns the names of the four utility materials.
func BuiltinNames() []string {
	return []string{Copy, Blend, DepthCopy, DepthAwareComposite}
}

func blitLayout() Layout {
	return Layout{Textures: []TextureSlot{{Name: SourceTexture}}}
}

func copyDefinition() *Definition {
	return &Definition{
		Name:   Copy,
		Source: blitShaderSource,
		Layout: blitLayout(),
		Passes: []PassDesc{{Label: "copy", VertexEntry: "vs_main", FragmentEntry: "fs_main"}},
	}
}

func blendDefinition() *Definition {
	blend := gputypes.BlendStateAlpha()
	return &Definition{
		Name:   Blend,
		Source: blitShaderSource,
		Layout: blitLayout(),
		Passes: []PassDesc{{Label: "blend", VertexEntry: "vs_main", FragmentEntry: "fs_main", Blend: &blend}},
	}
}

func depthCopyDefinition() *Definition {
	return &Definition{
		Name:   DepthCopy,
		Source: blitDepthCopyShaderSource,
		Layout: Layout{Textures: []TextureSlot{{Name: SourceDepthTexture, Depth: true}}},
		Passes: []PassDesc{{
			Label:         "depth_copy",
			VertexEntry:   "vs_main",
			FragmentEntry: "fs_main",
			NoColor:       true,
			DepthCompare:  gputypes.CompareFunctionAlways,
			DepthWrite:    true,
		}},
	}
}

func depthCompositeDefinition() *Definition {
	blend := gputypes.BlendStateAlpha()
	pass := func(label, vertex string) PassDesc {
		return PassDesc{
			Label:         label,
			VertexEntry:   vertex,
			FragmentEntry: "fs_main",
			Blend:         &blend,
			DepthCompare:  gputypes.CompareFunctionLessEqual,
			DepthWrite:    true,
		}
	}
	return &Definition{
		Name:   DepthAwareComposite,
		Source: blitDepthCompositeShaderSource,
		Layout: Layout{
			Uniforms: []Uniform{{Name: ModelMatrix, Kind: KindMatrix}},
			Textures: []TextureSlot{
				{Name: SourceTexture},
				{Name: SourceDepthTexture, Depth: true},
			},
		},
		// Pass index matches geometry.Shape: triangle, quad, custom mesh.
		Passes: []PassDesc{
			pass("triangle", "vs_fullscreen"),
			pass("quad", "vs_fullscreen"),
			pass("mesh", "vs_mesh"),
		},
	}
}

// Library holds the built-in utility materials created on one device.
type Library struct {
	materials map[string]*Material
}

// NewLibrary resolves the four utility materials by name and creates them
// on device.
func NewLibrary(device hal.Device, opts ...Option) (*Library, error) {
	lib := &Library{materials: make(map[string]*Material, 4)}
	for _, name := range BuiltinNames() {
		def, err := Lookup(name)
		if err != nil {
			lib.Destroy()
			return nil, err
		}
		m, err := New(device, *def, opts...)
		if err != nil {
			lib.Destroy()
			return nil, err
		}
		lib.materials[name] = m
	}
	return lib, nil
}

// Get returns the named utility material, or nil if it is not part of the
// library.
func (l *Library) Get(name string) *Material {
	return l.materials[name]
}

// Destroy destroys every material in the library.
func (l *Library) Destroy() {
	for name, m := range l.materials {
		m.Destroy()
		delete(l.materials, name)
	}
}
