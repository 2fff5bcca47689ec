// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package volume

import (
	_ "embed"
	"math"

	"github.com/gogpu/fog/material"
	"github.com/gogpu/gputypes"
	"golang.org/x/image/math/f32"
)

//go:embed shaders/volumetric_fog.wgsl
var fogShaderSource string

// FogMaterial is the registered name of the volumetric fog material.
const FogMaterial = "volumetric_fog"

func init() {
	material.Register(FogMaterial, FogDefinition)
}

// Fog is a spherical fog volume.
//
// Fields are read when the pass calls Apply, so the owner may change them
// between frames. Fog is not safe for concurrent mutation during a frame.
type Fog struct {
	// Active toggles the volume without removing it from a Registry.
	Active bool

	// Position is the world-space center of the bounding sphere.
	Position f32.Vec3

	// Radius of the bounding sphere.
	Radius float32

	// MaxY is the world height above which no fog occurs.
	MaxY float32

	// YFade is the distance over which the fog fades out below MaxY.
	YFade float32

	// EdgeFade is the distance over which the fog fades out toward the
	// sphere's surface.
	EdgeFade float32

	// ProximityFade is the distance from the camera at which the fog
	// reaches full intensity.
	ProximityFade float32

	Density        float32
	Exponent       float32
	DetailExponent float32

	// ShapeMask is the noise value below which there is no fog.
	ShapeMask float32

	// DetailStrength mixes primary and detail noise: 0 is all primary, 1 is
	// all detail.
	DetailStrength float32

	// Color is used facing away from the main light, DirectionalColor facing
	// toward it. Alpha scales density.
	Color            gputypes.Color
	DirectionalColor gputypes.Color

	DirectionalFalloff           float32
	LightContribution            float32
	DirectionalLightContribution float32

	// Shadow strengths are passed through for materials that sample a
	// shadow map. The built-in material has no shadow input.
	ShadowStrength        float32
	ShadowReverseStrength float32

	// Direction and Speed animate the noise. Direction need not be
	// normalized.
	Direction           f32.Vec3
	Speed               float32
	DetailSpeedModifier float32

	Tiling       f32.Vec3
	DetailTiling f32.Vec3
}

// NewFog returns an active fog volume at position with default parameters.
func NewFog(position f32.Vec3) *Fog {
	white := gputypes.Color{R: 1, G: 1, B: 1, A: 1}
	return &Fog{
		Active:                       true,
		Position:                     position,
		Radius:                       10,
		MaxY:                         200,
		YFade:                        50,
		EdgeFade:                     50,
		ProximityFade:                15,
		Density:                      1.2,
		Exponent:                     1,
		DetailExponent:               1,
		ShapeMask:                    0.25,
		DetailStrength:               0.4,
		Color:                        white,
		DirectionalColor:             white,
		DirectionalFalloff:           2,
		LightContribution:            1,
		DirectionalLightContribution: 1,
		ShadowStrength:               1,
		ShadowReverseStrength:        0.3,
		Direction:                    f32.Vec3{1, 0, 0},
		Speed:                        30,
		DetailSpeedModifier:          1.5,
		Tiling:                       f32.Vec3{0.0015, 0.0015, 0.0015},
		DetailTiling:                 f32.Vec3{0.001, 0.001, 0.001},
	}
}

// Enabled implements Descriptor.
func (f *Fog) Enabled() bool { return f.Active }

// Apply implements Descriptor.
func (f *Fog) Apply(p *material.Properties) {
	p.SetVector(PropBoundingSphere, f32.Vec4{f.Position[0], f.Position[1], f.Position[2], f.Radius})
	p.SetFloat(PropMaxY, f.MaxY)
	p.SetFloat(PropFadeY, f.YFade)
	p.SetFloat(PropFadeEdge, f.EdgeFade)
	p.SetFloat(PropProximityFade, f.ProximityFade)
	p.SetFloat(PropDensity, f.Density)
	p.SetFloat(PropExponent, f.Exponent)
	p.SetFloat(PropDetailExponent, f.DetailExponent)
	p.SetFloat(PropCutOff, f.ShapeMask)
	p.SetFloat(PropDetailStrength, f.DetailStrength)
	p.SetColor(PropColor, f.Color)
	p.SetColor(PropDirectionalColor, f.DirectionalColor)
	p.SetFloat(PropDirectionalFallExponent, f.DirectionalFalloff)
	p.SetFloat(PropShadowStrength, f.ShadowStrength)
	p.SetFloat(PropShadowReverseStrength, f.ShadowReverseStrength)
	p.SetFloat(PropLightContribution, f.LightContribution)
	p.SetFloat(PropDirectionalLightContribution, f.DirectionalLightContribution)
	p.SetVector3(PropTiling, f.Tiling)
	p.SetVector3(PropDetailTiling, f.DetailTiling)
	p.SetVector3(PropSpeed, scale(normalize(f.Direction), f.Speed))
	p.SetFloat(PropDetailSpeedModifier, f.DetailSpeedModifier)
}

// FogLayout returns the uniform layout of the volumetric fog material.
// Field order matches the shader's uniform block.
func FogLayout() material.Layout {
	vectors := []string{
		PropCameraPosition,
		PropBoundingSphere,
		PropColor,
		PropDirectionalColor,
		PropSpeed,
		PropTiling,
		PropDetailTiling,
		PropLightDirection,
		PropLightColor,
	}
	floats := []string{
		PropMaxY,
		PropFadeY,
		PropFadeEdge,
		PropProximityFade,
		PropDensity,
		PropExponent,
		PropDetailExponent,
		PropCutOff,
		PropDetailStrength,
		PropDirectionalFallExponent,
		PropLightContribution,
		PropDirectionalLightContribution,
		PropShadowStrength,
		PropShadowReverseStrength,
		PropDetailSpeedModifier,
		PropTime,
	}

	uniforms := make([]material.Uniform, 0, 1+len(vectors)+len(floats))
	uniforms = append(uniforms, material.Uniform{Name: PropCornersMatrix, Kind: material.KindMatrix})
	for _, name := range vectors {
		uniforms = append(uniforms, material.Uniform{Name: name, Kind: material.KindVector})
	}
	for _, name := range floats {
		uniforms = append(uniforms, material.Uniform{Name: name, Kind: material.KindFloat})
	}
	return material.Layout{Uniforms: uniforms}
}

// FogDefinition returns the volumetric fog material definition. Its single
// pass alpha-blends each volume over what is already accumulated.
func FogDefinition() *material.Definition {
	blend := gputypes.BlendStateAlpha()
	return &material.Definition{
		Name:   FogMaterial,
		Source: fogShaderSource,
		Layout: FogLayout(),
		Passes: []material.PassDesc{{
			Label:         "accumulate",
			VertexEntry:   "vs_main",
			FragmentEntry: "fs_main",
			Blend:         &blend,
		}},
	}
}

func normalize(v f32.Vec3) f32.Vec3 {
	l := float32(math.Sqrt(float64(v[0]*v[0] + v[1]*v[1] + v[2]*v[2])))
	if l == 0 {
		return f32.Vec3{}
	}
	return f32.Vec3{v[0] / l, v[1] / l, v[2] / l}
}

func scale(v f32.Vec3, s float32) f32.Vec3 {
	return f32.Vec3{v[0] * s, v[1] * s, v[2] * s}
}
