// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package volume

import (
	"github.com/gogpu/fog/material"
	"github.com/gogpu/gputypes"
	"golang.org/x/image/math/f32"
)

// Light is the main directional light the fog is shaded against.
type Light struct {
	// Direction the light travels in, world space.
	Direction f32.Vec3
	Color     gputypes.Color
}

// DefaultLight is a white light shining mostly downward.
func DefaultLight() Light {
	return Light{
		Direction: f32.Vec3{-0.3, -1, -0.2},
		Color:     gputypes.Color{R: 1, G: 1, B: 1, A: 1},
	}
}

// Apply writes the light into p. The zero Light applies DefaultLight.
func (l Light) Apply(p *material.Properties) {
	if l == (Light{}) {
		l = DefaultLight()
	}
	p.SetVector3(PropLightDirection, normalize(l.Direction))
	p.SetColor(PropLightColor, l.Color)
}
