// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package volume defines fog volumes and the registry the fog pass draws
// them from.
//
// The pass interprets nothing about a volume beyond Descriptor: whether it
// is enabled this frame, and how it writes its shader inputs. Fog is the
// stock implementation, a noise-driven sphere of fog rendered by the
// built-in volumetric fog material.
package volume

import "github.com/gogpu/fog/material"

// Descriptor is a fog volume as seen by the fog pass.
//
// Implementations are compared by interface equality, so pointer types give
// identity semantics in a Registry.
type Descriptor interface {
	// Enabled reports whether the volume is drawn this frame.
	Enabled() bool

	// Apply writes the volume's shader inputs into p. Apply is called once
	// per volume per frame, right before its draw is recorded.
	Apply(p *material.Properties)
}

// Shared fog material property names.
const (
	PropCornersMatrix                = "camera_near_plane_corners"
	PropCameraPosition               = "camera_position"
	PropBoundingSphere               = "fog_bounding_sphere"
	PropColor                        = "fog_color"
	PropDirectionalColor             = "fog_directional_color"
	PropSpeed                        = "fog_speed"
	PropTiling                       = "fog_tiling"
	PropDetailTiling                 = "fog_detail_tiling"
	PropLightDirection               = "main_light_direction"
	PropLightColor                   = "main_light_color"
	PropMaxY                         = "fog_max_y"
	PropFadeY                        = "fog_fade_y"
	PropFadeEdge                     = "fog_fade_edge"
	PropProximityFade                = "fog_proximity_fade"
	PropDensity                      = "fog_density"
	PropExponent                     = "fog_exponent"
	PropDetailExponent               = "fog_detail_exponent"
	PropCutOff                       = "fog_cut_off"
	PropDetailStrength               = "fog_detail_strength"
	PropDirectionalFallExponent      = "fog_directional_fall_exponent"
	PropLightContribution            = "fog_light_contribution"
	PropDirectionalLightContribution = "fog_directional_light_contribution"
	PropShadowStrength               = "fog_shadow_strength"
	PropShadowReverseStrength        = "fog_shadow_reverse_strength"
	PropDetailSpeedModifier          = "fog_detail_speed_modifier"
	PropTime                         = "time"
)
