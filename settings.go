package fog

import (
	"github.com/gogpu/fog/material"
	"github.com/gogpu/fog/target"
	"github.com/gogpu/gputypes"
)

// DefaultTargetName is the logical name of the accumulation targets.
const DefaultTargetName = "_BufferedVolumetricFogRenderTarget"

// Settings configures a Pass.
type Settings struct {
	// Event is where the pass runs in the host frame.
	Event PassEvent

	// Material draws each volume into the accumulation target. Nil uses
	// the built-in volumetric fog material. The pass does not destroy a
	// material it was given.
	Material *material.Material

	// InstantiateMaterial draws with a private copy of Material so that
	// per-pass pipeline state is not shared with other users.
	InstantiateMaterial bool

	// Format, Filter and Wrap describe the accumulation targets.
	Format gputypes.TextureFormat
	Filter gputypes.FilterMode
	Wrap   gputypes.AddressMode

	// ClearColor is written to the back buffer at the start of each frame.
	ClearColor gputypes.Color

	// TargetName is the logical name of the double buffer.
	TargetName string
}

// DefaultSettings returns settings for an RGBA8, bilinear, clamped
// accumulation target cleared to transparent black, running before
// post-processing.
func DefaultSettings() Settings {
	return Settings{
		Event:      BeforeRenderingPostProcessing,
		Format:     gputypes.TextureFormatRGBA8Unorm,
		Filter:     gputypes.FilterModeLinear,
		Wrap:       gputypes.AddressModeClampToEdge,
		ClearColor: gputypes.Color{},
		TargetName: DefaultTargetName,
	}
}

// descriptor returns the accumulation target descriptor for a viewport.
func (s Settings) descriptor(width, height int) target.Descriptor {
	return target.Descriptor{
		Width:  width,
		Height: height,
		Format: s.Format,
		Filter: s.Filter,
		Wrap:   s.Wrap,
	}
}
