// Package fog composites volumetric fog onto a host renderer's primary
// output.
//
// # Overview
//
// A Pass accumulates every enabled fog volume of a volume.Registry into an
// offscreen, double-buffered RGBA image and blends the result onto the
// primary output once per frame. The pass owns its offscreen targets and
// reallocates them when the viewport size changes; the host owns the
// primary output and the volumes.
//
// # Quick Start
//
//	feature, err := fog.NewFeature(provider)
//	if err != nil {
//	    return err
//	}
//	defer feature.Destroy()
//
//	feature.Registry().Register(volume.NewFog(f32.Vec3{0, 5, -20}))
//
//	var passes fog.PassList
//	feature.AddRenderPasses(&passes, fog.Viewport{
//	    Width:   1920,
//	    Height:  1080,
//	    Primary: true,
//	    Output:  out,
//	    Camera:  camera.DefaultView(16.0 / 9.0),
//	})
//	err = passes.Run()
//
// # Frame Lifecycle
//
// Setup takes a snapshot of the enabled volumes, evaluates the pass state
// and reallocates the targets on a resize. Execute clears the back buffer,
// draws one full-screen quad per snapshotted volume, blends the back buffer
// onto the primary output, submits and swaps. A pass with no enabled
// volumes is idle and records nothing.
//
// A failed reallocation is logged and degrades the frame to a no-op; the
// next frame retries. Draw errors are returned to the host unchanged.
//
// # Architecture
//
// The package is organized into:
//   - target: offscreen and double-buffered render targets
//   - geometry: full-screen primitives, custom meshes, glTF loading
//   - material: property binding, pipelines, built-in blit materials
//   - raster: the draw helper, frames and the primary output
//   - volume: fog volumes and their registry
//   - camera: frustum corners for screen-space ray reconstruction
package fog
