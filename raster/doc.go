// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package raster records full-screen and mesh draws with materials into
// offscreen targets and onto the host's primary output.
//
// Work is recorded into a Frame and executed when the frame is submitted.
// Each draw captures its material properties at record time into a
// uniform buffer and bind group owned by the frame, so one Properties value
// may be mutated between draws of the same frame. Those transient
// resources are retired once the queue reports the submission complete.
// Helper.Defer extends the same rule to targets and meshes replaced
// between frames.
//
// A typical frame:
//
//	f, err := helper.BeginFrame("fog")
//	if err != nil {
//	    return err
//	}
//	defer f.Release()
//	err = helper.RasterizeIntoTarget(f, raster.Draw{Color: back, Material: m, Properties: props})
//	...
//	err = helper.CompositeOntoPrimaryOutput(f, back, raster.Blend, out, nil)
//	...
//	return f.Submit()
package raster
