// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package raster

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// Output is the host's primary render output for the current frame. The
// views belong to the host; the helper only records draws into them.
type Output struct {
	Color       hal.TextureView
	ColorFormat gputypes.TextureFormat

	// Depth is optional. Depth-aware composites and depth copies need it.
	Depth       hal.TextureView
	DepthFormat gputypes.TextureFormat

	Width  int
	Height int
}

func (o Output) validateColor() error {
	if o.Color == nil || o.ColorFormat == gputypes.TextureFormatUndefined {
		return fmt.Errorf("%w: primary output has no color view", ErrInvalidDrawState)
	}
	if o.Width <= 0 || o.Height <= 0 {
		return fmt.Errorf("%w: primary output is %dx%d", ErrInvalidDrawState, o.Width, o.Height)
	}
	return nil
}

func (o Output) validateDepth() error {
	if o.Depth == nil || o.DepthFormat == gputypes.TextureFormatUndefined {
		return fmt.Errorf("%w: primary output has no depth view", ErrInvalidDrawState)
	}
	if o.Width <= 0 || o.Height <= 0 {
		return fmt.Errorf("%w: primary output is %dx%d", ErrInvalidDrawState, o.Width, o.Height)
	}
	return nil
}

func (o Output) depthFormat() gputypes.TextureFormat {
	if o.Depth == nil {
		return gputypes.TextureFormatUndefined
	}
	return o.DepthFormat
}
