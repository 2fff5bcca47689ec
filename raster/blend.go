// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package raster

import (
	"fmt"

	"github.com/gogpu/fog/material"
)

// BlendMode selects how a composite combines a source image with the
// primary output.
type BlendMode int

const (
	// Copy replaces the output with the source.
	Copy BlendMode = iota

	// Blend alpha-blends the source over the output.
	Blend

	// DepthAware alpha-blends the source over the output, testing the
	// source depth against the output depth.
	DepthAware
)

// String returns the string representation of BlendMode.
func (m BlendMode) String() string {
	switch m {
	case Copy:
		return "Copy"
	case Blend:
		return "Blend"
	case DepthAware:
		return "DepthAware"
	default:
		return fmt.Sprintf("Unknown(%d)", int(m))
	}
}

// MaterialName returns the built-in material used for the mode.
func (m BlendMode) MaterialName() string {
	switch m {
	case Copy:
		return material.Copy
	case Blend:
		return material.Blend
	default:
		return material.DepthAwareComposite
	}
}
