// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package raster

import "errors"

var (
	// ErrInvalidDrawState is returned when a draw is requested against a
	// target or output that cannot receive it, such as an unallocated
	// target, a missing depth view, or an unbound texture input.
	ErrInvalidDrawState = errors.New("raster: invalid draw state")

	// ErrFrameClosed is returned when recording into a frame that has been
	// submitted or released.
	ErrFrameClosed = errors.New("raster: frame closed")

	// ErrDestroyed is returned when a destroyed helper is used.
	ErrDestroyed = errors.New("raster: helper destroyed")

	// ErrNilDevice is returned by NewHelper without a device or queue.
	ErrNilDevice = errors.New("raster: nil device or queue")
)
