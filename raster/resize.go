// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package raster

// ResizeTracker reports when the viewport resolution differs from the last
// one it saw. The zero value reports a change on its first call.
type ResizeTracker struct {
	width, height int
	seen          bool
}

// HasResolutionChanged records width and height and reports whether they
// differ from the previous call.
func (r *ResizeTracker) HasResolutionChanged(width, height int) bool {
	changed := !r.seen || width != r.width || height != r.height
	r.width, r.height, r.seen = width, height, true
	return changed
}

// Reset forgets the stored resolution, so the next call reports a change.
func (r *ResizeTracker) Reset() {
	*r = ResizeTracker{}
}
