// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package volume

import (
	"slices"
	"sync"
)

// Registry is the ordered set of fog volumes a pass draws.
//
// Registry is safe for concurrent use. The pass reads it once per frame
// through Enabled, so changes made while a frame is being drawn take effect
// on the next frame.
type Registry struct {
	mu      sync.Mutex
	volumes []Descriptor
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Register adds d at the end of the draw order. Registering a volume that
// is already present moves it to the end, so it appears exactly once.
// The dynamic type of d must be comparable.
func (r *Registry) Register(d Descriptor) {
	if d == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.volumes = slices.DeleteFunc(r.volumes, func(v Descriptor) bool { return v == d })
	r.volumes = append(r.volumes, d)
}

// Unregister removes d. Removing a volume that is not present does nothing.
func (r *Registry) Unregister(d Descriptor) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.volumes = slices.DeleteFunc(r.volumes, func(v Descriptor) bool { return v == d })
}

// Len returns the number of registered volumes, enabled or not.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.volumes)
}

// Snapshot returns a copy of all registered volumes in draw order.
func (r *Registry) Snapshot() []Descriptor {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.volumes)
}

// Enabled returns the volumes enabled right now, in draw order. The result
// is a copy the caller owns.
func (r *Registry) Enabled() []Descriptor {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Descriptor
	for _, v := range r.volumes {
		if v.Enabled() {
			out = append(out, v)
		}
	}
	return out
}

// AnyEnabled reports whether at least one registered volume is enabled.
func (r *Registry) AnyEnabled() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.ContainsFunc(r.volumes, Descriptor.Enabled)
}
