package fog

import (
	"github.com/gogpu/fog/material"
	"github.com/gogpu/fog/raster"
	"github.com/gogpu/fog/volume"
)

// Option configures a Pass or Feature during creation.
//
// Example:
//
//	pass, err := fog.NewPass(device, queue,
//	    fog.WithRegistry(volumes),
//	    fog.WithEvent(fog.AfterRenderingTransparents),
//	)
type Option func(*passOptions)

type passOptions struct {
	settings Settings
	registry *volume.Registry
	helper   *raster.Helper
}

func defaultOptions() passOptions {
	return passOptions{settings: DefaultSettings()}
}

// WithSettings replaces all settings.
func WithSettings(s Settings) Option {
	return func(o *passOptions) {
		o.settings = s
	}
}

// WithRegistry draws the volumes of an existing registry. Without it the
// pass creates its own.
func WithRegistry(r *volume.Registry) Option {
	return func(o *passOptions) {
		o.registry = r
	}
}

// WithHelper shares a raster helper between passes. The pass does not
// destroy a helper it was given.
func WithHelper(h *raster.Helper) Option {
	return func(o *passOptions) {
		o.helper = h
	}
}

// WithEvent sets the pass event.
func WithEvent(e PassEvent) Option {
	return func(o *passOptions) {
		o.settings.Event = e
	}
}

// WithMaterial sets the fog material. When instantiate is true the pass
// draws with its own copy.
func WithMaterial(m *material.Material, instantiate bool) Option {
	return func(o *passOptions) {
		o.settings.Material = m
		o.settings.InstantiateMaterial = instantiate
	}
}
