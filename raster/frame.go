// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package raster

import (
	"fmt"

	"github.com/gogpu/wgpu/hal"
)

// drawResources holds the per-draw GPU objects that capture a draw's
// properties at record time.
type drawResources struct {
	uniformBuf hal.Buffer
	bindGroup  hal.BindGroup
}

func (r *drawResources) destroy(device hal.Device) {
	if r.bindGroup != nil {
		device.DestroyBindGroup(r.bindGroup)
	}
	if r.uniformBuf != nil {
		device.DestroyBuffer(r.uniformBuf)
	}
}

// inflight is a submitted frame whose resources wait for the GPU.
// deferred holds destroy funcs of objects the frame may still reference.
type inflight struct {
	index     uint64
	cmdBuf    hal.CommandBuffer
	resources []drawResources
	deferred  []func()
}

// Frame records the draws of one frame into a single command encoder.
//
// A Frame is not safe for concurrent use. Release must be called exactly
// once the frame is done with, submitted or not; extra calls are no-ops.
type Frame struct {
	helper  *Helper
	label   string
	encoder hal.CommandEncoder

	resources []drawResources
	draws     int

	index     uint64
	submitted bool
	closed    bool
}

// BeginFrame starts recording a frame. Completed earlier frames are
// retired first.
func (h *Helper) BeginFrame(label string) (*Frame, error) {
	if h.isDestroyed() {
		return nil, ErrDestroyed
	}
	h.Collect()

	encoder, err := h.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{Label: label + "_encoder"})
	if err != nil {
		return nil, fmt.Errorf("create command encoder: %w", err)
	}
	if err := encoder.BeginEncoding(label); err != nil {
		return nil, fmt.Errorf("begin encoding: %w", err)
	}
	return &Frame{helper: h, label: label, encoder: encoder}, nil
}

// Label returns the frame's debug label.
func (f *Frame) Label() string { return f.label }

// Encoder returns the command encoder for recording work that is not a
// helper draw, such as target clears. It is nil after Submit or Release.
func (f *Frame) Encoder() hal.CommandEncoder {
	if f.closed {
		return nil
	}
	return f.encoder
}

// Draws returns the number of draws recorded so far.
func (f *Frame) Draws() int { return f.draws }

// Submitted reports whether the frame was submitted.
func (f *Frame) Submitted() bool { return f.submitted }

// SubmissionIndex returns the queue submission index, or 0 before Submit.
func (f *Frame) SubmissionIndex() uint64 { return f.index }

func (f *Frame) checkOpen() error {
	if f.closed {
		return fmt.Errorf("%s: %w", f.label, ErrFrameClosed)
	}
	return nil
}

func (f *Frame) track(r drawResources) {
	f.resources = append(f.resources, r)
}

// Submit finishes recording and submits the frame to the queue. The
// frame's transient resources stay alive until the queue reports the
// submission complete.
func (f *Frame) Submit() error {
	if err := f.checkOpen(); err != nil {
		return err
	}
	h := f.helper

	cmdBuf, err := f.encoder.EndEncoding()
	if err != nil {
		f.discard()
		return fmt.Errorf("%s: end encoding: %w", f.label, err)
	}
	index, err := h.queue.Submit([]hal.CommandBuffer{cmdBuf})
	if err != nil {
		h.device.FreeCommandBuffer(cmdBuf)
		f.discard()
		return fmt.Errorf("%s: submit: %w", f.label, err)
	}

	f.index = index
	f.submitted = true
	f.closed = true
	h.enqueue(inflight{index: index, cmdBuf: cmdBuf, resources: f.resources})
	f.resources = nil

	Logger().Debug("raster: frame submitted",
		"frame", f.label,
		"index", index,
		"draws", f.draws,
	)
	return nil
}

// Release ends the frame. An unsubmitted frame discards its recording and
// destroys its resources at once, since the GPU never saw them. A
// submitted frame leaves retirement to the helper.
func (f *Frame) Release() {
	if !f.closed {
		f.encoder.DiscardEncoding()
		f.discard()
	}
	f.helper.Collect()
}

func (f *Frame) discard() {
	for i := range f.resources {
		f.resources[i].destroy(f.helper.device)
	}
	f.resources = nil
	f.closed = true
}
