package fog

import (
	"errors"
	"slices"
)

// RenderPass is a unit of work a host runs at a PassEvent.
type RenderPass interface {
	Event() PassEvent
	Setup(v Viewport) error
	Execute(v Viewport) error
}

// PassQueue collects the passes of one frame.
type PassQueue interface {
	EnqueuePass(p RenderPass, v Viewport)
}

type queuedPass struct {
	pass RenderPass
	view Viewport
}

// PassList is a minimal PassQueue for hosts without their own pass
// scheduling. It is not safe for concurrent use.
type PassList struct {
	passes []queuedPass
}

// EnqueuePass appends p for viewport v.
func (l *PassList) EnqueuePass(p RenderPass, v Viewport) {
	l.passes = append(l.passes, queuedPass{pass: p, view: v})
}

// Len returns the number of queued passes.
func (l *PassList) Len() int { return len(l.passes) }

// Reset drops the queued passes.
func (l *PassList) Reset() { l.passes = l.passes[:0] }

// Run sets up every queued pass, then executes them in ascending event
// order. Passes with equal events keep their enqueue order. The list is
// empty afterwards.
//
// A Setup error stops the frame before anything executes. Execute errors
// do not stop later passes and are joined.
func (l *PassList) Run() error {
	defer l.Reset()
	slices.SortStableFunc(l.passes, func(a, b queuedPass) int {
		return int(a.pass.Event()) - int(b.pass.Event())
	})
	for _, q := range l.passes {
		if err := q.pass.Setup(q.view); err != nil {
			return err
		}
	}
	var errs []error
	for _, q := range l.passes {
		if err := q.pass.Execute(q.view); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
