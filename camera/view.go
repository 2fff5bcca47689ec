// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package camera describes the viewing frustum of the camera the fog is
// composited for.
//
// The fog shader reconstructs view rays from the world-space corners of the
// near clip plane, so the package's main job is producing those corners in a
// stable order: upper-left, upper-right, lower-left, lower-right.
package camera

import (
	"errors"
	"fmt"
	"math"

	"golang.org/x/image/math/f32"
)

// ErrInvalidView is returned by Validate for a degenerate frustum.
var ErrInvalidView = errors.New("camera: invalid view")

// Corner indices into the arrays returned by the corner methods.
const (
	UpperLeft = iota
	UpperRight
	LowerLeft
	LowerRight
)

// View is a perspective camera in a right-handed world. The camera looks
// along Forward with Up pointing toward the top of the image.
//
// Zero Forward and Up vectors fall back to -Z and +Y.
type View struct {
	Position f32.Vec3
	Forward  f32.Vec3
	Up       f32.Vec3

	// FieldOfView is the vertical field of view in degrees.
	FieldOfView float32

	// Aspect is width divided by height.
	Aspect float32

	Near float32
	Far  float32
}

// DefaultView returns a camera at the origin looking down -Z with a 60
// degree vertical field of view.
func DefaultView(aspect float32) View {
	return View{
		Forward:     f32.Vec3{0, 0, -1},
		Up:          f32.Vec3{0, 1, 0},
		FieldOfView: 60,
		Aspect:      aspect,
		Near:        0.3,
		Far:         1000,
	}
}

// Validate reports whether the view describes a usable frustum.
func (v View) Validate() error {
	switch {
	case v.FieldOfView <= 0 || v.FieldOfView >= 180:
		return fmt.Errorf("%w: field of view %v", ErrInvalidView, v.FieldOfView)
	case v.Aspect <= 0:
		return fmt.Errorf("%w: aspect %v", ErrInvalidView, v.Aspect)
	case v.Near <= 0 || v.Far <= v.Near:
		return fmt.Errorf("%w: clip planes %v..%v", ErrInvalidView, v.Near, v.Far)
	}
	return nil
}

// Basis returns the orthonormal right, up and forward vectors of the view.
func (v View) Basis() (right, up, forward f32.Vec3) {
	forward = normalize(v.Forward)
	if forward == (f32.Vec3{}) {
		forward = f32.Vec3{0, 0, -1}
	}
	worldUp := normalize(v.Up)
	if worldUp == (f32.Vec3{}) {
		worldUp = f32.Vec3{0, 1, 0}
	}
	right = normalize(cross(forward, worldUp))
	if right == (f32.Vec3{}) {
		// Looking straight along Up; pick any perpendicular.
		right = normalize(cross(forward, f32.Vec3{0, 0, 1}))
		if right == (f32.Vec3{}) {
			right = f32.Vec3{1, 0, 0}
		}
	}
	up = cross(right, forward)
	return right, up, forward
}

// ViewportToWorld maps viewport coordinates (0,0 lower-left, 1,1
// upper-right) at distance along the view direction to a world position.
func (v View) ViewportToWorld(x, y, distance float32) f32.Vec3 {
	right, up, forward := v.Basis()
	halfH := distance * float32(math.Tan(float64(v.FieldOfView)*math.Pi/360))
	halfW := halfH * v.Aspect

	sx := (2*x - 1) * halfW
	sy := (2*y - 1) * halfH
	var p f32.Vec3
	for i := range p {
		p[i] = v.Position[i] + forward[i]*distance + right[i]*sx + up[i]*sy
	}
	return p
}

// NearClipPlaneCorners returns the world-space corners of the near clip
// plane ordered upper-left, upper-right, lower-left, lower-right.
func (v View) NearClipPlaneCorners() [4]f32.Vec3 {
	return v.planeCorners(v.Near)
}

// FarClipPlaneCorners returns the world-space corners of the far clip plane
// ordered upper-left, upper-right, lower-left, lower-right.
func (v View) FarClipPlaneCorners() [4]f32.Vec3 {
	return v.planeCorners(v.Far)
}

func (v View) planeCorners(distance float32) [4]f32.Vec3 {
	return [4]f32.Vec3{
		UpperLeft:  v.ViewportToWorld(0, 1, distance),
		UpperRight: v.ViewportToWorld(1, 1, distance),
		LowerLeft:  v.ViewportToWorld(0, 0, distance),
		LowerRight: v.ViewportToWorld(1, 0, distance),
	}
}

// NearClipPlaneCornersMatrix packs the near clip plane corners into the
// columns of a matrix, in corner order, with a zero w row. The matrix is
// row-major, so column i of row r is m[4*r+i].
func (v View) NearClipPlaneCornersMatrix() f32.Mat4 {
	return CornersMatrix(v.NearClipPlaneCorners())
}

// FarClipPlaneCornersMatrix is NearClipPlaneCornersMatrix for the far plane.
func (v View) FarClipPlaneCornersMatrix() f32.Mat4 {
	return CornersMatrix(v.FarClipPlaneCorners())
}

// CornersMatrix packs four points into the columns of a row-major matrix.
func CornersMatrix(c [4]f32.Vec3) f32.Mat4 {
	var m f32.Mat4
	for i, p := range c {
		for r := 0; r < 3; r++ {
			m[4*r+i] = p[r]
		}
	}
	return m
}

func cross(a, b f32.Vec3) f32.Vec3 {
	return f32.Vec3{
		a[1]*b[2] - a[2]*b[1],
		a[2]*b[0] - a[0]*b[2],
		a[0]*b[1] - a[1]*b[0],
	}
}

func normalize(a f32.Vec3) f32.Vec3 {
	l := float32(math.Sqrt(float64(a[0]*a[0] + a[1]*a[1] + a[2]*a[2])))
	if l == 0 {
		return f32.Vec3{}
	}
	return f32.Vec3{a[0] / l, a[1] / l, a[2] / l}
}
