// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package camera

import (
	"errors"
	"math"
	"testing"

	"golang.org/x/image/math/f32"
)

const eps = 1e-4

func near(a, b float32) bool {
	return math.Abs(float64(a-b)) < eps
}

func nearVec(a, b f32.Vec3) bool {
	return near(a[0], b[0]) && near(a[1], b[1]) && near(a[2], b[2])
}

// squareView has a 90 degree field of view, so at distance d the plane
// spans -d..d on both axes.
func squareView() View {
	return View{
		Forward:     f32.Vec3{0, 0, -1},
		Up:          f32.Vec3{0, 1, 0},
		FieldOfView: 90,
		Aspect:      1,
		Near:        1,
		Far:         10,
	}
}

func TestNearClipPlaneCornerOrder(t *testing.T) {
	v := squareView()
	got := v.NearClipPlaneCorners()
	want := [4]f32.Vec3{
		UpperLeft:  {-1, 1, -1},
		UpperRight: {1, 1, -1},
		LowerLeft:  {-1, -1, -1},
		LowerRight: {1, -1, -1},
	}
	for i := range want {
		if !nearVec(got[i], want[i]) {
			t.Errorf("corner %d = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestFarClipPlaneCornersScale(t *testing.T) {
	v := squareView()
	v.Position = f32.Vec3{5, 0, 0}
	got := v.FarClipPlaneCorners()
	if !nearVec(got[UpperLeft], f32.Vec3{-5, 10, -10}) {
		t.Errorf("far upper-left = %v, want (-5,10,-10)", got[UpperLeft])
	}
	if !nearVec(got[LowerRight], f32.Vec3{15, -10, -10}) {
		t.Errorf("far lower-right = %v", got[LowerRight])
	}
}

func TestCornersFollowOrientation(t *testing.T) {
	// Looking down +X, right is +Z.
	v := squareView()
	v.Forward = f32.Vec3{1, 0, 0}
	c := v.NearClipPlaneCorners()
	if !nearVec(c[UpperRight], f32.Vec3{1, 1, 1}) {
		t.Errorf("upper-right = %v, want (1,1,1)", c[UpperRight])
	}
	if !nearVec(c[UpperLeft], f32.Vec3{1, 1, -1}) {
		t.Errorf("upper-left = %v, want (1,1,-1)", c[UpperLeft])
	}
}

func TestAspectWidensHorizontally(t *testing.T) {
	v := squareView()
	v.Aspect = 2
	c := v.NearClipPlaneCorners()
	if !near(c[UpperRight][0], 2) || !near(c[UpperRight][1], 1) {
		t.Errorf("upper-right = %v, want x=2 y=1", c[UpperRight])
	}
}

func TestNearClipPlaneCornersMatrix(t *testing.T) {
	v := squareView()
	corners := v.NearClipPlaneCorners()
	m := v.NearClipPlaneCornersMatrix()
	for i, c := range corners {
		for r := 0; r < 3; r++ {
			if m[4*r+i] != c[r] {
				t.Errorf("m[row %d][col %d] = %v, want %v", r, i, m[4*r+i], c[r])
			}
		}
		if m[12+i] != 0 {
			t.Errorf("w of column %d = %v, want 0", i, m[12+i])
		}
	}
}

func TestBasisFallbacks(t *testing.T) {
	var v View
	right, up, forward := v.Basis()
	if !nearVec(forward, f32.Vec3{0, 0, -1}) || !nearVec(up, f32.Vec3{0, 1, 0}) || !nearVec(right, f32.Vec3{1, 0, 0}) {
		t.Errorf("zero view basis = %v %v %v", right, up, forward)
	}

	v.Forward = f32.Vec3{0, 1, 0}
	right, up, _ = v.Basis()
	if right == (f32.Vec3{}) || up == (f32.Vec3{}) {
		t.Error("degenerate up produced a zero basis vector")
	}
}

func TestValidate(t *testing.T) {
	if err := DefaultView(16.0 / 9).Validate(); err != nil {
		t.Fatalf("default view invalid: %v", err)
	}
	bad := []View{
		{FieldOfView: 0, Aspect: 1, Near: 1, Far: 2},
		{FieldOfView: 60, Aspect: 0, Near: 1, Far: 2},
		{FieldOfView: 60, Aspect: 1, Near: 2, Far: 1},
	}
	for i, v := range bad {
		if err := v.Validate(); !errors.Is(err, ErrInvalidView) {
			t.Errorf("view %d: expected ErrInvalidView, got %v", i, err)
		}
	}
}
