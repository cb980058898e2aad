package math3d

import (
	"math"
	"testing"
)

const eps = 1e-9

func vecNear(a, b Vec3) bool {
	return math.Abs(a.X-b.X) < eps && math.Abs(a.Y-b.Y) < eps && math.Abs(a.Z-b.Z) < eps
}

func TestNewellNormal(t *testing.T) {
	tests := []struct {
		name   string
		points []Vec3
		want   Vec3
	}{
		{
			name:   "ccw unit square faces +z",
			points: []Vec3{{0, 0, 0}, {1, 0, 0}, {1, 1, 0}, {0, 1, 0}},
			want:   V3(0, 0, 2),
		},
		{
			name:   "cw unit square faces -z",
			points: []Vec3{{0, 0, 0}, {0, 1, 0}, {1, 1, 0}, {1, 0, 0}},
			want:   V3(0, 0, -2),
		},
		{
			name:   "triangle in xz plane",
			points: []Vec3{{0, 0, 0}, {0, 0, 1}, {1, 0, 0}},
			want:   V3(0, 1, 0),
		},
		{
			name:   "collinear points",
			points: []Vec3{{0, 0, 0}, {1, 1, 1}, {2, 2, 2}},
			want:   Vec3{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NewellNormal(tt.points)
			if !vecNear(got, tt.want) {
				t.Errorf("NewellNormal() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNormalizeZero(t *testing.T) {
	if got := (Vec3{}).Normalize(); got != (Vec3{}) {
		t.Errorf("zero vector normalized to %v", got)
	}
	if got := V3(3, 0, 4).Normalize(); !vecNear(got, V3(0.6, 0, 0.8)) {
		t.Errorf("Normalize() = %v", got)
	}
}

func TestLookAtMapsTargetDownNegativeZ(t *testing.T) {
	view := LookAt(V3(0, 0, 5), V3(0, 0, 0), Up())
	got := view.MulPoint(V3(0, 0, 0))
	if !vecNear(got, V3(0, 0, -5)) {
		t.Errorf("target in view space = %v, want (0,0,-5)", got)
	}

	view = LookAt(V3(5, 0, 0), V3(0, 0, 0), Up())
	got = view.MulPoint(V3(0, 0, 0))
	if !vecNear(got, V3(0, 0, -5)) {
		t.Errorf("target in view space = %v, want (0,0,-5)", got)
	}
}

func TestPerspectiveClipW(t *testing.T) {
	m := Perspective(math.Pi/2, 1, 0.1, 100)
	clip := m.MulVec4(Point(V3(1, 1, -2)))
	if math.Abs(clip.W-2) > eps {
		t.Errorf("clip W = %v, want 2", clip.W)
	}
	ndc := clip.Divide()
	if math.Abs(ndc.X-0.5) > eps || math.Abs(ndc.Y-0.5) > eps {
		t.Errorf("ndc = %v, want (0.5, 0.5, _)", ndc)
	}
}

func TestRotateYQuarterTurn(t *testing.T) {
	got := RotateY(math.Pi / 2).MulPoint(V3(1, 0, 0))
	if !vecNear(got, V3(0, 0, -1)) {
		t.Errorf("RotateY(90°)(1,0,0) = %v, want (0,0,-1)", got)
	}
}

func TestNormalMatrix(t *testing.T) {
	tests := []struct {
		name string
		m    Mat4
		n    Vec3
		want Vec3
	}{
		{"identity", Identity(), V3(0, 1, 0), V3(0, 1, 0)},
		{"translation ignored", Translate(V3(4, 5, 6)), V3(1, 0, 0), V3(1, 0, 0)},
		{"rotation", RotateZ(math.Pi / 2), V3(1, 0, 0), V3(0, 1, 0)},
		{"non-uniform scale", Scale(V3(2, 1, 1)), V3(1, 1, 0).Normalize(), V3(1, 2, 0).Normalize()},
		{"mirror keeps orientation", Scale(V3(-1, 1, 1)), V3(1, 0, 0), V3(-1, 0, 0)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.m.NormalMatrix().MulDir(tt.n).Normalize()
			if !vecNear(got, tt.want) {
				t.Errorf("NormalMatrix().MulDir(%v) = %v, want %v", tt.n, got, tt.want)
			}
		})
	}
}

func TestVec2Cross(t *testing.T) {
	if got := V2(1, 0).Cross(V2(0, 1)); got != 1 {
		t.Errorf("Cross = %v, want 1", got)
	}
	if got := V2(0, 1).Cross(V2(1, 0)); got != -1 {
		t.Errorf("Cross = %v, want -1", got)
	}
}

func TestIsFinite(t *testing.T) {
	if !V3(1, 2, 3).IsFinite() {
		t.Error("finite vector reported non-finite")
	}
	if V3(math.NaN(), 0, 0).IsFinite() || V3(0, math.Inf(1), 0).IsFinite() {
		t.Error("non-finite vector reported finite")
	}
}
