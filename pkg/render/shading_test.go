package render

import (
	"errors"
	"math"
	"testing"

	"github.com/taigrr/raster3d/pkg/math3d"
)

func near(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestLambert(t *testing.T) {
	l := math3d.V3(0, 0, 1)
	tests := []struct {
		name string
		n    math3d.Vec3
		want float64
	}{
		{"facing", math3d.V3(0, 0, 3), 1},
		{"perpendicular", math3d.V3(1, 0, 0), 0},
		{"opposite", math3d.V3(0, 0, -1), 0},
		{"oblique", math3d.V3(0, 1, 1), math.Sqrt2 / 2},
		{"zero normal", math3d.Vec3{}, 0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := Lambert(tc.n, l); !near(got, tc.want) {
				t.Errorf("Lambert = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestPhongIntensity(t *testing.T) {
	z := math3d.V3(0, 0, 1)
	tests := []struct {
		name    string
		n, l, v math3d.Vec3
		kd, ks  float64
		want    float64
	}{
		{"head on clamps to one", z, z, z, 0.7, 0.3, 1},
		{"diffuse only", z, z, z, 0.5, 0, 0.5},
		{"light behind", z, z.Negate(), z, 0.7, 0.3, 0},
		{"highlight away from viewer", z, math3d.V3(1, 0, 1), math3d.V3(1, 0, 1), 0, 1, 0},
		{"over-bright clamps", z, z, z, 2, 2, 1},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := PhongIntensity(tc.n, tc.l, tc.v, tc.kd, tc.ks, 16)
			if !near(got, tc.want) {
				t.Errorf("PhongIntensity = %v, want %v", got, tc.want)
			}
			if got < 0 || got > 1 {
				t.Errorf("PhongIntensity = %v outside [0, 1]", got)
			}
		})
	}
}

func TestGouraudIntensities(t *testing.T) {
	verts := []math3d.Vec3{{}, {X: 1}, {Y: 1}}
	normals := []math3d.Vec3{{Z: 1}, {Z: -1}, {X: 1}}

	got, err := GouraudIntensities(verts, normals, math3d.V3(0, 0, 1))
	if err != nil {
		t.Fatal(err)
	}
	want := []float64{1, 0, 0}
	for i := range want {
		if !near(got[i], want[i]) {
			t.Errorf("intensity[%d] = %v, want %v", i, got[i], want[i])
		}
	}

	if _, err := GouraudIntensities(verts, normals[:2], math3d.V3(0, 0, 1)); !errors.Is(err, ErrAttributeMismatch) {
		t.Errorf("err = %v, want ErrAttributeMismatch", err)
	}
}

func TestParseMode(t *testing.T) {
	tests := []struct {
		in      string
		want    Mode
		wantErr bool
	}{
		{"flat", ModeFlat, false},
		{"Lambert", ModeFlat, false},
		{"gouraud", ModeGouraud, false},
		{" PHONG ", ModePhong, false},
		{"toon", 0, true},
	}

	for _, tc := range tests {
		got, err := ParseMode(tc.in)
		if (err != nil) != tc.wantErr {
			t.Errorf("ParseMode(%q) err = %v", tc.in, err)
			continue
		}
		if got != tc.want {
			t.Errorf("ParseMode(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}
