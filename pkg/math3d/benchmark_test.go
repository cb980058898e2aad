package math3d

import "testing"

func BenchmarkMat4Mul(b *testing.B) {
	m1 := Translate(V3(1, 2, 3))
	m2 := RotateY(0.5)

	for b.Loop() {
		_ = m1.Mul(m2)
	}
}

func BenchmarkMat4MulPoint(b *testing.B) {
	m := Translate(V3(1, 2, 3)).Mul(RotateY(0.5))
	v := V3(1, 2, 3)

	for b.Loop() {
		_ = m.MulPoint(v)
	}
}

func BenchmarkNormalMatrix(b *testing.B) {
	m := Translate(V3(1, 2, 3)).Mul(RotateY(0.5)).Mul(Scale(V3(2, 1, 3)))

	for b.Loop() {
		_ = m.NormalMatrix()
	}
}

func BenchmarkNewellNormalQuad(b *testing.B) {
	quad := []Vec3{{0, 0, 0}, {1, 0, 0}, {1, 1, 0}, {0, 1, 0}}

	for b.Loop() {
		_ = NewellNormal(quad)
	}
}
