package math3d

import "math"

// Mat4 is a 4x4 matrix in column-major order, element (row, col) at
// index row+col*4. Points are column vectors: p' = M * p.
type Mat4 [16]float64

// Identity returns the identity matrix.
func Identity() Mat4 {
	return Mat4{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}
}

// Translate returns a translation by v.
func Translate(v Vec3) Mat4 {
	m := Identity()
	m[12], m[13], m[14] = v.X, v.Y, v.Z
	return m
}

// Scale returns a non-uniform scale by v.
func Scale(v Vec3) Mat4 {
	m := Identity()
	m[0], m[5], m[10] = v.X, v.Y, v.Z
	return m
}

// RotateX returns a right-handed rotation about the X axis.
func RotateX(angle float64) Mat4 {
	s, c := math.Sincos(angle)
	m := Identity()
	m[5], m[6] = c, s
	m[9], m[10] = -s, c
	return m
}

// RotateY returns a right-handed rotation about the Y axis.
func RotateY(angle float64) Mat4 {
	s, c := math.Sincos(angle)
	m := Identity()
	m[0], m[2] = c, -s
	m[8], m[10] = s, c
	return m
}

// RotateZ returns a right-handed rotation about the Z axis.
func RotateZ(angle float64) Mat4 {
	s, c := math.Sincos(angle)
	m := Identity()
	m[0], m[1] = c, s
	m[4], m[5] = -s, c
	return m
}

// Euler returns the rotation Z * Y * X for angles in radians.
func Euler(x, y, z float64) Mat4 {
	return RotateZ(z).Mul(RotateY(y)).Mul(RotateX(x))
}

// LookAt returns a view matrix that moves eye to the origin and points
// the direction toward target down -Z.
func LookAt(eye, target, up Vec3) Mat4 {
	f := target.Sub(eye).Normalize()
	r := f.Cross(up).Normalize()
	u := r.Cross(f)

	return Mat4{
		r.X, u.X, -f.X, 0,
		r.Y, u.Y, -f.Y, 0,
		r.Z, u.Z, -f.Z, 0,
		-r.Dot(eye), -u.Dot(eye), f.Dot(eye), 1,
	}
}

// Perspective returns an OpenGL-style projection matrix. fovy is the
// vertical field of view in radians; clip W equals -z.
func Perspective(fovy, aspect, near, far float64) Mat4 {
	f := 1 / math.Tan(fovy/2)
	nf := 1 / (near - far)

	var m Mat4
	m[0] = f / aspect
	m[5] = f
	m[10] = (far + near) * nf
	m[11] = -1
	m[14] = 2 * far * near * nf
	return m
}

// Mul returns a * b.
func (a Mat4) Mul(b Mat4) Mat4 {
	var m Mat4
	for col := range 4 {
		for row := range 4 {
			var sum float64
			for k := range 4 {
				sum += a[row+k*4] * b[k+col*4]
			}
			m[row+col*4] = sum
		}
	}
	return m
}

// MulVec4 returns m * v.
func (m Mat4) MulVec4(v Vec4) Vec4 {
	return Vec4{
		m[0]*v.X + m[4]*v.Y + m[8]*v.Z + m[12]*v.W,
		m[1]*v.X + m[5]*v.Y + m[9]*v.Z + m[13]*v.W,
		m[2]*v.X + m[6]*v.Y + m[10]*v.Z + m[14]*v.W,
		m[3]*v.X + m[7]*v.Y + m[11]*v.Z + m[15]*v.W,
	}
}

// MulPoint transforms p as a point, applying the perspective divide.
func (m Mat4) MulPoint(p Vec3) Vec3 {
	return m.MulVec4(Point(p)).Divide()
}

// MulDir transforms d as a direction, ignoring translation.
func (m Mat4) MulDir(d Vec3) Vec3 {
	return Vec3{
		m[0]*d.X + m[4]*d.Y + m[8]*d.Z,
		m[1]*d.X + m[5]*d.Y + m[9]*d.Z,
		m[2]*d.X + m[6]*d.Y + m[10]*d.Z,
	}
}

// NormalMatrix returns the inverse transpose of the upper 3x3 block,
// which maps surface normals correctly under non-uniform scale. The
// result is scaled by the determinant; callers renormalize. A singular
// block yields the block itself.
func (m Mat4) NormalMatrix() Mat4 {
	// cofactor matrix of the 3x3 block equals det * inverse transpose
	a := func(r, c int) float64 { return m[r+c*4] }
	var n Mat4
	for r := range 3 {
		for c := range 3 {
			r1, r2 := (r+1)%3, (r+2)%3
			c1, c2 := (c+1)%3, (c+2)%3
			n[r+c*4] = a(r1, c1)*a(r2, c2) - a(r1, c2)*a(r2, c1)
		}
	}
	n[15] = 1
	det := a(0, 0)*n[0] + a(0, 1)*n[4] + a(0, 2)*n[8]
	if det == 0 {
		n = m
		n[12], n[13], n[14] = 0, 0, 0
		return n
	}
	if det < 0 {
		for i := range 11 {
			n[i] = -n[i]
		}
	}
	return n
}
