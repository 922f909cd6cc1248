package math3d

import "math"

// Mat4 is a 4x4 matrix stored in column-major order.
//
// Memory layout (indices):
// | 0  4  8  12 |
// | 1  5  9  13 |
// | 2  6  10 14 |
// | 3  7  11 15 |
//
// For an affine transform the upper 3x3 block holds the basis vectors and
// elements 12..14 hold the translation.
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

// Translate creates a translation matrix.
func Translate(v Vec3) Mat4 {
	m := Identity()
	m.SetTranslation(v)
	return m
}

// Scale creates a scaling matrix.
func Scale(v Vec3) Mat4 {
	return Mat4{
		v.X, 0, 0, 0,
		0, v.Y, 0, 0,
		0, 0, v.Z, 0,
		0, 0, 0, 1,
	}
}

// RotateX creates a rotation matrix around the X axis.
func RotateX(angle float64) Mat4 {
	c, s := math.Cos(angle), math.Sin(angle)
	return Mat4{
		1, 0, 0, 0,
		0, c, s, 0,
		0, -s, c, 0,
		0, 0, 0, 1,
	}
}

// RotateY creates a rotation matrix around the Y axis.
func RotateY(angle float64) Mat4 {
	c, s := math.Cos(angle), math.Sin(angle)
	return Mat4{
		c, 0, -s, 0,
		0, 1, 0, 0,
		s, 0, c, 0,
		0, 0, 0, 1,
	}
}

// RotateZ creates a rotation matrix around the Z axis.
func RotateZ(angle float64) Mat4 {
	c, s := math.Cos(angle), math.Sin(angle)
	return Mat4{
		c, s, 0, 0,
		-s, c, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}
}

// Compose builds translation * rotation * scale.
func Compose(position Vec3, rotation Quat, scale Vec3) Mat4 {
	m := rotation.Mat4()
	for col := range 3 {
		s := scale.Component(col)
		for row := range 3 {
			m[row+col*4] *= s
		}
	}
	m.SetTranslation(position)
	return m
}

// LookAt creates a view matrix looking from eye towards center.
func LookAt(eye, center, up Vec3) Mat4 {
	f := center.Sub(eye).Normalize()
	s := f.Cross(up).Normalize()
	u := s.Cross(f)

	return Mat4{
		s.X, u.X, -f.X, 0,
		s.Y, u.Y, -f.Y, 0,
		s.Z, u.Z, -f.Z, 0,
		-s.Dot(eye), -u.Dot(eye), f.Dot(eye), 1,
	}
}

// Perspective creates a perspective projection matrix.
// fovy is the vertical field of view in radians, aspect is width/height.
func Perspective(fovy, aspect, near, far float64) Mat4 {
	f := 1.0 / math.Tan(fovy/2)
	nf := 1.0 / (near - far)

	return Mat4{
		f / aspect, 0, 0, 0,
		0, f, 0, 0,
		0, 0, (far + near) * nf, -1,
		0, 0, 2 * far * near * nf, 0,
	}
}

// Mul multiplies two matrices: a * b.
//
//nolint:st1016 // a*b naming convention is clearer for matrix multiplication
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

// MulVec3 transforms a Vec3 as a point (w=1).
func (m Mat4) MulVec3(v Vec3) Vec3 {
	w := m[3]*v.X + m[7]*v.Y + m[11]*v.Z + m[15]
	if w == 0 {
		w = 1
	}
	return Vec3{
		(m[0]*v.X + m[4]*v.Y + m[8]*v.Z + m[12]) / w,
		(m[1]*v.X + m[5]*v.Y + m[9]*v.Z + m[13]) / w,
		(m[2]*v.X + m[6]*v.Y + m[10]*v.Z + m[14]) / w,
	}
}

// MulVec3Dir transforms a Vec3 as a direction (w=0, no translation).
func (m Mat4) MulVec3Dir(v Vec3) Vec3 {
	return Vec3{
		m[0]*v.X + m[4]*v.Y + m[8]*v.Z,
		m[1]*v.X + m[5]*v.Y + m[9]*v.Z,
		m[2]*v.X + m[6]*v.Y + m[10]*v.Z,
	}
}

// MulVec4 transforms a Vec4.
func (m Mat4) MulVec4(v Vec4) Vec4 {
	return Vec4{
		m[0]*v.X + m[4]*v.Y + m[8]*v.Z + m[12]*v.W,
		m[1]*v.X + m[5]*v.Y + m[9]*v.Z + m[13]*v.W,
		m[2]*v.X + m[6]*v.Y + m[10]*v.Z + m[14]*v.W,
		m[3]*v.X + m[7]*v.Y + m[11]*v.Z + m[15]*v.W,
	}
}

// Transpose returns the transposed matrix.
func (m Mat4) Transpose() Mat4 {
	var t Mat4
	for col := range 4 {
		for row := range 4 {
			t[col+row*4] = m[row+col*4]
		}
	}
	return t
}

// minors holds the 2x2 sub-determinants shared by Determinant and Inverse.
type minors struct {
	s [6]float64 // rows 0,1
	c [6]float64 // rows 2,3
}

func (m Mat4) minors() minors {
	a := func(row, col int) float64 { return m[row+col*4] }
	return minors{
		s: [6]float64{
			a(0, 0)*a(1, 1) - a(1, 0)*a(0, 1),
			a(0, 0)*a(1, 2) - a(1, 0)*a(0, 2),
			a(0, 0)*a(1, 3) - a(1, 0)*a(0, 3),
			a(0, 1)*a(1, 2) - a(1, 1)*a(0, 2),
			a(0, 1)*a(1, 3) - a(1, 1)*a(0, 3),
			a(0, 2)*a(1, 3) - a(1, 2)*a(0, 3),
		},
		c: [6]float64{
			a(2, 0)*a(3, 1) - a(3, 0)*a(2, 1),
			a(2, 0)*a(3, 2) - a(3, 0)*a(2, 2),
			a(2, 0)*a(3, 3) - a(3, 0)*a(2, 3),
			a(2, 1)*a(3, 2) - a(3, 1)*a(2, 2),
			a(2, 1)*a(3, 3) - a(3, 1)*a(2, 3),
			a(2, 2)*a(3, 3) - a(3, 2)*a(2, 3),
		},
	}
}

func (n minors) det() float64 {
	return n.s[0]*n.c[5] - n.s[1]*n.c[4] + n.s[2]*n.c[3] +
		n.s[3]*n.c[2] - n.s[4]*n.c[1] + n.s[5]*n.c[0]
}

// Determinant returns the determinant of the matrix.
func (m Mat4) Determinant() float64 {
	return m.minors().det()
}

// Inverse returns the inverse of the matrix.
// Returns identity if the matrix is singular (det=0).
func (m Mat4) Inverse() Mat4 {
	n := m.minors()
	det := n.det()
	if det == 0 {
		return Identity()
	}
	inv := 1 / det
	a := func(row, col int) float64 { return m[row+col*4] }
	s, c := n.s, n.c

	var out Mat4
	set := func(row, col int, v float64) { out[row+col*4] = v * inv }

	set(0, 0, a(1, 1)*c[5]-a(1, 2)*c[4]+a(1, 3)*c[3])
	set(0, 1, -a(0, 1)*c[5]+a(0, 2)*c[4]-a(0, 3)*c[3])
	set(0, 2, a(3, 1)*s[5]-a(3, 2)*s[4]+a(3, 3)*s[3])
	set(0, 3, -a(2, 1)*s[5]+a(2, 2)*s[4]-a(2, 3)*s[3])

	set(1, 0, -a(1, 0)*c[5]+a(1, 2)*c[2]-a(1, 3)*c[1])
	set(1, 1, a(0, 0)*c[5]-a(0, 2)*c[2]+a(0, 3)*c[1])
	set(1, 2, -a(3, 0)*s[5]+a(3, 2)*s[2]-a(3, 3)*s[1])
	set(1, 3, a(2, 0)*s[5]-a(2, 2)*s[2]+a(2, 3)*s[1])

	set(2, 0, a(1, 0)*c[4]-a(1, 1)*c[2]+a(1, 3)*c[0])
	set(2, 1, -a(0, 0)*c[4]+a(0, 1)*c[2]-a(0, 3)*c[0])
	set(2, 2, a(3, 0)*s[4]-a(3, 1)*s[2]+a(3, 3)*s[0])
	set(2, 3, -a(2, 0)*s[4]+a(2, 1)*s[2]-a(2, 3)*s[0])

	set(3, 0, -a(1, 0)*c[3]+a(1, 1)*c[1]-a(1, 2)*c[0])
	set(3, 1, a(0, 0)*c[3]-a(0, 1)*c[1]+a(0, 2)*c[0])
	set(3, 2, -a(3, 0)*s[3]+a(3, 1)*s[1]-a(3, 2)*s[0])
	set(3, 3, a(2, 0)*s[3]-a(2, 1)*s[1]+a(2, 2)*s[0])

	return out
}

// NormalMatrix returns the inverse transpose of m, for transforming surface
// normals with MulVec3Dir. It reduces to the rotation for uniform scale.
func (m Mat4) NormalMatrix() Mat4 {
	return m.Inverse().Transpose()
}

// Translation extracts the translation component.
func (m Mat4) Translation() Vec3 {
	return Vec3{m[12], m[13], m[14]}
}

// SetTranslation sets the translation component.
func (m *Mat4) SetTranslation(v Vec3) {
	m[12] = v.X
	m[13] = v.Y
	m[14] = v.Z
}

// Decompose splits an affine matrix without shear into translation, rotation
// and scale, the inverse of Compose. A negative determinant is folded into
// the X scale.
func (m Mat4) Decompose() (position Vec3, rotation Quat, scale Vec3) {
	sx := V3(m[0], m[1], m[2]).Len()
	sy := V3(m[4], m[5], m[6]).Len()
	sz := V3(m[8], m[9], m[10]).Len()
	if m.Determinant() < 0 {
		sx = -sx
	}
	scale = V3(sx, sy, sz)

	r := m
	for col, s := range [3]float64{sx, sy, sz} {
		if s == 0 {
			continue
		}
		for row := range 3 {
			r[row+col*4] /= s
		}
	}
	return m.Translation(), QuatFromMat4(r), scale
}
