package math3d

import "math"

// Quat is a rotation quaternion (X, Y, Z imaginary, W real).
type Quat struct {
	X, Y, Z, W float64
}

// IdentityQuat returns the no-rotation quaternion.
func IdentityQuat() Quat {
	return Quat{W: 1}
}

// QuatFromAxisAngle returns a rotation of angle radians about axis.
func QuatFromAxisAngle(axis Vec3, angle float64) Quat {
	axis = axis.Normalize()
	s := math.Sin(angle / 2)
	return Quat{axis.X * s, axis.Y * s, axis.Z * s, math.Cos(angle / 2)}
}

// QuatFromEuler returns the rotation for Euler angles applied in XYZ order,
// i.e. the matrix RotateX(x) * RotateY(y) * RotateZ(z).
func QuatFromEuler(x, y, z float64) Quat {
	c1, s1 := math.Cos(x/2), math.Sin(x/2)
	c2, s2 := math.Cos(y/2), math.Sin(y/2)
	c3, s3 := math.Cos(z/2), math.Sin(z/2)
	return Quat{
		X: s1*c2*c3 + c1*s2*s3,
		Y: c1*s2*c3 - s1*c2*s3,
		Z: c1*c2*s3 + s1*s2*c3,
		W: c1*c2*c3 - s1*s2*s3,
	}
}

// Mul returns the Hamilton product q * r (apply r, then q).
func (q Quat) Mul(r Quat) Quat {
	return Quat{
		X: q.W*r.X + q.X*r.W + q.Y*r.Z - q.Z*r.Y,
		Y: q.W*r.Y - q.X*r.Z + q.Y*r.W + q.Z*r.X,
		Z: q.W*r.Z + q.X*r.Y - q.Y*r.X + q.Z*r.W,
		W: q.W*r.W - q.X*r.X - q.Y*r.Y - q.Z*r.Z,
	}
}

// Normalize returns q scaled to unit length. The zero quaternion becomes identity.
func (q Quat) Normalize() Quat {
	l := math.Sqrt(q.X*q.X + q.Y*q.Y + q.Z*q.Z + q.W*q.W)
	if l == 0 {
		return IdentityQuat()
	}
	return Quat{q.X / l, q.Y / l, q.Z / l, q.W / l}
}

// Mat4 returns the rotation matrix for a unit quaternion.
func (q Quat) Mat4() Mat4 {
	x, y, z, w := q.X, q.Y, q.Z, q.W
	xx, yy, zz := x*x, y*y, z*z
	xy, xz, yz := x*y, x*z, y*z
	wx, wy, wz := w*x, w*y, w*z

	return Mat4{
		1 - 2*(yy+zz), 2 * (xy + wz), 2 * (xz - wy), 0,
		2 * (xy - wz), 1 - 2*(xx+zz), 2 * (yz + wx), 0,
		2 * (xz + wy), 2 * (yz - wx), 1 - 2*(xx+yy), 0,
		0, 0, 0, 1,
	}
}

// QuatFromMat4 extracts the rotation of a matrix whose upper 3x3 block is a
// pure rotation.
func QuatFromMat4(m Mat4) Quat {
	m11, m12, m13 := m[0], m[4], m[8]
	m21, m22, m23 := m[1], m[5], m[9]
	m31, m32, m33 := m[2], m[6], m[10]

	switch trace := m11 + m22 + m33; {
	case trace > 0:
		s := 0.5 / math.Sqrt(trace+1)
		return Quat{(m32 - m23) * s, (m13 - m31) * s, (m21 - m12) * s, 0.25 / s}
	case m11 > m22 && m11 > m33:
		s := 2 * math.Sqrt(1+m11-m22-m33)
		return Quat{0.25 * s, (m12 + m21) / s, (m13 + m31) / s, (m32 - m23) / s}
	case m22 > m33:
		s := 2 * math.Sqrt(1+m22-m11-m33)
		return Quat{(m12 + m21) / s, 0.25 * s, (m23 + m32) / s, (m13 - m31) / s}
	default:
		s := 2 * math.Sqrt(1+m33-m11-m22)
		return Quat{(m13 + m31) / s, (m23 + m32) / s, 0.25 * s, (m21 - m12) / s}
	}
}
