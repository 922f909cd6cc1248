package render

import (
	"github.com/taigrr/prism/pkg/math3d"
)

// Plane represents a plane in 3D space using the equation: Ax + By + Cz + D = 0
// where (A, B, C) is the normal and D is the distance from origin.
type Plane struct {
	Normal math3d.Vec3
	D      float64
}

// normalize scales the plane equation so the normal has unit length.
func (p *Plane) normalize() {
	l := p.Normal.Len()
	if l == 0 {
		return
	}
	p.Normal = p.Normal.Scale(1 / l)
	p.D /= l
}

// DistanceToPoint returns the signed distance from the plane to a point.
// Positive = in front (same side as normal), negative = behind.
func (p Plane) DistanceToPoint(point math3d.Vec3) float64 {
	return p.Normal.Dot(point) + p.D
}

// Frustum is the six inward-facing planes of a camera's view volume,
// ordered left, right, bottom, top, near, far.
type Frustum struct {
	Planes [6]Plane
}

// NewFrustum extracts the planes of a view-projection matrix
// (Gribb/Hartmann).
func NewFrustum(m math3d.Mat4) Frustum {
	// Row i, column j of a column-major matrix is m[i+j*4].
	row := func(i int) (math3d.Vec3, float64) {
		return math3d.V3(m[i], m[i+4], m[i+8]), m[i+12]
	}
	w, ww := row(3)

	var f Frustum
	for axis := range 3 {
		v, vw := row(axis)
		f.Planes[axis*2] = Plane{Normal: w.Add(v), D: ww + vw}
		f.Planes[axis*2+1] = Plane{Normal: w.Sub(v), D: ww - vw}
	}
	for i := range f.Planes {
		f.Planes[i].normalize()
	}
	return f
}

// IntersectAABB reports whether any part of box may be inside the frustum.
// It tests the corner furthest along each plane normal, so boxes near a
// frustum corner can be kept even when outside.
func (f Frustum) IntersectAABB(box math3d.AABB) bool {
	for _, plane := range f.Planes {
		p := math3d.V3(
			selectComponent(plane.Normal.X >= 0, box.Max.X, box.Min.X),
			selectComponent(plane.Normal.Y >= 0, box.Max.Y, box.Min.Y),
			selectComponent(plane.Normal.Z >= 0, box.Max.Z, box.Min.Z),
		)
		if plane.DistanceToPoint(p) < 0 {
			return false
		}
	}
	return true
}

// ContainsPoint reports whether p is inside the frustum.
func (f Frustum) ContainsPoint(p math3d.Vec3) bool {
	for _, plane := range f.Planes {
		if plane.DistanceToPoint(p) < 0 {
			return false
		}
	}
	return true
}

func selectComponent(cond bool, a, b float64) float64 {
	if cond {
		return a
	}
	return b
}
