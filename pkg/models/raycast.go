package models

import (
	"github.com/taigrr/prism/pkg/math3d"
)

const (
	// parallelEpsilon rejects rays lying in a triangle's plane.
	parallelEpsilon = 1e-12
	// degenerateAreaSq is the squared cross-product length below which a
	// face has no usable normal.
	degenerateAreaSq = 1e-24
)

// Hit describes where a ray met a shape, in the shape's local space.
type Hit struct {
	T         float64     // Ray parameter of the hit
	Point     math3d.Vec3 // Local-space hit point
	Normal    math3d.Vec3 // Local-space unit normal, valid when HasNormal
	HasNormal bool
	Face      int // Triangle index, -1 for analytic shapes
}

// Raycast returns the nearest face hit with tMin < t < tMax.
// Faces are tested in index order and a later face only replaces the current
// nearest when it is strictly closer.
func (m *Mesh) Raycast(r math3d.Ray, tMin, tMax float64) (Hit, bool) {
	if len(m.Faces) == 0 {
		return Hit{}, false
	}
	if _, _, ok := m.Bounds().IntersectRay(r, tMin, tMax); !ok {
		return Hit{}, false
	}

	best := Hit{Face: -1, T: tMax}
	found := false
	for i, f := range m.Faces {
		t, ok := intersectTriangle(r,
			m.Vertices[f.V[0]].Position,
			m.Vertices[f.V[1]].Position,
			m.Vertices[f.V[2]].Position,
		)
		if !ok || t <= tMin || t >= best.T {
			continue
		}
		best.T = t
		best.Face = i
		found = true
	}
	if !found {
		return Hit{}, false
	}

	best.Point = r.At(best.T)
	best.Normal, best.HasNormal = m.FaceNormal(best.Face)
	return best, true
}

// intersectTriangle is the Möller–Trumbore test. It returns the ray
// parameter of the hit without range checks.
func intersectTriangle(r math3d.Ray, v0, v1, v2 math3d.Vec3) (float64, bool) {
	edge1 := v1.Sub(v0)
	edge2 := v2.Sub(v0)

	h := r.Direction.Cross(edge2)
	det := edge1.Dot(h)
	if det > -parallelEpsilon && det < parallelEpsilon {
		return 0, false
	}

	f := 1 / det
	s := r.Origin.Sub(v0)
	u := f * s.Dot(h)
	if u < 0 || u > 1 {
		return 0, false
	}

	q := s.Cross(edge1)
	v := f * r.Direction.Dot(q)
	if v < 0 || u+v > 1 {
		return 0, false
	}

	return f * edge2.Dot(q), true
}
