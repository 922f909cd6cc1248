package models

import (
	"math"

	"github.com/taigrr/prism/pkg/math3d"
)

// Sphere is an analytic sphere. It needs no tessellation and reports exact
// normals, which makes it the reference shape for reflection tests.
type Sphere struct {
	Center math3d.Vec3
	Radius float64
}

// NewSphere creates a sphere.
func NewSphere(center math3d.Vec3, radius float64) *Sphere {
	return &Sphere{Center: center, Radius: radius}
}

// Raycast returns the nearest intersection with tMin < t < tMax.
// The direction need not be unit length.
func (s *Sphere) Raycast(r math3d.Ray, tMin, tMax float64) (Hit, bool) {
	if s.Radius <= 0 {
		return Hit{}, false
	}
	oc := r.Origin.Sub(s.Center)

	// at² + 2·halfB·t + c = 0
	a := r.Direction.LenSq()
	if a == 0 {
		return Hit{}, false
	}
	halfB := oc.Dot(r.Direction)
	c := oc.LenSq() - s.Radius*s.Radius

	disc := halfB*halfB - a*c
	if disc < 0 {
		return Hit{}, false
	}
	sqrtD := math.Sqrt(disc)

	root := (-halfB - sqrtD) / a
	if root <= tMin || root >= tMax {
		root = (-halfB + sqrtD) / a
		if root <= tMin || root >= tMax {
			return Hit{}, false
		}
	}

	p := r.At(root)
	return Hit{
		T:         root,
		Point:     p,
		Normal:    p.Sub(s.Center).Scale(1 / s.Radius),
		HasNormal: true,
		Face:      -1,
	}, true
}

// Bounds returns the bounding box of the sphere.
func (s *Sphere) Bounds() math3d.AABB {
	r := math3d.V3(s.Radius, s.Radius, s.Radius)
	return math3d.NewAABB(s.Center.Sub(r), s.Center.Add(r))
}
